package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	profilesvc "github.com/Usergeee443/nikoh/internal/services/profiles"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type ProfileHandler struct {
	service *profilesvc.Service
}

func NewProfileHandler(service *profilesvc.Service) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Get returns the caller's own profile view, or a public profile when the
// user_id query parameter is set.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "user_id must be a positive integer")
			return
		}

		profile, err := h.service.GetPublic(r.Context(), userID)
		if err != nil {
			handleProfileError(w, err)
			return
		}
		httperrors.Write(w, http.StatusOK, profileResponse(profile, time.Now().UTC()))
		return
	}

	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileViewResponse{
		Profile:         profileResponse(view.Profile, time.Now().UTC()),
		HasActiveTariff: view.HasActiveTariff,
		IsTop:           view.IsTop,
		RequestsLeft:    view.RequestsLeft,
		ListingExpires:  view.ListingExpires,
	})
}

// Save upserts the caller's questionnaire.
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Save(r.Context(), identity.UserID, profilesvc.SaveInput{
		Name:                  req.Name,
		Gender:                req.Gender,
		BirthYear:             req.BirthYear,
		Region:                req.Region,
		Nationality:           req.Nationality,
		MaritalStatus:         req.MaritalStatus,
		HeightCM:              req.HeightCM,
		WeightKG:              req.WeightKG,
		PrayerFrequency:       req.PrayerFrequency,
		Fasting:               req.Fasting,
		ReligiousLevel:        req.ReligiousLevel,
		Education:             req.Education,
		Profession:            req.Profession,
		Bio:                   req.Bio,
		PartnerAgeMin:         req.PartnerAgeMin,
		PartnerAgeMax:         req.PartnerAgeMax,
		PartnerRegion:         req.PartnerRegion,
		PartnerMaritalStatus:  req.PartnerMaritalStatus,
		PartnerReligiousLevel: req.PartnerReligiousLevel,
	})
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, profileResponse(profile, time.Now().UTC()))
}

// Toggle flips feed visibility.
func (h *ProfileHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	profile, err := h.service.Toggle(r.Context(), identity.UserID)
	if err != nil {
		handleProfileError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ProfileToggleResponse{IsActive: profile.IsActive})
}

func handleProfileError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, profilesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, profilesvc.ErrProfileNotFound):
		writeNotFound(w, "PROFILE_NOT_FOUND", "profile not found")
	case errors.Is(err, profilesvc.ErrEntitlementRequired):
		writeForbidden(w, "TARIFF_REQUIRED", "an active tariff is required to activate the profile")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func profileResponse(profile model.Profile, now time.Time) dto.ProfileResponse {
	return dto.ProfileResponse{
		UserID:                profile.UserID,
		Name:                  profile.Name,
		Gender:                profile.Gender.String(),
		BirthYear:             profile.BirthYear,
		Age:                   profile.Age(now),
		Region:                profile.Region,
		Nationality:           profile.Nationality,
		MaritalStatus:         profile.MaritalStatus,
		HeightCM:              profile.HeightCM,
		WeightKG:              profile.WeightKG,
		PrayerFrequency:       profile.PrayerFrequency,
		Fasting:               profile.Fasting,
		ReligiousLevel:        profile.ReligiousLevel,
		Education:             profile.Education,
		Profession:            profile.Profession,
		Bio:                   profile.Bio,
		PartnerAgeMin:         profile.PartnerAgeMin,
		PartnerAgeMax:         profile.PartnerAgeMax,
		PartnerRegion:         profile.PartnerRegion,
		PartnerMaritalStatus:  profile.PartnerMaritalStatus,
		PartnerReligiousLevel: profile.PartnerReligiousLevel,
		IsComplete:            profile.IsComplete,
		IsActive:              profile.IsActive,
		ActivatedAt:           profile.ActivatedAt,
	}
}
