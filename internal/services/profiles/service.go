package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/enums"
	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/pkg/validate"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
)

var (
	ErrValidation          = errors.New("validation error")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrEntitlementRequired = errors.New("active tariff required")
)

const (
	minAge = 17
	maxAge = 90
)

type ProfileStore interface {
	Upsert(ctx context.Context, p model.Profile) (model.Profile, error)
	FindByUserID(ctx context.Context, userID int64) (model.Profile, error)
	SetActive(ctx context.Context, userID int64, active bool) (model.Profile, error)
}

type TariffStore interface {
	CurrentValid(ctx context.Context, userID int64, now time.Time) (model.UserTariff, error)
}

type Service struct {
	profiles ProfileStore
	tariffs  TariffStore
	now      func() time.Time
}

type SaveInput struct {
	Name                  string
	Gender                string
	BirthYear             int
	Region                string
	Nationality           string
	MaritalStatus         string
	HeightCM              int
	WeightKG              int
	PrayerFrequency       string
	Fasting               string
	ReligiousLevel        string
	Education             string
	Profession            string
	Bio                   string
	PartnerAgeMin         int
	PartnerAgeMax         int
	PartnerRegion         string
	PartnerMaritalStatus  string
	PartnerReligiousLevel string
}

// View is a profile plus the owner's entitlement snapshot.
type View struct {
	Profile         model.Profile
	HasActiveTariff bool
	IsTop           bool
	RequestsLeft    int
	ListingExpires  *time.Time
}

func NewService(profiles ProfileStore, tariffs TariffStore) *Service {
	return &Service{
		profiles: profiles,
		tariffs:  tariffs,
		now:      time.Now,
	}
}

// Save upserts the caller's questionnaire. A saved profile is complete but
// stays hidden until the owner activates it.
func (s *Service) Save(ctx context.Context, userID int64, in SaveInput) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.profiles == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	gender, ok := enums.ParseGender(in.Gender)
	if !ok {
		return model.Profile{}, fmt.Errorf("unknown gender %q: %w", in.Gender, ErrValidation)
	}

	if !validate.Required(in.Name) {
		return model.Profile{}, fmt.Errorf("name is required: %w", ErrValidation)
	}

	currentYear := s.now().Year()
	if !validate.InRange(in.BirthYear, currentYear-maxAge, currentYear-minAge) {
		return model.Profile{}, fmt.Errorf("birth year out of range: %w", ErrValidation)
	}

	if !validate.Required(in.Region) || !validate.Required(in.MaritalStatus) {
		return model.Profile{}, fmt.Errorf("region and marital status are required: %w", ErrValidation)
	}

	if in.PartnerAgeMin < 0 || in.PartnerAgeMax < 0 || (in.PartnerAgeMax > 0 && in.PartnerAgeMin > in.PartnerAgeMax) {
		return model.Profile{}, fmt.Errorf("partner age range is invalid: %w", ErrValidation)
	}

	return s.profiles.Upsert(ctx, model.Profile{
		UserID:                userID,
		Name:                  strings.TrimSpace(in.Name),
		Gender:                gender,
		BirthYear:             in.BirthYear,
		Region:                strings.TrimSpace(in.Region),
		Nationality:           strings.TrimSpace(in.Nationality),
		MaritalStatus:         strings.TrimSpace(in.MaritalStatus),
		HeightCM:              in.HeightCM,
		WeightKG:              in.WeightKG,
		PrayerFrequency:       strings.TrimSpace(in.PrayerFrequency),
		Fasting:               strings.TrimSpace(in.Fasting),
		ReligiousLevel:        strings.TrimSpace(in.ReligiousLevel),
		Education:             strings.TrimSpace(in.Education),
		Profession:            strings.TrimSpace(in.Profession),
		Bio:                   strings.TrimSpace(in.Bio),
		PartnerAgeMin:         in.PartnerAgeMin,
		PartnerAgeMax:         in.PartnerAgeMax,
		PartnerRegion:         strings.TrimSpace(in.PartnerRegion),
		PartnerMaritalStatus:  strings.TrimSpace(in.PartnerMaritalStatus),
		PartnerReligiousLevel: strings.TrimSpace(in.PartnerReligiousLevel),
	})
}

func (s *Service) Get(ctx context.Context, userID int64) (View, error) {
	if userID <= 0 {
		return View{}, ErrValidation
	}
	if s.profiles == nil {
		return View{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return View{}, ErrProfileNotFound
		}
		return View{}, err
	}

	view := View{Profile: profile}
	if s.tariffs != nil {
		now := s.now().UTC()
		tariff, err := s.tariffs.CurrentValid(ctx, userID, now)
		switch {
		case err == nil:
			view.HasActiveTariff = true
			view.IsTop = tariff.TopAt(now)
			view.RequestsLeft = tariff.RequestsLeft
			expires := tariff.ListingExpires
			view.ListingExpires = &expires
		case errors.Is(err, pgrepo.ErrTariffNotFound):
		default:
			return View{}, err
		}
	}

	return view, nil
}

// GetPublic returns another user's questionnaire. Incomplete profiles are
// hidden.
func (s *Service) GetPublic(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.profiles == nil {
		return model.Profile{}, fmt.Errorf("profile store is nil")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}
	if !profile.IsComplete {
		return model.Profile{}, ErrProfileNotFound
	}

	return profile, nil
}

// Toggle flips feed visibility. Activation needs a valid tariff;
// deactivation is always allowed.
func (s *Service) Toggle(ctx context.Context, userID int64) (model.Profile, error) {
	if userID <= 0 {
		return model.Profile{}, ErrValidation
	}
	if s.profiles == nil || s.tariffs == nil {
		return model.Profile{}, fmt.Errorf("profiles dependencies are not configured")
	}

	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}

	if !profile.IsActive {
		if _, err := s.tariffs.CurrentValid(ctx, userID, s.now().UTC()); err != nil {
			if errors.Is(err, pgrepo.ErrTariffNotFound) {
				return model.Profile{}, ErrEntitlementRequired
			}
			return model.Profile{}, err
		}
	}

	updated, err := s.profiles.SetActive(ctx, userID, !profile.IsActive)
	if err != nil {
		if errors.Is(err, pgrepo.ErrProfileNotFound) {
			return model.Profile{}, ErrProfileNotFound
		}
		return model.Profile{}, err
	}

	return updated, nil
}
