package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	feedsvc "github.com/Usergeee443/nikoh/internal/services/feed"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type FeedHandler struct {
	service *feedsvc.Service
}

func NewFeedHandler(service *feedsvc.Service) *FeedHandler {
	return &FeedHandler{service: service}
}

func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	page := parseIntOrDefault(r.URL.Query().Get("page"), 1)
	pageSize := parseIntOrDefault(r.URL.Query().Get("page_size"), 0)

	result, err := h.service.List(r.Context(), identity.UserID, page, pageSize)
	if err != nil {
		handleFeedError(w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]dto.FeedCardResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, feedCardResponse(item, now))
	}

	httperrors.Write(w, http.StatusOK, dto.FeedResponse{
		Items: items,
		Pagination: dto.PaginationResponse{
			Page:       result.Page,
			PageSize:   result.PageSize,
			Total:      result.Total,
			TotalPages: totalPages(result.Total, result.PageSize),
		},
	})
}

func (h *FeedHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FEED_SERVICE_UNAVAILABLE", "feed service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	targetID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || targetID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "user id must be a positive integer")
		return
	}

	detail, err := h.service.Detail(r.Context(), identity.UserID, targetID)
	if err != nil {
		handleFeedError(w, err)
		return
	}

	now := time.Now().UTC()
	response := dto.FeedDetailResponse{
		Profile:     profileResponse(detail.Profile, now),
		IsTop:       detail.IsTop,
		IsFavorite:  detail.IsFavorite,
		RequestSent: detail.RequestStatus != nil,
	}
	if detail.RequestStatus != nil {
		response.RequestStatus = detail.RequestStatus.String()
	}

	httperrors.Write(w, http.StatusOK, response)
}

func handleFeedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, feedsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, feedsvc.ErrProfileIncomplete):
		writeForbidden(w, "PROFILE_INCOMPLETE", "fill in your profile to browse the feed")
	case errors.Is(err, feedsvc.ErrNotFound):
		writeNotFound(w, "LISTING_NOT_FOUND", "listing not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func feedCardResponse(card feedsvc.Card, now time.Time) dto.FeedCardResponse {
	return dto.FeedCardResponse{
		UserID:         card.Profile.UserID,
		Name:           card.Profile.Name,
		Age:            card.Profile.Age(now),
		Region:         card.Profile.Region,
		Nationality:    card.Profile.Nationality,
		MaritalStatus:  card.Profile.MaritalStatus,
		Profession:     card.Profile.Profession,
		ReligiousLevel: card.Profile.ReligiousLevel,
		IsTop:          card.IsTop,
	}
}

func parseIntOrDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func totalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	pages := total / int64(pageSize)
	if total%int64(pageSize) != 0 {
		pages++
	}
	return pages
}
