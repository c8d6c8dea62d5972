package handlers

import (
	"errors"
	"net/http"
	"time"

	favoritesvc "github.com/Usergeee443/nikoh/internal/services/favorites"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type FavoritesHandler struct {
	service *favoritesvc.Service
}

func NewFavoritesHandler(service *favoritesvc.Service) *FavoritesHandler {
	return &FavoritesHandler{service: service}
}

func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.ToggleFavoriteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	isFavorite, err := h.service.Toggle(r.Context(), identity.UserID, req.TargetID)
	if err != nil {
		handleFavoritesError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ToggleFavoriteResponse{IsFavorite: isFavorite})
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "FAVORITES_SERVICE_UNAVAILABLE", "favorites service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	records, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleFavoritesError(w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]dto.FavoriteItemResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.FavoriteItemResponse{
			TargetID:      record.TargetID,
			Name:          record.Name,
			Age:           ageFromBirthYear(record.BirthYear, now),
			Region:        record.Region,
			MaritalStatus: record.MaritalStatus,
			IsActive:      record.IsActive,
			SavedAt:       record.SavedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.FavoritesResponse{Items: items})
}

func handleFavoritesError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, favoritesvc.ErrSelfFavorite):
		writeBadRequest(w, "SELF_FAVORITE", "cannot favorite yourself")
	case errors.Is(err, favoritesvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
