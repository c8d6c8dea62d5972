package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	authsvc "github.com/Usergeee443/nikoh/internal/services/auth"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type AuthHandler struct {
	service *authsvc.Service
}

func NewAuthHandler(service *authsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

// Telegram authenticates the Mini App session and returns the account with
// its badge counters.
func (h *AuthHandler) Telegram(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.TelegramAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Authenticate(r.Context(), req.InitData)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AuthResponse{
		User:            authUserResponse(res.User),
		UnreadMessages:  res.Counts.UnreadMessages,
		PendingRequests: res.Counts.PendingRequests,
		HasActiveTariff: res.Counts.HasActiveTariff,
		TariffID:        res.Counts.TariffID,
		RequestsLeft:    res.Counts.RequestsLeft,
	})
}

func authUserResponse(user model.User) dto.AuthUserResponse {
	return dto.AuthUserResponse{
		ID:         user.ID,
		TelegramID: strconv.FormatInt(user.TelegramID, 10),
		Username:   user.Username,
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		IsAdmin:    user.IsAdmin,
	}
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	case errors.Is(err, authsvc.ErrBlocked):
		writeForbidden(w, "BLOCKED", "account is blocked")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func ageFromBirthYear(birthYear int, now time.Time) int {
	if birthYear <= 0 {
		return 0
	}
	age := now.Year() - birthYear
	if age < 0 {
		return 0
	}
	return age
}
