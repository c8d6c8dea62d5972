package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	pgrepo "github.com/Usergeee443/nikoh/internal/repo/postgres"
	requestsvc "github.com/Usergeee443/nikoh/internal/services/requests"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type RequestsHandler struct {
	service *requestsvc.Service
}

func NewRequestsHandler(service *requestsvc.Service) *RequestsHandler {
	return &RequestsHandler{service: service}
}

func (h *RequestsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.CreateMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	result, err := h.service.Create(r.Context(), identity.UserID, req.ReceiverID, req.Message)
	if err != nil {
		handleRequestsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.CreateMatchResponse{
		Request:      matchRequestResponse(result.Request),
		RequestsLeft: result.RequestsLeft,
	})
}

func (h *RequestsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var (
		records []pgrepo.RequestCardRecord
		err     error
	)
	switch r.URL.Query().Get("type") {
	case "", "received":
		records, err = h.service.ListReceived(r.Context(), identity.UserID)
	case "sent":
		records, err = h.service.ListSent(r.Context(), identity.UserID)
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "type must be received or sent")
		return
	}
	if err != nil {
		handleRequestsError(w, err)
		return
	}

	now := time.Now().UTC()
	items := make([]dto.RequestCardResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.RequestCardResponse{
			Request: matchRequestResponse(record.Request),
			Counterpart: dto.FeedCardResponse{
				UserID:        record.CounterpartID,
				Name:          record.Name,
				Age:           ageFromBirthYear(record.BirthYear, now),
				Region:        record.Region,
				Nationality:   record.Nationality,
				MaritalStatus: record.MaritalStatus,
				Profession:    record.Profession,
			},
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RequestsResponse{Items: items})
}

func (h *RequestsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "REQUESTS_SERVICE_UNAVAILABLE", "requests service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	requestID, err := strconv.ParseInt(chi.URLParam(r, "requestID"), 10, 64)
	if err != nil || requestID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "request id must be a positive integer")
		return
	}

	var req dto.RespondRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	switch req.Action {
	case "accept":
		request, chat, err := h.service.Accept(r.Context(), requestID, identity.UserID)
		if err != nil {
			handleRequestsError(w, err)
			return
		}
		httperrors.Write(w, http.StatusOK, dto.RespondResponse{
			Request: matchRequestResponse(request),
			ChatID:  chat.ID,
		})
	case "reject":
		request, err := h.service.Reject(r.Context(), requestID, identity.UserID)
		if err != nil {
			handleRequestsError(w, err)
			return
		}
		httperrors.Write(w, http.StatusOK, dto.RespondResponse{
			Request: matchRequestResponse(request),
		})
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "action must be accept or reject")
	}
}

func handleRequestsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, requestsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, requestsvc.ErrDuplicate):
		writeBadRequest(w, "DUPLICATE_REQUEST", "a request for this pair already exists")
	case errors.Is(err, requestsvc.ErrRequestResolved):
		writeBadRequest(w, "REQUEST_RESOLVED", "request is already resolved")
	case errors.Is(err, requestsvc.ErrNoQuota):
		writeForbidden(w, "NO_QUOTA", "no request quota left on the current tariff")
	case errors.Is(err, requestsvc.ErrProfileIncomplete):
		writeForbidden(w, "PROFILE_INCOMPLETE", "fill in your profile before sending requests")
	case errors.Is(err, requestsvc.ErrReceiverNotFound):
		writeNotFound(w, "RECEIVER_NOT_FOUND", "receiver not found")
	case errors.Is(err, requestsvc.ErrRequestNotFound):
		writeNotFound(w, "REQUEST_NOT_FOUND", "request not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func matchRequestResponse(request model.MatchRequest) dto.MatchRequestResponse {
	return dto.MatchRequestResponse{
		ID:          request.ID,
		SenderID:    request.SenderID,
		ReceiverID:  request.ReceiverID,
		Message:     request.Message,
		Status:      request.Status.String(),
		CreatedAt:   request.CreatedAt,
		RespondedAt: request.RespondedAt,
	}
}
