package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	adminsvc "github.com/Usergeee443/nikoh/internal/services/admin"
	tariffsvc "github.com/Usergeee443/nikoh/internal/services/tariffs"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type AdminHandler struct {
	service *adminsvc.Service
}

func NewAdminHandler(service *adminsvc.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminStatsResponse{
		TotalUsers:       stats.TotalUsers,
		BlockedUsers:     stats.BlockedUsers,
		CompleteProfiles: stats.CompleteProfiles,
		ActiveProfiles:   stats.ActiveProfiles,
		MaleProfiles:     stats.MaleProfiles,
		FemaleProfiles:   stats.FemaleProfiles,
		PendingPayments:  stats.PendingPayments,
		ApprovedPayments: stats.ApprovedPayments,
		ApprovedAmount:   stats.ApprovedAmount,
		ActiveTariffs:    stats.ActiveTariffs,
		TotalRequests:    stats.TotalRequests,
		AcceptedRequests: stats.AcceptedRequests,
		ActiveChats:      stats.ActiveChats,
		TotalMessages:    stats.TotalMessages,
	})
}

func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 100)
	records, err := h.service.ListPendingPayments(r.Context(), limit)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	items := make([]dto.AdminPaymentResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AdminPaymentResponse{
			Payment:     paymentResponse(record.Payment),
			UserID:      record.Payment.UserID,
			TelegramID:  strconv.FormatInt(record.TelegramID, 10),
			Username:    record.Username,
			ProfileName: record.ProfileName,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.AdminPaymentsResponse{Items: items})
}

func (h *AdminHandler) ResolvePayment(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil || paymentID <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "payment id must be a positive integer")
		return
	}

	var req dto.AdminPaymentActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	decision, err := h.service.ResolvePayment(r.Context(), paymentID, req.Action)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	response := dto.AdminPaymentActionResponse{Payment: paymentResponse(decision.Payment)}
	if decision.Tariff != nil {
		tariff := userTariffResponse(*decision.Tariff)
		response.Tariff = &tariff
	}

	httperrors.Write(w, http.StatusOK, response)
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 100)
	records, err := h.service.ListUsers(r.Context(), limit)
	if err != nil {
		handleAdminError(w, err)
		return
	}

	items := make([]dto.AdminUserResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.AdminUserResponse{
			ID:            record.User.ID,
			TelegramID:    strconv.FormatInt(record.User.TelegramID, 10),
			Username:      record.User.Username,
			FirstName:     record.User.FirstName,
			IsAdmin:       record.User.IsAdmin,
			IsBlocked:     record.User.IsBlocked,
			HasProfile:    record.HasProfile,
			ProfileName:   record.ProfileName,
			Gender:        record.Gender,
			Region:        record.Region,
			ProfileActive: record.ProfileActive,
			CreatedAt:     record.User.CreatedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.AdminUsersResponse{Items: items})
}

func (h *AdminHandler) UserAction(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "ADMIN_SERVICE_UNAVAILABLE", "admin service is unavailable")
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

	var req dto.AdminUserActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	var blocked bool
	switch req.Action {
	case "block":
		blocked = true
	case "unblock":
		blocked = false
	default:
		writeBadRequest(w, "VALIDATION_ERROR", "action must be block or unblock")
		return
	}

	if err := h.service.SetBlocked(r.Context(), identity.UserID, targetID, blocked); err != nil {
		handleAdminError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.AdminUserActionResponse{OK: true})
}

func handleAdminError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, adminsvc.ErrValidation), errors.Is(err, tariffsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, adminsvc.ErrSelfAction):
		writeBadRequest(w, "SELF_ACTION", "cannot act on yourself")
	case errors.Is(err, tariffsvc.ErrPaymentResolved):
		writeBadRequest(w, "PAYMENT_RESOLVED", "payment is already resolved")
	case errors.Is(err, tariffsvc.ErrPaymentNotFound):
		writeNotFound(w, "PAYMENT_NOT_FOUND", "payment not found")
	case errors.Is(err, adminsvc.ErrUserNotFound):
		writeNotFound(w, "USER_NOT_FOUND", "user not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
