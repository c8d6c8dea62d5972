package handlers

import (
	"errors"
	"net/http"

	"github.com/Usergeee443/nikoh/internal/domain/model"
	"github.com/Usergeee443/nikoh/internal/domain/rules"
	tariffsvc "github.com/Usergeee443/nikoh/internal/services/tariffs"
	"github.com/Usergeee443/nikoh/internal/transport/http/dto"
	httperrors "github.com/Usergeee443/nikoh/internal/transport/http/errors"
)

type TariffsHandler struct {
	service *tariffsvc.Service
}

func NewTariffsHandler(service *tariffsvc.Service) *TariffsHandler {
	return &TariffsHandler{service: service}
}

func (h *TariffsHandler) Overview(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "TARIFFS_SERVICE_UNAVAILABLE", "tariffs service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), identity.UserID)
	if err != nil {
		handleTariffsError(w, err)
		return
	}

	plans := make([]dto.TariffPlanResponse, 0, len(overview.Plans))
	for _, plan := range overview.Plans {
		plans = append(plans, tariffPlanResponse(plan))
	}

	active := make([]dto.UserTariffResponse, 0, len(overview.Active))
	for _, grant := range overview.Active {
		active = append(active, userTariffResponse(grant))
	}

	response := dto.TariffOverviewResponse{
		Plans:      plans,
		Active:     active,
		CardNumber: overview.CardNumber,
		CardHolder: overview.CardHolder,
	}
	if overview.Current != nil {
		current := userTariffResponse(*overview.Current)
		response.Current = &current
	}
	if overview.Pending != nil {
		pending := paymentResponse(*overview.Pending)
		response.Pending = &pending
	}

	httperrors.Write(w, http.StatusOK, response)
}

func (h *TariffsHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "TARIFFS_SERVICE_UNAVAILABLE", "tariffs service is unavailable")
		return
	}
	identity, ok := requireIdentity(w, r)
	if !ok {
		return
	}

	var req dto.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	payment, _, err := h.service.Purchase(r.Context(), identity.UserID, req.TariffID)
	if err != nil {
		handleTariffsError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.PurchaseResponse{
		Payment:    paymentResponse(payment),
		CardNumber: h.service.CardNumber(),
		CardHolder: h.service.CardHolder(),
	})
}

func handleTariffsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tariffsvc.ErrUnknownTariff):
		writeBadRequest(w, "UNKNOWN_TARIFF", "unknown tariff id")
	case errors.Is(err, tariffsvc.ErrPendingExists):
		writeBadRequest(w, "PENDING_PAYMENT_EXISTS", "a pending payment already exists")
	case errors.Is(err, tariffsvc.ErrPaymentResolved):
		writeBadRequest(w, "PAYMENT_RESOLVED", "payment is already resolved")
	case errors.Is(err, tariffsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", "request validation failed")
	case errors.Is(err, tariffsvc.ErrPaymentNotFound):
		writeNotFound(w, "PAYMENT_NOT_FOUND", "payment not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func tariffPlanResponse(plan rules.TariffPlan) dto.TariffPlanResponse {
	return dto.TariffPlanResponse{
		ID:          plan.ID,
		Name:        plan.Name,
		Price:       plan.Price,
		Requests:    plan.Requests,
		ListingDays: plan.ListingDays,
		TopDays:     plan.TopDays,
	}
}

func userTariffResponse(tariff model.UserTariff) dto.UserTariffResponse {
	return dto.UserTariffResponse{
		TariffID:       tariff.TariffID,
		RequestsLeft:   tariff.RequestsLeft,
		RequestsTotal:  tariff.RequestsTotal,
		ListingExpires: tariff.ListingExpires,
		TopExpires:     tariff.TopExpires,
	}
}

func paymentResponse(payment model.PaymentRequest) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:         payment.ID,
		TariffID:   payment.TariffID,
		Amount:     payment.Amount,
		Status:     payment.Status.String(),
		HasReceipt: payment.ReceiptFileID != "",
		CreatedAt:  payment.CreatedAt,
	}
}
