package controller

import (
	"net/http"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentMethodController handles stored payment method HTTP requests.
type PaymentMethodController struct {
	methodService *service.PaymentMethodService
}

// NewPaymentMethodController creates a new PaymentMethodController.
func NewPaymentMethodController(methodService *service.PaymentMethodService) *PaymentMethodController {
	return &PaymentMethodController{methodService: methodService}
}

// Create handles POST /api/v1/payment-methods
func (h *PaymentMethodController) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentMethodRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	pm, err := h.methodService.Create(r.Context(), service.CreatePaymentMethodRequest{
		Owner:                    method.OwnerRef{Type: req.OwnerType, ID: req.OwnerID},
		ProcessorName:            req.Processor,
		ProcessorPaymentMethodID: req.ProcessorPaymentMethodID,
		Brand:                    req.Brand,
		LastFour:                 req.LastFour,
		ExpMonth:                 req.ExpMonth,
		ExpYear:                  req.ExpYear,
		IsDefault:                req.IsDefault,
		Metadata:                 req.Metadata,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromPaymentMethod(pm))
}

// Get handles GET /api/v1/payment-methods/{id}
func (h *PaymentMethodController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment method id", Code: "invalid_id"})
		return
	}

	pm, err := h.methodService.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentMethod(pm))
}

// Delete handles DELETE /api/v1/payment-methods/{id}
func (h *PaymentMethodController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment method id", Code: "invalid_id"})
		return
	}

	if err := h.methodService.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListByOwner handles GET /api/v1/owners/{type}/{id}/payment-methods
func (h *PaymentMethodController) ListByOwner(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromURL(r)

	methods, err := h.methodService.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*PaymentMethodResponse, 0, len(methods))
	for _, pm := range methods {
		resp = append(resp, FromPaymentMethod(pm))
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetDefault handles GET /api/v1/owners/{type}/{id}/payment-methods/default
func (h *PaymentMethodController) GetDefault(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromURL(r)

	pm, err := h.methodService.GetDefault(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromPaymentMethod(pm))
}

// SetDefault handles PUT /api/v1/owners/{type}/{id}/payment-methods/{methodID}/default
func (h *PaymentMethodController) SetDefault(w http.ResponseWriter, r *http.Request) {
	owner := ownerFromURL(r)

	methodID, err := uuid.Parse(chi.URLParam(r, "methodID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment method id", Code: "invalid_id"})
		return
	}

	if err := h.methodService.SetDefault(r.Context(), owner, methodID); err != nil {
		writeError(w, err)
		return
	}

	pm, err := h.methodService.Get(r.Context(), methodID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, FromPaymentMethod(pm))
}

func ownerFromURL(r *http.Request) method.OwnerRef {
	return method.OwnerRef{
		Type: chi.URLParam(r, "type"),
		ID:   chi.URLParam(r, "id"),
	}
}
