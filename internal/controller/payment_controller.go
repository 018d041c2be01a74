package controller

import (
	"net/http"
	"strconv"
	"time"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/asciisd/cashier/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// PaymentController handles payment-related HTTP requests.
type PaymentController struct {
	paymentService *service.PaymentService
}

// NewPaymentController creates a new PaymentController.
func NewPaymentController(paymentService *service.PaymentService) *PaymentController {
	return &PaymentController{paymentService: paymentService}
}

// Charge handles POST /api/v1/payments
func (h *PaymentController) Charge(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, false)
}

// Authorize handles POST /api/v1/payments/authorize
func (h *PaymentController) Authorize(w http.ResponseWriter, r *http.Request) {
	h.charge(w, r, true)
}

func (h *PaymentController) charge(w http.ResponseWriter, r *http.Request, authorize bool) {
	var req ChargeRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	svcReq := service.ChargeRequest{
		ProcessorName:      req.Processor,
		Payable:            method.OwnerRef{Type: req.PayableType, ID: req.PayableID},
		Amount:             req.Amount,
		Currency:           req.Currency,
		Description:        req.Description,
		PaymentMethodToken: req.PaymentMethodToken,
		Customer:           req.Customer,
		Metadata:           req.Metadata,
	}
	if req.PaymentMethodID != nil {
		id, err := uuid.Parse(*req.PaymentMethodID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid payment_method_id", Code: "invalid_id"})
			return
		}
		svcReq.PaymentMethodID = &id
	}

	var (
		t   *transaction.Transaction
		err error
	)
	if authorize {
		t, err = h.paymentService.Authorize(r.Context(), svcReq)
	} else {
		t, err = h.paymentService.Charge(r.Context(), svcReq)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromTransaction(t))
}

// GetTransaction handles GET /api/v1/payments/{id}
func (h *PaymentController) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	t, err := h.paymentService.GetTransaction(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// ListTransactions handles GET /api/v1/payments
func (h *PaymentController) ListTransactions(w http.ResponseWriter, r *http.Request) {
	filter := transaction.ListFilter{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := transaction.PaymentStatus(s)
		filter.Status = &status
	}
	if s := q.Get("processor"); s != "" {
		filter.ProcessorName = &s
	}
	if s := q.Get("currency"); s != "" {
		filter.Currency = &s
	}
	if ownerType, ownerID := q.Get("payable_type"), q.Get("payable_id"); ownerType != "" && ownerID != "" {
		filter.Payable = &method.OwnerRef{Type: ownerType, ID: ownerID}
	}
	if s := q.Get("amount"); s != "" {
		if amount, err := strconv.ParseInt(s, 10, 64); err == nil {
			filter.Amount = &amount
		}
	}
	if s := q.Get("created_after"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			filter.CreatedAfter = &ts
		}
	}
	if s := q.Get("created_before"); s != "" {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			filter.CreatedBefore = &ts
		}
	}
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))
	filter.Offset, _ = strconv.Atoi(q.Get("offset"))
	filter.SortBy = q.Get("sort_by")
	filter.SortOrder = q.Get("sort_order")

	transactions, err := h.paymentService.ListTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*TransactionResponse, 0, len(transactions))
	for _, t := range transactions {
		resp = append(resp, FromTransaction(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Capture handles POST /api/v1/payments/{id}/capture
func (h *PaymentController) Capture(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	var req CaptureRequest
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	t, err := h.paymentService.Capture(r.Context(), service.CaptureRequest{
		TransactionID: id,
		Amount:        req.Amount,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// Void handles POST /api/v1/payments/{id}/void
func (h *PaymentController) Void(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	t, err := h.paymentService.Void(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, FromTransaction(t))
}

// Refund handles POST /api/v1/payments/{id}/refund
func (h *PaymentController) Refund(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	var req RefundRequest
	if r.ContentLength > 0 {
		if err := decodeAndValidate(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	ref, err := h.paymentService.Refund(r.Context(), service.RefundRequest{
		TransactionID: id,
		Amount:        req.Amount,
		Reason:        req.Reason,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, FromRefund(ref))
}

// ListRefunds handles GET /api/v1/payments/{id}/refunds
func (h *PaymentController) ListRefunds(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid transaction id", Code: "invalid_id"})
		return
	}

	refunds, err := h.paymentService.ListRefunds(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]*RefundResponse, 0, len(refunds))
	for _, ref := range refunds {
		resp = append(resp, FromRefund(ref))
	}
	writeJSON(w, http.StatusOK, resp)
}

// OwnerSummary handles GET /api/v1/owners/{type}/{id}/summary
func (h *PaymentController) OwnerSummary(w http.ResponseWriter, r *http.Request) {
	owner := method.OwnerRef{
		Type: chi.URLParam(r, "type"),
		ID:   chi.URLParam(r, "id"),
	}

	summary, err := h.paymentService.OwnerSummary(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := &OwnerSummaryResponse{
		OwnerType:          summary.Owner.Type,
		OwnerID:            summary.Owner.ID,
		TotalPaidAmount:    summary.TotalPaidAmount,
		TransactionCount:   summary.TransactionCount,
		SucceededCount:     summary.SucceededCount,
		PaymentMethodCount: summary.PaymentMethodCount,
	}
	if summary.DefaultPaymentMethod != nil {
		resp.DefaultPaymentMethod = FromPaymentMethod(summary.DefaultPaymentMethod)
	}
	writeJSON(w, http.StatusOK, resp)
}
