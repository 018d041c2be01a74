package processor

import (
	"context"
	"fmt"
	"sync"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/google/uuid"
)

// PayPalAPI is the narrow transport seam for the PayPal backend.
type PayPalAPI interface {
	CreatePayment(ctx context.Context, req PayPalPaymentRequest) (*PayPalPayment, error)
	RefundSale(ctx context.Context, req PayPalRefundRequest) (*PayPalRefund, error)
	CaptureAuthorization(ctx context.Context, authorizationID string, amount *int64) (*PayPalPayment, error)
}

// PayPalPaymentRequest is the outbound payment payload. Intent is "sale"
// for an immediate charge or "authorize" for a hold.
type PayPalPaymentRequest struct {
	Intent      string
	Amount      int64
	Currency    string
	Description string
	Metadata    map[string]any
}

// PayPalPayment mirrors the gateway's payment object.
type PayPalPayment struct {
	ID            string
	State         string
	Amount        int64
	Currency      string
	FailureReason string
}

// PayPalRefundRequest is the outbound refund payload. A nil Amount refunds
// the full remaining sale amount.
type PayPalRefundRequest struct {
	SaleID string
	Amount *int64
}

// PayPalRefund mirrors the gateway's refund object.
type PayPalRefund struct {
	ID       string
	SaleID   string
	State    string
	Amount   int64
	Currency string
}

// PayPalProcessor handles the PayPal rail. It supports charge, refund,
// capture, authorize and webhooks; void and status retrieval fall through
// to the Base unsupported-operation defaults.
type PayPalProcessor struct {
	*Base
	api PayPalAPI
}

// PayPalOption customizes a PayPalProcessor.
type PayPalOption func(*PayPalProcessor)

// WithPayPalAPI substitutes the transport.
func WithPayPalAPI(api PayPalAPI) PayPalOption {
	return func(p *PayPalProcessor) { p.api = api }
}

// NewPayPalProcessor creates the PayPal processor. Without options it talks
// to a simulated in-memory gateway.
func NewPayPalProcessor(config Config, opts ...PayPalOption) *PayPalProcessor {
	p := &PayPalProcessor{
		Base: NewBase("paypal", config, []Feature{
			FeatureCharge, FeatureRefund, FeatureCapture,
			FeatureAuthorize, FeatureWebhooks,
		}),
		api: NewSimulatedPayPalAPI(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Charge processes an immediate sale.
func (p *PayPalProcessor) Charge(ctx context.Context, data ChargeData) (*PaymentResult, error) {
	return p.pay(ctx, data, "sale")
}

// Authorize places a hold without capturing.
func (p *PayPalProcessor) Authorize(ctx context.Context, data ChargeData) (*PaymentResult, error) {
	return p.pay(ctx, data, "authorize")
}

func (p *PayPalProcessor) pay(ctx context.Context, data ChargeData, intent string) (*PaymentResult, error) {
	validated, err := p.ValidatePaymentData(data)
	if err != nil {
		return nil, err
	}

	resp, err := p.api.CreatePayment(ctx, PayPalPaymentRequest{
		Intent:      intent,
		Amount:      validated.Amount,
		Currency:    validated.Currency,
		Description: orDefault(validated.Description, "Payment via PayPal"),
		Metadata:    validated.Metadata,
	})
	if err != nil {
		return nil, domainErrors.NewProcessingError("paypal", "", nil, err)
	}

	switch resp.State {
	case "approved", "completed":
		result := p.SuccessResult(resp.ID, validated.Amount, validated.Currency,
			"Payment processed successfully", validated.Metadata)
		snap, snapErr := method.FromDigitalWallet(string(method.BrandPayPal))
		if snapErr == nil {
			result.PaymentMethod = &snap
		}
		if intent == "authorize" {
			result.Status = transaction.StatusRequiresCapture
			result.Message = "Payment authorized, awaiting capture"
		}
		return result, nil
	default:
		return p.FailureResult(resp.ID, validated.Amount, validated.Currency,
			orDefault(resp.FailureReason, "Payment failed"), resp.State, nil), nil
	}
}

// Refund refunds a sale. A nil amount refunds the remaining sale amount.
func (p *PayPalProcessor) Refund(ctx context.Context, transactionID string, amount *int64) (*RefundResult, error) {
	resp, err := p.api.RefundSale(ctx, PayPalRefundRequest{SaleID: transactionID, Amount: amount})
	if err != nil {
		return nil, domainErrors.NewProcessingError("paypal", transactionID, nil, err)
	}

	success := resp.State == "completed"
	status := transaction.RefundStatusFailed
	message := "Refund failed"
	if success {
		status = transaction.RefundStatusSucceeded
		message = "Refund processed successfully"
	}
	return &RefundResult{
		Success:               success,
		RefundID:              resp.ID,
		OriginalTransactionID: transactionID,
		Status:                status,
		Amount:                resp.Amount,
		Currency:              resp.Currency,
		Message:               message,
	}, nil
}

// Capture captures a previously authorized payment.
func (p *PayPalProcessor) Capture(ctx context.Context, transactionID string, amount *int64) (*PaymentResult, error) {
	resp, err := p.api.CaptureAuthorization(ctx, transactionID, amount)
	if err != nil {
		return nil, domainErrors.NewProcessingError("paypal", transactionID, nil, err)
	}

	if resp.State != "completed" {
		return p.FailureResult(resp.ID, resp.Amount, resp.Currency,
			"Capture failed", resp.State, nil), nil
	}
	return p.SuccessResult(resp.ID, resp.Amount, resp.Currency,
		"Payment captured successfully", nil), nil
}

// SimulatedPayPalAPI is an in-memory PayPalAPI used in development and
// tests.
type SimulatedPayPalAPI struct {
	mu       sync.Mutex
	payments map[string]*PayPalPayment
	refunded map[string]int64
}

// NewSimulatedPayPalAPI creates the in-memory gateway.
func NewSimulatedPayPalAPI() *SimulatedPayPalAPI {
	return &SimulatedPayPalAPI{
		payments: make(map[string]*PayPalPayment),
		refunded: make(map[string]int64),
	}
}

// CreatePayment simulates a payment.
func (a *SimulatedPayPalAPI) CreatePayment(_ context.Context, req PayPalPaymentRequest) (*PayPalPayment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	state := "approved"
	if req.Intent == "sale" {
		state = "completed"
	}
	payment := &PayPalPayment{
		ID:       "PAY-" + uuid.New().String()[:17],
		State:    state,
		Amount:   req.Amount,
		Currency: req.Currency,
	}
	a.payments[payment.ID] = payment
	return payment, nil
}

// RefundSale simulates a refund against a tracked payment.
func (a *SimulatedPayPalAPI) RefundSale(_ context.Context, req PayPalRefundRequest) (*PayPalRefund, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	payment, ok := a.payments[req.SaleID]
	if !ok {
		return nil, fmt.Errorf("no such sale: %s", req.SaleID)
	}

	remaining := payment.Amount - a.refunded[req.SaleID]
	amount := remaining
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount > remaining {
		return nil, fmt.Errorf("refund amount %d exceeds remaining %d on sale %s", amount, remaining, req.SaleID)
	}

	a.refunded[req.SaleID] += amount
	return &PayPalRefund{
		ID:       "RF-" + uuid.New().String()[:17],
		SaleID:   req.SaleID,
		State:    "completed",
		Amount:   amount,
		Currency: payment.Currency,
	}, nil
}

// CaptureAuthorization simulates capturing an authorization.
func (a *SimulatedPayPalAPI) CaptureAuthorization(_ context.Context, authorizationID string, amount *int64) (*PayPalPayment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	payment, ok := a.payments[authorizationID]
	if !ok {
		return nil, fmt.Errorf("no such authorization: %s", authorizationID)
	}
	payment.State = "completed"
	if amount != nil {
		payment.Amount = *amount
	}
	return payment, nil
}
