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

// PaytikoAPI is the narrow transport seam for the Paytiko regional backend.
type PaytikoAPI interface {
	CreatePayment(ctx context.Context, req PaytikoPaymentRequest) (*PaytikoPayment, error)
	RefundPayment(ctx context.Context, req PaytikoRefundRequest) (*PaytikoRefund, error)
}

// PaytikoPaymentRequest is the outbound payment payload. Method names the
// regional wallet rail (fawry, vodafone, orange, etisalat, instapay, valu).
type PaytikoPaymentRequest struct {
	Amount      int64
	Currency    string
	Method      string
	Description string
	Metadata    map[string]any
}

// PaytikoPayment mirrors the gateway's payment object.
type PaytikoPayment struct {
	ID            string
	Status        string
	Amount        int64
	Currency      string
	Method        string
	FailureReason string
}

// PaytikoRefundRequest is the outbound refund payload. A nil Amount refunds
// the full remaining payment amount.
type PaytikoRefundRequest struct {
	PaymentID string
	Amount    *int64
}

// PaytikoRefund mirrors the gateway's refund object.
type PaytikoRefund struct {
	ID        string
	PaymentID string
	Status    string
	Amount    int64
	Currency  string
}

// PaytikoProcessor handles regional wallet payments. It supports only
// charge, refund and webhooks; capture, authorize, void and status
// retrieval fall through to the Base unsupported-operation defaults.
type PaytikoProcessor struct {
	*Base
	api PaytikoAPI
}

// PaytikoOption customizes a PaytikoProcessor.
type PaytikoOption func(*PaytikoProcessor)

// WithPaytikoAPI substitutes the transport.
func WithPaytikoAPI(api PaytikoAPI) PaytikoOption {
	return func(p *PaytikoProcessor) { p.api = api }
}

// NewPaytikoProcessor creates the Paytiko processor. Without options it
// talks to a simulated in-memory gateway.
func NewPaytikoProcessor(config Config, opts ...PaytikoOption) *PaytikoProcessor {
	p := &PaytikoProcessor{
		Base: NewBase("paytiko", config,
			[]Feature{FeatureCharge, FeatureRefund, FeatureWebhooks}),
		api: NewSimulatedPaytikoAPI(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Charge processes a payment through a regional wallet.
func (p *PaytikoProcessor) Charge(ctx context.Context, data ChargeData) (*PaymentResult, error) {
	validated, err := p.ValidatePaymentData(data)
	if err != nil {
		return nil, err
	}

	railMethod := orDefault(validated.PaymentMethod, string(method.BrandFawry))
	resp, err := p.api.CreatePayment(ctx, PaytikoPaymentRequest{
		Amount:      validated.Amount,
		Currency:    validated.Currency,
		Method:      railMethod,
		Description: orDefault(validated.Description, "Payment via Paytiko"),
		Metadata:    validated.Metadata,
	})
	if err != nil {
		return nil, domainErrors.NewProcessingError("paytiko", "", nil, err)
	}

	switch resp.Status {
	case "completed":
		result := p.SuccessResult(resp.ID, validated.Amount, validated.Currency,
			"Payment processed successfully", validated.Metadata)
		result.PaymentMethod = walletSnapshot(resp.Method)
		return result, nil
	case "pending":
		// Regional rails settle out-of-band; the payment is accepted but
		// not yet confirmed.
		result := p.SuccessResult(resp.ID, validated.Amount, validated.Currency,
			"Payment pending confirmation", validated.Metadata)
		result.Status = transaction.StatusPending
		result.PaymentMethod = walletSnapshot(resp.Method)
		return result, nil
	default:
		return p.FailureResult(resp.ID, validated.Amount, validated.Currency,
			orDefault(resp.FailureReason, "Payment failed"), resp.Status, nil), nil
	}
}

// Refund refunds a payment. A nil amount refunds the remaining amount.
func (p *PaytikoProcessor) Refund(ctx context.Context, transactionID string, amount *int64) (*RefundResult, error) {
	resp, err := p.api.RefundPayment(ctx, PaytikoRefundRequest{PaymentID: transactionID, Amount: amount})
	if err != nil {
		return nil, domainErrors.NewProcessingError("paytiko", transactionID, nil, err)
	}

	success := resp.Status == "completed"
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

// walletSnapshot builds a snapshot from a regional rail name, mapping
// unknown rails to the explicit "other" brand.
func walletSnapshot(rail string) *method.Snapshot {
	if _, err := method.ParseBrand(rail); err != nil {
		rail = string(method.BrandOther)
	}
	snap, err := method.FromDigitalWallet(rail)
	if err != nil {
		return nil
	}
	return &snap
}

// SimulatedPaytikoAPI is an in-memory PaytikoAPI used in development and
// tests.
type SimulatedPaytikoAPI struct {
	mu       sync.Mutex
	payments map[string]*PaytikoPayment
	refunded map[string]int64
}

// NewSimulatedPaytikoAPI creates the in-memory gateway.
func NewSimulatedPaytikoAPI() *SimulatedPaytikoAPI {
	return &SimulatedPaytikoAPI{
		payments: make(map[string]*PaytikoPayment),
		refunded: make(map[string]int64),
	}
}

// CreatePayment simulates a payment.
func (a *SimulatedPaytikoAPI) CreatePayment(_ context.Context, req PaytikoPaymentRequest) (*PaytikoPayment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	payment := &PaytikoPayment{
		ID:       "ptk_" + uuid.New().String()[:20],
		Status:   "completed",
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
	}
	a.payments[payment.ID] = payment
	return payment, nil
}

// RefundPayment simulates a refund against a tracked payment.
func (a *SimulatedPaytikoAPI) RefundPayment(_ context.Context, req PaytikoRefundRequest) (*PaytikoRefund, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	payment, ok := a.payments[req.PaymentID]
	if !ok {
		return nil, fmt.Errorf("no such payment: %s", req.PaymentID)
	}

	remaining := payment.Amount - a.refunded[req.PaymentID]
	amount := remaining
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount > remaining {
		return nil, fmt.Errorf("refund amount %d exceeds remaining %d on payment %s", amount, remaining, req.PaymentID)
	}

	a.refunded[req.PaymentID] += amount
	return &PaytikoRefund{
		ID:        "ptk_rf_" + uuid.New().String()[:16],
		PaymentID: req.PaymentID,
		Status:    "completed",
		Amount:    amount,
		Currency:  payment.Currency,
	}, nil
}
