package processor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/google/uuid"
)

// StripeAPI is the narrow transport seam for the Stripe backend. The
// processor never performs network I/O itself, so tests and local setups can
// substitute the transport without touching contract or ledger logic.
type StripeAPI interface {
	CreateCharge(ctx context.Context, req StripeChargeRequest) (*StripeCharge, error)
	CreateRefund(ctx context.Context, req StripeRefundRequest) (*StripeRefund, error)
	CaptureCharge(ctx context.Context, chargeID string, amount *int64) (*StripeCharge, error)
	GetCharge(ctx context.Context, chargeID string) (*StripeCharge, error)
}

// StripeChargeRequest is the outbound charge payload.
type StripeChargeRequest struct {
	Amount      int64
	Currency    string
	Source      string
	Description string
	Capture     bool
	Metadata    map[string]any
}

// StripeRefundRequest is the outbound refund payload. A nil Amount refunds
// the full remaining charge amount; the gateway resolves it.
type StripeRefundRequest struct {
	ChargeID string
	Amount   *int64
}

// StripeCharge mirrors the gateway's charge object.
type StripeCharge struct {
	ID             string
	Status         string
	Amount         int64
	Currency       string
	Captured       bool
	FailureCode    string
	FailureMessage string
	CardBrand      string
	CardLast4      string
	Metadata       map[string]any
}

// StripeRefund mirrors the gateway's refund object.
type StripeRefund struct {
	ID       string
	ChargeID string
	Status   string
	Amount   int64
	Currency string
}

// StripeProcessor handles the Stripe rail. It supports the full feature
// set; authorize is a charge with capture disabled and void is a full
// refund, matching the gateway's semantics.
type StripeProcessor struct {
	*Base
	api StripeAPI
}

// StripeOption customizes a StripeProcessor.
type StripeOption func(*StripeProcessor)

// WithStripeAPI substitutes the transport.
func WithStripeAPI(api StripeAPI) StripeOption {
	return func(p *StripeProcessor) { p.api = api }
}

// NewStripeProcessor creates the Stripe processor. Without options it talks
// to a simulated in-memory gateway.
func NewStripeProcessor(config Config, opts ...StripeOption) *StripeProcessor {
	p := &StripeProcessor{
		Base: NewBase("stripe", config, []Feature{
			FeatureCharge, FeatureRefund, FeatureCapture,
			FeatureAuthorize, FeatureVoid, FeatureWebhooks, FeatureRecurring,
		}),
		api: NewSimulatedStripeAPI(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Charge processes a payment through Stripe.
func (p *StripeProcessor) Charge(ctx context.Context, data ChargeData) (*PaymentResult, error) {
	return p.charge(ctx, data, true)
}

// Authorize places a hold without capturing. The result status is
// requires_capture until Capture is called.
func (p *StripeProcessor) Authorize(ctx context.Context, data ChargeData) (*PaymentResult, error) {
	return p.charge(ctx, data, false)
}

func (p *StripeProcessor) charge(ctx context.Context, data ChargeData, capture bool) (*PaymentResult, error) {
	validated, err := p.ValidatePaymentData(data)
	if err != nil {
		return nil, err
	}

	resp, err := p.api.CreateCharge(ctx, StripeChargeRequest{
		Amount:      validated.Amount,
		Currency:    strings.ToLower(validated.Currency),
		Source:      validated.PaymentMethod,
		Description: orDefault(validated.Description, "Payment via Stripe"),
		Capture:     capture,
		Metadata:    validated.Metadata,
	})
	if err != nil {
		return nil, domainErrors.NewProcessingError("stripe", "", nil, err)
	}

	if resp.Status != "succeeded" {
		return p.FailureResult(
			resp.ID, validated.Amount, validated.Currency,
			orDefault(resp.FailureMessage, "Payment failed"),
			resp.FailureCode, resp.Metadata,
		), nil
	}

	result := p.SuccessResult(resp.ID, validated.Amount, validated.Currency, "Payment processed successfully", resp.Metadata)
	if !resp.Captured {
		result.Status = transaction.StatusRequiresCapture
		result.Message = "Payment authorized, awaiting capture"
	}
	result.PaymentMethod = cardSnapshot(resp.CardBrand, resp.CardLast4)
	return result, nil
}

// Refund refunds a charge. A nil amount refunds the remaining charge
// amount.
func (p *StripeProcessor) Refund(ctx context.Context, transactionID string, amount *int64) (*RefundResult, error) {
	resp, err := p.api.CreateRefund(ctx, StripeRefundRequest{ChargeID: transactionID, Amount: amount})
	if err != nil {
		return nil, domainErrors.NewProcessingError("stripe", transactionID, nil, err)
	}

	success := resp.Status == "succeeded"
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
		Currency:              strings.ToUpper(resp.Currency),
		Message:               message,
	}, nil
}

// Capture captures a previously authorized charge.
func (p *StripeProcessor) Capture(ctx context.Context, transactionID string, amount *int64) (*PaymentResult, error) {
	resp, err := p.api.CaptureCharge(ctx, transactionID, amount)
	if err != nil {
		return nil, domainErrors.NewProcessingError("stripe", transactionID, nil, err)
	}

	if !resp.Captured {
		return p.FailureResult(resp.ID, resp.Amount, strings.ToUpper(resp.Currency),
			"Capture failed", resp.FailureCode, nil), nil
	}
	return p.SuccessResult(resp.ID, resp.Amount, strings.ToUpper(resp.Currency),
		"Payment captured successfully", nil), nil
}

// Void cancels a charge by refunding it in full.
func (p *StripeProcessor) Void(ctx context.Context, transactionID string) (*PaymentResult, error) {
	refund, err := p.Refund(ctx, transactionID, nil)
	if err != nil {
		return nil, err
	}

	status := transaction.StatusFailed
	message := "Void failed"
	if refund.Success {
		status = transaction.StatusCanceled
		message = "Payment voided"
	}
	return &PaymentResult{
		Success:       refund.Success,
		TransactionID: transactionID,
		Status:        status,
		Amount:        refund.Amount,
		Currency:      refund.Currency,
		Message:       message,
		ErrorCode:     refund.ErrorCode,
	}, nil
}

// PaymentStatus retrieves the charge status from the gateway.
func (p *StripeProcessor) PaymentStatus(ctx context.Context, transactionID string) (transaction.PaymentStatus, error) {
	resp, err := p.api.GetCharge(ctx, transactionID)
	if err != nil {
		return "", domainErrors.NewProcessingError("stripe", transactionID, nil, err)
	}

	switch resp.Status {
	case "succeeded":
		if !resp.Captured {
			return transaction.StatusRequiresCapture, nil
		}
		return transaction.StatusSucceeded, nil
	case "pending":
		return transaction.StatusPending, nil
	case "failed":
		return transaction.StatusFailed, nil
	default:
		return transaction.StatusProcessing, nil
	}
}

// cardSnapshot builds a snapshot from raw gateway card attributes. Brands
// outside the closed enumeration map to the explicit "other" brand before
// constructing, so the snapshot constructors never see unknown values.
func cardSnapshot(brand, last4 string) *method.Snapshot {
	if last4 == "" {
		return nil
	}
	if _, err := method.ParseBrand(brand); err != nil {
		brand = string(method.BrandOther)
	}
	snap, err := method.FromCardData(brand, last4)
	if err != nil {
		return nil
	}
	return &snap
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// SimulatedStripeAPI is an in-memory StripeAPI used in development and
// tests. Charges and refunds are tracked so capture, refund and status
// retrieval behave like the real gateway.
type SimulatedStripeAPI struct {
	mu       sync.Mutex
	charges  map[string]*StripeCharge
	refunded map[string]int64

	latency     time.Duration
	failureRate float64
	randFloat   func() float64
}

// SimulatedStripeOption customizes the simulated gateway.
type SimulatedStripeOption func(*SimulatedStripeAPI)

// WithStripeLatency adds simulated latency to every call.
func WithStripeLatency(d time.Duration) SimulatedStripeOption {
	return func(a *SimulatedStripeAPI) { a.latency = d }
}

// WithStripeFailureRate makes a fraction of charges fail (0.0 to 1.0).
func WithStripeFailureRate(rate float64, randFloat func() float64) SimulatedStripeOption {
	return func(a *SimulatedStripeAPI) {
		a.failureRate = rate
		a.randFloat = randFloat
	}
}

// NewSimulatedStripeAPI creates the in-memory gateway.
func NewSimulatedStripeAPI(opts ...SimulatedStripeOption) *SimulatedStripeAPI {
	a := &SimulatedStripeAPI{
		charges:  make(map[string]*StripeCharge),
		refunded: make(map[string]int64),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *SimulatedStripeAPI) wait(ctx context.Context) error {
	if a.latency == 0 {
		return nil
	}
	select {
	case <-time.After(a.latency):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CreateCharge simulates a charge. Source tokens of the form
// "tok_<brand>_<last4>" control the reported card attributes.
func (a *SimulatedStripeAPI) CreateCharge(ctx context.Context, req StripeChargeRequest) (*StripeCharge, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	charge := &StripeCharge{
		ID:        "ch_" + uuid.New().String()[:24],
		Status:    "succeeded",
		Amount:    req.Amount,
		Currency:  req.Currency,
		Captured:  req.Capture,
		CardBrand: "visa",
		CardLast4: "4242",
		Metadata:  req.Metadata,
	}
	if parts := strings.Split(req.Source, "_"); len(parts) == 3 && parts[0] == "tok" {
		charge.CardBrand = parts[1]
		charge.CardLast4 = parts[2]
	}
	if a.failureRate > 0 && a.randFloat != nil && a.randFloat() < a.failureRate {
		charge.Status = "failed"
		charge.FailureCode = "card_declined"
		charge.FailureMessage = "Your card was declined"
	}

	a.charges[charge.ID] = charge
	return charge, nil
}

// CreateRefund simulates a refund against a tracked charge.
func (a *SimulatedStripeAPI) CreateRefund(ctx context.Context, req StripeRefundRequest) (*StripeRefund, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	charge, ok := a.charges[req.ChargeID]
	if !ok {
		return nil, fmt.Errorf("no such charge: %s", req.ChargeID)
	}

	remaining := charge.Amount - a.refunded[req.ChargeID]
	amount := remaining
	if req.Amount != nil {
		amount = *req.Amount
	}
	if amount > remaining {
		return nil, fmt.Errorf("refund amount %d exceeds remaining %d on charge %s", amount, remaining, req.ChargeID)
	}

	a.refunded[req.ChargeID] += amount
	return &StripeRefund{
		ID:       "re_" + uuid.New().String()[:24],
		ChargeID: req.ChargeID,
		Status:   "succeeded",
		Amount:   amount,
		Currency: charge.Currency,
	}, nil
}

// CaptureCharge simulates capturing an authorized charge.
func (a *SimulatedStripeAPI) CaptureCharge(ctx context.Context, chargeID string, amount *int64) (*StripeCharge, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	charge, ok := a.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("no such charge: %s", chargeID)
	}
	charge.Captured = true
	if amount != nil {
		charge.Amount = *amount
	}
	return charge, nil
}

// GetCharge simulates retrieving a charge.
func (a *SimulatedStripeAPI) GetCharge(ctx context.Context, chargeID string) (*StripeCharge, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	charge, ok := a.charges[chargeID]
	if !ok {
		return nil, fmt.Errorf("no such charge: %s", chargeID)
	}
	return charge, nil
}
