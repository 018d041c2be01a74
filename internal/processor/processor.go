// Package processor defines the contract every payment processor backend
// implements, the immutable result values processor operations return, and
// the registry the application resolves processors from.
//
// A processor handles one payment rail. It owns all outbound gateway calls
// (behind a narrow transport seam so tests can substitute them) and is
// responsible for translating gateway-specific status vocabularies into the
// closed PaymentStatus/RefundStatus enumerations.
package processor

import (
	"context"

	"github.com/asciisd/cashier/internal/domain/transaction"
)

// Feature names an optional capability a processor may declare support for.
type Feature string

const (
	FeatureCharge    Feature = "charge"
	FeatureRefund    Feature = "refund"
	FeatureCapture   Feature = "capture"
	FeatureAuthorize Feature = "authorize"
	FeatureVoid      Feature = "void"
	FeatureWebhooks  Feature = "webhooks"
	FeatureRecurring Feature = "recurring"
)

// Config carries per-processor configuration bound at the composition root
// (API keys, endpoints, environment).
type Config map[string]any

// String returns the string value under key, or def when absent.
func (c Config) String(key, def string) string {
	if v, ok := c[key].(string); ok {
		return v
	}
	return def
}

// ChargeData is the input to Charge and Authorize. Amount is in integer
// minor currency units. The base validation rules cover Amount, Currency and
// Description; processors compose their own rules on top.
type ChargeData struct {
	Amount        int64  `validate:"required,gt=0"`
	Currency      string `validate:"required,len=3,alpha"`
	Description   string `validate:"omitempty,max=255"`
	PaymentMethod string `validate:"omitempty"`
	Customer      string `validate:"omitempty"`
	Metadata      map[string]any
}

// Processor is the contract every payment backend implements. Each
// implementation decides which operations it supports; unsupported
// operations fail with an UnsupportedOperationError (the Base default).
// All operations are synchronous: one blocking call, one result.
type Processor interface {
	// Name returns the processor name (the registry key).
	Name() string

	// Supports reports whether the processor declares the feature. It is a
	// pure membership check and never invokes the backend.
	Supports(feature Feature) bool

	// ValidatePaymentData validates and normalizes charge data against the
	// processor's composed rules. It fails with a ValidationError and is
	// always run before any backend call.
	ValidatePaymentData(data ChargeData) (ChargeData, error)

	// Charge processes a payment.
	Charge(ctx context.Context, data ChargeData) (*PaymentResult, error)

	// Refund refunds a prior charge. A nil amount means "refund the full
	// remaining transaction amount"; the processor resolves it against the
	// gateway, never the ledger.
	Refund(ctx context.Context, transactionID string, amount *int64) (*RefundResult, error)

	// Capture captures a previously authorized payment. A nil amount
	// captures the full authorized amount.
	Capture(ctx context.Context, transactionID string, amount *int64) (*PaymentResult, error)

	// Authorize places a hold without capturing.
	Authorize(ctx context.Context, data ChargeData) (*PaymentResult, error)

	// Void cancels an authorized or captured payment.
	Void(ctx context.Context, transactionID string) (*PaymentResult, error)

	// PaymentStatus retrieves the current status of a payment from the
	// backend, translated into the closed enumeration.
	PaymentStatus(ctx context.Context, transactionID string) (transaction.PaymentStatus, error)
}
