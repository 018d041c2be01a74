package processor

import (
	"context"
	"math"
	"strings"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationRule is a processor-specific check composed on top of the base
// charge-data rules.
type ValidationRule func(*ChargeData) error

// Base carries the behavior shared by all processors: feature membership,
// validation-rule composition, amount formatting for gateway APIs and
// result construction. Concrete processors embed it and override the
// operations they support; the unoverridden defaults below fail with an
// UnsupportedOperationError.
type Base struct {
	name     string
	config   Config
	features map[Feature]struct{}
	rules    []ValidationRule
}

// NewBase creates the shared processor core.
func NewBase(name string, config Config, features []Feature, rules ...ValidationRule) *Base {
	fs := make(map[Feature]struct{}, len(features))
	for _, f := range features {
		fs[f] = struct{}{}
	}
	if config == nil {
		config = Config{}
	}
	return &Base{
		name:     name,
		config:   config,
		features: fs,
		rules:    rules,
	}
}

// Name returns the processor name.
func (b *Base) Name() string { return b.name }

// Config returns the processor configuration.
func (b *Base) Config() Config { return b.config }

// Supports reports whether the feature is in the declared capability set.
func (b *Base) Supports(feature Feature) bool {
	_, ok := b.features[feature]
	return ok
}

// ValidatePaymentData applies the base rules (positive integer amount,
// 3-letter currency, description at most 255 chars) plus any composed
// processor rules, and returns the data with the currency normalized to
// upper case. It fails with a ValidationError before any backend call.
func (b *Base) ValidatePaymentData(data ChargeData) (ChargeData, error) {
	if err := validate.Struct(data); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			return ChargeData{}, domainErrors.NewValidationError(
				strings.ToLower(ve[0].Field()), ve[0].Tag()+" validation failed")
		}
		return ChargeData{}, domainErrors.NewValidationError("payment_data", err.Error())
	}
	for _, rule := range b.rules {
		if err := rule(&data); err != nil {
			return ChargeData{}, err
		}
	}
	data.Currency = strings.ToUpper(data.Currency)
	return data, nil
}

// FormatAmount converts minor units to major units for gateway APIs that
// want decimal amounts. The canonical representation everywhere else stays
// integer minor units.
func (b *Base) FormatAmount(amount int64) float64 {
	return float64(amount) / 100
}

// ParseAmount converts a gateway decimal amount back to minor units,
// rounding to the nearest cent. 19.99 is not exactly representable and
// would otherwise truncate to 1998.
func (b *Base) ParseAmount(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// SuccessResult builds a successful PaymentResult with status fixed to
// succeeded, consistent with the success flag.
func (b *Base) SuccessResult(transactionID string, amount int64, currency, message string, metadata map[string]any) *PaymentResult {
	return &PaymentResult{
		Success:       true,
		TransactionID: transactionID,
		Status:        transaction.StatusSucceeded,
		Amount:        amount,
		Currency:      currency,
		Message:       message,
		Metadata:      metadata,
	}
}

// FailureResult builds a failed PaymentResult with status fixed to failed.
func (b *Base) FailureResult(transactionID string, amount int64, currency, message, errorCode string, metadata map[string]any) *PaymentResult {
	return &PaymentResult{
		Success:       false,
		TransactionID: transactionID,
		Status:        transaction.StatusFailed,
		Amount:        amount,
		Currency:      currency,
		Message:       message,
		ErrorCode:     errorCode,
		Metadata:      metadata,
	}
}

// Capture is unsupported unless the concrete processor overrides it.
func (b *Base) Capture(_ context.Context, _ string, _ *int64) (*PaymentResult, error) {
	return nil, domainErrors.NewUnsupportedOperationError(b.name, "capture")
}

// Authorize is unsupported unless the concrete processor overrides it.
func (b *Base) Authorize(_ context.Context, _ ChargeData) (*PaymentResult, error) {
	return nil, domainErrors.NewUnsupportedOperationError(b.name, "authorize")
}

// Void is unsupported unless the concrete processor overrides it.
func (b *Base) Void(_ context.Context, _ string) (*PaymentResult, error) {
	return nil, domainErrors.NewUnsupportedOperationError(b.name, "void")
}

// PaymentStatus is unsupported unless the concrete processor overrides it.
func (b *Base) PaymentStatus(_ context.Context, _ string) (transaction.PaymentStatus, error) {
	return "", domainErrors.NewUnsupportedOperationError(b.name, "payment status")
}
