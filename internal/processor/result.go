package processor

import (
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
)

// PaymentResult is the immutable outcome of a charge, authorize, capture or
// void operation. Amount is in integer minor currency units. A failure is
// always explicit: either Success is false with an error code, or the
// operation returned an error, never both ambiguously.
type PaymentResult struct {
	Success           bool
	TransactionID     string
	Status            transaction.PaymentStatus
	Amount            int64
	Currency          string
	Message           string
	Metadata          map[string]any
	ProcessorResponse map[string]any
	ErrorCode         string
	PaymentMethod     *method.Snapshot
}

// IsSuccessful reports whether the operation succeeded.
func (r *PaymentResult) IsSuccessful() bool { return r.Success }

// IsFailed reports whether the operation failed.
func (r *PaymentResult) IsFailed() bool { return !r.Success }

// RefundResult is the immutable outcome of a refund operation.
type RefundResult struct {
	Success               bool
	RefundID              string
	OriginalTransactionID string
	Status                transaction.RefundStatus
	Amount                int64
	Currency              string
	Message               string
	Metadata              map[string]any
	ProcessorResponse     map[string]any
	ErrorCode             string
}

// IsSuccessful reports whether the refund succeeded.
func (r *RefundResult) IsSuccessful() bool { return r.Success }

// IsFailed reports whether the refund failed.
func (r *RefundResult) IsFailed() bool { return !r.Success }
