package transaction

import (
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/google/uuid"
)

// Refund records one refund attempt against a transaction. The transaction
// id is a back-reference, not ownership: deleting the transaction cascades
// to its refunds at the storage layer.
type Refund struct {
	ID                uuid.UUID
	TransactionID     uuid.UUID
	ProcessorRefundID string
	Amount            int64
	Currency          string
	Status            RefundStatus
	Reason            string
	Metadata          map[string]any
	ProcessorResponse map[string]any
	ProcessedAt       *time.Time
	FailedAt          *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewRefund creates a pending refund record.
func NewRefund(transactionID uuid.UUID, amount int64, currency, reason string) (*Refund, error) {
	if amount <= 0 {
		return nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	if len(currency) != 3 {
		return nil, domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")
	}

	now := time.Now()
	return &Refund{
		ID:            uuid.New(),
		TransactionID: transactionID,
		Amount:        amount,
		Currency:      currency,
		Status:        RefundStatusPending,
		Reason:        reason,
		Metadata:      make(map[string]any),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsSuccessful reports whether the refund succeeded.
func (r *Refund) IsSuccessful() bool { return r.Status.IsSuccessful() }

// IsFailed reports whether the refund failed.
func (r *Refund) IsFailed() bool { return r.Status == RefundStatusFailed }

// IsPending reports whether the refund is pending.
func (r *Refund) IsPending() bool { return r.Status == RefundStatusPending }

// IsProcessing reports whether the refund is processing.
func (r *Refund) IsProcessing() bool { return r.Status == RefundStatusProcessing }

// MarkSucceeded records a successful processor outcome.
func (r *Refund) MarkSucceeded(processorRefundID string, response map[string]any) {
	now := time.Now()
	r.Status = RefundStatusSucceeded
	r.ProcessorRefundID = processorRefundID
	r.ProcessorResponse = response
	r.ProcessedAt = &now
	r.UpdatedAt = now
}

// MarkFailed records a failed processor outcome.
func (r *Refund) MarkFailed(response map[string]any) {
	now := time.Now()
	r.Status = RefundStatusFailed
	r.ProcessorResponse = response
	r.FailedAt = &now
	r.UpdatedAt = now
}
