package transaction

import (
	"fmt"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
)

// Transaction is the durable record of one processor charge. The payment
// instrument is embedded as an immutable snapshot rather than referenced, so
// the record is self-contained and survives deletion of any stored payment
// method. Amounts are integer minor currency units (cents).
type Transaction struct {
	ID                     uuid.UUID
	ProcessorName          string
	ProcessorTransactionID string
	Payable                method.OwnerRef
	PaymentMethod          method.Snapshot
	Amount                 int64
	Currency               string
	Status                 PaymentStatus
	Description            string
	Metadata               map[string]any
	ProcessorResponse      map[string]any
	ErrorCode              string
	ErrorMessage           string
	ProcessedAt            *time.Time
	FailedAt               *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time

	// Refunds holds the associated refund records when loaded.
	Refunds []*Refund
}

// NewTransaction creates a transaction record for a processor result.
func NewTransaction(
	processorName string,
	payable method.OwnerRef,
	snapshot method.Snapshot,
	amount int64,
	currency string,
) (*Transaction, error) {
	if amount <= 0 {
		return nil, domainErrors.NewValidationError("amount", "must be greater than 0")
	}
	if len(currency) != 3 {
		return nil, domainErrors.NewValidationError("currency", "must be a 3-letter ISO code")
	}
	if processorName == "" {
		return nil, domainErrors.NewValidationError("processor_name", "cannot be empty")
	}

	now := time.Now()
	return &Transaction{
		ID:            uuid.New(),
		ProcessorName: processorName,
		Payable:       payable,
		PaymentMethod: snapshot,
		Amount:        amount,
		Currency:      currency,
		Status:        StatusPending,
		Metadata:      make(map[string]any),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// IsSuccessful reports whether the transaction succeeded.
func (t *Transaction) IsSuccessful() bool { return t.Status.IsSuccessful() }

// IsFailed reports whether the transaction failed.
func (t *Transaction) IsFailed() bool { return t.Status == StatusFailed }

// IsPending reports whether the transaction is pending.
func (t *Transaction) IsPending() bool { return t.Status == StatusPending }

// IsProcessing reports whether the transaction is processing.
func (t *Transaction) IsProcessing() bool { return t.Status == StatusProcessing }

// RequiresAction reports whether the transaction awaits a follow-up step.
func (t *Transaction) RequiresAction() bool { return t.Status.RequiresAction() }

// MarkSucceeded records a successful processor outcome.
func (t *Transaction) MarkSucceeded(processorTransactionID string, response map[string]any) {
	now := time.Now()
	t.Status = StatusSucceeded
	t.ProcessorTransactionID = processorTransactionID
	t.ProcessorResponse = response
	t.ProcessedAt = &now
	t.UpdatedAt = now
}

// MarkFailed records a failed processor outcome.
func (t *Transaction) MarkFailed(errorCode, errorMessage string, response map[string]any) {
	now := time.Now()
	t.Status = StatusFailed
	t.ErrorCode = errorCode
	t.ErrorMessage = errorMessage
	t.ProcessorResponse = response
	t.FailedAt = &now
	t.UpdatedAt = now
}

// SetStatus applies a status reported by the processor.
func (t *Transaction) SetStatus(status PaymentStatus) {
	now := time.Now()
	t.Status = status
	t.UpdatedAt = now
	switch {
	case status.IsSuccessful() && t.ProcessedAt == nil:
		t.ProcessedAt = &now
	case status == StatusFailed && t.FailedAt == nil:
		t.FailedAt = &now
	}
}

// PaymentMethodDisplay renders the embedded snapshot for display.
func (t *Transaction) PaymentMethodDisplay() string {
	if t.PaymentMethod.IsZero() {
		return "Unknown"
	}
	return t.PaymentMethod.Display()
}

// HasCardDetails reports whether the snapshot carries card digits.
func (t *Transaction) HasCardDetails() bool {
	return t.PaymentMethod.Brand.RequiresLastFour() && t.PaymentMethod.LastFour != ""
}

// FormattedAmount renders the amount in major units with two decimals.
func (t *Transaction) FormattedAmount() string {
	whole := t.Amount / 100
	frac := t.Amount % 100
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%02d", whole, frac)
}

// TotalRefunded sums the amounts of succeeded refunds. Pending, processing,
// failed and canceled refunds never count.
func (t *Transaction) TotalRefunded() int64 {
	var total int64
	for _, r := range t.Refunds {
		if r.Status.IsSuccessful() {
			total += r.Amount
		}
	}
	return total
}

// RemainingRefundable returns how much of the transaction amount is still
// refundable. It never goes negative under correct processor behavior.
func (t *Transaction) RemainingRefundable() int64 {
	return t.Amount - t.TotalRefunded()
}

// CanBeRefunded reports whether a new refund may be requested. Rejecting a
// refund for more than RemainingRefundable is the caller's responsibility;
// the ledger exposes the check but never clamps amounts.
func (t *Transaction) CanBeRefunded() bool {
	return t.IsSuccessful() && t.RemainingRefundable() > 0
}
