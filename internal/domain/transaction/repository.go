package transaction

import (
	"context"
	"time"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
)

// Repository defines the interface for transaction persistence
type Repository interface {
	// Create creates a new transaction
	Create(ctx context.Context, tx *Transaction) error

	// GetByID retrieves a transaction by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// GetByProcessorTransactionID retrieves a transaction by the id the
	// processor assigned to it
	GetByProcessorTransactionID(ctx context.Context, processorName, processorTxID string) (*Transaction, error)

	// Update updates an existing transaction
	Update(ctx context.Context, tx *Transaction) error

	// List lists transactions with filters
	List(ctx context.Context, filter ListFilter) ([]*Transaction, error)

	// SumAmountByPayable sums succeeded transaction amounts for an owner
	SumAmountByPayable(ctx context.Context, payable method.OwnerRef) (int64, error)

	// CountByPayable counts transactions for an owner, optionally filtered
	// by status
	CountByPayable(ctx context.Context, payable method.OwnerRef, status *PaymentStatus) (int64, error)
}

// RefundRepository defines the interface for refund persistence
type RefundRepository interface {
	// Create creates a new refund
	Create(ctx context.Context, r *Refund) error

	// GetByID retrieves a refund by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Refund, error)

	// Update updates an existing refund
	Update(ctx context.Context, r *Refund) error

	// ListByTransaction lists refunds for a transaction
	ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*Refund, error)

	// SumRefunded sums refund amounts for a transaction filtered by status.
	// Run inside the same database transaction as the refund insert when
	// enforcing the remaining-refundable precondition, otherwise concurrent
	// refunds can race past the original amount.
	SumRefunded(ctx context.Context, transactionID uuid.UUID, status RefundStatus) (int64, error)
}

// ListFilter defines filters for listing transactions
type ListFilter struct {
	Payable       *method.OwnerRef
	Status        *PaymentStatus
	ProcessorName *string
	Currency      *string
	Amount        *int64
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Limit         int
	Offset        int
	SortBy        string
	SortOrder     string
}
