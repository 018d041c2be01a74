package method

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for payment method persistence
type Repository interface {
	// Create creates a new payment method
	Create(ctx context.Context, pm *PaymentMethod) error

	// GetByID retrieves a payment method by ID
	GetByID(ctx context.Context, id uuid.UUID) (*PaymentMethod, error)

	// ListByOwner lists payment methods for an owner
	ListByOwner(ctx context.Context, owner OwnerRef) ([]*PaymentMethod, error)

	// GetDefault retrieves the owner's default payment method, if any
	GetDefault(ctx context.Context, owner OwnerRef) (*PaymentMethod, error)

	// SetDefault clears the default flag on the owner's other payment
	// methods and sets it on the given one. Both updates are applied in a
	// single database transaction so concurrent calls for the same owner
	// cannot leave zero or multiple defaults.
	SetDefault(ctx context.Context, owner OwnerRef, id uuid.UUID) error

	// Delete removes a stored payment method. Historical transactions are
	// unaffected: they embed a snapshot, not a reference.
	Delete(ctx context.Context, id uuid.UUID) error
}
