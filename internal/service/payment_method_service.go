package service

import (
	"context"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
)

// PaymentMethodService handles stored payment method management.
type PaymentMethodService struct {
	methodRepo method.Repository
}

// NewPaymentMethodService creates a new PaymentMethodService.
func NewPaymentMethodService(methodRepo method.Repository) *PaymentMethodService {
	return &PaymentMethodService{methodRepo: methodRepo}
}

// Create stores a payment method for an owner. When the request asks for
// default, or the owner has no methods yet, the new method becomes the
// owner's default.
func (s *PaymentMethodService) Create(ctx context.Context, req CreatePaymentMethodRequest) (*method.PaymentMethod, error) {
	pm, err := method.NewPaymentMethod(req.Owner, req.ProcessorName, req.ProcessorPaymentMethodID, method.Brand(req.Brand))
	if err != nil {
		return nil, err
	}
	pm.LastFour = req.LastFour
	pm.ExpMonth = req.ExpMonth
	pm.ExpYear = req.ExpYear
	if req.Metadata != nil {
		pm.Metadata = req.Metadata
	}

	existing, err := s.methodRepo.ListByOwner(ctx, req.Owner)
	if err != nil {
		return nil, err
	}

	if err := s.methodRepo.Create(ctx, pm); err != nil {
		return nil, err
	}

	if req.IsDefault || len(existing) == 0 {
		if err := s.methodRepo.SetDefault(ctx, req.Owner, pm.ID); err != nil {
			return nil, err
		}
		pm.IsDefault = true
	}
	return pm, nil
}

// Get retrieves a payment method by id.
func (s *PaymentMethodService) Get(ctx context.Context, id uuid.UUID) (*method.PaymentMethod, error) {
	return s.methodRepo.GetByID(ctx, id)
}

// ListByOwner lists an owner's payment methods, default first.
func (s *PaymentMethodService) ListByOwner(ctx context.Context, owner method.OwnerRef) ([]*method.PaymentMethod, error) {
	return s.methodRepo.ListByOwner(ctx, owner)
}

// GetDefault retrieves the owner's default payment method.
func (s *PaymentMethodService) GetDefault(ctx context.Context, owner method.OwnerRef) (*method.PaymentMethod, error) {
	return s.methodRepo.GetDefault(ctx, owner)
}

// SetDefault makes the given method the owner's default.
func (s *PaymentMethodService) SetDefault(ctx context.Context, owner method.OwnerRef, id uuid.UUID) error {
	return s.methodRepo.SetDefault(ctx, owner, id)
}

// Delete removes a stored payment method. Historical transactions keep their
// embedded snapshots.
func (s *PaymentMethodService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.methodRepo.Delete(ctx, id)
}
