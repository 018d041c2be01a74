package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/google/uuid"
)

// --- Transaction Repository Mock ---

// MockTransactionRepository is a mock implementation of transaction.Repository.
type MockTransactionRepository struct {
	mu           sync.Mutex
	transactions map[uuid.UUID]*transaction.Transaction

	CreateFunc  func(ctx context.Context, t *transaction.Transaction) error
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error)
	UpdateFunc  func(ctx context.Context, t *transaction.Transaction) error
	ListFunc    func(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error)
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{
		transactions: make(map[uuid.UUID]*transaction.Transaction),
	}
}

func (m *MockTransactionRepository) Add(t *transaction.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
}

func (m *MockTransactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.transactions[id]
	if !ok {
		return nil, domainErrors.ErrTransactionNotFound
	}
	return t, nil
}

func (m *MockTransactionRepository) GetByProcessorTransactionID(ctx context.Context, processorName, processorTxID string) (*transaction.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.transactions {
		if t.ProcessorName == processorName && t.ProcessorTransactionID == processorTxID {
			return t, nil
		}
	}
	return nil, domainErrors.ErrTransactionNotFound
}

func (m *MockTransactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, t)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[t.ID]; !ok {
		return domainErrors.ErrTransactionNotFound
	}
	m.transactions[t.ID] = t
	return nil
}

func (m *MockTransactionRepository) List(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*transaction.Transaction
	for _, t := range m.transactions {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.ProcessorName != nil && t.ProcessorName != *filter.ProcessorName {
			continue
		}
		if filter.Payable != nil && t.Payable != *filter.Payable {
			continue
		}
		if filter.CreatedBefore != nil && t.CreatedAt.After(*filter.CreatedBefore) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (m *MockTransactionRepository) SumAmountByPayable(ctx context.Context, payable method.OwnerRef) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, t := range m.transactions {
		if t.Payable == payable && t.Status == transaction.StatusSucceeded {
			total += t.Amount
		}
	}
	return total, nil
}

func (m *MockTransactionRepository) CountByPayable(ctx context.Context, payable method.OwnerRef, status *transaction.PaymentStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, t := range m.transactions {
		if t.Payable != payable {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		count++
	}
	return count, nil
}

// --- Refund Repository Mock ---

// MockRefundRepository is a mock implementation of transaction.RefundRepository.
type MockRefundRepository struct {
	mu      sync.Mutex
	refunds map[uuid.UUID]*transaction.Refund

	CreateFunc      func(ctx context.Context, r *transaction.Refund) error
	SumRefundedFunc func(ctx context.Context, transactionID uuid.UUID, status transaction.RefundStatus) (int64, error)
}

func NewMockRefundRepository() *MockRefundRepository {
	return &MockRefundRepository{refunds: make(map[uuid.UUID]*transaction.Refund)}
}

func (m *MockRefundRepository) Add(r *transaction.Refund) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds[r.ID] = r
}

func (m *MockRefundRepository) Create(ctx context.Context, r *transaction.Refund) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds[r.ID] = r
	return nil
}

func (m *MockRefundRepository) GetByID(ctx context.Context, id uuid.UUID) (*transaction.Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.refunds[id]
	if !ok {
		return nil, domainErrors.ErrRefundNotFound
	}
	return r, nil
}

func (m *MockRefundRepository) Update(ctx context.Context, r *transaction.Refund) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.refunds[r.ID]; !ok {
		return domainErrors.ErrRefundNotFound
	}
	m.refunds[r.ID] = r
	return nil
}

func (m *MockRefundRepository) ListByTransaction(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Refund, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*transaction.Refund
	for _, r := range m.refunds {
		if r.TransactionID == transactionID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MockRefundRepository) SumRefunded(ctx context.Context, transactionID uuid.UUID, status transaction.RefundStatus) (int64, error) {
	if m.SumRefundedFunc != nil {
		return m.SumRefundedFunc(ctx, transactionID, status)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, r := range m.refunds {
		if r.TransactionID == transactionID && r.Status == status {
			total += r.Amount
		}
	}
	return total, nil
}

// --- Payment Method Repository Mock ---

// MockPaymentMethodRepository is a mock implementation of method.Repository.
type MockPaymentMethodRepository struct {
	mu      sync.Mutex
	methods map[uuid.UUID]*method.PaymentMethod
}

func NewMockPaymentMethodRepository() *MockPaymentMethodRepository {
	return &MockPaymentMethodRepository{methods: make(map[uuid.UUID]*method.PaymentMethod)}
}

func (m *MockPaymentMethodRepository) Add(pm *method.PaymentMethod) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[pm.ID] = pm
}

func (m *MockPaymentMethodRepository) Create(ctx context.Context, pm *method.PaymentMethod) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.methods[pm.ID] = pm
	return nil
}

func (m *MockPaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*method.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pm, ok := m.methods[id]
	if !ok {
		return nil, domainErrors.ErrPaymentMethodNotFound
	}
	return pm, nil
}

func (m *MockPaymentMethodRepository) ListByOwner(ctx context.Context, owner method.OwnerRef) ([]*method.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*method.PaymentMethod
	for _, pm := range m.methods {
		if pm.Owner == owner {
			out = append(out, pm)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsDefault != out[j].IsDefault {
			return out[i].IsDefault
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MockPaymentMethodRepository) GetDefault(ctx context.Context, owner method.OwnerRef) (*method.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, pm := range m.methods {
		if pm.Owner == owner && pm.IsDefault {
			return pm, nil
		}
	}
	return nil, domainErrors.ErrPaymentMethodNotFound
}

func (m *MockPaymentMethodRepository) SetDefault(ctx context.Context, owner method.OwnerRef, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	target, ok := m.methods[id]
	if !ok || target.Owner != owner {
		return domainErrors.ErrPaymentMethodNotFound
	}
	for _, pm := range m.methods {
		if pm.Owner == owner {
			pm.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (m *MockPaymentMethodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.methods[id]; !ok {
		return domainErrors.ErrPaymentMethodNotFound
	}
	delete(m.methods, id)
	return nil
}

// --- Transaction Manager Mock ---

// MockTransactionManager executes the callback without a real database
// transaction.
type MockTransactionManager struct {
	WithTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.WithTransactionFunc != nil {
		return m.WithTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

// --- Distributed Lock Mock ---

// MockLocker is an in-process stand-in for a distributed lock.
type MockLocker struct {
	AcquireErr error
	Acquired   bool
	Released   bool
}

func (l *MockLocker) AcquireWithRetry(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	if l.AcquireErr != nil {
		return l.AcquireErr
	}
	l.Acquired = true
	return nil
}

func (l *MockLocker) Release(ctx context.Context) error {
	l.Released = true
	return nil
}
