package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/asciisd/cashier/internal/infrastructure/config"
	"github.com/asciisd/cashier/internal/infrastructure/observability"
	"github.com/asciisd/cashier/internal/processor"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

// PaymentService orchestrates processor calls and the transaction ledger.
// Every processor operation runs through the registry's circuit breaker for
// that processor.
type PaymentService struct {
	txRepo     transaction.Repository
	refundRepo transaction.RefundRepository
	methodRepo method.Repository
	txManager  TransactionManager
	registry   *processor.Registry
	locks      LockFactory
	cfg        *config.PaymentConfig
	metrics    *observability.Metrics
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	txRepo transaction.Repository,
	refundRepo transaction.RefundRepository,
	methodRepo method.Repository,
	txManager TransactionManager,
	registry *processor.Registry,
	locks LockFactory,
	cfg *config.PaymentConfig,
	metrics *observability.Metrics,
) *PaymentService {
	return &PaymentService{
		txRepo:     txRepo,
		refundRepo: refundRepo,
		methodRepo: methodRepo,
		txManager:  txManager,
		registry:   registry,
		locks:      locks,
		cfg:        cfg,
		metrics:    metrics,
	}
}

// Charge processes a payment and records it as a transaction.
func (s *PaymentService) Charge(ctx context.Context, req ChargeRequest) (*transaction.Transaction, error) {
	return s.charge(ctx, req, false)
}

// Authorize places a hold without capturing and records it as a transaction.
func (s *PaymentService) Authorize(ctx context.Context, req ChargeRequest) (*transaction.Transaction, error) {
	return s.charge(ctx, req, true)
}

func (s *PaymentService) charge(ctx context.Context, req ChargeRequest, authorize bool) (*transaction.Transaction, error) {
	name := req.ProcessorName
	if name == "" {
		name = s.cfg.DefaultProcessor
	}

	if !s.cfg.CurrencyAllowed(req.Currency) {
		return nil, fmt.Errorf("currency %q: %w", req.Currency, domainErrors.ErrCurrencyNotAllowed)
	}

	proc, err := s.registry.Create(name)
	if err != nil {
		return nil, err
	}

	operation := "charge"
	feature := processor.FeatureCharge
	if authorize {
		operation = "authorize"
		feature = processor.FeatureAuthorize
	}
	if !proc.Supports(feature) {
		return nil, domainErrors.NewUnsupportedOperationError(name, operation)
	}

	token := req.PaymentMethodToken
	var snapshot method.Snapshot
	if req.PaymentMethodID != nil {
		pm, err := s.methodRepo.GetByID(ctx, *req.PaymentMethodID)
		if err != nil {
			return nil, err
		}
		if pm.IsExpired() {
			return nil, domainErrors.NewValidationError("payment_method_id", "payment method is expired")
		}
		token = pm.ProcessorPaymentMethodID
		snapshot = pm.Snapshot()
	}

	data, err := proc.ValidatePaymentData(processor.ChargeData{
		Amount:        req.Amount,
		Currency:      req.Currency,
		Description:   req.Description,
		PaymentMethod: token,
		Customer:      req.Customer,
		Metadata:      req.Metadata,
	})
	if err != nil {
		return nil, err
	}

	t, err := transaction.NewTransaction(name, req.Payable, snapshot, data.Amount, data.Currency)
	if err != nil {
		return nil, err
	}
	t.Description = data.Description
	if req.Metadata != nil {
		t.Metadata = req.Metadata
	}

	result, err := s.execute(name, operation, func() (*processor.PaymentResult, error) {
		if authorize {
			return proc.Authorize(ctx, data)
		}
		return proc.Charge(ctx, data)
	})
	if err != nil {
		t.MarkFailed("processor_error", err.Error(), nil)
		if createErr := s.txRepo.Create(ctx, t); createErr != nil {
			log.Error().Err(createErr).Str("processor", name).Msg("failed to record failed transaction")
		}
		s.metrics.TransactionsTotal.WithLabelValues(name, operation, string(t.Status)).Inc()
		return nil, s.wrapProcessorErr(name, t.ID, err)
	}

	// The processor may resolve instrument details from the token (for
	// example card brand and last four); prefer its snapshot when present.
	if result.PaymentMethod != nil {
		t.PaymentMethod = *result.PaymentMethod
	}

	if result.Success {
		if result.Status == transaction.StatusSucceeded {
			t.MarkSucceeded(result.TransactionID, result.ProcessorResponse)
		} else {
			t.ProcessorTransactionID = result.TransactionID
			t.ProcessorResponse = result.ProcessorResponse
			t.SetStatus(result.Status)
		}
	} else {
		t.MarkFailed(result.ErrorCode, result.Message, result.ProcessorResponse)
	}

	if err := s.txRepo.Create(ctx, t); err != nil {
		return nil, err
	}
	s.metrics.TransactionsTotal.WithLabelValues(name, operation, string(t.Status)).Inc()

	if !result.Success {
		return nil, domainErrors.NewProcessingError(name, t.ID.String(), result.ProcessorResponse, nil)
	}
	return t, nil
}

// Capture captures a previously authorized transaction. A nil amount captures
// the full authorized amount.
func (s *PaymentService) Capture(ctx context.Context, req CaptureRequest) (*transaction.Transaction, error) {
	return s.followUp(ctx, req.TransactionID, "capture", processor.FeatureCapture,
		func(proc processor.Processor, t *transaction.Transaction) (*processor.PaymentResult, error) {
			return proc.Capture(ctx, t.ProcessorTransactionID, req.Amount)
		})
}

// Void cancels an authorized or captured transaction.
func (s *PaymentService) Void(ctx context.Context, transactionID uuid.UUID) (*transaction.Transaction, error) {
	return s.followUp(ctx, transactionID, "void", processor.FeatureVoid,
		func(proc processor.Processor, t *transaction.Transaction) (*processor.PaymentResult, error) {
			return proc.Void(ctx, t.ProcessorTransactionID)
		})
}

// followUp runs a processor operation against an already recorded transaction
// and folds the result back into it.
func (s *PaymentService) followUp(
	ctx context.Context,
	transactionID uuid.UUID,
	operation string,
	feature processor.Feature,
	call func(proc processor.Processor, t *transaction.Transaction) (*processor.PaymentResult, error),
) (*transaction.Transaction, error) {
	t, err := s.txRepo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	proc, err := s.registry.Create(t.ProcessorName)
	if err != nil {
		return nil, err
	}
	if !proc.Supports(feature) {
		return nil, domainErrors.NewUnsupportedOperationError(t.ProcessorName, operation)
	}

	result, err := s.execute(t.ProcessorName, operation, func() (*processor.PaymentResult, error) {
		return call(proc, t)
	})
	if err != nil {
		return nil, s.wrapProcessorErr(t.ProcessorName, t.ID, err)
	}

	if result.Success {
		t.ProcessorResponse = result.ProcessorResponse
		t.SetStatus(result.Status)
	} else {
		t.MarkFailed(result.ErrorCode, result.Message, result.ProcessorResponse)
	}
	if err := s.txRepo.Update(ctx, t); err != nil {
		return nil, err
	}
	s.metrics.TransactionsTotal.WithLabelValues(t.ProcessorName, operation, string(t.Status)).Inc()

	if !result.Success {
		return nil, domainErrors.NewProcessingError(t.ProcessorName, t.ID.String(), result.ProcessorResponse, nil)
	}
	return t, nil
}

// Refund refunds part or all of a succeeded transaction. A nil request amount
// refunds the full remaining refundable amount. The remaining-refundable
// check and the refund insert run inside one database transaction, under a
// per-transaction distributed lock, so concurrent refunds cannot overdraw
// the original amount.
func (s *PaymentService) Refund(ctx context.Context, req RefundRequest) (*transaction.Refund, error) {
	t, err := s.txRepo.GetByID(ctx, req.TransactionID)
	if err != nil {
		return nil, err
	}
	if !t.IsSuccessful() {
		return nil, fmt.Errorf("transaction %s has status %s: %w",
			t.ID, t.Status, domainErrors.ErrTransactionNotRefundable)
	}

	proc, err := s.registry.Create(t.ProcessorName)
	if err != nil {
		return nil, err
	}
	if !proc.Supports(processor.FeatureRefund) {
		return nil, domainErrors.NewUnsupportedOperationError(t.ProcessorName, "refund")
	}

	lock := s.locks("refund:"+t.ID.String(), s.cfg.RefundLockTTL)
	if err := lock.AcquireWithRetry(ctx, 5, 200*time.Millisecond); err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrLockAcquisitionFailed, err)
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			log.Warn().Err(err).Str("transaction_id", t.ID.String()).Msg("failed to release refund lock")
		}
	}()

	var (
		ref    *transaction.Refund
		amount int64
	)
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		refunded, err := s.refundRepo.SumRefunded(txCtx, t.ID, transaction.RefundStatusSucceeded)
		if err != nil {
			return err
		}
		remaining := t.Amount - refunded
		if remaining <= 0 {
			return fmt.Errorf("transaction %s is fully refunded: %w",
				t.ID, domainErrors.ErrTransactionNotRefundable)
		}

		amount = remaining
		if req.Amount != nil {
			if *req.Amount > remaining {
				return fmt.Errorf("requested %d, remaining %d: %w",
					*req.Amount, remaining, domainErrors.ErrRefundExceedsRemaining)
			}
			amount = *req.Amount
		}

		ref, err = transaction.NewRefund(t.ID, amount, t.Currency, req.Reason)
		if err != nil {
			return err
		}
		return s.refundRepo.Create(txCtx, ref)
	})
	if err != nil {
		return nil, err
	}

	// The ledger fixed the exact amount, so the processor is always called
	// with an explicit value even for full refunds.
	resultAny, execErr := s.breakerExecute(t.ProcessorName, func() (any, error) {
		return proc.Refund(ctx, t.ProcessorTransactionID, &amount)
	})
	if execErr != nil {
		ref.MarkFailed(nil)
		if updErr := s.refundRepo.Update(ctx, ref); updErr != nil {
			log.Error().Err(updErr).Str("refund_id", ref.ID.String()).Msg("failed to record failed refund")
		}
		s.metrics.RefundsTotal.WithLabelValues(t.ProcessorName, string(ref.Status)).Inc()
		return nil, s.wrapProcessorErr(t.ProcessorName, t.ID, execErr)
	}
	result := resultAny.(*processor.RefundResult)

	if result.Success {
		ref.MarkSucceeded(result.RefundID, result.ProcessorResponse)
	} else {
		ref.MarkFailed(result.ProcessorResponse)
	}
	if err := s.refundRepo.Update(ctx, ref); err != nil {
		return nil, err
	}
	s.metrics.RefundsTotal.WithLabelValues(t.ProcessorName, string(ref.Status)).Inc()

	if !result.Success {
		return nil, domainErrors.NewProcessingError(t.ProcessorName, t.ID.String(), result.ProcessorResponse, nil)
	}
	s.metrics.RefundedCents.WithLabelValues(t.Currency).Add(float64(amount))
	return ref, nil
}

// GetTransaction retrieves a transaction with its refunds.
func (s *PaymentService) GetTransaction(ctx context.Context, id uuid.UUID) (*transaction.Transaction, error) {
	return s.txRepo.GetByID(ctx, id)
}

// ListTransactions lists transactions with filters.
func (s *PaymentService) ListTransactions(ctx context.Context, filter transaction.ListFilter) ([]*transaction.Transaction, error) {
	return s.txRepo.List(ctx, filter)
}

// ListRefunds lists the refunds recorded against a transaction.
func (s *PaymentService) ListRefunds(ctx context.Context, transactionID uuid.UUID) ([]*transaction.Refund, error) {
	if _, err := s.txRepo.GetByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.refundRepo.ListByTransaction(ctx, transactionID)
}

// OwnerSummary aggregates payment activity for one owner.
func (s *PaymentService) OwnerSummary(ctx context.Context, owner method.OwnerRef) (*OwnerSummary, error) {
	total, err := s.txRepo.SumAmountByPayable(ctx, owner)
	if err != nil {
		return nil, err
	}
	count, err := s.txRepo.CountByPayable(ctx, owner, nil)
	if err != nil {
		return nil, err
	}
	succeededStatus := transaction.StatusSucceeded
	succeeded, err := s.txRepo.CountByPayable(ctx, owner, &succeededStatus)
	if err != nil {
		return nil, err
	}
	methods, err := s.methodRepo.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	summary := &OwnerSummary{
		Owner:              owner,
		TotalPaidAmount:    total,
		TransactionCount:   count,
		SucceededCount:     succeeded,
		PaymentMethodCount: len(methods),
	}
	def, err := s.methodRepo.GetDefault(ctx, owner)
	switch {
	case err == nil:
		summary.DefaultPaymentMethod = def
	case !errors.Is(err, domainErrors.ErrPaymentMethodNotFound):
		return nil, err
	}
	return summary, nil
}

// SyncTransactionStatus asks the processor for the payment's current status
// and folds it into the transaction. It returns the status after the sync and
// whether it changed. Transactions without a processor id, and processors
// that cannot report status, are left untouched.
func (s *PaymentService) SyncTransactionStatus(ctx context.Context, t *transaction.Transaction) (transaction.PaymentStatus, bool, error) {
	if t.ProcessorTransactionID == "" {
		return t.Status, false, nil
	}
	proc, err := s.registry.Create(t.ProcessorName)
	if err != nil {
		return t.Status, false, err
	}

	status, err := proc.PaymentStatus(ctx, t.ProcessorTransactionID)
	if err != nil {
		return t.Status, false, err
	}
	if status == t.Status {
		return status, false, nil
	}

	t.SetStatus(status)
	if err := s.txRepo.Update(ctx, t); err != nil {
		return t.Status, false, err
	}
	return status, true, nil
}

// execute runs a payment operation through the processor's circuit breaker
// and records its duration.
func (s *PaymentService) execute(name, operation string, fn func() (*processor.PaymentResult, error)) (*processor.PaymentResult, error) {
	start := time.Now()
	resultAny, err := s.breakerExecute(name, func() (any, error) {
		return fn()
	})
	s.metrics.TransactionDuration.WithLabelValues(name, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.TransactionErrors.WithLabelValues(name, errorKind(err)).Inc()
		return nil, err
	}
	return resultAny.(*processor.PaymentResult), nil
}

func (s *PaymentService) breakerExecute(name string, fn func() (any, error)) (any, error) {
	breaker := s.registry.Breaker(name)
	if breaker == nil {
		return nil, fmt.Errorf("processor %q: %w", name, domainErrors.ErrProcessorNotFound)
	}
	result, err := breaker.Execute(fn)
	s.metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(breaker.State()))
	return result, err
}

// wrapProcessorErr translates breaker and transport failures into domain
// errors the HTTP layer can map.
func (s *PaymentService) wrapProcessorErr(name string, transactionID uuid.UUID, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("processor %q: %w", name, domainErrors.ErrProcessorUnavailable)
	}
	if errors.Is(err, domainErrors.ErrUnsupportedOperation) || errors.Is(err, domainErrors.ErrValidationFailed) {
		return err
	}
	return domainErrors.NewProcessingError(name, transactionID.String(), nil, err)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "circuit_open"
	case errors.Is(err, domainErrors.ErrUnsupportedOperation):
		return "unsupported_operation"
	case errors.Is(err, domainErrors.ErrValidationFailed):
		return "validation"
	default:
		return "processor"
	}
}
