package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asciisd/cashier/internal/bootstrap"
	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/transaction"
	infraRedis "github.com/asciisd/cashier/internal/infrastructure/redis"
	"github.com/asciisd/cashier/internal/repository/postgres"
	"github.com/asciisd/cashier/internal/service"
	"github.com/asciisd/cashier/pkg/retry"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// The worker reconciles open transactions against their processors: any
// transaction a processor reported as pending or processing is polled until
// it reaches a terminal status.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := bootstrap.New(ctx, "cashier-worker", "cashier_worker")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	txRepo := postgres.NewTransactionRepository(app.Pool)
	refundRepo := postgres.NewRefundRepository(app.Pool)
	methodRepo := postgres.NewPaymentMethodRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)

	registry, err := app.BuildRegistry()
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Failed to build processor registry")
	}

	lockFactory := func(key string, ttl time.Duration) service.Locker {
		return infraRedis.NewDistributedLock(app.Redis, key, ttl)
	}
	paymentService := service.NewPaymentService(
		txRepo, refundRepo, methodRepo, txManager,
		registry, lockFactory, &app.Config.Payment, app.Metrics,
	)

	retryCfg := retry.Config{
		MaxAttempts:  app.Config.Payment.RetryMaxAttempts,
		InitialDelay: app.Config.Payment.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   app.Config.Payment.RetryBackoffFactor,
	}

	r := &reconciler{
		app:            app,
		txRepo:         txRepo,
		paymentService: paymentService,
		retryCfg:       retryCfg,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return r.run(gCtx, transaction.StatusPending)
	})
	g.Go(func() error {
		return r.run(gCtx, transaction.StatusProcessing)
	})
	g.Go(func() error {
		select {
		case <-gCtx.Done():
			return gCtx.Err()
		case <-quit:
			app.Logger.Info().Msg("Shutting down worker...")
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		app.Logger.Error().Err(err).Msg("Worker error")
	}
	app.Logger.Info().Msg("Worker exited")
}

type reconciler struct {
	app            *bootstrap.App
	txRepo         transaction.Repository
	paymentService *service.PaymentService
	retryCfg       retry.Config
}

// run polls one status lane on the configured interval.
func (r *reconciler) run(ctx context.Context, status transaction.PaymentStatus) error {
	ticker := time.NewTicker(r.app.Config.Worker.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		r.reconcileBatch(ctx, status)
	}
}

func (r *reconciler) reconcileBatch(ctx context.Context, status transaction.PaymentStatus) {
	logger := r.app.Logger
	start := time.Now()
	defer func() {
		r.app.Metrics.WorkerProcessingDuration.
			WithLabelValues(string(status)).
			Observe(time.Since(start).Seconds())
	}()

	// Leave freshly created transactions alone; the API call that created
	// them may still be in flight.
	cutoff := time.Now().Add(-r.app.Config.Worker.StalePending)
	transactions, err := r.txRepo.List(ctx, transaction.ListFilter{
		Status:        &status,
		CreatedBefore: &cutoff,
		Limit:         r.app.Config.Worker.BatchSize,
		SortBy:        "created_at",
		SortOrder:     "asc",
	})
	if err != nil {
		logger.Error().Err(err).Str("status", string(status)).Msg("Failed to list transactions")
		return
	}

	for _, t := range transactions {
		r.reconcileOne(ctx, logger, t)
	}
}

func (r *reconciler) reconcileOne(ctx context.Context, logger zerolog.Logger, t *transaction.Transaction) {
	lock := infraRedis.NewDistributedLock(r.app.Redis, "reconcile:"+t.ID.String(), r.app.Config.Payment.RefundLockTTL)
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		r.app.Metrics.WorkerReconciliations.WithLabelValues("locked").Inc()
		return
	}
	defer lock.Release(ctx)

	var changed bool
	err = retrySync(ctx, r.retryCfg, func() error {
		var syncErr error
		_, changed, syncErr = r.paymentService.SyncTransactionStatus(ctx, t)
		return syncErr
	})

	switch {
	case err != nil:
		logger.Error().Err(err).Str("transaction_id", t.ID.String()).Msg("Failed to sync transaction status")
		r.app.Metrics.WorkerReconciliations.WithLabelValues("error").Inc()
	case changed:
		logger.Info().
			Str("transaction_id", t.ID.String()).
			Str("status", string(t.Status)).
			Msg("Transaction status updated")
		r.app.Metrics.WorkerReconciliations.WithLabelValues("updated").Inc()
	default:
		r.app.Metrics.WorkerReconciliations.WithLabelValues("unchanged").Inc()
	}
}

// retrySync retries the status poll for transient backend failures only. A
// transaction whose processor is no longer configured, or whose data no
// longer validates, fails the same way on every attempt and is returned on
// the first. An unsupported status operation is not an error at all: the
// processor cannot report, so the transaction is left as is.
func retrySync(ctx context.Context, cfg retry.Config, sync func() error) error {
	return retry.Do(ctx, cfg, func() error {
		err := sync()
		switch {
		case err == nil:
			return nil
		case errors.Is(err, domainErrors.ErrUnsupportedOperation):
			return nil
		case errors.Is(err, domainErrors.ErrProcessingFailed):
			return err
		default:
			return retry.Unrecoverable(err)
		}
	})
}
