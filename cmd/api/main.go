package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asciisd/cashier/internal/bootstrap"
	"github.com/asciisd/cashier/internal/controller"
	infraRedis "github.com/asciisd/cashier/internal/infrastructure/redis"
	"github.com/asciisd/cashier/internal/repository/postgres"
	"github.com/asciisd/cashier/internal/service"
)

func main() {
	ctx := context.Background()

	app, err := bootstrap.New(ctx, "cashier-api", "cashier")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	// --- Repositories ---
	txRepo := postgres.NewTransactionRepository(app.Pool)
	refundRepo := postgres.NewRefundRepository(app.Pool)
	methodRepo := postgres.NewPaymentMethodRepository(app.Pool)
	txManager := postgres.NewTxManager(app.Pool)
	idempotencyStore := infraRedis.NewIdempotencyStore(app.Redis, app.Config.Payment.IdempotencyTTL)

	// --- Processor registry ---
	registry, err := app.BuildRegistry()
	if err != nil {
		app.Logger.Fatal().Err(err).Msg("Failed to build processor registry")
	}
	app.Logger.Info().Strs("processors", registry.ProcessorNames()).Msg("Processors registered")

	// --- Services ---
	lockFactory := func(key string, ttl time.Duration) service.Locker {
		return infraRedis.NewDistributedLock(app.Redis, key, ttl)
	}
	paymentService := service.NewPaymentService(
		txRepo, refundRepo, methodRepo, txManager,
		registry, lockFactory, &app.Config.Payment, app.Metrics,
	)
	methodService := service.NewPaymentMethodService(methodRepo)

	// --- Build router ---
	router := controller.NewRouter(controller.RouterDeps{
		Pool:                 app.Pool,
		RedisClient:          app.Redis,
		PaymentService:       paymentService,
		PaymentMethodService: methodService,
		IdempotencyStore:     idempotencyStore,
		Metrics:              app.Metrics,
		CORSConfig:           app.Config.Server.CORS,
	})

	// --- HTTP server ---
	addr := fmt.Sprintf(":%d", app.Config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  app.Config.Server.ReadTimeout,
		WriteTimeout: app.Config.Server.WriteTimeout,
		IdleTimeout:  app.Config.Server.IdleTimeout,
	}

	go func() {
		app.Logger.Info().Str("addr", addr).Msg("Starting HTTP server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.Logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	app.Logger.Info().Msg("Server exited")
}
