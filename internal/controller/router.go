package controller

import (
	"time"

	"github.com/asciisd/cashier/internal/infrastructure/config"
	"github.com/asciisd/cashier/internal/infrastructure/observability"
	redisinfra "github.com/asciisd/cashier/internal/infrastructure/redis"
	customMW "github.com/asciisd/cashier/internal/middleware"
	"github.com/asciisd/cashier/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	Pool                 *pgxpool.Pool
	RedisClient          *redis.Client
	PaymentService       *service.PaymentService
	PaymentMethodService *service.PaymentMethodService
	IdempotencyStore     *redisinfra.IdempotencyStore
	Metrics              *observability.Metrics
	CORSConfig           config.CORSConfig
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController(deps.Pool, deps.RedisClient)
	paymentH := NewPaymentController(deps.PaymentService)
	methodH := NewPaymentMethodController(deps.PaymentMethodService)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)
	r.Get("/health/ready", healthH.Readiness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating payment endpoints.
		idempotencyMW := customMW.Idempotency(deps.IdempotencyStore)

		// Payments
		r.With(idempotencyMW).Post("/payments", paymentH.Charge)
		r.With(idempotencyMW).Post("/payments/authorize", paymentH.Authorize)
		r.Get("/payments", paymentH.ListTransactions)
		r.Get("/payments/{id}", paymentH.GetTransaction)
		r.Post("/payments/{id}/capture", paymentH.Capture)
		r.Post("/payments/{id}/void", paymentH.Void)
		r.With(idempotencyMW).Post("/payments/{id}/refund", paymentH.Refund)
		r.Get("/payments/{id}/refunds", paymentH.ListRefunds)

		// Payment methods
		r.Post("/payment-methods", methodH.Create)
		r.Get("/payment-methods/{id}", methodH.Get)
		r.Delete("/payment-methods/{id}", methodH.Delete)

		// Owners
		r.Get("/owners/{type}/{id}/payment-methods", methodH.ListByOwner)
		r.Get("/owners/{type}/{id}/payment-methods/default", methodH.GetDefault)
		r.Put("/owners/{type}/{id}/payment-methods/{methodID}/default", methodH.SetDefault)
		r.Get("/owners/{type}/{id}/summary", paymentH.OwnerSummary)
	})

	return r
}
