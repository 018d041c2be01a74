package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/infrastructure/config"
	"github.com/asciisd/cashier/internal/infrastructure/observability"
	"github.com/asciisd/cashier/internal/processor"
	"github.com/asciisd/cashier/internal/service"
	"github.com/asciisd/cashier/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controllerFixture struct {
	router     *chi.Mux
	txRepo     *testutil.MockTransactionRepository
	methodRepo *testutil.MockPaymentMethodRepository
	stripeAPI  *processor.SimulatedStripeAPI
}

func setupController(t *testing.T) *controllerFixture {
	t.Helper()

	stripeAPI := processor.NewSimulatedStripeAPI()
	registry := processor.NewRegistry()
	require.NoError(t, registry.Register("stripe", func() (processor.Processor, error) {
		return processor.NewStripeProcessor(nil, processor.WithStripeAPI(stripeAPI)), nil
	}))

	txRepo := testutil.NewMockTransactionRepository()
	refundRepo := testutil.NewMockRefundRepository()
	methodRepo := testutil.NewMockPaymentMethodRepository()
	cfg := &config.PaymentConfig{
		DefaultProcessor: "stripe",
		RefundLockTTL:    30 * time.Second,
	}
	locks := func(key string, ttl time.Duration) service.Locker { return &testutil.MockLocker{} }
	metrics := observability.NewMetrics("test", prometheus.NewRegistry())

	paymentService := service.NewPaymentService(
		txRepo, refundRepo, methodRepo,
		testutil.NewMockTransactionManager(),
		registry, locks, cfg, metrics,
	)
	methodService := service.NewPaymentMethodService(methodRepo)

	payments := NewPaymentController(paymentService)
	methods := NewPaymentMethodController(methodService)

	r := chi.NewRouter()
	r.Post("/payments", payments.Charge)
	r.Post("/payments/authorize", payments.Authorize)
	r.Get("/payments", payments.ListTransactions)
	r.Get("/payments/{id}", payments.GetTransaction)
	r.Post("/payments/{id}/capture", payments.Capture)
	r.Post("/payments/{id}/void", payments.Void)
	r.Post("/payments/{id}/refund", payments.Refund)
	r.Get("/payments/{id}/refunds", payments.ListRefunds)
	r.Get("/owners/{type}/{id}/summary", payments.OwnerSummary)
	r.Post("/payment-methods", methods.Create)
	r.Get("/payment-methods/{id}", methods.Get)
	r.Delete("/payment-methods/{id}", methods.Delete)
	r.Get("/owners/{type}/{id}/payment-methods", methods.ListByOwner)

	return &controllerFixture{
		router:     r,
		txRepo:     txRepo,
		methodRepo: methodRepo,
		stripeAPI:  stripeAPI,
	}
}

func (f *controllerFixture) do(t *testing.T, httpMethod, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(httpMethod, path, reader)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *controllerFixture) chargeSucceeded(t *testing.T, amount int64) TransactionResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/payments", ChargeRequest{
		PayableType: "user",
		PayableID:   "42",
		Amount:      amount,
		Currency:    "USD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCharge(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payments", ChargeRequest{
		PayableType:        "user",
		PayableID:          "42",
		Amount:             2500,
		Currency:           "USD",
		PaymentMethodToken: "tok_mastercard_5100",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "succeeded", resp.Status)
	assert.Equal(t, int64(2500), resp.Amount)
	assert.Equal(t, "25.00", resp.FormattedAmount)
	require.NotNil(t, resp.PaymentMethod)
	assert.Equal(t, "mastercard", resp.PaymentMethod.Brand)
	assert.Equal(t, "Mastercard •••• 5100", resp.PaymentMethod.DisplayName)
}

func TestCharge_ValidationFailure(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payments", ChargeRequest{
		PayableType: "user",
		PayableID:   "42",
		Amount:      -5,
		Currency:    "USD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCharge_UnknownProcessor(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payments", ChargeRequest{
		Processor:   "square",
		PayableType: "user",
		PayableID:   "42",
		Amount:      1000,
		Currency:    "USD",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unknown_processor", resp.Code)
}

func TestAuthorizeAndCapture(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payments/authorize", ChargeRequest{
		PayableType: "user",
		PayableID:   "42",
		Amount:      5000,
		Currency:    "USD",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var authorized TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&authorized))
	assert.Equal(t, "requires_capture", authorized.Status)

	rec = f.do(t, http.MethodPost, "/payments/"+authorized.ID+"/capture", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var captured TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&captured))
	assert.Equal(t, "succeeded", captured.Status)
}

func TestGetTransaction(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 1000)

	rec := f.do(t, http.MethodGet, "/payments/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, created.ID, resp.ID)
}

func TestGetTransaction_NotFound(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodGet, "/payments/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetTransaction_InvalidID(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodGet, "/payments/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefund(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 3000)

	rec := f.do(t, http.MethodPost, "/payments/"+created.ID+"/refund", RefundRequest{
		Amount: int64Ptr(1000),
		Reason: "requested_by_customer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp RefundResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "succeeded", resp.Status)
	assert.Equal(t, int64(1000), resp.Amount)
	assert.Equal(t, created.ID, resp.TransactionID)
}

func TestRefund_NoBodyRefundsRemaining(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 2000)

	rec := f.do(t, http.MethodPost, "/payments/"+created.ID+"/refund", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp RefundResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(2000), resp.Amount)
}

func TestRefund_ExceedsRemaining(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 1000)

	rec := f.do(t, http.MethodPost, "/payments/"+created.ID+"/refund", RefundRequest{
		Amount: int64Ptr(5000),
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "refund_exceeds_remaining", resp.Code)
}

func TestVoid(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 1000)

	rec := f.do(t, http.MethodPost, "/payments/"+created.ID+"/void", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "canceled", resp.Status)
}

func TestListRefunds(t *testing.T) {
	f := setupController(t)
	created := f.chargeSucceeded(t, 3000)

	rec := f.do(t, http.MethodPost, "/payments/"+created.ID+"/refund", RefundRequest{Amount: int64Ptr(500)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/payments/"+created.ID+"/refunds", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var refunds []*RefundResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&refunds))
	require.Len(t, refunds, 1)
	assert.Equal(t, int64(500), refunds[0].Amount)
}

func TestListTransactions_StatusFilter(t *testing.T) {
	f := setupController(t)
	f.chargeSucceeded(t, 1000)
	f.chargeSucceeded(t, 2000)

	rec := f.do(t, http.MethodGet, "/payments?status=succeeded", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)

	rec = f.do(t, http.MethodGet, "/payments?status=failed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list = nil
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestOwnerSummary(t *testing.T) {
	f := setupController(t)
	f.chargeSucceeded(t, 1000)
	f.chargeSucceeded(t, 2500)

	rec := f.do(t, http.MethodGet, "/owners/user/42/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OwnerSummaryResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "user", resp.OwnerType)
	assert.Equal(t, int64(3500), resp.TotalPaidAmount)
	assert.Equal(t, int64(2), resp.TransactionCount)
}

func TestSnapshotSurvivesMethodDeletion(t *testing.T) {
	f := setupController(t)

	pm, err := method.NewPaymentMethod(
		method.OwnerRef{Type: "user", ID: "42"}, "stripe", "tok_visa_9876", method.BrandVisa)
	require.NoError(t, err)
	pm.LastFour = "9876"
	f.methodRepo.Add(pm)

	pmID := pm.ID.String()
	rec := f.do(t, http.MethodPost, "/payments", ChargeRequest{
		PayableType:     "user",
		PayableID:       "42",
		Amount:          1000,
		Currency:        "USD",
		PaymentMethodID: &pmID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = f.do(t, http.MethodDelete, "/payment-methods/"+pmID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The transaction keeps its embedded snapshot.
	rec = f.do(t, http.MethodGet, "/payments/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var fetched TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fetched))
	require.NotNil(t, fetched.PaymentMethod)
	assert.Equal(t, "9876", fetched.PaymentMethod.LastFour)
}

func int64Ptr(v int64) *int64 { return &v }
