package controller

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *controllerFixture) createMethod(t *testing.T, body CreatePaymentMethodRequest) PaymentMethodResponse {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/payment-methods", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp PaymentMethodResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCreatePaymentMethod(t *testing.T) {
	f := setupController(t)

	resp := f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "user",
		OwnerID:   "42",
		Processor: "stripe",
		Brand:     "visa",
		LastFour:  "4242",
		ExpMonth:  12,
		ExpYear:   2030,
	})

	assert.Equal(t, "credit_card", resp.Type)
	assert.Equal(t, "visa", resp.Brand)
	assert.Equal(t, "Visa ending in 4242", resp.DisplayName)
	assert.True(t, resp.IsDefault)
	assert.False(t, resp.IsExpired)
}

func TestCreatePaymentMethod_UnknownBrand(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payment-methods", CreatePaymentMethodRequest{
		OwnerType: "user",
		OwnerID:   "42",
		Processor: "stripe",
		Brand:     "monopoly_money",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "unknown_brand", resp.Code)
}

func TestCreatePaymentMethod_InvalidLastFour(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodPost, "/payment-methods", CreatePaymentMethodRequest{
		OwnerType: "user",
		OwnerID:   "42",
		Processor: "stripe",
		Brand:     "visa",
		LastFour:  "42",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetPaymentMethod(t *testing.T) {
	f := setupController(t)
	created := f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "user", OwnerID: "42", Processor: "stripe", Brand: "visa",
	})

	rec := f.do(t, http.MethodGet, "/payment-methods/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaymentMethodResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, created.ID, resp.ID)
}

func TestGetPaymentMethod_NotFound(t *testing.T) {
	f := setupController(t)

	rec := f.do(t, http.MethodGet, "/payment-methods/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeletePaymentMethod(t *testing.T) {
	f := setupController(t)
	created := f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "user", OwnerID: "42", Processor: "stripe", Brand: "visa",
	})

	rec := f.do(t, http.MethodDelete, "/payment-methods/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/payment-methods/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListPaymentMethodsByOwner(t *testing.T) {
	f := setupController(t)
	f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "user", OwnerID: "42", Processor: "stripe", Brand: "visa",
	})
	f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "user", OwnerID: "42", Processor: "stripe", Brand: "mastercard",
	})
	f.createMethod(t, CreatePaymentMethodRequest{
		OwnerType: "organization", OwnerID: "7", Processor: "stripe", Brand: "visa",
	})

	rec := f.do(t, http.MethodGet, "/owners/user/42/payment-methods", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var methods []*PaymentMethodResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&methods))
	assert.Len(t, methods, 2)
	// Default first.
	assert.True(t, methods[0].IsDefault)
}
