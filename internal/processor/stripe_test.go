package processor

import (
	"context"
	"testing"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStripe(opts ...SimulatedStripeOption) *StripeProcessor {
	return NewStripeProcessor(nil, WithStripeAPI(NewSimulatedStripeAPI(opts...)))
}

func TestStripe_Charge(t *testing.T) {
	p := newStripe()

	result, err := p.Charge(context.Background(), ChargeData{
		Amount:        2500,
		Currency:      "usd",
		PaymentMethod: "tok_mastercard_5100",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, transaction.StatusSucceeded, result.Status)
	assert.Equal(t, int64(2500), result.Amount)
	assert.Equal(t, "USD", result.Currency)
	assert.NotEmpty(t, result.TransactionID)

	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, method.BrandMastercard, result.PaymentMethod.Brand)
	assert.Equal(t, "5100", result.PaymentMethod.LastFour)
}

func TestStripe_Charge_DefaultCard(t *testing.T) {
	p := newStripe()

	result, err := p.Charge(context.Background(), ChargeData{Amount: 1000, Currency: "USD"})
	require.NoError(t, err)

	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, method.BrandVisa, result.PaymentMethod.Brand)
	assert.Equal(t, "4242", result.PaymentMethod.LastFour)
}

func TestStripe_Charge_UnknownBrandMapsToOther(t *testing.T) {
	p := newStripe()

	result, err := p.Charge(context.Background(), ChargeData{
		Amount:        1000,
		Currency:      "USD",
		PaymentMethod: "tok_mysterycard_1234",
	})
	require.NoError(t, err)

	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, method.BrandOther, result.PaymentMethod.Brand)
	assert.Equal(t, "1234", result.PaymentMethod.LastFour)
}

func TestStripe_Charge_ValidationBeforeTransport(t *testing.T) {
	p := newStripe()

	_, err := p.Charge(context.Background(), ChargeData{Amount: 0, Currency: "USD"})
	assert.Error(t, err)
}

func TestStripe_Charge_Declined(t *testing.T) {
	p := newStripe(WithStripeFailureRate(1.0, func() float64 { return 0 }))

	result, err := p.Charge(context.Background(), ChargeData{Amount: 1000, Currency: "USD"})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, transaction.StatusFailed, result.Status)
	assert.Equal(t, "card_declined", result.ErrorCode)
}

func TestStripe_AuthorizeAndCapture(t *testing.T) {
	p := newStripe()
	ctx := context.Background()

	auth, err := p.Authorize(ctx, ChargeData{Amount: 5000, Currency: "USD"})
	require.NoError(t, err)
	assert.True(t, auth.Success)
	assert.Equal(t, transaction.StatusRequiresCapture, auth.Status)

	status, err := p.PaymentStatus(ctx, auth.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusRequiresCapture, status)

	captured, err := p.Capture(ctx, auth.TransactionID, nil)
	require.NoError(t, err)
	assert.True(t, captured.Success)
	assert.Equal(t, transaction.StatusSucceeded, captured.Status)

	status, err = p.PaymentStatus(ctx, auth.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, transaction.StatusSucceeded, status)
}

func TestStripe_Refund(t *testing.T) {
	p := newStripe()
	ctx := context.Background()

	charged, err := p.Charge(ctx, ChargeData{Amount: 3000, Currency: "USD"})
	require.NoError(t, err)

	amount := int64(1000)
	refund, err := p.Refund(ctx, charged.TransactionID, &amount)
	require.NoError(t, err)

	assert.True(t, refund.Success)
	assert.Equal(t, transaction.RefundStatusSucceeded, refund.Status)
	assert.Equal(t, int64(1000), refund.Amount)
	assert.Equal(t, charged.TransactionID, refund.OriginalTransactionID)
}

func TestStripe_Refund_NilAmountRefundsRemaining(t *testing.T) {
	p := newStripe()
	ctx := context.Background()

	charged, err := p.Charge(ctx, ChargeData{Amount: 3000, Currency: "USD"})
	require.NoError(t, err)

	partial := int64(1000)
	_, err = p.Refund(ctx, charged.TransactionID, &partial)
	require.NoError(t, err)

	full, err := p.Refund(ctx, charged.TransactionID, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), full.Amount)
}

func TestStripe_Refund_ExceedsRemaining(t *testing.T) {
	p := newStripe()
	ctx := context.Background()

	charged, err := p.Charge(ctx, ChargeData{Amount: 1000, Currency: "USD"})
	require.NoError(t, err)

	tooMuch := int64(1500)
	_, err = p.Refund(ctx, charged.TransactionID, &tooMuch)
	assert.Error(t, err)
}

func TestStripe_Void(t *testing.T) {
	p := newStripe()
	ctx := context.Background()

	charged, err := p.Charge(ctx, ChargeData{Amount: 1000, Currency: "USD"})
	require.NoError(t, err)

	voided, err := p.Void(ctx, charged.TransactionID)
	require.NoError(t, err)
	assert.True(t, voided.Success)
	assert.Equal(t, transaction.StatusCanceled, voided.Status)
}

func TestStripe_Features(t *testing.T) {
	p := NewStripeProcessor(nil)

	for _, f := range []Feature{
		FeatureCharge, FeatureRefund, FeatureCapture,
		FeatureAuthorize, FeatureVoid, FeatureWebhooks, FeatureRecurring,
	} {
		assert.True(t, p.Supports(f), "feature %q", f)
	}
}
