package processor

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaytiko_Charge(t *testing.T) {
	p := NewPaytikoProcessor(nil)

	result, err := p.Charge(context.Background(), ChargeData{
		Amount:        4000,
		Currency:      "egp",
		PaymentMethod: "fawry",
	})
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, transaction.StatusSucceeded, result.Status)
	assert.Equal(t, "EGP", result.Currency)

	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, method.BrandFawry, result.PaymentMethod.Brand)
	assert.Equal(t, method.TypeDigitalWallet, result.PaymentMethod.Type)
}

func TestPaytiko_Charge_DefaultsToFawry(t *testing.T) {
	p := NewPaytikoProcessor(nil)

	result, err := p.Charge(context.Background(), ChargeData{Amount: 1000, Currency: "EGP"})
	require.NoError(t, err)

	require.NotNil(t, result.PaymentMethod)
	assert.Equal(t, method.BrandFawry, result.PaymentMethod.Brand)
}

func TestPaytiko_Refund(t *testing.T) {
	p := NewPaytikoProcessor(nil)
	ctx := context.Background()

	charged, err := p.Charge(ctx, ChargeData{Amount: 2000, Currency: "EGP"})
	require.NoError(t, err)

	refund, err := p.Refund(ctx, charged.TransactionID, nil)
	require.NoError(t, err)
	assert.True(t, refund.Success)
	assert.Equal(t, int64(2000), refund.Amount)
}

type pendingPaytikoAPI struct{}

func (pendingPaytikoAPI) CreatePayment(_ context.Context, req PaytikoPaymentRequest) (*PaytikoPayment, error) {
	return &PaytikoPayment{
		ID:       "ptk_pending",
		Status:   "pending",
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
	}, nil
}

func (pendingPaytikoAPI) RefundPayment(_ context.Context, req PaytikoRefundRequest) (*PaytikoRefund, error) {
	return &PaytikoRefund{ID: "ptk_rf_1", PaymentID: req.PaymentID, Status: "pending"}, nil
}

func TestPaytiko_Charge_PendingSettlement(t *testing.T) {
	p := NewPaytikoProcessor(nil, WithPaytikoAPI(pendingPaytikoAPI{}))

	result, err := p.Charge(context.Background(), ChargeData{Amount: 1000, Currency: "EGP"})
	require.NoError(t, err)

	// Accepted but not confirmed: success with a pending status.
	assert.True(t, result.Success)
	assert.Equal(t, transaction.StatusPending, result.Status)
}

func TestPaytiko_Refund_NotCompletedIsFailed(t *testing.T) {
	p := NewPaytikoProcessor(nil, WithPaytikoAPI(pendingPaytikoAPI{}))

	refund, err := p.Refund(context.Background(), "ptk_1", nil)
	require.NoError(t, err)
	assert.False(t, refund.Success)
	assert.Equal(t, transaction.RefundStatusFailed, refund.Status)
}

func TestPaytiko_UnsupportedOperations(t *testing.T) {
	p := NewPaytikoProcessor(nil)
	ctx := context.Background()

	assert.False(t, p.Supports(FeatureCapture))
	assert.False(t, p.Supports(FeatureAuthorize))
	assert.False(t, p.Supports(FeatureVoid))

	_, err := p.Capture(ctx, "ptk_1", nil)
	assert.True(t, errors.Is(err, domainErrors.ErrUnsupportedOperation))

	_, err = p.Authorize(ctx, ChargeData{Amount: 100, Currency: "EGP"})
	assert.True(t, errors.Is(err, domainErrors.ErrUnsupportedOperation))

	_, err = p.PaymentStatus(ctx, "ptk_1")
	assert.True(t, errors.Is(err, domainErrors.ErrUnsupportedOperation))
}
