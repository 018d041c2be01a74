package transaction

import (
	"testing"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTransaction(t *testing.T, amount int64) *Transaction {
	t.Helper()
	snapshot, err := method.FromCardData("visa", "4242")
	require.NoError(t, err)

	txn, err := NewTransaction("stripe", method.OwnerRef{Type: "user", ID: "1"}, snapshot, amount, "USD")
	require.NoError(t, err)
	return txn
}

func succeededRefund(t *testing.T, txnID uuid.UUID, amount int64) *Refund {
	t.Helper()
	r, err := NewRefund(txnID, amount, "USD", "")
	require.NoError(t, err)
	r.MarkSucceeded("re_"+uuid.NewString()[:8], nil)
	return r
}

func TestNewTransaction(t *testing.T) {
	txn := newTestTransaction(t, 3000)

	assert.Equal(t, StatusPending, txn.Status)
	assert.Equal(t, "stripe", txn.ProcessorName)
	assert.Equal(t, int64(3000), txn.Amount)
	assert.Equal(t, "USD", txn.Currency)
	assert.True(t, txn.IsPending())
	assert.NotNil(t, txn.Metadata)
}

func TestNewTransaction_Validation(t *testing.T) {
	snapshot := method.FromCash()
	payable := method.OwnerRef{Type: "user", ID: "1"}

	_, err := NewTransaction("stripe", payable, snapshot, 0, "USD")
	assert.Error(t, err)

	_, err = NewTransaction("stripe", payable, snapshot, -100, "USD")
	assert.Error(t, err)

	_, err = NewTransaction("stripe", payable, snapshot, 100, "DOLLARS")
	assert.Error(t, err)

	_, err = NewTransaction("", payable, snapshot, 100, "USD")
	assert.Error(t, err)
}

func TestTransaction_MarkSucceeded(t *testing.T) {
	txn := newTestTransaction(t, 1000)
	txn.MarkSucceeded("pi_123", map[string]any{"id": "pi_123"})

	assert.True(t, txn.IsSuccessful())
	assert.Equal(t, "pi_123", txn.ProcessorTransactionID)
	require.NotNil(t, txn.ProcessedAt)
	assert.Nil(t, txn.FailedAt)
}

func TestTransaction_MarkFailed(t *testing.T) {
	txn := newTestTransaction(t, 1000)
	txn.MarkFailed("card_declined", "Your card was declined", nil)

	assert.True(t, txn.IsFailed())
	assert.Equal(t, "card_declined", txn.ErrorCode)
	require.NotNil(t, txn.FailedAt)
	assert.Nil(t, txn.ProcessedAt)
}

func TestTransaction_SetStatusTimestamps(t *testing.T) {
	txn := newTestTransaction(t, 1000)

	txn.SetStatus(StatusProcessing)
	assert.Nil(t, txn.ProcessedAt)

	txn.SetStatus(StatusSucceeded)
	require.NotNil(t, txn.ProcessedAt)
	first := *txn.ProcessedAt

	// A repeated succeeded status must not move the timestamp.
	txn.SetStatus(StatusSucceeded)
	assert.Equal(t, first, *txn.ProcessedAt)
}

func TestTransaction_RefundLedger(t *testing.T) {
	txn := newTestTransaction(t, 3000)
	txn.MarkSucceeded("pi_123", nil)

	failed, err := NewRefund(txn.ID, 2000, "USD", "")
	require.NoError(t, err)
	failed.MarkFailed(nil)

	txn.Refunds = []*Refund{
		succeededRefund(t, txn.ID, 1000),
		succeededRefund(t, txn.ID, 500),
		failed,
	}

	// Only succeeded refunds count toward the ledger.
	assert.Equal(t, int64(1500), txn.TotalRefunded())
	assert.Equal(t, int64(1500), txn.RemainingRefundable())
	assert.True(t, txn.CanBeRefunded())
}

func TestTransaction_FullyRefunded(t *testing.T) {
	txn := newTestTransaction(t, 1000)
	txn.MarkSucceeded("pi_123", nil)
	txn.Refunds = []*Refund{succeededRefund(t, txn.ID, 1000)}

	assert.Equal(t, int64(0), txn.RemainingRefundable())
	assert.False(t, txn.CanBeRefunded())
}

func TestTransaction_NotSuccessfulNotRefundable(t *testing.T) {
	txn := newTestTransaction(t, 1000)
	assert.False(t, txn.CanBeRefunded())

	txn.MarkFailed("card_declined", "declined", nil)
	assert.False(t, txn.CanBeRefunded())
}

func TestTransaction_FormattedAmount(t *testing.T) {
	txn := newTestTransaction(t, 123456)
	assert.Equal(t, "1234.56", txn.FormattedAmount())

	txn.Amount = 5
	assert.Equal(t, "0.05", txn.FormattedAmount())
}

func TestTransaction_PaymentMethodDisplay(t *testing.T) {
	txn := newTestTransaction(t, 1000)
	assert.Equal(t, "Visa •••• 4242", txn.PaymentMethodDisplay())
	assert.True(t, txn.HasCardDetails())

	txn.PaymentMethod = method.Snapshot{}
	assert.Equal(t, "Unknown", txn.PaymentMethodDisplay())
	assert.False(t, txn.HasCardDetails())
}

func TestNewRefund_Validation(t *testing.T) {
	_, err := NewRefund(uuid.New(), 0, "USD", "")
	assert.Error(t, err)

	_, err = NewRefund(uuid.New(), 100, "US", "")
	assert.Error(t, err)

	r, err := NewRefund(uuid.New(), 100, "USD", "requested_by_customer")
	require.NoError(t, err)
	assert.Equal(t, RefundStatusPending, r.Status)
	assert.Equal(t, "requested_by_customer", r.Reason)
}
