package method

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentMethod(t *testing.T) {
	owner := OwnerRef{Type: "user", ID: "42"}

	pm, err := NewPaymentMethod(owner, "stripe", "pm_123", BrandVisa)
	require.NoError(t, err)

	assert.NotEqual(t, [16]byte{}, [16]byte(pm.ID))
	assert.Equal(t, owner, pm.Owner)
	assert.Equal(t, TypeCreditCard, pm.Type)
	assert.Equal(t, BrandVisa, pm.Brand)
	assert.False(t, pm.IsDefault)
	assert.NotNil(t, pm.Metadata)
}

func TestNewPaymentMethod_InvalidBrand(t *testing.T) {
	_, err := NewPaymentMethod(OwnerRef{Type: "user", ID: "42"}, "stripe", "pm_123", Brand("bogus"))
	assert.Error(t, err)
}

func TestPaymentMethod_DisplayName(t *testing.T) {
	pm, err := NewPaymentMethod(OwnerRef{Type: "user", ID: "1"}, "stripe", "pm_1", BrandMastercard)
	require.NoError(t, err)
	pm.LastFour = "5100"
	assert.Equal(t, "Mastercard ending in 5100", pm.DisplayName())

	wallet, err := NewPaymentMethod(OwnerRef{Type: "user", ID: "1"}, "paypal", "pp_1", BrandPayPal)
	require.NoError(t, err)
	assert.Equal(t, "Digital Wallet", wallet.DisplayName())
}

func TestPaymentMethod_Snapshot(t *testing.T) {
	pm, err := NewPaymentMethod(OwnerRef{Type: "user", ID: "1"}, "stripe", "pm_1", BrandVisa)
	require.NoError(t, err)
	pm.LastFour = "4242"

	s := pm.Snapshot()
	assert.Equal(t, TypeCreditCard, s.Type)
	assert.Equal(t, BrandVisa, s.Brand)
	assert.Equal(t, "4242", s.LastFour)
	assert.Equal(t, "Visa •••• 4242", s.Display())
}

func TestPaymentMethod_IsExpiredAt(t *testing.T) {
	pm := &PaymentMethod{ExpMonth: 6, ExpYear: 2026}

	// Valid through the last instant of June 2026.
	inside := time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC)
	assert.False(t, pm.IsExpiredAt(inside))

	after := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, pm.IsExpiredAt(after))
}

func TestPaymentMethod_NoExpiryNeverExpires(t *testing.T) {
	pm := &PaymentMethod{}
	assert.False(t, pm.IsExpiredAt(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, pm.IsExpiringSoonAt(time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPaymentMethod_IsExpiringSoonAt(t *testing.T) {
	pm := &PaymentMethod{ExpMonth: 6, ExpYear: 2026}

	// More than three months out.
	assert.False(t, pm.IsExpiringSoonAt(time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)))

	// Within the three-month window.
	assert.True(t, pm.IsExpiringSoonAt(time.Date(2026, time.May, 15, 0, 0, 0, 0, time.UTC)))

	// Already expired is not "expiring soon".
	assert.False(t, pm.IsExpiringSoonAt(time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)))
}

func TestOwnerRef_String(t *testing.T) {
	assert.Equal(t, "user:42", OwnerRef{Type: "user", ID: "42"}.String())
}
