package method

import (
	"errors"
	"testing"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrand_CaseInsensitive(t *testing.T) {
	b, err := ParseBrand("ViSa")
	require.NoError(t, err)
	assert.Equal(t, BrandVisa, b)

	b, err = ParseBrand("  MASTERCARD  ")
	require.NoError(t, err)
	assert.Equal(t, BrandMastercard, b)
}

func TestParseBrand_Unknown(t *testing.T) {
	_, err := ParseBrand("klingon_express")
	require.Error(t, err)

	var unknownErr *domainErrors.UnknownBrandError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "klingon_express", unknownErr.Value)
	assert.True(t, errors.Is(err, domainErrors.ErrUnknownBrand))
}

func TestParseBrand_NoSilentFallbackToOther(t *testing.T) {
	// "other" itself is a valid value, but arbitrary strings must not
	// collapse into it.
	b, err := ParseBrand("other")
	require.NoError(t, err)
	assert.Equal(t, BrandOther, b)

	_, err = ParseBrand("something_else_entirely")
	assert.Error(t, err)
}

func TestBrand_TypeMappingIsTotal(t *testing.T) {
	for _, b := range Brands() {
		assert.True(t, b.Type().IsValid(), "brand %q maps to invalid type", b)
	}
}

func TestBrand_Type(t *testing.T) {
	assert.Equal(t, TypeCreditCard, BrandVisa.Type())
	assert.Equal(t, TypeCreditCard, BrandUnionPay.Type())
	assert.Equal(t, TypeDigitalWallet, BrandPayPal.Type())
	assert.Equal(t, TypeDigitalWallet, BrandFawry.Type())
	assert.Equal(t, TypeCryptocurrency, BrandBitcoin.Type())
	assert.Equal(t, TypeBankTransfer, BrandSEPA.Type())
	assert.Equal(t, TypeBankTransfer, BrandBankDeposit.Type())
	assert.Equal(t, TypeCash, BrandCash.Type())
	assert.Equal(t, TypeCheck, BrandMoneyOrder.Type())
	assert.Equal(t, TypeOther, BrandOther.Type())
}

func TestBrand_RequiresLastFour(t *testing.T) {
	assert.True(t, BrandVisa.RequiresLastFour())
	assert.True(t, BrandAmericanExpress.RequiresLastFour())
	assert.False(t, BrandPayPal.RequiresLastFour())
	assert.False(t, BrandCash.RequiresLastFour())
	assert.False(t, BrandBitcoin.RequiresLastFour())
}

func TestBrand_Label(t *testing.T) {
	assert.Equal(t, "Visa", BrandVisa.Label())
	assert.Equal(t, "American Express", BrandAmericanExpress.Label())
	assert.Equal(t, "Vodafone Cash", BrandVodafone.Label())

	// Unknown brands fall back to the raw value.
	assert.Equal(t, "weird", Brand("weird").Label())
}
