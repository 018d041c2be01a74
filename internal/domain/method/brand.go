package method

import (
	"strings"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
)

// Brand identifies the payment network, wallet, asset or rail behind a
// payment instrument. The set is closed: processors are responsible for
// mapping unknown upstream values to BrandOther before constructing a
// snapshot.
type Brand string

const (
	// Credit/debit cards
	BrandVisa            Brand = "visa"
	BrandMastercard      Brand = "mastercard"
	BrandAmericanExpress Brand = "american_express"
	BrandDiscover        Brand = "discover"
	BrandJCB             Brand = "jcb"
	BrandDinersClub      Brand = "diners_club"
	BrandUnionPay        Brand = "union_pay"

	// Digital wallets & payment processors
	BrandApplePay   Brand = "apple_pay"
	BrandGooglePay  Brand = "google_pay"
	BrandSamsungPay Brand = "samsung_pay"
	BrandPayPal     Brand = "paypal"
	BrandAliPay     Brand = "alipay"
	BrandWeChat     Brand = "wechat"

	// Cryptocurrency
	BrandBinancePay Brand = "binance_pay"
	BrandBitcoin    Brand = "bitcoin"
	BrandEthereum   Brand = "ethereum"
	BrandUSDT       Brand = "usdt"
	BrandUSDC       Brand = "usdc"

	// Regional payment methods
	BrandFawry    Brand = "fawry"
	BrandVodafone Brand = "vodafone"
	BrandOrange   Brand = "orange"
	BrandEtisalat Brand = "etisalat"
	BrandInstaPay Brand = "instapay"
	BrandValU     Brand = "valu"

	// Bank transfers
	BrandWireTransfer Brand = "wire_transfer"
	BrandSEPA         Brand = "sepa"
	BrandACH          Brand = "ach"
	BrandSWIFT        Brand = "swift"

	// Cash & other
	BrandCash        Brand = "cash"
	BrandCheck       Brand = "check"
	BrandBankDeposit Brand = "bank_deposit"
	BrandMoneyOrder  Brand = "money_order"
	BrandOther       Brand = "other"
)

var brandLabels = map[Brand]string{
	BrandVisa:            "Visa",
	BrandMastercard:      "Mastercard",
	BrandAmericanExpress: "American Express",
	BrandDiscover:        "Discover",
	BrandJCB:             "JCB",
	BrandDinersClub:      "Diners Club",
	BrandUnionPay:        "UnionPay",
	BrandApplePay:        "Apple Pay",
	BrandGooglePay:       "Google Pay",
	BrandSamsungPay:      "Samsung Pay",
	BrandPayPal:          "PayPal",
	BrandAliPay:          "AliPay",
	BrandWeChat:          "WeChat Pay",
	BrandBinancePay:      "Binance Pay",
	BrandBitcoin:         "Bitcoin",
	BrandEthereum:        "Ethereum",
	BrandUSDT:            "USDT",
	BrandUSDC:            "USDC",
	BrandFawry:           "Fawry",
	BrandVodafone:        "Vodafone Cash",
	BrandOrange:          "Orange Money",
	BrandEtisalat:        "Etisalat Cash",
	BrandInstaPay:        "InstaPay",
	BrandValU:            "valU",
	BrandWireTransfer:    "Wire Transfer",
	BrandSEPA:            "SEPA Transfer",
	BrandACH:             "ACH Transfer",
	BrandSWIFT:           "SWIFT Transfer",
	BrandCash:            "Cash",
	BrandCheck:           "Check",
	BrandBankDeposit:     "Bank Deposit",
	BrandMoneyOrder:      "Money Order",
	BrandOther:           "Other",
}

// ParseBrand maps a raw string to a Brand. Matching is case-insensitive.
// Values outside the closed enumeration fail with an UnknownBrandError;
// there is no silent fallback to BrandOther.
func ParseBrand(s string) (Brand, error) {
	b := Brand(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := brandLabels[b]; !ok {
		return "", domainErrors.NewUnknownBrandError(s)
	}
	return b, nil
}

// Label returns the human-readable name of the brand.
func (b Brand) Label() string {
	if label, ok := brandLabels[b]; ok {
		return label
	}
	return string(b)
}

// Type returns the payment method type the brand belongs to. The mapping is
// total: every brand maps to exactly one type.
func (b Brand) Type() Type {
	switch b {
	case BrandVisa, BrandMastercard, BrandAmericanExpress,
		BrandDiscover, BrandJCB, BrandDinersClub, BrandUnionPay:
		return TypeCreditCard
	case BrandApplePay, BrandGooglePay, BrandSamsungPay, BrandPayPal,
		BrandAliPay, BrandWeChat, BrandFawry, BrandVodafone,
		BrandOrange, BrandEtisalat, BrandInstaPay, BrandValU:
		return TypeDigitalWallet
	case BrandBinancePay, BrandBitcoin, BrandEthereum, BrandUSDT, BrandUSDC:
		return TypeCryptocurrency
	case BrandWireTransfer, BrandSEPA, BrandACH, BrandSWIFT, BrandBankDeposit:
		return TypeBankTransfer
	case BrandCash:
		return TypeCash
	case BrandCheck, BrandMoneyOrder:
		return TypeCheck
	default:
		return TypeOther
	}
}

// RequiresLastFour reports whether the brand carries a card number whose
// last four digits should be kept for display.
func (b Brand) RequiresLastFour() bool {
	switch b {
	case BrandVisa, BrandMastercard, BrandAmericanExpress,
		BrandDiscover, BrandJCB, BrandDinersClub, BrandUnionPay:
		return true
	default:
		return false
	}
}

// Icon returns the icon identifier for the brand.
func (b Brand) Icon() string {
	switch b {
	case BrandVisa:
		return "visa"
	case BrandMastercard:
		return "mastercard"
	case BrandAmericanExpress:
		return "american-express"
	case BrandApplePay:
		return "apple-pay"
	case BrandGooglePay:
		return "google-pay"
	case BrandPayPal:
		return "paypal"
	case BrandBinancePay:
		return "binance-pay"
	case BrandFawry:
		return "fawry"
	case BrandWireTransfer:
		return "wire-transfer"
	default:
		return "credit-card"
	}
}

// IsValid reports whether b is one of the closed enumeration values.
func (b Brand) IsValid() bool {
	_, ok := brandLabels[b]
	return ok
}

// Brands returns all values of the closed enumeration.
func Brands() []Brand {
	out := make([]Brand, 0, len(brandLabels))
	for b := range brandLabels {
		out = append(out, b)
	}
	return out
}
