package method

import (
	"fmt"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
)

// Snapshot is an immutable description of the payment instrument used for a
// single transaction. It is captured at charge time and embedded in the
// transaction record, so deleting or mutating a stored payment method later
// cannot corrupt historical transactions.
//
// Type is always derived from Brand; the constructors never accept it
// independently, which keeps the brand/type mapping consistent.
type Snapshot struct {
	Type        Type
	Brand       Brand
	LastFour    string
	DisplayName string
}

// FromCardData builds a snapshot for a card payment. The brand must be a
// card-network brand; the display name defaults to "<label> •••• <lastFour>".
func FromCardData(brand, lastFour string, displayName ...string) (Snapshot, error) {
	b, err := ParseBrand(brand)
	if err != nil {
		return Snapshot{}, err
	}
	name := optional(displayName)
	if name == "" {
		name = fmt.Sprintf("%s •••• %s", b.Label(), lastFour)
	}
	return Snapshot{
		Type:        b.Type(),
		Brand:       b,
		LastFour:    lastFour,
		DisplayName: name,
	}, nil
}

// FromDigitalWallet builds a snapshot for a wallet payment.
func FromDigitalWallet(brand string, displayName ...string) (Snapshot, error) {
	return fromBrandOnly(brand, optional(displayName))
}

// FromBankTransfer builds a snapshot for a bank transfer. The method string
// names the rail (wire_transfer, sepa, ach, swift, bank_deposit).
func FromBankTransfer(transferMethod string, displayName ...string) (Snapshot, error) {
	return fromBrandOnly(transferMethod, optional(displayName))
}

// FromCryptocurrency builds a snapshot for a crypto payment.
func FromCryptocurrency(currency string, displayName ...string) (Snapshot, error) {
	return fromBrandOnly(currency, optional(displayName))
}

// FromCash builds a snapshot for a cash payment.
func FromCash(displayName ...string) Snapshot {
	name := optional(displayName)
	if name == "" {
		name = "Cash Payment"
	}
	return Snapshot{
		Type:        TypeCash,
		Brand:       BrandCash,
		DisplayName: name,
	}
}

// FromMap reconstructs a snapshot from persisted fields, the inverse of
// ToMap. It fails if the brand is not a recognized value.
func FromMap(data map[string]string) (Snapshot, error) {
	b, err := ParseBrand(data["payment_method_brand"])
	if err != nil {
		return Snapshot{}, err
	}
	t := Type(data["payment_method_type"])
	if !t.IsValid() {
		return Snapshot{}, domainErrors.NewValidationError("payment_method_type", "unknown payment method type")
	}
	return Snapshot{
		Type:        t,
		Brand:       b,
		LastFour:    data["payment_method_last_four"],
		DisplayName: data["payment_method_display_name"],
	}, nil
}

func fromBrandOnly(brand, displayName string) (Snapshot, error) {
	b, err := ParseBrand(brand)
	if err != nil {
		return Snapshot{}, err
	}
	if displayName == "" {
		displayName = b.Label()
	}
	return Snapshot{
		Type:        b.Type(),
		Brand:       b,
		DisplayName: displayName,
	}, nil
}

func optional(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

// ToMap flattens the snapshot into the persisted field layout.
func (s Snapshot) ToMap() map[string]string {
	return map[string]string{
		"payment_method_type":         string(s.Type),
		"payment_method_brand":        string(s.Brand),
		"payment_method_last_four":    s.LastFour,
		"payment_method_display_name": s.DisplayName,
	}
}

// Display returns the human-readable description of the instrument: the
// explicit display name when set, otherwise "<label> •••• <lastFour>" for
// card brands, otherwise the brand label alone.
func (s Snapshot) Display() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	if s.LastFour != "" && s.Brand.RequiresLastFour() {
		return fmt.Sprintf("%s •••• %s", s.Brand.Label(), s.LastFour)
	}
	return s.Brand.Label()
}

// Icon returns the icon identifier for the snapshot's brand.
func (s Snapshot) Icon() string {
	return s.Brand.Icon()
}

// IsZero reports whether the snapshot carries no instrument information.
func (s Snapshot) IsZero() bool {
	return s == Snapshot{}
}
