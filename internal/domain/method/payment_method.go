package method

import (
	"fmt"
	"time"

	domainErrors "github.com/asciisd/cashier/internal/domain/errors"
	"github.com/google/uuid"
)

// OwnerRef identifies the owning entity of a payment method or transaction
// without coupling the cashier to the application's own models. The type is
// an application-defined discriminator (e.g. "user", "organization").
type OwnerRef struct {
	Type string
	ID   string
}

func (o OwnerRef) String() string {
	return o.Type + ":" + o.ID
}

// PaymentMethod is a stored, reusable payment instrument. Transactions never
// reference it directly: charge-time identity is captured as a Snapshot, so
// a payment method can be deleted without orphaning history.
type PaymentMethod struct {
	ID                       uuid.UUID
	Owner                    OwnerRef
	ProcessorName            string
	ProcessorPaymentMethodID string
	Type                     Type
	Brand                    Brand
	LastFour                 string
	ExpMonth                 int
	ExpYear                  int
	IsDefault                bool
	Metadata                 map[string]any
	CreatedAt                time.Time
	UpdatedAt                time.Time
}

// NewPaymentMethod creates a stored payment method for an owner. The type is
// derived from the brand, mirroring the snapshot constructors.
func NewPaymentMethod(owner OwnerRef, processorName, processorPaymentMethodID string, brand Brand) (*PaymentMethod, error) {
	if !brand.IsValid() {
		return nil, domainErrors.NewUnknownBrandError(string(brand))
	}
	now := time.Now()
	return &PaymentMethod{
		ID:                       uuid.New(),
		Owner:                    owner,
		ProcessorName:            processorName,
		ProcessorPaymentMethodID: processorPaymentMethodID,
		Type:                     brand.Type(),
		Brand:                    brand,
		Metadata:                 make(map[string]any),
		CreatedAt:                now,
		UpdatedAt:                now,
	}, nil
}

// DisplayName renders the stored instrument for display.
func (m *PaymentMethod) DisplayName() string {
	if m.Type.IsCard() && m.LastFour != "" {
		return fmt.Sprintf("%s ending in %s", m.Brand.Label(), m.LastFour)
	}
	return m.Type.Label()
}

// Snapshot captures the stored instrument as an immutable snapshot suitable
// for embedding in a transaction.
func (m *PaymentMethod) Snapshot() Snapshot {
	return Snapshot{
		Type:        m.Brand.Type(),
		Brand:       m.Brand,
		LastFour:    m.LastFour,
		DisplayName: "",
	}
}

// IsExpired reports whether the instrument's expiry month has passed.
// Instruments without expiry data never expire.
func (m *PaymentMethod) IsExpired() bool {
	return m.IsExpiredAt(time.Now())
}

// IsExpiredAt is IsExpired evaluated against an explicit clock.
func (m *PaymentMethod) IsExpiredAt(now time.Time) bool {
	if m.ExpMonth == 0 || m.ExpYear == 0 {
		return false
	}
	// Valid through the last instant of the expiry month.
	endOfMonth := time.Date(m.ExpYear, time.Month(m.ExpMonth), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, 1, 0)
	return !now.Before(endOfMonth)
}

// IsExpiringSoon reports whether the instrument expires within three months.
func (m *PaymentMethod) IsExpiringSoon() bool {
	return m.IsExpiringSoonAt(time.Now())
}

// IsExpiringSoonAt is IsExpiringSoon evaluated against an explicit clock.
func (m *PaymentMethod) IsExpiringSoonAt(now time.Time) bool {
	if m.ExpMonth == 0 || m.ExpYear == 0 {
		return false
	}
	if m.IsExpiredAt(now) {
		return false
	}
	endOfMonth := time.Date(m.ExpYear, time.Month(m.ExpMonth), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, 1, 0)
	return !endOfMonth.After(now.AddDate(0, 3, 0))
}
