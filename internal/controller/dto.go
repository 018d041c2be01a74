package controller

import (
	"time"

	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/asciisd/cashier/internal/domain/transaction"
)

// --- Request DTOs ---
// These DTOs handle HTTP/JSON concerns (string ids, validation tags).
// Controllers convert these to service layer DTOs before calling business
// logic. All amounts are integer minor currency units.

// ChargeRequest holds the input for charging or authorizing a payment.
type ChargeRequest struct {
	Processor          string         `json:"processor" validate:"omitempty,max=64"`
	PayableType        string         `json:"payable_type" validate:"required,max=128"`
	PayableID          string         `json:"payable_id" validate:"required,max=128"`
	Amount             int64          `json:"amount" validate:"required,gt=0"`
	Currency           string         `json:"currency" validate:"required,len=3"`
	Description        string         `json:"description" validate:"omitempty,max=255"`
	PaymentMethodID    *string        `json:"payment_method_id,omitempty" validate:"omitempty,uuid"`
	PaymentMethodToken string         `json:"payment_method_token,omitempty"`
	Customer           string         `json:"customer,omitempty"`
	Metadata           map[string]any `json:"metadata,omitempty"`
}

// CaptureRequest holds the input for capturing an authorized payment.
type CaptureRequest struct {
	Amount *int64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
}

// RefundRequest holds the input for refunding a transaction. Omitting the
// amount refunds the full remaining refundable amount.
type RefundRequest struct {
	Amount *int64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Reason string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

// CreatePaymentMethodRequest holds the input for storing a payment method.
type CreatePaymentMethodRequest struct {
	OwnerType                string         `json:"owner_type" validate:"required,max=128"`
	OwnerID                  string         `json:"owner_id" validate:"required,max=128"`
	Processor                string         `json:"processor" validate:"required,max=64"`
	ProcessorPaymentMethodID string         `json:"processor_payment_method_id" validate:"omitempty,max=255"`
	Brand                    string         `json:"brand" validate:"required,max=32"`
	LastFour                 string         `json:"last_four,omitempty" validate:"omitempty,len=4,numeric"`
	ExpMonth                 int            `json:"exp_month,omitempty" validate:"omitempty,min=1,max=12"`
	ExpYear                  int            `json:"exp_year,omitempty" validate:"omitempty,min=2000"`
	IsDefault                bool           `json:"is_default,omitempty"`
	Metadata                 map[string]any `json:"metadata,omitempty"`
}

// --- Response DTOs ---

// SnapshotResponse represents the embedded payment method snapshot.
type SnapshotResponse struct {
	Type        string `json:"type"`
	Brand       string `json:"brand"`
	LastFour    string `json:"last_four,omitempty"`
	DisplayName string `json:"display_name"`
	Icon        string `json:"icon"`
}

// TransactionResponse represents a transaction in API responses. The raw
// processor response stays server-side.
type TransactionResponse struct {
	ID                     string            `json:"id"`
	Processor              string            `json:"processor"`
	ProcessorTransactionID string            `json:"processor_transaction_id,omitempty"`
	PayableType            string            `json:"payable_type"`
	PayableID              string            `json:"payable_id"`
	PaymentMethod          *SnapshotResponse `json:"payment_method,omitempty"`
	Amount                 int64             `json:"amount"`
	FormattedAmount        string            `json:"formatted_amount"`
	Currency               string            `json:"currency"`
	Status                 string            `json:"status"`
	Description            string            `json:"description,omitempty"`
	ErrorCode              string            `json:"error_code,omitempty"`
	ErrorMessage           string            `json:"error_message,omitempty"`
	Metadata               map[string]any    `json:"metadata,omitempty"`
	TotalRefunded          int64             `json:"total_refunded"`
	RemainingRefundable    int64             `json:"remaining_refundable"`
	Refunds                []*RefundResponse `json:"refunds,omitempty"`
	ProcessedAt            *time.Time        `json:"processed_at,omitempty"`
	FailedAt               *time.Time        `json:"failed_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
	UpdatedAt              time.Time         `json:"updated_at"`
}

// RefundResponse represents a refund in API responses.
type RefundResponse struct {
	ID                string     `json:"id"`
	TransactionID     string     `json:"transaction_id"`
	ProcessorRefundID string     `json:"processor_refund_id,omitempty"`
	Amount            int64      `json:"amount"`
	Currency          string     `json:"currency"`
	Status            string     `json:"status"`
	Reason            string     `json:"reason,omitempty"`
	ProcessedAt       *time.Time `json:"processed_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// PaymentMethodResponse represents a stored payment method in API responses.
type PaymentMethodResponse struct {
	ID             string    `json:"id"`
	OwnerType      string    `json:"owner_type"`
	OwnerID        string    `json:"owner_id"`
	Processor      string    `json:"processor"`
	Type           string    `json:"type"`
	Brand          string    `json:"brand"`
	LastFour       string    `json:"last_four,omitempty"`
	ExpMonth       int       `json:"exp_month,omitempty"`
	ExpYear        int       `json:"exp_year,omitempty"`
	IsDefault      bool      `json:"is_default"`
	DisplayName    string    `json:"display_name"`
	IsExpired      bool      `json:"is_expired"`
	IsExpiringSoon bool      `json:"is_expiring_soon"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// OwnerSummaryResponse aggregates payment activity for one owner.
type OwnerSummaryResponse struct {
	OwnerType            string                 `json:"owner_type"`
	OwnerID              string                 `json:"owner_id"`
	TotalPaidAmount      int64                  `json:"total_paid_amount"`
	TransactionCount     int64                  `json:"transaction_count"`
	SucceededCount       int64                  `json:"succeeded_count"`
	PaymentMethodCount   int                    `json:"payment_method_count"`
	DefaultPaymentMethod *PaymentMethodResponse `json:"default_payment_method,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromTransaction converts a domain transaction to API response.
func FromTransaction(t *transaction.Transaction) *TransactionResponse {
	resp := &TransactionResponse{
		ID:                     t.ID.String(),
		Processor:              t.ProcessorName,
		ProcessorTransactionID: t.ProcessorTransactionID,
		PayableType:            t.Payable.Type,
		PayableID:              t.Payable.ID,
		Amount:                 t.Amount,
		FormattedAmount:        t.FormattedAmount(),
		Currency:               t.Currency,
		Status:                 string(t.Status),
		Description:            t.Description,
		ErrorCode:              t.ErrorCode,
		ErrorMessage:           t.ErrorMessage,
		Metadata:               t.Metadata,
		TotalRefunded:          t.TotalRefunded(),
		RemainingRefundable:    t.RemainingRefundable(),
		ProcessedAt:            t.ProcessedAt,
		FailedAt:               t.FailedAt,
		CreatedAt:              t.CreatedAt,
		UpdatedAt:              t.UpdatedAt,
	}
	if !t.PaymentMethod.IsZero() {
		resp.PaymentMethod = &SnapshotResponse{
			Type:        string(t.PaymentMethod.Type),
			Brand:       string(t.PaymentMethod.Brand),
			LastFour:    t.PaymentMethod.LastFour,
			DisplayName: t.PaymentMethod.Display(),
			Icon:        t.PaymentMethod.Icon(),
		}
	}
	for _, ref := range t.Refunds {
		resp.Refunds = append(resp.Refunds, FromRefund(ref))
	}
	return resp
}

// FromRefund converts a domain refund to API response.
func FromRefund(r *transaction.Refund) *RefundResponse {
	return &RefundResponse{
		ID:                r.ID.String(),
		TransactionID:     r.TransactionID.String(),
		ProcessorRefundID: r.ProcessorRefundID,
		Amount:            r.Amount,
		Currency:          r.Currency,
		Status:            string(r.Status),
		Reason:            r.Reason,
		ProcessedAt:       r.ProcessedAt,
		FailedAt:          r.FailedAt,
		CreatedAt:         r.CreatedAt,
	}
}

// FromPaymentMethod converts a stored payment method to API response.
func FromPaymentMethod(m *method.PaymentMethod) *PaymentMethodResponse {
	return &PaymentMethodResponse{
		ID:             m.ID.String(),
		OwnerType:      m.Owner.Type,
		OwnerID:        m.Owner.ID,
		Processor:      m.ProcessorName,
		Type:           string(m.Type),
		Brand:          string(m.Brand),
		LastFour:       m.LastFour,
		ExpMonth:       m.ExpMonth,
		ExpYear:        m.ExpYear,
		IsDefault:      m.IsDefault,
		DisplayName:    m.DisplayName(),
		IsExpired:      m.IsExpired(),
		IsExpiringSoon: m.IsExpiringSoon(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
