package service

import (
	"github.com/asciisd/cashier/internal/domain/method"
	"github.com/google/uuid"
)

// ChargeRequest holds the input for charging or authorizing a payment.
// Controllers convert their HTTP DTOs to this type. Amount is in integer
// minor currency units.
type ChargeRequest struct {
	ProcessorName string // empty means the configured default
	Payable       method.OwnerRef
	Amount        int64
	Currency      string
	Description   string

	// PaymentMethodID selects a stored payment method. When set, the stored
	// method supplies both the processor token and the embedded snapshot.
	PaymentMethodID *uuid.UUID

	// PaymentMethodToken is a raw processor token for one-off charges made
	// without a stored method.
	PaymentMethodToken string

	Customer string
	Metadata map[string]any
}

// CaptureRequest holds the input for capturing an authorized payment.
// A nil amount captures the full authorized amount.
type CaptureRequest struct {
	TransactionID uuid.UUID
	Amount        *int64
}

// RefundRequest holds the input for refunding a transaction. A nil amount
// refunds the full remaining refundable amount.
type RefundRequest struct {
	TransactionID uuid.UUID
	Amount        *int64
	Reason        string
}

// CreatePaymentMethodRequest holds the input for storing a payment method.
type CreatePaymentMethodRequest struct {
	Owner                    method.OwnerRef
	ProcessorName            string
	ProcessorPaymentMethodID string
	Brand                    string
	LastFour                 string
	ExpMonth                 int
	ExpYear                  int
	IsDefault                bool
	Metadata                 map[string]any
}

// OwnerSummary aggregates payment activity for one owner.
type OwnerSummary struct {
	Owner                method.OwnerRef
	TotalPaidAmount      int64 // succeeded transactions only, in minor units
	TransactionCount     int64
	SucceededCount       int64
	PaymentMethodCount   int
	DefaultPaymentMethod *method.PaymentMethod
}
