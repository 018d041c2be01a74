package transaction

// PaymentStatus represents the transaction lifecycle state.
type PaymentStatus string

const (
	StatusPending               PaymentStatus = "pending"
	StatusProcessing            PaymentStatus = "processing"
	StatusSucceeded             PaymentStatus = "succeeded"
	StatusFailed                PaymentStatus = "failed"
	StatusCanceled              PaymentStatus = "canceled"
	StatusRequiresAction        PaymentStatus = "requires_action"
	StatusRequiresCapture       PaymentStatus = "requires_capture"
	StatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	StatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
)

// IsCompleted reports whether the status is terminal.
func (s PaymentStatus) IsCompleted() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// IsSuccessful reports whether the payment went through.
func (s PaymentStatus) IsSuccessful() bool {
	return s == StatusSucceeded
}

// RequiresAction reports whether the payment is waiting on a follow-up step
// (customer authentication, capture, confirmation or a new instrument).
func (s PaymentStatus) RequiresAction() bool {
	switch s {
	case StatusRequiresAction, StatusRequiresCapture,
		StatusRequiresConfirmation, StatusRequiresPaymentMethod:
		return true
	}
	return false
}

// IsValid reports whether s is one of the closed enumeration values.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusSucceeded, StatusFailed,
		StatusCanceled, StatusRequiresAction, StatusRequiresCapture,
		StatusRequiresConfirmation, StatusRequiresPaymentMethod:
		return true
	}
	return false
}

// RefundStatus represents the refund lifecycle state.
type RefundStatus string

const (
	RefundStatusPending    RefundStatus = "pending"
	RefundStatusProcessing RefundStatus = "processing"
	RefundStatusSucceeded  RefundStatus = "succeeded"
	RefundStatusFailed     RefundStatus = "failed"
	RefundStatusCanceled   RefundStatus = "canceled"
)

// IsCompleted reports whether the status is terminal.
func (s RefundStatus) IsCompleted() bool {
	switch s {
	case RefundStatusSucceeded, RefundStatusFailed, RefundStatusCanceled:
		return true
	}
	return false
}

// IsSuccessful reports whether the refund went through.
func (s RefundStatus) IsSuccessful() bool {
	return s == RefundStatusSucceeded
}

// IsValid reports whether s is one of the closed enumeration values.
func (s RefundStatus) IsValid() bool {
	switch s {
	case RefundStatusPending, RefundStatusProcessing, RefundStatusSucceeded,
		RefundStatusFailed, RefundStatusCanceled:
		return true
	}
	return false
}
