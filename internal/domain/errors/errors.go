package errors

import (
	"errors"
	"fmt"
)

var (
	// Transaction errors
	ErrTransactionNotFound      = errors.New("transaction not found")
	ErrRefundNotFound           = errors.New("refund not found")
	ErrTransactionNotRefundable = errors.New("transaction cannot be refunded")
	ErrRefundExceedsRemaining   = errors.New("refund amount exceeds remaining refundable amount")

	// Payment method errors
	ErrPaymentMethodNotFound = errors.New("payment method not found")
	ErrUnknownBrand          = errors.New("unknown payment method brand")

	// Processor errors
	ErrProcessorNotFound    = errors.New("payment processor not found")
	ErrUnsupportedOperation = errors.New("operation not supported by this processor")
	ErrProcessingFailed     = errors.New("payment processing failed")
	ErrProcessorUnavailable = errors.New("payment processor unavailable")

	// Validation errors
	ErrValidationFailed   = errors.New("validation failed")
	ErrInvalidInput       = errors.New("invalid input")
	ErrCurrencyNotAllowed = errors.New("currency not in allow-list")

	// Lock errors
	ErrLockAcquisitionFailed = errors.New("failed to acquire lock")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a payment-data or request validation failure.
// It is raised before any processor backend call is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UnsupportedOperationError is returned when a processor is asked to perform
// an operation outside its declared feature set.
type UnsupportedOperationError struct {
	Processor string
	Operation string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("%s not implemented for processor %s", e.Operation, e.Processor)
}

func (e *UnsupportedOperationError) Unwrap() error {
	return ErrUnsupportedOperation
}

// NewUnsupportedOperationError creates a new unsupported operation error.
func NewUnsupportedOperationError(processor, operation string) *UnsupportedOperationError {
	return &UnsupportedOperationError{Processor: processor, Operation: operation}
}

// ProcessingError represents a failed processor backend call. It carries the
// attempted transaction id when known and the raw processor response for
// diagnostics.
type ProcessingError struct {
	Processor     string
	TransactionID string
	Response      map[string]any
	Err           error
}

func (e *ProcessingError) Error() string {
	msg := fmt.Sprintf("%s processing failed", e.Processor)
	if e.TransactionID != "" {
		msg += fmt.Sprintf(" (transaction %s)", e.TransactionID)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrProcessingFailed
}

func (e *ProcessingError) Is(target error) bool {
	return target == ErrProcessingFailed
}

// NewProcessingError creates a new processing error.
func NewProcessingError(processor, transactionID string, response map[string]any, err error) *ProcessingError {
	return &ProcessingError{
		Processor:     processor,
		TransactionID: transactionID,
		Response:      response,
		Err:           err,
	}
}

// UnknownBrandError is returned when a snapshot constructor receives a value
// outside the closed brand enumeration.
type UnknownBrandError struct {
	Value string
}

func (e *UnknownBrandError) Error() string {
	return fmt.Sprintf("unknown payment method brand %q", e.Value)
}

func (e *UnknownBrandError) Unwrap() error {
	return ErrUnknownBrand
}

// NewUnknownBrandError creates a new unknown brand error.
func NewUnknownBrandError(value string) *UnknownBrandError {
	return &UnknownBrandError{Value: value}
}
