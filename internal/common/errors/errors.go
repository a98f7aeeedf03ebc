// Package errors provides standardized error handling for the message engine.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Resolution errors
	ErrCodeTenantNotFound     ErrorCode = "TENANT_NOT_FOUND"
	ErrCodeTenantLookupFailed ErrorCode = "TENANT_LOOKUP_FAILED"

	// Classification errors
	ErrCodeClassificationFailed  ErrorCode = "CLASSIFICATION_FAILED"
	ErrCodeClassificationTimeout ErrorCode = "CLASSIFICATION_TIMEOUT"
	ErrCodeGenerationFailed      ErrorCode = "GENERATION_FAILED"
	ErrCodeGenerationTimeout     ErrorCode = "GENERATION_TIMEOUT"

	// Validation errors
	ErrCodeIntentValidationFailed ErrorCode = "INTENT_VALIDATION_FAILED"
	ErrCodeRequestInvalid         ErrorCode = "REQUEST_INVALID"

	// Persistence errors
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeStateReadFailed          ErrorCode = "STATE_READ_FAILED"
	ErrCodeStateWriteFailed         ErrorCode = "STATE_WRITE_FAILED"
	ErrCodeOrderPersistFailed       ErrorCode = "ORDER_PERSIST_FAILED"
	ErrCodeReservationPersistFailed ErrorCode = "RESERVATION_PERSIST_FAILED"
	ErrCodeMessageLogFailed         ErrorCode = "MESSAGE_LOG_FAILED"

	// Delivery errors
	ErrCodeGuestDeliveryFailed ErrorCode = "GUEST_DELIVERY_FAILED"
	ErrCodeStaffDeliveryFailed ErrorCode = "STAFF_DELIVERY_FAILED"
	ErrCodeAlertPublishFailed  ErrorCode = "ALERT_PUBLISH_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewTenantNotFoundError creates a non-retryable resolution error. The
// message that triggered it is dropped without a guest reply.
func NewTenantNotFoundError(channelID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeTenantNotFound,
		Message:   "No tenant registered for channel identifier",
		Details:   fmt.Sprintf("channelId: %s", channelID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTenantLookupFailedError creates a retryable tenant lookup error.
func NewTenantLookupFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTenantLookupFailed,
		Message:   "Database error during tenant resolution",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationFailedError creates a retryable classification error.
func NewClassificationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationFailed,
		Message:   "Intent classification provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewClassificationTimeoutError creates a retryable classification timeout error.
func NewClassificationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeClassificationTimeout,
		Message:   "Intent classification timeout",
		Details:   "Provider call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationFailedError creates a retryable response generation error.
func NewGenerationFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationFailed,
		Message:   "Reply generation provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGenerationTimeoutError creates a retryable reply generation timeout error.
func NewGenerationTimeoutError() *StandardError {
	return &StandardError{
		Code:      ErrCodeGenerationTimeout,
		Message:   "Reply generation timeout",
		Details:   "Provider call exceeded timeout threshold",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntentValidationFailedError creates a non-retryable validation error.
// The classifier coerces the result to UNKNOWN instead of failing the message.
func NewIntentValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntentValidationFailed,
		Message:   "Classifier output failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRequestInvalidError creates a non-retryable request validation error.
func NewRequestInvalidError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequestInvalid,
		Message:   "Request validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateReadFailedError creates a retryable conversation state read error.
func NewStateReadFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateReadFailed,
		Message:   "Conversation state read error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStateWriteFailedError creates a retryable conversation state write error.
func NewStateWriteFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStateWriteFailed,
		Message:   "Conversation state write error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewOrderPersistFailedError creates a retryable order persistence error.
// No staff notification may be sent when this is returned.
func NewOrderPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeOrderPersistFailed,
		Message:   "Order insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewReservationPersistFailedError creates a retryable reservation persistence error.
func NewReservationPersistFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeReservationPersistFailed,
		Message:   "Reservation insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageLogFailedError creates a retryable message log error.
func NewMessageLogFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageLogFailed,
		Message:   "Message log insert failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewGuestDeliveryFailedError creates a retryable guest delivery error.
func NewGuestDeliveryFailedError(recipient string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeGuestDeliveryFailed,
		Message:   "Outbound guest message delivery failed",
		Details:   fmt.Sprintf("recipient: %s, error: %s", recipient, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStaffDeliveryFailedError creates a retryable staff delivery error.
// After retries are exhausted an ops alert must be raised: the stored record
// and the notified state have diverged.
func NewStaffDeliveryFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStaffDeliveryFailed,
		Message:   "Staff channel notification failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertPublishFailedError creates a retryable alert publish error.
func NewAlertPublishFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertPublishFailed,
		Message:   "Ops alert publish failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// GetRetryCount returns the recommended retry count per error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeTenantLookupFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeOrderPersistFailed,
		ErrCodeReservationPersistFailed,
		ErrCodeGuestDeliveryFailed,
		ErrCodeStaffDeliveryFailed,
		ErrCodeAlertPublishFailed:
		return 3 // Retryable technical errors

	case ErrCodeClassificationFailed,
		ErrCodeGenerationFailed,
		ErrCodeStateReadFailed,
		ErrCodeStateWriteFailed,
		ErrCodeMessageLogFailed:
		return 2

	case ErrCodeClassificationTimeout,
		ErrCodeGenerationTimeout:
		return 1 // The per-message budget leaves no room for more

	default:
		return 0 // Business errors: no retry
	}
}

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the taxonomy category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "TENANT"):
		return "RESOLUTION"
	case strings.Contains(codeStr, "CLASSIFICATION") || strings.Contains(codeStr, "GENERATION"):
		return "CLASSIFICATION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "DELIVERY") || strings.Contains(codeStr, "ALERT"):
		return "DELIVERY"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "STATE") ||
		strings.Contains(codeStr, "PERSIST") || strings.Contains(codeStr, "LOG"):
		return "PERSISTENCE"
	default:
		return "OTHER"
	}
}

// CodeOf extracts the ErrorCode of a StandardError, or "" for other errors.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ""
}
