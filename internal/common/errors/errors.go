// Package errors provides standardized error handling for the recommendation service.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeClientNotFound   ErrorCode = "CLIENT_NOT_FOUND"
	ErrCodePropertyNotFound ErrorCode = "PROPERTY_NOT_FOUND"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"

	ErrCodeEmailSendFailed ErrorCode = "EMAIL_SEND_FAILED"
	ErrCodeSMSSendFailed   ErrorCode = "SMS_SEND_FAILED"

	ErrCodeInvalidEventPayload ErrorCode = "INVALID_EVENT_PAYLOAD"
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

// NewClientNotFoundError creates a non-retryable lookup error for an unknown client.
func NewClientNotFoundError(clientID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeClientNotFound,
		Message:   "Client not found",
		Details:   fmt.Sprintf("clientId: %d", clientID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPropertyNotFoundError creates a non-retryable lookup error for an unknown property.
func NewPropertyNotFoundError(propertyID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodePropertyNotFound,
		Message:   "Property not found",
		Details:   fmt.Sprintf("propertyId: %d", propertyID),
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

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(entity string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("entity: %s, error: %s", entity, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseInsertFailedError creates a retryable database insert error.
func NewDatabaseInsertFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseInsertFailed,
		Message:   "Database insert operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmailSendFailedError creates a retryable email delivery error.
func NewEmailSendFailedError(to string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEmailSendFailed,
		Message:   "Email delivery failed",
		Details:   fmt.Sprintf("to: %s, error: %s", to, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSMSSendFailedError creates a retryable SMS delivery error.
func NewSMSSendFailedError(phone string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSMSSendFailed,
		Message:   "SMS delivery failed",
		Details:   fmt.Sprintf("phone: %s, error: %s", phone, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidEventPayloadError creates a non-retryable payload validation error.
func NewInvalidEventPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEventPayload,
		Message:   "Event payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsNotFound reports whether err is a CLIENT_NOT_FOUND or PROPERTY_NOT_FOUND error.
func IsNotFound(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code == ErrCodeClientNotFound || stdErr.Code == ErrCodePropertyNotFound
	}
	return false
}

// IsRetryable reports whether err carries a retryable error code.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
