package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error code for stable testing
type ErrorCode string

// Error codes for different error categories
const (
	// General errors
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrPermission   ErrorCode = "PERMISSION"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Condition table errors
	ErrConditionParse   ErrorCode = "CONDITION_PARSE"
	ErrConditionInvalid ErrorCode = "CONDITION_INVALID"

	// Bundle and metadata errors
	ErrBundleInvalid ErrorCode = "BUNDLE_INVALID"
	ErrPlistParse    ErrorCode = "PLIST_PARSE"
	ErrPlistConvert  ErrorCode = "PLIST_CONVERT"

	// Content index errors
	ErrIndexQuery   ErrorCode = "INDEX_QUERY"
	ErrIndexTimeout ErrorCode = "INDEX_TIMEOUT"
	ErrMetadata     ErrorCode = "METADATA"

	// Orphan registry errors
	ErrRegistryOpen  ErrorCode = "REGISTRY_OPEN"
	ErrRegistryRead  ErrorCode = "REGISTRY_READ"
	ErrRegistryWrite ErrorCode = "REGISTRY_WRITE"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrDirRead      ErrorCode = "DIR_READ"
)

// RemnantError represents a structured error with code and details
type RemnantError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RemnantError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RemnantError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RemnantError) Is(target error) bool {
	var targetErr *RemnantError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RemnantError with the given code and message
func New(code ErrorCode, message string) *RemnantError {
	return &RemnantError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RemnantError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RemnantError {
	return &RemnantError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RemnantError
func Wrap(err error, code ErrorCode, message string) *RemnantError {
	if err == nil {
		return nil
	}
	return &RemnantError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RemnantError {
	if err == nil {
		return nil
	}
	return &RemnantError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RemnantError) WithDetail(key string, value interface{}) *RemnantError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var remnantErr *RemnantError
	if errors.As(err, &remnantErr) {
		return remnantErr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RemnantError
func GetErrorCode(err error) ErrorCode {
	var remnantErr *RemnantError
	if errors.As(err, &remnantErr) {
		return remnantErr.Code
	}
	return ErrUnknown
}

// GetErrorDetails returns the details from an error, or nil if not a RemnantError
func GetErrorDetails(err error) map[string]interface{} {
	var remnantErr *RemnantError
	if errors.As(err, &remnantErr) {
		return remnantErr.Details
	}
	return nil
}
