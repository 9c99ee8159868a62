package vdisplay

import (
	"errors"
	"fmt"
)

// DisplayError represents a domain-specific error.
type DisplayError struct {
	Code    string
	Message string
	Cause   error
}

func (e *DisplayError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DisplayError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	// ErrCodeSupportNotLoaded means the evdi kernel module is not loaded.
	// Not retryable without operator action.
	ErrCodeSupportNotLoaded = "SUPPORT_NOT_LOADED"
	// ErrCodeNoDeviceFound means the index scan found no evdi device node.
	ErrCodeNoDeviceFound = "NO_DEVICE_FOUND"
	// ErrCodeAllocationFailed means a located device node could not be opened.
	ErrCodeAllocationFailed = "ALLOCATION_FAILED"
	// ErrCodeConnectFailed means the device rejected the descriptor or was busy.
	ErrCodeConnectFailed = "CONNECT_FAILED"
	// ErrCodeDetectionTimeout means KMS never enumerated the new connector.
	ErrCodeDetectionTimeout = "DETECTION_TIMEOUT"
	// ErrCodeInvalidRequest means the requested geometry failed validation.
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// NewDisplayError creates a new display error.
func NewDisplayError(code, message string, cause error) *DisplayError {
	return &DisplayError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// ErrorCode extracts the domain error code from err, or "" if err is not a
// DisplayError.
func ErrorCode(err error) string {
	var de *DisplayError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
