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
	ErrUnknown        ErrorCode = "UNKNOWN"
	ErrInternal       ErrorCode = "INTERNAL"
	ErrInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrNotImplemented ErrorCode = "NOT_IMPLEMENTED"

	// Configuration errors
	ErrConfigLoad  ErrorCode = "CONFIG_LOAD"
	ErrConfigParse ErrorCode = "CONFIG_PARSE"
	ErrConfigValid ErrorCode = "CONFIG_INVALID"

	// Install / library errors
	ErrInstallPath     ErrorCode = "INSTALL_PATH"
	ErrLibraryConfig   ErrorCode = "LIBRARY_CONFIG"
	ErrLibraryNotFound ErrorCode = "LIBRARY_NOT_FOUND"

	// Key-value document errors
	ErrVDFParse ErrorCode = "VDF_PARSE"
	ErrVDFRead  ErrorCode = "VDF_READ"

	// Manifest errors
	ErrManifestParse   ErrorCode = "MANIFEST_PARSE"
	ErrManifestInvalid ErrorCode = "MANIFEST_INVALID"

	// Session / authentication errors
	ErrSessionDial     ErrorCode = "SESSION_DIAL"
	ErrSessionConnect  ErrorCode = "SESSION_CONNECT"
	ErrSessionLost     ErrorCode = "SESSION_LOST"
	ErrAuthFlow        ErrorCode = "AUTH_FLOW"
	ErrLoginDenied     ErrorCode = "LOGIN_DENIED"
	ErrNoConnector     ErrorCode = "NO_CONNECTOR"
	ErrMissingAccount  ErrorCode = "MISSING_ACCOUNT"
	ErrMissingPassword ErrorCode = "MISSING_PASSWORD"

	// Icon pipeline errors
	ErrResolveFailed  ErrorCode = "RESOLVE_FAILED"
	ErrResolveTimeout ErrorCode = "RESOLVE_TIMEOUT"
	ErrNoIcon         ErrorCode = "NO_ICON"
	ErrDownload       ErrorCode = "DOWNLOAD"

	// FileSystem errors
	ErrFileNotFound ErrorCode = "FILE_NOT_FOUND"
	ErrFileAccess   ErrorCode = "FILE_ACCESS"
	ErrFileWrite    ErrorCode = "FILE_WRITE"
	ErrDirCreate    ErrorCode = "DIR_CREATE"
)

// RestorerError represents a structured error with code and details
type RestorerError struct {
	Code    ErrorCode
	Message string
	Details map[string]interface{}
	Wrapped error
}

// Error implements the error interface
func (e *RestorerError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *RestorerError) Unwrap() error {
	return e.Wrapped
}

// Is implements errors.Is interface
func (e *RestorerError) Is(target error) bool {
	var targetErr *RestorerError
	if errors.As(target, &targetErr) {
		return e.Code == targetErr.Code
	}
	return false
}

// New creates a new RestorerError with the given code and message
func New(code ErrorCode, message string) *RestorerError {
	return &RestorerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
	}
}

// Newf creates a new RestorerError with a formatted message
func Newf(code ErrorCode, format string, args ...interface{}) *RestorerError {
	return &RestorerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with a RestorerError
func Wrap(err error, code ErrorCode, message string) *RestorerError {
	if err == nil {
		return nil
	}
	return &RestorerError{
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// Wrapf wraps an existing error with a formatted message
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) *RestorerError {
	if err == nil {
		return nil
	}
	return &RestorerError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Details: make(map[string]interface{}),
		Wrapped: err,
	}
}

// WithDetail adds a detail to the error
func (e *RestorerError) WithDetail(key string, value interface{}) *RestorerError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// IsErrorCode checks if an error has a specific error code
func IsErrorCode(err error, code ErrorCode) bool {
	var rerr *RestorerError
	if errors.As(err, &rerr) {
		return rerr.Code == code
	}
	return false
}

// GetErrorCode returns the error code from an error, or ErrUnknown if not a RestorerError
func GetErrorCode(err error) ErrorCode {
	var rerr *RestorerError
	if errors.As(err, &rerr) {
		return rerr.Code
	}
	return ErrUnknown
}
