package errors

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific error condition
type ErrorCode string

const (
	// Configuration errors. These are fatal at startup.
	ErrCodeConfigNotFound      ErrorCode = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid       ErrorCode = "CONFIG_INVALID"
	ErrCodeDuplicateGroup      ErrorCode = "DUPLICATE_GROUP"
	ErrCodeDuplicateScratchpad ErrorCode = "DUPLICATE_SCRATCHPAD"
	ErrCodeBindingConflict     ErrorCode = "BINDING_CONFLICT"

	// Topology errors are recovered where they happen.
	ErrCodeTopologyQuery ErrorCode = "TOPOLOGY_QUERY"

	// External command errors
	ErrCodeCommandNotFound ErrorCode = "COMMAND_NOT_FOUND"
	ErrCodeCommandFailed   ErrorCode = "COMMAND_FAILED"
	ErrCodeCommandTimeout  ErrorCode = "COMMAND_TIMEOUT"

	// Dispatch errors
	ErrCodeDispatchFailed ErrorCode = "DISPATCH_FAILED"
	ErrCodeDispatchBusy   ErrorCode = "DISPATCH_BUSY"

	// General errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Error represents a structured error with context
type Error struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap implements the errors.Unwrap interface
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// ToJSON converts the error to JSON
func (e *Error) ToJSON() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an Error
func Wrap(err error, code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is checks if an error is a specific Error code
func Is(err error, code ErrorCode) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error. It returns the code of the
// outermost *Error in the chain.
func GetCode(err error) ErrorCode {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Code
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return ""
		}
		err = u.Unwrap()
	}
	return ""
}

// IsConfiguration reports whether err is a configuration error. Those abort
// initialization; every other kind is logged and survived.
func IsConfiguration(err error) bool {
	switch GetCode(err) {
	case ErrCodeConfigNotFound,
		ErrCodeConfigInvalid,
		ErrCodeDuplicateGroup,
		ErrCodeDuplicateScratchpad,
		ErrCodeBindingConflict:
		return true
	}
	return false
}
