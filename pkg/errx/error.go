package errx

import (
	"errors"
	"fmt"
)

// Error is a coded error carrying a category, an HTTP status hint and
// optional key/value details for logging.
type Error struct {
	// Code is the unique error code, prefixed by the owning registry
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Type categorizes the error
	Type Type `json:"type"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"http_status"`

	// Details contains additional context about the error
	Details map[string]interface{} `json:"details,omitempty"`

	// Err is the underlying cause (not exported in JSON)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// WithDetail adds a detail to the error and returns it for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an unregistered error from a message and type
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
	}
}

// Wrap wraps an existing error with additional context. When err is
// already an *Error its code, status and details are preserved.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:       existing.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: existing.HTTPStatus,
			Details:    existing.Details,
			Err:        err,
		}
	}

	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Err:        err,
	}
}

// Is checks if an error matches the target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// HasCode reports whether err carries the given registered code.
func HasCode(err error, code *ErrorCode) bool {
	if err == nil || code == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code.Code
	}
	return false
}
