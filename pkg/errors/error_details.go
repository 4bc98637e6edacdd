package errors

import stderrors "errors"

// ErrorDetails represents detailed information about an error.
type ErrorDetails struct {
	// Message (required) is the user-defined error message.
	// E.g. "last date before first date".
	Message string

	// Code (required) is the user-defined error code string.
	// E.g. "validation_error".
	Code string

	// Field (optional) is the related field the error occurred on, if any.
	Field string

	// Object (optional) is the related object the error occured on, if any.
	Object interface{}
}

// NewErrorDetails creates a new ErrorDetails struct with the given parameters.
func NewErrorDetails(message string, code ErrorCode, field string) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    string(code),
		Field:   field,
	}
}

// NewErrorDetailsWithObject creates a new ErrorDetails struct with an associated object.
func NewErrorDetailsWithObject(message string, code ErrorCode, field string, object interface{}) *ErrorDetails {
	return &ErrorDetails{
		Message: message,
		Code:    string(code),
		Field:   field,
		Object:  object,
	}
}

// Error() is used to implement the Golang `error` interface.
func (e *ErrorDetails) Error() string {
	return e.Message
}

// ErrorCodeEquals checks whether a given `error` has a specific code,
// unwrapping tracer layers along the way.
func ErrorCodeEquals(err error, code ErrorCode) bool {
	var details *ErrorDetails
	if !stderrors.As(err, &details) {
		return false
	}

	return details.Code == string(code)
}

// CodeOf returns the error code carried by err, or GeneralInternalServerError
// when err carries no ErrorDetails.
func CodeOf(err error) ErrorCode {
	var details *ErrorDetails
	if !stderrors.As(err, &details) {
		return GeneralInternalServerError
	}

	return ErrorCode(details.Code)
}
