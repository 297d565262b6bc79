package fedcrawl

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"
)

// Error represents an application-specific error.
type Error struct {
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// Errorf returns an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error"
}

// ErrorKind classifies why fetching a peer list failed.
type ErrorKind string

// Fetch error kinds.
const (
	KindHTTP       ErrorKind = "HTTPError"
	KindConnection ErrorKind = "ConnectionError"
	KindTimeout    ErrorKind = "TimeoutError"
	KindDecode     ErrorKind = "DecodeError"
	KindUnknown    ErrorKind = "UnknownError"
)

// FetchError is the terminal failure of a single domain's peer fetch.
// Status is only set for KindHTTP.
type FetchError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Err == nil {
		return e.Label()
	}
	return e.Label() + ": " + e.Err.Error()
}

// Unwrap returns the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Label renders the kind as written to the error log, e.g. "HTTPError(503)".
func (e *FetchError) Label() string {
	if e.Kind == KindHTTP {
		return fmt.Sprintf("%s(%d)", e.Kind, e.Status)
	}
	return string(e.Kind)
}

// AsFetchError returns err as a *FetchError, classifying anything that is
// not already one as KindUnknown. It returns nil for a nil error.
func AsFetchError(err error) *FetchError {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	return &FetchError{Kind: KindUnknown, Err: err}
}
