package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the HTTP boundary.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidInput
	KindAuth
	KindProvider
	KindArchival
	KindConversion
	KindSigning
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindAuth:
		return "auth"
	case KindProvider:
		return "provider"
	case KindArchival:
		return "archival"
	case KindConversion:
		return "conversion"
	case KindSigning:
		return "signing"
	default:
		return "unknown"
	}
}

// Error codes rendered in the error envelope.
const (
	CodeNone             = ""
	CodeUnknown          = "EONDC0000"
	CodeInvalidRequestID = "EONDC0001"
	CodeInvalidToken     = "EONDC0003"
	CodeInvalidRequest   = "EONDC0007"
	CodeIntegrationError = "EONDC0008"
	CodeTimeout          = "EONDC0010"
	CodeAuthError        = "EONDC0077"
)

// Error is the single error type that crosses package boundaries toward the HTTP layer.
// A non-zero Status overrides the kind's default HTTP status.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the status code the error should be rendered with.
func (e *Error) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Kind {
	case KindInvalidInput:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the envelope error code.
func (e *Error) Code() string {
	switch e.Kind {
	case KindInvalidInput:
		return CodeInvalidRequest
	case KindAuth:
		return CodeAuthError
	case KindProvider, KindArchival:
		if errors.Is(e.Err, context.DeadlineExceeded) {
			return CodeTimeout
		}
		return CodeIntegrationError
	default:
		return CodeUnknown
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidInput(message string) *Error {
	return New(KindInvalidInput, message)
}

func Auth(message string) *Error {
	return New(KindAuth, message)
}

func Provider(message string, err error) *Error {
	return Wrap(KindProvider, message, err)
}

func Archival(status int, message string, err error) *Error {
	return &Error{Kind: KindArchival, Message: message, Status: status, Err: err}
}

func Conversion(message string, err error) *Error {
	return Wrap(KindConversion, message, err)
}

func Signing(message string, err error) *Error {
	return Wrap(KindSigning, message, err)
}

// As extracts an *Error from err. Errors that are not *Error become KindUnknown.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(KindUnknown, "unexpected error", err)
}

// KindOf reports the kind of err, KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}
