// Package errors carries coded errors between storage, the harvest pipeline and the HTTP edge.
// Import it as perr.
package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode classifies an error for callers and the wire. Values are part of the
// API envelope, so new codes go at the end
type ErrorCode uint16

const (
	ErrorCodeUnknown ErrorCode = iota
	ErrorCodePanic
	ErrorCodeUnavailable
	ErrorCodeConflict
	ErrorCodeUnauthorized
	ErrorCodeInvalidArgument
	ErrorCodeValidation
	ErrorCodeNotFound
	ErrorCodeDuplicateKey
	ErrorCodeDB

	// ErrorCodePortal marks a failure reported by the remote portal or the browser driving it
	ErrorCodePortal

	// ErrorCodeTimeout marks an operation that ran out its deadline
	ErrorCodeTimeout
)

var statusByCode = map[ErrorCode]int{
	ErrorCodeNotFound:        http.StatusNotFound,
	ErrorCodeInvalidArgument: http.StatusUnprocessableEntity,
	ErrorCodeDuplicateKey:    http.StatusConflict,
	ErrorCodeConflict:        http.StatusConflict,
	ErrorCodeValidation:      http.StatusBadRequest,
	ErrorCodeUnauthorized:    http.StatusUnauthorized,
	ErrorCodeUnavailable:     http.StatusServiceUnavailable,
	ErrorCodePortal:          http.StatusBadGateway,
	ErrorCodeTimeout:         http.StatusGatewayTimeout,
}

// HTTPStatusCode maps c to a status; anything unmapped is a 500
func HTTPStatusCode(c ErrorCode) int {
	if s, ok := statusByCode[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Error is a coded error. msg is for people, code for machines; field names the
// offending input and op tags the operation that failed
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
	op    string
}

// Wire is what the API envelope carries for an error
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

func (e *Error) Error() string {
	switch {
	case e == nil:
		return "<nil>"
	case e.orig != nil:
		return e.msg + ": " + e.orig.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.orig }
func (e *Error) Code() ErrorCode { return e.code }
func (e *Error) Field() string { return e.field }
func (e *Error) Op() string { return e.op }
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// with returns a mutated copy; the receiver is shared and never changed
func (e *Error) with(f func(*Error)) *Error {
	c := *e
	f(&c)
	return &c
}

// As finds the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	ok := stderrs.As(err, &e)
	return e, ok
}

// CodeOf returns the code of the first *Error in the chain, or Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// WireFrom renders any error for the envelope. Foreign errors become Unknown
// with their text as message; nil gives the zero Wire
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: err.Error()}
}

// WithField returns a copy of err naming the offending input. Foreign errors pass through
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		return e.with(func(c *Error) { c.field = field })
	}
	return err
}

// WithOp returns a copy of err tagged with op. Foreign errors pass through
func WithOp(err error, op string) error {
	if e, ok := As(err); ok {
		return e.with(func(c *Error) { c.op = op })
	}
	return err
}

func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

func Newf(code ErrorCode, format string, a ...any) error {
	return New(code, fmt.Sprintf(format, a...))
}

func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return Wrap(orig, code, fmt.Sprintf(format, a...))
}

// FromBrowser wraps a failed browser step. Deadlines become Timeout, a cancelled
// caller becomes Unavailable and the rest are Portal failures. Coded errors keep
// their code. nil stays nil
func FromBrowser(err error, msg string) error {
	if err == nil {
		return nil
	}
	code := ErrorCodePortal
	switch {
	case stderrs.Is(err, context.DeadlineExceeded):
		code = ErrorCodeTimeout
	case stderrs.Is(err, context.Canceled):
		code = ErrorCodeUnavailable
	default:
		if e, ok := As(err); ok {
			code = e.code
		}
	}
	return Wrap(err, code, msg)
}

func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }
func InvalidArgf(format string, a ...any) error { return Newf(ErrorCodeInvalidArgument, format, a...) }
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }
func Unauthorizedf(format string, a ...any) error { return Newf(ErrorCodeUnauthorized, format, a...) }
func Internalf(format string, a ...any) error { return Newf(ErrorCodeUnknown, format, a...) }
