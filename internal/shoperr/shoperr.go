// Package shoperr defines the typed failure codes shared by the catalog,
// payment, and command layers. Every code maps one-to-one onto a user-visible
// message in the bot layer and onto the err_code attribute in handler logs.
package shoperr

import (
	"errors"
	"fmt"
)

// Code identifies a stable failure kind.
type Code string

const (
	InvalidKey         Code = "INVALID_KEY"
	DuplicateKey       Code = "DUPLICATE_KEY"
	NotFound           Code = "NOT_FOUND"
	InvalidPrice       Code = "INVALID_PRICE"
	AssetMissing       Code = "ASSET_MISSING"
	Unauthorized       Code = "UNAUTHORIZED"
	GatewayUnavailable Code = "GATEWAY_UNAVAILABLE"
	NoPendingIntent    Code = "NO_PENDING_INTENT"
	MalformedRequest   Code = "MALFORMED_REQUEST"
)

// Error carries a failure code together with a human-readable message.
type Error struct {
	code Code
	msg  string
	err  error
}

// New builds a coded error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap builds a coded error around an underlying cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...), err: cause}
}

// Error returns the message, including the cause when present.
func (e *Error) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

// Code exposes the stable code string consumed by router summary logs.
func (e *Error) Code() string { return string(e.code) }

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.err }

// CodeOf extracts the failure code from err, or empty when err is not coded.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
