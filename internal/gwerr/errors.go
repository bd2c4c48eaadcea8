// SPDX-License-Identifier: LGPL-3.0-or-later

// Package gwerr defines the gateway's error taxonomy: internal kinds that
// carry precise diagnostic detail, mapped to the opaque external decisions
// the gateway is allowed to reveal to callers.
package gwerr

import "fmt"

// Kind is one of the gateway's internal error kinds.
type Kind string

const (
	PolicyMismatch      Kind = "POLICY_MISMATCH"
	InvalidSignature    Kind = "INVALID_SIGNATURE"
	AeadFailure         Kind = "AEAD_FAILURE"
	EntropyUnavailable  Kind = "ENTROPY_UNAVAILABLE"
	KmsError            Kind = "KMS_ERROR"
	InternalError       Kind = "INTERNAL_ERROR"
	Stale               Kind = "STALE"
	Replay              Kind = "REPLAY"
	RateLimited         Kind = "RATE_LIMITED"
)

// externalReason is the fixed, non-distinguishing reason string a Kind may
// reveal to a caller. Two different internal causes with the same Kind
// always produce the same externalReason: this is the propagation boundary
// demanded by the error handling design — nothing more specific ever
// crosses it.
var externalReason = map[Kind]string{
	PolicyMismatch:     "Invalid envelope format",
	InvalidSignature:   "Invalid envelope format",
	AeadFailure:        "Invalid envelope format",
	EntropyUnavailable: "Internal error",
	KmsError:           "Decrypt failed",
	InternalError:      "Internal error",
	Stale:              "Envelope too old",
	Replay:             "Replay detected",
	RateLimited:        "Rate limit exceeded",
}

// httpStatus is the HTTP status code a Kind maps to at the gateway surface.
var httpStatus = map[Kind]int{
	PolicyMismatch:     400,
	InvalidSignature:   400,
	AeadFailure:        400,
	EntropyUnavailable: 500,
	KmsError:           400,
	InternalError:      500,
	Stale:              400,
	Replay:             409,
	RateLimited:        429,
}

// Error is a typed gateway error. Message carries operator-facing detail
// that must never be written to an HTTP response; only Kind's fixed
// external reason may cross that boundary.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// ExternalReason returns the fixed, non-distinguishing reason string this
// Kind is allowed to reveal to a caller.
func (k Kind) ExternalReason() string {
	if r, ok := externalReason[k]; ok {
		return r
	}
	return "Internal error"
}

// HTTPStatus returns the HTTP status code this Kind maps to.
func (k Kind) HTTPStatus() int {
	if s, ok := httpStatus[k]; ok {
		return s
	}
	return 500
}

// Decision is "OK" or "REJECTED"/"INTERNAL" depending on the Kind.
func (k Kind) Decision() string {
	if k == InternalError || k == EntropyUnavailable {
		return "INTERNAL"
	}
	return "REJECTED"
}

// As extracts a *Error from err, if any wraps one.
func As(err error) (*Error, bool) {
	var e *Error
	ok := asError(err, &e)
	return e, ok
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
