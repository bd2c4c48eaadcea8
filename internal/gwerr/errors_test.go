// SPDX-License-Identifier: LGPL-3.0-or-later

package gwerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExternalReasonNeverLeaksDetail(t *testing.T) {
	e1 := Wrap(KmsError, "HSM-A unreachable at 10.0.0.5:9000", errors.New("dial tcp: timeout"))
	e2 := Wrap(KmsError, "quorum short by 1 approval", nil)

	assert.Equal(t, e1.Kind.ExternalReason(), e2.Kind.ExternalReason())
	assert.Equal(t, "Decrypt failed", e1.Kind.ExternalReason())
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := map[Kind]int{
		PolicyMismatch:   400,
		InvalidSignature: 400,
		AeadFailure:      400,
		Stale:            400,
		Replay:           409,
		RateLimited:      429,
		InternalError:    500,
	}
	for k, want := range cases {
		assert.Equal(t, want, k.HTTPStatus(), "kind=%s", k)
	}
}

func TestAsUnwrapsChain(t *testing.T) {
	base := New(Replay, "sig hash seen")
	wrapped := fmtErrorf(base)

	e, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, Replay, e.Kind)
}

type wrapErr struct {
	inner error
}

func (w wrapErr) Error() string { return "wrapped: " + w.inner.Error() }
func (w wrapErr) Unwrap() error { return w.inner }

func fmtErrorf(err error) error {
	return wrapErr{inner: err}
}

func TestDecision(t *testing.T) {
	assert.Equal(t, "REJECTED", Replay.Decision())
	assert.Equal(t, "INTERNAL", InternalError.Decision())
}
