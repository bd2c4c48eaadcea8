// SPDX-License-Identifier: LGPL-3.0-or-later

// Package csrand wraps the OS CSPRNG, surfacing EntropyUnavailable as the
// gateway's typed error kind rather than a bare crypto/rand error.
package csrand

import (
	"crypto/rand"
	"io"

	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Fill reads len(buf) random bytes from the OS CSPRNG into buf.
func Fill(buf []byte) error {
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return gwerr.Wrap(gwerr.EntropyUnavailable, "CSPRNG read failed", err)
	}
	return nil
}

// Nonce12 returns a fresh 12-byte AEAD nonce.
func Nonce12() ([]byte, error) {
	buf := make([]byte, 12)
	if err := Fill(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
