// SPDX-License-Identifier: LGPL-3.0-or-later

// Package kdf provides the gateway's single HKDF-SHA256 extract-and-expand
// entry point and the domain-separation strings used throughout the
// envelope and KMS designs. Domain strings are stable and versioned:
// changing one requires bumping the envelope version.
package kdf

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/ib823/benteng-sdk/crypto/scrub"
)

// Domain-separation info/salt strings. Grounded on the "benteng/..." naming
// convention used consistently across the KMS, envelope, and request-id
// derivations.
const (
	DomainHybrid    = "benteng/hybrid/v1"
	DomainAead      = "benteng/aead/v1"
	DomainHsmAK1    = "benteng/hsm-a/k1/v1"
	DomainHsmBK2    = "benteng/hsm-b/k2/v1"
	DomainDek       = "benteng/dek/v1"
	DomainRequestID = "benteng/request-id/v1"
)

// Derive runs HKDF-SHA256 extract-and-expand over ikm with the given salt
// and info, returning l bytes in a scrub-on-drop buffer.
func Derive(ikm, salt, info []byte, l int) (*scrub.Bytes, error) {
	r := hkdf.New(sha256.New, ikm, salt, info)
	out := make([]byte, l)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, err
	}
	return scrub.New(out), nil
}
