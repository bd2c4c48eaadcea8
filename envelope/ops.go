// SPDX-License-Identifier: LGPL-3.0-or-later

package envelope

import (
	"crypto/sha256"
	"time"

	"github.com/ib823/benteng-sdk/aad"
	"github.com/ib823/benteng-sdk/crypto/aead"
	"github.com/ib823/benteng-sdk/crypto/csrand"
	"github.com/ib823/benteng-sdk/crypto/kdf"
	"github.com/ib823/benteng-sdk/crypto/kem"
	"github.com/ib823/benteng-sdk/crypto/scrub"
	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/crypto/xecdh"
	"github.com/ib823/benteng-sdk/internal/gwerr"
)

// Seal builds a fresh, signed, encrypted envelope for payload.
//
// Mirrors spec §4.3 seal(): fresh nonce and timestamp, AAD construction,
// KEM encapsulation (plus an ephemeral ECDH exchange when hybrid), hybrid
// DEK derivation, AEAD seal, then a detached signature over the envelope
// header (with the signature field cleared) ‖ nonce ‖ ct ‖ SHA256(aad).
func Seal(payload, tenantID, policyID []byte, path string, serverKemPK *kem.PublicKey, serverECDHPK []byte, clientSigSK *sig.PrivateKey, hybrid bool) (*Envelope, error) {
	nonce, err := csrand.Nonce12()
	if err != nil {
		return nil, err
	}

	e := &Envelope{
		Ver:       Version,
		Algs:      DefaultAlgorithmSet(hybrid),
		TenantID:  tenantID,
		PolicyID:  policyID,
		Path:      path,
		TsEpochMs: uint64(time.Now().UnixMilli()),
		Nonce:     nonce,
		AadExt:    AadExt{RequiredAlgs: "ML-KEM-768+ML-DSA-65"},
	}

	kemCt, ssPQC, err := kem.Encapsulate(serverKemPK)
	if err != nil {
		return nil, err
	}
	defer ssPQC.Wipe()
	e.KemCt = kemCt

	var ssECC *scrub.Bytes
	if hybrid {
		ephemeral, err := xecdh.Generate()
		if err != nil {
			return nil, gwerr.Wrap(gwerr.InternalError, "ephemeral ecdh keypair failed", err)
		}
		e.KemPubEphem = ephemeral.Public
		ssECC, err = xecdh.SharedSecret(ephemeral.Private, serverECDHPK)
		if err != nil {
			return nil, gwerr.Wrap(gwerr.InternalError, "ecdh shared secret failed", err)
		}
		defer ssECC.Wipe()
	}

	aadBytes := aad.Build(e.AAD())
	aadHash := sha256.Sum256(aadBytes)

	dek, err := deriveDEK(ssECC, ssPQC, tenantID, policyID, path, hybrid)
	if err != nil {
		return nil, err
	}
	defer dek.Wipe()

	ct, err := aead.Seal(e.Algs.Aead, dek.Bytes(), e.Nonce, payload, aadBytes)
	if err != nil {
		return nil, err
	}
	e.Ct = ct

	msg := signatureMessage(e, aadHash)
	e.Sig = sig.Sign(clientSigSK, msg)

	return e, nil
}

// Verify checks the envelope's detached signature against clientSigPK.
// It rebuilds the AAD using the envelope's own Algs.Hybrid flag, recomputes
// the signature message with Sig cleared, and verifies.
func Verify(e *Envelope, clientSigPK *sig.PublicKey) error {
	aadBytes := aad.Build(e.AAD())
	aadHash := sha256.Sum256(aadBytes)
	msg := signatureMessage(e, aadHash)

	if !sig.Verify(clientSigPK, msg, e.Sig) {
		return gwerr.New(gwerr.InvalidSignature, "envelope signature verification failed")
	}
	return nil
}

// Open decrypts an envelope directly against a server KEM secret key,
// without going through the dual-control KMS. Any failure collapses to
// AeadFailure.
func Open(e *Envelope, serverKemSK *kem.PrivateKey) ([]byte, error) {
	ssPQC, err := kem.Decapsulate(serverKemSK, e.KemCt)
	if err != nil {
		return nil, gwerr.Wrap(gwerr.AeadFailure, "kem decapsulate failed", err)
	}
	defer ssPQC.Wipe()

	var ssECC *scrub.Bytes
	if e.Algs.Hybrid {
		// Open takes no ECDH secret, so it cannot rebuild a hybrid DEK and
		// refuses hybrid envelopes. The dual-control KMS path
		// (kms.DualControlKms) derives from ss_pqc alone and does not
		// decrypt hybrid envelopes either.
		return nil, gwerr.New(gwerr.AeadFailure, "hybrid envelopes are not supported by Open")
	}

	aadBytes := aad.Build(e.AAD())
	dek, err := deriveDEK(ssECC, ssPQC, e.TenantID, e.PolicyID, e.Path, false)
	if err != nil {
		return nil, err
	}
	defer dek.Wipe()

	pt, err := aead.Open(e.Algs.Aead, dek.Bytes(), e.Nonce, e.Ct, aadBytes)
	if err != nil {
		return nil, err
	}
	return pt, nil
}

// deriveDEK implements spec §4.3 step 4: DEK = HKDF(ikm, salt=tenant‖policy,
// info="benteng/aead/v1"‖tenant‖policy‖path), where ikm is
// "benteng/hybrid/v1"‖ss_ecc‖ss_pqc in hybrid mode, or just ss_pqc
// otherwise.
func deriveDEK(ssECC, ssPQC *scrub.Bytes, tenantID, policyID []byte, path string, hybrid bool) (*scrub.Bytes, error) {
	var ikm *scrub.Bytes
	if hybrid {
		ikm = scrub.Concat([]byte(kdf.DomainHybrid), ssECC.Bytes(), ssPQC.Bytes())
	} else {
		ikm = scrub.New(append([]byte(nil), ssPQC.Bytes()...))
	}
	defer ikm.Wipe()

	return DeriveDEKFromSharedSecret(ikm, tenantID, policyID, path)
}

// DeriveDEKFromSharedSecret runs the same AEAD-key HKDF step Seal uses,
// over a caller-supplied combined shared secret. The dual-control KMS
// path calls it with the ss_pqc that HSM-A's decapsulation of kem_ct
// returns, so it lands on the same DEK Seal used for a non-hybrid
// envelope; HSM-B's quorum-gated K2 does not enter the DEK.
func DeriveDEKFromSharedSecret(ikm *scrub.Bytes, tenantID, policyID []byte, path string) (*scrub.Bytes, error) {
	salt := append(append([]byte(nil), tenantID...), policyID...)
	info := scrub.Concat([]byte(kdf.DomainAead), tenantID, policyID, []byte(path))
	defer info.Wipe()

	return kdf.Derive(ikm.Bytes(), salt, info.Bytes(), 32)
}

// signatureMessage builds M = canonical_encode(E with sig cleared) ‖
// nonce ‖ ct ‖ SHA256(aad_bytes), per spec §3 Invariant (b) and §4.3.
func signatureMessage(e *Envelope, aadHash [32]byte) []byte {
	m := EncodeForSigning(e)
	m = append(m, e.Nonce...)
	m = append(m, e.Ct...)
	m = append(m, aadHash[:]...)
	return m
}
