// SPDX-License-Identifier: LGPL-3.0-or-later

package gateway

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib823/benteng-sdk/admission"
	"github.com/ib823/benteng-sdk/crypto/kem"
	"github.com/ib823/benteng-sdk/crypto/sig"
	"github.com/ib823/benteng-sdk/envelope"
	"github.com/ib823/benteng-sdk/kms"
	"github.com/ib823/benteng-sdk/policy"
	"github.com/ib823/benteng-sdk/tlog"
)

type staticKeyResolver struct{ pk *sig.PublicKey }

func (s staticKeyResolver) ResolveSigKey(tenantID, policyID []byte) (*sig.PublicKey, error) {
	return s.pk, nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *sig.PrivateKey, *kem.PublicKey, *kem.PrivateKey) {
	t.Helper()

	sigPK, sigSK, err := sig.GenerateKeyPair()
	require.NoError(t, err)

	kemPK, kemSK, err := kem.GenerateKeyPair()
	require.NoError(t, err)

	hsmA := kms.NewInProcessHsmA()
	tenantID := []byte("tenant-a")
	policyID := []byte("policy-a")
	hsmA.RegisterKey(kms.HsmKID(tenantID, policyID), kemSK)

	store := kms.NewMemoryQuorumStore()
	k := kms.New(kms.DefaultConfig(), hsmA, store)

	o := &Orchestrator{
		Policies:    policy.NewDistributor(),
		KMS:         k,
		Log:         tlog.New(),
		Replay:      admission.NewReplayCache(5 * time.Minute),
		RateLimiter: admission.NewRateLimiter(100, 10),
		ClientKeys:  staticKeyResolver{pk: sigPK},
	}
	return o, sigSK, kemPK, kemSK
}

func approveQuorum(t *testing.T, k *kms.DualControlKms, e *envelope.Envelope) {
	t.Helper()
	now := time.Now()
	require.NoError(t, k.AddApproval(string(e.TenantID), string(e.PolicyID), e.Path, e.KemCt, "approver-1", now))
	require.NoError(t, k.AddApproval(string(e.TenantID), string(e.PolicyID), e.Path, e.KemCt, "approver-2", now))
}

func TestVerifyAcceptsFreshValidEnvelope(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	body := envelope.Encode(e)
	nowMs := uint64(time.Now().UnixMilli())
	d := o.Verify(context.Background(), body, "203.0.113.5", nowMs)

	assert.Equal(t, "OK", d.Decision)
	require.NotNil(t, d.Receipt)
	assert.NotEmpty(t, d.Receipt.TlogHash)
	assert.NotEmpty(t, d.RequestID)
}

func TestVerifyAssignsDistinctRequestIDsPerCall(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e1, err := envelope.Seal([]byte("payload-1"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)
	e2, err := envelope.Seal([]byte("payload-2"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	nowMs := uint64(time.Now().UnixMilli())
	d1 := o.Verify(context.Background(), envelope.Encode(e1), "203.0.113.5", nowMs)
	d2 := o.Verify(context.Background(), envelope.Encode(e2), "203.0.113.5", nowMs+1)

	assert.NotEqual(t, d1.RequestID, d2.RequestID)
}

func TestVerifyRejectsStaleEnvelope(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	body := envelope.Encode(e)
	farFuture := uint64(time.Now().Add(time.Hour).UnixMilli())
	d := o.Verify(context.Background(), body, "203.0.113.5", farFuture)

	assert.Equal(t, "REJECTED", d.Decision)
	assert.Equal(t, "Envelope too old", d.Reason)
}

func TestVerifyRejectsReplayedEnvelope(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	body := envelope.Encode(e)
	nowMs := uint64(time.Now().UnixMilli())

	first := o.Verify(context.Background(), body, "203.0.113.5", nowMs)
	require.Equal(t, "OK", first.Decision)

	second := o.Verify(context.Background(), body, "203.0.113.5", nowMs+10)
	assert.Equal(t, "REJECTED", second.Decision)
	assert.Equal(t, "Replay detected", second.Reason)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)
	e.Sig[0] ^= 0xFF

	body := envelope.Encode(e)
	nowMs := uint64(time.Now().UnixMilli())
	d := o.Verify(context.Background(), body, "203.0.113.5", nowMs)

	assert.Equal(t, "REJECTED", d.Decision)
	assert.Equal(t, "Invalid envelope format", d.Reason)
}

func TestDecryptSucceedsAfterQuorumApproval(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("secret payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)
	approveQuorum(t, o.KMS, e)

	body := envelope.Encode(e)
	nowMs := uint64(time.Now().UnixMilli())

	var got []byte
	d := o.Decrypt(context.Background(), body, "203.0.113.5", nowMs, func(pt []byte) { got = pt })

	assert.Equal(t, "OK", d.Decision)
	assert.Equal(t, "secret payload", string(got))
}

func TestDecryptFailsWithoutQuorum(t *testing.T) {
	o, sigSK, kemPK, _ := newTestOrchestrator(t)

	e, err := envelope.Seal([]byte("secret payload"), []byte("tenant-a"), []byte("policy-a"), "/orders", kemPK, nil, sigSK, false)
	require.NoError(t, err)

	body := envelope.Encode(e)
	nowMs := uint64(time.Now().UnixMilli())
	d := o.Decrypt(context.Background(), body, "203.0.113.5", nowMs, nil)

	assert.Equal(t, "REJECTED", d.Decision)
	assert.Equal(t, "Decrypt failed", d.Reason)
}

func TestKIDFormat(t *testing.T) {
	kid := KID([]byte{0xde, 0xad, 0xbe, 0xef}, "sig", "ML-DSA-65")
	assert.Equal(t, "btk/ten-deadbeef/server-sig/ML-DSA-65/v1", kid)
}
