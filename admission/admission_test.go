// SPDX-License-Identifier: LGPL-3.0-or-later

package admission

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplayCacheRejectsRepeatedSignature(t *testing.T) {
	rc := NewReplayCache(5 * time.Minute)
	key := ReplayKey([]byte("sig-bytes"))
	now := time.Now()

	assert.False(t, rc.CheckAndRecord(key, now))
	assert.True(t, rc.CheckAndRecord(key, now.Add(time.Second)))
}

func TestReplayCacheEvictsExpiredEntries(t *testing.T) {
	rc := NewReplayCache(5 * time.Minute)
	key := ReplayKey([]byte("sig-bytes"))
	now := time.Now()

	assert.False(t, rc.CheckAndRecord(key, now))
	assert.Equal(t, 1, rc.Len())

	later := now.Add(6 * time.Minute)
	assert.False(t, rc.CheckAndRecord(key, later))
	assert.Equal(t, 1, rc.Len())
}

func TestCheckFreshnessUsesDefaultMaxAge(t *testing.T) {
	ts := uint64(1_000_000)
	assert.False(t, CheckFreshness(ts+29_000, ts, 0))
	assert.True(t, CheckFreshness(ts+31_000, ts, 0))
}

func TestCheckFreshnessUsesPolicyMaxAge(t *testing.T) {
	ts := uint64(1_000_000)
	assert.False(t, CheckFreshness(ts+4_000, ts, 5_000))
	assert.True(t, CheckFreshness(ts+6_000, ts, 5_000))
}

func TestRateLimiterAllowsUpToCapacity(t *testing.T) {
	rl := NewRateLimiter(3, 1.0)
	key := Key("decrypt", "ten", "pol")
	now := time.Now()

	assert.True(t, rl.Allow(key, now))
	assert.True(t, rl.Allow(key, now))
	assert.True(t, rl.Allow(key, now))
	assert.False(t, rl.Allow(key, now))
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	rl := NewRateLimiter(3, 1.0)
	key := Key("decrypt", "ten", "pol")
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow(key, now))
	}
	require.False(t, rl.Allow(key, now))

	later := now.Add(2 * time.Second)
	assert.True(t, rl.Allow(key, later))
}

func TestRateLimiterSeparatesKeys(t *testing.T) {
	rl := NewRateLimiter(1, 1.0)
	now := time.Now()
	assert.True(t, rl.Allow(Key("verify", "a", "p"), now))
	assert.True(t, rl.Allow(Key("verify", "b", "p"), now))
}

func TestIPHasherDeterministicUntilRotation(t *testing.T) {
	now := time.Now()
	h, err := NewIPHasher(time.Hour, now)
	require.NoError(t, err)

	ip := net.ParseIP("203.0.113.42")
	h1 := h.Hash(ip)
	h2 := h.Hash(ip)
	assert.Equal(t, h1, h2)

	require.NoError(t, h.MaybeRotate(now.Add(2*time.Hour)))
	h3 := h.Hash(ip)
	assert.NotEqual(t, h1, h3)
}

func TestIPHasherSameOnIPsSharingPrefix(t *testing.T) {
	now := time.Now()
	h, err := NewIPHasher(time.Hour, now)
	require.NoError(t, err)

	a := net.ParseIP("203.0.113.1")
	b := net.ParseIP("203.0.113.250")
	assert.Equal(t, h.Hash(a), h.Hash(b))

	c := net.ParseIP("203.0.114.1")
	assert.NotEqual(t, h.Hash(a), h.Hash(c))
}
