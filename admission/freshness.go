// SPDX-License-Identifier: LGPL-3.0-or-later

package admission

const defaultMaxAgeMs = 30_000

// CheckFreshness rejects requests whose envelope timestamp is too old
// relative to the policy's max_age_ms (or the 30s default when the policy
// leaves it unset). nowMs and tsEpochMs are both epoch milliseconds.
func CheckFreshness(nowMs, tsEpochMs uint64, maxAgeMs uint64) (stale bool) {
	if maxAgeMs == 0 {
		maxAgeMs = defaultMaxAgeMs
	}
	return nowMs > tsEpochMs+maxAgeMs
}
