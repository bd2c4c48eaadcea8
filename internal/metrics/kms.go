// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// KmsDerivations tracks dual-control DEK derivations by outcome.
	KmsDerivations = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kms",
			Name:      "derivations_total",
			Help:      "Total number of dual-control DEK derivations",
		},
		[]string{"outcome"}, // cache_hit, success, insufficient_quorum, hsm_error
	)

	// KmsQuorumWaitSeconds tracks time spent waiting on quorum approvals
	// before a derivation either proceeds or is abandoned.
	KmsQuorumWaitSeconds = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kms",
			Name:      "quorum_wait_seconds",
			Help:      "Time spent gated on quorum approval before derivation",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		},
	)

	// KmsDerivationDuration tracks end-to-end derivation latency.
	KmsDerivationDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kms",
			Name:      "derivation_duration_seconds",
			Help:      "Dual-control DEK derivation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		},
		[]string{"outcome"},
	)

	// KmsCacheSize tracks the current derivation cache occupancy.
	KmsCacheSize = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "kms",
			Name:      "cache_entries",
			Help:      "Current number of entries in the DEK derivation cache",
		},
	)
)
