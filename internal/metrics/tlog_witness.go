// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TlogAppends tracks transparency-log append operations.
	TlogAppends = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tlog",
			Name:      "appends_total",
			Help:      "Total number of transparency log appends",
		},
		[]string{"status"}, // ok, error
	)

	// TlogTreeSize tracks the current Merkle tree size.
	TlogTreeSize = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tlog",
			Name:      "tree_size",
			Help:      "Current number of leaves in the transparency log",
		},
	)

	// TlogAppendDuration tracks append latency.
	TlogAppendDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "tlog",
			Name:      "append_duration_seconds",
			Help:      "Transparency log append duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
	)

	// WitnessCosignsRequested tracks fan-out requests to witnesses.
	WitnessCosignsRequested = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "witness",
			Name:      "cosigns_total",
			Help:      "Total number of witness cosign requests by outcome",
		},
		[]string{"witness", "outcome"}, // ok, error, mismatch, bad_signature
	)

	// WitnessCosignDuration tracks per-witness round-trip latency.
	WitnessCosignDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "witness",
			Name:      "cosign_duration_seconds",
			Help:      "Per-witness cosign round-trip duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s, covering the 5s timeout
		},
		[]string{"witness"},
	)

	// WitnessQuorumMet tracks whether a checkpoint achieved cosign quorum.
	WitnessQuorumMet = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "witness",
			Name:      "quorum_total",
			Help:      "Total number of checkpoints by whether cosign quorum was met",
		},
		[]string{"met"}, // true, false
	)
)
