// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsAdmitted tracks envelopes passed through the admission layer.
	RequestsAdmitted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "requests_total",
			Help:      "Total number of envelopes evaluated by the admission layer",
		},
		[]string{"decision"}, // admitted, rejected, replay, stale, rate_limited
	)

	// ReplaysDetected tracks replay-suppression hits.
	ReplaysDetected = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "replays_detected_total",
			Help:      "Total number of envelopes rejected as replays",
		},
	)

	// RateLimitRejections counts token-bucket rejections across all buckets.
	RateLimitRejections = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "rate_limit_rejections_total",
			Help:      "Total number of envelopes rejected by the rate limiter",
		},
	)

	// FreshnessRejections tracks staleness rejections.
	FreshnessRejections = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "freshness_rejections_total",
			Help:      "Total number of envelopes rejected for exceeding max age",
		},
	)

	// AdmissionDuration tracks admission-layer processing latency.
	AdmissionDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "admission",
			Name:      "duration_seconds",
			Help:      "Admission layer processing duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
)
