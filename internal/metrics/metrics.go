// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes the gateway's Prometheus instrumentation. All
// metrics share a dedicated registry and namespace so the /metrics handler
// never accidentally picks up process-default collectors from an embedding
// binary.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "benteng_gateway"

// Registry is the gateway's dedicated Prometheus registry.
var Registry = prometheus.NewRegistry()
