// Copyright (c) 2012-2024 Eli Janssen
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package dirserve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace used for Prometheus metrics.
const MetricNamespace = "dirserve"
const MetricSubsystem = "server"

var (
	requestsResolved = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "requests_resolved_total",
			Help:      "The number of requests by path resolution result.",
		},
		[]string{"result"},
	)
	bytesServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "bytes_served_total",
			Help:      "The number of file bytes written to clients.",
		},
	)
	listingFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "listings_failed_total",
			Help:      "The number of directory listings that could not be rendered.",
		},
	)
	responseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNamespace,
			Subsystem: MetricSubsystem,
			Name:      "responses_failed_total",
			Help:      "The number of responses that failed to send to the client.",
		},
	)
)
