// Copyright (c) 2026 Critica. All rights reserved.

/*
Package metrics exposes the Prometheus instrumentation for the Critica API.

It defines the HTTP request metrics recorded by the middleware chain and a
small set of domain counters incremented by the services. All collectors are
package-level so call sites stay one-liners; registration happens once at
startup via [Init].
*/
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// # HTTP Metrics

var (
	// RequestsTotal counts handled HTTP requests per route, method, status.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration observes request latency per route, method, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// # Domain Counters

var (
	// SignupsTotal counts accepted signup requests (including code re-issues).
	SignupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total accepted signup requests",
		},
	)

	// TokensIssuedTotal counts successful confirmation-code exchanges.
	TokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tokens_issued_total",
			Help: "Total access tokens issued",
		},
	)

	// ReviewsCreatedTotal counts successfully created reviews.
	ReviewsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reviews_created_total",
			Help: "Total reviews created",
		},
	)

	// CommentsCreatedTotal counts successfully created comments.
	CommentsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total comments created",
		},
	)
)

// Handler serves the /metrics endpoint.
var Handler = promhttp.Handler

var registerOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more
// than once; only the first call registers.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDuration,
			SignupsTotal,
			TokensIssuedTotal,
			ReviewsCreatedTotal,
			CommentsCreatedTotal,
		)
	})
}
