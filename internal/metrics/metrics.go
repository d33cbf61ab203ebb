// Package metrics exposes Prometheus counters for the sharing protocol.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Retrieval outcomes recorded per attempt.
const (
	OutcomeSuccess       = "success"
	OutcomeNotFound      = "not_found"
	OutcomeExpired       = "expired"
	OutcomeQuota         = "quota_exhausted"
	OutcomeWrongPassword = "wrong_password"
	OutcomeLegacyScheme  = "legacy_scheme"
	OutcomeError         = "error"
)

var (
	sharesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sealshare_shares_created_total",
		Help: "Total shares created",
	})
	retrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sealshare_share_retrievals_total",
		Help: "Total share retrieval attempts by outcome",
	}, []string{"outcome"})
	rateLimited = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sealshare_rate_limit_rejections_total",
		Help: "Total requests rejected by an attempt budget, by operation",
	}, []string{"operation"})

	initOnce sync.Once
)

// Init registers the collectors. Must be called once at startup.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(sharesCreated, retrievals, rateLimited)
	})
}

// RecordShareCreated counts a successful share creation.
func RecordShareCreated() {
	sharesCreated.Inc()
}

// RecordRetrieval counts a retrieval attempt with its outcome.
func RecordRetrieval(outcome string) {
	retrievals.WithLabelValues(outcome).Inc()
}

// RecordRateLimited counts a request rejected by an attempt budget.
func RecordRateLimited(operation string) {
	rateLimited.WithLabelValues(operation).Inc()
}
