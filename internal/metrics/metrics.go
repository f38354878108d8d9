// Package metrics holds the storefront's domain counters. HTTP metrics live in
// pkg/middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// URL sync outcomes.
const (
	URLSyncReplaced   = "replaced"
	URLSyncSuppressed = "suppressed"
	URLSyncCanceled   = "canceled"
	URLSyncInbound    = "inbound"
)

var (
	FilterEvaluations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_filter_evaluations_total",
			Help: "Number of times the filter engine re-evaluated a session's results",
		},
	)

	URLSyncEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_url_sync_events_total",
			Help: "URL synchronizer events by outcome",
		},
		[]string{"outcome"},
	)

	ReviewSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_review_submissions_total",
			Help: "Review submissions by outcome",
		},
		[]string{"outcome"},
	)

	ModerationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_moderation_decisions_total",
			Help: "Review moderation decisions by resulting status",
		},
		[]string{"status"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_active_sessions",
			Help: "Number of browsing sessions held in memory",
		},
	)

	PersistenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_persistence_failures_total",
			Help: "Failed fire-and-forget saves by collection",
		},
		[]string{"collection"},
	)
)
