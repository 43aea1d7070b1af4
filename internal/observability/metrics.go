package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records repository call latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gighub_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts posts created.
	PostsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gighub_posts_created_total",
		Help: "Total number of posts created",
	})

	// OffersSubmitted counts offers accepted into a post's request list.
	OffersSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gighub_offers_submitted_total",
		Help: "Total number of offers submitted",
	})

	// OfferAcceptances counts accept attempts by outcome.
	OfferAcceptances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gighub_offer_acceptances_total",
		Help: "Offer accept attempts by outcome",
	}, []string{"outcome"})

	// CacheLookups counts cache-aside lookups by key family and result.
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gighub_cache_lookups_total",
		Help: "Cache lookups by key family and result",
	}, []string{"family", "result"})
)

// Accept outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeConflict = "conflict"
	OutcomeRejected = "rejected"
)

// TrackQuery returns a function that records query latency when called.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
