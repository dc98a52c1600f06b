// Package metrics exposes the Prometheus counters for the catalog engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// IngestedTitles counts title upserts by outcome (ok, failed).
	IngestedTitles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogd_ingested_titles_total",
		Help: "Title upserts processed by the ingest pipeline.",
	}, []string{"outcome"})

	// ProviderRequests counts outbound provider calls by provider and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogd_provider_requests_total",
		Help: "External provider requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	// Searches counts search queries served.
	Searches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalogd_searches_total",
		Help: "Catalog search queries served.",
	})

	// IngestJobDuration observes end-to-end pipeline run durations.
	IngestJobDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalogd_ingest_job_duration_seconds",
		Help:    "Wall-clock duration of ingest pipeline runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	// AssetResolutions counts asset chain outcomes by selected source.
	AssetResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalogd_asset_resolutions_total",
		Help: "Asset chain resolutions by winning source.",
	}, []string{"source"})
)
