// Package telemetry provides Prometheus metrics and tracing for the
// newscore service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "newscore"

// Metrics holds all newscore Prometheus metrics.
type Metrics struct {
	// Source fetch metrics
	SourceFetches *prometheus.CounterVec
	SourceItems   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FallbackTried *prometheus.CounterVec

	// Aggregation metrics
	ItemsMerged     prometheus.Counter
	ItemsDeduped    prometheus.Counter
	AggregationTime prometheus.Histogram

	// Scoring metrics
	ItemsScored     prometheus.Counter
	ScoringDuration prometheus.Histogram

	// Preference cache metrics
	PrefCacheHits   prometheus.Counter
	PrefCacheMisses prometheus.Counter
	PrefFallbacks   prometheus.Counter
}

// Provider wraps telemetry providers.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics on the
// default registry.
func NewProvider() *Provider {
	return NewProviderWith(prometheus.DefaultRegisterer)
}

// NewProviderWith registers metrics on reg. Tests pass a private
// registry so parallel providers never collide.
func NewProviderWith(reg prometheus.Registerer) *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(promauto.With(reg)),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics(factory promauto.Factory) *Metrics {
	return &Metrics{
		SourceFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newscore_source_fetches_total",
			Help: "Source fetch attempts by source and result (ok, error, timeout)",
		}, []string{"source", "result"}),

		SourceItems: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newscore_source_items_total",
			Help: "Usable items returned per source",
		}, []string{"source"}),

		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "newscore_source_fetch_duration_seconds",
			Help:    "Time to fetch and map one source",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 15.0},
		}, []string{"source"}),

		FallbackTried: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "newscore_source_fallback_total",
			Help: "Fallback attempts per source",
		}, []string{"source"}),

		ItemsMerged: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_items_merged_total",
			Help: "Candidate items entering deduplication",
		}),

		ItemsDeduped: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_items_deduped_total",
			Help: "Duplicate items discarded during merge",
		}),

		AggregationTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "newscore_aggregation_duration_seconds",
			Help:    "End-to-end aggregation time including all sources",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 20.0},
		}),

		ItemsScored: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_items_scored_total",
			Help: "Items scored for relevance",
		}),

		ScoringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "newscore_scoring_duration_seconds",
			Help:    "Time to score one result set",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		PrefCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_preference_cache_hits_total",
			Help: "Preference profile cache hits",
		}),

		PrefCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_preference_cache_misses_total",
			Help: "Preference profile cache misses",
		}),

		PrefFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "newscore_preference_fallbacks_total",
			Help: "Default-profile fallbacks after preference service failures",
		}),
	}
}

// RecordFetch records the outcome of one source fetch.
func (p *Provider) RecordFetch(source string, result string, items int, duration time.Duration) {
	p.Metrics.SourceFetches.WithLabelValues(source, result).Inc()
	p.Metrics.FetchDuration.WithLabelValues(source).Observe(duration.Seconds())
	if items > 0 {
		p.Metrics.SourceItems.WithLabelValues(source).Add(float64(items))
	}
}

// RecordMerge records dedup statistics for one aggregation.
func (p *Provider) RecordMerge(candidates, kept int, duration time.Duration) {
	p.Metrics.ItemsMerged.Add(float64(candidates))
	if dropped := candidates - kept; dropped > 0 {
		p.Metrics.ItemsDeduped.Add(float64(dropped))
	}
	p.Metrics.AggregationTime.Observe(duration.Seconds())
}

// RecordScoring records one scoring pass over a result set.
func (p *Provider) RecordScoring(items int, duration time.Duration) {
	p.Metrics.ItemsScored.Add(float64(items))
	p.Metrics.ScoringDuration.Observe(duration.Seconds())
}

// RecordFallback records one fallback-URL attempt for a source.
func (p *Provider) RecordFallback(source string) {
	p.Metrics.FallbackTried.WithLabelValues(source).Inc()
}

// RecordCacheHit records a preference profile served from cache.
func (p *Provider) RecordCacheHit() {
	p.Metrics.PrefCacheHits.Inc()
}

// RecordCacheMiss records a preference profile fetched from the service.
func (p *Provider) RecordCacheMiss() {
	p.Metrics.PrefCacheMisses.Inc()
}

// RecordCacheFallback records a default-profile fallback after a
// preference service failure.
func (p *Provider) RecordCacheFallback() {
	p.Metrics.PrefFallbacks.Inc()
}

// StartSpan starts a new trace span. The caller ends it.
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
