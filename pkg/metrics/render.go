package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"flyrender/pkg/templating"
)

// Label values of the cache and fetch result counters.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultSuccess = "success"
	ResultError   = "error"
)

// RenderMetrics records engine activity. It implements templating.Recorder.
//
// Metrics (all prefixed with "flyrender_"):
//   - renders_total: top-level renders
//   - render_errors_total{kind}: failed renders by templating.ErrorKind
//   - render_duration_seconds: top-level render duration
//   - template_cache_lookups_total{result}: template resolutions, hit or miss
//   - document_fetches_total{result}: template document fetches, success or error
//   - document_fetch_duration_seconds: template document fetch duration
type RenderMetrics struct {
	renders        prometheus.Counter
	renderErrors   *prometheus.CounterVec
	renderDuration prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	fetches        *prometheus.CounterVec
	fetchDuration  prometheus.Histogram
}

var _ templating.Recorder = (*RenderMetrics)(nil)

// NewRenderMetrics creates RenderMetrics registered with registry.
// Registering twice with the same registry panics.
func NewRenderMetrics(registry prometheus.Registerer) *RenderMetrics {
	return &RenderMetrics{
		renders: NewCounter(registry,
			"renders_total",
			"Total number of top-level template renders"),
		renderErrors: NewCounterVec(registry,
			"render_errors_total",
			"Total number of failed template renders by error kind",
			[]string{"kind"}),
		renderDuration: NewHistogramWithBuckets(registry,
			"render_duration_seconds",
			"Duration of top-level template renders in seconds",
			DurationBuckets()),
		cacheLookups: NewCounterVec(registry,
			"template_cache_lookups_total",
			"Total number of template cache lookups by result",
			[]string{"result"}),
		fetches: NewCounterVec(registry,
			"document_fetches_total",
			"Total number of template document fetches by result",
			[]string{"result"}),
		fetchDuration: NewHistogramWithBuckets(registry,
			"document_fetch_duration_seconds",
			"Duration of template document fetches in seconds",
			DurationBuckets()),
	}
}

// RecordRender records a finished top-level render.
func (m *RenderMetrics) RecordRender(duration time.Duration, err error) {
	m.renders.Inc()
	m.renderDuration.Observe(duration.Seconds())
	if err != nil {
		m.renderErrors.WithLabelValues(templating.ErrorKind(err)).Inc()
	}
}

// RecordCacheLookup records a template resolution.
func (m *RenderMetrics) RecordCacheLookup(hit bool) {
	if hit {
		m.cacheLookups.WithLabelValues(ResultHit).Inc()
		return
	}
	m.cacheLookups.WithLabelValues(ResultMiss).Inc()
}

// RecordFetch records a template document fetch.
func (m *RenderMetrics) RecordFetch(duration time.Duration, err error) {
	m.fetchDuration.Observe(duration.Seconds())
	if err != nil {
		m.fetches.WithLabelValues(ResultError).Inc()
		return
	}
	m.fetches.WithLabelValues(ResultSuccess).Inc()
}
