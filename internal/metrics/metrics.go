// Package metrics holds the Prometheus instrumentation of the bookmark pipeline.
//
// Every recording method accepts a nil receiver so components can run
// uninstrumented in tests and one-shot CLI commands.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelf"

// Thumbnail outcomes.
const (
	ThumbnailEncoded  = "encoded"
	ThumbnailFallback = "fallback"
	ThumbnailSkipped  = "skipped"
)

// Metrics holds all shelf collectors.
type Metrics struct {
	registry *prometheus.Registry

	Extractions      *prometheus.CounterVec
	ExtractionPanics prometheus.Counter
	BookmarksSaved   *prometheus.CounterVec
	FallbackRecords  prometheus.Counter
	Thumbnails       *prometheus.CounterVec
	PageRetries      prometheus.Counter
	StoreErrors      *prometheus.CounterVec
	ReplicaSize      prometheus.Gauge
}

// New registers every collector on a dedicated registry, alongside the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Page extractions by source strategy and interaction mode",
		}, []string{"source", "mode"}),
		ExtractionPanics: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_panics_total",
			Help:      "Strategy panics recovered by the dispatcher",
		}),
		BookmarksSaved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookmarks_saved_total",
			Help:      "Bookmarks appended to the collection by source",
		}, []string{"source"}),
		FallbackRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_records_total",
			Help:      "Bookmarks built from request data because the page could not be loaded",
		}),
		Thumbnails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "thumbnails_total",
			Help:      "Thumbnail encoding outcomes (encoded, fallback, skipped)",
		}, []string{"result"}),
		PageRetries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_load_retries_total",
			Help:      "Page loads retried after a not-ready failure",
		}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Durable store failures by operation",
		}, []string{"op"}),
		ReplicaSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "replica_bookmarks",
			Help:      "Bookmarks currently held by the read replica",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveExtraction(source, mode string) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(source, mode).Inc()
}

func (m *Metrics) ObserveExtractionPanic() {
	if m == nil {
		return
	}
	m.ExtractionPanics.Inc()
}

func (m *Metrics) ObserveSaved(source string) {
	if m == nil {
		return
	}
	m.BookmarksSaved.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveFallbackRecord() {
	if m == nil {
		return
	}
	m.FallbackRecords.Inc()
}

func (m *Metrics) ObserveThumbnail(result string) {
	if m == nil {
		return
	}
	m.Thumbnails.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePageRetry() {
	if m == nil {
		return
	}
	m.PageRetries.Inc()
}

func (m *Metrics) ObserveStoreError(op string) {
	if m == nil {
		return
	}
	m.StoreErrors.WithLabelValues(op).Inc()
}

func (m *Metrics) SetReplicaSize(n int) {
	if m == nil {
		return
	}
	m.ReplicaSize.Set(float64(n))
}
