// Package prometheus records search, ingestion and answer metrics.
package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	SearchDuration *prometheus.HistogramVec
	SearchTotal    *prometheus.CounterVec
	SearchResults  prometheus.Histogram
	IngestDuration prometheus.Histogram
	IngestTotal    *prometheus.CounterVec
	PagesIngested  prometheus.Counter
	AnswerTotal    *prometheus.CounterVec
	StreamFrames   *prometheus.CounterVec
}

// NewMetrics creates collectors registered on a fresh registry together
// with the Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		SearchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "doclens_search_duration_seconds",
			Help:    "Hybrid search duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"query_type"}),
		SearchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doclens_search_total",
			Help: "Total number of searches by outcome",
		}, []string{"status"}),
		SearchResults: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "doclens_search_results_count",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		}),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "doclens_ingest_duration_seconds",
			Help:    "Domain ingestion duration in seconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		IngestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doclens_ingest_total",
			Help: "Total number of domain ingestions by outcome",
		}, []string{"status"}),
		PagesIngested: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "doclens_pages_ingested_total",
			Help: "Total pages ingested",
		}),
		AnswerTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doclens_answer_total",
			Help: "Total answers by mode and outcome",
		}, []string{"mode", "status"}),
		StreamFrames: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "doclens_stream_frames_total",
			Help: "Total streamed answer frames by type",
		}, []string{"type"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.SearchDuration,
		m.SearchTotal,
		m.SearchResults,
		m.IngestDuration,
		m.IngestTotal,
		m.PagesIngested,
		m.AnswerTotal,
		m.StreamFrames,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
