package scraper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Status label values
const (
	StatusParsed   = "parsed"
	StatusFailed   = "failed"
	StatusSkipped  = "skipped"
	StatusInserted = "inserted"
	StatusExisting = "existing"
)

// Metrics are the scraper's prometheus collectors
type Metrics struct {
	Documents     *prometheus.CounterVec
	Pages         *prometheus.CounterVec
	Records       *prometheus.CounterVec
	ParseDuration prometheus.Histogram
}

// NewMetrics registers the scraper collectors with reg. A nil reg keeps
// them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Documents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grant_scraper_documents_total",
				Help: "Total number of register documents processed",
			},
			[]string{"status"}, // parsed, failed
		),
		Pages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grant_scraper_pages_total",
				Help: "Total number of register pages read",
			},
			[]string{"status"}, // parsed, skipped
		),
		Records: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "grant_scraper_records_total",
				Help: "Total number of application records found",
			},
			[]string{"status"}, // inserted, existing, failed
		),
		ParseDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "grant_scraper_document_parse_seconds",
				Help:    "Register document parse duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 25},
			},
		),
	}
}
