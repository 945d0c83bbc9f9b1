// Package scraper finds the register documents on the council's listing
// page, parses them and stores the records.
package scraper

import (
	"context"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
)

// Store receives the records of a run
type Store interface {
	Upsert(ctx context.Context, r applications.Record) (bool, error)
}

// Options configure a run
type Options struct {
	ListingURL   string
	LinkSelector string
	RequestDelay time.Duration
	MaxDocuments int

	// Rand samples documents when MaxDocuments is set
	Rand *rand.Rand
}

// Summary describes a finished run
type Summary struct {
	Documents       int                       `json:"documents"`
	FailedDocuments int                       `json:"failed_documents"`
	Records         int                       `json:"records"`
	Inserted        int                       `json:"inserted"`
	Panics          int                       `json:"panics"`
	Healthy         bool                      `json:"healthy"`
	Errors          *pdferrors.ErrorCollection `json:"-"`
}

// Scraper runs the listing, fetch, parse and store pipeline
type Scraper struct {
	fetcher *Fetcher
	parser  *Parser
	store   Store
	metrics *Metrics
	opts    Options
	logger  *slog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// New creates a scraper
func New(fetcher *Fetcher, parser *Parser, store Store, metrics *Metrics, opts Options, logger *slog.Logger) *Scraper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	return &Scraper{
		fetcher: fetcher,
		parser:  parser,
		store:   store,
		metrics: metrics,
		opts:    opts,
		logger:  logger.With("component", "scraper"),
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run processes every selected document in turn. A document that cannot be
// fetched or read is logged and counted; the run continues with the next.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{Errors: pdferrors.NewErrorCollection()}
	s.parser.Stability().Reset()

	s.logger.Info("retrieving listing", "url", s.opts.ListingURL)
	urls, err := s.fetcher.DiscoverDocuments(ctx, s.opts.ListingURL, s.opts.LinkSelector)
	if err != nil {
		return summary, err
	}

	selected := SelectDocuments(urls, s.opts.MaxDocuments, s.opts.Rand)
	s.logger.Info("found documents", "total", len(urls), "selected", len(selected))

	for i, url := range selected {
		if i > 0 {
			if err := s.sleep(ctx, s.opts.RequestDelay); err != nil {
				return summary, err
			}
		}

		summary.Documents++
		if err := s.processDocument(ctx, url, summary); err != nil {
			if ctx.Err() != nil {
				return summary, ctx.Err()
			}
			summary.FailedDocuments++
			summary.Errors.Add(err)
			s.metrics.Documents.WithLabelValues(StatusFailed).Inc()
			s.logger.Error("skipping document", "document", url, "error", err)
		} else {
			s.metrics.Documents.WithLabelValues(StatusParsed).Inc()
		}

		s.parser.Stability().Relieve()
	}

	health := s.parser.Stability().HealthStatus()
	summary.Panics, _ = health["panic_count"].(int)
	summary.Healthy, _ = health["healthy"].(bool)

	s.logger.Info("run complete",
		"documents", summary.Documents,
		"failed", summary.FailedDocuments,
		"records", summary.Records,
		"inserted", summary.Inserted,
		"stability", health)
	return summary, nil
}

func (s *Scraper) processDocument(ctx context.Context, url string, summary *Summary) error {
	s.logger.Info("retrieving document", "document", url)
	data, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return err
	}

	records, err := s.parser.ParseDocument(ctx, data, url)
	if err != nil {
		return err
	}

	for _, r := range records {
		summary.Records++
		inserted, err := s.store.Upsert(ctx, r)
		switch {
		case err != nil:
			summary.Errors.Add(err)
			s.metrics.Records.WithLabelValues(StatusFailed).Inc()
			s.logger.Error("failed to store record", "application", r.ApplicationNumber, "error", err)
		case inserted:
			summary.Inserted++
			s.metrics.Records.WithLabelValues(StatusInserted).Inc()
			s.logger.Info("saved application", "application", r.ApplicationNumber, "address", r.Address)
		default:
			s.metrics.Records.WithLabelValues(StatusExisting).Inc()
			s.logger.Debug("application already stored", "application", r.ApplicationNumber)
		}
	}
	return nil
}
