package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/stability"
)

// Parser turns register documents into records, one page at a time
type Parser struct {
	validator *content.Validator
	mapper    *applications.Mapper
	stability *stability.Manager
	metrics   *Metrics
	logger    *slog.Logger
}

// NewParser creates a parser. A nil metrics keeps unregistered collectors.
func NewParser(validator *content.Validator, mapper *applications.Mapper, sm *stability.Manager, metrics *Metrics, logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if sm == nil {
		sm = stability.NewManager(stability.DefaultConfig(), logger)
	}
	return &Parser{
		validator: validator,
		mapper:    mapper,
		stability: sm,
		metrics:   metrics,
		logger:    logger.With("component", "parser"),
	}
}

// Stability returns the parser's stability manager
func (p *Parser) Stability() *stability.Manager {
	return p.stability
}

// ParseDocument returns the records of every readable page of data. Pages
// that cannot be read are logged and skipped; only an unreadable document
// is an error.
func (p *Parser) ParseDocument(ctx context.Context, data []byte, infoURL string) ([]applications.Record, error) {
	start := time.Now()
	defer func() { p.metrics.ParseDuration.Observe(time.Since(start).Seconds()) }()

	pageCount, err := p.validator.Validate(data)
	switch {
	case errors.Is(err, content.ErrRelaxedValidation):
		p.logger.Warn("document failed relaxed validation, parsing anyway", "document", infoURL, "error", err)
	case err != nil:
		return nil, pdferrors.Wrap(pdferrors.KindDocumentOpen, "invalid document", err).WithDocument(infoURL)
	}

	doc, err := content.Open(data, infoURL)
	if err != nil {
		return nil, pdferrors.Wrap(pdferrors.KindDocumentOpen, "unreadable document", err).WithDocument(infoURL)
	}

	pages := doc.NumPages()
	if pageCount > 0 && pageCount != pages {
		p.logger.Debug("page count mismatch", "document", infoURL, "pdfcpu", pageCount, "reader", pages)
	}

	var records []applications.Record
	for n := 1; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		var pageRecords []applications.Record
		err := p.stability.Guard(fmt.Sprintf("%s page %d", infoURL, n), func() error {
			page, err := doc.Page(n)
			if err != nil {
				return pdferrors.Wrap(pdferrors.KindStructuralAbsence, "unreadable page", err).
					WithDocument(infoURL).
					WithPage(n)
			}
			pageRecords, err = p.mapper.MapPage(page, infoURL)
			return err
		})
		if err != nil {
			p.metrics.Pages.WithLabelValues(StatusSkipped).Inc()
			p.logger.Debug("page skipped", "document", infoURL, "page", n, "error", err)
			continue
		}

		p.metrics.Pages.WithLabelValues(StatusParsed).Inc()
		records = append(records, pageRecords...)
	}

	p.logger.Info("parsed document", "document", infoURL, "pages", pages, "records", len(records))
	return records, nil
}
