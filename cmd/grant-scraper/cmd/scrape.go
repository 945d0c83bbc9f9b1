package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/scraper"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/storage"
)

func (a *app) newScrapeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Download the registers and store their applications",
		Long: `Reads the listing page, downloads the most recent register and, when
--max-documents is set, a random sample of the older ones, then stores every
application not already in the database.`,
		Args: cobra.NoArgs,
		RunE: a.runScrape,
	}
}

func (a *app) runScrape(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := scraper.NewMetrics(reg)

	if a.config.MetricsAddr != "" {
		shutdown := a.serveMetrics(reg)
		defer shutdown()
	}

	parser, _, err := a.newParser(metrics)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, a.config.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	fetcher := scraper.NewFetcher(scraper.FetchOptions{
		UserAgent:  a.config.UserAgent,
		Timeout:    a.config.RequestTimeout,
		MaxSize:    a.config.MaxFileSize,
		MaxRetries: a.config.MaxRetries,
	}, a.logger)

	s := scraper.New(fetcher, parser, store, metrics, scraper.Options{
		ListingURL:   a.config.ListingURL,
		LinkSelector: a.config.LinkSelector,
		RequestDelay: a.config.RequestDelay,
		MaxDocuments: a.config.MaxDocuments,
	}, a.logger)

	summary, err := s.Run(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	if summary.Errors.Len() > 0 {
		a.logger.Warn("documents skipped", "summary", summary.Errors.Summary())
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

// serveMetrics exposes reg on the configured address until the returned
// function is called
func (a *app) serveMetrics(reg *prometheus.Registry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.config.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown", "error", err)
		}
	}
}
