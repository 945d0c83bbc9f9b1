package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
)

// FetchOptions configure a Fetcher
type FetchOptions struct {
	UserAgent  string
	Timeout    time.Duration
	MaxSize    int64
	MaxRetries int

	// Backoff is multiplied by the attempt number between retries
	Backoff time.Duration
}

// Fetcher downloads listing pages and documents
type Fetcher struct {
	client *http.Client
	opts   FetchOptions
	logger *slog.Logger
}

// NewFetcher creates a fetcher
func NewFetcher(opts FetchOptions, logger *slog.Logger) *Fetcher {
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fetcher{
		client: &http.Client{Timeout: opts.Timeout},
		opts:   opts,
		logger: logger,
	}
}

// statusError is a non-200 response
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.code)
}

// retryable reports whether another attempt could succeed
func retryable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code >= 500
	}
	return true
}

// Fetch returns the body of url, retrying transport failures and server
// errors
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= f.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := f.opts.Backoff * time.Duration(attempt)
			f.logger.Debug("retrying fetch", "url", url, "attempt", attempt, "wait", wait, "error", lastErr)
			select {
			case <-ctx.Done():
				return nil, pdferrors.Wrap(pdferrors.KindDocumentFetch, "fetch cancelled", ctx.Err()).WithDocument(url)
			case <-time.After(wait):
			}
		}

		body, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	return nil, pdferrors.Wrap(pdferrors.KindDocumentFetch, "failed to fetch", lastErr).WithDocument(url)
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	reader := io.Reader(resp.Body)
	if f.opts.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, f.opts.MaxSize+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if f.opts.MaxSize > 0 && int64(len(body)) > f.opts.MaxSize {
		return nil, &statusError{code: http.StatusRequestEntityTooLarge}
	}
	return body, nil
}
