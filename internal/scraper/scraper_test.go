package scraper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/address"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/applications"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/gazetteer"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/content"
	pdferrors "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/pdf/errors"
	"github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/storage"
	pdftestutil "github.com/planningalerts-scrapers/district-council-of-grant-sa-development-applications/internal/testutil"
)

// registerPDF builds a one page ruled register listing the given
// application numbers, all at 123 SMITH ST
func registerPDF(numbers ...string) []byte {
	rows := []float64{100, 120}
	texts := []pdftestutil.PlacedText{
		{Text: "APPLICATION", X: 55, Y: 105, Size: 8},
		{Text: "PROPERTY ADDRESS", X: 155, Y: 105, Size: 8},
	}
	for i, n := range numbers {
		y := 120 + float64(i)*20
		rows = append(rows, y+20)
		texts = append(texts,
			pdftestutil.PlacedText{Text: n, X: 55, Y: y + 5, Size: 8},
			pdftestutil.PlacedText{Text: "123 SMITH ST, HD GRANT, GRANT", X: 155, Y: y + 5, Size: 8},
		)
	}
	return pdftestutil.BuildPDF(pdftestutil.RegisterPage(rows, []float64{50, 150, 350}, texts))
}

func testParser(t *testing.T, metrics *Metrics) *Parser {
	t.Helper()
	g := gazetteer.New(gazetteer.Data{
		Streets:  map[string][]string{"SMITH STREET": {"GRANT"}},
		Suffixes: map[string]string{"ST": "STREET"},
		Suburbs:  map[string]string{"GRANT": "GRANT SA 5XXX"},
		Hundreds: map[string][]string{"GRANT": {"GRANT"}},
	})
	mapper, err := applications.NewMapper(g, applications.Options{
		Layout:  applications.LayoutV1,
		Address: address.DefaultOptions(),
	}, nil)
	require.NoError(t, err)
	return NewParser(content.NewValidator(10*1024*1024), mapper, nil, metrics, nil)
}

func TestParser_ParseDocument(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	p := testParser(t, metrics)

	records, err := p.ParseDocument(context.Background(), registerPDF("1/20", "2/20"), "https://example.com/a.pdf")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "1/20", records[0].ApplicationNumber)
	assert.Equal(t, "2/20", records[1].ApplicationNumber)
	assert.Equal(t, "123 SMITH STREET, GRANT SA 5XXX", records[1].Address)
	assert.Equal(t, "https://example.com/a.pdf", records[0].InformationURL)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Pages.WithLabelValues(StatusParsed)))
	assert.Equal(t, 1, testutil.CollectAndCount(metrics.ParseDuration))
}

func TestParser_SkipsPagesWithoutHeaders(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	p := testParser(t, metrics)

	cover := "BT /F1 12 Tf 1 0 0 1 72 700 Tm (DEVELOPMENT REGISTER) Tj ET"
	data := pdftestutil.BuildPDF(cover)

	records, err := p.ParseDocument(context.Background(), data, "cover.pdf")
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Pages.WithLabelValues(StatusSkipped)))
}

func TestParser_RejectsInvalidDocument(t *testing.T) {
	p := testParser(t, nil)

	_, err := p.ParseDocument(context.Background(), []byte("<html>not a pdf</html>"), "bad.pdf")
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindDocumentOpen, pdferrors.KindOf(err))
}

func TestParseListing(t *testing.T) {
	html := `<html><body>
		<a href="/files/register-2020.pdf">2020</a>
		<a href="https://cdn.example.com/register-2019.pdf">2019</a>
		<a href="/files/register-2020.pdf">2020 again</a>
		<a href="/files/minutes.docx">minutes</a>
		<a href="">empty</a>
	</body></html>`

	urls, err := ParseListing([]byte(html), "https://www.example.com/council/register", "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://www.example.com/files/register-2020.pdf",
		"https://cdn.example.com/register-2019.pdf",
	}, urls)

	_, err = ParseListing([]byte(html), "://bad", "")
	assert.Error(t, err)
}

func TestSelectDocuments(t *testing.T) {
	urls := []string{"a", "b", "c", "d", "e"}
	rnd := rand.New(rand.NewPCG(1, 2))

	assert.Equal(t, urls, SelectDocuments(urls, 0, rnd))
	assert.Equal(t, urls, SelectDocuments(urls, 10, rnd))

	selected := SelectDocuments(urls, 3, rnd)
	require.Len(t, selected, 3)
	assert.Equal(t, "a", selected[0], "the most recent document is always kept")
	assert.NotContains(t, selected[1:], "a")
	assert.NotEqual(t, selected[1], selected[2])
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, urls, "input is not reordered")
}

func TestFetcher_Retries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "grant-test", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/flaky":
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			fmt.Fprint(w, "ok")
		case "/large":
			fmt.Fprint(w, "0123456789abcdef")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(FetchOptions{
		UserAgent:  "grant-test",
		Timeout:    5 * time.Second,
		MaxSize:    10,
		MaxRetries: 2,
		Backoff:    time.Millisecond,
	}, nil)
	ctx := context.Background()

	body, err := f.Fetch(ctx, srv.URL+"/flaky")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindDocumentFetch, pdferrors.KindOf(err))
	assert.Contains(t, err.Error(), "404")

	_, err = f.Fetch(ctx, srv.URL+"/large")
	assert.Error(t, err)
}

func TestScraper_Run(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/docs/2020.pdf">2020</a>
			<a href="/docs/missing.pdf">gone</a>
			<a href="/docs/2019.pdf">2019</a>
		</body></html>`)
	})
	mux.HandleFunc("/docs/2020.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(registerPDF("1/20", "2/20"))
	})
	mux.HandleFunc("/docs/2019.pdf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(registerPDF("2/20", "9/19"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	store, err := storage.Open(ctx, storage.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	metrics := NewMetrics(prometheus.NewRegistry())
	fetcher := NewFetcher(FetchOptions{Timeout: 5 * time.Second, Backoff: time.Millisecond}, nil)
	parser := testParser(t, metrics)
	s := New(fetcher, parser, store, metrics, Options{
		ListingURL:   srv.URL + "/register",
		RequestDelay: time.Hour,
	}, nil)

	// left over from an earlier run
	_ = parser.Stability().Guard("earlier", func() error { panic("boom") })
	require.Equal(t, 1, parser.Stability().Panics().Count())

	var delays []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	summary, err := s.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Documents)
	assert.Equal(t, 1, summary.FailedDocuments)
	assert.Equal(t, 4, summary.Records)
	assert.Equal(t, 3, summary.Inserted)
	assert.Equal(t, 0, summary.Panics, "each run starts with a clean stability record")
	assert.True(t, summary.Healthy)
	assert.Equal(t, 1, summary.Errors.CountByKind()[pdferrors.KindDocumentFetch])
	assert.Equal(t, []time.Duration{time.Hour, time.Hour}, delays)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Documents.WithLabelValues(StatusParsed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Documents.WithLabelValues(StatusFailed)))
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Records.WithLabelValues(StatusInserted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Records.WithLabelValues(StatusExisting)))
}

func TestScraper_ListingFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	store, err := storage.Open(context.Background(), storage.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	fetcher := NewFetcher(FetchOptions{Timeout: 5 * time.Second}, nil)
	s := New(fetcher, testParser(t, nil), store, nil, Options{ListingURL: srv.URL}, nil)

	_, err = s.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, pdferrors.KindDocumentFetch, pdferrors.KindOf(err))
}
