package scraper

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultLinkSelector matches the register documents on the listing page
const DefaultLinkSelector = `a[href$=".pdf"]`

// DiscoverDocuments returns the absolute URLs of the documents linked from
// the listing page, in page order and without duplicates
func (f *Fetcher) DiscoverDocuments(ctx context.Context, listingURL, selector string) ([]string, error) {
	body, err := f.Fetch(ctx, listingURL)
	if err != nil {
		return nil, err
	}
	return ParseListing(body, listingURL, selector)
}

// ParseListing extracts document links from listing page HTML
func ParseListing(html []byte, listingURL, selector string) ([]string, error) {
	if selector == "" {
		selector = DefaultLinkSelector
	}

	base, err := url.Parse(listingURL)
	if err != nil {
		return nil, fmt.Errorf("invalid listing URL: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	var urls []string
	seen := make(map[string]bool)
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			urls = append(urls, abs)
		}
	})

	return urls, nil
}

// SelectDocuments keeps the first (most recent) document and a random
// sample of the others, limit in total. A limit of zero or less keeps all.
func SelectDocuments(urls []string, limit int, rnd *rand.Rand) []string {
	if limit <= 0 || len(urls) <= limit {
		return urls
	}

	selected := []string{urls[0]}
	rest := append([]string{}, urls[1:]...)
	rnd.Shuffle(len(rest), func(i, j int) { rest[i], rest[j] = rest[j], rest[i] })
	return append(selected, rest[:limit-1]...)
}
