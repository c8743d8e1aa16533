// Package titles resolves page titles for search result URLs with a bounded
// worker pool.
package titles

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-tracker/internal/db"
)

const (
	// FallbackTitle is recorded for any URL whose title cannot be fetched.
	FallbackTitle = "Error fetching title"

	defaultConcurrency = 10
	defaultTimeout     = 5 * time.Second
)

// Resolver fetches page titles concurrently. The zero value is not usable;
// use NewResolver.
type Resolver struct {
	client      *http.Client
	concurrency int
	timeout     time.Duration
}

// NewResolver returns a Resolver with the default limits: at most 10
// in-flight fetches, 5 seconds each.
func NewResolver() *Resolver {
	return &Resolver{
		client:      &http.Client{},
		concurrency: defaultConcurrency,
		timeout:     defaultTimeout,
	}
}

// Resolve fetches the <title> of every URL. Each input URL appears exactly
// once in the output, in input order; failures carry FallbackTitle instead
// of an error. Duplicated input URLs are fetched once per occurrence.
func (r *Resolver) Resolve(ctx context.Context, urls []string) []db.SearchTitle {
	results := make([]db.SearchTitle, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, url := range urls {
		g.Go(func() error {
			title, err := r.fetchTitle(ctx, url)
			if err != nil {
				title = FallbackTitle
			}
			results[i] = db.SearchTitle{URL: url, Title: title}
			return nil
		})
	}
	// Workers never return an error; they record the fallback instead.
	_ = g.Wait()

	return results
}

func (r *Resolver) fetchTitle(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; job-tracker/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return "", fmt.Errorf("page has no title")
	}
	return title, nil
}
