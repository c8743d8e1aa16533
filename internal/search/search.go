// Package search runs up-skilling queries against the Google Custom Search
// JSON API and returns result URL lists.
package search

import (
	"context"
	"fmt"
	"log"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// DefaultPerQuery is how many results each query requests. The API caps a
// single page at 10.
const DefaultPerQuery = 10

// Searcher issues web searches and collects result URLs.
type Searcher struct {
	svc      *customsearch.Service
	engineID string
	perQuery int
}

// New builds a Searcher against the Custom Search API. engineID is the
// programmable search engine to query.
func New(ctx context.Context, apiKey, engineID string) (*Searcher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("search API key is required")
	}
	if engineID == "" {
		return nil, fmt.Errorf("search engine ID is required")
	}

	svc, err := customsearch.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %w", err)
	}
	return &Searcher{svc: svc, engineID: engineID, perQuery: DefaultPerQuery}, nil
}

// One runs a single query and returns result URLs in ranking order. lang is
// an ISO 639-1 code used to restrict results; empty means no restriction.
func (s *Searcher) One(ctx context.Context, query, lang string) ([]string, error) {
	call := s.svc.Cse.List().
		Q(query).
		Cx(s.engineID).
		Num(int64(s.perQuery)).
		Context(ctx)
	if lang != "" {
		call = call.Lr("lang_" + lang)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		urls = append(urls, item.Link)
	}
	return urls, nil
}

// All runs every query and returns one URL list per query, order-preserving
// and fully materialized. A failed query degrades to an empty list so one
// bad query never discards the others.
func (s *Searcher) All(ctx context.Context, queries []string, lang string) [][]string {
	results := make([][]string, len(queries))
	for i, query := range queries {
		urls, err := s.One(ctx, query, lang)
		if err != nil {
			log.Printf("[search] query %d/%d failed: %v", i+1, len(queries), err)
			results[i] = []string{}
			continue
		}
		results[i] = urls
	}
	return results
}
