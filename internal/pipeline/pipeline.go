// Package pipeline orchestrates job ingestion: annotation, extraction,
// tracking, and deferred search enrichment.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/identity"
)

// AnnotationStore persists raw posting text for audit.
type AnnotationStore interface {
	InsertAnnotation(ctx context.Context, content string) (uuid.UUID, error)
}

// TrackingStore persists job entities and their enrichment data.
type TrackingStore interface {
	InsertJob(ctx context.Context, job *db.Job) (uuid.UUID, error)
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	SetSearchResults(ctx context.Context, id uuid.UUID, results [][]string) error
	SetSearchTitles(ctx context.Context, id uuid.UUID, titles []db.SearchTitle) error
}

// JobExtractor turns posting text into a structured entity.
type JobExtractor interface {
	Job(ctx context.Context, text string, ident identity.Identity) (*db.Job, error)
}

// QuerySynthesizer proposes up-skilling search queries for a posting.
type QuerySynthesizer interface {
	SearchQueries(ctx context.Context, text string) (*extract.SearchPlan, error)
}

// Searcher runs queries and returns one URL list per query.
type Searcher interface {
	All(ctx context.Context, queries []string, lang string) [][]string
}

// TitleResolver fetches page titles for result URLs.
type TitleResolver interface {
	Resolve(ctx context.Context, urls []string) []db.SearchTitle
}

// Pipeline wires the ingestion stages together. Searcher may be nil, in
// which case enrichment stops after query synthesis.
type Pipeline struct {
	annotations AnnotationStore
	store       TrackingStore
	extractor   JobExtractor
	synthesizer QuerySynthesizer
	searcher    Searcher
	titles      TitleResolver

	enrichment sync.WaitGroup
}

// New builds a Pipeline from its collaborators.
func New(annotations AnnotationStore, store TrackingStore, extractor JobExtractor,
	synthesizer QuerySynthesizer, searcher Searcher, titles TitleResolver) *Pipeline {
	return &Pipeline{
		annotations: annotations,
		store:       store,
		extractor:   extractor,
		synthesizer: synthesizer,
		searcher:    searcher,
		titles:      titles,
	}
}

// AddJob ingests one posting. The critical path is annotation insert,
// extraction, and tracking insert; a failure at any of those aborts the
// ingestion (an already-written annotation stays as audit trail). Query
// synthesis runs concurrently with extraction but is best-effort: its
// failure never blocks tracking. Search execution is deferred to a
// background goroutine after the job row exists.
func (p *Pipeline) AddJob(ctx context.Context, postingText, rawURL string) (*db.Job, error) {
	ident := identity.Resolve(rawURL)

	annotationID, err := p.annotations.InsertAnnotation(ctx, postingText)
	if err != nil {
		return nil, fmt.Errorf("failed to record annotation: %w", err)
	}

	var job *db.Job
	var plan *extract.SearchPlan

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		job, err = p.extractor.Job(gctx, postingText, ident)
		return err
	})
	g.Go(func() error {
		var err error
		plan, err = p.synthesizer.SearchQueries(gctx, postingText)
		if err != nil {
			log.Printf("[pipeline] query synthesis failed for annotation %s: %v", annotationID, err)
			plan = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction failed for annotation %s: %w", annotationID, err)
	}

	job.TrackingID = annotationID
	if plan != nil {
		job.SearchQueries = plan.Queries
		lang := plan.Lang
		job.SearchLang = &lang
	}

	id, err := p.store.InsertJob(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to track job: %w", err)
	}
	job.ID = id

	if p.searcher != nil && plan != nil {
		p.enrichment.Add(1)
		go func() {
			defer p.enrichment.Done()
			// Detached from the request lifecycle on purpose
			if err := p.EnrichSearchResults(context.Background(), id); err != nil {
				log.Printf("[pipeline] search enrichment failed for job %s: %v", id, err)
			}
		}()
	}

	return job, nil
}

// EnrichSearchResults runs the job's stored queries and persists the result
// URL lists. Callable directly for synchronous re-runs.
func (p *Pipeline) EnrichSearchResults(ctx context.Context, jobID uuid.UUID) error {
	if p.searcher == nil {
		return fmt.Errorf("search is not configured")
	}

	job, err := p.store.GetJobByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("%w: %s", db.ErrNotFound, jobID)
	}
	if len(job.SearchQueries) == 0 {
		return fmt.Errorf("job %s has no search queries", jobID)
	}

	lang := ""
	if job.SearchLang != nil {
		lang = *job.SearchLang
	}

	results := p.searcher.All(ctx, job.SearchQueries, lang)
	if err := p.store.SetSearchResults(ctx, jobID, results); err != nil {
		return err
	}

	log.Printf("[pipeline] stored search results for job %s (%d queries)", jobID, len(results))
	return nil
}

// ResolveTitles fetches titles for every stored search result URL of a job,
// persists them, and returns them.
func (p *Pipeline) ResolveTitles(ctx context.Context, jobID uuid.UUID) ([]db.SearchTitle, error) {
	job, err := p.store.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, fmt.Errorf("%w: %s", db.ErrNotFound, jobID)
	}

	var urls []string
	for _, list := range job.SearchResults {
		urls = append(urls, list...)
	}
	if len(urls) == 0 {
		return []db.SearchTitle{}, nil
	}

	titles := p.titles.Resolve(ctx, urls)
	if err := p.store.SetSearchTitles(ctx, jobID, titles); err != nil {
		return nil, err
	}
	return titles, nil
}

// WaitForEnrichment blocks until all deferred enrichment goroutines finish.
// The server calls this during graceful shutdown.
func (p *Pipeline) WaitForEnrichment() {
	p.enrichment.Wait()
}
