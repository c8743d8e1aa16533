package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/identity"
)

type fakeAnnotations struct {
	mu       sync.Mutex
	inserted []string
	err      error
}

func (f *fakeAnnotations) InsertAnnotation(ctx context.Context, content string) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.inserted = append(f.inserted, content)
	return uuid.New(), nil
}

type fakeStore struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*db.Job
	insertErr error
	results   map[uuid.UUID][][]string
	titles    map[uuid.UUID][]db.SearchTitle
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:    make(map[uuid.UUID]*db.Job),
		results: make(map[uuid.UUID][][]string),
		titles:  make(map[uuid.UUID][]db.SearchTitle),
	}
}

func (f *fakeStore) InsertJob(ctx context.Context, job *db.Job) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return uuid.Nil, f.insertErr
	}
	id := uuid.New()
	stored := *job
	stored.ID = id
	f.jobs[id] = &stored
	return id, nil
}

func (f *fakeStore) GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	copied.SearchResults = f.results[id]
	return &copied, nil
}

func (f *fakeStore) SetSearchResults(ctx context.Context, id uuid.UUID, results [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[id] = results
	return nil
}

func (f *fakeStore) SetSearchTitles(ctx context.Context, id uuid.UUID, titles []db.SearchTitle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles[id] = titles
	return nil
}

type fakeExtractor struct {
	err error
}

func (f *fakeExtractor) Job(ctx context.Context, text string, ident identity.Identity) (*db.Job, error) {
	if f.err != nil {
		return nil, f.err
	}
	summary := "A role."
	return &db.Job{
		JobURL:          ident.CanonicalURL,
		SourceSite:      ident.SourceSite,
		Company:         "Initech",
		Title:           "Backend Engineer",
		Summary:         &summary,
		WorkArrangement: db.ArrangementFullTime,
		WorkLocation:    db.LocationRemote,
	}, nil
}

type fakeSynthesizer struct {
	err error
}

func (f *fakeSynthesizer) SearchQueries(ctx context.Context, text string) (*extract.SearchPlan, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &extract.SearchPlan{
		Queries: []string{"q1", "q2", "q3"},
		Lang:    "en",
	}, nil
}

type fakeSearcher struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeSearcher) All(ctx context.Context, queries []string, lang string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	results := make([][]string, len(queries))
	for i := range queries {
		results[i] = []string{"https://results.example.com/" + queries[i]}
	}
	return results
}

type fakeTitles struct{}

func (f *fakeTitles) Resolve(ctx context.Context, urls []string) []db.SearchTitle {
	titles := make([]db.SearchTitle, len(urls))
	for i, url := range urls {
		titles[i] = db.SearchTitle{URL: url, Title: "Title of " + url}
	}
	return titles
}

func newTestPipeline() (*Pipeline, *fakeAnnotations, *fakeStore, *fakeSearcher) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	searcher := &fakeSearcher{}
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{}, searcher, &fakeTitles{})
	return p, annotations, store, searcher
}

func TestAddJob(t *testing.T) {
	p, annotations, store, searcher := newTestPipeline()

	job, err := p.AddJob(context.Background(),
		"posting text", "https://jobs.example.com/view?currentJobId=42&utm=x")
	require.NoError(t, err)
	p.WaitForEnrichment()

	// Annotation recorded with the raw text
	require.Len(t, annotations.inserted, 1)
	assert.Equal(t, "posting text", annotations.inserted[0])

	// Entity tracked with identity from the URL and the synthesized plan
	assert.NotEqual(t, uuid.Nil, job.ID)
	assert.NotEqual(t, uuid.Nil, job.TrackingID)
	assert.Equal(t, "https://jobs.example.com/view?currentJobId=42", job.JobURL)
	assert.Equal(t, []string{"q1", "q2", "q3"}, job.SearchQueries)
	require.NotNil(t, job.SearchLang)
	assert.Equal(t, "en", *job.SearchLang)

	// Deferred tail ran the search and stored results per query
	assert.Equal(t, 1, searcher.calls)
	stored, err := store.GetJobByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, stored.SearchResults, 3)
	assert.Equal(t, []string{"https://results.example.com/q1"}, stored.SearchResults[0])
}

func TestAddJobAnnotationFailureAborts(t *testing.T) {
	annotations := &fakeAnnotations{err: errors.New("insert failed")}
	store := newFakeStore()
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{}, &fakeSearcher{}, &fakeTitles{})

	_, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.Error(t, err)
	assert.Empty(t, store.jobs)
}

func TestAddJobExtractionFailureAborts(t *testing.T) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	searcher := &fakeSearcher{}
	extractor := &fakeExtractor{err: &extract.Error{Reason: extract.ReasonSchemaViolation}}
	p := New(annotations, store, extractor, &fakeSynthesizer{}, searcher, &fakeTitles{})

	_, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.Error(t, err)
	p.WaitForEnrichment()

	// Annotation survives as audit trail; nothing tracked, no search run.
	assert.Len(t, annotations.inserted, 1)
	assert.Empty(t, store.jobs)
	assert.Zero(t, searcher.calls)
}

func TestAddJobSynthesisFailureIsBestEffort(t *testing.T) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	searcher := &fakeSearcher{}
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{err: errors.New("model down")}, searcher, &fakeTitles{})

	job, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.NoError(t, err)
	p.WaitForEnrichment()

	// Job tracked without a plan, and no search scheduled
	assert.Empty(t, job.SearchQueries)
	assert.Nil(t, job.SearchLang)
	assert.Zero(t, searcher.calls)
}

func TestAddJobInsertFailureSchedulesNothing(t *testing.T) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	store.insertErr = errors.New("db down")
	searcher := &fakeSearcher{}
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{}, searcher, &fakeTitles{})

	_, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.Error(t, err)
	p.WaitForEnrichment()
	assert.Zero(t, searcher.calls)
}

func TestAddJobWithoutSearcher(t *testing.T) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{}, nil, &fakeTitles{})

	job, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.NoError(t, err)
	p.WaitForEnrichment()

	// Plan is still stored on the entity even though search never runs
	assert.Equal(t, []string{"q1", "q2", "q3"}, job.SearchQueries)

	err = p.EnrichSearchResults(context.Background(), job.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestEnrichSearchResultsUnknownJob(t *testing.T) {
	p, _, _, _ := newTestPipeline()
	err := p.EnrichSearchResults(context.Background(), uuid.New())
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestResolveTitles(t *testing.T) {
	p, _, store, _ := newTestPipeline()

	job, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.NoError(t, err)
	p.WaitForEnrichment()

	titles, err := p.ResolveTitles(context.Background(), job.ID)
	require.NoError(t, err)
	require.Len(t, titles, 3)
	assert.Equal(t, titles, store.titles[job.ID])
}

func TestResolveTitlesNoResults(t *testing.T) {
	annotations := &fakeAnnotations{}
	store := newFakeStore()
	p := New(annotations, store, &fakeExtractor{}, &fakeSynthesizer{}, nil, &fakeTitles{})

	job, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
	require.NoError(t, err)

	titles, err := p.ResolveTitles(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Empty(t, titles)
}

func TestWaitForEnrichmentDrains(t *testing.T) {
	p, _, store, searcher := newTestPipeline()

	for i := 0; i < 5; i++ {
		_, err := p.AddJob(context.Background(), "posting text", "https://example.com/j/1")
		require.NoError(t, err)
	}

	done := make(chan struct{})
	go func() {
		p.WaitForEnrichment()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("WaitForEnrichment did not drain")
	}

	assert.Equal(t, 5, searcher.calls)
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.results, 5)
}
