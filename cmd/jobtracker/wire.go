package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
	"github.com/jonathan/job-tracker/internal/llm"
	"github.com/jonathan/job-tracker/internal/pipeline"
	"github.com/jonathan/job-tracker/internal/search"
	"github.com/jonathan/job-tracker/internal/titles"
)

// deps bundles the wired application dependencies.
type deps struct {
	db       *db.DB
	pipeline *pipeline.Pipeline
	close    func()
}

// buildDeps connects the database and LLM client and assembles the ingestion
// pipeline. Search is wired only when credentials are configured.
func buildDeps(ctx context.Context, cfg *config.Config) (*deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	extractor := extract.New(llmClient)

	var searcher pipeline.Searcher
	if cfg.SearchEnabled() {
		s, err := search.New(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			llmClient.Close()
			database.Close()
			return nil, fmt.Errorf("failed to create searcher: %w", err)
		}
		searcher = s
	} else {
		log.Println("[jobtracker] search credentials not set, enrichment disabled")
	}

	p := pipeline.New(database, database, extractor, extractor, searcher, titles.NewResolver())

	return &deps{
		db:       database,
		pipeline: p,
		close: func() {
			_ = llmClient.Close()
			database.Close()
		},
	}, nil
}
