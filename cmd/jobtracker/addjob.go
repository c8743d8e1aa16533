package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/fetch"
)

var (
	addJobURL  string
	addJobFile string
	addJobWait bool
)

var addJobCmd = &cobra.Command{
	Use:   "add-job",
	Short: "Ingest one job posting",
	Long: `Run a single posting through the full ingestion pipeline: annotation,
LLM extraction, tracking insert, and search enrichment. The posting text
comes from --file, or is captured from --url when no file is given.`,
	RunE: runAddJob,
}

func init() {
	addJobCmd.Flags().StringVar(&addJobURL, "url", "", "Posting page URL (required)")
	addJobCmd.Flags().StringVar(&addJobFile, "file", "", "Path to a file with the posting text")
	addJobCmd.Flags().BoolVar(&addJobWait, "wait", true, "Wait for search enrichment to finish")
	_ = addJobCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(addJobCmd)
}

func runAddJob(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	cfg := config.Load()

	d, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer d.close()

	var text string
	if addJobFile != "" {
		data, err := os.ReadFile(addJobFile)
		if err != nil {
			return fmt.Errorf("failed to read posting file: %w", err)
		}
		text = string(data)
	} else {
		text, err = fetch.CapturePosting(ctx, addJobURL, nil)
		if err != nil {
			return fmt.Errorf("failed to capture posting: %w", err)
		}
	}

	job, err := d.pipeline.AddJob(ctx, text, addJobURL)
	if err != nil {
		return err
	}
	if addJobWait {
		d.pipeline.WaitForEnrichment()
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(job)
}
