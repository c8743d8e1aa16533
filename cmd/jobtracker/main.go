// Package main provides the entry point for the job tracker server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobtracker",
	Short: "Job application tracker",
	Long:  "Job tracker ingests job postings through LLM extraction, tracks application lifecycles in PostgreSQL, and serves a dashboard REST API with search-based up-skilling suggestions.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
