package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job tracking dashboard API.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	if servePort != 0 {
		cfg.Port = servePort
	}

	d, err := buildDeps(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to build server: %w", err)
	}

	srv := server.New(server.Config{
		Port: cfg.Port,
		Capture: func(ctx context.Context, url string) (string, error) {
			return fetch.CapturePosting(ctx, url, nil)
		},
		Shutdown: d.close,
	}, d.db, d.pipeline)

	return srv.Start()
}
