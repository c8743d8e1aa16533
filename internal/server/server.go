package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
)

// JobStore is the subset of the tracking store the API reads and writes.
type JobStore interface {
	GetJobByID(ctx context.Context, id uuid.UUID) (*db.Job, error)
	ListJobs(ctx context.Context, opts db.ListJobsOptions) ([]db.Job, int, error)
	UpdateJobFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	BulkUpdateJobs(ctx context.Context, items []db.BulkUpdateItem) (*db.BulkUpdateResult, error)

	ApplicationStages(ctx context.Context) (*db.StageCounts, error)
	GetResponseRates(ctx context.Context) (*db.ResponseRates, error)
	SourceEffectiveness(ctx context.Context) ([]db.SourceStats, error)
	GetTimeToRespond(ctx context.Context) (*db.TimeToRespond, error)
	GetJobStats(ctx context.Context) (*db.JobStats, error)
}

// Ingestor runs the ingestion pipeline and its enrichment operations.
type Ingestor interface {
	AddJob(ctx context.Context, postingText, rawURL string) (*db.Job, error)
	EnrichSearchResults(ctx context.Context, jobID uuid.UUID) error
	ResolveTitles(ctx context.Context, jobID uuid.UUID) ([]db.SearchTitle, error)
	WaitForEnrichment()
}

// CaptureFunc fetches a posting page and returns its cleaned text.
type CaptureFunc func(ctx context.Context, url string) (string, error)

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       JobStore
	pipeline    Ingestor
	capture     CaptureFunc
	rateLimiter *ratelimit.Limiter
	shutdown    func()
}

// Config holds server configuration
type Config struct {
	Port int

	// Capture serves POST /api/captureJob; nil disables the endpoint.
	Capture CaptureFunc

	// Shutdown runs after the HTTP listener stops, before enrichment
	// draining. Used to close the database pool.
	Shutdown func()
}

// New creates a new server instance
func New(cfg Config, store JobStore, pipeline Ingestor) *Server {
	s := &Server{
		store:       store,
		pipeline:    pipeline,
		capture:     cfg.Capture,
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		shutdown:    cfg.Shutdown,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // addJob waits on LLM calls
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler builds the full middleware-wrapped route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Ingestion
	mux.HandleFunc("POST /api/addJob", s.handleAddJob)
	mux.HandleFunc("POST /api/captureJob", s.handleCaptureJob)

	// Tracking
	mux.HandleFunc("GET /api/jobs", s.handleListJobs)
	mux.HandleFunc("GET /api/jobs/stats", s.handleJobStats)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("PATCH /api/jobs/{id}", s.handleUpdateJob)
	mux.HandleFunc("POST /api/bulkUpdate", s.handleBulkUpdate)

	// Search enrichment
	mux.HandleFunc("POST /api/processSearchQueries", s.handleProcessSearchQueries)
	mux.HandleFunc("POST /api/getSearchResults", s.handleGetSearchResults)
	mux.HandleFunc("POST /api/getUrlTitles", s.handleGetURLTitles)

	// Aggregates
	mux.HandleFunc("GET /api/applicationStages", s.handleApplicationStages)
	mux.HandleFunc("GET /api/responseRates", s.handleResponseRates)
	mux.HandleFunc("GET /api/jobSourceEffectiveness", s.handleSourceEffectiveness)
	mux.HandleFunc("GET /api/timeToRespond", s.handleTimeToRespond)

	mux.HandleFunc("GET /api/health", s.handleHealth)

	return s.withRateLimit(s.withLogging(s.withCORS(mux)))
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	// Let in-flight search enrichment finish before the pool closes
	log.Println("Draining search enrichment...")
	s.pipeline.WaitForEnrichment()

	if s.shutdown != nil {
		s.shutdown()
	}
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request. Uses the
// IP from RemoteAddr; X-Forwarded-For is intentionally not trusted here.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
