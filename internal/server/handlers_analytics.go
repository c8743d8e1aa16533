package server

import (
	"log"
	"net/http"

	"github.com/jonathan/job-tracker/internal/db"
)

// handleApplicationStages returns the lifecycle funnel counts.
func (s *Server) handleApplicationStages(w http.ResponseWriter, r *http.Request) {
	stages, err := s.store.ApplicationStages(r.Context())
	if err != nil {
		log.Printf("[server] applicationStages failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to aggregate stages")
		return
	}
	s.jsonResponse(w, http.StatusOK, stages)
}

// handleResponseRates returns the employer response breakdown.
func (s *Server) handleResponseRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.store.GetResponseRates(r.Context())
	if err != nil {
		log.Printf("[server] responseRates failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to aggregate response rates")
		return
	}
	s.jsonResponse(w, http.StatusOK, rates)
}

// handleSourceEffectiveness returns per-source outcome counts.
func (s *Server) handleSourceEffectiveness(w http.ResponseWriter, r *http.Request) {
	sources, err := s.store.SourceEffectiveness(r.Context())
	if err != nil {
		log.Printf("[server] jobSourceEffectiveness failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to aggregate sources")
		return
	}
	if sources == nil {
		sources = []db.SourceStats{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"sources": sources})
}

// handleTimeToRespond returns the average applied-to-shortlisted delay.
func (s *Server) handleTimeToRespond(w http.ResponseWriter, r *http.Request) {
	t, err := s.store.GetTimeToRespond(r.Context())
	if err != nil {
		log.Printf("[server] timeToRespond failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to aggregate response time")
		return
	}
	s.jsonResponse(w, http.StatusOK, t)
}

// handleJobStats returns the composite dashboard rollup.
func (s *Server) handleJobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetJobStats(r.Context())
	if err != nil {
		log.Printf("[server] jobs/stats failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}
