package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/db"
)

// JobIDRequest targets a search operation at one tracked job.
type JobIDRequest struct {
	JobID string `json:"job_id" validate:"required,uuid"`
}

func (s *Server) decodeJobID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	var req JobIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return uuid.Nil, false
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.JobID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job_id")
		return uuid.Nil, false
	}
	return id, true
}

// handleProcessSearchQueries re-runs a job's stored queries synchronously.
func (s *Server) handleProcessSearchQueries(w http.ResponseWriter, r *http.Request) {
	id, ok := s.decodeJobID(w, r)
	if !ok {
		return
	}

	if err := s.pipeline.EnrichSearchResults(r.Context(), id); err != nil {
		log.Printf("[server] processSearchQueries failed for %s: %v", id, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil || job == nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to reload job")
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":         id,
		"search_results": job.SearchResults,
	})
}

// handleGetSearchResults returns a job's stored search result URL lists.
func (s *Server) handleGetSearchResults(w http.ResponseWriter, r *http.Request) {
	id, ok := s.decodeJobID(w, r)
	if !ok {
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		log.Printf("[server] getSearchResults failed for %s: %v", id, err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, (&ErrJobNotFound{ID: id}).Error())
		return
	}

	results := job.SearchResults
	if results == nil {
		results = [][]string{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id":         id,
		"search_queries": job.SearchQueries,
		"search_results": results,
	})
}

// handleGetURLTitles resolves, stores, and returns page titles for a job's
// search result URLs.
func (s *Server) handleGetURLTitles(w http.ResponseWriter, r *http.Request) {
	id, ok := s.decodeJobID(w, r)
	if !ok {
		return
	}

	titles, err := s.pipeline.ResolveTitles(r.Context(), id)
	if err != nil {
		log.Printf("[server] getUrlTitles failed for %s: %v", id, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	if titles == nil {
		titles = []db.SearchTitle{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"job_id": id,
		"titles": titles,
	})
}
