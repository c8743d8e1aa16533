package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/db"
)

var validate = validator.New()

const (
	defaultPageLimit = 12
	maxPageLimit     = 100
)

// AddJobRequest is the ingestion payload: raw posting text plus the page URL
// it was captured from.
type AddJobRequest struct {
	Content string `json:"content" validate:"required"`
	URL     string `json:"url" validate:"required,url"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// ListJobsResponse is the paginated jobs listing.
type ListJobsResponse struct {
	Jobs       []db.Job   `json:"jobs"`
	Pagination Pagination `json:"pagination"`
}

// BulkUpdateItemRequest is one entry of a bulk update payload.
type BulkUpdateItemRequest struct {
	ID      string         `json:"id" validate:"required,uuid"`
	Updates map[string]any `json:"updates" validate:"required,min=1"`
}

// handleAddJob ingests one posting through the full pipeline.
func (s *Server) handleAddJob(w http.ResponseWriter, r *http.Request) {
	var req AddJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	job, err := s.pipeline.AddJob(r.Context(), req.Content, req.URL)
	if err != nil {
		log.Printf("[server] addJob failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Job added successfully",
		"job_id":  job.ID.String(),
	})
}

// handleListJobs returns a paginated, optionally full-text filtered listing.
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	jobs, total, err := s.store.ListJobs(r.Context(), db.ListJobsOptions{
		Search: r.URL.Query().Get("search"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		log.Printf("[server] list jobs failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}

	s.jsonResponse(w, http.StatusOK, ListJobsResponse{
		Jobs: jobs,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: db.TotalPages(total, limit),
		},
	})
}

// handleGetJob returns one job by ID.
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil {
		log.Printf("[server] get job failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to get job")
		return
	}
	if job == nil {
		s.errorResponse(w, http.StatusNotFound, (&ErrJobNotFound{ID: id}).Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, job)
}

// handleUpdateJob applies a partial update to one job.
func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r)
	if !ok {
		return
	}

	var updates map[string]any
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.store.UpdateJobFields(r.Context(), id, updates); err != nil {
		log.Printf("[server] update job failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	job, err := s.store.GetJobByID(r.Context(), id)
	if err != nil || job == nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to reload job")
		return
	}
	s.jsonResponse(w, http.StatusOK, job)
}

// handleBulkUpdate applies a batch of partial updates with per-item results.
func (s *Server) handleBulkUpdate(w http.ResponseWriter, r *http.Request) {
	var reqs []BulkUpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(reqs) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "empty update list")
		return
	}

	items := make([]db.BulkUpdateItem, 0, len(reqs))
	for i, req := range reqs {
		if err := validate.Struct(req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid item %d: %v", i, err))
			return
		}
		id, err := uuid.Parse(req.ID)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid item %d id: %v", i, err))
			return
		}
		items = append(items, db.BulkUpdateItem{ID: id, Updates: req.Updates})
	}

	result, err := s.store.BulkUpdateJobs(r.Context(), items)
	if err != nil {
		log.Printf("[server] bulk update failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "bulk update failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// pathID parses the {id} path segment, writing a 400 on failure.
func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid job ID")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
