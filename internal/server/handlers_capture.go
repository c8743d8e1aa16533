package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// CaptureJobRequest asks the server to fetch and clean a posting page.
type CaptureJobRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// handleCaptureJob fetches a posting page server-side and returns its
// cleaned text, ready to feed into addJob.
func (s *Server) handleCaptureJob(w http.ResponseWriter, r *http.Request) {
	if s.capture == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "posting capture is not configured")
		return
	}

	var req CaptureJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}

	text, err := s.capture(r.Context(), req.URL)
	if err != nil {
		log.Printf("[server] captureJob failed for %s: %v", req.URL, err)
		s.errorResponse(w, http.StatusBadGateway, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"url":  req.URL,
		"text": text,
	})
}
