package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/usecase"
)

type findWikiRequest struct {
	EpicTitle string `json:"epic_title"`
}

type generateRequest struct {
	WikiPagePaths []string `json:"wiki_page_paths"`
	EpicID        int      `json:"epic_id"`
}

type epicRequest struct {
	EpicID int `json:"epic_id"`
}

type errorResponse struct {
	Error      string `json:"error"`
	StoryCount int    `json:"story_count"`
}

func (s *Server) handleFindWikiPages(w http.ResponseWriter, r *http.Request) {
	var req findWikiRequest
	if !s.decode(w, r, &req) {
		return
	}

	matches, err := s.pipeline.FindRelatedPages(r.Context(), req.EpicTitle)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string][]domain.PageMatch{"pages": matches})
}

func (s *Server) handleGenerateStories(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.pipeline.RunWithPages(r.Context(), req.WikiPagePaths, req.EpicID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGenerateFromEpic(w http.ResponseWriter, r *http.Request) {
	var req epicRequest
	if !s.decode(w, r, &req) {
		return
	}

	result, err := s.pipeline.RunFromEpic(r.Context(), req.EpicID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"service":       "story-generator",
		"azure_org":     s.azure.OrgURL,
		"azure_project": s.azure.Project,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":        "running",
		"service":       "story-generator",
		"azure_org":     s.azure.OrgURL,
		"azure_project": s.azure.Project,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// writeError maps pipeline aborts to HTTP statuses: empty-input sentinels are
// 404, everything else surfaces as 500 with the stage-tagged message.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, usecase.ErrNoPages) ||
		errors.Is(err, usecase.ErrNoRelatedPages) ||
		errors.Is(err, usecase.ErrPagesNotFound) {
		status = http.StatusNotFound
	}

	if s.logger != nil {
		s.logger.Error("pipeline request failed", "error", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && s.logger != nil {
		s.logger.Error("write response", "error", err)
	}
}
