package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/ghost-job-detector/internal/db"
	"github.com/jonathan/ghost-job-detector/internal/fetch"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// AnalyzeRequest is the request body for POST /analyze. Either a URL to
// ingest or an inline job record must be provided.
type AnalyzeRequest struct {
	URL string      `json:"url,omitempty" validate:"omitempty,url"`
	Job *JobPayload `json:"job,omitempty"`
}

// JobPayload is an inline job record supplied by the caller.
type JobPayload struct {
	Title       string `json:"title" validate:"required"`
	Company     string `json:"company" validate:"required"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Remote      bool   `json:"remote"`
	PostedAt    string `json:"posted_at,omitempty" validate:"omitempty,datetime=2006-01-02"`
	SourceURL   string `json:"source_url,omitempty" validate:"omitempty,url"`
}

// OutcomeRequest is the request body for POST /outcomes.
type OutcomeRequest struct {
	Company   string `json:"company" validate:"required"`
	Responded bool   `json:"responded"`
	Interview bool   `json:"interview"`
	Hired     bool   `json:"hired"`
}

// handleAnalyze ingests (if needed) and analyzes one posting.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.URL == "" && req.Job == nil {
		s.errorResponse(w, http.StatusBadRequest, "either url or job is required")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Job != nil {
		if err := s.validate.Struct(req.Job); err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	job, err := s.resolveJob(r, &req)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.analyzer.Analyze(r.Context(), job)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if s.store != nil {
		// Persistence failures degrade history, not the response.
		if err := s.store.SaveAnalysis(r.Context(), job, result); err != nil {
			s.log.Error("failed to persist analysis",
				zap.String("analysis_id", result.ID.String()),
				zap.Error(err))
		}
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// resolveJob turns the request into an analyzable job record.
func (s *Server) resolveJob(r *http.Request, req *AnalyzeRequest) (*types.JobRecord, error) {
	if req.Job == nil {
		if s.ingestor == nil {
			return nil, &ErrValidation{Field: "url", Message: "URL ingestion is not configured"}
		}
		return s.ingestor.FromURL(r.Context(), req.URL)
	}

	job := &types.JobRecord{
		Title:       req.Job.Title,
		Company:     req.Job.Company,
		Description: req.Job.Description,
		Location:    req.Job.Location,
		Remote:      req.Job.Remote,
		SourceURL:   req.Job.SourceURL,
		Platform:    types.PlatformOther,
	}
	if req.Job.SourceURL != "" {
		job.Platform = fetch.DetectPlatform(req.Job.SourceURL)
	}
	if req.Job.PostedAt != "" {
		posted, err := time.Parse("2006-01-02", req.Job.PostedAt)
		if err != nil {
			return nil, &ErrValidation{Field: "posted_at", Message: "must be YYYY-MM-DD"}
		}
		job.PostedAt = &posted
	}
	return job, nil
}

// handleHistory returns recent analyses, newest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "history is not configured")
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 500 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = parsed
	}

	entries, err := s.store.History(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []db.HistoryEntry{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"analyses": entries})
}

// handleStats returns aggregate statistics over all analyses.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "stats are not configured")
		return
	}

	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, stats)
}

// handleCompany returns the insight view for one company.
func (s *Server) handleCompany(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "company insights are not configured")
		return
	}

	name := r.PathValue("name")
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "company name is required")
		return
	}

	insight, err := s.store.GetCompanyInsight(r.Context(), name)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if insight == nil {
		err := &ErrNotFound{Resource: "company"}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, insight)
}

// handleOutcome records a reported application outcome.
func (s *Server) handleOutcome(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "outcome reporting is not configured")
		return
	}

	var req OutcomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.RecordOutcome(r.Context(), req.Company, req.Responded, req.Interview, req.Hired, time.Now()); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}
