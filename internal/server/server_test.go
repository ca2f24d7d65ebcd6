package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ghost-job-detector/internal/analysis"
	"github.com/jonathan/ghost-job-detector/internal/db"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

type stubAnalyzer struct {
	result *types.AnalysisResult
	err    error
	gotJob *types.JobRecord
}

func (s *stubAnalyzer) Analyze(_ context.Context, job *types.JobRecord) (*types.AnalysisResult, error) {
	s.gotJob = job
	return s.result, s.err
}

type stubIngestor struct {
	job *types.JobRecord
	err error
}

func (s *stubIngestor) FromURL(context.Context, string) (*types.JobRecord, error) {
	return s.job, s.err
}

func (s *stubIngestor) FromText(context.Context, string, string) (*types.JobRecord, error) {
	return s.job, s.err
}

type stubStore struct {
	saved    int
	saveErr  error
	entries  []db.HistoryEntry
	stats    *db.Stats
	insight  *db.CompanyInsight
	outcomes int
}

func (s *stubStore) SaveAnalysis(context.Context, *types.JobRecord, *types.AnalysisResult) error {
	s.saved++
	return s.saveErr
}

func (s *stubStore) History(context.Context, int) ([]db.HistoryEntry, error) {
	return s.entries, nil
}

func (s *stubStore) GetStats(context.Context) (*db.Stats, error) {
	return s.stats, nil
}

func (s *stubStore) GetCompanyInsight(context.Context, string) (*db.CompanyInsight, error) {
	return s.insight, nil
}

func (s *stubStore) RecordOutcome(context.Context, string, bool, bool, bool, time.Time) error {
	s.outcomes++
	return nil
}

func sampleResult() *types.AnalysisResult {
	return &types.AnalysisResult{
		ID:               uuid.New(),
		GhostProbability: 0.57,
		RiskLevel:        types.RiskMedium,
		Confidence:       0.74,
		RiskFactors:      []string{"No salary information"},
		AlgorithmVersion: analysis.AlgorithmVersion,
		AnalyzedAt:       time.Now().UTC(),
	}
}

func postJSON(t *testing.T, handler http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleAnalyze_InlineJob(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	store := &stubStore{}
	s := New(Config{Port: 0}, analyzer, nil, store, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{
		"job": map[string]any{
			"title":      "Backend Engineer",
			"company":    "Acme Corp",
			"source_url": "https://www.linkedin.com/jobs/view/42",
			"posted_at":  "2026-08-01",
		},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp types.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.InDelta(t, 0.57, resp.GhostProbability, 1e-9)
	assert.Equal(t, types.RiskMedium, resp.RiskLevel)

	require.NotNil(t, analyzer.gotJob)
	assert.Equal(t, types.PlatformLinkedIn, analyzer.gotJob.Platform)
	require.NotNil(t, analyzer.gotJob.PostedAt)
	assert.Equal(t, 1, store.saved)
}

func TestHandleAnalyze_FromURL(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	ingestor := &stubIngestor{job: &types.JobRecord{Title: "QA", Company: "Globex"}}
	s := New(Config{Port: 0}, analyzer, ingestor, nil, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{
		"url": "https://www.indeed.com/viewjob?jk=abc",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Globex", analyzer.gotJob.Company)
}

func TestHandleAnalyze_MissingBothInputs(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, nil, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_MissingCompanyRejected(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, nil, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{
		"job": map[string]any{"title": "Engineer"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_InputErrorIsBadRequest(t *testing.T) {
	analyzer := &stubAnalyzer{err: &analysis.InputError{Field: "title", Message: "must not be empty"}}
	s := New(Config{Port: 0}, analyzer, nil, nil, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{
		"job": map[string]any{"title": "x", "company": "y"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleAnalyze_PersistenceFailureStillResponds(t *testing.T) {
	analyzer := &stubAnalyzer{result: sampleResult()}
	store := &stubStore{saveErr: errors.New("disk full")}
	s := New(Config{Port: 0}, analyzer, nil, store, nil)

	rec := postJSON(t, s.Handler(), "/analyze", map[string]any{
		"job": map[string]any{"title": "Backend Engineer", "company": "Acme Corp"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	store := &stubStore{entries: []db.HistoryEntry{{
		Title:   "Backend Engineer",
		Company: "Acme Corp",
		KeyFactors: []db.KeyFactor{
			{FactorType: types.FactorWarning, Description: "No salary information"},
		},
	}}}
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=10", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Analyses []db.HistoryEntry `json:"analyses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Analyses, 1)
	assert.Equal(t, "Acme Corp", resp.Analyses[0].Company)
	require.Len(t, resp.Analyses[0].KeyFactors, 1)
	assert.Equal(t, types.FactorWarning, resp.Analyses[0].KeyFactors[0].FactorType)
	assert.Equal(t, "No salary information", resp.Analyses[0].KeyFactors[0].Description)
}

func TestHandleHistory_BadLimit(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, &stubStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHistory_NoStore(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/history", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleStats(t *testing.T) {
	store := &stubStore{stats: &db.Stats{TotalAnalyses: 12, HighRiskCount: 3}}
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var stats db.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.TotalAnalyses)
}

func TestHandleCompany_NotFound(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, &stubStore{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/companies/Unknown", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleCompany_Found(t *testing.T) {
	store := &stubStore{insight: &db.CompanyInsight{Company: "Acme Corp", Analyses: 4}}
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, store, nil)

	req := httptest.NewRequest(http.MethodGet, "/companies/Acme%20Corp", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var insight db.CompanyInsight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &insight))
	assert.Equal(t, 4, insight.Analyses)
}

func TestHandleOutcome(t *testing.T) {
	store := &stubStore{}
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, store, nil)

	rec := postJSON(t, s.Handler(), "/outcomes", map[string]any{
		"company":   "Acme Corp",
		"responded": true,
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, store.outcomes)
}

func TestHandleOutcome_MissingCompany(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, &stubStore{}, nil)

	rec := postJSON(t, s.Handler(), "/outcomes", map[string]any{"responded": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleHealth(t *testing.T) {
	s := New(Config{Port: 0}, &stubAnalyzer{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
