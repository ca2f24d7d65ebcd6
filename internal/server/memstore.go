package server

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/db"
	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// memEntry pairs a history entry with its normalized company key.
type memEntry struct {
	company string
	entry   db.HistoryEntry
}

// MemoryStore implements Store over the in-memory history store for
// database-less runs. Saving an analysis also records the posting and
// score into the underlying history store, so the repost, reputation,
// and engagement signals accumulate across analyses within one process.
type MemoryStore struct {
	mem *history.Memory

	mu      sync.RWMutex
	entries []memEntry // oldest first
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore wraps an in-memory history store.
func NewMemoryStore(mem *history.Memory) *MemoryStore {
	return &MemoryStore{mem: mem}
}

// SaveAnalysis implements Store.
func (m *MemoryStore) SaveAnalysis(_ context.Context, job *types.JobRecord, result *types.AnalysisResult) error {
	m.mem.RecordPosting(job, result.AnalyzedAt)
	m.mem.RecordScore(job.Company, result.GhostProbability, result.AnalyzedAt)

	entry := db.HistoryEntry{
		ID:               result.ID,
		Title:            job.Title,
		Company:          job.Company,
		SourceURL:        job.SourceURL,
		Platform:         job.Platform,
		GhostProbability: result.GhostProbability,
		RiskLevel:        result.RiskLevel,
		Confidence:       result.Confidence,
		Degraded:         result.Degraded,
		AlgorithmVersion: result.AlgorithmVersion,
		AnalyzedAt:       result.AnalyzedAt,
		KeyFactors:       keyFactors(result),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, memEntry{
		company: fingerprint.Normalize(job.Company),
		entry:   entry,
	})
	return nil
}

// keyFactors types the factor lists the same way the database layer
// persists them.
func keyFactors(result *types.AnalysisResult) []db.KeyFactor {
	factors := make([]db.KeyFactor, 0, len(result.RiskFactors)+len(result.PositiveFactors))
	for _, f := range result.RiskFactors {
		factorType := types.FactorWarning
		if result.RiskLevel == types.RiskHigh {
			factorType = types.FactorRedFlag
		}
		factors = append(factors, db.KeyFactor{FactorType: factorType, Description: f})
	}
	for _, f := range result.PositiveFactors {
		factors = append(factors, db.KeyFactor{FactorType: types.FactorPositive, Description: f})
	}
	return factors
}

// History implements Store, newest first.
func (m *MemoryStore) History(_ context.Context, limit int) ([]db.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var entries []db.HistoryEntry
	for i := len(m.entries) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, m.entries[i].entry)
	}
	return entries, nil
}

// GetStats implements Store.
func (m *MemoryStore) GetStats(_ context.Context) (*db.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := db.Stats{
		FirstAnalyzedAt: time.Now(),
		LastAnalyzedAt:  time.Now(),
	}

	sum := 0.0
	for _, me := range m.entries {
		e := me.entry
		s.TotalAnalyses++
		sum += e.GhostProbability
		switch e.RiskLevel {
		case types.RiskHigh:
			s.HighRiskCount++
		case types.RiskMedium:
			s.MediumRiskCount++
		default:
			s.LowRiskCount++
		}
		if e.Degraded {
			s.DegradedCount++
		}
		if s.TotalAnalyses == 1 || e.AnalyzedAt.Before(s.FirstAnalyzedAt) {
			s.FirstAnalyzedAt = e.AnalyzedAt
		}
		if s.TotalAnalyses == 1 || e.AnalyzedAt.After(s.LastAnalyzedAt) {
			s.LastAnalyzedAt = e.AnalyzedAt
		}
	}
	if s.TotalAnalyses > 0 {
		s.AvgProbability = sum / float64(s.TotalAnalyses)
	}
	return &s, nil
}

// GetCompanyInsight implements Store. Returns nil when the company has
// never been seen.
func (m *MemoryStore) GetCompanyInsight(ctx context.Context, company string) (*db.CompanyInsight, error) {
	normalized := fingerprint.Normalize(company)

	m.mu.RLock()
	insight := db.CompanyInsight{Company: company}
	var highRisk int
	var sum float64
	for _, me := range m.entries {
		if me.company != normalized {
			continue
		}
		e := me.entry
		insight.Analyses++
		insight.Postings++
		sum += e.GhostProbability
		if e.RiskLevel == types.RiskHigh {
			highRisk++
		}
		at := e.AnalyzedAt
		if insight.FirstSeen == nil || at.Before(*insight.FirstSeen) {
			insight.FirstSeen = &at
		}
		if insight.LastSeen == nil || at.After(*insight.LastSeen) {
			insight.LastSeen = &at
		}
	}
	m.mu.RUnlock()

	eng, err := m.mem.EngagementOutcomes(ctx, company, time.Time{})
	if err != nil {
		return nil, err
	}
	if eng != nil {
		insight.Applications = eng.Applications
		insight.ResponseRate = eng.ResponseRate()
	}

	if insight.Analyses == 0 && insight.Applications == 0 {
		return nil, nil
	}
	if insight.Analyses > 0 {
		insight.AvgProbability = sum / float64(insight.Analyses)
		insight.HighRiskShare = float64(highRisk) / float64(insight.Analyses)
	}
	return &insight, nil
}

// RecordOutcome implements Store.
func (m *MemoryStore) RecordOutcome(_ context.Context, company string, responded, interview, hired bool, recordedAt time.Time) error {
	m.mem.RecordOutcome(company, responded, interview, hired, recordedAt)
	return nil
}
