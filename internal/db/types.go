package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/ghost-job-detector/internal/types"
)

// HistoryEntry is one persisted analysis as returned by History.
type HistoryEntry struct {
	ID               uuid.UUID       `json:"id"`
	Title            string          `json:"title"`
	Company          string          `json:"company"`
	SourceURL        string          `json:"source_url,omitempty"`
	Platform         types.Platform  `json:"platform,omitempty"`
	GhostProbability float64         `json:"ghost_probability"`
	RiskLevel        types.RiskLevel `json:"risk_level"`
	Confidence       float64         `json:"confidence"`
	Degraded         bool            `json:"degraded"`
	AlgorithmVersion string          `json:"algorithm_version"`
	AnalyzedAt       time.Time       `json:"analyzed_at"`
	KeyFactors       []KeyFactor     `json:"key_factors,omitempty"`
}

// KeyFactor is one persisted contributing factor of an analysis.
type KeyFactor struct {
	FactorType  types.FactorType `json:"factor_type"`
	Description string           `json:"description"`
}

// Stats summarizes all persisted analyses.
type Stats struct {
	TotalAnalyses   int       `json:"total_analyses"`
	AvgProbability  float64   `json:"avg_ghost_probability"`
	HighRiskCount   int       `json:"high_risk_count"`
	MediumRiskCount int       `json:"medium_risk_count"`
	LowRiskCount    int       `json:"low_risk_count"`
	DegradedCount   int       `json:"degraded_count"`
	FirstAnalyzedAt time.Time `json:"first_analyzed_at"`
	LastAnalyzedAt  time.Time `json:"last_analyzed_at"`
}

// CompanyInsight is the per-company view served by the companies
// endpoint.
type CompanyInsight struct {
	Company        string     `json:"company"`
	Analyses       int        `json:"analyses"`
	AvgProbability float64    `json:"avg_ghost_probability"`
	HighRiskShare  float64    `json:"high_risk_share"`
	Postings       int        `json:"postings_seen"`
	Applications   int        `json:"reported_applications"`
	ResponseRate   float64    `json:"response_rate"`
	FirstSeen      *time.Time `json:"first_seen,omitempty"`
	LastSeen       *time.Time `json:"last_seen,omitempty"`
}
