package types

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel is the coarse classification of a final ghost probability.
type RiskLevel string

const (
	// RiskLow means the posting is likely a genuine vacancy
	RiskLow RiskLevel = "low"
	// RiskMedium means the posting shows some ghost indicators
	RiskMedium RiskLevel = "medium"
	// RiskHigh means the posting is unlikely to result in a hire
	RiskHigh RiskLevel = "high"
)

// FactorType categorizes a persisted key factor.
type FactorType string

const (
	// FactorRedFlag is a strong ghost indicator
	FactorRedFlag FactorType = "red_flag"
	// FactorWarning is a moderate ghost indicator
	FactorWarning FactorType = "warning"
	// FactorPositive is a legitimacy indicator
	FactorPositive FactorType = "positive"
)

// AnalysisResult is the final output of one analysis call. It is
// immutable after construction; the caller decides whether to persist it.
type AnalysisResult struct {
	ID               uuid.UUID      `json:"id"`
	GhostProbability float64        `json:"ghost_probability"`
	RiskLevel        RiskLevel      `json:"risk_level"`
	Confidence       float64        `json:"confidence"`
	RiskFactors      []string       `json:"risk_factors"`
	PositiveFactors  []string       `json:"positive_factors"`
	Breakdown        []SignalResult `json:"breakdown"`
	Degraded         bool           `json:"degraded"`
	AlgorithmVersion string         `json:"algorithm_version"`
	AnalyzedAt       time.Time      `json:"analyzed_at"`
	ProcessingTime   time.Duration  `json:"processing_time_ns"`
}

// ContributingProviders returns the identifiers of providers whose
// results were blended into the final probability.
func (a *AnalysisResult) ContributingProviders() []string {
	var names []string
	for _, r := range a.Breakdown {
		if r.Status == StatusOk {
			names = append(names, r.Provider)
		}
	}
	return names
}

// ExcludedProviders returns provider identifier -> reason for every
// provider that did not contribute, so degraded analyses stay transparent.
func (a *AnalysisResult) ExcludedProviders() map[string]string {
	excluded := make(map[string]string)
	for _, r := range a.Breakdown {
		if r.Status != StatusOk {
			reason := r.StatusReason
			if reason == "" {
				reason = string(r.Status)
			}
			excluded[r.Provider] = reason
		}
	}
	return excluded
}
