package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// ReputationScorer adjusts the estimate based on the company's past
// ghost-probability record. New companies produce no signal rather than
// a neutral one, so the aggregation ignores them cleanly.
type ReputationScorer struct {
	store         history.Store
	windowMonths  int
	minConfidence float64
	now           func() time.Time
}

// NewReputationScorer builds the company-reputation provider.
func NewReputationScorer(store history.Store, cfg *config.Config) *ReputationScorer {
	return &ReputationScorer{
		store:         store,
		windowMonths:  cfg.ReputationWindowMonths,
		minConfidence: cfg.MinConfidence[config.ProviderReputation],
		now:           time.Now,
	}
}

func (s *ReputationScorer) Name() string { return config.ProviderReputation }

func (s *ReputationScorer) MinConfidence() float64 { return s.minConfidence }

// Evaluate maps the company's average historical score into a signed
// adjustment, with confidence scaled by sample count.
func (s *ReputationScorer) Evaluate(ctx context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()
	if s.store == nil {
		return unavailable(s.Name(), "no history store configured"), nil
	}

	since := s.now().AddDate(0, -s.windowMonths, 0)
	rep, err := s.store.CompanyReputation(ctx, job.Company, since)
	if err != nil {
		return unavailable(s.Name(), fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	if rep == nil || rep.Samples == 0 {
		return unavailable(s.Name(), "no prior analyses for this company"), nil
	}

	var (
		delta     float64
		risks     []string
		positives []string
	)
	switch {
	case rep.AvgGhostProbability >= 0.80:
		delta = 0.25
		risks = append(risks, fmt.Sprintf("Company's postings have averaged %.0f%% ghost probability", rep.AvgGhostProbability*100))
	case rep.AvgGhostProbability >= 0.65:
		delta = 0.15
		risks = append(risks, "Company has an elevated history of likely ghost postings")
	case rep.AvgGhostProbability >= 0.50:
		delta = 0.05
	case rep.AvgGhostProbability <= 0.20:
		delta = -0.20
		positives = append(positives, "Company has a consistently low ghost-probability record")
	case rep.AvgGhostProbability <= 0.35:
		delta = -0.10
		positives = append(positives, "Company's past postings mostly look legitimate")
	}

	confidence := float64(rep.Samples) / 10
	if confidence > 1 {
		confidence = 1
	}

	return &types.SignalResult{
		Provider:        s.Name(),
		GhostScore:      deltaScore(delta),
		Confidence:      confidence,
		RiskFactors:     risks,
		PositiveFactors: positives,
		Status:          types.StatusOk,
		Latency:         time.Since(start),
	}, nil
}
