package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// EngagementScorer uses application outcomes reported for the company.
// A company that never responds to applicants is behaving like a ghost
// employer regardless of how its postings read.
type EngagementScorer struct {
	store         history.Store
	minSamples    int
	windowMonths  int
	minConfidence float64
	now           func() time.Time
}

// NewEngagementScorer builds the engagement-outcome provider.
func NewEngagementScorer(store history.Store, cfg *config.Config) *EngagementScorer {
	return &EngagementScorer{
		store:         store,
		minSamples:    cfg.EngagementMinSamples,
		windowMonths:  cfg.ReputationWindowMonths,
		minConfidence: cfg.MinConfidence[config.ProviderEngagement],
		now:           time.Now,
	}
}

func (s *EngagementScorer) Name() string { return config.ProviderEngagement }

func (s *EngagementScorer) MinConfidence() float64 { return s.minConfidence }

// Evaluate converts the company's response rate into an adjustment.
// Below the minimum sample count the provider reports unavailable
// instead of guessing.
func (s *EngagementScorer) Evaluate(ctx context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()
	if s.store == nil {
		return unavailable(s.Name(), "no history store configured"), nil
	}

	since := s.now().AddDate(0, -s.windowMonths, 0)
	eng, err := s.store.EngagementOutcomes(ctx, job.Company, since)
	if err != nil {
		return unavailable(s.Name(), fmt.Sprintf("history lookup failed: %v", err)), nil
	}
	if eng == nil || eng.Applications < s.minSamples {
		return unavailable(s.Name(), fmt.Sprintf("fewer than %d reported applications for this company", s.minSamples)), nil
	}

	rate := eng.ResponseRate()

	var (
		delta     float64
		risks     []string
		positives []string
	)
	switch {
	case rate >= 0.50:
		delta = -0.15
		positives = append(positives, "Company responds to most applicants")
	case rate >= 0.20:
		delta = -0.05
		positives = append(positives, "Company responds to a fair share of applicants")
	case rate < 0.05:
		delta = 0.20
		risks = append(risks, fmt.Sprintf("Only %.0f%% of %d reported applications got any response", rate*100, eng.Applications))
	default:
		delta = 0.05
		risks = append(risks, "Low response rate to reported applications")
	}

	if eng.Hires > 0 {
		delta -= 0.05
		positives = append(positives, "Company has confirmed hires from this pipeline")
	}

	confidence := 0.30 + 0.10*float64(eng.Applications)
	if confidence > 0.90 {
		confidence = 0.90
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
