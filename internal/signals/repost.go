package signals

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Months where hiring cycles legitimately restart, so a repost carries
// less signal.
var seasonalMonths = map[time.Month]bool{
	time.January:   true,
	time.June:      true,
	time.September: true,
}

const seasonalDampening = 0.75

// RepostDetector looks for the same posting appearing repeatedly over
// the lookback window. Heavy reposting without a hire is one of the
// strongest ghost indicators we have.
type RepostDetector struct {
	store         history.Store
	windowDays    int
	minConfidence float64
	now           func() time.Time
}

// NewRepostDetector builds the repost provider over a history store.
func NewRepostDetector(store history.Store, cfg *config.Config) *RepostDetector {
	return &RepostDetector{
		store:         store,
		windowDays:    cfg.RepostWindowDays,
		minConfidence: cfg.MinConfidence[config.ProviderRepost],
		now:           time.Now,
	}
}

func (d *RepostDetector) Name() string { return config.ProviderRepost }

func (d *RepostDetector) MinConfidence() float64 { return d.minConfidence }

// Evaluate counts near-duplicate prior postings inside the window and
// maps the count onto a repost tier.
func (d *RepostDetector) Evaluate(ctx context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()
	if d.store == nil {
		return unavailable(d.Name(), "no history store configured"), nil
	}

	now := d.now()
	since := now.AddDate(0, 0, -d.windowDays)
	fp := fingerprint.New(job)

	matches, err := d.store.NearDuplicates(ctx, fp.Hash, job.Company, job.Title, since)
	if err != nil {
		return unavailable(d.Name(), fmt.Sprintf("history lookup failed: %v", err)), nil
	}

	delta, risks, positives := d.classify(len(matches))

	// Season-opening reposts are dampened, not excused.
	if delta > 0 && seasonalMonths[now.Month()] {
		delta *= seasonalDampening
	}

	confidence := 0.45 + 0.10*float64(min(len(matches), 5))

	return &types.SignalResult{
		Provider:        d.Name(),
		GhostScore:      deltaScore(delta),
		Confidence:      clamp01(confidence),
		RiskFactors:     risks,
		PositiveFactors: positives,
		Status:          types.StatusOk,
		Latency:         time.Since(start),
	}, nil
}

func (d *RepostDetector) classify(matches int) (delta float64, risks, positives []string) {
	switch {
	case matches == 0:
		return -0.05, nil, []string{"First observed posting of this role"}
	case matches == 1:
		return 0, nil, nil
	case matches == 2:
		return 0.10, []string{fmt.Sprintf("Role reposted twice in the last %d days", d.windowDays)}, nil
	case matches <= 5:
		return 0.25, []string{fmt.Sprintf("Role reposted %d times in the last %d days", matches, d.windowDays)}, nil
	default:
		return 0.40, []string{fmt.Sprintf("Role reposted %d times in the last %d days without apparent hiring", matches, d.windowDays)}, nil
	}
}
