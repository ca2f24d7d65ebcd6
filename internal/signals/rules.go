package signals

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Phrases that correlate with evergreen or bait postings.
var urgencyPhrases = []string{
	"urgent",
	"immediate start",
	"hiring now",
	"apply today",
	"apply now",
	"always hiring",
	"multiple openings",
}

var buzzwordPhrases = []string{
	"rockstar",
	"ninja",
	"guru",
	"wear many hats",
	"work hard play hard",
	"fast-paced environment",
	"self-starter",
}

var salaryMarkers = []string{
	"$",
	"salary",
	"compensation",
	"per hour",
	"per year",
	"/hr",
	"/yr",
	"pay range",
}

// Absolute score adjustment per source platform. Company career sites
// carry real headcount far more often than open boards.
var platformAdjustments = map[types.Platform]float64{
	types.PlatformLinkedIn:  -0.05,
	types.PlatformIndeed:    0.10,
	types.PlatformGlassdoor: 0.05,
	types.PlatformCompany:   -0.15,
	types.PlatformOther:     0.15,
}

const (
	ruleBaseScore       = 0.40
	staleAfterDays      = 60
	freshWithinDays     = 14
	shortDescriptionLen = 300
	detailedDescription = 1500
	ruleBaseConfidence  = 0.70
)

// RuleBasedEvaluator scores a posting with deterministic content
// heuristics. It performs no I/O and is the always-available floor of
// the provider set: it only fails on malformed input.
type RuleBasedEvaluator struct {
	minConfidence float64
	now           func() time.Time
}

// NewRuleBasedEvaluator builds the rule provider from config.
func NewRuleBasedEvaluator(cfg *config.Config) *RuleBasedEvaluator {
	return &RuleBasedEvaluator{
		minConfidence: cfg.MinConfidence[config.ProviderRuleBased],
		now:           time.Now,
	}
}

func (e *RuleBasedEvaluator) Name() string { return config.ProviderRuleBased }

func (e *RuleBasedEvaluator) MinConfidence() float64 { return e.minConfidence }

// Evaluate applies the heuristic rules to the posting content.
func (e *RuleBasedEvaluator) Evaluate(_ context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()
	if job == nil || strings.TrimSpace(job.Title) == "" || strings.TrimSpace(job.Company) == "" {
		return failed(e.Name(), "job record is missing title or company"), nil
	}

	score := ruleBaseScore
	confidence := ruleBaseConfidence
	var risks, positives []string

	text := job.Title + " " + job.Description

	if matched := containsAny(text, urgencyPhrases); len(matched) > 0 {
		bump := 0.05 * float64(len(matched))
		if bump > 0.15 {
			bump = 0.15
		}
		score += bump
		risks = append(risks, fmt.Sprintf("Urgency language in posting (%s)", strings.Join(matched, ", ")))
	}

	if matched := containsAny(text, buzzwordPhrases); len(matched) > 0 {
		score += 0.05
		risks = append(risks, "Vague buzzword-heavy language instead of concrete requirements")
	}

	switch {
	case len(job.Description) == 0:
		score += 0.12
		confidence -= 0.15
		risks = append(risks, "No job description provided")
	case len(job.Description) < shortDescriptionLen:
		score += 0.10
		risks = append(risks, "Generic description with minimal specific requirements")
	case len(job.Description) > detailedDescription:
		score -= 0.10
		positives = append(positives, "Detailed description with specific role requirements")
	}

	if len(job.Description) > 0 {
		if len(containsAny(job.Description, salaryMarkers)) == 0 {
			score += 0.08
			risks = append(risks, "No salary or compensation information")
		} else {
			positives = append(positives, "Salary or compensation information included")
		}
	}

	if job.PostedAt != nil {
		age := e.now().Sub(*job.PostedAt)
		switch {
		case age > staleAfterDays*24*time.Hour:
			score += 0.15
			risks = append(risks, fmt.Sprintf("Posting has been active for more than %d days", staleAfterDays))
		case age >= 0 && age < freshWithinDays*24*time.Hour:
			score -= 0.05
			positives = append(positives, "Recently posted")
		}
		confidence += 0.10
	}

	if adj, ok := platformAdjustments[job.Platform]; ok {
		score += adj
		if adj <= -0.10 {
			positives = append(positives, "Posted directly on a company career site")
		}
	}

	return &types.SignalResult{
		Provider:        e.Name(),
		GhostScore:      clamp01(score),
		Confidence:      clamp01(confidence),
		RiskFactors:     risks,
		PositiveFactors: positives,
		Status:          types.StatusOk,
		Latency:         time.Since(start),
	}, nil
}
