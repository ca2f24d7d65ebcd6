package signals

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Industry keyword tables. Classification needs a clear winner; a
// posting that matches nothing or everything produces no signal.
var industryKeywords = map[string][]string{
	"technology": {
		"software", "engineer", "developer", "devops", "cloud",
		"backend", "frontend", "kubernetes", "api", "machine learning",
	},
	"healthcare": {
		"nurse", "clinical", "patient", "medical", "hospital",
		"physician", "pharmacy", "healthcare",
	},
	"finance": {
		"banking", "trading", "portfolio", "financial analyst",
		"underwriting", "accounting", "audit", "fintech",
	},
	"retail": {
		"retail", "store", "merchandising", "cashier", "inventory",
		"point of sale", "customer service",
	},
	"staffing": {
		"staffing", "recruiting agency", "our client", "on behalf of",
		"talent acquisition", "contract-to-hire", "w2 position",
	},
	"government": {
		"government", "clearance", "federal", "public sector",
		"civil service", "municipal",
	},
	"education": {
		"teacher", "professor", "curriculum", "tutor", "faculty",
		"school district",
	},
}

// Signed adjustment applied once an industry is identified. Staffing
// agencies repost aggressively and often collect resumes with no
// backing requisition; cleared government roles almost always exist.
var industryAdjustments = map[string]float64{
	"technology": 0.05,
	"healthcare": -0.05,
	"finance":    0,
	"retail":     0.05,
	"staffing":   0.15,
	"government": -0.10,
	"education":  -0.05,
}

var suspiciousPatterns = []string{
	"unlimited earning potential",
	"be your own boss",
	"no experience necessary",
	"earn up to",
	"commission only",
}

var legitimacyPatterns = []string{
	"background check required",
	"security clearance",
	"license required",
	"drug screening",
}

const industryMinMatches = 2

// IndustryClassifier identifies the posting's industry from keyword
// evidence and applies industry-specific adjustments. When no industry
// dominates, it reports unavailable per the general contract.
type IndustryClassifier struct {
	minConfidence float64
}

// NewIndustryClassifier builds the industry provider from config.
func NewIndustryClassifier(cfg *config.Config) *IndustryClassifier {
	return &IndustryClassifier{minConfidence: cfg.MinConfidence[config.ProviderIndustry]}
}

func (c *IndustryClassifier) Name() string { return config.ProviderIndustry }

func (c *IndustryClassifier) MinConfidence() float64 { return c.minConfidence }

// Classify returns the dominant industry for a posting, or "" when the
// keyword evidence is ambiguous.
func (c *IndustryClassifier) Classify(job *types.JobRecord) (industry string, margin int) {
	text := job.Title + " " + job.Company + " " + job.Description

	scores := make(map[string]int)
	for name, keywords := range industryKeywords {
		scores[name] = len(containsAny(text, keywords))
	}

	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	top, second := names[0], names[1]
	if scores[top] < industryMinMatches || scores[top] == scores[second] {
		return "", 0
	}
	return top, scores[top] - scores[second]
}

// Evaluate classifies the posting and scores it with the industry's
// adjustment plus pattern-based tweaks.
func (c *IndustryClassifier) Evaluate(_ context.Context, job *types.JobRecord) (*types.SignalResult, error) {
	start := time.Now()

	industry, margin := c.Classify(job)
	if industry == "" {
		return unavailable(c.Name(), "no dominant industry in posting content"), nil
	}

	delta := industryAdjustments[industry]
	var risks, positives []string

	if industry == "staffing" {
		risks = append(risks, "Posting appears to come from a staffing agency rather than the hiring company")
	}

	text := job.Title + " " + job.Description
	if matched := containsAny(text, suspiciousPatterns); len(matched) > 0 {
		delta += 0.05 * float64(len(matched))
		risks = append(risks, fmt.Sprintf("Posting uses bait phrasing (%s)", matched[0]))
	}
	if matched := containsAny(text, legitimacyPatterns); len(matched) > 0 {
		delta -= 0.03 * float64(len(matched))
		positives = append(positives, "Posting names concrete hiring requirements")
	}

	confidence := 0.35 + 0.10*float64(min(margin, 4))

	return &types.SignalResult{
		Provider:        c.Name(),
		GhostScore:      deltaScore(delta),
		Confidence:      clamp01(confidence),
		RiskFactors:     risks,
		PositiveFactors: positives,
		Status:          types.StatusOk,
		StatusReason:    "classified as " + industry,
		Latency:         time.Since(start),
	}, nil
}
