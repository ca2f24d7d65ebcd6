package signals

import (
	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/llm"
	"github.com/jonathan/ghost-job-detector/internal/ratelimit"
)

// All builds the full provider set in canonical order. The order is
// stable because result breakdowns and merged factor lists follow it.
// client and store may be nil; the corresponding providers then report
// unavailable instead of contributing.
func All(cfg *config.Config, client llm.Client, store history.Store, limiter *ratelimit.DomainLimiter) []Provider {
	return []Provider{
		NewRuleBasedEvaluator(cfg),
		NewSemanticEvaluator(client, cfg),
		NewSiteVerifier(limiter, cfg),
		NewRepostDetector(store, cfg),
		NewIndustryClassifier(cfg),
		NewReputationScorer(store, cfg),
		NewEngagementScorer(store, cfg),
	}
}
