package analysis

import (
	"fmt"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// combined is the output of weight-blending one analysis round.
type combined struct {
	probability float64
	confidence  float64
	riskLevel   types.RiskLevel
	risks       []string
	positives   []string
	degraded    bool
}

// aggregate blends the provider results into a single probability.
//
// floors maps provider name to its confidence floor, as reported by
// each provider's MinConfidence. Providers whose result is not usable
// (failed, unavailable, or below their floor) are excluded and the
// remaining weights are renormalized so they keep their relative
// proportions while summing to one. The weight table itself is never
// modified.
func aggregate(cfg *config.Config, floors map[string]float64, results []*types.SignalResult) combined {
	usable := make([]*types.SignalResult, 0, len(results))
	for _, r := range results {
		if r == nil {
			continue
		}
		floor := floors[r.Provider]
		if r.Status == types.StatusOk && !r.Usable(floor) {
			// Demote in place so the breakdown explains the exclusion.
			r.Status = types.StatusUnavailable
			r.StatusReason = fmt.Sprintf("confidence %.2f below floor %.2f", r.Confidence, floor)
		}
		if r.Usable(floor) {
			usable = append(usable, r)
		}
	}

	totalWeight := 0.0
	for _, r := range usable {
		totalWeight += cfg.Weights[r.Provider]
	}

	// If every weighted provider dropped out, fall back to the rule
	// evaluator alone: it is the one provider that is always present.
	if totalWeight <= 0 {
		return ruleOnlyFallback(cfg, results)
	}

	var probability, confidence float64
	for _, r := range usable {
		share := cfg.Weights[r.Provider] / totalWeight
		probability += share * r.GhostScore
		confidence += share * r.Confidence
	}
	probability = clamp01(probability)

	risks, positives := mergeFactors(usable)

	degraded := len(usable) < cfg.MinUsableProviders
	if degraded && confidence > cfg.DegradedCeiling {
		confidence = cfg.DegradedCeiling
	}

	return combined{
		probability: probability,
		confidence:  clamp01(confidence),
		riskLevel:   riskLevel(cfg, probability),
		risks:       risks,
		positives:   positives,
		degraded:    degraded,
	}
}

// ruleOnlyFallback handles the round where no weighted provider was
// usable. The analysis still answers, degraded, from the rule result if
// one exists.
func ruleOnlyFallback(cfg *config.Config, results []*types.SignalResult) combined {
	for _, r := range results {
		if r != nil && r.Provider == config.ProviderRuleBased && r.Status == types.StatusOk {
			confidence := r.Confidence
			if confidence > cfg.DegradedCeiling {
				confidence = cfg.DegradedCeiling
			}
			return combined{
				probability: clamp01(r.GhostScore),
				confidence:  confidence,
				riskLevel:   riskLevel(cfg, r.GhostScore),
				risks:       dedup(r.RiskFactors),
				positives:   dedup(r.PositiveFactors),
				degraded:    true,
			}
		}
	}

	// Nothing at all: report an indeterminate midpoint with zero
	// confidence rather than failing the analysis.
	return combined{
		probability: 0.5,
		confidence:  0,
		riskLevel:   riskLevel(cfg, 0.5),
		degraded:    true,
	}
}

// riskLevel maps a probability onto the configured tiers. Thresholds
// are inclusive lower bounds.
func riskLevel(cfg *config.Config, probability float64) types.RiskLevel {
	switch {
	case probability >= cfg.HighRiskThreshold:
		return types.RiskHigh
	case probability >= cfg.MediumRiskThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// mergeFactors concatenates factor lists in provider order, dropping
// exact duplicates.
func mergeFactors(results []*types.SignalResult) (risks, positives []string) {
	for _, r := range results {
		risks = appendUnique(risks, r.RiskFactors)
		positives = appendUnique(positives, r.PositiveFactors)
	}
	return risks, positives
}

func dedup(factors []string) []string {
	return appendUnique(nil, factors)
}

func appendUnique(dst []string, src []string) []string {
	for _, f := range src {
		seen := false
		for _, existing := range dst {
			if existing == f {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, f)
		}
	}
	return dst
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
