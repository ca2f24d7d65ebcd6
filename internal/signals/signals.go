// Package signals implements the signal providers that each contribute
// an independent ghost-probability estimate for a job posting.
package signals

import (
	"context"
	"strings"

	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// Provider is the capability contract every signal provider implements.
// Evaluate must respect the caller's cancellation signal and must not
// block indefinitely on external I/O. A returned error is treated as a
// provider failure and excluded from aggregation; it never aborts the
// analysis.
type Provider interface {
	// Name returns the provider identifier used in the weight table
	Name() string
	// MinConfidence is the floor below which this provider's result is
	// treated as unavailable rather than blended in
	MinConfidence() float64
	// Evaluate computes this provider's contribution for a job record
	Evaluate(ctx context.Context, job *types.JobRecord) (*types.SignalResult, error)
}

// clamp01 bounds a score to [0, 1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// deltaScore converts a signed adjustment into an absolute sub-score
// around the neutral midpoint.
func deltaScore(delta float64) float64 {
	return clamp01(0.5 + delta)
}

// unavailable builds the standard result for a provider that cannot
// contribute this time.
func unavailable(name, reason string) *types.SignalResult {
	return &types.SignalResult{
		Provider:     name,
		GhostScore:   0,
		Confidence:   0,
		Status:       types.StatusUnavailable,
		StatusReason: reason,
	}
}

// failed builds the standard result for a provider that hit an
// unexpected failure.
func failed(name, reason string) *types.SignalResult {
	return &types.SignalResult{
		Provider:     name,
		GhostScore:   0,
		Confidence:   0,
		Status:       types.StatusFailed,
		StatusReason: reason,
	}
}

// tokenize splits normalized text into unique lowercase tokens.
func tokenize(s string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range strings.Fields(fingerprint.Normalize(s)) {
		if len(tok) > 1 {
			tokens[tok] = true
		}
	}
	return tokens
}

// containsAny reports whether text contains any of the given phrases,
// returning the matched ones. Matching is case-insensitive.
func containsAny(text string, phrases []string) []string {
	lower := strings.ToLower(text)
	var matched []string
	for _, phrase := range phrases {
		if strings.Contains(lower, phrase) {
			matched = append(matched, phrase)
		}
	}
	return matched
}
