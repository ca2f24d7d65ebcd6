package types

import (
	"encoding/json"
	"time"
)

// SignalStatus describes the outcome of a single provider invocation.
type SignalStatus string

const (
	// StatusOk means the provider produced a usable contribution
	StatusOk SignalStatus = "ok"
	// StatusUnavailable means the provider could not contribute this time
	// (timeout, rate limit, insufficient data); expected, not an error
	StatusUnavailable SignalStatus = "unavailable"
	// StatusFailed means the provider hit an unexpected failure; it is
	// excluded from aggregation and logged for diagnostics
	StatusFailed SignalStatus = "failed"
)

// SignalResult is one provider's contribution to an analysis.
// GhostScore is the provider's absolute ghost-probability estimate in
// [0, 1]; adjustment-style providers report 0.5 plus their signed delta.
type SignalResult struct {
	Provider        string          `json:"provider"`
	GhostScore      float64         `json:"ghost_score"`
	Confidence      float64         `json:"confidence"`
	RiskFactors     []string        `json:"risk_factors,omitempty"`
	PositiveFactors []string        `json:"positive_factors,omitempty"`
	Status          SignalStatus    `json:"status"`
	StatusReason    string          `json:"status_reason,omitempty"`
	Latency         time.Duration   `json:"latency_ns,omitempty"`
	Raw             json.RawMessage `json:"raw,omitempty"`
}

// Usable reports whether this result may be blended into the weighted
// combination, given the provider's minimum confidence threshold.
func (r *SignalResult) Usable(minConfidence float64) bool {
	return r != nil && r.Status == StatusOk && r.Confidence >= minConfidence
}
