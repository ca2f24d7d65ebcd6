// Package config provides configuration loading and validation for the analyzer.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

// Provider identifiers used as keys in the weight and threshold tables.
const (
	ProviderRuleBased    = "rule_based"
	ProviderSemantic     = "semantic"
	ProviderSiteVerifier = "site_verifier"
	ProviderRepost       = "repost"
	ProviderIndustry     = "industry"
	ProviderReputation   = "reputation"
	ProviderEngagement   = "engagement"
)

// Config holds the tunable parameters of the analysis engine. All fields
// are optional in the JSON file; missing values fall back to defaults.
type Config struct {
	// Weights maps provider identifier to base weight. Weights must sum
	// to 1.0 across configured providers; exclusion at analysis time is
	// handled by renormalization, never by editing this table.
	Weights map[string]float64 `json:"weights,omitempty"`

	// MinConfidence maps provider identifier to the confidence floor
	// below which its result is treated as unavailable.
	MinConfidence map[string]float64 `json:"min_confidence,omitempty"`

	// Risk tier thresholds (inclusive lower bounds).
	HighRiskThreshold   float64 `json:"high_risk_threshold,omitempty"`
	MediumRiskThreshold float64 `json:"medium_risk_threshold,omitempty"`

	// Deadlines, in milliseconds.
	AnalysisDeadlineMS int `json:"analysis_deadline_ms,omitempty"`
	SemanticTimeoutMS  int `json:"semantic_timeout_ms,omitempty"`
	VerifyTimeoutMS    int `json:"verify_timeout_ms,omitempty"`

	// Degradation policy.
	MinUsableProviders int     `json:"min_usable_providers,omitempty"`
	DegradedCeiling    float64 `json:"degraded_confidence_ceiling,omitempty"`

	// Provider-specific windows and limits.
	RepostWindowDays       int `json:"repost_window_days,omitempty"`
	ReputationWindowMonths int `json:"reputation_window_months,omitempty"`
	EngagementMinSamples   int `json:"engagement_min_samples,omitempty"`
	VerifyMaxRequests      int `json:"verify_max_requests,omitempty"`
	VerifyDomainWindowS    int `json:"verify_domain_window_s,omitempty"`

	// External services.
	APIKey      string `json:"api_key,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
	UseBrowser  bool   `json:"use_browser,omitempty"`
}

// DefaultWeights returns the default base weight table. The exact values
// are tuning data, which is why they live in configuration rather than
// in the combination logic.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		ProviderRuleBased:    0.25,
		ProviderSemantic:     0.20,
		ProviderSiteVerifier: 0.15,
		ProviderRepost:       0.15,
		ProviderIndustry:     0.10,
		ProviderReputation:   0.10,
		ProviderEngagement:   0.05,
	}
}

// DefaultMinConfidence returns the default per-provider confidence floors.
func DefaultMinConfidence() map[string]float64 {
	return map[string]float64{
		ProviderRuleBased:    0.0,
		ProviderSemantic:     0.30,
		ProviderSiteVerifier: 0.20,
		ProviderRepost:       0.25,
		ProviderIndustry:     0.30,
		ProviderReputation:   0.25,
		ProviderEngagement:   0.40,
	}
}

// Default returns a fully populated configuration.
func Default() *Config {
	return &Config{
		Weights:                DefaultWeights(),
		MinConfidence:          DefaultMinConfidence(),
		HighRiskThreshold:      0.65,
		MediumRiskThreshold:    0.40,
		AnalysisDeadlineMS:     2000,
		SemanticTimeoutMS:      3000,
		VerifyTimeoutMS:        5000,
		MinUsableProviders:     2,
		DegradedCeiling:        0.5,
		RepostWindowDays:       90,
		ReputationWindowMonths: 12,
		EngagementMinSamples:   3,
		VerifyMaxRequests:      3,
		VerifyDomainWindowS:    10,
	}
}

// Load reads configuration from a JSON file.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with unset fields filled from
// the default configuration. The min-confidence table merges per key so
// a config file can override a single floor without restating the rest;
// the weight table is all-or-nothing because partial weights would no
// longer sum to 1.0.
func (c *Config) MergeWithDefaults() *Config {
	defaults := Default()
	result := *c

	if result.Weights == nil {
		result.Weights = defaults.Weights
	}
	if result.MinConfidence == nil {
		result.MinConfidence = defaults.MinConfidence
	} else {
		for name, v := range defaults.MinConfidence {
			if _, ok := result.MinConfidence[name]; !ok {
				result.MinConfidence[name] = v
			}
		}
	}
	if result.HighRiskThreshold == 0 {
		result.HighRiskThreshold = defaults.HighRiskThreshold
	}
	if result.MediumRiskThreshold == 0 {
		result.MediumRiskThreshold = defaults.MediumRiskThreshold
	}
	if result.AnalysisDeadlineMS == 0 {
		result.AnalysisDeadlineMS = defaults.AnalysisDeadlineMS
	}
	if result.SemanticTimeoutMS == 0 {
		result.SemanticTimeoutMS = defaults.SemanticTimeoutMS
	}
	if result.VerifyTimeoutMS == 0 {
		result.VerifyTimeoutMS = defaults.VerifyTimeoutMS
	}
	if result.MinUsableProviders == 0 {
		result.MinUsableProviders = defaults.MinUsableProviders
	}
	if result.DegradedCeiling == 0 {
		result.DegradedCeiling = defaults.DegradedCeiling
	}
	if result.RepostWindowDays == 0 {
		result.RepostWindowDays = defaults.RepostWindowDays
	}
	if result.ReputationWindowMonths == 0 {
		result.ReputationWindowMonths = defaults.ReputationWindowMonths
	}
	if result.EngagementMinSamples == 0 {
		result.EngagementMinSamples = defaults.EngagementMinSamples
	}
	if result.VerifyMaxRequests == 0 {
		result.VerifyMaxRequests = defaults.VerifyMaxRequests
	}
	if result.VerifyDomainWindowS == 0 {
		result.VerifyDomainWindowS = defaults.VerifyDomainWindowS
	}

	return &result
}

// Validate checks that the configuration has consistent values.
func (c *Config) Validate() error {
	sum := 0.0
	for name, w := range c.Weights {
		if w < 0 || w > 1 {
			return fmt.Errorf("config error: weight for %q must be in [0, 1], got %v", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 0.001 {
		return fmt.Errorf("config error: provider weights must sum to 1.0, got %v", sum)
	}
	if _, ok := c.Weights[ProviderRuleBased]; !ok {
		return fmt.Errorf("config error: %q provider is required and must have a weight", ProviderRuleBased)
	}

	for name, mc := range c.MinConfidence {
		if mc < 0 || mc > 1 {
			return fmt.Errorf("config error: min confidence for %q must be in [0, 1], got %v", name, mc)
		}
	}

	if c.HighRiskThreshold <= c.MediumRiskThreshold {
		return fmt.Errorf("config error: high risk threshold (%v) must exceed medium (%v)",
			c.HighRiskThreshold, c.MediumRiskThreshold)
	}
	if c.AnalysisDeadlineMS <= 0 {
		return fmt.Errorf("config error: 'analysis_deadline_ms' must be positive")
	}
	if c.MinUsableProviders < 1 {
		return fmt.Errorf("config error: 'min_usable_providers' must be at least 1")
	}

	return nil
}

// AnalysisDeadline returns the global per-analysis deadline.
func (c *Config) AnalysisDeadline() time.Duration {
	return time.Duration(c.AnalysisDeadlineMS) * time.Millisecond
}

// SemanticTimeout returns the hard timeout for language-model calls.
func (c *Config) SemanticTimeout() time.Duration {
	return time.Duration(c.SemanticTimeoutMS) * time.Millisecond
}

// VerifyTimeout returns the timeout for a single site verification fetch.
func (c *Config) VerifyTimeout() time.Duration {
	return time.Duration(c.VerifyTimeoutMS) * time.Millisecond
}

// VerifyDomainWindow returns the minimum spacing between requests to the
// same domain.
func (c *Config) VerifyDomainWindow() time.Duration {
	return time.Duration(c.VerifyDomainWindowS) * time.Second
}
