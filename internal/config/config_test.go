package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	sum := 0.0
	for _, w := range DefaultWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 0.001)
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{
		"high_risk_threshold": 0.70,
		"analysis_deadline_ms": 1500,
		"min_confidence": {"semantic": 0.5}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.70, cfg.HighRiskThreshold)
	assert.Equal(t, 1500, cfg.AnalysisDeadlineMS)
	assert.Equal(t, 0.5, cfg.MinConfidence[ProviderSemantic])
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
}

func TestMergeWithDefaults_FillsUnsetFields(t *testing.T) {
	cfg := &Config{HighRiskThreshold: 0.8}
	merged := cfg.MergeWithDefaults()

	assert.Equal(t, 0.8, merged.HighRiskThreshold)
	assert.Equal(t, Default().MediumRiskThreshold, merged.MediumRiskThreshold)
	assert.Equal(t, Default().AnalysisDeadlineMS, merged.AnalysisDeadlineMS)
	assert.NotEmpty(t, merged.Weights)
	require.NoError(t, merged.Validate())
}

func TestMergeWithDefaults_MinConfidencePerKey(t *testing.T) {
	cfg := &Config{MinConfidence: map[string]float64{ProviderSemantic: 0.6}}
	merged := cfg.MergeWithDefaults()

	assert.Equal(t, 0.6, merged.MinConfidence[ProviderSemantic])
	// Other floors picked up from defaults
	assert.Equal(t, DefaultMinConfidence()[ProviderRepost], merged.MinConfidence[ProviderRepost])
}

func TestValidate_WeightsMustSumToOne(t *testing.T) {
	cfg := Default()
	cfg.Weights[ProviderSemantic] = 0.9
	assert.Error(t, cfg.Validate())
}

func TestValidate_RuleBasedRequired(t *testing.T) {
	cfg := Default()
	w := cfg.Weights[ProviderRuleBased]
	delete(cfg.Weights, ProviderRuleBased)
	cfg.Weights[ProviderSemantic] += w
	assert.Error(t, cfg.Validate())
}

func TestValidate_ThresholdOrdering(t *testing.T) {
	cfg := Default()
	cfg.HighRiskThreshold = 0.3
	cfg.MediumRiskThreshold = 0.4
	assert.Error(t, cfg.Validate())
}
