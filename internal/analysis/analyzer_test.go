package analysis

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/signals"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// stubProvider is a scriptable provider for orchestration tests.
type stubProvider struct {
	name   string
	floor  float64
	result *types.SignalResult
	err    error
	delay  time.Duration
	panics bool
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) MinConfidence() float64 { return s.floor }

func (s *stubProvider) Evaluate(ctx context.Context, _ *types.JobRecord) (*types.SignalResult, error) {
	if s.panics {
		panic("stub exploded")
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return &types.SignalResult{
				Provider:     s.name,
				Status:       types.StatusUnavailable,
				StatusReason: "cancelled",
			}, nil
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	// Copy so repeated analyses never share result memory.
	cp := *s.result
	return &cp, nil
}

func stub(name string, score, confidence float64) *stubProvider {
	return &stubProvider{
		name: name,
		result: &types.SignalResult{
			Provider:   name,
			GhostScore: score,
			Confidence: confidence,
			Status:     types.StatusOk,
		},
	}
}

func testJob() *types.JobRecord {
	return &types.JobRecord{
		Title:       "Backend Engineer",
		Company:     "Acme Corp",
		Description: "Build Go services.",
	}
}

func TestAnalyzer_NilJobIsInputError(t *testing.T) {
	a := New(config.Default(), nil, nil)

	_, err := a.Analyze(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestAnalyzer_MissingFieldsAreInputErrors(t *testing.T) {
	a := New(config.Default(), nil, nil)

	_, err := a.Analyze(context.Background(), &types.JobRecord{Company: "Acme"})
	require.Error(t, err)
	assert.True(t, IsInputError(err))

	_, err = a.Analyze(context.Background(), &types.JobRecord{Title: "Engineer"})
	require.Error(t, err)
	assert.True(t, IsInputError(err))
}

func TestAnalyzer_BlendsAllProviders(t *testing.T) {
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.5, 0.8),
		stub(config.ProviderSemantic, 0.7, 0.9),
		stub(config.ProviderRepost, 0.6, 0.7),
	}
	a := New(config.Default(), providers, nil)

	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	// Weights 0.25/0.20/0.15 renormalized over 0.60.
	expected := 0.5*(0.25/0.60) + 0.7*(0.20/0.60) + 0.6*(0.15/0.60)
	assert.InDelta(t, expected, result.GhostProbability, 1e-9)
	assert.False(t, result.Degraded)
	assert.Len(t, result.Breakdown, 3)
	assert.Equal(t, AlgorithmVersion, result.AlgorithmVersion)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", result.ID.String())
}

func TestAnalyzer_ResultIndependentOfCompletionOrder(t *testing.T) {
	build := func(shuffle bool) []signals.Provider {
		providers := []signals.Provider{
			stub(config.ProviderRuleBased, 0.45, 0.8),
			stub(config.ProviderSemantic, 0.75, 0.9),
			stub(config.ProviderRepost, 0.60, 0.7),
			stub(config.ProviderIndustry, 0.55, 0.6),
		}
		if shuffle {
			for _, p := range providers {
				p.(*stubProvider).delay = time.Duration(rand.Intn(20)) * time.Millisecond
			}
		}
		return providers
	}

	a1 := New(config.Default(), build(false), nil)
	baseline, err := a1.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		a2 := New(config.Default(), build(true), nil)
		result, err := a2.Analyze(context.Background(), testJob())
		require.NoError(t, err)
		assert.InDelta(t, baseline.GhostProbability, result.GhostProbability, 1e-9)
		assert.Equal(t, baseline.RiskLevel, result.RiskLevel)
	}
}

func TestAnalyzer_RepeatedAnalysisIsStable(t *testing.T) {
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.62, 0.8),
		stub(config.ProviderSemantic, 0.58, 0.9),
	}
	a := New(config.Default(), providers, nil)

	first, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	assert.Equal(t, first.GhostProbability, second.GhostProbability)
	assert.Equal(t, first.RiskLevel, second.RiskLevel)
	assert.Equal(t, first.RiskFactors, second.RiskFactors)
}

func TestAnalyzer_UsesProviderDeclaredFloor(t *testing.T) {
	// The semantic stub reports a 0.9 floor, stricter than the
	// configured default, and its 0.5-confidence result must not blend.
	strict := stub(config.ProviderSemantic, 0.95, 0.5)
	strict.floor = 0.9
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.30, 0.8),
		strict,
	}
	a := New(config.Default(), providers, nil)

	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	assert.InDelta(t, 0.30, result.GhostProbability, 1e-9)
	excluded := result.ExcludedProviders()
	assert.Contains(t, excluded[config.ProviderSemantic], "below floor")
}

func TestAnalyzer_ProviderErrorBecomesFailedResult(t *testing.T) {
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.5, 0.8),
		&stubProvider{name: config.ProviderSemantic, err: errors.New("boom")},
	}
	a := New(config.Default(), providers, nil)

	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	excluded := result.ExcludedProviders()
	assert.Equal(t, "boom", excluded[config.ProviderSemantic])
	assert.True(t, result.Degraded)
}

func TestAnalyzer_ProviderPanicIsIsolated(t *testing.T) {
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.5, 0.8),
		stub(config.ProviderSemantic, 0.6, 0.9),
		&stubProvider{name: config.ProviderRepost, panics: true},
	}
	a := New(config.Default(), providers, nil)

	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	excluded := result.ExcludedProviders()
	assert.Contains(t, excluded[config.ProviderRepost], "panicked")
	assert.False(t, result.Degraded)
}

func TestAnalyzer_SlowProviderExcludedAtDeadline(t *testing.T) {
	cfg := config.Default()
	cfg.AnalysisDeadlineMS = 50

	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.5, 0.8),
		stub(config.ProviderSemantic, 0.6, 0.9),
		&stubProvider{
			name:  config.ProviderSiteVerifier,
			delay: 2 * time.Second,
			result: &types.SignalResult{
				Provider:   config.ProviderSiteVerifier,
				GhostScore: 0.9,
				Confidence: 0.9,
				Status:     types.StatusOk,
			},
		},
	}
	a := New(cfg, providers, nil)

	start := time.Now()
	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	assert.Less(t, time.Since(start), time.Second, "analysis must not wait for the slow provider")
	excluded := result.ExcludedProviders()
	assert.NotEmpty(t, excluded[config.ProviderSiteVerifier])

	// The two fast providers still blend normally.
	expected := 0.5*(0.25/0.45) + 0.6*(0.20/0.45)
	assert.InDelta(t, expected, result.GhostProbability, 1e-9)
	assert.False(t, result.Degraded)
}

func TestAnalyzer_BreakdownPreservesProviderOrder(t *testing.T) {
	providers := []signals.Provider{
		stub(config.ProviderRuleBased, 0.5, 0.8),
		stub(config.ProviderSemantic, 0.6, 0.9),
		stub(config.ProviderRepost, 0.7, 0.7),
	}
	a := New(config.Default(), providers, nil)

	result, err := a.Analyze(context.Background(), testJob())
	require.NoError(t, err)

	require.Len(t, result.Breakdown, 3)
	assert.Equal(t, config.ProviderRuleBased, result.Breakdown[0].Provider)
	assert.Equal(t, config.ProviderSemantic, result.Breakdown[1].Provider)
	assert.Equal(t, config.ProviderRepost, result.Breakdown[2].Provider)
}
