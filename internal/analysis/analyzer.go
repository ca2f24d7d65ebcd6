// Package analysis orchestrates the signal providers and combines their
// results into a single ghost-probability verdict.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/signals"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// AlgorithmVersion is stamped on every result so persisted analyses can
// be re-scored when the combination logic changes.
const AlgorithmVersion = "2.1.0"

// Analyzer fans a job record out to all signal providers, collects
// whatever came back before the deadline, and aggregates it. One
// Analyzer is safe for concurrent use.
type Analyzer struct {
	cfg       *config.Config
	providers []signals.Provider
	log       *zap.Logger
}

// New builds an Analyzer over the given provider set. The provider
// order is preserved in every result breakdown.
func New(cfg *config.Config, providers []signals.Provider, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{cfg: cfg, providers: providers, log: log}
}

// Analyze runs one full analysis of a job posting.
//
// The only error it returns is *InputError for a malformed record.
// Provider failures, timeouts, and low-confidence results are absorbed
// into the breakdown and reflected in the Degraded flag.
//
// Repeated analyses of the same record reproduce the scoring fields
// (probability, risk level, confidence, factors, breakdown statuses);
// the ID and the AnalyzedAt/ProcessingTime envelope are per call.
func (a *Analyzer) Analyze(ctx context.Context, job *types.JobRecord) (*types.AnalysisResult, error) {
	start := time.Now()

	if err := validateJob(job); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.AnalysisDeadline())
	defer cancel()

	a.log.Debug("dispatching providers",
		zap.String("company", job.Company),
		zap.String("title", job.Title),
		zap.Int("providers", len(a.providers)))

	results := a.collect(ctx, job)

	agg := aggregate(a.cfg, a.floors(), results)

	breakdown := make([]types.SignalResult, 0, len(results))
	for _, r := range results {
		breakdown = append(breakdown, *r)
	}

	result := &types.AnalysisResult{
		ID:               uuid.New(),
		GhostProbability: agg.probability,
		RiskLevel:        agg.riskLevel,
		Confidence:       agg.confidence,
		RiskFactors:      agg.risks,
		PositiveFactors:  agg.positives,
		Breakdown:        breakdown,
		Degraded:         agg.degraded,
		AlgorithmVersion: AlgorithmVersion,
		AnalyzedAt:       start.UTC(),
		ProcessingTime:   time.Since(start),
	}

	a.log.Info("analysis complete",
		zap.String("analysis_id", result.ID.String()),
		zap.Float64("ghost_probability", result.GhostProbability),
		zap.String("risk_level", string(result.RiskLevel)),
		zap.Bool("degraded", result.Degraded),
		zap.Duration("elapsed", result.ProcessingTime))

	return result, nil
}

// floors collects each provider's confidence floor so aggregation
// applies the threshold the provider itself declares.
func (a *Analyzer) floors() map[string]float64 {
	floors := make(map[string]float64, len(a.providers))
	for _, p := range a.providers {
		floors[p.Name()] = p.MinConfidence()
	}
	return floors
}

// collect runs every provider concurrently and waits for all slots to
// settle. A provider that outlives the deadline is recorded as
// unavailable while its goroutine drains in the background.
func (a *Analyzer) collect(ctx context.Context, job *types.JobRecord) []*types.SignalResult {
	results := make([]*types.SignalResult, len(a.providers))

	g, gctx := errgroup.WithContext(ctx)
	for i, provider := range a.providers {
		g.Go(func() error {
			results[i] = a.evaluate(gctx, provider, job)
			return nil
		})
	}
	// Provider problems never surface as errors.
	_ = g.Wait()

	return results
}

// evaluate runs one provider with panic isolation and deadline
// enforcement.
func (a *Analyzer) evaluate(ctx context.Context, provider signals.Provider, job *types.JobRecord) *types.SignalResult {
	start := time.Now()
	done := make(chan *types.SignalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("provider panicked",
					zap.String("provider", provider.Name()),
					zap.Any("panic", r))
				done <- &types.SignalResult{
					Provider:     provider.Name(),
					Status:       types.StatusFailed,
					StatusReason: "provider panicked",
					Latency:      time.Since(start),
				}
			}
		}()

		res, err := provider.Evaluate(ctx, job)
		switch {
		case err != nil:
			done <- &types.SignalResult{
				Provider:     provider.Name(),
				Status:       types.StatusFailed,
				StatusReason: err.Error(),
				Latency:      time.Since(start),
			}
		case res == nil:
			done <- &types.SignalResult{
				Provider:     provider.Name(),
				Status:       types.StatusFailed,
				StatusReason: "provider returned no result",
				Latency:      time.Since(start),
			}
		default:
			res.Provider = provider.Name()
			done <- res
		}
	}()

	select {
	case res := <-done:
		return res
	case <-ctx.Done():
		a.log.Warn("provider missed the analysis deadline",
			zap.String("provider", provider.Name()),
			zap.Duration("elapsed", time.Since(start)))
		return &types.SignalResult{
			Provider:     provider.Name(),
			Status:       types.StatusUnavailable,
			StatusReason: "analysis deadline exceeded",
			Latency:      time.Since(start),
		}
	}
}

func validateJob(job *types.JobRecord) error {
	if job == nil {
		return &InputError{Message: "job record is nil"}
	}
	if strings.TrimSpace(job.Title) == "" {
		return &InputError{Field: "title", Message: "must not be empty"}
	}
	if strings.TrimSpace(job.Company) == "" {
		return &InputError{Field: "company", Message: "must not be empty"}
	}
	return nil
}
