package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// SaveAnalysis persists a completed analysis, its key factors, and the
// posting observation the repost detector matches against.
func (db *DB) SaveAnalysis(ctx context.Context, job *types.JobRecord, result *types.AnalysisResult) error {
	breakdown, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	normalized := fingerprint.Normalize(job.Company)

	_, err = tx.Exec(ctx,
		`INSERT INTO analyses (id, title, company, company_normalized, source_url, platform,
			ghost_probability, risk_level, confidence, degraded, algorithm_version, breakdown, analyzed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		result.ID, job.Title, job.Company, normalized, job.SourceURL, string(job.Platform),
		result.GhostProbability, string(result.RiskLevel), result.Confidence,
		result.Degraded, result.AlgorithmVersion, breakdown, result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}

	for _, factor := range result.RiskFactors {
		factorType := types.FactorWarning
		if result.RiskLevel == types.RiskHigh {
			factorType = types.FactorRedFlag
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO key_factors (analysis_id, factor_type, description) VALUES ($1, $2, $3)`,
			result.ID, string(factorType), factor,
		); err != nil {
			return fmt.Errorf("failed to save key factor: %w", err)
		}
	}
	for _, factor := range result.PositiveFactors {
		if _, err := tx.Exec(ctx,
			`INSERT INTO key_factors (analysis_id, factor_type, description) VALUES ($1, $2, $3)`,
			result.ID, string(types.FactorPositive), factor,
		); err != nil {
			return fmt.Errorf("failed to save key factor: %w", err)
		}
	}

	fp := fingerprint.New(job)
	_, err = tx.Exec(ctx,
		`INSERT INTO postings (fingerprint, company_normalized, title_normalized, source_url, platform, seen_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		fp.Hash, normalized, fingerprint.Normalize(job.Title), job.SourceURL, string(job.Platform), result.AnalyzedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save posting observation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit analysis: %w", err)
	}
	return nil
}

// History returns the most recent analyses, newest first, each with its
// persisted key factors.
func (db *DB) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, title, company, source_url, platform, ghost_probability,
			risk_level, confidence, degraded, algorithm_version, analyzed_at
		 FROM analyses ORDER BY analyzed_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		var platform, riskLevel string
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.SourceURL, &platform,
			&e.GhostProbability, &riskLevel, &e.Confidence, &e.Degraded,
			&e.AlgorithmVersion, &e.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		e.Platform = types.Platform(platform)
		e.RiskLevel = types.RiskLevel(riskLevel)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history rows: %w", err)
	}

	for i := range entries {
		factors, err := db.AnalysisFactors(ctx, entries[i].ID.String())
		if err != nil {
			return nil, err
		}
		entries[i].KeyFactors = factors
	}
	return entries, nil
}

// AnalysisFactors returns the persisted key factors for one analysis.
func (db *DB) AnalysisFactors(ctx context.Context, analysisID string) ([]KeyFactor, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT factor_type, description FROM key_factors WHERE analysis_id = $1 ORDER BY id`,
		analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query key factors: %w", err)
	}
	defer rows.Close()

	var factors []KeyFactor
	for rows.Next() {
		var f KeyFactor
		var factorType string
		if err := rows.Scan(&factorType, &f.Description); err != nil {
			return nil, fmt.Errorf("failed to scan key factor: %w", err)
		}
		f.FactorType = types.FactorType(factorType)
		factors = append(factors, f)
	}
	return factors, rows.Err()
}

// GetStats aggregates all persisted analyses.
func (db *DB) GetStats(ctx context.Context) (*Stats, error) {
	var s Stats
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(ghost_probability), 0),
			COUNT(*) FILTER (WHERE risk_level = 'high'),
			COUNT(*) FILTER (WHERE risk_level = 'medium'),
			COUNT(*) FILTER (WHERE risk_level = 'low'),
			COUNT(*) FILTER (WHERE degraded),
			COALESCE(MIN(analyzed_at), NOW()),
			COALESCE(MAX(analyzed_at), NOW())
		 FROM analyses`,
	).Scan(&s.TotalAnalyses, &s.AvgProbability, &s.HighRiskCount, &s.MediumRiskCount,
		&s.LowRiskCount, &s.DegradedCount, &s.FirstAnalyzedAt, &s.LastAnalyzedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	return &s, nil
}

// GetCompanyInsight summarizes everything known about one company.
// Returns nil when the company has never been seen.
func (db *DB) GetCompanyInsight(ctx context.Context, company string) (*CompanyInsight, error) {
	normalized := fingerprint.Normalize(company)

	insight := CompanyInsight{Company: company}
	var highRisk int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COALESCE(AVG(ghost_probability), 0),
			COUNT(*) FILTER (WHERE risk_level = 'high'),
			MIN(analyzed_at), MAX(analyzed_at)
		 FROM analyses WHERE company_normalized = $1`,
		normalized,
	).Scan(&insight.Analyses, &insight.AvgProbability, &highRisk,
		&insight.FirstSeen, &insight.LastSeen)
	if err != nil && err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to query company analyses: %w", err)
	}

	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM postings WHERE company_normalized = $1`,
		normalized,
	).Scan(&insight.Postings)
	if err != nil {
		return nil, fmt.Errorf("failed to query company postings: %w", err)
	}

	var responses int
	err = db.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE responded)
		 FROM engagement_outcomes WHERE company_normalized = $1`,
		normalized,
	).Scan(&insight.Applications, &responses)
	if err != nil {
		return nil, fmt.Errorf("failed to query company engagement: %w", err)
	}

	if insight.Analyses == 0 && insight.Postings == 0 && insight.Applications == 0 {
		return nil, nil
	}

	if insight.Analyses > 0 {
		insight.HighRiskShare = float64(highRisk) / float64(insight.Analyses)
	}
	if insight.Applications > 0 {
		insight.ResponseRate = float64(responses) / float64(insight.Applications)
	}
	return &insight, nil
}
