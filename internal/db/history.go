package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/history"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// The DB doubles as the history.Store the repost, reputation, and
// engagement providers read from.
var _ history.Store = (*DB)(nil)

// NearDuplicates returns prior posting observations that match either
// the content fingerprint exactly or the normalized company+title pair.
func (db *DB) NearDuplicates(ctx context.Context, hash, company, title string, since time.Time) ([]history.RepostMatch, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT seen_at, source_url, platform, fingerprint = $1 AS exact
		 FROM postings
		 WHERE seen_at >= $4
		   AND (fingerprint = $1 OR (company_normalized = $2 AND title_normalized = $3))
		 ORDER BY seen_at DESC`,
		hash, fingerprint.Normalize(company), fingerprint.Normalize(title), since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query near duplicates: %w", err)
	}
	defer rows.Close()

	var matches []history.RepostMatch
	for rows.Next() {
		var m history.RepostMatch
		var platform string
		if err := rows.Scan(&m.PostedAt, &m.SourceURL, &platform, &m.Exact); err != nil {
			return nil, fmt.Errorf("failed to scan posting row: %w", err)
		}
		m.Platform = types.Platform(platform)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// CompanyReputation aggregates the company's past analysis scores.
// Returns nil when the company has no analyses in the window.
func (db *DB) CompanyReputation(ctx context.Context, company string, since time.Time) (*history.Reputation, error) {
	var rep history.Reputation
	err := db.pool.QueryRow(ctx,
		`SELECT AVG(ghost_probability), COUNT(*), MIN(analyzed_at), MAX(analyzed_at)
		 FROM analyses
		 WHERE company_normalized = $1 AND analyzed_at >= $2
		 HAVING COUNT(*) > 0`,
		fingerprint.Normalize(company), since,
	).Scan(&rep.AvgGhostProbability, &rep.Samples, &rep.FirstSeen, &rep.LastSeen)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query company reputation: %w", err)
	}
	return &rep, nil
}

// EngagementOutcomes aggregates reported application outcomes for the
// company. Returns nil when none were reported in the window.
func (db *DB) EngagementOutcomes(ctx context.Context, company string, since time.Time) (*history.Engagement, error) {
	var eng history.Engagement
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE responded),
			COUNT(*) FILTER (WHERE interview),
			COUNT(*) FILTER (WHERE hired)
		 FROM engagement_outcomes
		 WHERE company_normalized = $1 AND recorded_at >= $2`,
		fingerprint.Normalize(company), since,
	).Scan(&eng.Applications, &eng.Responses, &eng.Interviews, &eng.Hires)
	if err != nil {
		return nil, fmt.Errorf("failed to query engagement outcomes: %w", err)
	}
	if eng.Applications == 0 {
		return nil, nil
	}
	return &eng, nil
}

// RecordOutcome stores one reported application outcome.
func (db *DB) RecordOutcome(ctx context.Context, company string, responded, interview, hired bool, recordedAt time.Time) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO engagement_outcomes (company_normalized, responded, interview, hired, recorded_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		fingerprint.Normalize(company), responded, interview, hired, recordedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}
