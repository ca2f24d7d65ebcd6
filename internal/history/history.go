// Package history defines the read contracts the analysis engine needs
// from historical posting data, and an in-memory implementation for
// tests and database-less runs.
package history

import (
	"context"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/types"
)

// RepostMatch is one prior posting matching a fingerprint or a
// company+title pair.
type RepostMatch struct {
	PostedAt  time.Time
	SourceURL string
	Platform  types.Platform
	Exact     bool // fingerprint match rather than company+title match
}

// Reputation summarizes a company's historical analysis outcomes over a
// trailing window.
type Reputation struct {
	AvgGhostProbability float64
	Samples             int
	FirstSeen           time.Time
	LastSeen            time.Time
}

// Engagement summarizes recorded application outcomes for a company over
// a trailing window.
type Engagement struct {
	Applications int
	Responses    int
	Interviews   int
	Hires        int
}

// ResponseRate returns the fraction of applications that got any reply.
func (e *Engagement) ResponseRate() float64 {
	if e == nil || e.Applications == 0 {
		return 0
	}
	return float64(e.Responses) / float64(e.Applications)
}

// Store is the read-only contract the signal providers depend on. The
// engine never writes through this interface; persisting results is the
// caller's responsibility.
type Store interface {
	// NearDuplicates returns prior postings matching the fingerprint
	// hash or the normalized company+title pair since the given time.
	NearDuplicates(ctx context.Context, hash, company, title string, since time.Time) ([]RepostMatch, error)

	// CompanyReputation returns a company's historical average ghost
	// probability across name variants since the given time, or nil when
	// the company has no history.
	CompanyReputation(ctx context.Context, company string, since time.Time) (*Reputation, error)

	// EngagementOutcomes returns recorded application outcomes for a
	// company since the given time, or nil when none were recorded.
	EngagementOutcomes(ctx context.Context, company string, since time.Time) (*Engagement, error)
}
