package history

import (
	"context"
	"sync"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

// memoryPosting is one recorded posting in the in-memory store.
type memoryPosting struct {
	hash     string
	company  string
	title    string
	postedAt time.Time
	url      string
	platform types.Platform
}

type memoryScore struct {
	company    string
	ghostScore float64
	scoredAt   time.Time
}

type memoryOutcome struct {
	company    string
	responded  bool
	interview  bool
	hired      bool
	recordedAt time.Time
}

// Memory is a mutex-protected in-memory Store. It backs tests and CLI
// runs without a database.
type Memory struct {
	mu       sync.RWMutex
	postings []memoryPosting
	scores   []memoryScore
	outcomes []memoryOutcome
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// RecordPosting adds a posting observation.
func (m *Memory) RecordPosting(job *types.JobRecord, seenAt time.Time) {
	fp := fingerprint.New(job)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.postings = append(m.postings, memoryPosting{
		hash:     fp.Hash,
		company:  fp.Company,
		title:    fp.Title,
		postedAt: seenAt,
		url:      job.SourceURL,
		platform: job.Platform,
	})
}

// RecordScore adds an analysis outcome for reputation tracking.
func (m *Memory) RecordScore(company string, ghostScore float64, scoredAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, memoryScore{
		company:    fingerprint.Normalize(company),
		ghostScore: ghostScore,
		scoredAt:   scoredAt,
	})
}

// RecordOutcome adds an application outcome for engagement tracking.
func (m *Memory) RecordOutcome(company string, responded, interview, hired bool, recordedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, memoryOutcome{
		company:    fingerprint.Normalize(company),
		responded:  responded,
		interview:  interview,
		hired:      hired,
		recordedAt: recordedAt,
	})
}

// NearDuplicates implements Store.
func (m *Memory) NearDuplicates(_ context.Context, hash, company, title string, since time.Time) ([]RepostMatch, error) {
	normCompany := fingerprint.Normalize(company)
	normTitle := fingerprint.Normalize(title)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []RepostMatch
	for _, p := range m.postings {
		if p.postedAt.Before(since) {
			continue
		}
		exact := p.hash == hash
		if !exact && !(p.company == normCompany && p.title == normTitle) {
			continue
		}
		matches = append(matches, RepostMatch{
			PostedAt:  p.postedAt,
			SourceURL: p.url,
			Platform:  p.platform,
			Exact:     exact,
		})
	}
	return matches, nil
}

// CompanyReputation implements Store.
func (m *Memory) CompanyReputation(_ context.Context, company string, since time.Time) (*Reputation, error) {
	norm := fingerprint.Normalize(company)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var rep Reputation
	sum := 0.0
	for _, s := range m.scores {
		if s.company != norm || s.scoredAt.Before(since) {
			continue
		}
		sum += s.ghostScore
		rep.Samples++
		if rep.FirstSeen.IsZero() || s.scoredAt.Before(rep.FirstSeen) {
			rep.FirstSeen = s.scoredAt
		}
		if s.scoredAt.After(rep.LastSeen) {
			rep.LastSeen = s.scoredAt
		}
	}
	if rep.Samples == 0 {
		return nil, nil
	}
	rep.AvgGhostProbability = sum / float64(rep.Samples)
	return &rep, nil
}

// EngagementOutcomes implements Store.
func (m *Memory) EngagementOutcomes(_ context.Context, company string, since time.Time) (*Engagement, error) {
	norm := fingerprint.Normalize(company)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var eng Engagement
	for _, o := range m.outcomes {
		if o.company != norm || o.recordedAt.Before(since) {
			continue
		}
		eng.Applications++
		if o.responded {
			eng.Responses++
		}
		if o.interview {
			eng.Interviews++
		}
		if o.hired {
			eng.Hires++
		}
	}
	if eng.Applications == 0 {
		return nil, nil
	}
	return &eng, nil
}
