package history

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/ghost-job-detector/internal/fingerprint"
	"github.com/jonathan/ghost-job-detector/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJob() *types.JobRecord {
	return &types.JobRecord{
		Title:       "Senior Engineer",
		Company:     "Acme",
		Description: "Build distributed systems.",
	}
}

func TestMemory_NearDuplicates_ExactFingerprintMatch(t *testing.T) {
	store := NewMemory()
	job := sampleJob()
	store.RecordPosting(job, time.Now().Add(-24*time.Hour))

	fp := fingerprint.New(job)
	matches, err := store.NearDuplicates(context.Background(), fp.Hash, job.Company, job.Title, time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.True(t, matches[0].Exact)
}

func TestMemory_NearDuplicates_CompanyTitleMatch(t *testing.T) {
	store := NewMemory()
	variant := sampleJob()
	variant.Description = "Completely rewritten description."
	store.RecordPosting(variant, time.Now().Add(-24*time.Hour))

	fp := fingerprint.New(sampleJob())
	matches, err := store.NearDuplicates(context.Background(), fp.Hash, "Acme", "Senior Engineer", time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.False(t, matches[0].Exact)
}

func TestMemory_NearDuplicates_RespectsWindow(t *testing.T) {
	store := NewMemory()
	store.RecordPosting(sampleJob(), time.Now().Add(-120*24*time.Hour))

	fp := fingerprint.New(sampleJob())
	matches, err := store.NearDuplicates(context.Background(), fp.Hash, "Acme", "Senior Engineer", time.Now().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestMemory_CompanyReputation(t *testing.T) {
	store := NewMemory()
	now := time.Now()
	store.RecordScore("Acme", 0.8, now.Add(-30*24*time.Hour))
	store.RecordScore("Acme Inc.", 0.6, now.Add(-10*24*time.Hour))
	store.RecordScore("Other Co", 0.1, now)

	// Name variants normalize onto different keys; only exact normalized
	// name aggregates here
	rep, err := store.CompanyReputation(context.Background(), "Acme", now.Add(-365*24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, rep)
	assert.Equal(t, 1, rep.Samples)
	assert.InDelta(t, 0.8, rep.AvgGhostProbability, 0.0001)
}

func TestMemory_CompanyReputation_NoHistory(t *testing.T) {
	store := NewMemory()
	rep, err := store.CompanyReputation(context.Background(), "Unknown", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Nil(t, rep)
}

func TestMemory_EngagementOutcomes(t *testing.T) {
	store := NewMemory()
	now := time.Now()
	store.RecordOutcome("Acme", true, true, false, now.Add(-time.Hour))
	store.RecordOutcome("Acme", false, false, false, now.Add(-2*time.Hour))
	store.RecordOutcome("Acme", true, false, false, now.Add(-3*time.Hour))

	eng, err := store.EngagementOutcomes(context.Background(), "Acme", now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, eng)
	assert.Equal(t, 3, eng.Applications)
	assert.Equal(t, 2, eng.Responses)
	assert.Equal(t, 1, eng.Interviews)
	assert.InDelta(t, 2.0/3.0, eng.ResponseRate(), 0.0001)
}

func TestEngagement_ResponseRate_Empty(t *testing.T) {
	var eng *Engagement
	assert.Equal(t, 0.0, eng.ResponseRate())
	assert.Equal(t, 0.0, (&Engagement{}).ResponseRate())
}
