package signals

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ghost-job-detector/internal/config"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

func TestIndustryClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		job      *types.JobRecord
		industry string
	}{
		{
			name: "technology posting",
			job: &types.JobRecord{
				Title:       "Backend Software Engineer",
				Company:     "Acme",
				Description: "Build cloud APIs in Go. Kubernetes experience required.",
			},
			industry: "technology",
		},
		{
			name: "staffing agency posting",
			job: &types.JobRecord{
				Title:       "Contract-to-Hire Analyst",
				Company:     "TalentBridge Staffing",
				Description: "Our client is seeking an analyst on behalf of a Fortune 500 firm. W2 position.",
			},
			industry: "staffing",
		},
		{
			name: "ambiguous posting",
			job: &types.JobRecord{
				Title:       "Manager",
				Company:     "Acme",
				Description: "Manage things.",
			},
			industry: "",
		},
	}

	c := NewIndustryClassifier(config.Default())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			industry, _ := c.Classify(tt.job)
			assert.Equal(t, tt.industry, industry)
		})
	}
}

func TestIndustryClassifier_AmbiguousIsUnavailable(t *testing.T) {
	c := NewIndustryClassifier(config.Default())

	result, err := c.Evaluate(context.Background(), &types.JobRecord{
		Title:       "Manager",
		Company:     "Acme",
		Description: "Manage things.",
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusUnavailable, result.Status)
}

func TestIndustryClassifier_StaffingRaisesScore(t *testing.T) {
	c := NewIndustryClassifier(config.Default())

	result, err := c.Evaluate(context.Background(), &types.JobRecord{
		Title:       "Recruiter",
		Company:     "TalentBridge Staffing",
		Description: "Our client needs talent acquisition help. Contract-to-hire, W2 position.",
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusOk, result.Status)
	assert.Greater(t, result.GhostScore, 0.6)
	assert.NotEmpty(t, result.RiskFactors)
	assert.Contains(t, result.StatusReason, "staffing")
}

func TestIndustryClassifier_GovernmentLowersScore(t *testing.T) {
	c := NewIndustryClassifier(config.Default())

	result, err := c.Evaluate(context.Background(), &types.JobRecord{
		Title:       "Federal Program Analyst",
		Company:     "Public Sector Partners",
		Description: "Government civil service role. Security clearance and background check required.",
	})
	require.NoError(t, err)

	assert.Equal(t, types.StatusOk, result.Status)
	assert.Less(t, result.GhostScore, 0.5)
	assert.NotEmpty(t, result.PositiveFactors)
}

func TestIndustryClassifier_BaitPhrasesFlagged(t *testing.T) {
	c := NewIndustryClassifier(config.Default())

	result, err := c.Evaluate(context.Background(), &types.JobRecord{
		Title:       "Retail Store Associate",
		Company:     "Acme Retail",
		Description: "Cashier and inventory duties. Unlimited earning potential, no experience necessary!",
	})
	require.NoError(t, err)

	require.Equal(t, types.StatusOk, result.Status)
	assert.Greater(t, result.GhostScore, 0.6)
	found := false
	for _, f := range result.RiskFactors {
		if f != "" {
			found = true
		}
	}
	assert.True(t, found)
}
