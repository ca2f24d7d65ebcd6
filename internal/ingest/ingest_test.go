package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/ghost-job-detector/internal/llm"
	"github.com/jonathan/ghost-job-detector/internal/types"
)

type mockClient struct {
	response string
	err      error
	prompt   string
}

func (m *mockClient) GenerateJSON(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	m.prompt = prompt
	return m.response, m.err
}

func (m *mockClient) Model(llm.ModelTier) string { return "mock" }

func (m *mockClient) Close() error { return nil }

func TestFromText_ExtractsRecord(t *testing.T) {
	client := &mockClient{
		response: `{"title": "Data Engineer", "company": "Initech", "location": "Austin, TX", "description": "Build pipelines.", "remote": true}`,
	}
	in := New(client, false, nil)

	job, err := in.FromText(context.Background(), "Data Engineer at Initech...", "https://www.linkedin.com/jobs/view/42")
	require.NoError(t, err)

	assert.Equal(t, "Data Engineer", job.Title)
	assert.Equal(t, "Initech", job.Company)
	assert.Equal(t, "Austin, TX", job.Location)
	assert.True(t, job.Remote)
	assert.Equal(t, types.PlatformLinkedIn, job.Platform)
	assert.Contains(t, client.prompt, "Data Engineer at Initech")
}

func TestFromText_EmptyDescriptionFallsBackToPageText(t *testing.T) {
	client := &mockClient{
		response: `{"title": "Data Engineer", "company": "Initech"}`,
	}
	in := New(client, false, nil)

	job, err := in.FromText(context.Background(), "the original page text", "")
	require.NoError(t, err)
	assert.Equal(t, "the original page text", job.Description)
	assert.Equal(t, types.PlatformOther, job.Platform)
}

func TestFromText_MissingCompanyIsIncomplete(t *testing.T) {
	client := &mockClient{
		response: `{"title": "Data Engineer", "company": ""}`,
	}
	in := New(client, false, nil)

	_, err := in.FromText(context.Background(), "some text", "")
	assert.ErrorIs(t, err, ErrIncompleteRecord)
}

func TestFromText_SchemaViolationFails(t *testing.T) {
	client := &mockClient{
		response: `{"title": "Data Engineer"}`,
	}
	in := New(client, false, nil)

	_, err := in.FromText(context.Background(), "some text", "")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestFromText_ModelErrorWrapped(t *testing.T) {
	client := &mockClient{err: errors.New("quota exhausted")}
	in := New(client, false, nil)

	_, err := in.FromText(context.Background(), "some text", "")
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestFromText_FencedResponseAccepted(t *testing.T) {
	client := &mockClient{
		response: "```json\n{\"title\": \"QA Analyst\", \"company\": \"Globex\"}\n```",
	}
	in := New(client, false, nil)

	job, err := in.FromText(context.Background(), "QA Analyst role at Globex", "")
	require.NoError(t, err)
	assert.Equal(t, "Globex", job.Company)
}

func TestFromText_EmptyTextRejected(t *testing.T) {
	in := New(&mockClient{}, false, nil)

	_, err := in.FromText(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrIncompleteRecord)
}
