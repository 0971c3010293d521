package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePullRequestStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    PullRequestStatus
		wantErr bool
	}{
		{"open", PullRequestOpen, false},
		{"OPEN", PullRequestOpen, false},
		{" Closed ", PullRequestClosed, false},
		{"merged", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePullRequestStatus(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPullRequestStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPullRequest_HasSource(t *testing.T) {
	pr := &PullRequest{
		ID: "7",
		Targets: []Target{
			{Source: "refs/heads/feature/12_foo", Destination: "refs/heads/develop"},
		},
	}

	assert.True(t, pr.HasSource("feature/12_foo"))
	assert.False(t, pr.HasSource("feature/13_bar"))
	assert.Equal(t, "feature/12_foo", pr.SourceBranch())
	assert.Equal(t, "develop", pr.Targets[0].DestinationBranch())
}

func TestPullRequest_SourceBranch_NoTargets(t *testing.T) {
	pr := &PullRequest{ID: "1"}
	assert.Empty(t, pr.SourceBranch())
}

func TestPullRequest_MarkdownLink(t *testing.T) {
	pr := &PullRequest{ID: "3", Title: "Add login"}
	assert.Equal(t, "[3: Add login](https://x)", pr.MarkdownLink("https://x"))
}
