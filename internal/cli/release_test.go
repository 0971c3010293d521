package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tpaws/internal/domain"
)

func TestReleaseStart(t *testing.T) {
	t.Run("bumps the version", func(t *testing.T) {
		// Setup
		f := newFixture("develop")

		// Execute
		out, err := f.run("release", "start", "minor")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "version bumped from 1.4.2 to: 1.5.0\n", out)
		assert.Equal(t, []string{"flow release start 1.5.0", "commit -m 1.5.0 -- package.json"}, f.git.Calls)
	})

	t.Run("invalid kind", func(t *testing.T) {
		f := newFixture("develop")
		_, err := f.run("release", "start", "huge")
		assert.ErrorIs(t, err, domain.ErrInvalidReleaseKind)
		assert.Empty(t, f.git.Calls)
	})
}

func TestReleasePush(t *testing.T) {
	t.Run("dry run", func(t *testing.T) {
		// Setup
		f := newFixture("release/1.5.0")
		f.projects.Config = &domain.ProjectConfig{ProdBranch: "main"}
		f.prompter.Confirms["Force push HEAD to [staging main]?"] = true

		// Execute
		out, err := f.run("--dry-run", "release", "push", "all")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Would push HEAD to staging (staging)\nWould push HEAD to main (prod)\n", out)
		assert.Empty(t, f.git.Calls)
	})

	t.Run("pipeline state", func(t *testing.T) {
		// Setup
		f := newFixture("release/1.5.0")
		f.projects.Config = &domain.ProjectConfig{Pipeline: "api-pipeline"}
		f.prompter.Confirms["Force push HEAD to [prod]?"] = true
		f.aws.Stages = []domain.PipelineStage{{Name: "Deploy", Status: "InProgress"}}

		// Execute
		out, err := f.run("release", "push", "prod")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []string{"push --force origin HEAD:prod"}, f.git.Calls)
		assert.Contains(t, out, "api-pipeline")
		assert.Contains(t, out, "InProgress")
	})

	t.Run("aws cli missing", func(t *testing.T) {
		f := newFixture("release/1.5.0")
		f.aws.NotInstalled = true
		_, err := f.run("release", "push", "prod")
		assert.ErrorIs(t, err, ErrStopped)
		assert.Empty(t, f.git.Calls)
	})
}

func TestReleaseFinish(t *testing.T) {
	// Setup
	f := newFixture("release/1.5.0")

	// Execute
	out, err := f.run("release", "finish")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Released 1.5.0\n", out)
	assert.Equal(t, "flow release finish 1.5.0", f.git.Calls[0])
}
