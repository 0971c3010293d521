package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/prompt"
	"github.com/runoshun/tpaws/internal/testutil"
)

func TestNewWithDeps_Defaults(t *testing.T) {
	c := NewWithDeps(Container{})

	assert.NotNil(t, c.Clock)
	assert.NotNil(t, c.Logger)
	assert.Nil(t, c.Tickets)
	assert.NoError(t, c.Close())
}

func TestReloadTickets(t *testing.T) {
	tests := []struct {
		cfg       *domain.Config
		name      string
		wantBuilt bool
	}{
		{name: "no config", cfg: nil, wantBuilt: false},
		{name: "missing token", cfg: &domain.Config{TPURL: "https://acme.tpondemand.com"}, wantBuilt: false},
		{name: "configured", cfg: &domain.Config{TPURL: "https://acme.tpondemand.com", TPToken: "tok"}, wantBuilt: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			var gotURL, gotToken string
			svc := testutil.NewMockTicketService()
			c := NewWithDeps(Container{
				Configs: &testutil.MockConfigStore{Config: tt.cfg},
				NewTickets: func(baseURL, token string) domain.TicketService {
					gotURL, gotToken = baseURL, token
					return svc
				},
			})

			// Execute
			c.ReloadTickets()

			// Assert
			if !tt.wantBuilt {
				assert.Nil(t, c.Tickets)
				return
			}
			require.NotNil(t, c.Tickets)
			assert.Equal(t, tt.cfg.TPURL, gotURL)
			assert.Equal(t, tt.cfg.TPToken, gotToken)
		})
	}
}

func TestReloadTickets_KeepsInjectedService(t *testing.T) {
	svc := testutil.NewMockTicketService()
	c := NewWithDeps(Container{Tickets: svc, Configs: &testutil.MockConfigStore{}})

	c.ReloadTickets()

	assert.Same(t, svc, c.Tickets)
}

func TestApplyOptions(t *testing.T) {
	// Setup
	p := prompt.New(false)
	c := NewWithDeps(Container{Prompter: p, Options: Options{Debug: true}})

	// Execute
	c.ApplyOptions(Options{Profile: "dev", Quiet: true})

	// Assert
	assert.True(t, p.Quiet())
	assert.True(t, c.Options.Debug)
	assert.Equal(t, "dev", c.Options.Profile)
}

func TestRequireRepo(t *testing.T) {
	assert.NoError(t, NewWithDeps(Container{}).RequireRepo())
	assert.ErrorIs(t, NewWithDeps(Container{RepoErr: domain.ErrNotGitRepository}).RequireRepo(), domain.ErrNotGitRepository)
}

func TestPullRequestDeps(t *testing.T) {
	git := testutil.NewMockGit("develop")
	aws := testutil.NewMockCodeCommit()
	c := NewWithDeps(Container{Git: git, AWS: aws})

	deps := c.PullRequestDeps()

	assert.Same(t, git, deps.Git)
	assert.Same(t, aws, deps.AWS)
	assert.Same(t, c.Logger, deps.Logger)
}
