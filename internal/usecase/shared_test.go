package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storyBranch = "feature/115068_translate_report_type_payout_transactions"

func newStory(id int, name string) *domain.Ticket {
	return &domain.Ticket{
		ID:           id,
		Name:         name,
		ResourceType: "UserStory",
		EntityType:   domain.NamedRef{ID: 4, Name: "UserStory"},
		EntityState:  domain.NamedRef{ID: 73, Name: "Open"},
		Project:      &domain.ProjectRef{ID: 1, Name: "API", Abbreviation: "API"},
	}
}

func newBug(id int, name string) *domain.Ticket {
	return &domain.Ticket{
		ID:           id,
		Name:         name,
		ResourceType: "Bug",
		EntityType:   domain.NamedRef{ID: 8, Name: "Bug"},
		EntityState:  domain.NamedRef{ID: 74, Name: "Planned"},
	}
}

func ticketsWith(ts ...*domain.Ticket) *testutil.MockTicketService {
	s := testutil.NewMockTicketService()
	for _, t := range ts {
		s.AddTicket(t)
	}
	return s
}

func TestGrabTitle_ExplicitTitleMakesNoLookup(t *testing.T) {
	// Setup
	tickets := testutil.NewMockTicketService()

	// Execute
	title, err := GrabTitle(context.Background(), tickets, "demo", "feature/120890_abc")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "demo", title)
	assert.Zero(t, tickets.GetCalls)
}

func TestGrabTitle(t *testing.T) {
	tests := []struct {
		tickets func() domain.TicketService
		name    string
		branch  string
		want    string
	}{
		{
			name:    "ticket name when configured",
			tickets: func() domain.TicketService { return ticketsWith(newStory(115068, "Translate report")) },
			branch:  storyBranch,
			want:    "Translate report",
		},
		{
			name:    "branch title without target process",
			tickets: func() domain.TicketService { return nil },
			branch:  storyBranch,
			want:    "Translate report type payout transactions",
		},
		{
			name:    "branch title when branch has no id",
			tickets: func() domain.TicketService { return testutil.NewMockTicketService() },
			branch:  "hotfix/fix_login",
			want:    "Fix login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, err := GrabTitle(context.Background(), tt.tickets(), "", tt.branch)

			require.NoError(t, err)
			assert.Equal(t, tt.want, title)
		})
	}
}

func TestResolveTicketID(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		branch  string
		want    int
		wantErr bool
	}{
		{name: "bare id", arg: "42", want: 42},
		{name: "url", arg: "https://acme.tpondemand.com/entity/125371-show-month", want: 125371},
		{name: "current branch", branch: storyBranch, want: 115068},
		{name: "branch without id", branch: "develop", wantErr: true},
		{name: "garbage argument", arg: "not-an-id", branch: storyBranch, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := resolveTicketID(testutil.NewMockGit(tt.branch), tt.arg)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrTicketIDNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestFetchTicket_WrapsOnce(t *testing.T) {
	// Setup
	tickets := ticketsWith()
	tickets.GetErr = errors.New("GET https://acme.tpondemand.com/api/v1/Assignables/999: 404 Not Found")

	// Execute
	_, err := fetchTicket(context.Background(), tickets, 999)

	// Assert
	require.Error(t, err)
	assert.Equal(t, 1, strings.Count(err.Error(), "get ticket 999"), err.Error())
}

func TestFindPullRequest_ByBranch(t *testing.T) {
	// Setup
	cc := testutil.NewMockCodeCommit()
	cc.AddPullRequest(&domain.PullRequest{ID: "1", Status: domain.PullRequestOpen, Targets: []domain.Target{{Source: "refs/heads/feature/other"}}})
	cc.AddPullRequest(&domain.PullRequest{ID: "2", Status: domain.PullRequestOpen, Targets: []domain.Target{{Source: "refs/heads/" + storyBranch}}})

	// Execute
	pr, err := findPullRequest(context.Background(), cc, "default", "api", storyBranch, "")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "2", pr.ID)
}

func TestFindPullRequest_NotFound(t *testing.T) {
	cc := testutil.NewMockCodeCommit()
	cc.AddPullRequest(&domain.PullRequest{ID: "1", Status: domain.PullRequestOpen, Targets: []domain.Target{{Source: "refs/heads/feature/other"}}})

	_, err := findPullRequest(context.Background(), cc, "default", "api", storyBranch, "")

	assert.ErrorIs(t, err, domain.ErrPullRequestNotFound)
}

func TestEnsureAuth(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-time.Hour)
	stale := now.Add(-9 * time.Hour)

	tests := []struct {
		lastAuth      *time.Time
		name          string
		arn           string
		wantRefreshed bool
	}{
		{name: "fresh session", lastAuth: &recent, arn: "arn:old", wantRefreshed: false},
		{name: "expired session", lastAuth: &stale, arn: "arn:old", wantRefreshed: true},
		{name: "never logged in", wantRefreshed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			configs := &testutil.MockConfigStore{Config: &domain.Config{LastAuth: tt.lastAuth, ARN: tt.arn}}
			cc := testutil.NewMockCodeCommit()
			uc := NewEnsureAuth(configs, cc, &testutil.MockClock{NowTime: now})

			// Execute
			out, err := uc.Execute(context.Background(), EnsureAuthInput{Profile: "default"})

			// Assert
			require.NoError(t, err)
			assert.Equal(t, tt.wantRefreshed, out.Refreshed)
			assert.Equal(t, tt.wantRefreshed, cc.LoginCalled)
			if tt.wantRefreshed {
				require.NotNil(t, configs.Saved)
				assert.Equal(t, cc.Identity.ARN, configs.Saved.ARN)
				assert.True(t, now.Equal(*configs.Saved.LastAuth))
			} else {
				assert.Nil(t, configs.Saved)
			}
		})
	}
}
