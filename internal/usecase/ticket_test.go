package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewTicket_Execute(t *testing.T) {
	t.Run("resolves the id from the current branch", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newStory(115068, "Translate report"))
		browser := &testutil.MockBrowser{}
		uc := NewViewTicket(testutil.NewMockGit(storyBranch), tickets, browser)

		// Execute
		out, err := uc.Execute(context.Background(), ViewTicketInput{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 115068, out.Ticket.ID)
		assert.Equal(t, "https://acme.tpondemand.com/entity/115068", out.Link)
		assert.False(t, out.Opened)
		assert.Empty(t, browser.Opened)
	})

	t.Run("opens the link with web", func(t *testing.T) {
		// Setup
		browser := &testutil.MockBrowser{}
		uc := NewViewTicket(testutil.NewMockGit("develop"), ticketsWith(newBug(42, "Crash")), browser)

		// Execute
		out, err := uc.Execute(context.Background(), ViewTicketInput{IDOrURL: "https://acme.tpondemand.com/entity/42-crash", Web: true})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Opened)
		assert.Equal(t, []string{"https://acme.tpondemand.com/entity/42"}, browser.Opened)
	})

	t.Run("not a ticket branch", func(t *testing.T) {
		// Setup
		uc := NewViewTicket(testutil.NewMockGit("develop"), ticketsWith(), &testutil.MockBrowser{})

		// Execute
		_, err := uc.Execute(context.Background(), ViewTicketInput{})

		// Assert
		assert.ErrorIs(t, err, domain.ErrTicketIDNotFound)
	})

	t.Run("targetprocess not configured", func(t *testing.T) {
		// Setup
		uc := NewViewTicket(testutil.NewMockGit(storyBranch), nil, &testutil.MockBrowser{})

		// Execute
		_, err := uc.Execute(context.Background(), ViewTicketInput{})

		// Assert
		assert.ErrorIs(t, err, domain.ErrTargetProcessNotConfigured)
	})
}

func newStartTicket(git *testutil.MockGit, tickets domain.TicketService, prompter *testutil.MockPrompter) *StartTicket {
	configs := &testutil.MockConfigStore{Config: &domain.Config{UserID: 7}}
	projects := &testutil.MockProjectConfigStore{Config: &domain.ProjectConfig{Name: "API"}}
	return NewStartTicket(git, tickets, configs, projects, prompter, nil)
}

func TestStartTicket_Execute(t *testing.T) {
	t.Run("assigns, moves to in progress and starts the feature", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit("develop")
		tickets := ticketsWith(newStory(120890, "Add payout (v2) report"))
		uc := newStartTicket(git, tickets, testutil.NewMockPrompter())

		// Execute
		out, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "120890"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "120890_add_payout_v2_report", out.Branch)
		assert.True(t, out.Assigned)
		assert.True(t, out.Started)
		assert.Equal(t, [][2]int{{120890, 7}}, tickets.Assigned)
		assert.Equal(t, domain.EntityStateInProgress, tickets.States[120890])
		assert.Equal(t, []string{"flow feature start 120890_add_payout_v2_report"}, git.Calls)
	})

	t.Run("bugs keep their state", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newBug(42, "Crash"))
		uc := newStartTicket(testutil.NewMockGit("develop"), tickets, testutil.NewMockPrompter())

		// Execute
		_, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "42", NoGit: true})

		// Assert
		require.NoError(t, err)
		assert.Len(t, tickets.Assigned, 1)
		assert.Empty(t, tickets.States)
	})

	t.Run("branch override and no assign", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit("develop")
		tickets := ticketsWith(newStory(1, "x"))
		uc := newStartTicket(git, tickets, testutil.NewMockPrompter())

		// Execute
		out, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "1", Branch: "custom", NoAssign: true})

		// Assert
		require.NoError(t, err)
		assert.False(t, out.Assigned)
		assert.Empty(t, tickets.Assigned)
		assert.Equal(t, []string{"flow feature start custom"}, git.Calls)
	})

	t.Run("dry run changes nothing", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit("develop")
		tickets := ticketsWith(newStory(1, "x"))
		uc := newStartTicket(git, tickets, testutil.NewMockPrompter())

		// Execute
		out, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "1", DryRun: true})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "1_x", out.Branch)
		assert.Empty(t, tickets.Assigned)
		assert.Empty(t, git.Calls)
	})

	t.Run("picks from the sprint when no id is given", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newStory(10, "First"), newStory(11, "Second"))
		inProgress := *newStory(12, "Busy")
		inProgress.EntityState = domain.NamedRef{ID: 75}
		tickets.Sprint = []domain.Ticket{*newStory(10, "First"), inProgress, *newStory(11, "Second"), *newStory(13, "Second")}
		prompter := testutil.NewMockPrompter()
		prompter.Selects["Pick a user story from the list:"] = "Second"
		uc := newStartTicket(testutil.NewMockGit("develop"), tickets, prompter)

		// Execute
		out, err := uc.Execute(context.Background(), StartTicketInput{NoGit: true})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 11, out.Ticket.ID)
		assert.Equal(t, []string{"First", "Second"}, prompter.Options["Pick a user story from the list:"])
	})

	t.Run("empty sprint stops without further calls", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit("develop")
		tickets := ticketsWith()
		prompter := testutil.NewMockPrompter()
		uc := newStartTicket(git, tickets, prompter)

		// Execute
		out, err := uc.Execute(context.Background(), StartTicketInput{})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.NoTickets)
		assert.Nil(t, out.Ticket)
		assert.Equal(t, 1, tickets.SprintCalls)
		assert.Zero(t, tickets.GetCalls)
		assert.Empty(t, tickets.Assigned)
		assert.Empty(t, git.Calls)
		assert.Empty(t, prompter.Asked)
	})

	t.Run("project flag used without tpaws.json", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newStory(1, "x"))
		uc := NewStartTicket(testutil.NewMockGit("develop"), tickets,
			&testutil.MockConfigStore{Config: &domain.Config{}}, &testutil.MockProjectConfigStore{},
			testutil.NewMockPrompter(), nil)

		// Execute
		_, errNoProject := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "1"})
		out, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "1", Project: "API", NoGit: true})

		// Assert
		assert.ErrorIs(t, errNoProject, domain.ErrProjectNotResolved)
		require.NoError(t, err)
		assert.True(t, out.Assigned)
	})

	t.Run("targetprocess not configured", func(t *testing.T) {
		// Setup
		uc := newStartTicket(testutil.NewMockGit("develop"), nil, testutil.NewMockPrompter())

		// Execute
		_, err := uc.Execute(context.Background(), StartTicketInput{IDOrURL: "1"})

		// Assert
		assert.ErrorIs(t, err, domain.ErrTargetProcessNotConfigured)
	})
}

func TestFinishTicket_Execute(t *testing.T) {
	t.Run("finishes the current feature and stages the story", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit(storyBranch)
		tickets := ticketsWith(newStory(115068, "Translate report type (payout transactions)"))
		uc := NewFinishTicket(git, tickets, nil)

		// Execute
		out, err := uc.Execute(context.Background(), FinishTicketInput{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "115068_translate_report_type_payout_transactions", out.Feature)
		assert.True(t, out.Finished)
		assert.True(t, out.Staged)
		assert.Equal(t, []string{"flow feature finish 115068_translate_report_type_payout_transactions"}, git.Calls)
		assert.Equal(t, domain.EntityStateInStaging, tickets.States[115068])
	})

	t.Run("state failure is a warning", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newStory(1, "x"))
		tickets.StateErr = errors.New("forbidden")
		uc := NewFinishTicket(testutil.NewMockGit("develop"), tickets, nil)

		// Execute
		out, err := uc.Execute(context.Background(), FinishTicketInput{IDOrURL: "1"})

		// Assert
		require.NoError(t, err)
		assert.True(t, out.Finished)
		assert.False(t, out.Staged)
		assert.Equal(t, "forbidden", out.StateUpdate)
	})

	t.Run("bugs and no-status skip the state change", func(t *testing.T) {
		// Setup
		tickets := ticketsWith(newBug(2, "y"), newStory(3, "z"))
		uc := NewFinishTicket(testutil.NewMockGit("develop"), tickets, nil)

		// Execute
		_, errBug := uc.Execute(context.Background(), FinishTicketInput{IDOrURL: "2", NoGit: true})
		_, errStory := uc.Execute(context.Background(), FinishTicketInput{IDOrURL: "3", NoGit: true, NoStatus: true})

		// Assert
		require.NoError(t, errBug)
		require.NoError(t, errStory)
		assert.Empty(t, tickets.States)
	})

	t.Run("git flow failure", func(t *testing.T) {
		// Setup
		git := testutil.NewMockGit("develop")
		git.FeatureErr = errors.New("not a feature branch")
		uc := NewFinishTicket(git, ticketsWith(newStory(1, "x")), nil)

		// Execute
		_, err := uc.Execute(context.Background(), FinishTicketInput{IDOrURL: "1"})

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "finish feature")
	})
}

func TestLookupTicket_Execute(t *testing.T) {
	tests := []struct {
		name     string
		tickets  func() domain.TicketService
		projects *testutil.MockProjectConfigStore
		input    LookupTicketInput
		want     string
		wantErr  error
	}{
		{
			name:    "id from branch without service",
			tickets: func() domain.TicketService { return nil },
			input:   LookupTicketInput{Field: TicketFieldID},
			want:    "115068",
		},
		{
			name:    "id from url",
			tickets: func() domain.TicketService { return nil },
			input:   LookupTicketInput{IDOrURL: "https://acme.tpondemand.com/entity/99-x", Field: TicketFieldID},
			want:    "99",
		},
		{
			name:    "link",
			tickets: func() domain.TicketService { return ticketsWith() },
			input:   LookupTicketInput{IDOrURL: "5", Field: TicketFieldLink},
			want:    "https://acme.tpondemand.com/entity/5",
		},
		{
			name:    "link needs targetprocess",
			tickets: func() domain.TicketService { return nil },
			input:   LookupTicketInput{IDOrURL: "5", Field: TicketFieldLink},
			wantErr: domain.ErrTargetProcessNotConfigured,
		},
		{
			name:    "branch",
			tickets: func() domain.TicketService { return ticketsWith(newStory(5, "Fix: the (login) page")) },
			input:   LookupTicketInput{IDOrURL: "5", Field: TicketFieldBranch},
			want:    "5_fix_the_login_page",
		},
		{
			name:    "project from ticket",
			tickets: func() domain.TicketService { return ticketsWith(newStory(5, "x")) },
			input:   LookupTicketInput{IDOrURL: "5", Field: TicketFieldProject},
			want:    "API",
		},
		{
			name:     "project from tpaws.json",
			tickets:  func() domain.TicketService { return ticketsWith(newBug(6, "x")) },
			projects: &testutil.MockProjectConfigStore{Config: &domain.ProjectConfig{Name: "Web"}},
			input:    LookupTicketInput{IDOrURL: "6", Field: TicketFieldProject},
			want:     "Web",
		},
		{
			name:    "project unresolved",
			tickets: func() domain.TicketService { return ticketsWith(newBug(6, "x")) },
			input:   LookupTicketInput{IDOrURL: "6", Field: TicketFieldProject},
			wantErr: domain.ErrProjectNotResolved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			projects := tt.projects
			if projects == nil {
				projects = &testutil.MockProjectConfigStore{}
			}
			uc := NewLookupTicket(testutil.NewMockGit(storyBranch), tt.tickets(), projects)

			// Execute
			out, err := uc.Execute(context.Background(), tt.input)

			// Assert
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.Value)
		})
	}
}
