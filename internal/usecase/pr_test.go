package usecase

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type prFixture struct {
	git      *testutil.MockGit
	aws      *testutil.MockCodeCommit
	tickets  *testutil.MockTicketService
	configs  *testutil.MockConfigStore
	prompter *testutil.MockPrompter
	progress *testutil.MockProgress
	browser  *testutil.MockBrowser
	notifier *testutil.MockNotifier
	gen      *testutil.MockTextGenerator
	stdout   *bytes.Buffer
}

func newPRFixture(branch string) *prFixture {
	return &prFixture{
		git:     testutil.NewMockGit(branch),
		aws:     testutil.NewMockCodeCommit(),
		tickets: ticketsWith(newStory(115068, "Translate report")),
		configs: &testutil.MockConfigStore{Config: &domain.Config{
			ARN:             "arn:aws:sts::123456789012:assumed-role/dev/jane",
			PRName:          "Jane Doe",
			PREmail:         "jane@acme.io",
			AIAPIKey:        "gsk",
			SlackUserID:     "U1",
			SlackWebhookURL: "https://hooks.slack.com/x",
			Reviewers:       []domain.Reviewer{{Name: "Bob", SlackID: "U2"}, {Name: "Eve", SlackID: "U3"}},
		}},
		prompter: testutil.NewMockPrompter(),
		progress: &testutil.MockProgress{},
		browser:  &testutil.MockBrowser{},
		notifier: &testutil.MockNotifier{},
		gen:      &testutil.MockTextGenerator{Response: "Translates the payout report."},
		stdout:   &bytes.Buffer{},
	}
}

func (f *prFixture) deps() PullRequestDeps {
	return PullRequestDeps{
		Git:      f.git,
		AWS:      f.aws,
		Tickets:  f.tickets,
		Configs:  f.configs,
		Projects: &testutil.MockProjectConfigStore{},
		Prompter: f.prompter,
		Progress: f.progress,
		Browser:  f.browser,
		Notifier: f.notifier,
		NewAI:    f.gen.Factory(nil, nil),
	}
}

func openPR(id, branch string) *domain.PullRequest {
	return &domain.PullRequest{
		ID:          id,
		Title:       "Translate report",
		Description: "See: https://acme.tpondemand.com/entity/115068",
		Status:      domain.PullRequestOpen,
		AuthorARN:   "arn:aws:sts::123456789012:assumed-role/dev/jane",
		Targets: []domain.Target{{
			Repository:  "api",
			Source:      "refs/heads/" + branch,
			Destination: "refs/heads/develop",
		}},
	}
}

func TestCreatePullRequest_Execute(t *testing.T) {
	t.Run("ticket branch uses ticket title and link", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.prompter.Confirms["Do you confirm?"] = true
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		out, err := uc.Execute(context.Background(), CreatePullRequestInput{Copy: true})

		// Assert
		require.NoError(t, err)
		require.NotNil(t, f.aws.Created)
		assert.Equal(t, domain.CreatePullRequestInput{
			Repository:  "api",
			Title:       "Translate report",
			Description: "See: https://acme.tpondemand.com/entity/115068",
			Source:      storyBranch,
			Destination: "develop",
		}, *f.aws.Created)
		assert.Equal(t, "https://eu-west-1.console.aws.amazon.com/codesuite/codecommit/repositories/api/pull-requests/100/details", out.Link)
		assert.True(t, out.Copied)
		assert.Equal(t, []string{out.Link}, f.browser.Copied)
		assert.Contains(t, f.stdout.String(), "Check if the details below before proceding:")
		assert.Contains(t, f.stdout.String(), "Target Branch: develop")
		assert.Empty(t, f.notifier.Sent)
	})

	t.Run("declined recap aborts", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), CreatePullRequestInput{})

		// Assert
		assert.ErrorIs(t, err, domain.ErrAborted)
		assert.Nil(t, f.aws.Created)
	})

	t.Run("dry run stops after the recap", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.prompter.Confirms["Do you confirm?"] = true
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		out, err := uc.Execute(context.Background(), CreatePullRequestInput{DryRun: true})

		// Assert
		require.NoError(t, err)
		assert.Nil(t, out.PullRequest)
		assert.Nil(t, f.aws.Created)
	})

	t.Run("non ticket branch prompts", func(t *testing.T) {
		// Setup
		f := newPRFixture("hotfix")
		f.prompter.Confirms["Do you confirm?"] = true
		f.prompter.Inputs["Description:"] = "manual description"
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), CreatePullRequestInput{Base: "master"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Hotfix", f.aws.Created.Title)
		assert.Equal(t, "manual description", f.aws.Created.Description)
		assert.Equal(t, "master", f.aws.Created.Destination)
		assert.False(t, f.prompter.WasAsked("Title:"))
	})

	t.Run("empty title", func(t *testing.T) {
		// Setup
		f := newPRFixture("feature/")
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), CreatePullRequestInput{})

		// Assert
		assert.ErrorIs(t, err, domain.ErrEmptyTitle)
		assert.True(t, f.prompter.WasAsked("Title:"))
	})

	t.Run("failed ticket lookup warns and uses the branch title", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.tickets.GetErr = errors.New("401 Unauthorized")
		f.prompter.Confirms["Do you confirm?"] = true
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), CreatePullRequestInput{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Translate report type payout transactions", f.aws.Created.Title)
		assert.Contains(t, f.stdout.String(), "Warning: unable to load the ticket title: get ticket 115068: 401 Unauthorized")
		assert.False(t, f.prompter.WasAsked("Title:"))
	})

	t.Run("ai description", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.prompter.Confirms["Do you confirm?"] = true
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), CreatePullRequestInput{AI: true, AIModel: "mixtral"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Translates the payout report.\n\nSee: https://acme.tpondemand.com/entity/115068", f.aws.Created.Description)
		assert.Equal(t, "mixtral", f.gen.Requests[0].Model)
	})

	t.Run("slack notifies the selected reviewer", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.prompter.Confirms["Do you confirm?"] = true
		f.prompter.Selects["Who is your reviewer?"] = "Eve"
		uc := NewCreatePullRequest(f.deps(), f.stdout)

		// Execute
		out, err := uc.Execute(context.Background(), CreatePullRequestInput{Slack: true})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Eve", out.Reviewer.Name)
		assert.Equal(t, "https://hooks.slack.com/x", f.notifier.Webhook)
		require.Len(t, f.notifier.Sent, 1)
		assert.Equal(t, domain.PullRequestNotification{
			AuthorSlackID:   "U1",
			ReviewerSlackID: "U3",
			Repository:      "api",
			PullRequestID:   "100",
			Title:           "Translate report",
			PullRequestLink: out.Link,
			TicketLink:      "https://acme.tpondemand.com/entity/115068",
		}, f.notifier.Sent[0])
		assert.Contains(t, f.stdout.String(), "Reviewer: Eve")
		assert.Contains(t, f.progress.Results, "done: Slack message sent")
	})

	t.Run("slack preconditions are checked first", func(t *testing.T) {
		// Setup
		noSlack := newPRFixture(storyBranch)
		noSlack.configs.Config.SlackWebhookURL = ""
		noReviewers := newPRFixture(storyBranch)
		noReviewers.configs.Config.Reviewers = nil

		// Execute
		_, errSlack := NewCreatePullRequest(noSlack.deps(), noSlack.stdout).Execute(context.Background(), CreatePullRequestInput{Slack: true})
		_, errReviewers := NewCreatePullRequest(noReviewers.deps(), noReviewers.stdout).Execute(context.Background(), CreatePullRequestInput{Slack: true})

		// Assert
		assert.ErrorIs(t, errSlack, domain.ErrSlackNotConfigured)
		assert.ErrorIs(t, errReviewers, domain.ErrNoReviewers)
		assert.Empty(t, noSlack.prompter.Asked)
	})
}

func TestViewPullRequest_Execute(t *testing.T) {
	tests := []struct {
		name       string
		input      ViewPullRequestInput
		wantCopied string
		wantOpened bool
	}{
		{"print", ViewPullRequestInput{}, "", false},
		{"web", ViewPullRequestInput{Web: true}, "", true},
		{"copy", ViewPullRequestInput{Copy: true}, "https://eu-west-1.console.aws.amazon.com/codesuite/codecommit/repositories/api/pull-requests/7/details", false},
		{"copy markdown", ViewPullRequestInput{Copy: true, Markdown: true}, "[7: Translate report](https://eu-west-1.console.aws.amazon.com/codesuite/codecommit/repositories/api/pull-requests/7/details)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			f := newPRFixture(storyBranch)
			f.aws.AddPullRequest(openPR("6", "feature/other"))
			f.aws.AddPullRequest(openPR("7", storyBranch))
			uc := NewViewPullRequest(f.deps())

			// Execute
			out, err := uc.Execute(context.Background(), tt.input)

			// Assert
			require.NoError(t, err)
			assert.Equal(t, "7", out.ID)
			assert.Equal(t, "OPEN", out.Status)
			assert.Equal(t, tt.wantCopied, out.Copied)
			assert.Equal(t, tt.wantOpened, out.Opened)
			assert.Equal(t, []string{"api OPEN "}, f.aws.ListCalls)
		})
	}

	t.Run("by id", func(t *testing.T) {
		// Setup
		f := newPRFixture("develop")
		f.aws.AddPullRequest(openPR("9", "feature/x"))
		uc := NewViewPullRequest(f.deps())

		// Execute
		out, err := uc.Execute(context.Background(), ViewPullRequestInput{ID: "9"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "9", out.ID)
		assert.Empty(t, f.aws.ListCalls)
	})

	t.Run("no pull request for branch", func(t *testing.T) {
		// Setup
		f := newPRFixture("develop")
		f.aws.AddPullRequest(openPR("9", "feature/x"))
		uc := NewViewPullRequest(f.deps())

		// Execute
		_, err := uc.Execute(context.Background(), ViewPullRequestInput{})

		// Assert
		assert.ErrorIs(t, err, domain.ErrPullRequestNotFound)
	})
}

func TestMergePullRequest_Execute(t *testing.T) {
	t.Run("squashes, deletes the branch and stages the story", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.aws.AddPullRequest(openPR("7", storyBranch))
		f.git.ConfigValues["user.name"] = "Jane Git"
		f.prompter.Confirms["Are the info above correct?"] = true
		f.prompter.Confirms["Confirm?"] = true
		f.prompter.Inputs["Commit Message"] = "feat(115068): translate report"
		uc := NewMergePullRequest(f.deps(), f.stdout)

		// Execute
		out, err := uc.Execute(context.Background(), MergePullRequestInput{})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, domain.MergeInput{
			PullRequestID: "7",
			Repository:    "api",
			CommitMessage: "feat(115068): translate report",
			AuthorName:    "Jane Git",
			AuthorEmail:   "jane@acme.io",
		}, *f.aws.Merged)
		assert.True(t, out.BranchDeleted)
		assert.Equal(t, TicketStatusUpdated, out.TicketStatus)
		assert.Equal(t, []string{"push origin --delete " + storyBranch, "fetch --prune"}, f.git.Calls)
		assert.Equal(t, domain.EntityStateInStaging, f.tickets.States[115068])
		assert.Equal(t, "Squashing 7...", f.progress.Started[0])

		printed := f.stdout.String()
		assert.Contains(t, printed, "Found 1 matching PR")
		assert.Contains(t, printed, "[7] Translate report")
		assert.Contains(t, printed, "From: "+storyBranch)
		assert.Contains(t, printed, "To:   develop")
	})

	t.Run("commit message defaults to the description", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.aws.AddPullRequest(openPR("7", storyBranch))
		f.prompter.Confirms["Are the info above correct?"] = true
		f.prompter.Confirms["Confirm?"] = true
		f.prompter.Confirms["Delete remote branch?"] = false
		uc := NewMergePullRequest(f.deps(), f.stdout)

		// Execute
		out, err := uc.Execute(context.Background(), MergePullRequestInput{AuthorName: "Flag Name"})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "See: https://acme.tpondemand.com/entity/115068", f.aws.Merged.CommitMessage)
		assert.Equal(t, "Flag Name", f.aws.Merged.AuthorName)
		assert.False(t, out.BranchDeleted)
		assert.Empty(t, f.git.Calls)
	})

	t.Run("declined confirmations abort", func(t *testing.T) {
		for _, declined := range []string{"Are the info above correct?", "Confirm?"} {
			// Setup
			f := newPRFixture(storyBranch)
			f.aws.AddPullRequest(openPR("7", storyBranch))
			f.prompter.Confirms["Are the info above correct?"] = true
			f.prompter.Confirms["Confirm?"] = true
			f.prompter.Confirms[declined] = false
			uc := NewMergePullRequest(f.deps(), f.stdout)

			// Execute
			_, err := uc.Execute(context.Background(), MergePullRequestInput{})

			// Assert
			assert.ErrorIs(t, err, domain.ErrAborted, declined)
			assert.Nil(t, f.aws.Merged, declined)
		}
	})

	t.Run("ticket status outcomes", func(t *testing.T) {
		tests := []struct {
			name   string
			branch string
			want   string
			result string
		}{
			{"bug is skipped", "feature/42_crash", TicketStatusSkipped, "skip: Skipped"},
			{"no ticket id", "hotfix/login", TicketStatusFailed, "fail: Failed to update ticket status"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				// Setup
				f := newPRFixture(tt.branch)
				f.tickets.AddTicket(newBug(42, "Crash"))
				f.aws.AddPullRequest(openPR("7", tt.branch))
				f.prompter.Confirms["Are the info above correct?"] = true
				f.prompter.Confirms["Confirm?"] = true
				uc := NewMergePullRequest(f.deps(), f.stdout)

				// Execute
				out, err := uc.Execute(context.Background(), MergePullRequestInput{})

				// Assert
				require.NoError(t, err)
				assert.Equal(t, tt.want, out.TicketStatus)
				assert.Contains(t, f.progress.Results, tt.result)
			})
		}
	})

	t.Run("merge failure", func(t *testing.T) {
		// Setup
		f := newPRFixture(storyBranch)
		f.aws.AddPullRequest(openPR("7", storyBranch))
		f.aws.MergeErr = errors.New("conflict")
		f.prompter.Confirms["Are the info above correct?"] = true
		f.prompter.Confirms["Confirm?"] = true
		uc := NewMergePullRequest(f.deps(), f.stdout)

		// Execute
		_, err := uc.Execute(context.Background(), MergePullRequestInput{})

		// Assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "conflict")
		assert.Contains(t, f.progress.Results, "fail: Merge failed")
		assert.Empty(t, f.git.Calls)
	})
}

func TestListPullRequests_Execute(t *testing.T) {
	t.Run("lists the caller's pull requests in order", func(t *testing.T) {
		// Setup
		f := newPRFixture("develop")
		for _, id := range []string{"3", "1", "2"} {
			f.aws.AddPullRequest(openPR(id, "feature/"+id+"_x"))
		}
		uc := NewListPullRequests(f.deps())

		// Execute
		out, err := uc.Execute(context.Background(), ListPullRequestsInput{})

		// Assert
		require.NoError(t, err)
		require.Len(t, out.Items, 3)
		for i, id := range []string{"3", "1", "2"} {
			assert.Equal(t, id, out.Items[i].PullRequest.ID)
		}
		assert.Equal(t, "https://eu-west-1.console.aws.amazon.com/codesuite/codecommit/repositories/api/pull-requests/3/details", out.Items[0].Link)
		assert.Equal(t, []string{"api OPEN arn:aws:sts::123456789012:assumed-role/dev/jane"}, f.aws.ListCalls)
	})

	t.Run("status filter", func(t *testing.T) {
		// Setup
		f := newPRFixture("develop")
		closed := openPR("4", "feature/4_x")
		closed.Status = domain.PullRequestClosed
		f.aws.AddPullRequest(closed)
		f.aws.AddPullRequest(openPR("5", "feature/5_x"))
		uc := NewListPullRequests(f.deps())

		// Execute
		out, err := uc.Execute(context.Background(), ListPullRequestsInput{Status: domain.PullRequestClosed})

		// Assert
		require.NoError(t, err)
		require.Len(t, out.Items, 1)
		assert.Equal(t, "4", out.Items[0].PullRequest.ID)
	})

	t.Run("unloadable pull requests are skipped", func(t *testing.T) {
		// Setup
		f := newPRFixture("develop")
		f.aws.ListIDs = []string{"404"}
		uc := NewListPullRequests(f.deps())

		// Execute
		out, err := uc.Execute(context.Background(), ListPullRequestsInput{})

		// Assert
		require.NoError(t, err)
		assert.Empty(t, out.Items)
	})
}
