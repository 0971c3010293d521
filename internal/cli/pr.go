package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tpaws/internal/app"
	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/render"
	"github.com/runoshun/tpaws/internal/usecase"
)

// newPRCommand creates the pr command.
func newPRCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "pr",
		Short:       "Manage AWS CodeCommit pull requests",
		Annotations: annotate(annotationRepo, annotationAWS, annotationAuth),
	}

	cmd.AddCommand(
		newPRCreateCommand(c),
		newPRViewCommand(c),
		newPRMergeCommand(c),
		newPRListCommand(c),
	)
	return cmd
}

// newPRCreateCommand creates the pr create subcommand.
func newPRCreateCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Title       string
		Description string
		Base        string
		AIModel     string
		Slack       bool
		Copy        bool
		AI          bool
	}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a pull request for the current branch",
		Long: `Open a pull request from the current branch.

The title defaults to the ticket name of a feature/<id>_<name> branch,
then to the branch name. The description defaults to a link to the
ticket; with --ai it is drafted from the ticket by the AI provider.

Examples:
  # Open a PR against develop and ping a reviewer on Slack
  tpaws pr create --slack

  # Open a PR against master with an AI description
  tpaws pr create --base master --ai`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.CreatePullRequestUseCase(cmd.OutOrStdout()).Execute(cmd.Context(), usecase.CreatePullRequestInput{
				Profile:     c.Options.Profile,
				Title:       opts.Title,
				Description: opts.Description,
				Base:        opts.Base,
				AIModel:     opts.AIModel,
				Slack:       opts.Slack,
				Copy:        opts.Copy,
				AI:          opts.AI,
				DryRun:      c.Options.DryRun,
			})
			if err != nil {
				return err
			}
			if out.Copied {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Link copied to the clipboard")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Title, "title", "t", "", "Pull request title")
	cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Pull request description")
	cmd.Flags().StringVarP(&opts.Base, "base", "b", domain.DefaultBaseBranch, "Destination branch")
	cmd.Flags().StringVar(&opts.AIModel, "ai-model", "", "AI model (default: config ai_model)")
	cmd.Flags().BoolVar(&opts.Slack, "slack", false, "Ask a reviewer on Slack")
	cmd.Flags().BoolVarP(&opts.Copy, "copy", "c", false, "Copy the link to the clipboard")
	cmd.Flags().BoolVar(&opts.AI, "ai", false, "Draft the description with AI")
	return cmd
}

// newPRViewCommand creates the pr view subcommand.
func newPRViewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Web      bool
		Copy     bool
		Markdown bool
	}

	cmd := &cobra.Command{
		Use:   "view [id]",
		Short: "Display the pull request of the current branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ViewPullRequestUseCase().Execute(cmd.Context(), usecase.ViewPullRequestInput{
				Profile:  c.Options.Profile,
				ID:       argOrEmpty(args),
				Web:      opts.Web,
				Copy:     opts.Copy,
				Markdown: opts.Markdown,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case out.Copied != "":
				_, _ = fmt.Fprintf(w, "Copied %s\n", out.Copied)
			case out.Opened:
			default:
				styles := render.DefaultStyles()
				status := render.StatusStyle(domain.PullRequestStatus(out.Status)).Render(out.Status)
				_, _ = fmt.Fprintf(w, "[%s] %s - (%s)\n", out.ID, styles.Title.Render(out.Title), status)
				_, _ = fmt.Fprintln(w, styles.Link.Render(out.Link))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&opts.Web, "web", "w", false, "Open the pull request in the browser")
	cmd.Flags().BoolVarP(&opts.Copy, "copy", "c", false, "Copy the link to the clipboard")
	cmd.Flags().BoolVarP(&opts.Markdown, "markdown", "m", false, "Copy a markdown link ([id: title](link))")
	return cmd
}

// newPRMergeCommand creates the pr merge subcommand.
func newPRMergeCommand(c *app.Container) *cobra.Command {
	var opts struct {
		AuthorName    string
		AuthorEmail   string
		CommitMessage string
	}

	cmd := &cobra.Command{
		Use:   "merge [id]",
		Short: "Squash-merge the pull request of the current branch",
		Long: `Squash-merge a pull request, optionally delete its source branch and
move the ticket of a user story branch to In Staging.

The author defaults to git config user.name/user.email, then to the
flags, then to pr_name/pr_email from the config.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.MergePullRequestUseCase(cmd.OutOrStdout()).Execute(cmd.Context(), usecase.MergePullRequestInput{
				Profile:       c.Options.Profile,
				ID:            argOrEmpty(args),
				AuthorName:    opts.AuthorName,
				AuthorEmail:   opts.AuthorEmail,
				CommitMessage: opts.CommitMessage,
				DryRun:        c.Options.DryRun,
			})
			if err != nil {
				return err
			}
			if c.Options.DryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Would merge %s\n", out.PullRequest.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.AuthorName, "author-name", "", "Squash commit author name")
	cmd.Flags().StringVar(&opts.AuthorEmail, "author-email", "", "Squash commit author email")
	cmd.Flags().StringVarP(&opts.CommitMessage, "commit-message", "m", "", "Squash commit message (default: PR description)")
	return cmd
}

// newPRListCommand creates the pr list subcommand.
func newPRListCommand(c *app.Container) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your pull requests",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := domain.ParsePullRequestStatus(status)
			if err != nil {
				return err
			}
			out, err := c.ListPullRequestsUseCase().Execute(cmd.Context(), usecase.ListPullRequestsInput{
				Profile: c.Options.Profile,
				Status:  st,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Items) == 0 {
				_, _ = fmt.Fprintln(w, "No pull requests found")
				return nil
			}
			styles := render.DefaultStyles()
			for _, item := range out.Items {
				pr := item.PullRequest
				label := render.StatusStyle(pr.Status).Render("[" + string(pr.Status) + "]")
				_, _ = fmt.Fprintf(w, "%s %s - %s\n", label, pr.ID, pr.Title)
				_, _ = fmt.Fprintln(w, styles.Link.Render(item.Link))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "open", "Pull request status (open or closed)")
	return cmd
}
