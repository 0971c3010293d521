package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runoshun/tpaws/internal/app"
	"github.com/runoshun/tpaws/internal/infra/render"
	"github.com/runoshun/tpaws/internal/usecase"
)

// newTicketCommand creates the ticket command.
func newTicketCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "ticket",
		Aliases:     []string{"t"},
		Short:       "Work with TargetProcess tickets",
		Annotations: annotate(annotationRepo),
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(
		newTicketViewCommand(c),
		newTicketStartCommand(c),
		newTicketFinishCommand(c),
		newTicketLookupCommand(c, "link", "Print the ticket link", usecase.TicketFieldLink),
		newTicketLookupCommand(c, "get-branch", "Print the branch name of a ticket", usecase.TicketFieldBranch),
		newTicketLookupCommand(c, "get-id", "Print the ticket id of a URL or the current branch", usecase.TicketFieldID),
		newTicketLookupCommand(c, "get-project", "Print the project of a ticket", usecase.TicketFieldProject),
		newGenerateCommitCommand(c),
		newGenerateChangelogCommand(c),
		newTicketInitCommand(c),
	)
	return cmd
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// newTicketViewCommand creates the ticket view subcommand.
func newTicketViewCommand(c *app.Container) *cobra.Command {
	var opts struct {
		JSON bool
		Web  bool
	}

	cmd := &cobra.Command{
		Use:   "view [id-or-url]",
		Short: "Display a ticket",
		Long: `Display the name and description of a ticket.

Without an argument the ticket id is read from the current branch
(feature/<id>_<name>).

Examples:
  # Show the ticket of the current branch
  tpaws ticket view

  # Open a ticket in the browser
  tpaws ticket view 115068 --web`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ViewTicketUseCase().Execute(cmd.Context(), usecase.ViewTicketInput{
				IDOrURL: argOrEmpty(args),
				Web:     opts.Web,
			})
			if err != nil {
				return err
			}
			if out.Opened {
				return nil
			}

			w := cmd.OutOrStdout()
			if opts.JSON {
				return writeJSON(w, out.Ticket)
			}
			printTicket(w, out.Ticket.Name, out.Ticket.Description)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVarP(&opts.Web, "web", "w", false, "Open the ticket in the browser")
	return cmd
}

func printTicket(w io.Writer, name, description string) {
	styles := render.DefaultStyles()
	_, _ = fmt.Fprintln(w, styles.Title.Render(name))
	_, _ = fmt.Fprintln(w, styles.Underline.Render(render.Underline(name)))
	md := render.Description(description)
	if md == "" {
		_, _ = fmt.Fprintln(w, styles.Muted.Render("No description provided"))
		return
	}
	_, _ = fmt.Fprintln(w, render.Markdown(md))
}

func writeJSON(w io.Writer, v any) error {
	return render.JSON(w, v)
}

// newTicketStartCommand creates the ticket start subcommand.
func newTicketStartCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Branch   string
		Project  string
		NoGit    bool
		NoAssign bool
	}

	cmd := &cobra.Command{
		Use:   "start [id-or-url]",
		Short: "Assign a ticket and start its feature branch",
		Long: `Assign a ticket to yourself, move user stories to In Progress and
run git flow feature start.

Without an argument a picker lists the open and planned tickets of the
current sprint. The project comes from tpaws.json, then --project.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.StartTicketUseCase().Execute(cmd.Context(), usecase.StartTicketInput{
				IDOrURL:  argOrEmpty(args),
				Branch:   opts.Branch,
				Project:  opts.Project,
				NoGit:    opts.NoGit,
				NoAssign: opts.NoAssign,
				DryRun:   c.Options.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out.NoTickets {
				_, _ = fmt.Fprintln(w, "No tickets are available, please provide an id")
				return nil
			}
			if c.Options.DryRun {
				_, _ = fmt.Fprintf(w, "Would start #%d on feature/%s\n", out.Ticket.ID, out.Branch)
				return nil
			}
			if out.Assigned {
				_, _ = fmt.Fprintf(w, "Assigned #%d %s\n", out.Ticket.ID, out.Ticket.Name)
			}
			if out.Started {
				_, _ = fmt.Fprintf(w, "Switched to feature/%s\n", out.Branch)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Branch, "branch", "b", "", "Feature branch name (default: <id>_<ticket name>)")
	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "TargetProcess project used by the picker")
	cmd.Flags().BoolVar(&opts.NoGit, "no-git", false, "Do not start a git flow feature")
	cmd.Flags().BoolVar(&opts.NoAssign, "no-assign", false, "Do not assign the ticket or change its state")
	return cmd
}

// newTicketFinishCommand creates the ticket finish subcommand.
func newTicketFinishCommand(c *app.Container) *cobra.Command {
	var opts struct {
		NoGit    bool
		NoStatus bool
	}

	cmd := &cobra.Command{
		Use:   "finish [id-or-url]",
		Short: "Finish the feature branch and move the ticket to In Staging",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.FinishTicketUseCase().Execute(cmd.Context(), usecase.FinishTicketInput{
				IDOrURL:  argOrEmpty(args),
				NoGit:    opts.NoGit,
				NoStatus: opts.NoStatus,
				DryRun:   c.Options.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if c.Options.DryRun {
				_, _ = fmt.Fprintf(w, "Would finish feature/%s\n", out.Feature)
				return nil
			}
			if out.Finished {
				_, _ = fmt.Fprintf(w, "Finished feature/%s\n", out.Feature)
			}
			if out.Staged {
				_, _ = fmt.Fprintf(w, "Moved #%d to In Staging\n", out.Ticket.ID)
			}
			if out.StateUpdate != "" {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s\n", out.StateUpdate)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.NoGit, "no-git", false, "Do not finish the git flow feature")
	cmd.Flags().BoolVar(&opts.NoStatus, "no-status", false, "Do not change the ticket state")
	return cmd
}

// newTicketLookupCommand creates a subcommand printing one ticket field.
func newTicketLookupCommand(c *app.Container, name, short string, field usecase.TicketField) *cobra.Command {
	return &cobra.Command{
		Use:   name + " [id-or-url]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.LookupTicketUseCase().Execute(cmd.Context(), usecase.LookupTicketInput{
				IDOrURL: argOrEmpty(args),
				Field:   field,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Value)
			return nil
		},
	}
}

// newGenerateCommitCommand creates the ticket generate-commit subcommand.
func newGenerateCommitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Model     string
		JSON      bool
		TitleOnly bool
	}

	cmd := &cobra.Command{
		Use:   "generate-commit [id-or-url]",
		Short: "Draft a conventional commit message from a ticket",
		Long: `Ask the configured AI provider for a conventional commit message
(feat(<id>): ... or fix(<id>): ...) based on the ticket.

A missing API key is asked for and saved to the config.

Examples:
  # Commit with the generated title
  git commit -m "$(tpaws ticket generate-commit --title-only)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.GenerateCommitUseCase().Execute(cmd.Context(), usecase.GenerateCommitInput{
				IDOrURL: argOrEmpty(args),
				Model:   opts.Model,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case opts.JSON:
				return writeJSON(w, out.Commit)
			case opts.TitleOnly:
				_, _ = fmt.Fprintln(w, out.Commit.Message)
			default:
				_, _ = fmt.Fprintln(w, out.Commit.Message)
				if out.Commit.Description != "" {
					_, _ = fmt.Fprintf(w, "\n%s\n", out.Commit.Description)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "AI model (default: config ai_model)")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&opts.TitleOnly, "title-only", false, "Print only the commit title")
	cmd.MarkFlagsMutuallyExclusive("json", "title-only")
	return cmd
}

// newGenerateChangelogCommand creates the ticket generate-changelog subcommand.
func newGenerateChangelogCommand(c *app.Container) *cobra.Command {
	var in usecase.GenerateChangelogInput

	cmd := &cobra.Command{
		Use:   "generate-changelog",
		Short: "Build a changelog from the tickets referenced in a commit range",
		Long: `Collect ticket ids from the commit subjects between --from and --to
(conventional commit scopes such as feat(115068): and merged feature
branches), fetch the tickets and group them into features and bug fixes.

Examples:
  tpaws ticket generate-changelog --from v1.2.0
  tpaws ticket generate-changelog --from v1.2.0 --plain --no-title`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.GenerateChangelogUseCase().Execute(cmd.Context(), in)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(out.Lines) == 0 {
				_, _ = fmt.Fprintln(w, "Empty changelog :(")
				return nil
			}
			_, _ = fmt.Fprintln(w, strings.Join(out.Lines, "\n"))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.From, "from", "", "Start of the commit range (tag, branch or sha)")
	cmd.Flags().StringVar(&in.To, "to", "HEAD", "End of the commit range")
	cmd.Flags().StringVar(&in.Prefix, "prefix", "", "Text prepended to every entry")
	cmd.Flags().StringVarP(&in.Project, "project", "p", "", "Only keep tickets of this project (default: tpaws.json)")
	cmd.Flags().BoolVar(&in.Plain, "plain", false, "Plain text instead of markdown links")
	cmd.Flags().BoolVar(&in.NoTitle, "no-title", false, "Omit the section headings")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

// newTicketInitCommand creates the ticket init subcommand.
func newTicketInitCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Project string
		Force   bool
	}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Link the repository to a TargetProcess project",
		Long: `Write tpaws.json at the repository root with the project used by
ticket start and generate-changelog.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.InitProjectUseCase().Execute(cmd.Context(), usecase.InitProjectInput{
				Project: opts.Project,
				Force:   opts.Force,
				DryRun:  c.Options.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case out.AlreadyInitialized:
				_, _ = fmt.Fprintln(w, "Project already initialized")
			case out.Saved:
				_, _ = fmt.Fprintln(w, "Project initialized")
			default:
				return writeJSON(w, out.Config)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Project, "project", "p", "", "Project name (skips the picker)")
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "Overwrite an existing tpaws.json")
	return cmd
}
