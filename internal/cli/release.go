package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tpaws/internal/app"
	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/render"
	"github.com/runoshun/tpaws/internal/usecase"
)

// newReleaseCommand creates the release command.
func newReleaseCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "release",
		Short:       "Bump versions and ship git-flow releases",
		Annotations: annotate(annotationRepo),
	}

	cmd.AddCommand(
		newReleaseStartCommand(c),
		newReleasePushCommand(c),
		newReleaseFinishCommand(c),
	)
	return cmd
}

// newReleaseStartCommand creates the release start subcommand.
func newReleaseStartCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "start <patch|minor|major>",
		Short: "Bump the version and start a git-flow release",
		Long: `Read the version from the project manifest (package.json, Cargo.toml,
pubspec.yaml or Chart.yaml), bump it, run git flow release start and
commit the new version on the release branch.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ReleasePatch), string(domain.ReleaseMinor), string(domain.ReleaseMajor)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := domain.ParseReleaseKind(args[0])
			if err != nil {
				return err
			}
			out, err := c.StartReleaseUseCase().Execute(cmd.Context(), usecase.StartReleaseInput{
				Kind:   kind,
				DryRun: c.Options.DryRun,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "version bumped from %s to: %s\n", out.Previous, out.Next)
			return nil
		},
	}
}

// newReleasePushCommand creates the release push subcommand.
func newReleasePushCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "push <staging|prod|all>",
		Short: "Force push HEAD to the environment branches",
		Long: `Force push HEAD to the staging and/or prod branches. Branch names and
the CodePipeline to report on come from tpaws.json.`,
		Args:        cobra.ExactArgs(1),
		ValidArgs:   []string{string(domain.PushStaging), string(domain.PushProd), string(domain.PushAll)},
		Annotations: annotate(annotationAWS),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := domain.ParsePushTarget(args[0])
			if err != nil {
				return err
			}
			out, err := c.PushReleaseUseCase().Execute(cmd.Context(), usecase.PushReleaseInput{
				Profile: c.Options.Profile,
				Target:  target,
				DryRun:  c.Options.DryRun,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if c.Options.DryRun {
				for _, p := range out.Pushed {
					_, _ = fmt.Fprintf(w, "Would push HEAD to %s (%s)\n", p.Branch, p.Environment)
				}
				return nil
			}
			if len(out.Stages) == 0 {
				return nil
			}
			styles := render.DefaultStyles()
			_, _ = fmt.Fprintf(w, "\n%s\n", styles.Label.Render(out.Pipeline))
			for _, s := range out.Stages {
				_, _ = fmt.Fprintf(w, "  %-20s %s\n", s.Name, styles.Muted.Render(s.Status))
			}
			return nil
		},
	}
}

// newReleaseFinishCommand creates the release finish subcommand.
func newReleaseFinishCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "finish",
		Short: "Finish the git-flow release and push everything",
		Long: `Run git flow release finish, push master, develop and tags, then delete
the remote release branch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.FinishReleaseUseCase().Execute(cmd.Context(), usecase.FinishReleaseInput{
				DryRun: c.Options.DryRun,
			})
			if err != nil {
				return err
			}
			if c.Options.DryRun {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Would finish %s\n", out.Branch)
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Released %s\n", out.Version)
			return nil
		},
	}
}
