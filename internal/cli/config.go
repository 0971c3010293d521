package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tpaws/internal/app"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage the tpaws configuration",
		Annotations: annotate(annotationNoSetup),
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigResetCommand(c))
	cmd.AddCommand(newConfigShowCommand(c))
	return cmd
}

// newConfigResetCommand creates the config reset subcommand.
func newConfigResetCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Walk through every setting and save the config",
		Long: `Ask for every setting, using the current TargetProcess user and
git config as defaults, and save the config. The AWS session is cleared
so the next pr command logs in again.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ResetConfigUseCase().Execute(cmd.Context())
			if err != nil {
				return err
			}
			c.ReloadTickets()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", out.Path)
			return nil
		},
	}
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the config with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := c.ShowConfigUseCase().Execute()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "# %s\n", out.Path)
			return writeJSON(w, out.Config)
		},
	}
}
