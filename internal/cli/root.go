// Package cli provides the command-line interface for tpaws.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runoshun/tpaws/internal/app"
	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/aws"
	"github.com/runoshun/tpaws/internal/usecase"
)

// Command group IDs.
const (
	groupTicket  = "ticket"
	groupRelease = "release"
	groupSetup   = "setup"
)

// Annotation keys read by the root PersistentPreRunE.
const (
	annotationRepo    = "tpaws/repo"    // needs a git repository
	annotationAWS     = "tpaws/aws"     // needs the aws CLI
	annotationAuth    = "tpaws/auth"    // needs a fresh AWS SSO session
	annotationNoSetup = "tpaws/nosetup" // runs before the first configuration
)

// ErrStopped is returned when a command stops early without failing.
// main exits with status 0 on it.
var ErrStopped = errors.New("stopped")

// NewRootCommand creates the root command for tpaws.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var opts app.Options

	root := &cobra.Command{
		Use:   "tpaws",
		Short: "TargetProcess, git-flow and CodeCommit in one CLI",
		Long: `tpaws automates the daily ticket workflow:
pick up a TargetProcess ticket, start a git-flow feature branch,
open and merge AWS CodeCommit pull requests, update the ticket state
and cut releases.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip if container is nil (e.g. in tests)
			if c == nil {
				return nil
			}
			c.ApplyOptions(opts)
			return prepare(cmd, c)
		},
	}

	root.PersistentFlags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would happen without changing anything")
	root.PersistentFlags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Disable prompts and accept defaults")
	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Print debug logs to stderr")
	root.PersistentFlags().StringVar(&opts.Profile, "profile", domain.DefaultProfile, "AWS profile")

	root.AddGroup(
		&cobra.Group{ID: groupTicket, Title: "Ticket Workflow:"},
		&cobra.Group{ID: groupRelease, Title: "Pull Requests and Releases:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	ticketCmd := newTicketCommand(c)
	ticketCmd.GroupID = groupTicket

	prCmd := newPRCommand(c)
	prCmd.GroupID = groupRelease

	releaseCmd := newReleaseCommand(c)
	releaseCmd.GroupID = groupRelease

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(ticketCmd, prCmd, releaseCmd, configCmd)
	return root
}

// prepare runs the startup checks requested by the command annotations.
func prepare(cmd *cobra.Command, c *app.Container) error {
	if hasAnnotation(cmd, annotationRepo) {
		if err := c.RequireRepo(); err != nil {
			return err
		}
	}

	if hasAnnotation(cmd, annotationAWS) && !c.AWS.IsInstalled() {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "The aws CLI is required, install it from:\n%s\n", aws.InstallURL)
		return ErrStopped
	}

	if !hasAnnotation(cmd, annotationNoSetup) && !c.Configs.Exists() {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Please configure the CLI before continue")
		out, err := c.ResetConfigUseCase().Execute(cmd.Context())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", out.Path)
		c.ReloadTickets()
	}

	if hasAnnotation(cmd, annotationAuth) {
		out, err := c.EnsureAuthUseCase().Execute(cmd.Context(), usecase.EnsureAuthInput{Profile: c.Options.Profile})
		if err != nil {
			return err
		}
		if out.Refreshed {
			c.Logger.Info("aws session refreshed", "arn", out.Config.ARN)
		}
	}
	return nil
}

// hasAnnotation reports whether cmd or one of its parents carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for cur := cmd; cur != nil; cur = cur.Parent() {
		if _, ok := cur.Annotations[key]; ok {
			return true
		}
	}
	return false
}

// annotate returns an annotation map enabling the given keys.
func annotate(keys ...string) map[string]string {
	m := make(map[string]string, len(keys))
	for _, k := range keys {
		m[k] = "true"
	}
	return m
}
