// Package main is the entry point for the tpaws CLI.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"slices"

	"github.com/runoshun/tpaws/internal/app"
	"github.com/runoshun/tpaws/internal/cli"
	"github.com/runoshun/tpaws/internal/domain"
)

// version is set at build time using -ldflags.
var version = "dev"

// exitPanic is the status used after a recovered panic.
const exitPanic = 101

func main() {
	defer func() {
		if r := recover(); r != nil {
			reportPanic(os.Stderr, r)
			os.Exit(exitPanic)
		}
	}()

	os.Exit(exitCode(run(), os.Stdout, os.Stderr))
}

func run() error {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	// The logger is built before flags are parsed, so --debug is read here.
	container, err := app.New(cwd, app.Options{Debug: slices.Contains(os.Args[1:], "--debug")})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}

// exitCode prints err and maps it to a process status.
func exitCode(err error, stdout, stderr io.Writer) int {
	switch {
	case err == nil, errors.Is(err, cli.ErrStopped):
		return 0
	case errors.Is(err, domain.ErrAborted):
		_, _ = fmt.Fprintln(stdout, "Operation aborted.")
		return 0
	}
	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}

func reportPanic(w io.Writer, r any) {
	_, _ = fmt.Fprintln(w, "Well, this is embarrassing. tpaws crashed.")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintf(w, "  version: %s\n", version)
	_, _ = fmt.Fprintf(w, "  os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	_, _ = fmt.Fprintf(w, "  message: %v\n", r)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Re-run the command with --debug and include the output when reporting the issue.")
}
