// Package executor provides command execution functionality.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/runoshun/tpaws/internal/domain"
)

// ExitError is returned when a command exits with a non-zero status.
// Stderr is trimmed.
type ExitError struct {
	Program  string
	Stderr   string
	Args     []string
	ExitCode int
}

// CommandLine returns the program and its arguments joined by spaces.
func (e *ExitError) CommandLine() string {
	return strings.TrimSpace(e.Program + " " + strings.Join(e.Args, " "))
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("%s: exit status %d", e.CommandLine(), e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", e.CommandLine(), e.ExitCode, e.Stderr)
}

// DecodeError is returned when a command succeeded but its output is not
// the expected JSON document.
type DecodeError struct {
	Err     error
	Command string
	Output  string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode output of %s: %v", e.Command, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Client implements domain.CommandExecutor interface.
type Client struct {
	logger *slog.Logger
}

// NewClient creates a new command executor client.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{logger: logger}
}

// Ensure Client implements domain.CommandExecutor interface.
var _ domain.CommandExecutor = (*Client)(nil)

// Execute runs the command and returns its trimmed stdout.
func (c *Client) Execute(ctx context.Context, cmd *domain.ExecCommand) ([]byte, error) {
	c.logger.Debug("exec", "cmd", cmd.String(), "dir", cmd.Dir)

	// #nosec G204 - cmd.Program and cmd.Args come from trusted UseCase code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	if err := execCmd.Run(); err != nil {
		return nil, wrapRunError(cmd, err, stderr.String())
	}
	return bytes.TrimSpace(stdout.Bytes()), nil
}

// ExecuteInteractive runs a command with stdin/stdout/stderr connected to the terminal.
func (c *Client) ExecuteInteractive(ctx context.Context, cmd *domain.ExecCommand) error {
	c.logger.Debug("exec interactive", "cmd", cmd.String(), "dir", cmd.Dir)

	// #nosec G204 - cmd.Program and cmd.Args come from trusted UseCase code
	execCmd := exec.CommandContext(ctx, cmd.Program, cmd.Args...)
	if cmd.Dir != "" {
		execCmd.Dir = cmd.Dir
	}
	execCmd.Stdin = os.Stdin
	execCmd.Stdout = os.Stdout
	execCmd.Stderr = os.Stderr
	if err := execCmd.Run(); err != nil {
		return wrapRunError(cmd, err, "")
	}
	return nil
}

// LookPath reports whether program is on PATH.
func (c *Client) LookPath(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}

func wrapRunError(cmd *domain.ExecCommand, err error, stderr string) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{
			Program:  cmd.Program,
			Args:     cmd.Args,
			Stderr:   strings.TrimSpace(stderr),
			ExitCode: exitErr.ExitCode(),
		}
	}
	return fmt.Errorf("run %s: %w", cmd.Program, err)
}

// ExecuteJSON runs the command and decodes its stdout into v.
func ExecuteJSON(ctx context.Context, e domain.CommandExecutor, cmd *domain.ExecCommand, v any) error {
	out, err := e.Execute(ctx, cmd)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(out, v); err != nil {
		return &DecodeError{Command: cmd.String(), Output: string(out), Err: err}
	}
	return nil
}

// IsExitCode reports whether err is an ExitError with the given code.
func IsExitCode(err error, code int) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.ExitCode == code
}
