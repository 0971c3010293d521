package domain

import "strings"

// ExecCommand represents an external command to be executed.
type ExecCommand struct {
	Program string
	Dir     string
	Args    []string
}

// NewCommand builds an ExecCommand for the program and args.
func NewCommand(program string, args ...string) *ExecCommand {
	return &ExecCommand{Program: program, Args: args}
}

// String returns the command line for logs and error messages.
func (c *ExecCommand) String() string {
	parts := append([]string{c.Program}, c.Args...)
	for i, p := range parts {
		if p == "" || strings.ContainsAny(p, " \t\n\"'") {
			parts[i] = "'" + strings.ReplaceAll(p, "'", `'\''`) + "'"
		}
	}
	return strings.Join(parts, " ")
}
