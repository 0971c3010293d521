// Package prompt implements interactive prompts with huh.
package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/runoshun/tpaws/internal/domain"
)

// ErrSelectionRequired is returned by Select in quiet mode.
var ErrSelectionRequired = errors.New("a selection is required but prompts are disabled")

// Ensure Prompter implements domain.Prompter.
var _ domain.Prompter = (*Prompter)(nil)

// Prompter asks questions on the terminal. In quiet mode no question is
// shown: confirmations are accepted and inputs take their default.
type Prompter struct {
	theme      *huh.Theme
	quiet      bool
	accessible bool
}

// New creates a Prompter. Accessible (line based) mode is used when stdin
// is not a terminal.
func New(quiet bool) *Prompter {
	return &Prompter{
		quiet:      quiet,
		accessible: !term.IsTerminal(int(os.Stdin.Fd())),
		theme:      huh.ThemeCharm(),
	}
}

// Quiet reports whether prompts are disabled.
func (p *Prompter) Quiet() bool {
	return p.quiet
}

// SetQuiet enables or disables prompts.
func (p *Prompter) SetQuiet(quiet bool) {
	p.quiet = quiet
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(title string, def bool) (bool, error) {
	if p.quiet {
		return true, nil
	}
	value := def
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(field); err != nil {
		return false, err
	}
	return value, nil
}

// Select asks the user to pick one of options.
func (p *Prompter) Select(title string, options []string) (string, error) {
	if len(options) == 0 {
		return "", fmt.Errorf("%s: no options", title)
	}
	if p.quiet {
		return "", ErrSelectionRequired
	}
	var value string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(&value)
	if err := p.run(field); err != nil {
		return "", err
	}
	return value, nil
}

// Input asks for a line of text. An empty answer yields def.
func (p *Prompter) Input(title, def, placeholder string) (string, error) {
	if p.quiet {
		return def, nil
	}
	value := def
	field := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value)
	if err := p.run(field); err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}

func (p *Prompter) run(field huh.Field) error {
	err := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme).
		WithAccessible(p.accessible).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return domain.ErrAborted
	}
	return err
}
