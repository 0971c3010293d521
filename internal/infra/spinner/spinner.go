// Package spinner shows progress for long-running steps.
package spinner

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/runoshun/tpaws/internal/domain"
	"github.com/runoshun/tpaws/internal/infra/render"
)

// Ensure Progress implements domain.Progress.
var _ domain.Progress = (*Progress)(nil)

// Progress starts spinners on a writer. When the writer is not a terminal
// only the final status line of each step is printed.
type Progress struct {
	out    io.Writer
	styles render.Styles
	tty    bool
}

// New creates a Progress writing to out.
func New(out io.Writer) *Progress {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &Progress{out: out, tty: tty, styles: render.DefaultStyles()}
}

// Start begins a step.
func (p *Progress) Start(message string) domain.ProgressTask {
	t := &task{progress: p, message: message}
	if !p.tty {
		return t
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = p.styles.Spinner

	t.done = make(chan struct{})
	t.program = tea.NewProgram(model{spinner: s, message: message},
		tea.WithOutput(p.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	go func() {
		_, _ = t.program.Run()
		close(t.done)
	}()
	return t
}

type task struct {
	progress *Progress
	program  *tea.Program
	done     chan struct{}
	message  string
	once     sync.Once
}

func (t *task) Done(message string) {
	t.finish(t.progress.styles.Success.Render("✔"), message)
}

func (t *task) Skip(message string) {
	t.finish(t.progress.styles.Muted.Render("-"), message)
}

func (t *task) Fail(message string) {
	t.finish(t.progress.styles.Error.Render("✘"), message)
}

func (t *task) finish(icon, message string) {
	t.once.Do(func() {
		if message == "" {
			message = t.message
		}
		line := fmt.Sprintf("%s %s", icon, message)
		if t.program == nil {
			_, _ = fmt.Fprintln(t.progress.out, line)
			return
		}
		t.program.Send(finishMsg{line: line})
		<-t.done
	})
}

type finishMsg struct {
	line string
}

type model struct {
	final   string
	message string
	spinner spinner.Model
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case finishMsg:
		m.final = msg.line
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.final != "" {
		return m.final + "\n"
	}
	return m.spinner.View() + " " + m.message
}
