// Package browser opens links and copies text to the clipboard.
package browser

import (
	"context"
	"fmt"
	"runtime"

	"github.com/atotto/clipboard"

	"github.com/runoshun/tpaws/internal/domain"
)

// Ensure Browser implements domain.Browser.
var _ domain.Browser = (*Browser)(nil)

// Browser opens URLs with the OS handler.
type Browser struct {
	exec domain.CommandExecutor
	copy func(string) error
	goos string
}

// New creates a Browser running openers through exec.
func New(exec domain.CommandExecutor) *Browser {
	return &Browser{exec: exec, goos: runtime.GOOS, copy: clipboard.WriteAll}
}

// OpenCommand returns the command that opens url on goos.
func OpenCommand(goos, url string) *domain.ExecCommand {
	switch goos {
	case "darwin":
		return domain.NewCommand("open", url)
	case "windows":
		return domain.NewCommand("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return domain.NewCommand("xdg-open", url)
	}
}

// Open opens url in the default browser.
func (b *Browser) Open(url string) error {
	if _, err := b.exec.Execute(context.Background(), OpenCommand(b.goos, url)); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

// Copy writes text to the system clipboard.
func (b *Browser) Copy(text string) error {
	if err := b.copy(text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}
