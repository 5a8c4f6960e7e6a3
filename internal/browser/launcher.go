// Package browser opens URLs with the platform's default handler.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Starter starts a command without waiting for it.
type Starter interface {
	Start(ctx context.Context, name string, args []string) error
}

// ExecStarter implements Starter using os/exec.
type ExecStarter struct{}

// Start launches name detached; the browser outlives the CLI.
func (ExecStarter) Start(ctx context.Context, name string, args []string) error {
	c := exec.CommandContext(context.WithoutCancel(ctx), name, args...)
	return c.Start()
}

// Launcher opens URLs in the user's browser.
type Launcher struct {
	starter Starter
	goos    string
	logger  *slog.Logger
}

// NewLauncher creates a launcher for the running platform.
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{starter: ExecStarter{}, goos: runtime.GOOS, logger: logger}
}

// Command returns the opener command for goos.
func Command(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	default:
		return "xdg-open", []string{url}
	}
}

// Open starts the platform opener for url.
func (l *Launcher) Open(ctx context.Context, url string) error {
	name, args := Command(l.goos, url)
	l.logger.DebugContext(ctx, "opening browser", "cmd", name, "url", url)
	if err := l.starter.Start(ctx, name, args); err != nil {
		return fmt.Errorf("open browser with %s: %w", name, err)
	}
	return nil
}
