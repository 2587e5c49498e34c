// Package editor launches Aegisub for interactive styling.
package editor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/mgpai22/substyle/internal/deps"
	"github.com/mgpai22/substyle/internal/logging"
)

// versionProbeTimeout bounds each Aegisub version probe.
const versionProbeTimeout = 10 * time.Second

var ErrNotAvailable = errors.New("aegisub not found")

// candidates in search order; the first that resolves wins
var searchPaths = []string{
	"aegisub",
	"/usr/bin/aegisub",
	"/usr/local/bin/aegisub",
	`C:\Program Files\Aegisub\aegisub64.exe`,
	`C:\Program Files (x86)\Aegisub\aegisub32.exe`,
	"/Applications/Aegisub.app/Contents/MacOS/aegisub",
}

// Aegisub wraps a discovered Aegisub executable. A zero path means the
// editor is unavailable.
type Aegisub struct {
	path   string
	logger *logging.Logger

	// start launches the process and returns a wait func
	start func(name string, args ...string) (func() error, error)
	run   func(ctx context.Context, name string, args ...string) ([]byte, error)
}

// New looks for Aegisub, trying configured first.
func New(configured string, logger *logging.Logger) *Aegisub {
	logger = logging.OrNop(logger).Named("aegisub")
	path := Find(configured, exec.LookPath)
	if path == "" {
		logger.Debugw("aegisub not found in any standard location")
	} else {
		logger.Debugw("found aegisub", "path", path)
	}
	return &Aegisub{
		path:   path,
		logger: logger,
		start:  startProcess,
		run:    combinedOutputIgnoringExit,
	}
}

// Find returns the first candidate lookPath resolves, or "".
func Find(configured string, lookPath func(string) (string, error)) string {
	candidates := searchPaths
	if c := strings.TrimSpace(configured); c != "" {
		candidates = append([]string{c}, searchPaths...)
	}
	for _, candidate := range candidates {
		if resolved, err := lookPath(candidate); err == nil {
			return resolved
		}
	}
	return ""
}

func (a *Aegisub) Available() bool {
	return a != nil && a.path != ""
}

func (a *Aegisub) Path() string {
	if a == nil {
		return ""
	}
	return a.path
}

// Open launches Aegisub on path. With wait set it blocks until the editor
// exits; otherwise the process is reaped in the background.
func (a *Aegisub) Open(ctx context.Context, path string, wait bool) error {
	if !a.Available() {
		return ErrNotAvailable
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("subtitle file not found: %s", path)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	waitFn, err := a.start(a.path, path)
	if err != nil {
		return fmt.Errorf("failed to open aegisub: %w", err)
	}

	if !wait {
		a.logger.Infow("opened subtitle in aegisub", "file", path, "mode", "interactive")
		go func() {
			if err := waitFn(); err != nil {
				a.logger.Debugw("aegisub exited", "error", err)
			}
		}()
		return nil
	}

	a.logger.Infow("opened subtitle in aegisub", "file", path, "mode", "blocking")
	if err := waitFn(); err != nil {
		return fmt.Errorf("aegisub exited: %w", err)
	}
	a.logger.Infow("aegisub closed, continuing processing")
	return nil
}

// Version asks Aegisub for a version line, trying --version, -v and --help.
// It returns "" when nothing looks like version output.
func (a *Aegisub) Version(ctx context.Context) string {
	if !a.Available() {
		return ""
	}
	checker := deps.Checker{Run: a.run, Timeout: versionProbeTimeout}
	for _, flag := range []string{"--version", "-v", "--help"} {
		out, err := checker.Probe(ctx, a.path, flag)
		if err != nil && out == "" {
			continue
		}
		if line := versionLine(out); line != "" {
			return line
		}
	}
	a.logger.Debugw("could not determine aegisub version")
	return ""
}

func versionLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "aegisub") || strings.Contains(lower, "version") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

func startProcess(name string, args ...string) (func() error, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return cmd.Wait, nil
}

// Aegisub prints usage and exits non-zero for unknown flags; the text is
// still useful.
func combinedOutputIgnoringExit(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return out, nil
	}
	return out, err
}
