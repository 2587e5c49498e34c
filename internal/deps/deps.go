// Package deps reports on the external programs substyle drives.
package deps

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ProbeTimeout bounds a single version probe.
const ProbeTimeout = 5 * time.Second

// Requirement defines an external program a capability relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs are passed when probing; nil skips the probe.
	VersionArgs []string
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// Checker evaluates requirements. Zero value uses exec.LookPath and runs
// probes with ProbeTimeout.
type Checker struct {
	LookPath func(string) (string, error)
	Run      func(ctx context.Context, name string, args ...string) ([]byte, error)
	Timeout  time.Duration
}

// CheckBinaries evaluates the provided requirements with a default Checker.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	return Checker{}.Check(ctx, requirements)
}

// Check resolves every requirement and, when it names version arguments,
// runs the binary once to confirm it starts.
func (c Checker) Check(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		results = append(results, c.check(ctx, req))
	}
	return results
}

func (c Checker) check(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	if cmd == "" {
		status.Detail = "command not configured"
		return status
	}

	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	resolved, err := lookPath(cmd)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", cmd)
		return status
	}
	status.Command = resolved

	if req.VersionArgs == nil {
		status.Available = true
		return status
	}

	out, err := c.Probe(ctx, resolved, req.VersionArgs...)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Available = true
	status.Version = FirstLine(out)
	return status
}

// Probe runs name with args under the checker's timeout and returns its
// combined output.
func (c Checker) Probe(ctx context.Context, name string, args ...string) (string, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = ProbeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := c.Run
	if run == nil {
		run = CombinedOutput
	}
	out, err := run(ctx, name, args...)
	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s %s timed out after %s", name, strings.Join(args, " "), timeout)
	}
	if err != nil {
		return string(out), err
	}
	return string(out), nil
}

// CombinedOutput runs a command and folds trimmed output into any error.
func CombinedOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// Output runs a command and returns its stdout. Any error carries the
// trimmed stderr, or stdout when stderr is empty.
func Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = strings.TrimSpace(string(out))
		}
		if msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// FirstLine returns the first non-empty trimmed line of s.
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
