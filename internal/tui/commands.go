package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/substyle/internal/batch"
)

// Job is what the operator set up before pressing start.
type Job struct {
	Files      []string
	Manual     bool
	ConfigFile string
}

// StartFunc runs a batch on the worker goroutine, reporting through b.
type StartFunc func(ctx context.Context, job Job, b *Bridge) batch.Summary

// runBatch creates a command that processes the queue; bubbletea runs it off
// the update loop.
func runBatch(ctx context.Context, start StartFunc, job Job, b *Bridge) tea.Cmd {
	return func() tea.Msg {
		return BatchFinishedMsg{Summary: start(ctx, job, b)}
	}
}
