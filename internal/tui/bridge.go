package tui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/substyle/internal/batch"
	"github.com/mgpai22/substyle/internal/pipeline"
)

// ErrConfirmAborted is delivered to a waiting worker when the UI quits.
var ErrConfirmAborted = errors.New("manual styling aborted")

// Bridge is the worker's only path into the UI. Every call turns into a
// message delivered through the program's serialized update loop.
type Bridge struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	current string
}

// Attach points the bridge at a running program.
func (b *Bridge) Attach(send func(tea.Msg)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.send = send
}

func (b *Bridge) dispatch(msg tea.Msg) {
	b.mu.Lock()
	send := b.send
	b.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

// Emit forwards a batch event.
func (b *Bridge) Emit(e batch.Event) {
	if e.Kind == batch.EventStarted {
		b.mu.Lock()
		b.current = e.File
		b.mu.Unlock()
	}
	b.dispatch(BatchEventMsg{Event: e})
}

// Observe forwards pipeline stages for the current file.
func (b *Bridge) Observe(s pipeline.Stage) {
	b.mu.Lock()
	file := b.current
	b.mu.Unlock()
	b.dispatch(StageMsg{File: file, Stage: s})
}

// Confirm blocks until the operator presses enter in the UI.
func (b *Bridge) Confirm(ctx context.Context, prompt string) error {
	b.mu.Lock()
	file := b.current
	attached := b.send != nil
	b.mu.Unlock()
	if !attached {
		return ErrConfirmAborted
	}

	reply := make(chan error, 1)
	b.dispatch(ConfirmRequestMsg{File: file, Prompt: prompt, Reply: reply})
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
