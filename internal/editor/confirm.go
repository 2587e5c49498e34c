package editor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
)

// ErrInputClosed is returned when input ends before the user confirms.
var ErrInputClosed = fmt.Errorf("input closed before confirmation: %w", io.ErrUnexpectedEOF)

// Confirmer blocks until the user signals that manual editing is done.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) error
}

// PromptConfirmer prints a prompt and waits for a line of input. One
// reader serves every call so buffered lines carry over to the next file.
type PromptConfirmer struct {
	out io.Writer

	mu sync.Mutex
	in *bufio.Reader
}

func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{out: out, in: bufio.NewReader(in)}
}

func (p *PromptConfirmer) Confirm(ctx context.Context, prompt string) error {
	if p.out != nil {
		if _, err := fmt.Fprint(p.out, prompt); err != nil {
			return err
		}
	}

	done := make(chan error, 1)
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		line, err := p.in.ReadString('\n')
		switch {
		case err == io.EOF && line != "":
			// a final unterminated line still counts
			err = nil
		case err == io.EOF:
			err = ErrInputClosed
		}
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) error

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) error {
	return f(ctx, prompt)
}
