package batch

import (
	"context"
	"fmt"
)

// EventKind tags batch progress events.
type EventKind int

const (
	EventStarted EventKind = iota
	EventFinished
	EventDone
)

// Event reports progress. Index is 1-based.
type Event struct {
	Kind    EventKind
	Index   int
	Total   int
	File    string
	Err     error
	Summary Summary
}

// Summary counts outcomes of a batch.
type Summary struct {
	Processed int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("Completed! Processed: %d, Failed: %d", s.Processed, s.Failed)
}

// ProcessFunc handles one file.
type ProcessFunc func(ctx context.Context, file string) error

// Run processes files sequentially, reporting through emit. A failing or
// panicking file is counted and the batch moves on.
func Run(ctx context.Context, files []string, process ProcessFunc, emit func(Event)) Summary {
	if emit == nil {
		emit = func(Event) {}
	}

	var summary Summary
	total := len(files)
	for i, file := range files {
		emit(Event{Kind: EventStarted, Index: i + 1, Total: total, File: file})

		err := safeProcess(ctx, process, file)
		if err != nil {
			summary.Failed++
		} else {
			summary.Processed++
		}
		emit(Event{Kind: EventFinished, Index: i + 1, Total: total, File: file, Err: err})
	}

	emit(Event{Kind: EventDone, Total: total, Summary: summary})
	return summary
}

func safeProcess(ctx context.Context, process ProcessFunc, file string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("unexpected panic: %v", rec)
		}
	}()
	return process(ctx, file)
}
