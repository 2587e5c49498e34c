package tui

import (
	"github.com/mgpai22/substyle/internal/batch"
	"github.com/mgpai22/substyle/internal/pipeline"
)

// BatchEventMsg carries batch progress from the worker.
type BatchEventMsg struct {
	Event batch.Event
}

// StageMsg is sent when the current file enters a pipeline stage.
type StageMsg struct {
	File  string
	Stage pipeline.Stage
}

// ConfirmRequestMsg asks the operator to confirm manual styling is done.
// The worker blocks until Reply receives a value.
type ConfirmRequestMsg struct {
	File   string
	Prompt string
	Reply  chan<- error
}

// BatchFinishedMsg is returned by the batch command when every file ran.
type BatchFinishedMsg struct {
	Summary batch.Summary
}
