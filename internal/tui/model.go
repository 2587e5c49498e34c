package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/substyle/internal/batch"
	"github.com/mgpai22/substyle/internal/pipeline"
)

// State represents the batch UI state machine
type State string

const (
	StateIdle       State = "idle"
	StateProcessing State = "processing"
	StateConfirming State = "confirming"
	StateComplete   State = "complete"
)

const maxLogs = 8

// FileStatus is the per-file outcome shown in the queue.
type FileStatus string

const (
	FilePending FileStatus = "pending"
	FileRunning FileStatus = "running"
	FileDone    FileStatus = "done"
	FileFailed  FileStatus = "failed"
)

// InputMode selects what typed text is collected for.
type InputMode int

const (
	InputNone InputMode = iota
	InputPath
	InputConfig
)

// Options configures a Model.
type Options struct {
	// Queue holds the files to process; one accepting Accept is created
	// when nil. Files are queued on top of it.
	Queue      *batch.Queue
	Accept     func(path string) bool
	Files      []string
	Manual     bool
	ConfigFile string
	Start      StartFunc
	Bridge     *Bridge
	Context    context.Context
}

// Model is the batch UI state. Only Update mutates it.
type Model struct {
	ctx    context.Context
	start  StartFunc
	bridge *Bridge
	queue  *batch.Queue

	Files      []string
	Status     map[string]FileStatus
	Manual     bool
	ConfigFile string

	State    State
	Current  string
	Stage    pipeline.Stage
	Progress string
	Logs     []string
	Summary  batch.Summary

	Input     InputMode
	InputText string

	confirm       chan<- error
	confirmPrompt string
}

func NewModel(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	bridge := opts.Bridge
	if bridge == nil {
		bridge = &Bridge{}
	}
	queue := opts.Queue
	if queue == nil {
		queue = batch.NewQueue(opts.Accept)
	}
	for _, f := range opts.Files {
		queue.Add(f)
	}
	m := Model{
		ctx:        ctx,
		start:      opts.Start,
		bridge:     bridge,
		queue:      queue,
		Manual:     opts.Manual,
		ConfigFile: opts.ConfigFile,
		State:      StateIdle,
	}
	m = m.syncQueue()
	if len(m.Files) > 0 {
		m.Progress = fmt.Sprintf("%d file(s) queued", len(m.Files))
	}
	return m
}

// syncQueue refreshes Files from the queue, keeping known statuses.
func (m Model) syncQueue() Model {
	m.Files = m.queue.Files()
	status := make(map[string]FileStatus, len(m.Files))
	for _, f := range m.Files {
		if s, ok := m.Status[f]; ok {
			status[f] = s
		} else {
			status[f] = FilePending
		}
	}
	m.Status = status
	return m
}

// Init implements tea.Model interface
func (m Model) Init() tea.Cmd {
	return nil
}

// AddLog appends a timestamped activity line, keeping the most recent ones.
func (m Model) AddLog(msg string) Model {
	line := fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), msg)
	logs := append(append([]string(nil), m.Logs...), line)
	if len(logs) > maxLogs {
		logs = logs[len(logs)-maxLogs:]
	}
	m.Logs = logs
	return m
}

func base(path string) string {
	return filepath.Base(path)
}
