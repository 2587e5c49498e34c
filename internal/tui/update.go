package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgpai22/substyle/internal/batch"
	"github.com/mgpai22/substyle/internal/style"
)

// Update implements tea.Model interface
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Input != InputNone {
			return m.handleInputKey(msg)
		}
		return m.handleKeyPress(msg)
	case BatchEventMsg:
		return m.handleBatchEvent(msg)
	case StageMsg:
		m.Stage = msg.Stage
		return m, nil
	case ConfirmRequestMsg:
		return m.handleConfirmRequest(msg)
	case BatchFinishedMsg:
		m.State = StateComplete
		m.Summary = msg.Summary
		m.Progress = msg.Summary.String()
		m.Current = ""
		return m.AddLog("File processing has finished"), nil
	}
	return m, nil
}

func (m Model) editable() bool {
	return m.State == StateIdle || m.State == StateComplete
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m.quit()
	case "enter":
		if m.State == StateConfirming {
			return m.resolveConfirm(), nil
		}
		return m.startProcessing()
	case "s", "S":
		return m.startProcessing()
	case "a", "A":
		if m.editable() {
			m.Input = InputPath
			m.InputText = ""
		}
	case "o", "O":
		if m.editable() {
			m.Input = InputConfig
			m.InputText = m.ConfigFile
		}
	case "m", "M":
		if m.editable() {
			m.Manual = !m.Manual
			return m.AddLog(fmt.Sprintf("Manual styling %s", onOff(m.Manual))), nil
		}
	case "c", "C":
		if m.editable() {
			m.queue.Clear()
			m = m.syncQueue()
			m.State = StateIdle
			m.Progress = "Queue cleared"
		}
	}
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.confirm != nil {
		m.confirm <- ErrConfirmAborted
		m.confirm = nil
	}
	return m, tea.Quit
}

// handleInputKey collects a typed or pasted path.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()
	case tea.KeyEsc:
		m.Input = InputNone
		m.InputText = ""
	case tea.KeyEnter:
		return m.submitInput(), nil
	case tea.KeyBackspace:
		if r := []rune(m.InputText); len(r) > 0 {
			m.InputText = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.InputText += " "
	case tea.KeyRunes:
		m.InputText += string(msg.Runes)
	}
	return m, nil
}

func (m Model) submitInput() Model {
	mode := m.Input
	path := cleanPath(m.InputText)
	m.Input = InputNone
	m.InputText = ""

	switch mode {
	case InputPath:
		return m.addPath(path)
	case InputConfig:
		return m.selectConfig(path)
	}
	return m
}

// terminals quote or escape dropped paths
func cleanPath(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.ReplaceAll(s, `\ `, " ")
}

func (m Model) addPath(path string) Model {
	if path == "" {
		return m
	}
	n, err := m.queue.AddPath(path)
	m = m.syncQueue()
	switch {
	case err != nil:
		return m.AddLog(fmt.Sprintf("Could not add %s: %v", path, err))
	case n == 0:
		return m.AddLog(fmt.Sprintf("No new supported files in %s", path))
	}
	m.Progress = fmt.Sprintf("%d file(s) queued", len(m.Files))
	return m.AddLog(fmt.Sprintf("Added %d file(s) from %s", n, base(path)))
}

func (m Model) selectConfig(path string) Model {
	if path == "" {
		m.ConfigFile = ""
		return m.AddLog("Style configuration cleared")
	}
	cfg, err := style.LoadFile(path)
	switch {
	case errors.Is(err, style.ErrNoStyleSection):
		m.ConfigFile = path
		return m.AddLog(fmt.Sprintf("%s has no subtitle_style section, styling will be skipped", base(path)))
	case err != nil:
		return m.AddLog(fmt.Sprintf("Could not load %s: %v", base(path), err))
	}
	m.ConfigFile = path
	return m.AddLog(fmt.Sprintf("Loaded style configuration with %d parameters", len(cfg)))
}

func (m Model) startProcessing() (tea.Model, tea.Cmd) {
	if !m.editable() {
		return m, nil
	}
	if len(m.Files) == 0 {
		m.Progress = "No files in queue to process"
		return m, nil
	}
	if m.start == nil {
		m.Progress = "Processing is not available"
		return m, nil
	}

	status := make(map[string]FileStatus, len(m.Files))
	for _, f := range m.Files {
		status[f] = FilePending
	}
	m.Status = status
	m.State = StateProcessing
	m.Summary = batch.Summary{}
	if m.ConfigFile == "" {
		m = m.AddLog("No style configuration selected, subtitles keep their styling")
	}
	m = m.AddLog(fmt.Sprintf("Processing %d file(s)", len(m.Files)))
	job := Job{
		Files:      append([]string(nil), m.Files...),
		Manual:     m.Manual,
		ConfigFile: m.ConfigFile,
	}
	return m, runBatch(m.ctx, m.start, job, m.bridge)
}

func (m Model) handleBatchEvent(msg BatchEventMsg) (tea.Model, tea.Cmd) {
	e := msg.Event
	switch e.Kind {
	case batch.EventStarted:
		m.Current = e.File
		m.Stage = ""
		m.Status = m.withStatus(e.File, FileRunning)
		m.Progress = fmt.Sprintf("Processing (%d/%d): %s", e.Index, e.Total, base(e.File))
	case batch.EventFinished:
		if e.Err != nil {
			m.Status = m.withStatus(e.File, FileFailed)
			m.Progress = fmt.Sprintf("Failed: %s", base(e.File))
			return m.AddLog(fmt.Sprintf("Failed: %s (%v)", base(e.File), e.Err)), nil
		}
		m.Status = m.withStatus(e.File, FileDone)
		m.Progress = fmt.Sprintf("Completed: %s", base(e.File))
		return m.AddLog(fmt.Sprintf("Completed: %s", base(e.File))), nil
	case batch.EventDone:
		m.Summary = e.Summary
	}
	return m, nil
}

func (m Model) handleConfirmRequest(msg ConfirmRequestMsg) (tea.Model, tea.Cmd) {
	m.State = StateConfirming
	m.confirm = msg.Reply
	m.confirmPrompt = msg.Prompt
	return m.AddLog(fmt.Sprintf("Opened %s in Aegisub", base(msg.File))), nil
}

func (m Model) resolveConfirm() Model {
	if m.confirm != nil {
		m.confirm <- nil
	}
	m.confirm = nil
	m.confirmPrompt = ""
	m.State = StateProcessing
	return m.AddLog("Manual styling confirmed")
}

// copy-on-write so earlier model values stay untouched
func (m Model) withStatus(file string, s FileStatus) map[string]FileStatus {
	status := make(map[string]FileStatus, len(m.Status)+1)
	for k, v := range m.Status {
		status[k] = v
	}
	status[file] = s
	return status
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
