package tui

import (
	"fmt"
	"strings"
)

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("substyle · batch subtitle styling"))
	b.WriteString("\n")

	config := m.ConfigFile
	if config == "" {
		config = "none"
	}
	b.WriteString(InfoStyle.Render(fmt.Sprintf("Style config: %s | Manual styling: %s", config, onOff(m.Manual))))
	b.WriteString("\n\n")

	b.WriteString(m.queueView())
	b.WriteString("\n")

	b.WriteString(m.stateText())
	b.WriteString("\n\n")

	if m.Input != InputNone {
		b.WriteString(HighlightStyle.Render(m.inputLabel()))
		b.WriteString(" " + m.InputText + "█")
		b.WriteString("\n\n")
	}

	if len(m.Logs) > 0 {
		b.WriteString(InfoStyle.Render("Recent activity:"))
		b.WriteString("\n")
		for _, line := range m.Logs {
			b.WriteString(InfoStyle.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(InfoStyle.Render(m.helpText()))
	return b.String()
}

func (m Model) queueView() string {
	if len(m.Files) == 0 {
		return BoxStyle.Render(InfoStyle.Render("Queue is empty, press 'a' to add a video or folder"))
	}
	lines := make([]string, 0, len(m.Files))
	for i, f := range m.Files {
		lines = append(lines, fmt.Sprintf("%s %2d. %s", statusIcon(m.Status[f]), i+1, f))
	}
	return BoxStyle.Render(strings.Join(lines, "\n"))
}

func statusIcon(s FileStatus) string {
	switch s {
	case FileRunning:
		return WarningStyle.Render("▶")
	case FileDone:
		return StatusStyle.Render("✔")
	case FileFailed:
		return ErrorStyle.Render("✘")
	default:
		return InfoStyle.Render("·")
	}
}

func (m Model) stateText() string {
	switch m.State {
	case StateProcessing:
		line := m.Progress
		if m.Stage != "" {
			line += fmt.Sprintf(" [%s]", m.Stage)
		}
		return StatusStyle.Render(line)
	case StateConfirming:
		return HighlightStyle.Render(m.confirmPrompt)
	case StateComplete:
		if m.Summary.Failed > 0 {
			return WarningStyle.Render(m.Progress)
		}
		return StatusStyle.Render(m.Progress)
	default:
		if m.Progress == "" {
			return InfoStyle.Render("Ready")
		}
		return InfoStyle.Render(m.Progress)
	}
}

func (m Model) inputLabel() string {
	if m.Input == InputConfig {
		return "Style config:"
	}
	return "Add file or folder:"
}

func (m Model) helpText() string {
	if m.Input != InputNone {
		return "Type or drop a path | Enter accept | Esc cancel"
	}
	switch m.State {
	case StateProcessing:
		return "Press 'q' or Ctrl+C to quit"
	case StateConfirming:
		return "Press Enter when styling is done | 'q' to abort"
	default:
		return "'a' add | 'o' style config | 's'/Enter start | 'm' manual styling | 'c' clear | 'q' quit"
	}
}
