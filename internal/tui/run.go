package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the batch UI and blocks until the operator quits. The bridge in
// opts is attached to the program before the first event is processed.
func Run(opts Options) (Model, error) {
	if opts.Bridge == nil {
		opts.Bridge = &Bridge{}
	}
	m := NewModel(opts)
	program := tea.NewProgram(m)
	opts.Bridge.Attach(program.Send)

	final, err := program.Run()
	opts.Bridge.Attach(nil)
	if err != nil {
		return m, err
	}
	if fm, ok := final.(Model); ok {
		return fm, nil
	}
	return m, nil
}
