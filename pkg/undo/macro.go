package undo

import "github.com/aretw0/strata/pkg/command"

// Macro groups commands under one undo step. Redo replays them in order and
// Undo in reverse.
type Macro struct {
	name     string
	commands []command.Command
}

func (m *Macro) Name() string { return m.name }

// Len returns the number of grouped commands.
func (m *Macro) Len() int { return len(m.commands) }

// Commands returns the grouped commands in execution order.
func (m *Macro) Commands() []command.Command { return m.commands }

func (m *Macro) Redo() {
	for _, c := range m.commands {
		c.Redo()
	}
}

func (m *Macro) Undo() {
	for i := len(m.commands) - 1; i >= 0; i-- {
		m.commands[i].Undo()
	}
}
