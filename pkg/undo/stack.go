package undo

import (
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/strata/pkg/command"
	"github.com/aretw0/strata/pkg/domain"
)

// DefaultLimit is the number of undo steps kept when no limit is configured.
const DefaultLimit = 100

// Stack is the undo history. Index counts the applied commands; everything
// from Index up is the redo branch, dropped by the next Push.
type Stack struct {
	mu       sync.Mutex
	commands []command.Command
	index    int
	clean    int
	limit    int
	macros   []*Macro
	logger   *slog.Logger
}

// Option configures a Stack.
type Option func(*Stack)

// WithLimit caps the history length. Zero or less means unlimited.
func WithLimit(n int) Option {
	return func(s *Stack) {
		s.limit = n
	}
}

// WithLogger sets a custom logger for the stack.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Stack) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty history.
func New(opts ...Option) *Stack {
	s := &Stack{
		limit:  DefaultLimit,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Push runs cmd.Redo and records it. Inside a macro the command joins the
// innermost open macro instead of becoming its own step.
func (s *Stack) Push(cmd command.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cmd.Redo()
	if n := len(s.macros); n > 0 {
		m := s.macros[n-1]
		m.commands = append(m.commands, cmd)
		return
	}
	s.record(cmd)
}

func (s *Stack) record(cmd command.Command) {
	if s.clean > s.index {
		s.clean = -1
	}
	s.commands = append(s.commands[:s.index], cmd)
	s.index++

	if s.limit > 0 && len(s.commands) > s.limit {
		drop := len(s.commands) - s.limit
		s.commands = append([]command.Command(nil), s.commands[drop:]...)
		s.index -= drop
		if s.clean >= 0 {
			s.clean -= drop
			if s.clean < 0 {
				s.clean = -1
			}
		}
	}
	s.logger.Debug("command recorded", "command", cmd.Name(), "index", s.index)
}

// Undo reverts the last applied command.
func (s *Stack) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.macros) > 0 {
		return domain.ErrMacroOpen
	}
	if s.index == 0 {
		return domain.ErrNothingToUndo
	}
	s.index--
	cmd := s.commands[s.index]
	cmd.Undo()
	s.logger.Debug("undo", "command", cmd.Name(), "index", s.index)
	return nil
}

// Redo re-applies the next command of the redo branch.
func (s *Stack) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.macros) > 0 {
		return domain.ErrMacroOpen
	}
	if s.index >= len(s.commands) {
		return domain.ErrNothingToRedo
	}
	cmd := s.commands[s.index]
	cmd.Redo()
	s.index++
	s.logger.Debug("redo", "command", cmd.Name(), "index", s.index)
	return nil
}

// BeginMacro opens a macro. Macros nest; only the outermost one becomes a
// history step.
func (s *Stack) BeginMacro(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.macros = append(s.macros, &Macro{name: name})
}

// EndMacro closes the innermost macro. Empty macros leave no trace.
func (s *Stack) EndMacro() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.macros)
	if n == 0 {
		return domain.ErrNoMacro
	}
	m := s.macros[n-1]
	s.macros = s.macros[:n-1]
	if len(m.commands) == 0 {
		return nil
	}
	if n > 1 {
		parent := s.macros[n-2]
		parent.commands = append(parent.commands, m)
		return nil
	}
	s.record(m)
	return nil
}

// AbortMacro closes the innermost macro and reverts what it recorded.
func (s *Stack) AbortMacro() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.macros)
	if n == 0 {
		return domain.ErrNoMacro
	}
	m := s.macros[n-1]
	s.macros = s.macros[:n-1]
	m.Undo()
	s.logger.Debug("macro aborted", "macro", m.name, "commands", len(m.commands))
	return nil
}

// InMacro reports whether a macro is being recorded.
func (s *Stack) InMacro() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.macros) > 0
}

func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.macros) == 0 && s.index > 0
}

func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.macros) == 0 && s.index < len(s.commands)
}

// UndoText names the command Undo would revert, or "".
func (s *Stack) UndoText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index == 0 {
		return ""
	}
	return s.commands[s.index-1].Name()
}

// RedoText names the command Redo would apply, or "".
func (s *Stack) RedoText() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.commands) {
		return ""
	}
	return s.commands[s.index].Name()
}

// Len returns the number of recorded steps, including the redo branch.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.commands)
}

// Index returns the number of applied steps.
func (s *Stack) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// SetClean marks the current state as saved.
func (s *Stack) SetClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clean = s.index
}

// IsClean reports whether the history sits at the saved state.
func (s *Stack) IsClean() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clean == s.index
}

// Clear forgets the whole history. The tree is left as it is, so the stack
// stays clean only if it was clean before.
func (s *Stack) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clean := -1
	if s.clean == s.index {
		clean = 0
	}
	s.commands = nil
	s.index = 0
	s.clean = clean
	s.macros = nil
}
