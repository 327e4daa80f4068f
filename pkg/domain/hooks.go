package domain

import (
	"context"
	"time"
)

// CommandEvent describes one command pushed, undone or redone by an editor.
type CommandEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Command   string        `json:"command"`
	Duration  time.Duration `json:"duration"`
	IsError   bool          `json:"is_error,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnCommand func(context.Context, *CommandEvent)
	OnUndo    func(context.Context, *CommandEvent)
	OnRedo    func(context.Context, *CommandEvent)
}
