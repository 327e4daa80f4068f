package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/strata/pkg/domain"
)

// LogListener logs every structural notification at Debug.
type LogListener struct {
	Logger *slog.Logger
}

// NewLogListener creates a listener writing to logger.
func NewLogListener(logger *slog.Logger) *LogListener {
	return &LogListener{Logger: logger}
}

func (l *LogListener) log(event domain.EventType, parent domain.NodeID, attrs ...any) {
	l.Logger.Debug("structure", append([]any{"event", string(event), "parent", parent.String()}, attrs...)...)
}

func (l *LogListener) AboutToAdd(parent domain.NodeID, index int) {
	l.log(domain.EventAboutToAdd, parent, "index", index)
}

func (l *LogListener) Added(parent domain.NodeID, index int) {
	l.log(domain.EventAdded, parent, "index", index)
}

func (l *LogListener) AboutToRemove(parent domain.NodeID, index int) {
	l.log(domain.EventAboutToRemove, parent, "index", index)
}

func (l *LogListener) Removed(parent domain.NodeID, index int) {
	l.log(domain.EventRemoved, parent, "index", index)
}

func (l *LogListener) AboutToMove(parent domain.NodeID, oldIndex, newIndex int) {
	l.log(domain.EventAboutToMove, parent, "from", oldIndex, "to", newIndex)
}

func (l *LogListener) Moved(parent domain.NodeID, oldIndex, newIndex int) {
	l.log(domain.EventMoved, parent, "from", oldIndex, "to", newIndex)
}

// LogHooks logs every command, failed ones at Warn.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	logCommand := func(kind string) func(context.Context, *domain.CommandEvent) {
		return func(ctx context.Context, e *domain.CommandEvent) {
			if e.IsError {
				logger.WarnContext(ctx, kind+"_failed", "command", e.Command, "err", e.Error)
				return
			}
			logger.InfoContext(ctx, kind, "command", e.Command, "duration", e.Duration)
		}
	}
	return domain.LifecycleHooks{
		OnCommand: logCommand("command"),
		OnUndo:    logCommand("undo"),
		OnRedo:    logCommand("redo"),
	}
}

// MergeHooks calls every non-nil hook of each set in order.
func MergeHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	merge := func(pick func(domain.LifecycleHooks) func(context.Context, *domain.CommandEvent)) func(context.Context, *domain.CommandEvent) {
		var fns []func(context.Context, *domain.CommandEvent)
		for _, s := range sets {
			if fn := pick(s); fn != nil {
				fns = append(fns, fn)
			}
		}
		if len(fns) == 0 {
			return nil
		}
		return func(ctx context.Context, e *domain.CommandEvent) {
			for _, fn := range fns {
				fn(ctx, e)
			}
		}
	}
	return domain.LifecycleHooks{
		OnCommand: merge(func(h domain.LifecycleHooks) func(context.Context, *domain.CommandEvent) { return h.OnCommand }),
		OnUndo:    merge(func(h domain.LifecycleHooks) func(context.Context, *domain.CommandEvent) { return h.OnUndo }),
		OnRedo:    merge(func(h domain.LifecycleHooks) func(context.Context, *domain.CommandEvent) { return h.OnRedo }),
	}
}
