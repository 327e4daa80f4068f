package http

import (
	"context"
	"sync"

	"github.com/aretw0/strata/pkg/domain"
	"github.com/aretw0/strata/pkg/observability"
	"github.com/aretw0/strata/pkg/ports"
)

// EventHub keeps one Recorder per open document so that structural changes
// can be streamed to SSE clients.
type EventHub struct {
	mu        sync.Mutex
	recorders map[string]*observability.Recorder
	limit     int
}

// NewEventHub creates a hub whose recorders keep at most limit events each
// (0 uses observability.DefaultRecorderLimit).
func NewEventHub(limit int) *EventHub {
	return &EventHub{
		recorders: make(map[string]*observability.Recorder),
		limit:     limit,
	}
}

func (h *EventHub) recorder(docID string) *observability.Recorder {
	h.mu.Lock()
	defer h.mu.Unlock()
	rec, ok := h.recorders[docID]
	if !ok {
		rec = observability.NewRecorder(h.limit)
		h.recorders[docID] = rec
	}
	return rec
}

// Listener returns the listener to attach to document docID.
func (h *EventHub) Listener(docID string) ports.GraphListener {
	return h.recorder(docID)
}

// Subscribe streams the events of docID until ctx is done.
func (h *EventHub) Subscribe(ctx context.Context, docID string) <-chan domain.StructureEvent {
	return h.recorder(docID).Subscribe(ctx)
}

// History returns the events recorded so far for docID.
func (h *EventHub) History(docID string) []domain.StructureEvent {
	return h.recorder(docID).Events()
}

// Forget drops the recorder of a closed document.
func (h *EventHub) Forget(docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.recorders, docID)
}
