package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/strata/pkg/domain"
)

// DefaultRecorderLimit bounds the events kept by a Recorder.
const DefaultRecorderLimit = 1000

// Recorder turns listener notifications into StructureEvents, keeps the most
// recent ones and forwards each to live subscribers.
// Slow subscribers miss events rather than block the tree.
type Recorder struct {
	mu     sync.Mutex
	events []domain.StructureEvent
	limit  int
	subs   map[int]chan domain.StructureEvent
	nextID int
	now    func() time.Time
}

// NewRecorder creates a recorder keeping at most limit events (0 uses the default).
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultRecorderLimit
	}
	return &Recorder{
		limit: limit,
		subs:  make(map[int]chan domain.StructureEvent),
		now:   time.Now,
	}
}

// Events returns a copy of the recorded events, oldest first.
func (r *Recorder) Events() []domain.StructureEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.StructureEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops the recorded events. Subscribers stay attached.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Subscribe streams events recorded from now on. The channel is closed when
// ctx is done.
func (r *Recorder) Subscribe(ctx context.Context) <-chan domain.StructureEvent {
	ch := make(chan domain.StructureEvent, 64)

	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.subs[id] = ch
	r.mu.Unlock()

	go func() {
		<-ctx.Done()
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
		close(ch)
	}()
	return ch
}

func (r *Recorder) record(ev domain.StructureEvent) {
	ev.Timestamp = r.now()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	if over := len(r.events) - r.limit; over > 0 {
		r.events = append(r.events[:0], r.events[over:]...)
	}
	for _, ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (r *Recorder) AboutToAdd(parent domain.NodeID, index int) {
	r.record(domain.StructureEvent{Type: domain.EventAboutToAdd, Parent: parent, Index: index})
}

func (r *Recorder) Added(parent domain.NodeID, index int) {
	r.record(domain.StructureEvent{Type: domain.EventAdded, Parent: parent, Index: index})
}

func (r *Recorder) AboutToRemove(parent domain.NodeID, index int) {
	r.record(domain.StructureEvent{Type: domain.EventAboutToRemove, Parent: parent, Index: index})
}

func (r *Recorder) Removed(parent domain.NodeID, index int) {
	r.record(domain.StructureEvent{Type: domain.EventRemoved, Parent: parent, Index: index})
}

func (r *Recorder) AboutToMove(parent domain.NodeID, oldIndex, newIndex int) {
	r.record(domain.StructureEvent{Type: domain.EventAboutToMove, Parent: parent, OldIndex: oldIndex, NewIndex: newIndex})
}

func (r *Recorder) Moved(parent domain.NodeID, oldIndex, newIndex int) {
	r.record(domain.StructureEvent{Type: domain.EventMoved, Parent: parent, OldIndex: oldIndex, NewIndex: newIndex})
}
