package domain

import "time"

// EventType names one GraphListener notification.
type EventType string

const (
	EventAboutToAdd    EventType = "about_to_add"
	EventAdded         EventType = "added"
	EventAboutToRemove EventType = "about_to_remove"
	EventRemoved       EventType = "removed"
	EventAboutToMove   EventType = "about_to_move"
	EventMoved         EventType = "moved"
)

// IsBefore reports whether the event is the "before" half of a pair.
func (t EventType) IsBefore() bool {
	return t == EventAboutToAdd || t == EventAboutToRemove || t == EventAboutToMove
}

// StructureEvent is the serializable record of one listener notification.
// Index is used by add/remove; OldIndex/NewIndex by move.
type StructureEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Parent    NodeID    `json:"parent"`
	Index     int       `json:"index"`
	OldIndex  int       `json:"old_index,omitempty"`
	NewIndex  int       `json:"new_index,omitempty"`
}
