package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeID addresses a node slot inside a document's arena.
// Gen is bumped every time a slot is recycled, so a handle kept past the
// destruction of its node resolves to "not found" instead of aliasing a newer node.
// The zero value is the nil handle.
type NodeID struct {
	Slot uint32 `json:"slot" yaml:"slot"`
	Gen  uint32 `json:"gen" yaml:"gen"`
}

// NilNode is the nil handle.
var NilNode = NodeID{}

// IsNil reports whether the handle is the nil handle.
func (id NodeID) IsNil() bool {
	return id.Gen == 0
}

// String renders the handle as "slot.gen", or "nil".
func (id NodeID) String() string {
	if id.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d.%d", id.Slot, id.Gen)
}

// MarshalText implements encoding.TextMarshaler.
func (id NodeID) MarshalText() ([]byte, error) {
	if id.IsNil() {
		return []byte{}, nil
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *NodeID) UnmarshalText(text []byte) error {
	parsed, err := ParseNodeID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseNodeID parses the "slot.gen" form produced by String.
// Empty strings and "nil" parse to the nil handle.
func ParseNodeID(s string) (NodeID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "nil" {
		return NilNode, nil
	}
	slotStr, genStr, ok := strings.Cut(s, ".")
	if !ok {
		return NilNode, fmt.Errorf("%w: %q", ErrInvalidNodeID, s)
	}
	slot, err := strconv.ParseUint(slotStr, 10, 32)
	if err != nil {
		return NilNode, fmt.Errorf("%w: %q", ErrInvalidNodeID, s)
	}
	gen, err := strconv.ParseUint(genStr, 10, 32)
	if err != nil || gen == 0 {
		return NilNode, fmt.Errorf("%w: %q", ErrInvalidNodeID, s)
	}
	return NodeID{Slot: uint32(slot), Gen: uint32(gen)}, nil
}
