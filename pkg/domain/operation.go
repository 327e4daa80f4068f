package domain

// OperationType names a structural edit a host can request.
type OperationType string

const (
	OpAdd       OperationType = "add"
	OpRemove    OperationType = "remove"
	OpMove      OperationType = "move"
	OpSetSource OperationType = "set_source"
	OpUndo      OperationType = "undo"
	OpRedo      OperationType = "redo"
	OpBatch     OperationType = "batch"
)

// Operation is a serializable structural edit.
// Node references accept a handle ("3.1"), a path ("/Background/Sky") or a
// unique node name.
type Operation struct {
	Op OperationType `json:"op" yaml:"op" mapstructure:"op"`

	// Node is the subject of move and set_source.
	Node string `json:"node,omitempty" yaml:"node,omitempty" mapstructure:"node"`
	// Nodes are the subtree tops removed by a remove operation.
	Nodes []string `json:"nodes,omitempty" yaml:"nodes,omitempty" mapstructure:"nodes"`

	// Parent and Anchor place the node for add and move. An empty anchor
	// inserts at the bottom of the stack unless Index is set.
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty" mapstructure:"parent"`
	Anchor string `json:"anchor,omitempty" yaml:"anchor,omitempty" mapstructure:"anchor"`
	Index  *int   `json:"index,omitempty" yaml:"index,omitempty" mapstructure:"index"`

	// Source is the new clone source for set_source ("" detaches the clone).
	Source string `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`

	// Spec describes the node (and subtree) created by add.
	Spec *NodeSpec `json:"spec,omitempty" yaml:"spec,omitempty" mapstructure:"spec"`

	// Name and Ops describe a batch: all Ops become one undoable macro.
	Name string      `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Ops  []Operation `json:"ops,omitempty" yaml:"ops,omitempty" mapstructure:"ops"`
}

// OperationResult reports what an applied operation produced.
type OperationResult struct {
	Created []NodeID `json:"created,omitempty"`
	CanUndo bool     `json:"can_undo"`
	CanRedo bool     `json:"can_redo"`
	Undo    string   `json:"undo,omitempty"`
	Redo    string   `json:"redo,omitempty"`
}
