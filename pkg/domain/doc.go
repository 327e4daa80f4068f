/*
Package domain contains the core domain models of the Strata document engine.

It defines the vocabulary shared by the tree, the structural commands and every
adapter: node handles, node kinds, the opaque content handle, structural events and
the serializable document snapshot. The package is kept pure and free of I/O,
following Hexagonal Architecture principles.

# Key Entities

  - NodeID: a generation-checked handle into a document's node arena.
  - Kind: the closed set of node kinds (root, group, paint, clone, filter, mask).
  - Content: the opaque paint payload of a node; only snapshots and the
    "bears content" capability are visible to the core.
  - DocumentSpec / NodeSpec: the structural snapshot used for persistence.
  - Operation: a serializable structural edit requested by a host.
  - StructureEvent: a record of one GraphListener notification.
*/
package domain
