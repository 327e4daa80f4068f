/*
Package tree implements the document node tree: an arena of nodes addressed by
generation-checked handles (domain.NodeID), their ordered child containers, the
clone registry and the GraphListener protocol.

# Handles

Nodes never hold pointers to each other. Every reference (parent, children,
clone source, clone registry) is a domain.NodeID. A slot freed by Destroy bumps
its generation, so stale handles resolve to "not found" instead of a recycled node.

# Read and write groups

Readers go through ChildView, a snapshot of a child sequence that exposes only
read operations. Writes (append, insert, remove, clear) are reachable only from
the Tree's mutation methods. The Tree itself holds no lock: the host serializes
writers and may run any number of readers between writes (see pkg/session).

# Listeners

A GraphListener installed with SetListener is inherited by every node attached
below it and cleared from a subtree when it is detached. Every mutation is
bracketed by an "about to" and a "done" notification sent to the listener of the
parent whose sequence changes.
*/
package tree
