/*
Package command implements the reversible structural edits of a document tree.

Every command captures, when it is built, exactly the state it needs to invert
itself. Redo applies the edit and Undo reverses it; both are no-ops when the
command is already in the requested state, so a command can alternate between
the two any number of times.

RemoveSubtree is clone-aware: before removing a node that still has clones
outside the removed set, each such clone is replaced by a standalone paint node
holding a snapshot of what the clone showed. The replacement is recorded as
ordinary sub-commands, which Undo replays in mirrored order.
*/
package command
