/*
Package strata is a layered document core: a tree of layers and masks with
clone layers that mirror other nodes, edited through reversible structural
commands.

Every edit (add, remove, move, retarget a clone) is a command recorded on an
undo stack. Removing a node that still has clones elsewhere in the tree turns
each clone into a standalone layer holding a snapshot of what it showed, and
undoing the removal brings the original clones back with their children and
bindings.

# Usage

	doc := strata.New("poster")
	ctx := context.Background()

	bg, _ := doc.AddNode(ctx, strata.NodeInit{Kind: domain.KindPaint, Name: "Background"}, doc.Root(), domain.NilNode)
	clone, _ := doc.AddNode(ctx, strata.NodeInit{Kind: domain.KindClone, Name: "Echo", Source: bg}, doc.Root(), bg)

	_ = doc.RemoveNodes(ctx, bg) // Echo becomes a standalone paint layer
	_ = doc.Undo(ctx)            // Background and Echo are back

# Observing

Install a ports.GraphListener with WithListener to receive paired
notifications around every structural change, or WithRefresher to receive the
region to recomposite when a node leaves the tree.

# Concurrency

A Document is not safe for concurrent writes. Use pkg/session to serialize
writers per document while letting readers traverse in parallel.
*/
package strata
