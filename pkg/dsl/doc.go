/*
Package dsl provides a fluent builder for document snapshots.

	b := dsl.New("poster").Title("Summer Poster")
	b.Add("bg").Paint([]byte("...")).Name("Background").Bounds(0, 0, 800, 600)
	g := b.Add("shapes").Group()
	g.Add("circle").Paint(nil).Opacity(0.5)
	b.Add("echo").Clone("bg")

	spec, err := b.Build()

Build validates the result with schema.ValidateDocument, so a spec that builds
always imports.
*/
package dsl
