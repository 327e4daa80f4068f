// Package schema validates document snapshots before they are imported.
//
// ValidateDocument walks a DocumentSpec and reports every problem it finds
// instead of stopping at the first one:
//
//	if err := schema.ValidateDocument(spec, registry.Init()); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        fmt.Println(e)
//	    }
//	}
//
// The checks mirror what the tree enforces at runtime: unique node IDs, known
// kinds, children allowed by their parent's capabilities, clone sources that
// exist and do not make a node depend on itself.
package schema
