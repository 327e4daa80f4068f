package domain

// Kind tags the closed set of node kinds a document can hold.
type Kind string

const (
	// KindRoot is the document root. Exactly one per tree.
	KindRoot Kind = "root"
	// KindGroup composes its children.
	KindGroup Kind = "group"
	// KindPaint owns pixel content directly.
	KindPaint Kind = "paint"
	// KindClone mirrors the composed content of its source node.
	KindClone Kind = "clone"
	// KindFilter is an adjustment layer; it carries settings, not pixels.
	KindFilter Kind = "filter"
	// KindMask is attached to a layer (transparency, selection, filter mask).
	KindMask Kind = "mask"
)

// Kinds lists every known kind in declaration order.
var Kinds = []Kind{KindRoot, KindGroup, KindPaint, KindClone, KindFilter, KindMask}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsLayer reports whether the kind is a layer (anything that may sit in a
// layer stack), as opposed to a mask or the root.
func (k Kind) IsLayer() bool {
	switch k {
	case KindGroup, KindPaint, KindClone, KindFilter:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
