package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/pkg/domain"
)

// GraphOverlay contains selection data to visualize on the graph.
type GraphOverlay struct {
	Highlighted []string
	Current     string
}

// GenerateMermaid produces a Mermaid flowchart of a document: solid edges for
// containment (parent to child, in stacking order) and dotted edges from each
// clone to its source.
// Shapes follow the node kind:
// - Root: ((Circle))
// - Group: [[Subroutine]]
// - Clone: ([Stadium])
// - Filter: {{Hexagon}}
// - Mask: [/Parallelogram/]
// - Paint: [Rectangle]
// Clones whose source is missing are styled as dangling.
func GenerateMermaid(doc *domain.DocumentSpec, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	known := make(map[string]bool)
	doc.Walk(func(_ string, n *domain.NodeSpec) bool {
		known[n.ID] = true
		return true
	})

	var dangling []string
	doc.Walk(func(parentID string, n *domain.NodeSpec) bool {
		safeID := sanitizeMermaidID(n.ID)
		opener, closer := shape(n.Kind)

		label := n.ID
		if n.Name != "" && n.Name != n.ID {
			label = fmt.Sprintf("%s <br/> %s", n.Name, n.ID)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, strings.ReplaceAll(label, "\"", "'"), closer))

		if parentID != "" {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(parentID), safeID))
		}
		if n.Source != "" {
			if known[n.Source] {
				sb.WriteString(fmt.Sprintf("    %s -. mirrors .-> %s\n", safeID, sanitizeMermaidID(n.Source)))
			} else {
				dangling = append(dangling, safeID)
			}
		}
		return true
	})

	if len(dangling) > 0 {
		sb.WriteString("\n    %% Dangling clones\n")
		sb.WriteString("    classDef dangling stroke:#d32f2f,stroke-width:2px,stroke-dasharray:4 2;\n")
		for _, id := range dangling {
			sb.WriteString(fmt.Sprintf("    class %s dangling;\n", id))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef highlighted fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Highlighted {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && known[id] {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s highlighted;\n", safeID))
			}
		}

		if overlay.Current != "" && known[overlay.Current] {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Current)))
		}
	}

	return sb.String()
}

func shape(kind domain.Kind) (string, string) {
	switch kind {
	case domain.KindRoot:
		return "((", "))"
	case domain.KindGroup:
		return "[[", "]]"
	case domain.KindClone:
		return "([", "])"
	case domain.KindFilter:
		return "{{", "}}"
	case domain.KindMask:
		return "[/", "/]"
	default:
		return "[", "]"
	}
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
