package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/strata/internal/runtime"
	"github.com/aretw0/strata/pkg/domain"
)

// OutlineMarkdown renders an outline as a nested markdown list.
func OutlineMarkdown(title string, entries []runtime.OutlineEntry) string {
	var sb strings.Builder
	if title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", title)
	}
	for _, e := range entries {
		sb.WriteString(strings.Repeat("  ", e.Depth))
		sb.WriteString("- ")
		sb.WriteString(OutlineLine(e))
		sb.WriteString("\n")
	}
	return sb.String()
}

// OutlineLine describes one entry: name, kind, handle and clone details.
func OutlineLine(e runtime.OutlineEntry) string {
	name := e.Name
	if name == "" {
		name = e.Key
	}
	if name == "" {
		name = e.ID.String()
	}

	parts := []string{fmt.Sprintf("**%s** `%s` (%s)", name, e.Kind, e.ID)}
	if e.Source != "" {
		parts = append(parts, "mirrors "+e.Source)
	} else if e.Kind == domain.KindClone {
		parts = append(parts, "dangling")
	}
	if e.Clones > 0 {
		parts = append(parts, fmt.Sprintf("%d clone(s)", e.Clones))
	}
	if !e.Visible {
		parts = append(parts, "hidden")
	}
	return strings.Join(parts, " · ")
}
