package inspect

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const separatorWidth = 60 // Width of separator lines in text output

// ToJSON renders the report as indented JSON.
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToText renders the report as human-readable text.
func (r *Report) ToText() string {
	var buf bytes.Buffer

	if r.Context != nil {
		buf.WriteString(fmt.Sprintf("Import Map (%s, %s)\n", r.Context.Routing, r.Context.Mode))
	} else {
		buf.WriteString("Import Map\n")
	}
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	if r.Context != nil {
		if r.Context.Runtime != "" {
			buf.WriteString(fmt.Sprintf("Runtime: %s\n", r.Context.Runtime))
		}
		if r.Context.Dir != "" {
			buf.WriteString(fmt.Sprintf("Routing dir: %s\n", r.Context.Dir))
		}
		buf.WriteString(fmt.Sprintf("Project root: %s\n", r.Context.ProjectRoot))
		if r.Context.ServerActions {
			buf.WriteString("Server actions: enabled\n")
		}
		if r.Context.MDX {
			buf.WriteString("MDX: enabled\n")
		}
	}
	buf.WriteString(fmt.Sprintf("Total entries: %d\n", r.TotalEntries))
	buf.WriteString(fmt.Sprintf("Exact entries: %d\n", r.ExactEntries))
	buf.WriteString(fmt.Sprintf("Prefix entries: %d\n", r.PrefixEntries))
	buf.WriteString("\n")

	if len(r.Layers) > 0 {
		buf.WriteString("Entries by layer:\n")
		for _, lc := range r.Layers {
			buf.WriteString(fmt.Sprintf("  %-8s %d\n", lc.Layer, lc.Entries))
		}
		buf.WriteString("\n")
	}

	buf.WriteString("Rules:\n")
	for _, e := range r.Entries {
		buf.WriteString(fmt.Sprintf("  %s => %s  [%s]\n", e.Pattern, e.Mapping, originLabel(e.Layer, e.Note)))
		for _, s := range e.Shadowed {
			buf.WriteString(fmt.Sprintf("    shadows %s\n", s))
		}
	}

	return buf.String()
}

// ToJSON renders the explanation as indented JSON.
func (ex *Explanation) ToJSON() ([]byte, error) {
	return json.MarshalIndent(ex, "", "  ")
}

// ToText renders the explanation as human-readable text.
func (ex *Explanation) ToText() string {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Explanation for: %s\n", ex.Specifier))
	buf.WriteString(strings.Repeat("=", separatorWidth) + "\n\n")

	if !ex.Matched {
		buf.WriteString("No rule matches; the specifier falls through to normal resolution.\n")
		return buf.String()
	}

	buf.WriteString(fmt.Sprintf("Winning rule: %s\n", ex.Pattern))
	buf.WriteString(fmt.Sprintf("  Layer: %s\n", originLabel(ex.Layer, ex.Note)))
	if ex.Wildcard {
		buf.WriteString(fmt.Sprintf("  Captured suffix: %q\n", ex.Suffix))
	}
	buf.WriteString(fmt.Sprintf("  Mapping: %s\n", ex.Mapping))
	buf.WriteString(fmt.Sprintf("  Possible outcomes: %s\n", strings.Join(ex.Outcomes, ", ")))

	if len(ex.Shadowed) > 0 {
		buf.WriteString("\nShadowed origins (earliest first):\n")
		for i, s := range ex.Shadowed {
			buf.WriteString(fmt.Sprintf("  %d. %s\n", i+1, s))
		}
	}

	return buf.String()
}

func originLabel(layer, note string) string {
	if note == "" {
		return layer
	}
	return layer + " (" + note + ")"
}
