package inspect

import (
	goimportmap "github.com/albertocavalcante/go-importmap"
	"github.com/albertocavalcante/go-importmap/alias"
)

// layerOrder lists the composition layers in application order.
var layerOrder = []string{
	goimportmap.LayerShared,
	goimportmap.LayerMode,
	goimportmap.LayerRouting,
	goimportmap.LayerRuntime,
	goimportmap.LayerUser,
	goimportmap.LayerGuard,
}

// Report is a composed import map captured as plain data.
type Report struct {
	// Context identifies the compilation context the map was composed
	// for. Nil for maps that are not bound to a context, such as the
	// build-runtime map.
	Context *ContextInfo `json:"context,omitempty"`

	// TotalEntries counts all rules in the table.
	TotalEntries int `json:"total_entries"`

	// ExactEntries counts exact-pattern rules.
	ExactEntries int `json:"exact_entries"`

	// PrefixEntries counts wildcard-prefix rules.
	PrefixEntries int `json:"prefix_entries"`

	// Layers counts surviving rules per composition layer, in the
	// order the layers were applied. Layers that contributed nothing
	// are omitted.
	Layers []LayerCount `json:"layers,omitempty"`

	// Entries lists every rule: exact patterns sorted by specifier,
	// then prefix patterns in insertion order.
	Entries []EntryInfo `json:"entries,omitempty"`
}

// ContextInfo identifies the compilation context a report describes.
type ContextInfo struct {
	Routing       string `json:"routing"`
	Dir           string `json:"dir,omitempty"`
	Mode          string `json:"mode"`
	Runtime       string `json:"runtime,omitempty"`
	ServerActions bool   `json:"server_actions,omitempty"`
	MDX           bool   `json:"mdx,omitempty"`
	ProjectRoot   string `json:"project_root"`
}

// LayerCount is the number of surviving rules one composition layer
// contributed.
type LayerCount struct {
	Layer   string `json:"layer"`
	Entries int    `json:"entries"`
}

// EntryInfo is one rule of the table in report order.
type EntryInfo struct {
	// Pattern renders the rule's pattern; prefix patterns carry a
	// trailing "*".
	Pattern string `json:"pattern"`

	// Wildcard reports whether the rule is a prefix pattern.
	Wildcard bool `json:"wildcard,omitempty"`

	// Mapping renders the rule's resolution instruction.
	Mapping string `json:"mapping"`

	// Layer is the composition layer that inserted the surviving rule.
	Layer string `json:"layer"`

	// Note is the provenance note recorded with the rule.
	Note string `json:"note,omitempty"`

	// Shadowed renders the origins this rule overwrote, earliest first.
	Shadowed []string `json:"shadowed,omitempty"`
}

// New captures a composed map as a Report. Entry order follows
// Table.Entries and layer order follows the composition pipeline, so
// identical maps produce deeply equal reports.
func New(m *goimportmap.ImportMap) *Report {
	sum := m.Summary()
	r := &Report{
		TotalEntries:  sum.TotalEntries,
		ExactEntries:  sum.ExactEntries,
		PrefixEntries: sum.PrefixEntries,
	}
	if m.Context != (goimportmap.LayerContext{}) {
		r.Context = contextInfo(m.Context)
	}
	for _, layer := range layerOrder {
		if n := sum.ByLayer[layer]; n > 0 {
			r.Layers = append(r.Layers, LayerCount{Layer: layer, Entries: n})
		}
	}
	entries := m.Table().Entries()
	r.Entries = make([]EntryInfo, 0, len(entries))
	for _, e := range entries {
		r.Entries = append(r.Entries, entryInfo(e))
	}
	return r
}

func contextInfo(c goimportmap.LayerContext) *ContextInfo {
	info := &ContextInfo{
		Routing:       c.Routing.String(),
		Dir:           c.Routing.Dir(),
		Mode:          string(c.Mode),
		ServerActions: c.Flags.ServerActions,
		MDX:           c.Flags.MDX,
		ProjectRoot:   c.ProjectRoot,
	}
	if c.Routing.Server() {
		info.Runtime = string(c.Runtime)
	}
	return info
}

func entryInfo(e alias.Entry) EntryInfo {
	info := EntryInfo{
		Pattern:  e.Pattern.String(),
		Wildcard: e.Pattern.IsWildcard(),
		Mapping:  alias.MappingString(e.Mapping),
		Layer:    e.Origin.Layer,
		Note:     e.Origin.Note,
	}
	for _, o := range e.Shadowed {
		info.Shadowed = append(info.Shadowed, o.String())
	}
	return info
}

// Explanation describes how one specifier fares against a composed map.
type Explanation struct {
	// Specifier is the import specifier that was explained.
	Specifier string `json:"specifier"`

	// Matched reports whether any rule applies. When false the
	// bundler falls through to its normal resolution.
	Matched bool `json:"matched"`

	// Pattern renders the winning rule's pattern.
	Pattern string `json:"pattern,omitempty"`

	// Wildcard reports whether the winning rule is a prefix pattern.
	Wildcard bool `json:"wildcard,omitempty"`

	// Suffix is the wildcard capture, empty for exact rules.
	Suffix string `json:"suffix,omitempty"`

	// Mapping renders the winning mapping with the capture already
	// substituted.
	Mapping string `json:"mapping,omitempty"`

	// Outcomes lists the answer kinds a lookup could produce, in the
	// order the mapping reaches them. "unresolved" appears when every
	// branch of the mapping can miss.
	Outcomes []string `json:"outcomes,omitempty"`

	// Layer is the composition layer that inserted the winning rule.
	Layer string `json:"layer,omitempty"`

	// Note is the provenance note recorded with the rule.
	Note string `json:"note,omitempty"`

	// Shadowed renders the origins the winning rule overwrote,
	// earliest first.
	Shadowed []string `json:"shadowed,omitempty"`
}

// Explain reports how a specifier would fare against a composed map
// without touching the filesystem. It names the winning rule, the
// layer that inserted it, the origins it overwrote, and the answer
// kinds a lookup could produce.
func Explain(m *goimportmap.ImportMap, specifier string) *Explanation {
	ex := &Explanation{Specifier: specifier}

	match, ok := m.Table().Lookup(specifier)
	if !ok {
		return ex
	}

	ex.Matched = true
	ex.Pattern = match.Pattern.String()
	ex.Wildcard = match.Pattern.IsWildcard()
	ex.Suffix = match.Suffix
	ex.Mapping = alias.MappingString(match.Mapping)
	ex.Outcomes = possibleOutcomes(match.Mapping)
	ex.Layer = match.Origin.Layer
	ex.Note = match.Origin.Note

	for _, e := range m.Table().Entries() {
		if e.Pattern != match.Pattern {
			continue
		}
		for _, o := range e.Shadowed {
			ex.Shadowed = append(ex.Shadowed, o.String())
		}
		break
	}
	return ex
}

// possibleOutcomes classifies the answer kinds a mapping can produce.
func possibleOutcomes(m alias.Mapping) []string {
	kinds, fallible := outcomes(m, nil)
	if fallible {
		kinds = appendKind(kinds, goimportmap.AnswerUnresolved)
	}
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = k.String()
	}
	return out
}

// outcomes appends the answer kinds m can produce and reports whether m
// can also produce nothing at all, letting an enclosing alternative
// chain continue past it.
func outcomes(m alias.Mapping, dst []goimportmap.AnswerKind) ([]goimportmap.AnswerKind, bool) {
	switch m := m.(type) {
	case alias.Direct:
		return appendKind(dst, goimportmap.AnswerResolved), true
	case alias.External:
		return appendKind(dst, goimportmap.AnswerExternal), false
	case alias.Singleton:
		return appendKind(dst, goimportmap.AnswerResolved), false
	case alias.Dynamic:
		return appendKind(dst, goimportmap.AnswerDeferred), false
	case alias.Alternatives:
		for _, alt := range m {
			var fallible bool
			dst, fallible = outcomes(alt, dst)
			if !fallible {
				// Later alternatives are unreachable.
				return dst, false
			}
		}
		return dst, true
	default:
		return dst, true
	}
}

func appendKind(dst []goimportmap.AnswerKind, k goimportmap.AnswerKind) []goimportmap.AnswerKind {
	for _, have := range dst {
		if have == k {
			return dst
		}
	}
	return append(dst, k)
}
