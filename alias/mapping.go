package alias

import "strings"

// Mapping is the interface for all resolution instructions attached to a
// pattern. See the concrete types for semantics.
//
// The variants mirror the import mapping forms of the Next.js bundler
// toolchain. Reference:
// https://github.com/vercel/next.js/blob/canary/packages/next-swc/crates/next-core/src/next_import_map.rs
type Mapping interface {
	isMapping()
}

// Direct resolves Request relative to the Base directory through the
// resolution oracle. Request may contain "*" when paired with a prefix
// pattern; the captured suffix is substituted before resolution.
type Direct struct {
	Request string
	Base    string
}

func (Direct) isMapping() {}

// String returns "request (from base)".
func (m Direct) String() string {
	return m.Request + " (from " + m.Base + ")"
}

// External leaves the specifier unresolved so the bundler treats it as a
// runtime-provided dependency. An empty Name keeps the original specifier;
// a non-empty Name replaces it.
type External struct {
	Name string
}

func (External) isMapping() {}

// String returns "external" or "external:name".
func (m External) String() string {
	if m.Name == "" {
		return "external"
	}
	return "external:" + m.Name
}

// Alternatives is an ordered fallback chain. Each mapping is tried in
// order and the first one that produces an answer wins; later entries are
// not evaluated once one succeeds.
type Alternatives []Mapping

func (Alternatives) isMapping() {}

// String returns "alternatives[a | b | ...]".
func (m Alternatives) String() string {
	parts := make([]string, len(m))
	for i, alt := range m {
		parts[i] = MappingString(alt)
	}
	return "alternatives[" + strings.Join(parts, " | ") + "]"
}

// Singleton forces every resolution of Name to the single package root
// recorded in Root, guaranteeing one physical copy of the dependency.
// Root is pinned when the table is composed; lookups never probe again.
type Singleton struct {
	Name string
	Root string
}

func (Singleton) isMapping() {}

// String returns "singleton name @ root".
func (m Singleton) String() string {
	return "singleton " + m.Name + " @ " + m.Root
}

// Dynamic defers resolution to the registered handler with this id. The
// handler is invoked by the surrounding pipeline, not by the table.
type Dynamic struct {
	HandlerID string
}

func (Dynamic) isMapping() {}

// String returns "dynamic:handler-id".
func (m Dynamic) String() string {
	return "dynamic:" + m.HandlerID
}

// MappingString renders any mapping for diagnostics.
func MappingString(m Mapping) string {
	type stringer interface{ String() string }
	if s, ok := m.(stringer); ok {
		return s.String()
	}
	return "unknown mapping"
}

// Substitute replaces every "*" in the mapping with the captured suffix.
// Direct requests and External names are substituted; Alternatives are
// substituted recursively. Singleton and Dynamic mappings are returned
// unchanged, as are mappings without a wildcard.
func Substitute(m Mapping, suffix string) Mapping {
	switch v := m.(type) {
	case Direct:
		if strings.Contains(v.Request, "*") {
			v.Request = strings.ReplaceAll(v.Request, "*", suffix)
		}
		return v
	case External:
		if strings.Contains(v.Name, "*") {
			v.Name = strings.ReplaceAll(v.Name, "*", suffix)
		}
		return v
	case Alternatives:
		out := make(Alternatives, len(v))
		for i, alt := range v {
			out[i] = Substitute(alt, suffix)
		}
		return out
	default:
		return m
	}
}
