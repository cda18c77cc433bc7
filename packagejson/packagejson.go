// Package packagejson parses npm package manifests and resolves their
// entry points.
//
// Only the fields the resolver consults are modeled. The "exports" and
// "imports" trees keep object keys in declaration order, which the
// Node.js resolution algorithm requires for conditional targets.
package packagejson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Manifest is the subset of a package.json document that entry-point
// resolution needs.
type Manifest struct {
	// Name is the package name.
	Name string `json:"name"`

	// Version is the published version string.
	Version string `json:"version,omitempty"`

	// Main is the legacy entry point, consulted only when Exports is
	// absent.
	Main string `json:"main,omitempty"`

	// Types points at the TypeScript declarations entry.
	Types string `json:"types,omitempty"`

	// Exports is the modern entry-point map. When present it is the
	// only authority on which subpaths the package exposes.
	Exports *ExportValue `json:"exports,omitempty"`

	// Imports maps "#"-prefixed internal specifiers.
	Imports *ExportValue `json:"imports,omitempty"`

	// SideEffects declares which files are safe to drop when unused.
	SideEffects *SideEffects `json:"sideEffects,omitempty"`
}

// Parse decodes a package.json document.
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse package manifest: %w", err)
	}
	return &m, nil
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read package manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ResolveExport resolves subpath through the manifest's "exports" map.
//
// subpath is "." for the package root or "./<path>" for a nested entry;
// a bare name is normalized to the dotted form. conditions are matched
// against condition keys in declaration order, with "default" always
// active. The boolean is false when the manifest has no exports map or
// the map does not expose the subpath under the given conditions.
func (m *Manifest) ResolveExport(subpath string, conditions []string) (string, bool) {
	if m.Exports == nil {
		return "", false
	}
	subpath = normalizeSubpath(subpath)
	active := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		active[c] = struct{}{}
	}

	root := m.Exports
	if !root.isSubpathMap() {
		if subpath != "." {
			return "", false
		}
		return finish(root.resolve(active))
	}

	// An exact subpath key wins outright; pattern keys are not
	// consulted once one exists, even if it resolves to nothing.
	if node, ok := root.lookup(subpath); ok {
		return finish(node.resolve(active))
	}

	node, matched, ok := root.bestPattern(subpath)
	if !ok {
		return "", false
	}
	target, state := node.resolve(active)
	if state != exportFound || target == "" {
		return "", false
	}
	return strings.ReplaceAll(target, "*", matched), true
}

func normalizeSubpath(subpath string) string {
	switch {
	case subpath == "" || subpath == ".":
		return "."
	case strings.HasPrefix(subpath, "./"):
		return subpath
	default:
		return "./" + subpath
	}
}

func finish(target string, state exportState) (string, bool) {
	if state != exportFound || target == "" {
		return "", false
	}
	return target, true
}

// ExportValue is one node of an "exports" or "imports" tree. Exactly
// one shape is populated: a string Target, an ordered list of
// Conditions, a list of fallback Alternatives, or Null for an entry
// the package explicitly blocks.
type ExportValue struct {
	// Target is the string form, a path relative to the package root.
	Target string

	// Conditions holds the object form's keys in declaration order.
	// Keys are either condition names or "./" subpaths.
	Conditions []Condition

	// Alternatives is the array form; the first entry that resolves
	// wins.
	Alternatives []ExportValue

	// Null marks an explicit null, which blocks the subpath.
	Null bool
}

// Condition is a single key of a conditional object.
type Condition struct {
	Key   string
	Value ExportValue
}

// UnmarshalJSON decodes any shape the exports grammar allows, keeping
// object keys in declaration order.
func (v *ExportValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty exports value")
	}
	switch trimmed[0] {
	case '"':
		return json.Unmarshal(trimmed, &v.Target)
	case 'n':
		if string(trimmed) != "null" {
			return fmt.Errorf("invalid exports value %q", trimmed)
		}
		v.Null = true
		return nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return err
		}
		v.Alternatives = make([]ExportValue, len(items))
		for i, item := range items {
			if err := json.Unmarshal(item, &v.Alternatives[i]); err != nil {
				return err
			}
		}
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		if _, err := dec.Token(); err != nil {
			return err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := tok.(string)
			if !ok {
				return fmt.Errorf("invalid exports key %v", tok)
			}
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			var child ExportValue
			if err := json.Unmarshal(raw, &child); err != nil {
				return fmt.Errorf("exports key %q: %w", key, err)
			}
			v.Conditions = append(v.Conditions, Condition{Key: key, Value: child})
		}
		_, err := dec.Token()
		return err
	default:
		return fmt.Errorf("unsupported exports value %q", trimmed)
	}
}

// isSubpathMap reports whether the object's keys name subpaths rather
// than conditions. Mixing the two is invalid per Node.js, so checking
// the first key suffices.
func (v *ExportValue) isSubpathMap() bool {
	return len(v.Conditions) > 0 && strings.HasPrefix(v.Conditions[0].Key, ".")
}

// lookup finds an object key by exact name.
func (v *ExportValue) lookup(key string) (*ExportValue, bool) {
	for i := range v.Conditions {
		if v.Conditions[i].Key == key {
			return &v.Conditions[i].Value, true
		}
	}
	return nil, false
}

// bestPattern matches subpath against the object's wildcard keys,
// preferring the longest literal prefix and then the longest literal
// suffix, the order Node.js specifies for pattern keys. It returns the
// matched node and the text captured by the wildcard.
func (v *ExportValue) bestPattern(subpath string) (*ExportValue, string, bool) {
	var (
		best      *ExportValue
		bestMatch string
		bestPre   = -1
		bestSuf   = -1
	)
	for i := range v.Conditions {
		c := &v.Conditions[i]
		star := strings.Index(c.Key, "*")
		if star < 0 {
			continue
		}
		prefix, suffix := c.Key[:star], c.Key[star+1:]
		if len(subpath) < len(prefix)+len(suffix) {
			continue
		}
		if !strings.HasPrefix(subpath, prefix) || !strings.HasSuffix(subpath, suffix) {
			continue
		}
		if len(prefix) < bestPre || (len(prefix) == bestPre && len(suffix) <= bestSuf) {
			continue
		}
		best = &c.Value
		bestMatch = subpath[len(prefix) : len(subpath)-len(suffix)]
		bestPre, bestSuf = len(prefix), len(suffix)
	}
	if best == nil {
		return nil, "", false
	}
	return best, bestMatch, true
}

type exportState int

const (
	// exportUnmatched means no condition applied and the walk may
	// continue with the next candidate.
	exportUnmatched exportState = iota
	// exportBlocked means an explicit null ended the walk.
	exportBlocked
	// exportFound means the walk produced a target string.
	exportFound
)

// resolve walks one node under the active condition set. A "default"
// key always applies. Explicit null blocks instead of falling through
// to later keys, matching the Node.js algorithm.
func (v *ExportValue) resolve(active map[string]struct{}) (string, exportState) {
	switch {
	case v.Null:
		return "", exportBlocked
	case v.Alternatives != nil:
		for i := range v.Alternatives {
			if target, state := v.Alternatives[i].resolve(active); state != exportUnmatched {
				return target, state
			}
		}
		return "", exportUnmatched
	case v.Conditions != nil:
		for i := range v.Conditions {
			c := &v.Conditions[i]
			if c.Key != "default" {
				if _, ok := active[c.Key]; !ok {
					continue
				}
			}
			if target, state := c.Value.resolve(active); state != exportUnmatched {
				return target, state
			}
		}
		return "", exportUnmatched
	default:
		return v.Target, exportFound
	}
}

// SideEffects models the "sideEffects" manifest field, which is either
// a boolean or a list of glob patterns naming files with side effects.
type SideEffects struct {
	// All is the boolean form; nil when the list form is used.
	All *bool

	// Patterns is the list form.
	Patterns []string
}

// UnmarshalJSON accepts both shapes of the field.
func (s *SideEffects) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return errors.New("empty sideEffects value")
	}
	if trimmed[0] == '[' {
		return json.Unmarshal(trimmed, &s.Patterns)
	}
	var all bool
	if err := json.Unmarshal(trimmed, &all); err != nil {
		return fmt.Errorf("sideEffects must be a boolean or a list: %w", err)
	}
	s.All = &all
	return nil
}
