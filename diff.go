package goimportmap

import (
	"sort"

	"github.com/albertocavalcante/go-importmap/alias"
)

// EntryChange represents a rule present on only one side of a diff.
type EntryChange struct {
	// Pattern is the rule's pattern, with a trailing "*" for prefixes.
	Pattern string `json:"pattern"`

	// Mapping is the rule's mapping in display form.
	Mapping string `json:"mapping"`

	// Layer is the layer that owned the rule.
	Layer string `json:"layer"`
}

// EntryRewrite represents a rule whose mapping or owning layer differs
// between two maps.
type EntryRewrite struct {
	// Pattern is the rule's pattern, with a trailing "*" for prefixes.
	Pattern string `json:"pattern"`

	// OldMapping is the mapping in the old map.
	OldMapping string `json:"old_mapping"`

	// NewMapping is the mapping in the new map.
	NewMapping string `json:"new_mapping"`

	// OldLayer is the owning layer in the old map.
	OldLayer string `json:"old_layer"`

	// NewLayer is the owning layer in the new map.
	NewLayer string `json:"new_layer"`
}

// TableDiff describes the rule differences between two import maps.
//
// This is useful for:
//   - Seeing what a configuration change did to the final table
//   - Comparing the maps of two compilation contexts
//   - CI checks that assert an upgrade left the table unchanged
//
// Example usage:
//
//	oldMap, _ := goimportmap.Compose(ctx, lc)
//	newMap, _ := goimportmap.Compose(ctx, lc, goimportmap.WithUserAliases(aliases...))
//	diff := goimportmap.DiffImportMaps(oldMap, newMap)
//
//	if !diff.IsEmpty() {
//	    fmt.Printf("%d added, %d removed, %d changed\n",
//	        len(diff.Added), len(diff.Removed), len(diff.Changed))
//	}
type TableDiff struct {
	// Added contains rules present in new but not in old.
	Added []EntryChange `json:"added,omitempty"`

	// Removed contains rules present in old but not in new.
	Removed []EntryChange `json:"removed,omitempty"`

	// Changed contains rules whose mapping or owning layer differs.
	Changed []EntryRewrite `json:"changed,omitempty"`
}

// IsEmpty returns true if the two maps have identical rules.
func (d *TableDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// TotalChanges returns the total number of differences.
func (d *TableDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// DiffImportMaps computes the rule differences between two import maps.
//
// Rules are keyed by pattern; mappings are compared in display form, so
// two mappings that render identically count as equal. A nil map is
// treated as empty. Results are sorted by pattern for stable output.
func DiffImportMaps(old, new *ImportMap) *TableDiff {
	diff := &TableDiff{}

	oldEntries := entriesByPattern(old)
	newEntries := entriesByPattern(new)

	for pattern, ne := range newEntries {
		oe, existedBefore := oldEntries[pattern]
		if !existedBefore {
			diff.Added = append(diff.Added, EntryChange{
				Pattern: pattern,
				Mapping: alias.MappingString(ne.Mapping),
				Layer:   ne.Origin.Layer,
			})
			continue
		}
		oldMapping := alias.MappingString(oe.Mapping)
		newMapping := alias.MappingString(ne.Mapping)
		if oldMapping != newMapping || oe.Origin.Layer != ne.Origin.Layer {
			diff.Changed = append(diff.Changed, EntryRewrite{
				Pattern:    pattern,
				OldMapping: oldMapping,
				NewMapping: newMapping,
				OldLayer:   oe.Origin.Layer,
				NewLayer:   ne.Origin.Layer,
			})
		}
	}

	for pattern, oe := range oldEntries {
		if _, existsNow := newEntries[pattern]; !existsNow {
			diff.Removed = append(diff.Removed, EntryChange{
				Pattern: pattern,
				Mapping: alias.MappingString(oe.Mapping),
				Layer:   oe.Origin.Layer,
			})
		}
	}

	sortEntryChanges(diff.Added)
	sortEntryChanges(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool {
		return diff.Changed[i].Pattern < diff.Changed[j].Pattern
	})

	return diff
}

func entriesByPattern(m *ImportMap) map[string]alias.Entry {
	out := make(map[string]alias.Entry)
	if m == nil {
		return out
	}
	for _, e := range m.Table().Entries() {
		out[e.Pattern.String()] = e
	}
	return out
}

func sortEntryChanges(changes []EntryChange) {
	sort.Slice(changes, func(i, j int) bool {
		return changes[i].Pattern < changes[j].Pattern
	})
}
