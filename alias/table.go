package alias

import "sort"

// Origin records which composition layer inserted a rule. Note carries
// optional per-rule detail for diagnostics.
type Origin struct {
	Layer string `json:"layer"`
	Note  string `json:"note,omitempty"`
}

// String returns "layer" or "layer (note)".
func (o Origin) String() string {
	if o.Note == "" {
		return o.Layer
	}
	return o.Layer + " (" + o.Note + ")"
}

// Entry is one published rule: pattern, mapping, the origin that inserted
// it, and the origins it overwrote (earliest first).
type Entry struct {
	Pattern  Pattern
	Mapping  Mapping
	Origin   Origin
	Shadowed []Origin
}

type record struct {
	pattern  Pattern
	mapping  Mapping
	origin   Origin
	shadowed []Origin
	seq      int
}

func (r *record) entry() Entry {
	return Entry{
		Pattern:  r.pattern,
		Mapping:  r.mapping,
		Origin:   r.origin,
		Shadowed: r.shadowed,
	}
}

// Builder accumulates rules for a Table. Inserting a pattern that is
// already present in its registry overwrites the earlier rule and records
// its origin as shadowed. Builders are not safe for concurrent use.
type Builder struct {
	exact       map[string]*record
	prefixes    []*record
	prefixIndex map[string]int
	seq         int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		exact:       make(map[string]*record),
		prefixIndex: make(map[string]int),
	}
}

// InsertExact inserts or overwrites an exact rule. Empty specifiers and
// nil mappings are ignored.
func (b *Builder) InsertExact(specifier string, m Mapping, o Origin) {
	if specifier == "" || m == nil {
		return
	}
	b.seq++
	if prev, ok := b.exact[specifier]; ok {
		prev.shadowed = append(prev.shadowed, prev.origin)
		prev.mapping = m
		prev.origin = o
		prev.seq = b.seq
		return
	}
	b.exact[specifier] = &record{
		pattern: Pattern{kind: patternExact, value: specifier},
		mapping: m,
		origin:  o,
		seq:     b.seq,
	}
}

// InsertPrefix inserts or overwrites a prefix rule. Empty prefixes and
// nil mappings are ignored.
func (b *Builder) InsertPrefix(prefix string, m Mapping, o Origin) {
	if prefix == "" || m == nil {
		return
	}
	b.seq++
	if idx, ok := b.prefixIndex[prefix]; ok {
		prev := b.prefixes[idx]
		prev.shadowed = append(prev.shadowed, prev.origin)
		prev.mapping = m
		prev.origin = o
		prev.seq = b.seq
		return
	}
	b.prefixIndex[prefix] = len(b.prefixes)
	b.prefixes = append(b.prefixes, &record{
		pattern: Pattern{kind: patternPrefix, value: prefix},
		mapping: m,
		origin:  o,
		seq:     b.seq,
	})
}

// Insert dispatches on the pattern kind. Zero-value patterns are ignored.
func (b *Builder) Insert(p Pattern, m Mapping, o Origin) {
	switch p.kind {
	case patternExact:
		b.InsertExact(p.value, m, o)
	case patternPrefix:
		b.InsertPrefix(p.value, m, o)
	}
}

// Len returns the number of rules currently in the builder.
func (b *Builder) Len() int {
	return len(b.exact) + len(b.prefixes)
}

// Build publishes the accumulated rules as an immutable Table. The
// builder remains usable; the table does not observe later inserts.
func (b *Builder) Build() *Table {
	t := &Table{
		exact:    make(map[string]*record, len(b.exact)),
		prefixes: make([]*record, len(b.prefixes)),
	}
	for k, r := range b.exact {
		cp := *r
		cp.shadowed = append([]Origin(nil), r.shadowed...)
		t.exact[k] = &cp
	}
	for i, r := range b.prefixes {
		cp := *r
		cp.shadowed = append([]Origin(nil), r.shadowed...)
		t.prefixes[i] = &cp
	}
	return t
}

// Table is a published, immutable rule set. Concurrent lookups are safe
// without locking.
type Table struct {
	exact    map[string]*record
	prefixes []*record
}

// Match is a successful lookup: the winning pattern, the mapping with any
// wildcard capture already substituted, the captured suffix, and the
// origin of the winning rule.
type Match struct {
	Pattern Pattern
	Mapping Mapping
	Suffix  string
	Origin  Origin
}

// Lookup finds the rule for a specifier. Exact rules always win. Among
// prefix rules the longest matching prefix wins, and among equal-length
// prefixes the most recently inserted rule wins.
func (t *Table) Lookup(specifier string) (Match, bool) {
	if r, ok := t.exact[specifier]; ok {
		return Match{
			Pattern: r.pattern,
			Mapping: r.mapping,
			Origin:  r.origin,
		}, true
	}

	var best *record
	for _, r := range t.prefixes {
		if _, ok := r.pattern.Matches(specifier); !ok {
			continue
		}
		if best == nil {
			best = r
			continue
		}
		bl, rl := len(best.pattern.value), len(r.pattern.value)
		if rl > bl || (rl == bl && r.seq > best.seq) {
			best = r
		}
	}
	if best == nil {
		return Match{}, false
	}
	suffix, _ := best.pattern.Matches(specifier)
	return Match{
		Pattern: best.pattern,
		Mapping: Substitute(best.mapping, suffix),
		Suffix:  suffix,
		Origin:  best.origin,
	}, true
}

// Len returns the number of published rules.
func (t *Table) Len() int {
	return len(t.exact) + len(t.prefixes)
}

// Entries returns all published rules in deterministic order: exact rules
// sorted by specifier, then prefix rules in insertion order. Two tables
// composed from identical inputs produce deeply equal Entries slices.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, 0, t.Len())

	keys := make([]string, 0, len(t.exact))
	for k := range t.exact {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entries = append(entries, t.exact[k].entry())
	}

	ordered := make([]*record, len(t.prefixes))
	copy(ordered, t.prefixes)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].seq < ordered[j].seq
	})
	for _, r := range ordered {
		entries = append(entries, r.entry())
	}
	return entries
}
