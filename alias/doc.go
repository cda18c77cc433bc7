// Package alias provides the pattern, mapping, and table primitives for
// import-alias resolution.
//
// An import map is built from rules. Each rule pairs a [Pattern] (an exact
// specifier or a wildcard prefix) with a [Mapping] (what the specifier
// resolves to). Rules live in a [Table], which keeps two independent
// registries:
//
//   - exact patterns, matched by string equality
//   - prefix patterns, matched by longest literal prefix
//
// # Lookup precedence
//
// Lookup tries the exact registry first. If no exact rule matches, the
// prefix registry is scanned and the rule with the longest matching prefix
// wins; among equal-length prefixes the most recently inserted rule wins.
// Inserting a pattern that is already present overwrites the earlier rule
// (last write wins) within its registry.
//
// This ordering is a hard invariant. The composition layers in the root
// package rely on it to let later layers override earlier ones, and on
// exact rules always beating prefix rules for the same specifier.
//
// # Wildcard capture
//
// A prefix rule captures the unmatched suffix of the specifier and
// substitutes it for every "*" in the mapping it returns:
//
//	insert prefix "next/dist/client/" -> "next/dist/esm/client/*"
//	lookup "next/dist/client/link"    -> "next/dist/esm/client/link"
//
// # Building and publishing
//
// Tables are built through a [Builder] and published with [Builder.Build].
// A published Table is immutable and safe for concurrent lookups without
// locking. Builders are not safe for concurrent use.
//
// Every rule records an [Origin] naming the composition layer that
// inserted it, and overwrites keep the shadowed origins. The inspect
// package uses this to explain why a specifier resolves the way it does.
package alias
