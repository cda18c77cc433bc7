// Package inspect renders composed import maps for humans and tools.
//
// This package backs the debugging surface of the alias pipeline,
// allowing users to:
//
//   - Dump every rule of a composed map together with its provenance
//   - Count surviving rules per composition layer
//   - Explain which rule wins for a specifier and what it overwrote
//
// # Capturing a Report
//
// A Report is captured from a composed map:
//
//	m, _ := goimportmap.Compose(ctx, lc)
//	report := inspect.New(m)
//
// # Explaining a Specifier
//
// Explain answers "which rule wins and why" without touching the
// filesystem:
//
//	ex := inspect.Explain(m, "react-dom/server")
//	fmt.Print(ex.ToText())
//
// # Output Formats
//
// Reports and explanations serialize to multiple formats:
//
//	// Indented JSON for tooling
//	jsonBytes, _ := report.ToJSON()
//
//	// Human-readable text
//	textString := report.ToText()
//
// All output is deterministic: two maps composed from identical inputs
// produce byte-identical reports.
package inspect
