// Package builtins catalogs Node.js core modules and the browser
// polyfill substitutions the composer installs for them.
// This is an internal package used by the layer composer and the
// default filesystem oracle.
package builtins

import "strings"

// names contains the Node.js core module names, top-level only (no
// private "_"-prefixed modules, no subpath exports like "fs/promises").
// Based on Node.js module.builtinModules.
var names = map[string]struct{}{
	"assert":              {},
	"async_hooks":         {},
	"buffer":              {},
	"child_process":       {},
	"cluster":             {},
	"console":             {},
	"constants":           {},
	"crypto":              {},
	"dgram":               {},
	"diagnostics_channel": {},
	"dns":                 {},
	"domain":              {},
	"events":              {},
	"fs":                  {},
	"http":                {},
	"http2":               {},
	"https":               {},
	"inspector":           {},
	"module":              {},
	"net":                 {},
	"os":                  {},
	"path":                {},
	"perf_hooks":          {},
	"process":             {},
	"punycode":            {},
	"querystring":         {},
	"readline":            {},
	"repl":                {},
	"stream":              {},
	"string_decoder":      {},
	"sys":                 {},
	"timers":              {},
	"tls":                 {},
	"trace_events":        {},
	"tty":                 {},
	"url":                 {},
	"util":                {},
	"v8":                  {},
	"vm":                  {},
	"wasi":                {},
	"worker_threads":      {},
	"zlib":                {},
}

// IsBuiltin reports whether a specifier names a Node.js core module.
// Both bare names ("fs") and "node:"-prefixed names ("node:fs") are
// recognized, including subpaths ("fs/promises").
func IsBuiltin(specifier string) bool {
	specifier = strings.TrimPrefix(specifier, "node:")
	if idx := strings.IndexByte(specifier, '/'); idx >= 0 {
		specifier = specifier[:idx]
	}
	_, ok := names[specifier]
	return ok
}

// Polyfill pairs a core module name with the framework-shipped browser
// substitute that replaces it in client bundles.
type Polyfill struct {
	Name    string
	Request string
}

// Polyfills lists the browser substitutions in insertion order.
// Keep in sync with the NEXT_ALIASES table in the Next.js bundler.
// Reference:
// https://github.com/vercel/next.js/blob/canary/packages/next-swc/crates/next-core/src/next_import_map.rs
var Polyfills = []Polyfill{
	{"assert", "next/dist/compiled/assert"},
	{"buffer", "next/dist/compiled/buffer"},
	{"constants", "next/dist/compiled/constants-browserify"},
	{"crypto", "next/dist/compiled/crypto-browserify"},
	{"domain", "next/dist/compiled/domain-browser"},
	{"http", "next/dist/compiled/stream-http"},
	{"https", "next/dist/compiled/https-browserify"},
	{"os", "next/dist/compiled/os-browserify"},
	{"path", "next/dist/compiled/path-browserify"},
	{"punycode", "next/dist/compiled/punycode"},
	{"process", "next/dist/build/polyfills/process"},
	{"querystring", "next/dist/compiled/querystring-es3"},
	{"stream", "next/dist/compiled/stream-browserify"},
	{"string_decoder", "next/dist/compiled/string_decoder"},
	{"sys", "next/dist/compiled/util"},
	{"timers", "next/dist/compiled/timers-browserify"},
	{"tty", "next/dist/compiled/tty-browserify"},
	{"url", "next/dist/compiled/native-url"},
	{"util", "next/dist/compiled/util"},
	{"vm", "next/dist/compiled/vm-browserify"},
	{"zlib", "next/dist/compiled/browserify-zlib"},
	{"events", "next/dist/compiled/events"},
	{"setImmediate", "next/dist/compiled/setimmediate"},
}
