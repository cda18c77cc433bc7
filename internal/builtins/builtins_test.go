package builtins

import "testing"

func TestIsBuiltin(t *testing.T) {
	tests := []struct {
		name      string
		specifier string
		want      bool
	}{
		{name: "bare core module", specifier: "fs", want: true},
		{name: "node prefixed", specifier: "node:fs", want: true},
		{name: "subpath export", specifier: "fs/promises", want: true},
		{name: "prefixed subpath", specifier: "node:stream/web", want: true},
		{name: "npm package", specifier: "react", want: false},
		{name: "scoped package", specifier: "@swc/helpers", want: false},
		{name: "relative path", specifier: "./fs", want: false},
		{name: "empty", specifier: "", want: false},
		{name: "legacy sys alias", specifier: "sys", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsBuiltin(tt.specifier); got != tt.want {
				t.Errorf("IsBuiltin(%q) = %v, want %v", tt.specifier, got, tt.want)
			}
		})
	}
}

func TestPolyfillsCoverCoreModules(t *testing.T) {
	seen := make(map[string]bool, len(Polyfills))
	for _, p := range Polyfills {
		if p.Name == "" || p.Request == "" {
			t.Fatalf("polyfill entry with empty field: %+v", p)
		}
		if seen[p.Name] {
			t.Fatalf("duplicate polyfill for %q", p.Name)
		}
		seen[p.Name] = true
		// setImmediate is a global, not a module, so it has no
		// builtin entry.
		if p.Name != "setImmediate" && !IsBuiltin(p.Name) {
			t.Errorf("polyfilled module %q is not a known builtin", p.Name)
		}
	}
}
