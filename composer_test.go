package goimportmap

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/davecgh/go-spew/spew"

	"github.com/albertocavalcante/go-importmap/alias"
)

const (
	testProject  = "/project"
	testPagesDir = "/project/pages"
	testAppDir   = "/project/app"
	testNextRoot = "/project/node_modules/next"
)

// testOracle returns a memory oracle with the framework and the
// singleton packages installed.
func testOracle() *MemoryOracle {
	o := NewMemoryOracle()
	o.AddPackage("next", testNextRoot)
	o.AddPackage("react", "/project/node_modules/react")
	o.AddPackage("react-dom", "/project/node_modules/react-dom")
	o.AddPackage("styled-jsx", "/project/node_modules/styled-jsx")
	o.AddPackage("@swc/helpers", "/project/node_modules/@swc/helpers")
	return o
}

func testCompose(t *testing.T, lc LayerContext, opts ...Option) *ImportMap {
	t.Helper()
	opts = append([]Option{WithOracle(testOracle())}, opts...)
	m, err := Compose(context.Background(), lc, opts...)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return m
}

func lookupMapping(t *testing.T, m *ImportMap, specifier string) alias.Mapping {
	t.Helper()
	match, ok := m.Table().Lookup(specifier)
	if !ok {
		t.Fatalf("table has no rule for %q", specifier)
	}
	return match.Mapping
}

func wantDirect(t *testing.T, m *ImportMap, specifier, base, request string) {
	t.Helper()
	d, ok := lookupMapping(t, m, specifier).(alias.Direct)
	if !ok {
		t.Fatalf("mapping for %q = %T, want alias.Direct", specifier, lookupMapping(t, m, specifier))
	}
	if d.Base != base || d.Request != request {
		t.Errorf("mapping for %q = Direct{Base: %q, Request: %q}, want Direct{Base: %q, Request: %q}",
			specifier, d.Base, d.Request, base, request)
	}
}

func wantExternal(t *testing.T, m *ImportMap, specifier, name string) {
	t.Helper()
	e, ok := lookupMapping(t, m, specifier).(alias.External)
	if !ok {
		t.Fatalf("mapping for %q = %T, want alias.External", specifier, lookupMapping(t, m, specifier))
	}
	if e.Name != name {
		t.Errorf("external name for %q = %q, want %q", specifier, e.Name, name)
	}
}

func wantNoRule(t *testing.T, m *ImportMap, specifier string) {
	t.Helper()
	if match, ok := m.Table().Lookup(specifier); ok {
		t.Errorf("table has a rule for %q (%v), want none", specifier, match.Mapping)
	}
}

func findEntry(t *testing.T, m *ImportMap, key string) alias.Entry {
	t.Helper()
	for _, e := range m.Table().Entries() {
		if e.Pattern.Key() == key {
			return e
		}
	}
	t.Fatalf("table has no entry %q", key)
	return alias.Entry{}
}

func TestComposeFrameworkMissingIsFatal(t *testing.T) {
	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	_, err := Compose(context.Background(), lc, WithOracle(NewMemoryOracle()))
	if err == nil {
		t.Fatal("Compose() with no framework installed succeeded, want error")
	}
	if !errors.Is(err, ErrFrameworkNotFound) {
		t.Errorf("error = %v, want ErrFrameworkNotFound", err)
	}
	var lookupErr *FrameworkLookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("error = %v, want *FrameworkLookupError", err)
	}
	if lookupErr.BaseDir != testProject {
		t.Errorf("BaseDir = %q, want %q", lookupErr.BaseDir, testProject)
	}
}

func TestComposeMissingSingletonIsSkipped(t *testing.T) {
	o := NewMemoryOracle()
	o.AddPackage("next", testNextRoot)

	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m, err := Compose(context.Background(), lc, WithOracle(o))
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	wantNoRule(t, m, "react-dom")

	s, ok := lookupMapping(t, m, "next").(alias.Singleton)
	if !ok {
		t.Fatalf("mapping for next = %T, want alias.Singleton", lookupMapping(t, m, "next"))
	}
	if s.Root != testNextRoot {
		t.Errorf("singleton root = %q, want %q", s.Root, testNextRoot)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	lc := LayerContext{
		Routing:     AppSSR(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		Flags:       FeatureFlags{ServerActions: true, MDX: true},
		ProjectRoot: testProject,
	}
	first := testCompose(t, lc)
	second := testCompose(t, lc)

	if !reflect.DeepEqual(first.Table().Entries(), second.Table().Entries()) {
		t.Errorf("entries differ between identical compositions\nfirst: %s\nsecond: %s",
			spew.Sdump(first.Table().Entries()), spew.Sdump(second.Table().Entries()))
	}
	if !reflect.DeepEqual(first.Summary(), second.Summary()) {
		t.Errorf("summaries differ: %+v vs %+v", first.Summary(), second.Summary())
	}
}

func TestComposePagesBrowser(t *testing.T) {
	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, lc)

	app, ok := lookupMapping(t, m, VirtualPackage+"/pages/_app").(alias.Alternatives)
	if !ok {
		t.Fatalf("pages _app chain = %T, want alias.Alternatives", lookupMapping(t, m, VirtualPackage+"/pages/_app"))
	}
	want := alias.Alternatives{
		alias.Direct{Request: "./_app", Base: testPagesDir},
		alias.Direct{Request: "next/app", Base: testPagesDir},
	}
	if !reflect.DeepEqual(app, want) {
		t.Errorf("pages _app chain = %v, want %v", app, want)
	}

	wantDirect(t, m, "node:buffer", testProject, "next/dist/compiled/buffer")
	wantDirect(t, m, "node:path", testProject, "next/dist/compiled/path-browserify")
	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/index")
	wantDirect(t, m, "setimmediate", testProject, "next/dist/compiled/setimmediate")
	wantDirect(t, m, "unfetch", testProject, "next/dist/build/polyfills/fetch/index.js")

	if _, ok := lookupMapping(t, m, "react").(alias.Singleton); !ok {
		t.Errorf("mapping for react = %T, want alias.Singleton", lookupMapping(t, m, "react"))
	}

	// In development the framework's own overlay stays in place.
	wantNoRule(t, m, devOverlayAlias)
}

func TestComposeAppBrowser(t *testing.T) {
	lc := LayerContext{Routing: AppBrowser(testAppDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, lc)

	wantDirect(t, m, "react", testAppDir, "next/dist/compiled/react")
	wantDirect(t, m, "react-dom", testAppDir, "next/dist/compiled/react-dom")
	wantDirect(t, m, "next/head", testProject, "next/dist/client/components/noop-head")
	wantDirect(t, m, "next/dynamic", testProject, "next/dist/shared/lib/app-dynamic")

	// The webpack flight package name redirects to the turbopack one,
	// which in turn lands on the framework's compiled copy.
	match, ok := m.Table().Lookup("react-server-dom-webpack/client")
	if !ok {
		t.Fatal("no rule for react-server-dom-webpack/client")
	}
	d, ok := match.Mapping.(alias.Direct)
	if !ok {
		t.Fatalf("mapping = %T, want alias.Direct", match.Mapping)
	}
	if d.Request != "react-server-dom-turbopack/client" {
		t.Errorf("substituted request = %q, want %q", d.Request, "react-server-dom-turbopack/client")
	}

	match, ok = m.Table().Lookup("react-server-dom-turbopack/client")
	if !ok {
		t.Fatal("no rule for react-server-dom-turbopack/client")
	}
	d = match.Mapping.(alias.Direct)
	if d.Request != "next/dist/compiled/react-server-dom-turbopack/client" {
		t.Errorf("substituted request = %q, want %q", d.Request, "next/dist/compiled/react-server-dom-turbopack/client")
	}
}

func TestComposeAppBrowserServerActionsFlavor(t *testing.T) {
	lc := LayerContext{
		Routing:     AppBrowser(testAppDir),
		Mode:        ModeDevelopment,
		Flags:       FeatureFlags{ServerActions: true},
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)
	wantDirect(t, m, "react", testAppDir, "next/dist/compiled/react-experimental")
	wantDirect(t, m, "react-dom", testAppDir, "next/dist/compiled/react-dom-experimental")
}

func TestComposePagesSSRNodeJS(t *testing.T) {
	lc := LayerContext{
		Routing:     PagesSSR(testPagesDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantExternal(t, m, "react", "")
	wantExternal(t, m, "react/jsx-runtime", "")
	wantExternal(t, m, "styled-jsx", "")
	wantExternal(t, m, "next/dist/build/utils", "")
	wantExternal(t, m, "next/dist/server/require-hook", "")
	wantExternal(t, m, "@opentelemetry/api", "next/dist/compiled/@opentelemetry/api")
	wantExternal(t, m, "@vercel/og", "next/dist/server/web/spec-extension/image-response")

	doc, ok := lookupMapping(t, m, VirtualPackage+"/pages/_document").(alias.Alternatives)
	if !ok {
		t.Fatalf("pages _document chain = %T, want alias.Alternatives", lookupMapping(t, m, VirtualPackage+"/pages/_document"))
	}
	want := alias.Alternatives{
		alias.Direct{Request: "./_document", Base: testPagesDir},
		alias.External{Name: "next/document"},
	}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("pages _document chain = %v, want %v", doc, want)
	}

	// Browser-only groups must not leak into the Node.js renderer.
	wantNoRule(t, m, "unfetch")
	wantNoRule(t, m, "node:buffer")
	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/index")
}

func TestComposePagesSSREdge(t *testing.T) {
	lc := LayerContext{
		Routing:     PagesSSR(testPagesDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeEdge,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	// On edge nothing is left to a runtime require; the singleton pin
	// from the shared layer survives.
	if _, ok := lookupMapping(t, m, "react").(alias.Singleton); !ok {
		t.Errorf("mapping for react = %T, want alias.Singleton", lookupMapping(t, m, "react"))
	}
	wantDirect(t, m, "@opentelemetry/api", testPagesDir, "next/dist/compiled/@opentelemetry/api")
	wantDirect(t, m, "@vercel/og", testProject, "next/dist/server/web/spec-extension/image-response")
	wantDirect(t, m, "next/head", testProject, "next/dist/esm/shared/lib/head")
	wantDirect(t, m, "unfetch", testProject, "next/dist/build/polyfills/fetch/index.js")

	match, ok := m.Table().Lookup("next/dist/client/link")
	if !ok {
		t.Fatal("no rule for next/dist/client/link")
	}
	d := match.Mapping.(alias.Direct)
	if d.Request != "next/dist/esm/client/link" {
		t.Errorf("esm remap = %q, want %q", d.Request, "next/dist/esm/client/link")
	}

	// Wildcard remap applies to paths without an exact pin.
	match, ok = m.Table().Lookup("next/dist/server/app-render")
	if !ok {
		t.Fatal("no rule for next/dist/server/app-render")
	}
	d = match.Mapping.(alias.Direct)
	if d.Request != "next/dist/esm/server/app-render" {
		t.Errorf("esm remap = %q, want %q", d.Request, "next/dist/esm/server/app-render")
	}
}

func TestComposePagesDataNodeJS(t *testing.T) {
	lc := LayerContext{
		Routing:     PagesData(testPagesDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantExternal(t, m, "react", "")
	wantExternal(t, m, "react-dom/client", "")
	wantExternal(t, m, "styled-jsx/css", "")
	wantExternal(t, m, "next/dist/build/utils", "")
	wantExternal(t, m, "next/dist/server/require-hook", "")

	// The data renderer serves props only; the page chains and the
	// otel alias belong to the html renderer.
	for _, e := range m.Table().Entries() {
		if e.Pattern.Key() == VirtualPackage+"/pages/_app" {
			t.Errorf("data renderer has a page chain entry from layer %q", e.Origin.Layer)
		}
	}
	wantNoRule(t, m, "@opentelemetry/api")

	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/index")
	wantNoRule(t, m, "unfetch")
	wantNoRule(t, m, "node:buffer")
}

func TestComposeAppRSCNodeJS(t *testing.T) {
	lc := LayerContext{
		Routing:     AppRSC(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantDirect(t, m, "react", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/rsc/react")
	wantDirect(t, m, "react/jsx-runtime", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/rsc/react-jsx-runtime")
	wantDirect(t, m, "react-server-dom-turbopack/server.edge", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/rsc/react-server-dom-turbopack-server-edge")
	wantDirect(t, m, "react-server-dom-webpack/server.node", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/rsc/react-server-dom-turbopack-server-node")

	// The flight client stays on the compiled copy; only the server
	// entries are vendored in the react server graph.
	wantDirect(t, m, "react-server-dom-turbopack/client.edge", testProject,
		"next/dist/compiled/react-server-dom-turbopack/client.edge")

	// The streaming renderer alias always points at the server
	// rendering variant.
	wantDirect(t, m, "react-dom/server.edge", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/ssr/react-dom-server-edge")

	wantDirect(t, m, "styled-jsx", testNextRoot, "styled-jsx")
	wantDirect(t, m, "private-next-rsc-action-proxy", testProject,
		"next/dist/build/webpack/loaders/next-flight-loader/action-proxy")
	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/empty")
	wantDirect(t, m, "client-only", testProject, "next/dist/compiled/client-only/error")
}

func TestComposeAppRSCEdge(t *testing.T) {
	lc := LayerContext{
		Routing:     AppRSC(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeEdge,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	// Edge stays on the compiled react copies, standard flavor.
	wantDirect(t, m, "react", testAppDir, "next/dist/compiled/react")
	wantDirect(t, m, "react/jsx-runtime", testAppDir, "next/dist/compiled/react/jsx-runtime")
	wantDirect(t, m, "react-dom", testAppDir, "next/dist/compiled/react-dom")
	wantDirect(t, m, "react-dom/server.edge", testAppDir, "next/dist/compiled/react-dom/server.edge")
	wantDirect(t, m, "react-server-dom-webpack/server.edge", testAppDir,
		"next/dist/compiled/react-server-dom-turbopack/server.edge")
	wantDirect(t, m, "react-server-dom-turbopack/server.node", testAppDir,
		"next/dist/compiled/react-server-dom-turbopack/server.node")

	// Action shims are a node require concern.
	wantNoRule(t, m, "private-next-rsc-action-proxy")

	// The ESM baseline covers everything the react server graph does
	// not pin, the require hook included.
	wantDirect(t, m, "next/dist/server/require-hook", testProject, "next/dist/esm/server/require-hook")
	wantDirect(t, m, "next/navigation", testProject, "next/dist/esm/client/components/navigation")

	wantDirect(t, m, "@opentelemetry/api", testAppDir, "next/dist/compiled/@opentelemetry/api")
	wantDirect(t, m, "@vercel/og", testProject, "next/dist/server/web/spec-extension/image-response")
	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/empty")
	wantDirect(t, m, "client-only", testProject, "next/dist/compiled/client-only/error")
}

func TestComposeAppSSRNodeJS(t *testing.T) {
	lc := LayerContext{
		Routing:     AppSSR(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantDirect(t, m, "react", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/ssr/react")
	wantDirect(t, m, "react-server-dom-turbopack/client.edge", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/ssr/react-server-dom-turbopack-client-edge")
	wantDirect(t, m, "react-dom/server", testAppDir,
		"next/dist/server/future/route-modules/app-page/vendored/ssr/react-dom-server-edge")

	// The flight server entries are not part of the server rendering
	// graph and keep the compiled copy.
	wantDirect(t, m, "react-server-dom-webpack/server.node", testProject,
		"next/dist/compiled/react-server-dom-turbopack/server.node")
	wantDirect(t, m, "react-server-dom-turbopack/server.edge", testProject,
		"next/dist/compiled/react-server-dom-turbopack/server.edge")

	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/index")
}

func TestComposeAppSSREdgeServerActions(t *testing.T) {
	lc := LayerContext{
		Routing:     AppSSR(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeEdge,
		Flags:       FeatureFlags{ServerActions: true},
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantDirect(t, m, "react", testAppDir, "next/dist/compiled/react-experimental")
	wantDirect(t, m, "react/jsx-runtime", testAppDir, "next/dist/compiled/react-experimental/jsx-runtime")
	wantDirect(t, m, "react-dom/server.edge", testAppDir, "next/dist/compiled/react-dom-experimental/server.edge")
	wantDirect(t, m, "react-server-dom-turbopack/client.edge", testAppDir,
		"next/dist/compiled/react-server-dom-turbopack-experimental/client.edge")

	// Entries the server rendering graph does not pin keep the
	// experimental compiled copy from the project root.
	wantDirect(t, m, "react-server-dom-turbopack/server.node", testProject,
		"next/dist/compiled/react-server-dom-turbopack-experimental/server.node")
}

func TestComposeMiddleware(t *testing.T) {
	lc := LayerContext{
		Routing:     Middleware(),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)

	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/empty")
	wantDirect(t, m, "client-only", testProject, "next/dist/compiled/client-only/index")
	wantDirect(t, m, "next/dist/compiled/client-only/error", testProject, "next/dist/compiled/client-only/index")
	wantExternal(t, m, "next/dist/server/require-hook", "")
	wantExternal(t, m, "@vercel/og", "next/dist/server/web/spec-extension/image-response")

	edge := lc
	edge.Runtime = RuntimeEdge
	me := testCompose(t, edge)
	wantDirect(t, me, "@vercel/og", testProject, "next/dist/server/web/spec-extension/image-response")

	// Without the node require hook the specifier falls through to the
	// edge ESM remap like any other dist/server path.
	wantDirect(t, me, "next/dist/server/require-hook", testProject, "next/dist/esm/server/require-hook")
}

func TestComposeUserAliases(t *testing.T) {
	aliases := []UserAlias{
		{
			Pattern: alias.MustExact("react"),
			Targets: []ConditionedTarget{{Target: "./vendor/react"}},
		},
		{
			Pattern: alias.MustPrefix("lib/"),
			Targets: []ConditionedTarget{{Target: "./src/lib/*"}},
		},
		{
			Pattern: alias.MustExact("analytics"),
			Targets: []ConditionedTarget{
				{Condition: "browser", Target: "./analytics/web"},
				{Target: "./analytics/server"},
			},
		},
	}

	browser := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, browser, WithUserAliases(aliases...))

	wantDirect(t, m, "react", testProject, "./vendor/react")
	if e := findEntry(t, m, "react"); e.Origin.Layer != LayerUser {
		t.Errorf("react origin layer = %q, want %q", e.Origin.Layer, LayerUser)
	}

	match, ok := m.Table().Lookup("lib/metrics")
	if !ok {
		t.Fatal("no rule for lib/metrics")
	}
	d := match.Mapping.(alias.Direct)
	if d.Request != "./src/lib/metrics" {
		t.Errorf("substituted user alias = %q, want %q", d.Request, "./src/lib/metrics")
	}

	// Both targets are active in a browser context.
	got, ok := lookupMapping(t, m, "analytics").(alias.Alternatives)
	if !ok {
		t.Fatalf("mapping for analytics = %T, want alias.Alternatives", lookupMapping(t, m, "analytics"))
	}
	if len(got) != 2 {
		t.Fatalf("analytics has %d active targets, want 2", len(got))
	}

	server := LayerContext{
		Routing:     PagesSSR(testPagesDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeNodeJS,
		ProjectRoot: testProject,
	}
	ms := testCompose(t, server, WithUserAliases(aliases...))

	// The browser-gated target drops out, leaving a single direct
	// mapping, and the user alias overrides the runtime external.
	wantDirect(t, ms, "analytics", testProject, "./analytics/server")
	wantDirect(t, ms, "react", testProject, "./vendor/react")
}

func TestComposeGuardReassertsEmbeddedAssets(t *testing.T) {
	guarded := []string{
		VirtualPackage + "/",
		"@vercel/turbopack-ecmascript-runtime/",
		"@vercel/turbopack-node/",
	}

	var aliases []UserAlias
	for _, prefix := range guarded {
		aliases = append(aliases, UserAlias{
			Pattern: alias.MustPrefix(prefix),
			Targets: []ConditionedTarget{{Target: "./hijack/*"}},
		})
	}
	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, lc, WithUserAliases(aliases...))

	for _, prefix := range guarded {
		match, ok := m.Table().Lookup(prefix + "entry/client.ts")
		if !ok {
			t.Fatalf("no rule for %q", prefix+"entry/client.ts")
		}
		if match.Origin.Layer != LayerGuard {
			t.Errorf("%q origin layer = %q, want %q", prefix, match.Origin.Layer, LayerGuard)
		}
		d := match.Mapping.(alias.Direct)
		if d.Request != "./entry/client.ts" {
			t.Errorf("%q request = %q, want %q", prefix, d.Request, "./entry/client.ts")
		}
	}

	e := findEntry(t, m, VirtualPackage+"/")
	var layers []string
	for _, o := range e.Shadowed {
		layers = append(layers, o.Layer)
	}
	if len(layers) != 2 || layers[0] != LayerShared || layers[1] != LayerUser {
		t.Errorf("shadowed layers = %v, want [shared user]", layers)
	}
}

func TestComposeGuardProtectsDevOverlaySwap(t *testing.T) {
	aliases := []UserAlias{
		{
			Pattern: alias.MustExact(devOverlayAlias),
			Targets: []ConditionedTarget{{Target: "./my-overlay"}},
		},
	}
	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeBuild, ProjectRoot: testProject}
	m := testCompose(t, lc, WithUserAliases(aliases...))

	match, ok := m.Table().Lookup(devOverlayAlias)
	if !ok {
		t.Fatal("no rule for the dev overlay alias")
	}
	if match.Origin.Layer != LayerGuard {
		t.Errorf("overlay origin layer = %q, want %q", match.Origin.Layer, LayerGuard)
	}
	d := match.Mapping.(alias.Direct)
	if d.Request != devOverlayRequest {
		t.Errorf("overlay request = %q, want %q", d.Request, devOverlayRequest)
	}
}

func TestComposeDevOverlayByMode(t *testing.T) {
	dev := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, dev)
	wantNoRule(t, m, devOverlayAlias)

	build := dev
	build.Mode = ModeBuild
	mb := testCompose(t, build)
	d := lookupMapping(t, mb, devOverlayAlias).(alias.Direct)
	if d.Request != devOverlayRequest {
		t.Errorf("overlay request = %q, want %q", d.Request, devOverlayRequest)
	}
	if e := findEntry(t, mb, devOverlayAlias); e.Origin.Layer != LayerGuard {
		t.Errorf("overlay origin layer = %q, want %q", e.Origin.Layer, LayerGuard)
	}
}

func TestComposeFallbackAndCatchAllBrowser(t *testing.T) {
	fb := LayerContext{Routing: FallbackBrowser(), Mode: ModeDevelopment, ProjectRoot: testProject}
	m := testCompose(t, fb)
	wantDirect(t, m, "node:path", testProject, "next/dist/compiled/path-browserify")
	wantDirect(t, m, "unfetch", testProject, "next/dist/build/polyfills/fetch/index.js")
	wantDirect(t, m, "server-only", testProject, "next/dist/compiled/server-only/index")
	wantNoRule(t, m, VirtualPackage+"/pages/_app")

	other := LayerContext{Routing: OtherBrowser(), Mode: ModeDevelopment, ProjectRoot: testProject}
	mo := testCompose(t, other)
	wantNoRule(t, mo, "node:path")
	wantDirect(t, mo, "unfetch", testProject, "next/dist/build/polyfills/fetch/index.js")
	wantDirect(t, mo, "server-only", testProject, "next/dist/compiled/server-only/index")
}

func TestComposeForContexts(t *testing.T) {
	contexts := []LayerContext{
		{Routing: PagesBrowser(testPagesDir), Mode: ModeBuild, ProjectRoot: testProject},
		{Routing: AppRSC(testAppDir), Mode: ModeBuild, Runtime: RuntimeNodeJS, ProjectRoot: testProject},
		{Routing: AppRSC(testAppDir), Mode: ModeBuild, Runtime: RuntimeEdge, ProjectRoot: testProject},
		// Duplicate of the first; collapses into one entry.
		{Routing: PagesBrowser(testPagesDir), Mode: ModeBuild, ProjectRoot: testProject},
	}
	maps, err := ComposeForContexts(context.Background(), contexts, WithOracle(testOracle()))
	if err != nil {
		t.Fatalf("ComposeForContexts() error = %v", err)
	}
	if len(maps) != 3 {
		t.Fatalf("got %d maps, want 3", len(maps))
	}
	for lc, m := range maps {
		if m == nil {
			t.Fatalf("map for %s is nil", lc.Routing)
		}
		if m.Context != lc {
			t.Errorf("map context = %+v, keyed as %+v", m.Context, lc)
		}
	}
}

func TestComposeForContextsInvalidContext(t *testing.T) {
	contexts := []LayerContext{
		{Routing: PagesBrowser(testPagesDir), Mode: ModeBuild, ProjectRoot: testProject},
		{Routing: AppSSR(testAppDir), Mode: ModeBuild, ProjectRoot: testProject}, // missing runtime
	}
	_, err := ComposeForContexts(context.Background(), contexts, WithOracle(testOracle()))
	if err == nil {
		t.Fatal("ComposeForContexts() with invalid context succeeded, want error")
	}
}

func TestComposeBuildRuntime(t *testing.T) {
	m, err := ComposeBuildRuntime()
	if err != nil {
		t.Fatalf("ComposeBuildRuntime() error = %v", err)
	}
	wantExternal(t, m, "next", "")
	wantExternal(t, m, "next/server", "")
	wantExternal(t, m, "styled-jsx", "")
	wantExternal(t, m, "styled-jsx/css", "")

	match, ok := m.Table().Lookup(VirtualPackage + "/internal/shim.ts")
	if !ok {
		t.Fatal("no rule for embedded asset")
	}
	if _, isDirect := match.Mapping.(alias.Direct); !isDirect {
		t.Errorf("embedded asset mapping = %T, want alias.Direct", match.Mapping)
	}
	if got := m.Summary().TotalEntries; got != 5 {
		t.Errorf("TotalEntries = %d, want 5", got)
	}
}

func TestComposeClientFallback(t *testing.T) {
	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	m, err := ComposeClientFallback(context.Background(), lc, WithOracle(testOracle()))
	if err != nil {
		t.Fatalf("ComposeClientFallback() error = %v", err)
	}

	// Fallback polyfills use the bare core module names and resolve
	// from the routing directory.
	wantDirect(t, m, "path", testPagesDir, "next/dist/compiled/path-browserify")
	wantDirect(t, m, "setImmediate", testPagesDir, "next/dist/compiled/setimmediate")
	wantNoRule(t, m, "node:path")

	if _, ok := m.Table().Lookup("@vercel/turbopack-ecmascript-runtime/browser/dev/hmr-client/index.ts"); !ok {
		t.Error("embedded runtime prefix missing from fallback map")
	}

	fb := LayerContext{Routing: FallbackBrowser(), Mode: ModeDevelopment, ProjectRoot: testProject}
	mf, err := ComposeClientFallback(context.Background(), fb, WithOracle(testOracle()))
	if err != nil {
		t.Fatalf("ComposeClientFallback() error = %v", err)
	}
	if got := mf.Summary().TotalEntries; got != 1 {
		t.Errorf("fallback context TotalEntries = %d, want 1", got)
	}

	server := LayerContext{Routing: Middleware(), Mode: ModeBuild, Runtime: RuntimeEdge, ProjectRoot: testProject}
	if _, err := ComposeClientFallback(context.Background(), server, WithOracle(testOracle())); err == nil {
		t.Error("ComposeClientFallback() accepted a server context, want error")
	}
}

func TestComposeSummary(t *testing.T) {
	lc := LayerContext{
		Routing:     AppSSR(testAppDir),
		Mode:        ModeBuild,
		Runtime:     RuntimeEdge,
		ProjectRoot: testProject,
	}
	m := testCompose(t, lc)
	s := m.Summary()

	if s.TotalEntries == 0 {
		t.Fatal("TotalEntries = 0")
	}
	if s.ExactEntries+s.PrefixEntries != s.TotalEntries {
		t.Errorf("exact %d + prefix %d != total %d", s.ExactEntries, s.PrefixEntries, s.TotalEntries)
	}
	var byLayer int
	for _, n := range s.ByLayer {
		byLayer += n
	}
	if byLayer != s.TotalEntries {
		t.Errorf("ByLayer sums to %d, want %d", byLayer, s.TotalEntries)
	}
	if s.ByLayer[LayerGuard] < 3 {
		t.Errorf("ByLayer[guard] = %d, want at least the embedded prefixes", s.ByLayer[LayerGuard])
	}
}

func TestComposeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	lc := LayerContext{Routing: PagesBrowser(testPagesDir), Mode: ModeDevelopment, ProjectRoot: testProject}
	_, err := Compose(ctx, lc, WithOracle(testOracle()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Compose() error = %v, want context.Canceled", err)
	}
}
