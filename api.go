// Package goimportmap computes layered import-alias tables for
// JavaScript bundlers and resolves module specifiers through them.
//
// An import map decides, per compilation context, where a bare module
// specifier such as "react" or "next/head" actually points: a file
// resolved from some directory, a package left external to the bundle,
// the first existing file of an ordered chain, a pinned singleton copy,
// or a handler that synthesizes the module at build time.
//
// # Overview
//
// The package provides three main components:
//
//   - Compose: Builds the alias table for one compilation context by
//     applying six fixed layers (shared, mode, routing, runtime, user,
//     guard), later layers overwriting earlier ones.
//   - Resolver: Answers specifier lookups against a sealed table,
//     probing the filesystem through a ResolutionOracle.
//   - Handlers: Named extension points for specifiers whose content is
//     generated rather than resolved, such as font stylesheets.
//
// # Quick Start
//
//	m, err := goimportmap.Compose(ctx, goimportmap.LayerContext{
//	    Routing:     goimportmap.AppSSR("/project/app"),
//	    Mode:        goimportmap.ModeBuild,
//	    Runtime:     goimportmap.RuntimeNodeJS,
//	    ProjectRoot: "/project",
//	})
//	if err != nil {
//	    return err
//	}
//
//	ans, err := m.Lookup(ctx, "react", goimportmap.RequestContext{Dir: "/project/app"})
//
// Composition fails only on invalid input or when the framework
// package cannot be located (ErrFrameworkNotFound). Lookups return an
// error only for oracle I/O failures and context cancellation; a
// specifier that matches no rule or whose targets do not exist is a
// non-error Answer.
//
// # Thread Safety
//
// A composed ImportMap is immutable and safe for concurrent use.
package goimportmap

import (
	"context"
	"fmt"
	"sync"

	"github.com/albertocavalcante/go-importmap/alias"

	"github.com/albertocavalcante/go-importmap/internal/builtins"
)

// Compose builds the import map for one compilation context.
//
// This is the recommended entry point. The returned map is sealed;
// recompose to pick up configuration changes.
func Compose(ctx context.Context, lc LayerContext, opts ...Option) (*ImportMap, error) {
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	cfg, err := newComposeConfig(opts...)
	if err != nil {
		return nil, err
	}
	return composeContext(ctx, lc, cfg)
}

// ComposeForContexts builds the import maps for several compilation
// contexts concurrently, sharing one configuration. The first failure
// cancels the remaining compositions. Duplicate contexts collapse to
// a single entry.
func ComposeForContexts(ctx context.Context, contexts []LayerContext, opts ...Option) (map[LayerContext]*ImportMap, error) {
	cfg, err := newComposeConfig(opts...)
	if err != nil {
		return nil, err
	}
	for i, lc := range contexts {
		if err := lc.Validate(); err != nil {
			return nil, fmt.Errorf("context %d: %w", i, err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	maps := make([]*ImportMap, len(contexts))
	errs := make([]error, len(contexts))
	var wg sync.WaitGroup
	for i, lc := range contexts {
		wg.Add(1)
		go func(i int, lc LayerContext) {
			defer wg.Done()
			m, err := composeContext(ctx, lc, cfg)
			if err != nil {
				errs[i] = fmt.Errorf("compose %s: %w", lc.Routing, err)
				cancel()
				return
			}
			maps[i] = m
		}(i, lc)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	out := make(map[LayerContext]*ImportMap, len(contexts))
	for i, lc := range contexts {
		out[lc] = maps[i]
	}
	return out, nil
}

func composeContext(ctx context.Context, lc LayerContext, cfg *composeConfig) (*ImportMap, error) {
	c, err := newComposer(ctx, lc, cfg)
	if err != nil {
		return nil, err
	}
	return c.compose(ctx)
}

// ComposeBuildRuntime builds the import map for compiling the
// bundler's own runtime code. It aliases the virtual package to the
// embedded framework assets and leaves the framework itself external.
//
// Nothing is probed during composition, so this cannot fail except on
// bad options. Pass WithOracle if lookups should probe the embedded
// assets; by default their targets report as missing.
func ComposeBuildRuntime(opts ...Option) (*ImportMap, error) {
	cfg, err := newComposeConfig(opts...)
	if err != nil {
		return nil, err
	}

	b := alias.NewBuilder()
	shared := inserter{b: b, layer: LayerShared}
	shared.prefix(VirtualPackage+"/", directTo(cfg.embeddedRoots[EmbeddedNextJS], "./*"), "embedded framework assets")

	rt := inserter{b: b, layer: LayerRuntime}
	rt.exact("next", alias.External{}, "build external")
	rt.prefix("next/", alias.External{}, "build external")
	rt.exact("styled-jsx", alias.External{}, "build external")
	rt.prefix("styled-jsx/", alias.External{}, "build external")

	table := b.Build()
	oracle := cfg.oracle
	if oracle == nil {
		oracle = NoopOracle{}
	}
	return &ImportMap{
		table:    table,
		resolver: NewResolver(table, oracle, cfg.logger),
		handlers: newHandlerRegistry(cfg.handlers),
		summary:  summarize(table),
	}, nil
}

// ComposeClientFallback builds the last-resort import map consulted
// when a browser resolution fails. Pages and app contexts map the
// node core module names, bare, onto the framework's polyfills from
// their routing directory; every browser context keeps the embedded
// runtime reachable.
func ComposeClientFallback(ctx context.Context, lc LayerContext, opts ...Option) (*ImportMap, error) {
	if err := lc.Validate(); err != nil {
		return nil, err
	}
	if !lc.Routing.Browser() {
		return nil, fmt.Errorf("client fallback map requires a browser routing style, got %s", lc.Routing)
	}
	cfg, err := newComposeConfig(opts...)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := alias.NewBuilder()
	switch lc.Routing.kind {
	case routingPagesBrowser, routingAppBrowser:
		ins := inserter{b: b, layer: LayerRouting}
		for _, p := range builtins.Polyfills {
			ins.exact(p.Name, directTo(lc.Routing.dir, p.Request), "node polyfill fallback")
		}
	}
	shared := inserter{b: b, layer: LayerShared}
	shared.prefix("@vercel/turbopack-ecmascript-runtime/", directTo(cfg.embeddedRoots[EmbeddedRuntime], "./*"), "embedded runtime assets")

	table := b.Build()
	oracle := cfg.oracle
	if oracle == nil {
		oracle = NewFSOracle(lc.ProjectRoot)
	}
	return &ImportMap{
		Context:  lc,
		table:    table,
		resolver: NewResolver(table, oracle, cfg.logger),
		handlers: newHandlerRegistry(cfg.handlers),
		summary:  summarize(table),
	}, nil
}
