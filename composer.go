package goimportmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-importmap/alias"
)

// Layer names recorded as rule provenance, in application order.
const (
	LayerShared  = "shared"
	LayerMode    = "mode"
	LayerRouting = "routing"
	LayerRuntime = "runtime"
	LayerUser    = "user"
	LayerGuard   = "guard"
)

// VirtualPackage is the reserved package name for assets the bundler
// injects into the application.
const VirtualPackage = "@vercel/turbopack-next"

// composer builds one alias table for one compilation context.
type composer struct {
	lc     LayerContext
	cfg    *composeConfig
	oracle ResolutionOracle
	logger *slog.Logger

	// frameworkRoot is the framework package directory located from
	// the project root at construction.
	frameworkRoot string
}

func newComposer(ctx context.Context, lc LayerContext, cfg *composeConfig) (*composer, error) {
	oracle := cfg.oracle
	if oracle == nil {
		oracle = NewFSOracle(lc.ProjectRoot)
	}
	c := &composer{lc: lc, cfg: cfg, oracle: oracle, logger: cfg.log()}

	root, err := c.locateFramework(ctx, lc.ProjectRoot)
	if err != nil {
		return nil, err
	}
	c.frameworkRoot = root
	return c, nil
}

// locateFramework finds the framework package root as visible from
// baseDir. A missing framework package is the one fatal condition of
// map composition.
func (c *composer) locateFramework(ctx context.Context, baseDir string) (string, error) {
	root, ok, err := c.oracle.LocatePackageRoot(ctx, baseDir, c.cfg.frameworkPackage)
	if err != nil {
		return "", fmt.Errorf("locate framework package: %w", err)
	}
	if !ok {
		return "", &FrameworkLookupError{BaseDir: baseDir, Package: c.cfg.frameworkPackage}
	}
	return root, nil
}

type pass struct {
	name string
	run  func(context.Context, inserter) error
}

// passes returns the six layers in their fixed application order.
// Later layers overwrite earlier ones on the same pattern; the guard
// layer runs last so user configuration cannot break its entries.
func (c *composer) passes() []pass {
	return []pass{
		{LayerShared, c.applyShared},
		{LayerMode, c.applyMode},
		{LayerRouting, c.applyRouting},
		{LayerRuntime, c.applyRuntime},
		{LayerUser, c.applyUser},
		{LayerGuard, c.applyGuard},
	}
}

func (c *composer) compose(ctx context.Context) (*ImportMap, error) {
	b := alias.NewBuilder()
	for _, p := range c.passes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := p.run(ctx, inserter{b: b, layer: p.name}); err != nil {
			return nil, fmt.Errorf("%s layer: %w", p.name, err)
		}
		c.logger.Debug("layer applied", "layer", p.name, "entries", b.Len())
	}

	table := b.Build()
	return &ImportMap{
		Context:  c.lc,
		table:    table,
		resolver: NewResolver(table, c.oracle, c.cfg.logger),
		handlers: newHandlerRegistry(c.cfg.handlers),
		summary:  summarize(table),
	}, nil
}

// edge reports whether the context compiles server code for the edge
// runtime. Browser contexts are never edge.
func (c *composer) edge() bool {
	return c.lc.Routing.Server() && c.lc.Runtime == RuntimeEdge
}

// summarize computes entry statistics from a sealed table.
func summarize(table *alias.Table) Summary {
	s := Summary{ByLayer: make(map[string]int)}
	for _, e := range table.Entries() {
		s.TotalEntries++
		if e.Pattern.IsWildcard() {
			s.PrefixEntries++
		} else {
			s.ExactEntries++
		}
		s.ByLayer[e.Origin.Layer]++
	}
	return s
}

// inserter tags every inserted rule with its layer's provenance.
type inserter struct {
	b     *alias.Builder
	layer string
}

func (i inserter) exact(pattern string, m alias.Mapping, note string) {
	i.b.InsertExact(pattern, m, alias.Origin{Layer: i.layer, Note: note})
}

func (i inserter) prefix(pattern string, m alias.Mapping, note string) {
	i.b.InsertPrefix(pattern, m, alias.Origin{Layer: i.layer, Note: note})
}

// directTo maps a request to its resolution relative to dir.
func directTo(dir, request string) alias.Direct {
	return alias.Direct{Request: request, Base: dir}
}

// externalIfNode keeps the request external on Node.js, where the
// runtime can require it directly, and bundles it from dir on edge.
func externalIfNode(runtime RuntimeTarget, dir, request string) alias.Mapping {
	if runtime == RuntimeNodeJS {
		return alias.External{Name: request}
	}
	return directTo(dir, request)
}

// pageChain aliases a framework-injected pages module to the user's
// own file, falling back to the framework default.
func pageChain(pagesDir, userFile string, fallback alias.Mapping) alias.Mapping {
	return alias.Alternatives{directTo(pagesDir, userFile), fallback}
}
