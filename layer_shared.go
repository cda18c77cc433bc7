package goimportmap

import (
	"context"

	"github.com/albertocavalcante/go-importmap/alias"

	"github.com/albertocavalcante/go-importmap/internal/builtins"
)

// optimizedAliases swaps heavyweight npm utilities for the framework's
// lean stubs in browser and edge bundles.
// Keep in sync with getOptimizedModuleAliases in webpack-config.ts.
var optimizedAliases = []struct{ name, request string }{
	{"unfetch", "next/dist/build/polyfills/fetch/index.js"},
	{"isomorphic-unfetch", "next/dist/build/polyfills/fetch/index.js"},
	{"whatwg-fetch", "next/dist/build/polyfills/fetch/whatwg-fetch.js"},
	{"object-assign", "next/dist/build/polyfills/object-assign.js"},
	{"object.assign/auto", "next/dist/build/polyfills/object.assign/auto.js"},
	{"object.assign/implementation", "next/dist/build/polyfills/object.assign/implementation.js"},
	{"object.assign/polyfill", "next/dist/build/polyfills/object.assign/polyfill.js"},
	{"object.assign/shim", "next/dist/build/polyfills/object.assign/shim.js"},
	{"url", "next/dist/compiled/native-url"},
}

// esmPrefixRemaps routes next/dist imports to their ESM builds, which
// the edge runtime requires.
var esmPrefixRemaps = []struct{ prefix, request string }{
	{"next/dist/build/", "next/dist/esm/build/*"},
	{"next/dist/client/", "next/dist/esm/client/*"},
	{"next/dist/shared/", "next/dist/esm/shared/*"},
	{"next/dist/pages/", "next/dist/esm/pages/*"},
	{"next/dist/lib/", "next/dist/esm/lib/*"},
	{"next/dist/server/", "next/dist/esm/server/*"},
}

// esmExactRemaps pins the framework's public API entry points, and the
// dist paths they re-export, to their ESM builds on edge.
var esmExactRemaps = []struct{ name, request string }{
	{"next/app", "next/dist/esm/pages/_app"},
	{"next/document", "next/dist/esm/pages/_document"},
	{"next/dynamic", "next/dist/esm/shared/lib/dynamic"},
	{"next/head", "next/dist/esm/shared/lib/head"},
	{"next/headers", "next/dist/esm/client/components/headers"},
	{"next/image", "next/dist/esm/shared/lib/image-external"},
	{"next/link", "next/dist/esm/client/link"},
	{"next/navigation", "next/dist/esm/client/components/navigation"},
	{"next/router", "next/dist/esm/client/router"},
	{"next/script", "next/dist/esm/client/script"},
	{"next/server", "next/dist/esm/server/web/exports/index"},
	{"next/dist/client/components/headers", "next/dist/esm/client/components/headers"},
	{"next/dist/client/components/navigation", "next/dist/esm/client/components/navigation"},
	{"next/dist/client/link", "next/dist/esm/client/link"},
	{"next/dist/client/router", "next/dist/esm/client/router"},
	{"next/dist/client/script", "next/dist/esm/client/script"},
	{"next/dist/pages/_app", "next/dist/esm/pages/_app"},
	{"next/dist/pages/_document", "next/dist/esm/pages/_document"},
	{"next/dist/shared/lib/dynamic", "next/dist/esm/shared/lib/dynamic"},
	{"next/dist/shared/lib/head", "next/dist/esm/shared/lib/head"},
	{"next/dist/shared/lib/image-external", "next/dist/esm/shared/lib/image-external"},
}

// applyShared installs the rules every compilation context carries:
// embedded asset prefixes, font loader hooks, singleton pins, and the
// browser/edge substitutes for modules the framework ships itself.
func (c *composer) applyShared(ctx context.Context, ins inserter) error {
	proj := c.lc.ProjectRoot

	if c.lc.Flags.MDX {
		ins.exact(VirtualPackage+"/mdx-import-source", alias.Alternatives{
			directTo(proj, "./mdx-components"),
			directTo(proj, "./src/mdx-components"),
			directTo(proj, "@mdx-js/react"),
		}, "mdx import source")
	}

	ins.prefix(VirtualPackage+"/", directTo(c.cfg.embeddedRoots[EmbeddedNextJS], "./*"), "embedded framework assets")

	// Font stylesheets are generated, not resolved from disk.
	ins.exact("next/font/google/target.css", alias.Dynamic{HandlerID: "font/google"}, "font loader")
	ins.exact("@next/font/google/target.css", alias.Dynamic{HandlerID: "font/google"}, "font loader")
	ins.exact(VirtualPackage+"/internal/font/google/cssmodule.module.css", alias.Dynamic{HandlerID: "font/google-cssmodule"}, "font loader")
	ins.exact("next/font/local/target.css", alias.Dynamic{HandlerID: "font/local"}, "font loader")
	ins.exact("@next/font/local/target.css", alias.Dynamic{HandlerID: "font/local"}, "font loader")
	ins.exact(VirtualPackage+"/internal/font/local/cssmodule.module.css", alias.Dynamic{HandlerID: "font/local-cssmodule"}, "font loader")

	// Packages that must resolve to a single copy across the whole
	// bundle. The framework's own helpers are pinned from its root,
	// the rest from the project.
	if err := c.pinSingleton(ctx, ins, "@swc/helpers", c.frameworkRoot); err != nil {
		return err
	}
	if err := c.pinSingleton(ctx, ins, "styled-jsx", c.frameworkRoot); err != nil {
		return err
	}
	ins.exact(c.cfg.frameworkPackage, alias.Singleton{Name: c.cfg.frameworkPackage, Root: c.frameworkRoot}, "singleton "+c.cfg.frameworkPackage)
	if err := c.pinSingleton(ctx, ins, "react", proj); err != nil {
		return err
	}
	if err := c.pinSingleton(ctx, ins, "react-dom", proj); err != nil {
		return err
	}

	ins.exact("setimmediate", directTo(proj, "next/dist/compiled/setimmediate"), "")

	ins.prefix("@vercel/turbopack-ecmascript-runtime/", directTo(c.cfg.embeddedRoots[EmbeddedRuntime], "./*"), "embedded runtime assets")
	ins.prefix("@vercel/turbopack-node/", directTo(c.cfg.embeddedRoots[EmbeddedNode], "./*"), "embedded node assets")

	if c.lc.Routing.Browser() || c.edge() {
		for _, a := range optimizedAliases {
			ins.exact(a.name, directTo(proj, a.request), "optimized substitute")
		}
	}

	// Browser bundles polyfill the node: core modules. The catch-all
	// context compiles foreign code and is left alone.
	if c.lc.Routing.Browser() && c.lc.Routing.kind != routingOtherBrowser {
		for _, p := range builtins.Polyfills {
			ins.exact("node:"+p.Name, directTo(proj, p.Request), "node polyfill")
		}
	}

	if c.edge() {
		for _, r := range esmPrefixRemaps {
			ins.prefix(r.prefix, directTo(proj, r.request), "esm remap")
		}
		for _, r := range esmExactRemaps {
			ins.exact(r.name, directTo(proj, r.request), "esm remap")
		}
	}
	return nil
}

// pinSingleton records the installed location of name so every import
// of it lands on one copy. A package that is not installed is skipped;
// projects without it have nothing to deduplicate.
func (c *composer) pinSingleton(ctx context.Context, ins inserter, name, baseDir string) error {
	root, ok, err := c.oracle.LocatePackageRoot(ctx, baseDir, name)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Warn("singleton package not installed, skipping pin", "package", name, "base", baseDir)
		return nil
	}
	ins.exact(name, alias.Singleton{Name: name, Root: root}, "singleton "+name)
	return nil
}
