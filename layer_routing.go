package goimportmap

import (
	"context"

	"github.com/albertocavalcante/go-importmap/alias"
)

const (
	serverOnlyIndex = "next/dist/compiled/server-only/index"
	clientOnlyIndex = "next/dist/compiled/client-only/index"
	serverOnlyEmpty = "next/dist/compiled/server-only/empty"
	clientOnlyError = "next/dist/compiled/client-only/error"
)

// applyRouting installs the rules a routing style carries on every
// runtime it compiles for.
func (c *composer) applyRouting(ctx context.Context, ins inserter) error {
	proj := c.lc.ProjectRoot
	r := c.lc.Routing

	switch r.kind {
	case routingPagesBrowser:
		c.insertPageChains(ins, r.dir, func(request string) alias.Mapping {
			return directTo(r.dir, request)
		})

	case routingAppBrowser:
		flavor := reactFlavor(c.lc.Flags.ServerActions)
		ins.exact("react", directTo(r.dir, "next/dist/compiled/react"+flavor), "app react pin")
		ins.prefix("react/", directTo(r.dir, "next/dist/compiled/react"+flavor+"/*"), "app react pin")
		ins.exact("react-dom", directTo(r.dir, "next/dist/compiled/react-dom"+flavor), "app react pin")
		ins.prefix("react-dom/", directTo(r.dir, "next/dist/compiled/react-dom"+flavor+"/*"), "app react pin")
		ins.prefix("react-server-dom-webpack/", directTo(r.dir, "react-server-dom-turbopack/*"), "flight rename")
		ins.prefix("react-server-dom-turbopack/", directTo(r.dir, "next/dist/compiled/react-server-dom-turbopack"+flavor+"/*"), "flight pin")
		c.insertAppStubs(ins)

	case routingAppSSR, routingAppRSC, routingAppRoute:
		c.insertAppStubs(ins)
		ins.exact("@opentelemetry/api", directTo(r.dir, "next/dist/compiled/@opentelemetry/api"), "bundled otel")

		// styled-jsx must come from the framework's own copy, located
		// relative to the app directory.
		frameworkRoot, err := c.locateFramework(ctx, r.dir)
		if err != nil {
			return err
		}
		ins.exact("styled-jsx", directTo(frameworkRoot, "styled-jsx"), "framework styled-jsx")
		ins.prefix("styled-jsx/", directTo(frameworkRoot, "styled-jsx/*"), "framework styled-jsx")
	}

	// Enforce the server-only/client-only contract. Contexts that may
	// import either get the permissive index modules; the react server
	// graph gets the erroring ones.
	switch r.kind {
	case routingPagesBrowser, routingAppBrowser, routingFallbackBrowser, routingOtherBrowser,
		routingPagesSSR, routingPagesData, routingAppSSR:
		ins.exact("server-only", directTo(proj, serverOnlyIndex), "boundary marker")
		ins.exact("client-only", directTo(proj, clientOnlyIndex), "boundary marker")
		ins.exact("next/dist/compiled/server-only", directTo(proj, serverOnlyIndex), "boundary marker")
		ins.exact("next/dist/compiled/client-only", directTo(proj, clientOnlyIndex), "boundary marker")
	case routingAppRSC, routingAppRoute, routingMiddleware:
		ins.exact("server-only", directTo(proj, serverOnlyEmpty), "boundary marker")
		ins.exact("client-only", directTo(proj, clientOnlyError), "boundary marker")
		ins.exact("next/dist/compiled/server-only", directTo(proj, serverOnlyEmpty), "boundary marker")
		ins.exact("next/dist/compiled/client-only", directTo(proj, clientOnlyError), "boundary marker")
	}

	// Middleware runs outside the rendering graph, so client-only
	// imports are tolerated there.
	if r.kind == routingMiddleware {
		ins.exact("client-only", directTo(proj, clientOnlyIndex), "boundary relaxed")
		ins.exact("next/dist/compiled/client-only", directTo(proj, clientOnlyIndex), "boundary relaxed")
		ins.exact("next/dist/compiled/client-only/error", directTo(proj, clientOnlyIndex), "boundary relaxed")
	}
	return nil
}

// insertPageChains aliases the injected pages modules to the user's
// files, falling back to the framework defaults. The fallback mapping
// is runtime-dependent and supplied by the caller.
func (c *composer) insertPageChains(ins inserter, pagesDir string, fallback func(request string) alias.Mapping) {
	ins.exact(VirtualPackage+"/pages/_app", pageChain(pagesDir, "./_app", fallback("next/app")), "pages app chain")
	ins.exact(VirtualPackage+"/pages/_document", pageChain(pagesDir, "./_document", fallback("next/document")), "pages document chain")
	ins.exact(VirtualPackage+"/pages/_error", pageChain(pagesDir, "./_error", fallback("next/error")), "pages error chain")
}

// insertAppStubs replaces pages-router APIs with their app-router
// equivalents.
func (c *composer) insertAppStubs(ins inserter) {
	proj := c.lc.ProjectRoot
	ins.exact("next/head", directTo(proj, "next/dist/client/components/noop-head"), "app head stub")
	ins.exact("next/dynamic", directTo(proj, "next/dist/shared/lib/app-dynamic"), "app dynamic")
}
