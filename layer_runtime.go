package goimportmap

import (
	"context"

	"github.com/albertocavalcante/go-importmap/alias"
)

// flightSubpaths are the entry points of the react server components
// transport package. Imports of either package name land on the
// framework's compiled copy.
var flightSubpaths = [...]string{"client", "client.edge", "server.edge", "server.node"}

// applyRuntime installs the rules that depend on where server code
// executes. Browser contexts carry none.
func (c *composer) applyRuntime(ctx context.Context, ins inserter) error {
	r := c.lc.Routing
	if !r.Server() {
		return nil
	}
	proj := c.lc.ProjectRoot
	node := c.lc.Runtime == RuntimeNodeJS

	// The require hook patches module resolution at process start and
	// must never be bundled.
	if node {
		ins.exact("next/dist/server/require-hook", alias.External{}, "runtime require hook")
	}

	switch r.kind {
	case routingPagesSSR:
		if node {
			c.insertPagesExternals(ins)
		}
		ins.exact("@opentelemetry/api", externalIfNode(c.lc.Runtime, r.dir, "next/dist/compiled/@opentelemetry/api"), "otel")
		c.insertPageChains(ins, r.dir, func(request string) alias.Mapping {
			return externalIfNode(c.lc.Runtime, r.dir, request)
		})

	case routingPagesData:
		if node {
			c.insertPagesExternals(ins)
		}

	case routingAppSSR, routingAppRSC, routingAppRoute:
		if node {
			ins.exact("private-next-rsc-action-proxy",
				directTo(proj, "next/dist/build/webpack/loaders/next-flight-loader/action-proxy"), "server action shim")
			ins.exact("private-next-rsc-action-client-wrapper",
				directTo(proj, "next/dist/build/webpack/loaders/next-flight-loader/action-client-wrapper"), "server action shim")
			ins.exact("private-next-rsc-action-validate",
				directTo(proj, "next/dist/build/webpack/loaders/next-flight-loader/action-validate"), "server action shim")
		}

		flavor := reactFlavor(c.lc.Flags.ServerActions)
		for _, sub := range flightSubpaths {
			m := directTo(proj, "next/dist/compiled/react-server-dom-turbopack"+flavor+"/"+sub)
			ins.exact("react-server-dom-webpack/"+sub, m, "flight "+sub)
			ins.exact("react-server-dom-turbopack/"+sub, m, "flight "+sub)
		}

		c.pinReactFamily(ins)
	}

	// The og image response is part of the server runtime on Node.js
	// and bundled from the framework on edge.
	ins.exact("@vercel/og", externalIfNode(c.lc.Runtime, proj, "next/dist/server/web/spec-extension/image-response"), "image response")
	return nil
}

// insertPagesExternals leaves the pages renderer's framework
// dependencies to the Node.js runtime instead of bundling them.
func (c *composer) insertPagesExternals(ins inserter) {
	ins.exact("react", alias.External{}, "runtime react")
	ins.prefix("react/", alias.External{}, "runtime react")
	ins.exact("react-dom", alias.External{}, "runtime react")
	ins.prefix("react-dom/", alias.External{}, "runtime react")
	ins.exact("styled-jsx", alias.External{}, "runtime styled-jsx")
	ins.prefix("styled-jsx/", alias.External{}, "runtime styled-jsx")
	// TODO: stop bundling next/dist/build/utils in the pages renderer
	ins.prefix("next/dist/build/utils", alias.External{}, "runtime build utils")
}

// pinReactFamily pins the react family to the variant the context's
// phase and runtime demand. The server rendering phase additionally
// pins the flight client and the streaming server renderer; the react
// server phase pins the flight server entries.
func (c *composer) pinReactFamily(ins inserter) {
	phase := phaseFor(c.lc.Routing)
	appDir := c.lc.Routing.dir

	pin := func(key, entry string) {
		target, ok := selectRuntimeVariant(entry, phase, c.lc.Runtime, c.lc.Flags.ServerActions)
		if !ok {
			return
		}
		ins.exact(key, directTo(appDir, target), "react pin")
	}

	pin("react/jsx-runtime", "react/jsx-runtime")
	pin("react/jsx-dev-runtime", "react/jsx-dev-runtime")
	pin("react", "react")
	pin("react-dom", "react-dom")

	if phase == phaseSSR {
		pin("react-server-dom-webpack/client.edge", "react-server-dom-turbopack/client.edge")
		pin("react-server-dom-turbopack/client.edge", "react-server-dom-turbopack/client.edge")
		pin("react-dom/server", "react-dom/server.edge")
		pin("react-dom/server.edge", "react-dom/server.edge")
	} else {
		pin("react-server-dom-webpack/server.edge", "react-server-dom-turbopack/server.edge")
		pin("react-server-dom-turbopack/server.edge", "react-server-dom-turbopack/server.edge")
		pin("react-server-dom-webpack/server.node", "react-server-dom-turbopack/server.node")
		pin("react-server-dom-turbopack/server.node", "react-server-dom-turbopack/server.node")
		pin("react-dom/server.edge", "react-dom/server.edge")
	}
}
