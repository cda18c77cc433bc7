package goimportmap

// runtimePhase selects which vendored react copy a server app context
// loads on Node.js. Client components render with the ssr copy, server
// components with the rsc copy.
type runtimePhase string

const (
	phaseSSR runtimePhase = "ssr"
	phaseRSC runtimePhase = "rsc"
)

// phaseFor maps an app server routing style to its react phase.
func phaseFor(r RoutingStyle) runtimePhase {
	if r.kind == routingAppSSR {
		return phaseSSR
	}
	return phaseRSC
}

// vendoredReactPrefix is where the framework ships the private react
// copies the Node.js runtime must load.
const vendoredReactPrefix = "next/dist/server/future/route-modules/app-page/vendored/"

// reactFlavor returns the compiled react build suffix: the experimental
// build when server actions are enabled, the standard build otherwise.
func reactFlavor(serverActions bool) string {
	if serverActions {
		return "-experimental"
	}
	return ""
}

// matrixRow pins one react-family module for server app contexts.
type matrixRow struct {
	// entry is the import specifier being pinned.
	entry string

	// base and subpath form the compiled target:
	// next/dist/compiled/<base><flavor>[/<subpath>].
	base    string
	subpath string

	// vendored is the module file under the phase directory of
	// vendoredReactPrefix.
	vendored string

	// phaseLock forces a fixed phase for the vendored copy regardless
	// of the context's phase. Empty means use the context's phase.
	phaseLock runtimePhase
}

// runtimeMatrix lists every react-family module whose target depends on
// the runtime target and the server-actions flag.
// Reference:
// https://github.com/vercel/next.js/blob/canary/packages/next-swc/crates/next-core/src/next_import_map.rs
var runtimeMatrix = []matrixRow{
	{entry: "react", base: "react", vendored: "react"},
	{entry: "react/jsx-runtime", base: "react", subpath: "jsx-runtime", vendored: "react-jsx-runtime"},
	{entry: "react/jsx-dev-runtime", base: "react", subpath: "jsx-dev-runtime", vendored: "react-jsx-dev-runtime"},
	{entry: "react-dom", base: "react-dom", vendored: "react-dom"},
	{entry: "react-dom/server.edge", base: "react-dom", subpath: "server.edge", vendored: "react-dom-server-edge", phaseLock: phaseSSR},
	{entry: "react-server-dom-turbopack/client.edge", base: "react-server-dom-turbopack", subpath: "client.edge", vendored: "react-server-dom-turbopack-client-edge", phaseLock: phaseSSR},
	{entry: "react-server-dom-turbopack/server.edge", base: "react-server-dom-turbopack", subpath: "server.edge", vendored: "react-server-dom-turbopack-server-edge", phaseLock: phaseRSC},
	{entry: "react-server-dom-turbopack/server.node", base: "react-server-dom-turbopack", subpath: "server.node", vendored: "react-server-dom-turbopack-server-node", phaseLock: phaseRSC},
}

// selectRuntimeVariant returns the target request for one matrix entry.
// Edge contexts load the compiled build, flavored by the server-actions
// flag; Node.js contexts load the vendored copy for the given phase.
// The vendored copies have no experimental variant. The boolean is
// false for entries outside the matrix.
func selectRuntimeVariant(entry string, phase runtimePhase, runtime RuntimeTarget, serverActions bool) (string, bool) {
	for _, row := range runtimeMatrix {
		if row.entry != entry {
			continue
		}
		if runtime == RuntimeEdge {
			target := "next/dist/compiled/" + row.base + reactFlavor(serverActions)
			if row.subpath != "" {
				target += "/" + row.subpath
			}
			return target, true
		}
		if row.phaseLock != "" {
			phase = row.phaseLock
		}
		return vendoredReactPrefix + string(phase) + "/" + row.vendored, true
	}
	return "", false
}
