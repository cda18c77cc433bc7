package goimportmap

import "context"

// applyGuard re-asserts the rules user configuration must not be able
// to break: the embedded asset prefixes and, outside development, the
// dev overlay replacement.
func (c *composer) applyGuard(ctx context.Context, ins inserter) error {
	ins.prefix(VirtualPackage+"/", directTo(c.cfg.embeddedRoots[EmbeddedNextJS], "./*"), "embedded framework assets")
	ins.prefix("@vercel/turbopack-ecmascript-runtime/", directTo(c.cfg.embeddedRoots[EmbeddedRuntime], "./*"), "embedded runtime assets")
	ins.prefix("@vercel/turbopack-node/", directTo(c.cfg.embeddedRoots[EmbeddedNode], "./*"), "embedded node assets")

	if c.lc.Mode != ModeDevelopment {
		ins.exact(devOverlayAlias, directTo(c.cfg.embeddedRoots[EmbeddedNextJS], devOverlayRequest), "dev overlay replacement")
	}
	return nil
}
