package goimportmap

import "context"

const (
	devOverlayAlias   = "next/dist/compiled/@next/react-dev-overlay/dist/client"
	devOverlayRequest = "./overlay/client.ts"
)

// applyMode installs build-mode rules. Production builds reuse the
// framework's hydration code but swap its error overlay for the
// embedded one.
func (c *composer) applyMode(ctx context.Context, ins inserter) error {
	if c.lc.Mode != ModeDevelopment {
		ins.exact(devOverlayAlias, directTo(c.cfg.embeddedRoots[EmbeddedNextJS], devOverlayRequest), "dev overlay replacement")
	}
	return nil
}
