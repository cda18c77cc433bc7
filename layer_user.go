package goimportmap

import (
	"context"

	"github.com/albertocavalcante/go-importmap/alias"
)

// conditionBrowser activates browser-gated user aliases.
const conditionBrowser = "browser"

// activeConditions returns the user-alias conditions implied by the
// routing style plus any configured extras.
func (c *composer) activeConditions() map[string]struct{} {
	set := make(map[string]struct{}, len(c.cfg.conditions)+1)
	if c.lc.Routing.Browser() {
		set[conditionBrowser] = struct{}{}
	}
	for _, cond := range c.cfg.conditions {
		set[cond] = struct{}{}
	}
	return set
}

// applyUser installs the project's configured aliases. Targets gated
// on an inactive condition are dropped; an alias whose targets all
// drop out is skipped entirely.
func (c *composer) applyUser(ctx context.Context, ins inserter) error {
	if len(c.cfg.userAliases) == 0 {
		return nil
	}
	proj := c.lc.ProjectRoot
	active := c.activeConditions()

	for _, ua := range c.cfg.userAliases {
		targets := make([]alias.Mapping, 0, len(ua.Targets))
		for _, t := range ua.Targets {
			if t.Condition != "" {
				if _, ok := active[t.Condition]; !ok {
					continue
				}
			}
			targets = append(targets, directTo(proj, t.Target))
		}
		if len(targets) == 0 {
			c.logger.Debug("user alias has no active targets", "pattern", ua.Pattern.String())
			continue
		}

		var m alias.Mapping
		if len(targets) == 1 {
			m = targets[0]
		} else {
			m = alias.Alternatives(targets)
		}
		if ua.Pattern.IsWildcard() {
			ins.prefix(ua.Pattern.Key(), m, "user alias")
		} else {
			ins.exact(ua.Pattern.Key(), m, "user alias")
		}
	}
	return nil
}
