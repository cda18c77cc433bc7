package goimportmap

import (
	"errors"
	"fmt"

	"github.com/albertocavalcante/go-importmap/alias"
)

// routingKind discriminates the routing styles a compilation context can have.
type routingKind int

const (
	routingInvalid routingKind = iota
	routingPagesBrowser
	routingAppBrowser
	routingFallbackBrowser
	routingOtherBrowser
	routingPagesSSR
	routingPagesData
	routingAppSSR
	routingAppRSC
	routingAppRoute
	routingMiddleware
)

// RoutingStyle identifies which part of an application a compilation
// context serves and, where relevant, the source directory backing it.
// The zero value is invalid; use one of the constructors.
type RoutingStyle struct {
	kind routingKind
	dir  string
}

// PagesBrowser is the browser bundle of the pages router.
func PagesBrowser(pagesDir string) RoutingStyle {
	return RoutingStyle{kind: routingPagesBrowser, dir: pagesDir}
}

// AppBrowser is the browser bundle of the app router.
func AppBrowser(appDir string) RoutingStyle {
	return RoutingStyle{kind: routingAppBrowser, dir: appDir}
}

// FallbackBrowser is the browser bundle serving development fallback pages.
func FallbackBrowser() RoutingStyle {
	return RoutingStyle{kind: routingFallbackBrowser}
}

// OtherBrowser is a browser bundle outside any router, such as injected
// client scripts.
func OtherBrowser() RoutingStyle {
	return RoutingStyle{kind: routingOtherBrowser}
}

// PagesSSR is the server rendering context of the pages router.
func PagesSSR(pagesDir string) RoutingStyle {
	return RoutingStyle{kind: routingPagesSSR, dir: pagesDir}
}

// PagesData is the data/API rendering context of the pages router.
func PagesData(pagesDir string) RoutingStyle {
	return RoutingStyle{kind: routingPagesData, dir: pagesDir}
}

// AppSSR is the client-component server rendering context of the app router.
func AppSSR(appDir string) RoutingStyle {
	return RoutingStyle{kind: routingAppSSR, dir: appDir}
}

// AppRSC is the server-component rendering context of the app router.
func AppRSC(appDir string) RoutingStyle {
	return RoutingStyle{kind: routingAppRSC, dir: appDir}
}

// AppRoute is the route-handler context of the app router.
func AppRoute(appDir string) RoutingStyle {
	return RoutingStyle{kind: routingAppRoute, dir: appDir}
}

// Middleware is the middleware execution context.
func Middleware() RoutingStyle {
	return RoutingStyle{kind: routingMiddleware}
}

// String returns a short stable name for the routing style.
func (r RoutingStyle) String() string {
	switch r.kind {
	case routingPagesBrowser:
		return "pages-browser"
	case routingAppBrowser:
		return "app-browser"
	case routingFallbackBrowser:
		return "fallback-browser"
	case routingOtherBrowser:
		return "other-browser"
	case routingPagesSSR:
		return "pages-ssr"
	case routingPagesData:
		return "pages-data"
	case routingAppSSR:
		return "app-ssr"
	case routingAppRSC:
		return "app-rsc"
	case routingAppRoute:
		return "app-route"
	case routingMiddleware:
		return "middleware"
	default:
		return "invalid"
	}
}

// Server reports whether the style is compiled for a server runtime.
func (r RoutingStyle) Server() bool {
	switch r.kind {
	case routingPagesSSR, routingPagesData, routingAppSSR, routingAppRSC,
		routingAppRoute, routingMiddleware:
		return true
	}
	return false
}

// Browser reports whether the style is compiled for the browser.
func (r RoutingStyle) Browser() bool {
	switch r.kind {
	case routingPagesBrowser, routingAppBrowser, routingFallbackBrowser,
		routingOtherBrowser:
		return true
	}
	return false
}

// App reports whether the style belongs to the app router.
func (r RoutingStyle) App() bool {
	switch r.kind {
	case routingAppBrowser, routingAppSSR, routingAppRSC, routingAppRoute:
		return true
	}
	return false
}

// Pages reports whether the style belongs to the pages router.
func (r RoutingStyle) Pages() bool {
	switch r.kind {
	case routingPagesBrowser, routingPagesSSR, routingPagesData:
		return true
	}
	return false
}

// Dir returns the source directory the style was constructed with.
// Styles without a backing directory return "".
func (r RoutingStyle) Dir() string { return r.dir }

func (r RoutingStyle) validate() error {
	switch r.kind {
	case routingInvalid:
		return errors.New("routing style not set; use a RoutingStyle constructor")
	case routingPagesBrowser, routingPagesSSR, routingPagesData:
		if r.dir == "" {
			return fmt.Errorf("%s routing requires a pages directory", r)
		}
	case routingAppBrowser, routingAppSSR, routingAppRSC, routingAppRoute:
		if r.dir == "" {
			return fmt.Errorf("%s routing requires an app directory", r)
		}
	}
	return nil
}

// BuildMode distinguishes development builds from production builds.
type BuildMode string

const (
	// ModeDevelopment is the interactive development build.
	ModeDevelopment BuildMode = "development"

	// ModeBuild is the production build.
	ModeBuild BuildMode = "build"
)

// RuntimeTarget selects the server runtime a server context compiles for.
// Browser contexts ignore it.
type RuntimeTarget string

const (
	// RuntimeNodeJS targets the Node.js server runtime.
	RuntimeNodeJS RuntimeTarget = "nodejs"

	// RuntimeEdge targets the edge (lightweight V8) runtime.
	RuntimeEdge RuntimeTarget = "edge"
)

// FeatureFlags toggles optional framework features that change the
// composed rule set.
type FeatureFlags struct {
	// ServerActions switches the app router to the experimental react
	// build and enables the server-action shims.
	ServerActions bool

	// MDX registers the MDX import-source fallback chain.
	MDX bool
}

// LayerContext identifies one compilation context. The composer derives
// a complete alias table from it; equal contexts produce equal tables.
// LayerContext is comparable and usable as a map key.
type LayerContext struct {
	// Routing selects the routing-style rules.
	Routing RoutingStyle

	// Mode is the build mode.
	Mode BuildMode

	// Runtime is the server runtime target. Ignored for browser
	// routing styles.
	Runtime RuntimeTarget

	// Flags toggles optional framework features.
	Flags FeatureFlags

	// ProjectRoot is the absolute path of the application root, the
	// base directory for framework-relative alias targets.
	ProjectRoot string
}

// Validate checks that the context is complete enough to compose a map.
func (c LayerContext) Validate() error {
	if err := c.Routing.validate(); err != nil {
		return err
	}
	switch c.Mode {
	case ModeDevelopment, ModeBuild:
	default:
		return fmt.Errorf("unknown build mode %q", c.Mode)
	}
	if c.Routing.Server() {
		switch c.Runtime {
		case RuntimeNodeJS, RuntimeEdge:
		default:
			return fmt.Errorf("unknown runtime target %q", c.Runtime)
		}
	}
	if c.ProjectRoot == "" {
		return errors.New("project root required")
	}
	return nil
}

// RequestContext carries per-lookup information about the importing file.
type RequestContext struct {
	// Dir is the directory of the importing file. Alias targets resolve
	// against their rule's base directory, not Dir; it is passed through
	// to dynamic handlers and recorded for diagnostics.
	Dir string
}

// AnswerKind classifies the outcome of a lookup.
type AnswerKind int

const (
	// AnswerNoMatch means no alias rule applied. The caller should
	// resolve the specifier through its normal mechanism.
	AnswerNoMatch AnswerKind = iota

	// AnswerResolved means an alias matched and its target exists.
	AnswerResolved

	// AnswerExternal means the specifier is left to the target runtime.
	AnswerExternal

	// AnswerDeferred means a dynamic rule matched; the caller invokes
	// its handler.
	AnswerDeferred

	// AnswerUnresolved means an alias matched but none of its targets
	// exist.
	AnswerUnresolved
)

// String returns a short stable name for the answer kind.
func (k AnswerKind) String() string {
	switch k {
	case AnswerNoMatch:
		return "no-match"
	case AnswerResolved:
		return "resolved"
	case AnswerExternal:
		return "external"
	case AnswerDeferred:
		return "deferred"
	case AnswerUnresolved:
		return "unresolved"
	default:
		return fmt.Sprintf("AnswerKind(%d)", int(k))
	}
}

// Answer is the result of resolving one specifier against an import map.
type Answer struct {
	// Kind classifies the outcome.
	Kind AnswerKind `json:"kind"`

	// Specifier is the original import specifier as given to Lookup.
	Specifier string `json:"specifier"`

	// Target is the resolved path (AnswerResolved only).
	Target string `json:"target,omitempty"`

	// ExternalName is the specifier to hand to the runtime
	// (AnswerExternal only). It may differ from Specifier when the
	// rule renames the external.
	ExternalName string `json:"external_name,omitempty"`

	// HandlerID names the dynamic handler to invoke (AnswerDeferred only).
	HandlerID string `json:"handler_id,omitempty"`

	// Origin identifies the rule that produced this answer.
	// Zero for AnswerNoMatch.
	Origin alias.Origin `json:"origin"`

	// Attempts lists every request probed before the outcome was
	// reached. For AnswerUnresolved it covers the full alternative
	// chain that was exhausted.
	Attempts []string `json:"attempts,omitempty"`
}

// ConditionedTarget is one target of a user alias, optionally gated by
// an environment condition such as "browser".
type ConditionedTarget struct {
	// Condition gates the target. Empty means unconditional.
	Condition string `json:"condition,omitempty"`

	// Target is the replacement request.
	Target string `json:"target"`
}

// UserAlias is one user-configured alias in declaration order.
type UserAlias struct {
	// Pattern is the specifier pattern the alias applies to.
	Pattern alias.Pattern

	// Targets lists the conditioned replacement targets in declaration
	// order.
	Targets []ConditionedTarget
}

// Summary aggregates entry statistics for a composed import map.
type Summary struct {
	// TotalEntries counts all rules in the table.
	TotalEntries int `json:"total_entries"`

	// ExactEntries counts exact-pattern rules.
	ExactEntries int `json:"exact_entries"`

	// PrefixEntries counts wildcard-prefix rules.
	PrefixEntries int `json:"prefix_entries"`

	// ByLayer counts rules by the composition layer that inserted the
	// surviving occurrence.
	ByLayer map[string]int `json:"by_layer"`
}

// ImportMap is a sealed alias table bound to the context it was composed
// for. It is immutable and safe for concurrent use.
type ImportMap struct {
	// Context is the compilation context the map was composed for.
	Context LayerContext

	table    *alias.Table
	resolver *Resolver
	handlers *HandlerRegistry
	summary  Summary
}

// Table exposes the sealed alias table.
func (m *ImportMap) Table() *alias.Table { return m.table }

// Summary returns entry statistics for the composed map.
func (m *ImportMap) Summary() Summary { return m.summary }

// Handlers returns the dynamic handlers registered at composition.
func (m *ImportMap) Handlers() *HandlerRegistry { return m.handlers }
