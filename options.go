package goimportmap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Option configures map composition.
type Option func(*composeConfig) error

// EmbeddedRoot identifies one of the embedded asset trees backing the
// virtual package prefixes.
type EmbeddedRoot string

const (
	// EmbeddedNextJS backs the @vercel/turbopack-next/ prefix.
	EmbeddedNextJS EmbeddedRoot = "next-js"

	// EmbeddedRuntime backs the @vercel/turbopack-ecmascript-runtime/ prefix.
	EmbeddedRuntime EmbeddedRoot = "ecmascript-runtime"

	// EmbeddedNode backs the @vercel/turbopack-node/ prefix.
	EmbeddedNode EmbeddedRoot = "node-runtime"
)

// composeConfig holds all composition configuration.
type composeConfig struct {
	oracle           ResolutionOracle
	userAliases      []UserAlias
	conditions       []string
	handlers         map[string]Handler
	embeddedRoots    map[EmbeddedRoot]string
	frameworkPackage string

	// logger is the structured logger for debug output.
	// If nil, logging is disabled (silent mode).
	logger *slog.Logger
}

// defaultComposeConfig returns the configuration Compose starts from:
//   - framework package "next"
//   - embedded roots at the reserved /embedded/... virtual paths
//   - no oracle; Compose substitutes a filesystem oracle rooted at the
//     context's project root
//   - no user aliases, no extra conditions, no dynamic handlers
//   - silent logging
func defaultComposeConfig() *composeConfig {
	return &composeConfig{
		handlers: make(map[string]Handler),
		embeddedRoots: map[EmbeddedRoot]string{
			EmbeddedNextJS:  "/embedded/next-js",
			EmbeddedRuntime: "/embedded/ecmascript-runtime",
			EmbeddedNode:    "/embedded/node-runtime",
		},
		frameworkPackage: "next",
	}
}

// WithOracle sets the resolution oracle consulted for existence probes
// and package-root lookups.
func WithOracle(o ResolutionOracle) Option {
	return func(c *composeConfig) error {
		if o == nil {
			return errors.New("oracle must not be nil")
		}
		c.oracle = o
		return nil
	}
}

// WithUserAliases appends user-configured aliases. Aliases are applied
// in the order given, after the framework rules and before the guard
// layer.
func WithUserAliases(aliases ...UserAlias) Option {
	return func(c *composeConfig) error {
		for _, a := range aliases {
			if a.Pattern.IsEmpty() {
				return &PatternError{Reason: "empty pattern"}
			}
		}
		c.userAliases = append(c.userAliases, aliases...)
		return nil
	}
}

// WithConditions activates extra user-alias conditions in addition to
// the ones implied by the routing style.
func WithConditions(conditions ...string) Option {
	return func(c *composeConfig) error {
		c.conditions = append(c.conditions, conditions...)
		return nil
	}
}

// WithHandler registers a dynamic handler under the given id.
// Registering the same id again replaces the previous handler.
func WithHandler(id string, h Handler) Option {
	return func(c *composeConfig) error {
		if id == "" {
			return errors.New("handler id must not be empty")
		}
		if h == nil {
			return fmt.Errorf("handler %q must not be nil", id)
		}
		c.handlers[id] = h
		return nil
	}
}

// WithEmbeddedRoot overrides the directory backing one embedded asset
// tree. The defaults are reserved virtual paths that only make sense to
// pipelines shipping the embedded assets; override them to point at
// real directories.
func WithEmbeddedRoot(kind EmbeddedRoot, path string) Option {
	return func(c *composeConfig) error {
		if _, ok := c.embeddedRoots[kind]; !ok {
			return fmt.Errorf("unknown embedded root %q", kind)
		}
		if path == "" {
			return fmt.Errorf("embedded root %q requires a path", kind)
		}
		c.embeddedRoots[kind] = path
		return nil
	}
}

// WithFrameworkPackage overrides the framework package name located
// from the project root. The default is "next".
func WithFrameworkPackage(name string) Option {
	return func(c *composeConfig) error {
		if name == "" {
			return errors.New("framework package name must not be empty")
		}
		c.frameworkPackage = name
		return nil
	}
}

// WithLogger sets a structured logger for composition diagnostics.
// If not set, logging is disabled (silent mode).
//
// The library uses log/slog, so any backend can be plugged in via a
// handler.
func WithLogger(l *slog.Logger) Option {
	return func(c *composeConfig) error {
		c.logger = l
		return nil
	}
}

// log returns the configured logger, or a no-op logger if none was set.
// This allows internal code to call logging methods without nil checks.
func (c *composeConfig) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(discardHandler{})
}

// discardHandler is a slog.Handler that discards all log records.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (d discardHandler) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discardHandler) WithGroup(string) slog.Handler           { return d }

// newComposeConfig applies the given options to the defaults.
func newComposeConfig(opts ...Option) (*composeConfig, error) {
	c := defaultComposeConfig()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}
