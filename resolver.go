package goimportmap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-importmap/alias"
)

// Resolver resolves import specifiers against a sealed alias table.
//
// Lookup proceeds in two stages:
//  1. Table match: exact entries first, then the longest matching
//     wildcard prefix, ties breaking to the most recently inserted.
//  2. Mapping evaluation: the matched mapping decides the outcome,
//     consulting the oracle for existence probes where needed.
//
// A Resolver holds no mutable state. It is safe for concurrent use and
// respects context cancellation through the oracle. Probe results are
// never cached here: a target that was missing is probed again on the
// next lookup, so files created between lookups are picked up without
// any invalidation protocol.
type Resolver struct {
	table  *alias.Table
	oracle ResolutionOracle
	logger *slog.Logger
}

// NewResolver creates a resolver over a sealed table. The logger may be
// nil for silent operation.
func NewResolver(table *alias.Table, oracle ResolutionOracle, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Resolver{table: table, oracle: oracle, logger: logger}
}

// Lookup resolves one import specifier. The returned answer classifies
// the outcome; see AnswerKind. Only oracle I/O failures and context
// cancellation surface as errors. A missing alias target is a normal
// AnswerUnresolved outcome, not an error.
func (r *Resolver) Lookup(ctx context.Context, specifier string, req RequestContext) (Answer, error) {
	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}

	match, ok := r.table.Lookup(specifier)
	if !ok {
		return Answer{Kind: AnswerNoMatch, Specifier: specifier}, nil
	}

	var attempts []string
	answer, found, err := r.evaluate(ctx, match.Mapping, specifier, &attempts)
	if err != nil {
		return Answer{}, err
	}
	if !found {
		r.logger.Debug("alias exhausted",
			"specifier", specifier,
			"origin", match.Origin.String(),
			"attempts", len(attempts))
		return Answer{
			Kind:      AnswerUnresolved,
			Specifier: specifier,
			Origin:    match.Origin,
			Attempts:  attempts,
		}, nil
	}

	answer.Specifier = specifier
	answer.Origin = match.Origin
	answer.Attempts = attempts
	return answer, nil
}

// evaluate walks one mapping. The boolean reports whether a final
// outcome was reached; false means this branch produced nothing and an
// enclosing alternative chain may continue.
func (r *Resolver) evaluate(ctx context.Context, m alias.Mapping, specifier string, attempts *[]string) (Answer, bool, error) {
	switch m := m.(type) {
	case alias.Direct:
		*attempts = append(*attempts, m.Request)
		target, found, err := r.oracle.ResolveFirstExisting(ctx, m.Base, m.Request)
		if err != nil {
			return Answer{}, false, fmt.Errorf("probe %q from %s: %w", m.Request, m.Base, err)
		}
		if !found {
			r.logger.Debug("alias target missing",
				"specifier", specifier, "request", m.Request, "base", m.Base)
			return Answer{}, false, nil
		}
		return Answer{Kind: AnswerResolved, Target: target}, true, nil

	case alias.External:
		name := m.Name
		if name == "" {
			name = specifier
		}
		return Answer{Kind: AnswerExternal, ExternalName: name}, true, nil

	case alias.Alternatives:
		for _, alt := range m {
			answer, found, err := r.evaluate(ctx, alt, specifier, attempts)
			if err != nil || found {
				return answer, found, err
			}
		}
		return Answer{}, false, nil

	case alias.Singleton:
		// The package root was pinned when the map was composed;
		// lookups never probe it again.
		return Answer{Kind: AnswerResolved, Target: m.Root}, true, nil

	case alias.Dynamic:
		return Answer{Kind: AnswerDeferred, HandlerID: m.HandlerID}, true, nil

	default:
		return Answer{}, false, fmt.Errorf("unknown mapping type %T", m)
	}
}

// Lookup resolves a specifier against the composed map. See
// Resolver.Lookup.
func (m *ImportMap) Lookup(ctx context.Context, specifier string, req RequestContext) (Answer, error) {
	return m.resolver.Lookup(ctx, specifier, req)
}
