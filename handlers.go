package goimportmap

import (
	"context"
	"fmt"
)

// Handler produces the final answer for a deferred dynamic rule, such
// as the font loader stylesheets. Handlers run outside the resolver:
// Lookup only reports which handler to invoke.
type Handler interface {
	Handle(ctx context.Context, specifier string, req RequestContext) (Answer, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, specifier string, req RequestContext) (Answer, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, specifier string, req RequestContext) (Answer, error) {
	return f(ctx, specifier, req)
}

var _ Handler = HandlerFunc(nil)

// HandlerRegistry holds the dynamic handlers registered for a composed
// map. It is immutable after composition and safe for concurrent use.
type HandlerRegistry struct {
	handlers map[string]Handler
}

func newHandlerRegistry(handlers map[string]Handler) *HandlerRegistry {
	copied := make(map[string]Handler, len(handlers))
	for id, h := range handlers {
		copied[id] = h
	}
	return &HandlerRegistry{handlers: copied}
}

// Has reports whether a handler is registered under id.
func (r *HandlerRegistry) Has(id string) bool {
	_, ok := r.handlers[id]
	return ok
}

// IDs returns the registered handler ids in unspecified order.
func (r *HandlerRegistry) IDs() []string {
	ids := make([]string, 0, len(r.handlers))
	for id := range r.handlers {
		ids = append(ids, id)
	}
	return ids
}

// Invoke runs the handler registered under id for a deferred answer.
// It returns ErrHandlerNotRegistered when the id has no registration
// and wraps handler failures in *HandlerError.
func (r *HandlerRegistry) Invoke(ctx context.Context, id, specifier string, req RequestContext) (Answer, error) {
	h, ok := r.handlers[id]
	if !ok {
		return Answer{}, fmt.Errorf("handler %q: %w", id, ErrHandlerNotRegistered)
	}
	out, err := h.Handle(ctx, specifier, req)
	if err != nil {
		return Answer{}, &HandlerError{HandlerID: id, Specifier: specifier, Err: err}
	}
	return out, nil
}
