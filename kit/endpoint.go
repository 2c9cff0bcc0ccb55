// Package kit holds the transport-agnostic endpoint abstraction shared by
// the HTTP and MCP surfaces: a request/response function type, composable
// middleware, and context accessors for request-scoped values.
package kit

import "context"

// Endpoint is one request/response operation.
type Endpoint func(ctx context.Context, req any) (any, error)

// Middleware wraps an Endpoint with cross-cutting behaviour.
type Middleware func(Endpoint) Endpoint

// Chain composes middleware left to right: the first argument is the
// outermost wrapper.
func Chain(mw ...Middleware) Middleware {
	return func(next Endpoint) Endpoint {
		for i := len(mw) - 1; i >= 0; i-- {
			next = mw[i](next)
		}
		return next
	}
}
