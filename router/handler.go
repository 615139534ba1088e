package router

import (
	stdcontext "context"

	"github.com/serene-web/serene/context"
	"github.com/serene-web/serene/errors"
)

// Handler is the synchronous calling convention: the handler computes its
// result directly on the dispatching goroutine.
type Handler func(c *context.Context) (any, error)

// Result carries an asynchronous handler's outcome.
type Result struct {
	Value any
	Err   error
}

// AsyncHandler is the asynchronous calling convention: the handler starts
// its work and delivers the outcome on the returned channel. The dispatcher
// suspends until the result arrives or the transport cancels the request.
type AsyncHandler func(c *context.Context) <-chan Result

// Invoker is the unified entry point both conventions resolve to. The
// convention is inspected once, at registration, never per request.
type Invoker func(ctx stdcontext.Context, c *context.Context) (any, error)

// resolveInvoker maps a handler value onto its calling convention. Plain
// function literals of either shape are accepted alongside the named types.
func resolveInvoker(handler any) (Invoker, error) {
	switch h := handler.(type) {
	case Handler:
		return syncInvoker(h), nil
	case func(*context.Context) (any, error):
		return syncInvoker(h), nil
	case AsyncHandler:
		return asyncInvoker(h), nil
	case func(*context.Context) <-chan Result:
		return asyncInvoker(h), nil
	case nil:
		return nil, errors.Definitionf("Route handler must not be nil")
	}
	return nil, errors.Definitionf("Unsupported handler type %T", handler)
}

func syncInvoker(h Handler) Invoker {
	return func(_ stdcontext.Context, c *context.Context) (any, error) {
		return h(c)
	}
}

func asyncInvoker(h AsyncHandler) Invoker {
	return func(ctx stdcontext.Context, c *context.Context) (any, error) {
		select {
		case r := <-h(c):
			return r.Value, r.Err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
