// Package context defines the per-request context handed to handlers. One
// Context is owned exclusively by the dispatch that created it and is never
// shared across requests.
package context

import (
	stdcontext "context"
	"encoding/json"
	"net/url"
)

// Context carries everything a handler may need for one request: the raw
// inputs, the path captures, and the coerced argument bag assembled by the
// dispatcher.
type Context struct {
	ctx     stdcontext.Context
	method  string
	path    string
	query   url.Values
	rawBody []byte

	body     any
	resource any
	params   map[string]string
	args     map[string]any
	values   map[string]any
}

// New creates a request context. The dispatcher fills in path captures and
// coerced arguments before the handler runs.
func New(ctx stdcontext.Context, method, path string, query url.Values, body []byte) *Context {
	if ctx == nil {
		ctx = stdcontext.Background()
	}
	return &Context{
		ctx:     ctx,
		method:  method,
		path:    path,
		query:   query,
		rawBody: body,
	}
}

// Context returns the transport-provided context used for cancellation.
func (c *Context) Context() stdcontext.Context { return c.ctx }

// Method returns the HTTP method of the request.
func (c *Context) Method() string { return c.method }

// Path returns the request path as received from the transport.
func (c *Context) Path() string { return c.path }

// QueryValues returns the raw query parameters.
func (c *Context) QueryValues() url.Values { return c.query }

// Query returns the raw string value of a query parameter and whether it
// was present.
func (c *Context) Query(name string) (string, bool) {
	if c.query == nil {
		return "", false
	}
	vs, ok := c.query[name]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// RawBody returns the unparsed request body bytes.
func (c *Context) RawBody() []byte { return c.rawBody }

// Body returns the request body parsed as JSON, or nil when the request
// carried no body.
func (c *Context) Body() any { return c.body }

// SetBody records the parsed JSON body. Called by the dispatcher.
func (c *Context) SetBody(v any) { c.body = v }

// Resource returns the body decoded into the route's consumes prototype,
// when body validation is configured. Nil otherwise.
func (c *Context) Resource() any { return c.resource }

// SetResource records the validated, typed body value.
func (c *Context) SetResource(v any) { c.resource = v }

// Bind unmarshals the raw body into v.
func (c *Context) Bind(v any) error {
	return json.Unmarshal(c.rawBody, v)
}

// SetParams records the raw path captures. Called by the dispatcher.
func (c *Context) SetParams(params map[string]string) { c.params = params }

// Param returns the raw string captured for a path argument.
func (c *Context) Param(name string) string { return c.params[name] }

// ParamNames returns the names of all path captures.
func (c *Context) ParamNames() []string {
	names := make([]string, 0, len(c.params))
	for name := range c.params {
		names = append(names, name)
	}
	return names
}

// SetArg stores one entry of the coerced argument bag.
func (c *Context) SetArg(name string, value any) {
	if c.args == nil {
		c.args = make(map[string]any)
	}
	c.args[name] = value
}

// Arg returns the coerced value of a path or query argument and whether it
// is present in the bag.
func (c *Context) Arg(name string) (any, bool) {
	v, ok := c.args[name]
	return v, ok
}

// Args returns the full merged argument bag.
func (c *Context) Args() map[string]any { return c.args }

// ArgString returns a string argument, or "" when absent or of another type.
func (c *Context) ArgString(name string) string {
	if v, ok := c.args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// ArgInt returns an int argument, or 0 when absent or of another type.
func (c *Context) ArgInt(name string) int {
	if v, ok := c.args[name]; ok {
		if n, ok := v.(int); ok {
			return n
		}
	}
	return 0
}

// ArgFloat returns a float argument, or 0 when absent or of another type.
func (c *Context) ArgFloat(name string) float64 {
	if v, ok := c.args[name]; ok {
		if f, ok := v.(float64); ok {
			return f
		}
	}
	return 0
}

// ArgBool returns a bool argument, or false when absent or of another type.
func (c *Context) ArgBool(name string) bool {
	if v, ok := c.args[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// Set stores an arbitrary request-scoped value (request IDs, middleware
// state).
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	c.values[key] = value
}

// Get returns a request-scoped value set with Set, or nil.
func (c *Context) Get(key string) any {
	return c.values[key]
}
