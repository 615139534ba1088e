package app

import (
	"net/http"

	"github.com/serene-web/serene/router"
)

// RouteOption customizes one route registration.
type RouteOption func(*routeDef)

type routeDef struct {
	args     []router.Arg
	consumes any
	produces any
}

// WithArgs declares the route's argument schema: one entry per handler
// argument, path captures included. Built with router.Required and
// router.Optional.
func WithArgs(args ...router.Arg) RouteOption {
	return func(r *routeDef) {
		r.args = append(r.args, args...)
	}
}

// Consumes tags the route with the resource type its request body carries.
// With body validation enabled, incoming bodies are decoded into this
// prototype and validated.
func Consumes(v any) RouteOption {
	return func(r *routeDef) {
		r.consumes = v
	}
}

// Produces tags the route with the resource type it returns. Opaque to the
// dispatcher; consumed by documentation tooling.
func Produces(v any) RouteOption {
	return func(r *routeDef) {
		r.produces = v
	}
}

// GET registers a GET handler for the path.
func (app *App) GET(path string, handler any, opts ...RouteOption) error {
	return app.register(http.MethodGet, []string{path}, handler, opts...)
}

// POST registers a POST handler for the path.
func (app *App) POST(path string, handler any, opts ...RouteOption) error {
	return app.register(http.MethodPost, []string{path}, handler, opts...)
}

// PUT registers a PUT handler for the path.
func (app *App) PUT(path string, handler any, opts ...RouteOption) error {
	return app.register(http.MethodPut, []string{path}, handler, opts...)
}

// DELETE registers a DELETE handler for the path.
func (app *App) DELETE(path string, handler any, opts ...RouteOption) error {
	return app.register(http.MethodDelete, []string{path}, handler, opts...)
}

// register compiles the template, builds the contract and inserts it into
// the route table. Any failure is a definition error: the caller must
// treat it as fatal to application construction.
func (app *App) register(method string, fragments []string, handler any, opts ...RouteOption) error {
	def := &routeDef{}
	for _, opt := range opts {
		opt(def)
	}

	tpl, err := router.Compile(fragments...)
	if err != nil {
		return err
	}

	contract, err := router.NewContract(tpl, handler, def.args)
	if err != nil {
		return err
	}
	contract.SetConsumes(def.consumes)
	contract.SetProduces(def.produces)

	return app.table.Add(method, contract)
}

// Service scopes registrations under a URL prefix.
type Service struct {
	app    *App
	prefix string
}

// Service returns a registrar whose routes all live under prefix.
func (app *App) Service(prefix string) *Service {
	return &Service{app: app, prefix: prefix}
}

// GET registers a GET handler under the service prefix.
func (s *Service) GET(path string, handler any, opts ...RouteOption) error {
	return s.app.register(http.MethodGet, []string{s.prefix, path}, handler, opts...)
}

// POST registers a POST handler under the service prefix.
func (s *Service) POST(path string, handler any, opts ...RouteOption) error {
	return s.app.register(http.MethodPost, []string{s.prefix, path}, handler, opts...)
}

// PUT registers a PUT handler under the service prefix.
func (s *Service) PUT(path string, handler any, opts ...RouteOption) error {
	return s.app.register(http.MethodPut, []string{s.prefix, path}, handler, opts...)
}

// DELETE registers a DELETE handler under the service prefix.
func (s *Service) DELETE(path string, handler any, opts ...RouteOption) error {
	return s.app.register(http.MethodDelete, []string{s.prefix, path}, handler, opts...)
}
