package router

import (
	stdcontext "context"

	"github.com/serene-web/serene/codec"
	"github.com/serene-web/serene/context"
	"github.com/serene-web/serene/errors"
)

// Role says where an argument's value comes from.
type Role int

const (
	// RolePath marks a value captured from a path segment. Always required.
	RolePath Role = iota
	// RoleQuery marks a value read from the query string.
	RoleQuery
)

// Arg is one entry of a route's declared argument schema. Routes declare
// their arguments explicitly at registration; the contract extractor
// classifies each one as path or query against the compiled template.
type Arg struct {
	Name    string
	Type    codec.Type
	Default any

	optional bool
}

// Required declares an argument with no default. Path captures must be
// declared this way; for query arguments it makes the parameter mandatory.
func Required(name string, t codec.Type) Arg {
	return Arg{Name: name, Type: t}
}

// Optional declares a query argument with a default value. The default is
// used as-is when the request omits the parameter; it is not coerced.
func Optional(name string, t codec.Type, def any) Arg {
	return Arg{Name: name, Type: t, Default: def, optional: true}
}

// ParamSpec is the validated classification of one declared argument.
type ParamSpec struct {
	Name     string
	Role     Role
	Required bool
	Default  any
	Type     codec.Type
}

// Contract binds a compiled template to a handler and the validated
// parameter specs. Contracts are built once during registration and are
// immutable afterwards.
type Contract struct {
	template *Template
	invoke   Invoker
	params   []ParamSpec
	consumes any
	produces any
}

// NewContract validates the declared argument schema against the
// template's captures and resolves the handler's calling convention.
//
// The rules mirror the registration-time checks of the argument contract:
// every capture needs a same-named required declaration, captures must not
// carry defaults, and everything else becomes a query parameter whose
// requiredness follows from the absence of a default.
func NewContract(tpl *Template, handler any, args []Arg) (*Contract, error) {
	invoke, err := resolveInvoker(handler)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Arg, len(args))
	for i := range args {
		a := &args[i]
		if a.Name == "" {
			return nil, errors.Definitionf("Argument with empty name in '%s'", tpl.Pattern())
		}
		if _, dup := byName[a.Name]; dup {
			return nil, errors.Definitionf("Duplicate argument '%s' in '%s'", a.Name, tpl.Pattern())
		}
		if !codec.Known(a.Type) {
			return nil, errors.Definitionf("Unknown type '%s' for argument '%s'", a.Type, a.Name)
		}
		byName[a.Name] = a
	}

	isCapture := make(map[string]bool, len(tpl.Captures()))
	specs := make([]ParamSpec, 0, len(args))

	for _, name := range tpl.Captures() {
		isCapture[name] = true

		a, ok := byName[name]
		if !ok {
			return nil, errors.Definitionf("Path argument '%s' must be expected by '%s'", name, tpl.Pattern())
		}
		if a.optional {
			return nil, errors.Definitionf("Path argument '%s' must not be optional in '%s'", name, tpl.Pattern())
		}

		specs = append(specs, ParamSpec{
			Name:     name,
			Role:     RolePath,
			Required: true,
			Type:     a.Type,
		})
	}

	for _, a := range args {
		if isCapture[a.Name] {
			continue
		}
		specs = append(specs, ParamSpec{
			Name:     a.Name,
			Role:     RoleQuery,
			Required: !a.optional,
			Default:  a.Default,
			Type:     a.Type,
		})
	}

	return &Contract{template: tpl, invoke: invoke, params: specs}, nil
}

// Template returns the compiled template the contract was built for.
func (c *Contract) Template() *Template { return c.template }

// Params returns the parameter specs in declaration order, path captures
// first.
func (c *Contract) Params() []ParamSpec { return c.params }

// Invoke calls the handler under its resolved calling convention.
func (c *Contract) Invoke(ctx stdcontext.Context, rc *context.Context) (any, error) {
	return c.invoke(ctx, rc)
}

// SetConsumes records the opaque resource tag for request bodies.
func (c *Contract) SetConsumes(v any) { c.consumes = v }

// SetProduces records the opaque resource tag for response bodies.
func (c *Contract) SetProduces(v any) { c.produces = v }

// Consumes returns the resource tag for request bodies, if any.
func (c *Contract) Consumes() any { return c.consumes }

// Produces returns the resource tag for response bodies, if any.
func (c *Contract) Produces() any { return c.produces }
