package app

import (
	stdcontext "context"
	"encoding/json"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/serene-web/serene/context"
	"github.com/serene-web/serene/errors"
	"github.com/serene-web/serene/response"
	"github.com/serene-web/serene/router"
)

// Handle is the dispatch entrypoint consumed by the transport. It runs the
// full pipeline for one request and always returns a status code with a
// well-formed JSON body, success or failure.
func (app *App) Handle(ctx stdcontext.Context, method, path string, query url.Values, body []byte) (int, []byte) {
	app.freeze()

	result, err := app.dispatch(ctx, method, path, query, body)
	if err != nil {
		return app.writeError(method, path, err)
	}

	payload, encErr := response.Encode(result)
	if encErr != nil {
		return app.writeError(method, path, encErr)
	}

	return http.StatusOK, response.Wrap(payload, app.cfg.API.PlainResultKey)
}

// dispatch runs resolution, argument extraction, coercion, body parsing
// and handler invocation. Serialization stays with the caller.
func (app *App) dispatch(ctx stdcontext.Context, method, path string, query url.Values, body []byte) (result any, err error) {
	contract, captures, err := app.table.Lookup(method, path)
	if err != nil {
		return nil, err
	}

	rc := context.New(ctx, method, path, query, body)
	rc.SetParams(captures)

	if err := app.bindArgs(contract, rc, captures, query); err != nil {
		return nil, err
	}
	if err := app.parseBody(contract, rc, body); err != nil {
		return nil, err
	}

	// The handler runs last; a panic here is an internal failure, not a
	// transport crash.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Internalf("handler panicked: %v", r)
		}
	}()

	return contract.Invoke(ctx, rc)
}

// bindArgs fills the context's argument bag: path captures and query
// values, coerced where the contract declares a type, defaults where the
// request omits an optional query argument.
func (app *App) bindArgs(contract *router.Contract, rc *context.Context, captures map[string]string, query url.Values) error {
	for _, spec := range contract.Params() {
		switch spec.Role {
		case router.RolePath:
			value, err := app.coerce(spec, captures[spec.Name])
			if err != nil {
				return err
			}
			rc.SetArg(spec.Name, value)

		case router.RoleQuery:
			raw, ok := rc.Query(spec.Name)
			if !ok {
				if spec.Required {
					return errors.BadRequestf("Missing required query argument '%s'", spec.Name)
				}
				// Defaults are recorded values, not wire input; they
				// bypass coercion.
				rc.SetArg(spec.Name, spec.Default)
				continue
			}

			value, err := app.coerce(spec, raw)
			if err != nil {
				return err
			}
			rc.SetArg(spec.Name, value)
		}
	}
	return nil
}

// coerce applies the configured parser to a raw value. Specs without a
// declared type pass the raw string through. Failures are client errors.
func (app *App) coerce(spec router.ParamSpec, raw string) (any, error) {
	if spec.Type == "" {
		return raw, nil
	}

	value, err := app.parser.Parse(spec.Type, raw)
	if err != nil {
		e := errors.From(err)
		if e.IsClient() {
			return nil, e
		}
		return nil, errors.BadRequestf("Bad value '%s' for argument '%s'", raw, spec.Name).Wrap(err)
	}
	return value, nil
}

// parseBody parses a non-empty body as JSON and, when body validation is
// configured and the route declares a consumes prototype, decodes and
// validates the typed resource. Runs before handler invocation.
func (app *App) parseBody(contract *router.Contract, rc *context.Context, body []byte) error {
	if len(body) == 0 {
		return nil
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return errors.BadRequestf("Malformed request body, JSON is expected").Wrap(err)
	}
	rc.SetBody(parsed)

	if app.bodies != nil && contract.Consumes() != nil {
		resource, err := app.bodies.Validate(contract.Consumes(), body)
		if err != nil {
			return err
		}
		rc.SetResource(resource)
	}
	return nil
}

// writeError converts a failure into the error envelope. Client errors
// surface their message verbatim; anything else is logged and masked with
// the configured generic message.
func (app *App) writeError(method, path string, err error) (int, []byte) {
	e := errors.From(err)

	if e.IsClient() {
		return e.Status(), response.Envelope(app.cfg.API.ErrorKey, e.Message())
	}

	app.logger.Error("Request failed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Error(e))

	return http.StatusInternalServerError,
		response.Envelope(app.cfg.API.ErrorKey, app.cfg.API.ServerErrorMessage)
}
