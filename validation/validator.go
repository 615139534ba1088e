// Package validation decodes request bodies into a route's consumes
// prototype and validates them using go-playground/validator.
package validation

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/serene-web/serene/errors"
)

// BodyValidator validates JSON request bodies against a prototype struct.
// The dispatcher calls it after body parsing and before handler invocation
// when the route declared a consumes prototype.
type BodyValidator struct {
	validate *validator.Validate
}

// New creates a body validator.
func New() *BodyValidator {
	return &BodyValidator{validate: validator.New()}
}

// Validate decodes raw into a fresh instance of proto's type and runs
// struct validation. It returns the typed value. Decode and validation
// failures are client errors.
func (v *BodyValidator) Validate(proto any, raw []byte) (any, error) {
	if proto == nil {
		return nil, nil
	}

	t := reflect.TypeOf(proto)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Definitionf("Consumes prototype must be a struct, got %s", t.Kind())
	}

	target := reflect.New(t).Interface()
	if err := json.Unmarshal(raw, target); err != nil {
		return nil, errors.BadRequestf("Request body does not match the expected resource").Wrap(err)
	}

	if err := v.validate.Struct(target); err != nil {
		return nil, errors.BadRequestf("%s", validationMessage(err)).Wrap(err)
	}

	return target, nil
}

// validationMessage flattens validator errors into one client-facing line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return "Request body failed validation"
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "min":
			parts = append(parts, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			parts = append(parts, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "email":
			parts = append(parts, fmt.Sprintf("%s must be a valid email", fe.Field()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}
