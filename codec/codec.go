// Package codec converts raw string arguments into their declared types.
// The dispatcher accepts any Parser implementation; DefaultParser is the
// built-in one.
package codec

import (
	"strconv"
	"strings"

	"github.com/serene-web/serene/errors"
)

// Type tags a declared argument type. An empty Type means "no coercion,
// pass the raw string through".
type Type string

const (
	String Type = "string"
	Int    Type = "int"
	Float  Type = "float"
	Bool   Type = "bool"
)

const listPrefix = "[]"

// ListOf returns the list type for the given element type. List values are
// comma-separated on the wire.
func ListOf(elem Type) Type {
	return Type(listPrefix) + elem
}

// Elem returns the element type of a list type and true, or "" and false
// when t is not a list.
func (t Type) Elem() (Type, bool) {
	if strings.HasPrefix(string(t), listPrefix) {
		return Type(strings.TrimPrefix(string(t), listPrefix)), true
	}
	return "", false
}

// Known reports whether t is a type the default parser understands.
// The empty type is known: it means pass-through.
func Known(t Type) bool {
	if elem, ok := t.Elem(); ok {
		return elem != "" && Known(elem)
	}
	switch t {
	case "", String, Int, Float, Bool:
		return true
	}
	return false
}

// Parser converts a raw query or path value into a declared type. A failed
// conversion must return a client-classified error so that the dispatcher
// answers 400, not 500.
type Parser interface {
	Parse(t Type, raw string) (any, error)
}

// DefaultParser is the built-in Parser covering string, int, float, bool
// and comma-separated lists thereof.
type DefaultParser struct{}

// NewDefaultParser returns the built-in parser.
func NewDefaultParser() *DefaultParser {
	return &DefaultParser{}
}

// Parse converts raw into the target type t.
func (p *DefaultParser) Parse(t Type, raw string) (any, error) {
	if elem, ok := t.Elem(); ok {
		return p.parseList(elem, raw)
	}

	switch t {
	case "", String:
		return raw, nil
	case Int:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.BadRequestf("Bad value '%s' for type int", raw)
		}
		return v, nil
	case Float:
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.BadRequestf("Bad value '%s' for type float", raw)
		}
		return v, nil
	case Bool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errors.BadRequestf("Bad value '%s' for type bool", raw)
		}
		return v, nil
	}

	return nil, errors.Definitionf("Unknown argument type '%s'", t)
}

func (p *DefaultParser) parseList(elem Type, raw string) (any, error) {
	if raw == "" {
		return []any{}, nil
	}

	parts := strings.Split(raw, ",")
	out := make([]any, 0, len(parts))
	for _, part := range parts {
		v, err := p.Parse(elem, part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
