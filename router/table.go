package router

import (
	"strings"

	"github.com/serene-web/serene/errors"
)

// Table is the method-keyed route table. It is populated during
// registration, frozen before the first request is served, and read-only
// from then on, so lookups need no synchronization.
type Table struct {
	order   []string
	entries map[string]*entry
	frozen  bool
}

type entry struct {
	template *Template
	methods  map[string]*Contract
}

// NewTable creates an empty route table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*entry)}
}

// Add registers a contract for an HTTP method. Registering the same
// (pattern, method) pair twice is a definition error: redefinition is
// refused rather than silently overridden or merged.
func (t *Table) Add(method string, c *Contract) error {
	if t.frozen {
		return errors.Definitionf("Route table is frozen; cannot add '%s %s'", method, c.Template().Pattern())
	}

	method = strings.ToUpper(method)
	pattern := c.Template().Pattern()

	e, ok := t.entries[pattern]
	if !ok {
		e = &entry{template: c.Template(), methods: make(map[string]*Contract)}
		t.entries[pattern] = e
		t.order = append(t.order, pattern)
	}

	if _, dup := e.methods[method]; dup {
		return errors.Definitionf("Duplicate route definition for '%s %s'", method, pattern)
	}

	e.methods[method] = c
	return nil
}

// Freeze marks the table read-only. Serving must not begin before Freeze.
func (t *Table) Freeze() { t.frozen = true }

// Len returns the number of registered patterns.
func (t *Table) Len() int { return len(t.order) }

// Patterns returns the registered patterns in registration order.
func (t *Table) Patterns() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lookup resolves a request. Patterns are tried in registration order and
// the first full match wins. A path with no matching pattern yields
// NotFound; a matching pattern without the method yields MethodNotAllowed.
func (t *Table) Lookup(method, path string) (*Contract, map[string]string, error) {
	method = strings.ToUpper(method)

	for _, pattern := range t.order {
		e := t.entries[pattern]
		params, ok := e.template.Match(path)
		if !ok {
			continue
		}

		c, ok := e.methods[method]
		if !ok {
			return nil, nil, errors.MethodNotAllowed()
		}
		return c, params, nil
	}

	return nil, nil, errors.NotFound()
}
