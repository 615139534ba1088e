// Package router provides the route-definition core: colon-style path
// templates compiled into matchable patterns, the argument contract derived
// from a route's declared parameters, and the method-keyed route table
// consulted on every dispatch.
package router

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/serene-web/serene/errors"
)

// paramPattern finds :name placeholders. A name is any run of characters
// excluding '/', '?' and ':'.
var paramPattern = regexp.MustCompile(`:([^/\?:]*)`)

// Template is a compiled path template. Its normalized pattern string is
// deterministic for identical input fragments and serves as the route
// table key.
type Template struct {
	pattern  string
	re       *regexp.Regexp
	captures []string
}

// Normalize joins the path fragments with '/', trims leading and trailing
// slashes, and appends the optional-trailing-slash allowance. The result is
// the raw pattern text before placeholder rewriting.
func Normalize(fragments ...string) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.Trim(f, "/")
		if f == "" {
			continue
		}
		parts = append(parts, f)
	}
	return "/" + strings.Join(parts, "/") + "/?"
}

// Compile turns path fragments into a matchable Template. Every :name
// placeholder becomes a named capture matching any run of characters
// excluding '/' and '?'. Malformed templates (empty or duplicate capture
// names) are definition errors.
func Compile(fragments ...string) (*Template, error) {
	pattern := Normalize(fragments...)

	rewritten := pattern
	for _, m := range paramPattern.FindAllStringSubmatch(pattern, -1) {
		name := m[1]
		if name == "" {
			return nil, errors.Definitionf("Unnamed path argument in '%s'", pattern)
		}
		rewritten = strings.Replace(
			rewritten,
			":"+name,
			fmt.Sprintf(`(?P<%s>[^/\?]*)`, name),
			1,
		)
	}

	re, err := regexp.Compile("^" + rewritten + "$")
	if err != nil {
		return nil, errors.Definitionf("Invalid path template '%s'", pattern).Wrap(err)
	}

	var captures []string
	for _, name := range re.SubexpNames() {
		if name != "" {
			captures = append(captures, name)
		}
	}

	return &Template{pattern: pattern, re: re, captures: captures}, nil
}

// MustCompile is Compile for templates known to be well formed. It panics
// on error and is intended for static route definitions in tests.
func MustCompile(fragments ...string) *Template {
	t, err := Compile(fragments...)
	if err != nil {
		panic(err)
	}
	return t
}

// Pattern returns the normalized pattern string.
func (t *Template) Pattern() string { return t.pattern }

// Captures returns the capture names in template order.
func (t *Template) Captures() []string { return t.captures }

// Match matches a request path against the template. On success it returns
// the named captures; ok is false when the path does not match.
func (t *Template) Match(path string) (map[string]string, bool) {
	m := t.re.FindStringSubmatch(path)
	if m == nil {
		return nil, false
	}

	params := make(map[string]string, len(t.captures))
	for i, name := range t.re.SubexpNames() {
		if name != "" {
			params[name] = m[i]
		}
	}
	return params, true
}
