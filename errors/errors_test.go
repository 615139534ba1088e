package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		expected string
	}{
		{"Server", KindServer, "server"},
		{"Definition", KindDefinition, "definition"},
		{"BadRequest", KindBadRequest, "bad_request"},
		{"NotFound", KindNotFound, "not_found"},
		{"MethodNotAllowed", KindMethodNotAllowed, "method_not_allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestDefaultStatuses(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, BadRequestf("x").Status())
	assert.Equal(t, http.StatusNotFound, NotFound().Status())
	assert.Equal(t, http.StatusMethodNotAllowed, MethodNotAllowed().Status())
	assert.Equal(t, http.StatusInternalServerError, Internalf("x").Status())
	assert.Equal(t, http.StatusInternalServerError, Definitionf("x").Status())
}

func TestWithStatus(t *testing.T) {
	err := BadRequestf("expired").WithStatus(http.StatusGone)
	assert.Equal(t, http.StatusGone, err.Status())
	assert.True(t, err.IsClient())
}

func TestIsClient(t *testing.T) {
	assert.True(t, BadRequestf("x").IsClient())
	assert.True(t, NotFound().IsClient())
	assert.True(t, MethodNotAllowed().IsClient())
	assert.False(t, Internalf("x").IsClient())
	assert.False(t, Definitionf("x").IsClient())
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := fmt.Errorf("boom")
	err := Internalf("handler failed").Wrap(cause)

	assert.Equal(t, "handler failed: boom", err.Error())
	assert.Equal(t, "handler failed", err.Message())
	assert.Equal(t, cause, err.Unwrap())
}

func TestFromPassesThroughTypedErrors(t *testing.T) {
	orig := BadRequestf("bad value")
	got := From(fmt.Errorf("outer: %w", orig))
	assert.Same(t, orig, got)
}

func TestFromClassifiesUnknownAsServer(t *testing.T) {
	got := From(fmt.Errorf("database exploded"))
	require.NotNil(t, got)
	assert.Equal(t, KindServer, got.Kind())
	assert.False(t, got.IsClient())
	// The original cause stays reachable for logging.
	assert.Contains(t, got.Error(), "database exploded")
}

func TestIsDefinition(t *testing.T) {
	assert.True(t, IsDefinition(Definitionf("dup route")))
	assert.True(t, IsDefinition(fmt.Errorf("wrap: %w", Definitionf("dup"))))
	assert.False(t, IsDefinition(BadRequestf("x")))
	assert.False(t, IsDefinition(fmt.Errorf("plain")))
}
