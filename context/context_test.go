package context

import (
	stdcontext "context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryAccess(t *testing.T) {
	q := url.Values{"active": {"true"}, "tags": {"a", "b"}}
	c := New(stdcontext.Background(), "GET", "/users/42", q, nil)

	v, ok := c.Query("active")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	// Multi-valued params expose the first value, like the raw transport.
	v, ok = c.Query("tags")
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	_, ok = c.Query("missing")
	assert.False(t, ok)
}

func TestNilQueryIsSafe(t *testing.T) {
	c := New(nil, "GET", "/", nil, nil)
	_, ok := c.Query("anything")
	assert.False(t, ok)
	assert.NotNil(t, c.Context())
}

func TestParamsAndArgs(t *testing.T) {
	c := New(stdcontext.Background(), "GET", "/users/42", nil, nil)
	c.SetParams(map[string]string{"id": "42"})

	assert.Equal(t, "42", c.Param("id"))
	assert.ElementsMatch(t, []string{"id"}, c.ParamNames())

	c.SetArg("id", "42")
	c.SetArg("active", true)
	c.SetArg("page", 3)
	c.SetArg("score", 1.5)

	assert.Equal(t, "42", c.ArgString("id"))
	assert.True(t, c.ArgBool("active"))
	assert.Equal(t, 3, c.ArgInt("page"))
	assert.Equal(t, 1.5, c.ArgFloat("score"))

	v, ok := c.Arg("active")
	assert.True(t, ok)
	assert.Equal(t, true, v)

	_, ok = c.Arg("missing")
	assert.False(t, ok)
	assert.Equal(t, "", c.ArgString("missing"))
	assert.Equal(t, 0, c.ArgInt("missing"))
}

func TestTypedAccessorsIgnoreWrongTypes(t *testing.T) {
	c := New(stdcontext.Background(), "GET", "/", nil, nil)
	c.SetArg("n", "not-an-int")
	assert.Equal(t, 0, c.ArgInt("n"))
	assert.Equal(t, "not-an-int", c.ArgString("n"))
}

func TestBind(t *testing.T) {
	body := []byte(`{"name":"widget","count":2}`)
	c := New(stdcontext.Background(), "POST", "/items", nil, body)

	var payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, c.Bind(&payload))
	assert.Equal(t, "widget", payload.Name)
	assert.Equal(t, 2, payload.Count)
}

func TestRequestScopedValues(t *testing.T) {
	c := New(stdcontext.Background(), "GET", "/", nil, nil)
	assert.Nil(t, c.Get("request_id"))
	c.Set("request_id", "abc-123")
	assert.Equal(t, "abc-123", c.Get("request_id"))
}
