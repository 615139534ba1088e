package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-web/serene/errors"
)

type account struct {
	Name    string
	balance int
}

func (a account) AsJSON() any {
	return map[string]any{"name": a.Name, "balance": a.balance}
}

func TestEncodePlainValues(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"map", map[string]string{"a": "b"}, `{"a":"b"}`},
		{"string", "hello", `"hello"`},
		{"number", 42, `42`},
		{"nil", nil, `null`},
		{"slice", []int{1, 2}, `[1,2]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := Encode(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(body))
		})
	}
}

func TestEncodeUsesJSONerHook(t *testing.T) {
	body, err := Encode(account{Name: "ada", balance: 7})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","balance":7}`, string(body))
}

func TestEncodeFailureIsServerError(t *testing.T) {
	_, err := Encode(func() {}) // functions are not representable in JSON
	require.Error(t, err)

	e := errors.From(err)
	assert.Equal(t, errors.KindServer, e.Kind())
	assert.False(t, e.IsClient())
	assert.NotContains(t, e.Message(), "func", "type name must not leak")
}

func TestWrap(t *testing.T) {
	obj, _ := json.Marshal(map[string]int{"n": 1})
	assert.Equal(t, string(obj), string(Wrap(obj, "result")))

	scalar := []byte(`42`)
	assert.JSONEq(t, `{"result":42}`, string(Wrap(scalar, "result")))

	list := []byte(`[1,2]`)
	assert.JSONEq(t, `{"result":[1,2]}`, string(Wrap(list, "result")))

	// Empty key disables wrapping.
	assert.Equal(t, `42`, string(Wrap(scalar, "")))
}

func TestEnvelope(t *testing.T) {
	body := Envelope("error", "Missing required query argument 'q'")
	assert.JSONEq(t, `{"error":"Missing required query argument 'q'"}`, string(body))

	body = Envelope("detail", "nope")
	assert.JSONEq(t, `{"detail":"nope"}`, string(body))
}
