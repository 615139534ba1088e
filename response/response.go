// Package response serializes handler results and failures to their JSON
// wire form.
package response

import (
	"encoding/json"

	"github.com/serene-web/serene/errors"
)

// JSONer lets a handler return value control its own JSON conversion. The
// serializer calls AsJSON before marshalling.
type JSONer interface {
	AsJSON() any
}

// Encode serializes a handler return value. Values implementing JSONer are
// converted first. A value the wire format cannot represent yields a server
// error; the type name stays out of the response body.
func Encode(v any) ([]byte, error) {
	if j, ok := v.(JSONer); ok {
		v = j.AsJSON()
	}

	body, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Internalf("Could not serialize result to JSON").Wrap(err)
	}
	return body, nil
}

// Wrap puts a serialized non-object result under key, leaving objects
// untouched. An empty key disables wrapping. Used for the configured
// plain-result wrapper.
func Wrap(body []byte, key string) []byte {
	if key == "" || len(body) == 0 || body[0] == '{' {
		return body
	}

	wrapped, err := json.Marshal(map[string]json.RawMessage{key: body})
	if err != nil {
		return body
	}
	return wrapped
}

// Envelope builds the error envelope: a JSON object with exactly the
// configured error key and a message.
func Envelope(errorKey, message string) []byte {
	body, err := json.Marshal(map[string]string{errorKey: message})
	if err != nil {
		// Both inputs are plain strings; this cannot happen.
		return []byte(`{"error":"serialization failure"}`)
	}
	return body
}
