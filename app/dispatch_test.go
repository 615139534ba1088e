package app

import (
	stdcontext "context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/serene-web/serene/codec"
	"github.com/serene-web/serene/config"
	"github.com/serene-web/serene/context"
	sereneerrors "github.com/serene-web/serene/errors"
	"github.com/serene-web/serene/router"
)

func newTestApp(t *testing.T, opts ...Option) *App {
	t.Helper()
	app, err := NewApp(opts...)
	require.NoError(t, err)
	return app
}

func handle(app *App, method, path string, query url.Values, body []byte) (int, map[string]any) {
	status, payload := app.Handle(stdcontext.Background(), method, path, query, body)
	var decoded map[string]any
	_ = json.Unmarshal(payload, &decoded)
	return status, decoded
}

func TestUserScenario(t *testing.T) {
	// Template /users/:id with handler (id, active: bool = true).
	app := newTestApp(t)
	require.NoError(t, app.GET("/users/:id", func(c *context.Context) (any, error) {
		return map[string]any{
			"id":     c.ArgString("id"),
			"active": c.ArgBool("active"),
		}, nil
	}, WithArgs(
		router.Required("id", ""),
		router.Optional("active", codec.Bool, true),
	)))

	status, body := handle(app, "GET", "/users/42", url.Values{"active": {"false"}}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "42", body["id"])
	assert.Equal(t, false, body["active"])

	// Omitting the optional argument applies the recorded default.
	status, body = handle(app, "GET", "/users/42", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["active"])
}

func TestCoercionFailureIs400(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/users/:id", func(c *context.Context) (any, error) {
		return nil, nil
	}, WithArgs(
		router.Required("id", ""),
		router.Optional("active", codec.Bool, true),
	)))

	status, body := handle(app, "GET", "/users/42", url.Values{"active": {"notabool"}}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "notabool")
}

func TestPathArgumentCoercion(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/users/:id", func(c *context.Context) (any, error) {
		return map[string]any{"next": c.ArgInt("id") + 1}, nil
	}, WithArgs(router.Required("id", codec.Int))))

	status, body := handle(app, "GET", "/users/41", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(42), body["next"])

	status, _ = handle(app, "GET", "/users/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestMissingRequiredQueryIs400(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/search", func(c *context.Context) (any, error) {
		return c.ArgString("q"), nil
	}, WithArgs(router.Required("q", codec.String))))

	status, body := handle(app, "GET", "/search", nil, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "q")

	status, _ = handle(app, "GET", "/search", url.Values{"q": {"hello"}}, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestUnregisteredPathIs404(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/users", func(c *context.Context) (any, error) {
		return nil, nil
	}))

	status, body := handle(app, "GET", "/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, body["error"])
}

func TestUnregisteredMethodIs405(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/users", func(c *context.Context) (any, error) {
		return nil, nil
	}))

	status, body := handle(app, "DELETE", "/users", nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)
	assert.NotEmpty(t, body["error"])
}

func TestMalformedBodyIs400BeforeInvocation(t *testing.T) {
	invoked := false
	app := newTestApp(t)
	require.NoError(t, app.POST("/items", func(c *context.Context) (any, error) {
		invoked = true
		return nil, nil
	}))

	status, body := handle(app, "POST", "/items", nil, []byte("{not json"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
	assert.False(t, invoked, "handler must not run on a malformed body")
}

func TestParsedBodyReachesHandler(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.POST("/items", func(c *context.Context) (any, error) {
		payload, _ := c.Body().(map[string]any)
		return payload["name"], nil
	}))

	status, payload := app.Handle(stdcontext.Background(), "POST", "/items", nil, []byte(`{"name":"widget"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"widget"`, string(payload))
}

func TestEmptyBodyIsNotParsed(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.POST("/items", func(c *context.Context) (any, error) {
		return c.Body() == nil, nil
	}))

	status, payload := app.Handle(stdcontext.Background(), "POST", "/items", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `true`, string(payload))
}

func TestHandlerErrorIsMasked(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	app := newTestApp(t, WithLogger(zap.New(core)))

	require.NoError(t, app.GET("/boom", func(c *context.Context) (any, error) {
		return nil, stderrors.New("database credentials rejected")
	}))

	status, body := handle(app, "GET", "/boom", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "An internal error occurred", body["error"])
	assert.NotContains(t, body["error"], "credentials")

	// The real cause lands in the log.
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].ContextMap()["error"], "credentials")
}

func TestHandlerPanicIsServerError(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/panic", func(c *context.Context) (any, error) {
		panic("boom")
	}))

	status, body := handle(app, "GET", "/panic", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "An internal error occurred", body["error"])
}

func TestUnserializableResultIs500WithoutTypeName(t *testing.T) {
	type opaque struct {
		Ch chan int `json:"ch"`
	}

	app := newTestApp(t)
	require.NoError(t, app.GET("/bad", func(c *context.Context) (any, error) {
		return opaque{Ch: make(chan int)}, nil
	}))

	status, payload := app.Handle(stdcontext.Background(), "GET", "/bad", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.NotContains(t, string(payload), "opaque")
	assert.NotContains(t, string(payload), "chan")

	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Equal(t, "An internal error occurred", body["error"])
}

func TestCustomErrorKeyAndPlainResultKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.ErrorKey = "detail"
	cfg.API.PlainResultKey = "result"

	app := newTestApp(t, WithConfig(cfg))
	require.NoError(t, app.GET("/n", func(c *context.Context) (any, error) {
		return 42, nil
	}))

	status, payload := app.Handle(stdcontext.Background(), "GET", "/n", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"result":42}`, string(payload))

	status, payload = app.Handle(stdcontext.Background(), "GET", "/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
	var body map[string]any
	require.NoError(t, json.Unmarshal(payload, &body))
	assert.Contains(t, body, "detail")
	assert.NotContains(t, body, "error")
}

func TestObjectResultsAreNotWrapped(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.API.PlainResultKey = "result"

	app := newTestApp(t, WithConfig(cfg))
	require.NoError(t, app.GET("/obj", func(c *context.Context) (any, error) {
		return map[string]int{"n": 1}, nil
	}))

	_, payload := app.Handle(stdcontext.Background(), "GET", "/obj", nil, nil)
	assert.JSONEq(t, `{"n":1}`, string(payload))
}

func TestAsyncHandlerDispatch(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/slow", router.AsyncHandler(func(c *context.Context) <-chan router.Result {
		ch := make(chan router.Result, 1)
		go func() {
			time.Sleep(5 * time.Millisecond)
			ch <- router.Result{Value: map[string]string{"done": "yes"}}
		}()
		return ch
	})))

	status, body := handle(app, "GET", "/slow", nil, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "yes", body["done"])
}

func TestAsyncHandlerCancellation(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/stuck", router.AsyncHandler(func(c *context.Context) <-chan router.Result {
		return make(chan router.Result)
	})))

	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 10*time.Millisecond)
	defer cancel()

	status, _ := app.Handle(ctx, "GET", "/stuck", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, status)
}

func TestClientErrorFromHandlerSurfacesVerbatim(t *testing.T) {
	app := newTestApp(t)
	require.NoError(t, app.GET("/gone", func(c *context.Context) (any, error) {
		return nil, sereneerrors.BadRequestf("resource moved elsewhere").WithStatus(http.StatusGone)
	}))

	status, body := handle(app, "GET", "/gone", nil, nil)
	assert.Equal(t, http.StatusGone, status)
	assert.Equal(t, "resource moved elsewhere", body["error"])
}

func TestBodyValidationAgainstConsumes(t *testing.T) {
	type newItem struct {
		Name string `json:"name" validate:"required,min=3"`
	}

	app := newTestApp(t, WithBodyValidation())
	require.NoError(t, app.POST("/items", func(c *context.Context) (any, error) {
		item := c.Resource().(*newItem)
		return map[string]string{"created": item.Name}, nil
	}, Consumes(newItem{})))

	status, body := handle(app, "POST", "/items", nil, []byte(`{"name":"widget"}`))
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "widget", body["created"])

	status, body = handle(app, "POST", "/items", nil, []byte(`{"name":"ab"}`))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])
}

func TestCustomParser(t *testing.T) {
	app := newTestApp(t, WithParser(doublingParser{}))
	require.NoError(t, app.GET("/n", func(c *context.Context) (any, error) {
		n, _ := c.Arg("n")
		return n, nil
	}, WithArgs(router.Required("n", codec.Int))))

	status, payload := app.Handle(stdcontext.Background(), "GET", "/n", url.Values{"n": {"21"}}, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `42`, string(payload))
}

// doublingParser doubles ints to prove the parser is pluggable.
type doublingParser struct{}

func (doublingParser) Parse(t codec.Type, raw string) (any, error) {
	v, err := codec.NewDefaultParser().Parse(t, raw)
	if err != nil {
		return nil, err
	}
	if n, ok := v.(int); ok {
		return n * 2, nil
	}
	return v, nil
}
