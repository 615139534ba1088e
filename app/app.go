// Package app assembles the route table, the request dispatcher and the
// transport adapter into a runnable application.
package app

import (
	stdcontext "context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/serene-web/serene/codec"
	"github.com/serene-web/serene/config"
	"github.com/serene-web/serene/middleware"
	"github.com/serene-web/serene/router"
	"github.com/serene-web/serene/validation"
)

// ShutdownHook is a function that gets called during shutdown.
type ShutdownHook func(ctx stdcontext.Context) error

// App owns the route table and dispatches requests against it. Routes are
// registered before Run; the table freezes when serving starts.
type App struct {
	e      *echo.Echo
	cfg    *config.Config
	logger *zap.Logger
	parser codec.Parser
	bodies *validation.BodyValidator

	table *router.Table
	serve sync.Once

	shutdownHooks   []ShutdownHook
	shutdownTimeout time.Duration
	mu              sync.Mutex
}

// Option defines a functional option for App.
type Option func(*App) error

// NewApp creates a new application instance with the given options.
func NewApp(opts ...Option) (*App, error) {
	app := &App{
		e:               echo.New(),
		cfg:             config.DefaultConfig(),
		logger:          zap.NewNop(),
		parser:          codec.NewDefaultParser(),
		table:           router.NewTable(),
		shutdownTimeout: 30 * time.Second,
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	app.setupEcho()
	return app, nil
}

// WithConfig sets the application configuration.
func WithConfig(cfg *config.Config) Option {
	return func(app *App) error {
		if cfg == nil {
			return fmt.Errorf("config cannot be nil")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		app.cfg = cfg
		return nil
	}
}

// WithLogger sets the application logger.
func WithLogger(logger *zap.Logger) Option {
	return func(app *App) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

// WithParser replaces the built-in argument parser.
func WithParser(p codec.Parser) Option {
	return func(app *App) error {
		if p == nil {
			return fmt.Errorf("parser cannot be nil")
		}
		app.parser = p
		return nil
	}
}

// WithBodyValidation enables decoding and validating request bodies
// against each route's consumes prototype.
func WithBodyValidation() Option {
	return func(app *App) error {
		app.bodies = validation.New()
		return nil
	}
}

// WithShutdownTimeout sets the shutdown timeout duration.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(app *App) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive")
		}
		app.shutdownTimeout = timeout
		return nil
	}
}

// setupEcho configures the transport adapter: middleware per configuration
// and the catch-all that feeds every request into the dispatcher.
func (app *App) setupEcho() {
	app.e.HideBanner = true
	app.e.HidePort = true

	if app.cfg.Server.Recovery {
		app.e.Use(echomw.Recover())
	}

	app.e.Use(middleware.RequestID())
	app.e.Use(middleware.AccessLog(app.logger))

	if app.cfg.Server.RateLimit > 0 {
		app.e.Use(middleware.RateLimit(app.cfg.Server.RateLimit, app.cfg.Server.RateBurst))
	}

	app.e.Any("/", app.serveHTTP)
	app.e.Any("/*", app.serveHTTP)
}

// serveHTTP translates an echo request into a dispatch and writes the
// resulting status and JSON body.
func (app *App) serveHTTP(c echo.Context) error {
	req := c.Request()

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		if err != nil {
			return err
		}
	}

	status, payload := app.Handle(req.Context(), req.Method, req.URL.Path, req.URL.Query(), body)
	return c.JSONBlob(status, payload)
}

// Echo returns the underlying echo instance.
func (app *App) Echo() *echo.Echo {
	return app.e
}

// Config returns the application configuration.
func (app *App) Config() *config.Config {
	return app.cfg
}

// Run freezes the route table and starts the HTTP server.
func (app *App) Run() error {
	app.freeze()

	address := app.cfg.Server.Address
	if address == "" {
		address = ":8080"
	}

	app.logger.Info("Starting server",
		zap.String("address", address),
		zap.Int("routes", app.table.Len()))

	app.e.Server.ReadTimeout = app.cfg.Server.ReadTimeout
	app.e.Server.WriteTimeout = app.cfg.Server.WriteTimeout
	app.e.Server.IdleTimeout = app.cfg.Server.IdleTimeout

	err := app.e.Start(address)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// freeze marks the route table read-only. Called once, before serving.
func (app *App) freeze() {
	app.serve.Do(func() {
		app.table.Freeze()
	})
}

// RegisterShutdownHook registers a function to be called during shutdown.
func (app *App) RegisterShutdownHook(hook ShutdownHook) {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.shutdownHooks = append(app.shutdownHooks, hook)
}

// OnShutdown is a convenience method for registering shutdown hooks.
func (app *App) OnShutdown(fn func(stdcontext.Context) error) {
	app.RegisterShutdownHook(ShutdownHook(fn))
}

// Shutdown gracefully shuts down the server.
func (app *App) Shutdown(ctx stdcontext.Context) error {
	app.logger.Info("Starting graceful shutdown")

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel stdcontext.CancelFunc
		ctx, cancel = stdcontext.WithTimeout(ctx, app.shutdownTimeout)
		defer cancel()
	}

	var shutdownErr error
	if err := app.runShutdownHooks(ctx); err != nil {
		app.logger.Error("Error running shutdown hooks", zap.Error(err))
		shutdownErr = err
	}

	if err := app.e.Shutdown(ctx); err != nil {
		app.logger.Error("Error shutting down HTTP server", zap.Error(err))
		return err
	}

	app.logger.Info("Graceful shutdown completed")
	return shutdownErr
}

// runShutdownHooks executes all registered shutdown hooks in parallel.
func (app *App) runShutdownHooks(ctx stdcontext.Context) error {
	app.mu.Lock()
	hooks := make([]ShutdownHook, len(app.shutdownHooks))
	copy(hooks, app.shutdownHooks)
	app.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(hooks))

	for i, hook := range hooks {
		wg.Add(1)
		go func(idx int, h ShutdownHook) {
			defer wg.Done()
			if err := h(ctx); err != nil {
				errChan <- fmt.Errorf("shutdown hook %d failed: %w", idx, err)
			}
		}(i, hook)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("shutdown hooks timed out: %w", ctx.Err())
	}

	close(errChan)

	var errs []error
	for err := range errChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("shutdown hooks failed: %v", errs)
	}
	return nil
}
