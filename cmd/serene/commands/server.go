package commands

import (
	stdcontext "context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serene-web/serene/app"
	"github.com/serene-web/serene/codec"
	"github.com/serene-web/serene/config"
	"github.com/serene-web/serene/context"
	"github.com/serene-web/serene/errors"
	"github.com/serene-web/serene/router"
)

func newServerCmd() *cobra.Command {
	var configPath string
	var address string

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the demo API server",
		Long:  "Run a server exposing the demo routes, configured from file, environment and flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath, address)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "config file path")
	cmd.Flags().StringVarP(&address, "address", "a", "", "listen address, overrides config")

	return cmd
}

func runServer(configPath, address string) error {
	cfg := config.DefaultConfig()
	loader := config.NewBofryLoader().
		WithYAMLFile(configPath).
		WithDotEnvFile(".env").
		WithEnvPrefix("SERENE_")
	if err := loader.Load(cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if address != "" {
		cfg.Server.Address = address
	}

	logger, err := cfg.Logger.BuildLogger()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.NewApp(
		app.WithConfig(cfg),
		app.WithLogger(logger),
		app.WithBodyValidation(),
	)
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}

	if err := registerRoutes(a); err != nil {
		return fmt.Errorf("failed to register routes: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := stdcontext.WithTimeout(stdcontext.Background(), 30*time.Second)
	defer cancel()
	return a.Shutdown(ctx)
}

type newGreeting struct {
	Name string `json:"name" validate:"required,min=1"`
}

// registerRoutes wires the demo API. It doubles as a smoke test of the
// registration surface: path captures, typed query arguments, defaults,
// a prefixed service and a validated request body.
func registerRoutes(a *app.App) error {
	if err := a.GET("/healthz", func(c *context.Context) (any, error) {
		return map[string]string{"status": "ok"}, nil
	}); err != nil {
		return err
	}

	greetings := a.Service("/greetings")

	if err := greetings.GET("/:name", func(c *context.Context) (any, error) {
		greeting := map[string]any{"hello": c.ArgString("name")}
		if c.ArgBool("shout") {
			greeting["volume"] = "loud"
		}
		return greeting, nil
	}, app.WithArgs(
		router.Required("name", ""),
		router.Optional("shout", codec.Bool, false),
	)); err != nil {
		return err
	}

	return greetings.POST("", func(c *context.Context) (any, error) {
		g, ok := c.Resource().(*newGreeting)
		if !ok {
			return nil, errors.BadRequestf("Request body is required")
		}
		return map[string]string{"created": g.Name}, nil
	}, app.Consumes(newGreeting{}))
}
