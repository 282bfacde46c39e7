package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	nestrpc "github.com/dexxiez/analog-nest-rpc"
	"github.com/dexxiez/analog-nest-rpc/internal/config"
	"github.com/dexxiez/analog-nest-rpc/internal/logging"
	httpAdapter "github.com/dexxiez/analog-nest-rpc/pkg/adapters/http"
	"github.com/dexxiez/analog-nest-rpc/pkg/adapters/memory"
	redisAdapter "github.com/dexxiez/analog-nest-rpc/pkg/adapters/redis"
	"github.com/dexxiez/analog-nest-rpc/pkg/domain"
	"github.com/dexxiez/analog-nest-rpc/pkg/environment"
	"github.com/dexxiez/analog-nest-rpc/pkg/observability"
	"github.com/dexxiez/analog-nest-rpc/pkg/registry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RPC server with the built-in diagnostic targets",
	Long:  `Starts the invocation pipeline behind an HTTP endpoint, exposing the built-in EchoService for smoke testing deployments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfgPath, _ := cmd.Flags().GetString("config")
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger := logging.New(level)

		var teardown []func(ctx context.Context) error
		appOpts := []nestrpc.Option{
			nestrpc.WithLogger(logger),
			nestrpc.WithShutdownRegistrar(func(hook func(ctx context.Context) error) {
				teardown = append(teardown, hook)
			}),
		}
		if cfg.Metrics {
			appOpts = append(appOpts, nestrpc.WithMetrics(
				observability.NewMetrics(prometheus.DefaultRegisterer)))
		}
		if cfg.Redis.Addr != "" {
			store := redisAdapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisAdapter.WithTTL(time.Duration(cfg.Redis.TTL)))
			appOpts = append(appOpts, nestrpc.WithReplayStore(store))
			teardown = append(teardown, store.Close)
		}

		app, err := nestrpc.New(buildDiagnosticEnvironment, appOpts...)
		if err != nil {
			return err
		}
		if err := app.Ready(cmd.Context()); err != nil {
			return err
		}

		handlerOpts := []httpAdapter.Option{
			httpAdapter.WithEndpoint(cfg.Endpoint),
			httpAdapter.WithLogger(logger),
		}
		if cfg.Metrics {
			handlerOpts = append(handlerOpts, httpAdapter.WithMetricsRoute())
		}

		srv := &http.Server{
			Addr:    cfg.Addr,
			Handler: httpAdapter.NewHandler(app, handlerOpts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting rpc server", "addr", srv.Addr, "endpoint", cfg.Endpoint)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "error", err)
				}
			}
			for _, hook := range teardown {
				if err := hook(ctx); err != nil {
					logger.Error("teardown hook failed", "error", err)
				}
			}
			logger.Info("server stopped")
		}
		return nil
	},
}

// buildDiagnosticEnvironment registers the built-in smoke-test target.
func buildDiagnosticEnvironment(ctx context.Context) (*environment.Environment, error) {
	reg := registry.New()
	err := reg.Register(&domain.TargetDescriptor{
		Name: "EchoService",
		Actions: map[string]*domain.ActionDescriptor{
			"echo": {
				Handler: func(ctx context.Context, receiver any, args []any) (any, error) {
					if len(args) == 0 {
						return nil, nil
					}
					return args[0], nil
				},
			},
			"ping": {
				Handler: func(ctx context.Context, receiver any, args []any) (any, error) {
					return "pong", nil
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	return environment.New(memory.NewContainer(), reg), nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
