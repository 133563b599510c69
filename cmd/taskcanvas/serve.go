package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/metalagman/taskcanvas/internal/config"
	"github.com/metalagman/taskcanvas/internal/logging"
	"github.com/metalagman/taskcanvas/internal/web"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

const shutdownTimeout = 15 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the planner HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			app := fx.New(serveOptions(cfg))
			startCtx, cancel := context.WithTimeout(cmd.Context(), app.StartTimeout())
			defer cancel()
			if err := app.Start(startCtx); err != nil {
				return fmt.Errorf("start server: %w", err)
			}

			select {
			case sig := <-app.Done():
				log.Info().Str("signal", sig.String()).Msg("shutting down")
			case <-cmd.Context().Done():
				log.Info().Msg("shutting down")
			}
			stopCtx, stopCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer stopCancel()
			return app.Stop(stopCtx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

// serveOptions wires the planner, the API server and the listener for cfg.
func serveOptions(cfg config.Config) fx.Option {
	return fx.Options(
		fx.WithLogger(func() fxevent.Logger {
			return &fxLogger{log: logging.Component("fx")}
		}),
		fx.Supply(cfg),
		fx.Provide(
			provideApp,
			provideAPI,
			provideListener,
		),
		fx.Invoke(registerHTTP),
	)
}

func provideApp(lc fx.Lifecycle, cfg config.Config) (*app, error) {
	a, err := openApp(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			a.Close()
			return nil
		},
	})
	return a, nil
}

func provideAPI(a *app) *web.Server {
	return web.NewServer(a.store, a.docs)
}

func provideListener(cfg config.Config) (net.Listener, error) {
	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	return ln, nil
}

func registerHTTP(lc fx.Lifecycle, ln net.Listener, api *web.Server) {
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			log.Info().Str("addr", ln.Addr().String()).Msg("serving planner API")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("http server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// fxLogger reports container events through zerolog.
type fxLogger struct {
	log zerolog.Logger
}

func (l *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("start hook failed")
			return
		}
		l.log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("start hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Str("callee", e.FunctionName).Msg("stop hook failed")
			return
		}
		l.log.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("stop hook executed")
	case *fxevent.Provided:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Str("constructor", e.ConstructorName).Msg("provide failed")
		}
	case *fxevent.Invoked:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Str("function", e.FunctionName).Msg("invoke failed")
		}
	case *fxevent.RollingBack:
		l.log.Error().Err(e.StartErr).Msg("start failed, rolling back")
	case *fxevent.Started:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Msg("start failed")
			return
		}
		l.log.Debug().Msg("started")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.log.Error().Err(e.Err).Msg("stop failed")
		}
	}
}
