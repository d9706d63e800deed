package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Server limits.
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20
	defaultShutdownTimeout   = 30 * time.Second
)

type hook = func(context.Context) error

// RunOption configures App.Run.
type RunOption func(*runConfig)

type runConfig struct {
	ctx             context.Context
	logger          *slog.Logger
	listener        net.Listener
	startup         []hook
	shutdown        []hook
	shutdownTimeout time.Duration
}

// Logger sets the logger for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the drain of open requests plus every shutdown
// hook. Defaults to 30s.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// StartupHook runs fn before the listener accepts connections. An error
// aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startup = append(c.startup, fn)
		}
	}
}

// ShutdownHook runs fn after the server stopped accepting requests. Hooks
// run in registration order and all of them run even when one fails.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdown = append(c.shutdown, fn)
		}
	}
}

// WithContext sets the parent context. Cancelling it shuts the server down
// like SIGTERM does.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// WithListener serves on ln instead of listening on the address.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) { c.listener = ln }
}

// Run serves the app on addr until SIGINT, SIGTERM or the WithContext
// context ends, then drains requests and runs the shutdown hooks. Job
// workers registered with WithJobs start first and stop first.
//
//	err := app.Run(":8080", mwm.Logger(log), mwm.ShutdownHook(db.Shutdown(pool)))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := &runConfig{
		ctx:             context.Background(),
		logger:          a.logger,
		shutdownTimeout: defaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if a.worker != nil {
		cfg.startup = append([]hook{a.worker.Start}, cfg.startup...)
		cfg.shutdown = append([]hook{a.worker.Stop}, cfg.shutdown...)
	}
	return serve(a.router, addr, cfg)
}

func serve(h http.Handler, addr string, cfg *runConfig) error {
	log := cfg.logger
	ctx, stop := signal.NotifyContext(cfg.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	for _, fn := range cfg.startup {
		if err := fn(ctx); err != nil {
			return fmt.Errorf("startup hook: %w", err)
		}
	}

	ln := cfg.listener
	if ln == nil {
		if addr == "" {
			addr = ":8080"
		}
		var err error
		if ln, err = net.Listen("tcp", addr); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		ErrorLog:          slog.NewLogLogger(log.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", slog.String("address", ln.Addr().String()))
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.shutdownTimeout)
		defer cancel()

		errs := []error{srv.Shutdown(sctx)}
		for _, fn := range cfg.shutdown {
			if err := fn(sctx); err != nil {
				log.Error("shutdown hook failed", slog.Any("error", err))
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})

	err := g.Wait()
	if err != nil {
		log.Error("server stopped with errors", slog.Any("error", err))
		return err
	}
	log.Info("server stopped")
	return nil
}
