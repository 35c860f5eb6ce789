// Package app wires the gate server runtime: config, logging, metrics, and
// the broker's HTTP routes.
//
// All state lives in one Store constructed here and passed by reference
// into the handlers; there is no package-level mutable state, and the store
// is simply dropped at shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gate/cmd/internal/broker"
	"gate/cmd/internal/store"
	"gate/cmd/security/password"
)

// App is the gate server runtime.
type App struct {
	cfg Config
	log Logger

	store   *store.Store
	metrics *Metrics
	broker  *broker.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	pwCfg, err := password.FromEnv()
	if err != nil {
		return nil, err
	}

	st := store.New()
	b := broker.NewHandler(log, broker.LoadConfigFromEnv(), st, pwCfg)
	m := NewMetrics(st)

	return &App{
		cfg:     cfg,
		log:     log,
		store:   st,
		metrics: m,
		broker:  b,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.metrics, a.broker)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           WithRequestLogging(mux, a.log, a.metrics),
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
