package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"opsdeck.io/internal/config"
	"opsdeck.io/internal/entity"
	"opsdeck.io/internal/gateway"
	"opsdeck.io/internal/notify"
	"opsdeck.io/internal/obs"
	"opsdeck.io/internal/session"
)

// app is the wired console: one gateway, one session, one store registry.
type app struct {
	cfg      config.Config
	state    *session.SQLiteStore
	session  *session.Session
	bus      *notify.Bus
	registry *entity.Registry

	stopToasts context.CancelFunc
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".opsdeck", "config.yaml")
}

func newApp(ctx context.Context) (*app, error) {
	obs.Init()

	path := cfgFile
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	obs.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	})))

	state, err := session.OpenSQLite(ctx, cfg.State.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	sess := session.New(ctx, state, session.NopApplier{})
	bus := notify.New()

	opts := []gateway.Option{
		gateway.WithAuthExpiredHook(sess.ForceExpire),
		gateway.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
	}
	if cfg.API.RatePerSecond > 0 {
		opts = append(opts, gateway.WithRateLimit(cfg.API.RatePerSecond, cfg.API.RateBurst))
	}
	gw := gateway.New(cfg.API.BaseURL, sess, bus, opts...)
	sess.AttachGateway(gw)

	a := &app{
		cfg:      cfg,
		state:    state,
		session:  sess,
		bus:      bus,
		registry: entity.NewRegistry(gw),
	}
	a.startToastPrinter()
	return a, nil
}

// startToastPrinter mirrors transient notifications onto stderr so command
// output on stdout stays parseable.
func (a *app) startToastPrinter() {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopToasts = cancel
	ch := a.bus.Subscribe(ctx)
	go func() {
		for n := range ch {
			fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Level, n.Message)
		}
	}()
}

func (a *app) Close() error {
	if a.stopToasts != nil {
		a.stopToasts()
	}
	return a.state.Close()
}

// requireAuth gates commands that need a live session.
func (a *app) requireAuth() error {
	if a.session.State() != session.StateAuthenticated {
		return fmt.Errorf("not logged in; run: opsdeck login <email>")
	}
	return nil
}
