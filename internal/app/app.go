package app

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/acpanel/internal/config"
	"github.com/five82/acpanel/internal/prefs"
	"github.com/five82/acpanel/internal/state"
	"github.com/five82/acpanel/internal/ui"
)

// Options configure the acpanel TUI.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/acpanel/prefs.toml
	Route      string // initial panel route, e.g. /<printer-id>/local-files
	RetryEvery int    // seconds between reconnect attempts before backoff; zero uses default
}

// Run boots the acpanel TUI until the context is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	store := &state.Store{}
	session := &Session{}

	interval := defaultRetryInterval
	if opts.RetryEvery > 0 {
		interval = time.Duration(opts.RetryEvery) * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start background sync
	StartSync(ctx, store, session, DialHass(cfg), interval)

	uiOpts := ui.Options{
		Context:   ctx,
		Caller:    session,
		Store:     store,
		Config:    &cfg,
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		Route:     opts.Route,
	}
	return ui.Run(uiOpts)
}

// Connect dials Home Assistant once and loads a snapshot into a new store.
// Live updates keep flowing into the store until the returned Conn is
// closed. Used by the one-shot CLI commands.
func Connect(ctx context.Context, cfg config.Config) (Conn, *state.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	conn, err := DialHass(cfg)(ctx)
	if err != nil {
		return nil, nil, err
	}
	store := &state.Store{}
	if err := load(ctx, store, conn); err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, store, nil
}
