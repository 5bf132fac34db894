package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/acpanel/internal/config"
	"github.com/five82/acpanel/internal/hass"
	"github.com/five82/acpanel/internal/state"
)

const (
	defaultRetryInterval = 2 * time.Second
	maxBackoff           = 30 * time.Second
	dialTimeout          = 15 * time.Second
)

// Conn is a live Home Assistant connection.
type Conn interface {
	hass.Host
	Done() <-chan struct{}
	Err() error
	Close() error
}

// DialFunc opens a new connection.
type DialFunc func(ctx context.Context) (Conn, error)

// DialHass returns a DialFunc for the configured instance.
func DialHass(cfg config.Config) DialFunc {
	return func(ctx context.Context) (Conn, error) {
		dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		client, err := hass.Dial(dialCtx, cfg.URL, cfg.Token)
		if err != nil {
			return nil, err
		}
		log.Printf("connected to Home Assistant %s", client.HAVersion)
		if err := hass.CheckVersion(client.HAVersion); err != nil {
			log.Printf("WARN %v; some commands may fail", err)
		}
		return client, nil
	}
}

// StartSync launches a background goroutine that keeps store mirrored from
// Home Assistant, reconnecting with backoff until ctx is cancelled or the
// token is rejected. It returns immediately.
func StartSync(ctx context.Context, store *state.Store, session *Session, dial DialFunc, interval time.Duration) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}
	go runSync(ctx, store, session, dial, interval)
}

func runSync(ctx context.Context, store *state.Store, session *Session, dial DialFunc, interval time.Duration) {
	failures := 0
	for {
		err := syncOnce(ctx, store, session, dial, func() { failures = 0 })
		if ctx.Err() != nil {
			return
		}
		store.Fail(err)
		if errors.Is(err, hass.ErrAuthInvalid) {
			log.Printf("home assistant sync stopped: %v", err)
			return
		}

		wait := calculateBackoff(failures, interval)
		failures++
		log.Printf("home assistant connection lost (%v), reconnecting in %s", err, wait)
		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// syncOnce connects, loads, and blocks until the connection ends.
func syncOnce(ctx context.Context, store *state.Store, session *Session, dial DialFunc, onLoaded func()) error {
	conn, err := dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := load(ctx, store, conn); err != nil {
		return err
	}
	onLoaded()

	session.set(conn)
	defer session.set(nil)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-conn.Done():
		if err := conn.Err(); err != nil {
			return err
		}
		return hass.ErrClosed
	}
}

// load subscribes to state changes and fetches the initial snapshot. Events
// that arrive during the fetch are replayed after it, so none are lost and
// none are overwritten by the older fetch.
func load(ctx context.Context, store *state.Store, host hass.Host) error {
	var (
		mu      sync.Mutex
		pending []hass.StateChange
		loaded  bool
	)
	err := host.SubscribeStateChanged(ctx, func(change hass.StateChange) {
		mu.Lock()
		if !loaded {
			pending = append(pending, change)
			mu.Unlock()
			return
		}
		mu.Unlock()
		store.Apply(change)
	})
	if err != nil {
		return err
	}

	var (
		states   []hass.EntityState
		devices  []hass.Device
		entities []hass.EntityEntry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		states, err = host.FetchStates(gctx)
		return err
	})
	g.Go(func() (err error) {
		devices, err = host.FetchDevices(gctx)
		return err
	})
	g.Go(func() (err error) {
		entities, err = host.FetchEntityRegistry(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("initial fetch: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	store.Load(states, devices, entities)
	for _, change := range pending {
		store.Apply(change)
	}
	loaded = true
	return nil
}

// calculateBackoff doubles interval per consecutive failure, capped at
// maxBackoff.
func calculateBackoff(failures int, interval time.Duration) time.Duration {
	if failures <= 0 {
		return interval
	}
	backoff := interval
	for i := 0; i < failures; i++ {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}
