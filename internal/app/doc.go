// Package app provides the orchestration layer for the acpanel application.
//
// # Overview
//
// This package wires together configuration, the Home Assistant connection,
// state management, and the UI. It is the composition root where all
// dependencies are initialized and connected.
//
// # Architecture
//
//  1. Load acpanel configuration from ~/.config/acpanel/config.toml
//  2. Load display preferences
//  3. Create the shared state.Store and a Session for service calls
//  4. Launch the background sync goroutine
//  5. Start the TUI and block until the user exits or the context cancels
//
// # Components
//
//   - app.go: Run for the TUI, Connect for one-shot CLI commands
//   - sync.go: Background connection loop with reconnect backoff
//   - session.go: Service calls routed to whichever connection is live
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()   Read acpanel config
//	       ├─────> prefs.Load()    Read display preferences
//	       ├─────> state.Store{}   Shared state container
//	       ├─────> StartSync()     Launch background sync
//	       └─────> ui.Run()        Start TUI (blocks)
//
//	Background Sync Loop:
//	┌─────────────────────────────────────────┐
//	│ StartSync() goroutine                   │
//	│  ├─> hass.Dial() + auth                 │
//	│  ├─> subscribe_events(state_changed)    │
//	│  ├─> get_states + registries (parallel) │
//	│  ├─> store.Load(), replay early events  │
//	│  ├─> store.Apply() per event            │
//	│  └─> on drop: store.Fail(), backoff     │
//	└─────────────────────────────────────────┘
//
// # Reconnect Behavior
//
// After a dropped connection the loop waits 2s, doubling per consecutive
// failure up to 30s. A successful load resets the count. A rejected token
// stops the loop; retrying cannot fix it.
//
// While disconnected, Session.CallService returns ErrNotConnected, which
// the views show next to the control that triggered the call.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Configuration file invalid
//   - No access token configured
//
// Recoverable errors (logged, sync continues):
//   - Home Assistant unreachable
//   - Connection dropped
//   - Initial fetch failures
//
// # Usage Example
//
//	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer cancel()
//
//	if err := app.Run(ctx, app.Options{Route: "/01ab23cd/main"}); err != nil {
//		log.Fatalf("acpanel failed: %v", err)
//	}
package app
