// Package state provides thread-safe state management for acpanel.
//
// # Overview
//
// This package holds the panel's copy of Home Assistant's entity states and
// registries. The websocket reader feeds it and the UI reads snapshots from
// it. Nothing in the panel ever writes entity state; the Store only mirrors
// what Home Assistant reports.
//
// # Architecture
//
//	Producer (websocket):           Consumer (UI):
//	┌────────────────────┐         ┌────────────────────┐
//	│ get_states + lists │         │                    │
//	│   store.Load()     │         │                    │
//	│ state_changed      │────────→│ store.Snapshot()   │
//	│   store.Apply()    │ (mutex) │   render views     │
//	│ disconnect         │         │                    │
//	│   store.Fail()     │         │                    │
//	└────────────────────┘         └────────────────────┘
//
// # Core Types
//
// Store:
//   - Mutex-guarded container for states, devices, and entity registry
//   - Version counter bumped on every state change
//
// Snapshot:
//   - Point-in-time view handed to the UI
//   - States map is shared between snapshots of the same Version and must
//     not be mutated
//
// # Update Semantics
//
// Load replaces everything after a (re)connect. Apply merges one
// state_changed event. An event whose last_updated is older than the stored
// state is dropped, so the newest value wins regardless of delivery order:
//
//	store.Apply(change) // last_updated 12:00:05 -> stored
//	store.Apply(change) // last_updated 12:00:03 -> ignored
//
// Fail records a connection error and keeps the previous data so views keep
// showing the last known values.
//
// # Versioning
//
// Snapshot.Version is the identity of the entity snapshot. The derive
// package compares versions instead of maps when deciding whether derived
// values need recomputation. Snapshot copies the state map at most once per
// version; repeated calls between writes return the same map.
//
// # Testing Considerations
//
// The zero Store is ready to use:
//
//	store := &state.Store{}
//	snap := store.Snapshot() // empty, Loaded == false
package state
