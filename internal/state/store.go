package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/acpanel/internal/hass"
)

// Snapshot represents the latest data available to the UI. States is shared
// between snapshots and must be treated as read-only.
type Snapshot struct {
	States   hass.States
	Devices  []hass.Device
	Entities []hass.EntityEntry

	// Version increases whenever States changes. Views use it as the
	// identity of the entity snapshot when deciding what to recompute.
	Version uint64

	Loaded              bool // initial fetch completed at least once
	Connected           bool
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive connection failures
}

// IsOffline returns true when Home Assistant has been unreachable for
// multiple attempts.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot. The websocket reader
// writes; the UI reads.
type Store struct {
	mu       sync.Mutex
	states   hass.States
	devices  []hass.Device
	entities []hass.EntityEntry
	version  uint64

	loaded      bool
	connected   bool
	lastUpdated time.Time
	lastError   error
	failures    int

	// published is handed out by Snapshot until the next write.
	published        hass.States
	publishedVersion uint64
}

// Load replaces everything with a fresh fetch.
func (s *Store) Load(states []hass.EntityState, devices []hass.Device, entities []hass.EntityEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(hass.States, len(states))
	for _, st := range states {
		next[st.EntityID] = st
	}
	s.states = next
	s.devices = cloneDevices(devices)
	s.entities = cloneEntities(entities)
	s.version++
	s.loaded = true
	s.connected = true
	s.lastError = nil
	s.failures = 0
	s.lastUpdated = time.Now()
}

// Apply merges a state_changed event. Updates older than the stored state
// are ignored so a late event never overwrites a newer value. It reports
// whether the store changed.
func (s *Store) Apply(change hass.StateChange) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.states == nil {
		s.states = make(hass.States)
	}
	current, exists := s.states[change.EntityID]

	if change.NewState == nil {
		if !exists {
			return false
		}
		delete(s.states, change.EntityID)
		s.bump()
		return true
	}

	next := *change.NewState
	if next.EntityID == "" {
		next.EntityID = change.EntityID
	}
	if exists && !next.LastUpdated.IsZero() && current.LastUpdated.After(next.LastUpdated) {
		return false
	}
	s.states[change.EntityID] = next
	s.bump()
	return true
}

// Fail records a connection failure. Previous data is kept so views keep
// rendering the last known values.
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.connected = false
	s.lastError = err
	s.lastUpdated = time.Now()
	s.failures++
}

// Snapshot returns the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.published == nil || s.publishedVersion != s.version {
		s.published = make(hass.States, len(s.states))
		for id, st := range s.states {
			s.published[id] = st
		}
		s.publishedVersion = s.version
	}

	snap := Snapshot{
		States:              s.published,
		Devices:             cloneDevices(s.devices),
		Entities:            cloneEntities(s.entities),
		Version:             s.version,
		Loaded:              s.loaded,
		Connected:           s.connected,
		LastUpdated:         s.lastUpdated,
		ConsecutiveFailures: s.failures,
	}
	if s.lastError != nil {
		snap.LastError = fmt.Errorf("%w", s.lastError)
	}
	return snap
}

func (s *Store) bump() {
	s.version++
	s.lastUpdated = time.Now()
}

func cloneDevices(items []hass.Device) []hass.Device {
	if len(items) == 0 {
		return nil
	}
	dup := make([]hass.Device, len(items))
	copy(dup, items)
	return dup
}

func cloneEntities(items []hass.EntityEntry) []hass.EntityEntry {
	if len(items) == 0 {
		return nil
	}
	dup := make([]hass.EntityEntry, len(items))
	copy(dup, items)
	return dup
}
