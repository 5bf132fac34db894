package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/acpanel/internal/hass"
)

func TestStore_LoadAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.Load(
		[]hass.EntityState{{EntityID: "sensor.kobra_print_state", State: "printing"}},
		[]hass.Device{{ID: "dev1"}, {ID: "dev2"}},
		[]hass.EntityEntry{{EntityID: "sensor.kobra_print_state", DeviceID: "dev1"}},
	)

	snap := s.Snapshot()
	if !snap.Loaded || !snap.Connected {
		t.Fatalf("Loaded/Connected = %v/%v, want true/true", snap.Loaded, snap.Connected)
	}
	if st, ok := snap.States.Get("sensor.kobra_print_state"); !ok || st.State != "printing" {
		t.Fatalf("state = %#v, want printing", st)
	}
	if len(snap.Devices) != 2 || snap.Devices[0].ID != "dev1" {
		t.Fatalf("devices = %#v, want 2 devices", snap.Devices)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}

	// Returned device slices are independent of the stored ones.
	snap.Devices[0].ID = "changed"
	if s.Snapshot().Devices[0].ID != "dev1" {
		t.Fatalf("Snapshot should clone devices")
	}
}

func TestStore_VersionTracksStateChanges(t *testing.T) {
	var s Store
	s.Load(nil, nil, nil)
	v1 := s.Snapshot().Version

	// Unchanged store hands out the same version and map.
	a, b := s.Snapshot(), s.Snapshot()
	if a.Version != b.Version || reflect.ValueOf(a.States).Pointer() != reflect.ValueOf(b.States).Pointer() {
		t.Fatalf("repeated Snapshot should reuse the published map")
	}

	applied := s.Apply(hass.StateChange{
		EntityID: "sensor.kobra_project_progress",
		NewState: &hass.EntityState{State: "10"},
	})
	if !applied {
		t.Fatalf("Apply returned false for a new entity")
	}
	snap := s.Snapshot()
	if snap.Version <= v1 {
		t.Fatalf("Version = %d, want > %d", snap.Version, v1)
	}
	if st, _ := snap.States.Get("sensor.kobra_project_progress"); st.EntityID != "sensor.kobra_project_progress" {
		t.Fatalf("Apply should fill EntityID, got %#v", st)
	}

	// Earlier snapshots keep their view of the world.
	if _, ok := a.States.Get("sensor.kobra_project_progress"); ok {
		t.Fatalf("older snapshot observed a later write")
	}
}

func TestStore_ApplyIgnoresStaleUpdates(t *testing.T) {
	var s Store
	now := time.Now()
	id := "sensor.kobra_file_list_local"

	s.Apply(hass.StateChange{EntityID: id, NewState: &hass.EntityState{EntityID: id, State: "2", LastUpdated: now}})
	version := s.Snapshot().Version

	stale := s.Apply(hass.StateChange{EntityID: id, NewState: &hass.EntityState{EntityID: id, State: "1", LastUpdated: now.Add(-time.Second)}})
	if stale {
		t.Fatalf("Apply accepted an update older than the stored state")
	}
	snap := s.Snapshot()
	if st, _ := snap.States.Get(id); st.State != "2" {
		t.Fatalf("state = %q, want 2", st.State)
	}
	if snap.Version != version {
		t.Fatalf("Version changed on a rejected update")
	}

	if !s.Apply(hass.StateChange{EntityID: id, NewState: &hass.EntityState{EntityID: id, State: "3", LastUpdated: now.Add(time.Second)}}) {
		t.Fatalf("Apply rejected a newer update")
	}
}

func TestStore_ApplyRemovesEntities(t *testing.T) {
	var s Store
	id := "button.kobra_request_file_list_local"
	s.Apply(hass.StateChange{EntityID: id, NewState: &hass.EntityState{EntityID: id}})

	if !s.Apply(hass.StateChange{EntityID: id}) {
		t.Fatalf("Apply(nil new state) returned false for an existing entity")
	}
	if _, ok := s.Snapshot().States.Get(id); ok {
		t.Fatalf("entity still present after removal")
	}
	if s.Apply(hass.StateChange{EntityID: id}) {
		t.Fatalf("removing a missing entity should report no change")
	}
}

func TestStore_FailKeepsPreviousData(t *testing.T) {
	var s Store
	s.Load([]hass.EntityState{{EntityID: "sensor.a", State: "1"}}, []hass.Device{{ID: "dev1"}}, nil)

	origErr := errors.New("boom")
	s.Fail(origErr)

	snap := s.Snapshot()
	if snap.Connected {
		t.Fatalf("Connected = true after Fail")
	}
	if len(snap.Devices) != 1 || len(snap.States) != 1 {
		t.Fatalf("data dropped on failure: %#v", snap)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	if s.Snapshot().IsOffline() {
		t.Fatal("IsOffline() = true, want false with 0 failures")
	}

	s.Fail(errors.New("fail 1"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Fail(errors.New("fail 2"))
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	// Success resets counter
	s.Load(nil, nil, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after reload: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
