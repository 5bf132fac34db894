package hass

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeHA speaks just enough of the Home Assistant websocket protocol for the
// client tests.
type fakeHA struct {
	token string

	mu    sync.Mutex
	calls []map[string]any
}

func (f *fakeHA) serve(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/websocket" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		_ = conn.WriteJSON(map[string]any{"type": "auth_required", "ha_version": "2024.8.0"})
		var auth map[string]any
		if err := conn.ReadJSON(&auth); err != nil {
			return
		}
		if auth["access_token"] != f.token {
			_ = conn.WriteJSON(map[string]any{"type": "auth_invalid", "message": "Invalid access token or password"})
			return
		}
		_ = conn.WriteJSON(map[string]any{"type": "auth_ok", "ha_version": "2024.8.0"})

		for {
			var cmd map[string]any
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			id := cmd["id"]
			switch cmd["type"] {
			case "get_states":
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": []map[string]any{
					{"entity_id": "sensor.kobra_project_progress", "state": "42", "attributes": map[string]any{"unit_of_measurement": "%"}},
				}})
			case "config/device_registry/list":
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": []map[string]any{
					{"id": "dev1", "name": "Kobra", "manufacturer": "Anycubic", "primary_config_entry": "cfg1"},
				}})
			case "config/entity_registry/list":
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": []map[string]any{
					{"entity_id": "sensor.kobra_project_progress", "device_id": "dev1", "platform": "anycubic_cloud"},
				}})
			case "subscribe_events":
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": nil})
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "event", "event": map[string]any{
					"event_type": "state_changed",
					"data": map[string]any{
						"entity_id": "sensor.kobra_project_progress",
						"new_state": map[string]any{"entity_id": "sensor.kobra_project_progress", "state": "43"},
					},
				}})
			case "call_service":
				f.mu.Lock()
				f.calls = append(f.calls, cmd)
				f.mu.Unlock()
				if cmd["service"] == "print_fail" {
					_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": false,
						"error": map[string]any{"code": "home_assistant_error", "message": "device offline"}})
					continue
				}
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "result", "success": true, "result": map[string]any{}})
			case "ping":
				_ = conn.WriteJSON(map[string]any{"id": id, "type": "pong"})
			}
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestParseURL_Normalizes(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "ws://homeassistant.local:8123/api/websocket"},
		{"10.0.0.2:8123", "ws://10.0.0.2:8123/api/websocket"},
		{"http://ha.lan:8123/", "ws://ha.lan:8123/api/websocket"},
		{"https://ha.example.com?x=1#frag", "wss://ha.example.com/api/websocket"},
		{"wss://ha.example.com/api/websocket", "wss://ha.example.com/api/websocket"},
	}
	for _, tc := range cases {
		got, err := ParseURL(tc.in)
		if err != nil {
			t.Fatalf("ParseURL(%q) returned error: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseURL(%q) = %q, want %q", tc.in, got.String(), tc.want)
		}
	}

	if _, err := ParseURL("ftp://ha.lan"); err == nil {
		t.Fatalf("ParseURL(ftp) returned nil error, want scheme error")
	}
}

func TestDial_RejectsBadToken(t *testing.T) {
	fake := &fakeHA{token: "good"}
	server := fake.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	_, err := Dial(ctx, server.URL, "bad")
	if !errors.Is(err, ErrAuthInvalid) {
		t.Fatalf("Dial error = %v, want ErrAuthInvalid", err)
	}
	if !strings.Contains(err.Error(), "Invalid access token") {
		t.Fatalf("Dial error = %q, want server message", err.Error())
	}
}

func TestClient_FetchesAndCallsServices(t *testing.T) {
	fake := &fakeHA{token: "good"}
	server := fake.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	c, err := Dial(ctx, server.URL, "good")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if c.HAVersion != "2024.8.0" {
		t.Fatalf("HAVersion = %q, want 2024.8.0", c.HAVersion)
	}

	states, err := c.FetchStates(ctx)
	if err != nil {
		t.Fatalf("FetchStates returned error: %v", err)
	}
	if len(states) != 1 || states[0].State != "42" {
		t.Fatalf("FetchStates = %#v, want one state of 42", states)
	}

	devices, err := c.FetchDevices(ctx)
	if err != nil {
		t.Fatalf("FetchDevices returned error: %v", err)
	}
	if len(devices) != 1 || devices[0].ConfigEntry() != "cfg1" {
		t.Fatalf("FetchDevices = %#v, want dev1/cfg1", devices)
	}

	entries, err := c.FetchEntityRegistry(ctx)
	if err != nil {
		t.Fatalf("FetchEntityRegistry returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].DeviceID != "dev1" {
		t.Fatalf("FetchEntityRegistry = %#v, want one entry for dev1", entries)
	}

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}

	err = c.CallService(ctx, "anycubic_cloud", "print_start", map[string]any{"device_id": "dev1"})
	if err != nil {
		t.Fatalf("CallService returned error: %v", err)
	}

	err = c.CallService(ctx, "anycubic_cloud", "print_fail", nil)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("CallService error = %v, want *ServiceError", err)
	}
	if svcErr.Message != "device offline" {
		t.Fatalf("ServiceError.Message = %q, want device offline", svcErr.Message)
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.calls) != 2 {
		t.Fatalf("server saw %d calls, want 2", len(fake.calls))
	}
	data, _ := fake.calls[0]["service_data"].(map[string]any)
	if fake.calls[0]["domain"] != "anycubic_cloud" || data["device_id"] != "dev1" {
		t.Fatalf("call payload = %#v, want domain and service_data", fake.calls[0])
	}
}

func TestClient_UnencodablePayloadKeepsConnection(t *testing.T) {
	fake := &fakeHA{token: "good"}
	server := fake.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	c, err := Dial(ctx, server.URL, "good")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	err = c.CallService(ctx, "anycubic_cloud", "print_start", map[string]any{"speed": math.Inf(1)})
	if err == nil || !strings.Contains(err.Error(), "encode frame") {
		t.Fatalf("CallService error = %v, want encode error", err)
	}

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping after encode error = %v", err)
	}
	select {
	case <-c.Done():
		t.Fatalf("connection closed after encode error: %v", c.Err())
	default:
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.calls) != 0 {
		t.Fatalf("server saw %d calls, want 0", len(fake.calls))
	}
}

func TestClient_SubscribeDeliversStateChanges(t *testing.T) {
	fake := &fakeHA{token: "good"}
	server := fake.serve(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	c, err := Dial(ctx, server.URL, "good")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	got := make(chan StateChange, 1)
	if err := c.SubscribeStateChanged(ctx, func(change StateChange) { got <- change }); err != nil {
		t.Fatalf("SubscribeStateChanged returned error: %v", err)
	}

	select {
	case change := <-got:
		if change.NewState == nil || change.NewState.State != "43" {
			t.Fatalf("change = %#v, want new state 43", change)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for state change")
	}
}

func TestClient_CommandsFailAfterClose(t *testing.T) {
	fake := &fakeHA{token: "good"}
	server := fake.serve(t)

	c, err := Dial(context.Background(), server.URL, "good")
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	_ = c.Close()

	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatalf("Done not closed after Close")
	}
	if err := c.CallService(context.Background(), "anycubic_cloud", "x", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("CallService after Close = %v, want ErrClosed", err)
	}
}

func TestEntityState_Helpers(t *testing.T) {
	st := EntityState{EntityID: "sensor.kobra_nozzle_temperature", State: "215.5", Attributes: map[string]any{"unit_of_measurement": "°C"}}
	if v, ok := st.Float(); !ok || v != 215.5 {
		t.Fatalf("Float = %v,%v want 215.5,true", v, ok)
	}
	if st.ObjectID() != "kobra_nozzle_temperature" {
		t.Fatalf("ObjectID = %q", st.ObjectID())
	}
	if st.AttrString("unit_of_measurement") != "°C" {
		t.Fatalf("AttrString = %q", st.AttrString("unit_of_measurement"))
	}

	st.State = StateUnavailable
	if st.Available() {
		t.Fatalf("Available() = true for unavailable state")
	}
	if _, ok := st.Float(); ok {
		t.Fatalf("Float ok for unavailable state")
	}
}

func TestDevice_DisplayNameAndConfigEntry(t *testing.T) {
	d := Device{ID: "dev1", Name: "Kobra 3", ConfigEntries: []string{"legacy"}}
	if d.DisplayName() != "Kobra 3" {
		t.Fatalf("DisplayName = %q", d.DisplayName())
	}
	if d.ConfigEntry() != "legacy" {
		t.Fatalf("ConfigEntry = %q, want legacy fallback", d.ConfigEntry())
	}
	d.NameByUser = "Workshop"
	d.PrimaryConfigEntry = "cfg1"
	if d.DisplayName() != "Workshop" || d.ConfigEntry() != "cfg1" {
		t.Fatalf("DisplayName/ConfigEntry = %q/%q", d.DisplayName(), d.ConfigEntry())
	}
}
