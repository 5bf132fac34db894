package hass

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Entity states Home Assistant reports when a value is not known.
const (
	StateUnavailable = "unavailable"
	StateUnknown     = "unknown"
)

// EntityState mirrors a state object from get_states and state_changed events.
type EntityState struct {
	EntityID    string         `json:"entity_id"`
	State       string         `json:"state"`
	Attributes  map[string]any `json:"attributes"`
	LastChanged time.Time      `json:"last_changed"`
	LastUpdated time.Time      `json:"last_updated"`
}

// Available reports whether the state carries a real value.
func (s EntityState) Available() bool {
	switch strings.ToLower(strings.TrimSpace(s.State)) {
	case "", StateUnavailable, StateUnknown:
		return false
	}
	return true
}

// Float parses the state as a number.
func (s EntityState) Float() (float64, bool) {
	if !s.Available() {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s.State), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Attr returns a raw attribute value.
func (s EntityState) Attr(name string) (any, bool) {
	if s.Attributes == nil {
		return nil, false
	}
	v, ok := s.Attributes[name]
	return v, ok
}

// AttrString returns a string attribute or "" when absent.
func (s EntityState) AttrString(name string) string {
	v, ok := s.Attr(name)
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return str
	}
	return fmt.Sprint(v)
}

// ObjectID returns the part of the entity ID after the domain.
func (s EntityState) ObjectID() string {
	return ObjectID(s.EntityID)
}

// ObjectID splits "sensor.foo_bar" into "foo_bar".
func ObjectID(entityID string) string {
	if idx := strings.IndexByte(entityID, '.'); idx >= 0 {
		return entityID[idx+1:]
	}
	return entityID
}

// States is a read-only view of every entity keyed by entity ID.
type States map[string]EntityState

// Get returns the state for entityID.
func (s States) Get(entityID string) (EntityState, bool) {
	if s == nil {
		return EntityState{}, false
	}
	st, ok := s[entityID]
	return st, ok
}

// Device mirrors a device registry entry.
type Device struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	NameByUser         string   `json:"name_by_user"`
	Manufacturer       string   `json:"manufacturer"`
	Model              string   `json:"model"`
	PrimaryConfigEntry string   `json:"primary_config_entry"`
	ConfigEntries      []string `json:"config_entries"`
}

// DisplayName prefers the user-assigned name.
func (d Device) DisplayName() string {
	if name := strings.TrimSpace(d.NameByUser); name != "" {
		return name
	}
	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}
	return d.ID
}

// ConfigEntry returns the entry used for service calls. Older Home Assistant
// releases do not send primary_config_entry.
func (d Device) ConfigEntry() string {
	if d.PrimaryConfigEntry != "" {
		return d.PrimaryConfigEntry
	}
	if len(d.ConfigEntries) > 0 {
		return d.ConfigEntries[0]
	}
	return ""
}

// EntityEntry mirrors an entity registry entry.
type EntityEntry struct {
	EntityID   string `json:"entity_id"`
	DeviceID   string `json:"device_id"`
	Platform   string `json:"platform"`
	DisabledBy string `json:"disabled_by"`
}

// StateChange is the payload of a state_changed event. NewState is nil when
// the entity was removed.
type StateChange struct {
	EntityID string       `json:"entity_id"`
	NewState *EntityState `json:"new_state"`
	OldState *EntityState `json:"old_state"`
}

// ServiceError is returned when Home Assistant rejects a command.
type ServiceError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ServiceError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// message is the envelope for every frame on the websocket.
type message struct {
	ID          int64           `json:"id,omitempty"`
	Type        string          `json:"type"`
	Success     bool            `json:"success,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *ServiceError   `json:"error,omitempty"`
	Event       *event          `json:"event,omitempty"`
	Message     string          `json:"message,omitempty"`
	HAVersion   string          `json:"ha_version,omitempty"`
	AccessToken string          `json:"access_token,omitempty"`
}

type event struct {
	EventType string          `json:"event_type"`
	Data      json.RawMessage `json:"data"`
	TimeFired time.Time       `json:"time_fired"`
}
