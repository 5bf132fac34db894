package hass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Host defines the Home Assistant operations the panel relies on.
// This interface is implemented by *Client and can be used for testing.
type Host interface {
	FetchStates(ctx context.Context) ([]EntityState, error)
	FetchDevices(ctx context.Context) ([]Device, error)
	FetchEntityRegistry(ctx context.Context) ([]EntityEntry, error)
	SubscribeStateChanged(ctx context.Context, fn func(StateChange)) error
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// Ensure Client implements Host at compile time.
var _ Host = (*Client)(nil)

var (
	// ErrAuthInvalid is returned when the access token is rejected.
	ErrAuthInvalid = errors.New("home assistant rejected the access token")
	// ErrClosed is returned for commands issued after the connection ended.
	ErrClosed = errors.New("home assistant connection closed")
)

const (
	defaultURL       = "ws://homeassistant.local:8123/api/websocket"
	defaultUserAgent = "acpanel/0.1"
	handshakeTimeout = 10 * time.Second
	writeTimeout     = 5 * time.Second
)

// Client talks to the Home Assistant websocket API. Commands may be issued
// from any goroutine; responses are matched to requests by message ID.
type Client struct {
	conn *websocket.Conn

	// writeMu serializes writes; gorilla connections allow one concurrent writer.
	writeMu sync.Mutex

	mu       sync.Mutex
	nextID   int64
	pending  map[int64]chan message
	handlers map[int64]func(event)

	done      chan struct{}
	closeOnce sync.Once
	err       error

	// HAVersion is reported by the server during the handshake.
	HAVersion string
}

// Dial connects to rawURL and authenticates with token.
func Dial(ctx context.Context, rawURL, token string) (*Client, error) {
	endpoint, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("access token required")
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
		Proxy:            http.ProxyFromEnvironment,
	}
	header := http.Header{}
	header.Set("User-Agent", defaultUserAgent)

	conn, resp, err := dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (status %d)", endpoint.Redacted(), err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", endpoint.Redacted(), err)
	}

	c := &Client{
		conn:     conn,
		pending:  make(map[int64]chan message),
		handlers: make(map[int64]func(event)),
		done:     make(chan struct{}),
	}
	if err := c.authenticate(ctx, token); err != nil {
		_ = conn.Close()
		return nil, err
	}
	go c.readLoop()
	return c, nil
}

// Done is closed when the connection ends.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the reason the connection ended, or nil while it is open.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close terminates the connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.shutdown(ErrClosed)
	return nil
}

// FetchStates returns every entity state.
func (c *Client) FetchStates(ctx context.Context) ([]EntityState, error) {
	var states []EntityState
	if err := c.command(ctx, map[string]any{"type": "get_states"}, &states); err != nil {
		return nil, fmt.Errorf("get states: %w", err)
	}
	return states, nil
}

// FetchDevices returns the device registry.
func (c *Client) FetchDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.command(ctx, map[string]any{"type": "config/device_registry/list"}, &devices); err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return devices, nil
}

// FetchEntityRegistry returns the entity registry.
func (c *Client) FetchEntityRegistry(ctx context.Context) ([]EntityEntry, error) {
	var entries []EntityEntry
	if err := c.command(ctx, map[string]any{"type": "config/entity_registry/list"}, &entries); err != nil {
		return nil, fmt.Errorf("list entities: %w", err)
	}
	return entries, nil
}

// SubscribeStateChanged delivers state_changed events to fn until the
// connection ends. fn runs on the read goroutine and must not block.
func (c *Client) SubscribeStateChanged(ctx context.Context, fn func(StateChange)) error {
	if fn == nil {
		return fmt.Errorf("subscribe: handler is nil")
	}
	payload := map[string]any{"type": "subscribe_events", "event_type": "state_changed"}
	onEvent := func(evt event) {
		if evt.EventType != "state_changed" {
			return
		}
		var change StateChange
		if err := json.Unmarshal(evt.Data, &change); err != nil {
			return
		}
		fn(change)
	}
	if err := c.send(ctx, payload, onEvent, nil); err != nil {
		return fmt.Errorf("subscribe state_changed: %w", err)
	}
	return nil
}

// CallService invokes domain.service with data. A rejected call returns a
// *ServiceError carrying Home Assistant's message.
func (c *Client) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	if strings.TrimSpace(domain) == "" || strings.TrimSpace(service) == "" {
		return fmt.Errorf("call service: domain and service required")
	}
	payload := map[string]any{
		"type":    "call_service",
		"domain":  domain,
		"service": service,
	}
	if len(data) > 0 {
		payload["service_data"] = data
	}
	return c.command(ctx, payload, nil)
}

// Ping round-trips a ping frame.
func (c *Client) Ping(ctx context.Context) error {
	return c.command(ctx, map[string]any{"type": "ping"}, nil)
}

func (c *Client) command(ctx context.Context, payload map[string]any, dest any) error {
	return c.send(ctx, payload, nil, dest)
}

func (c *Client) send(ctx context.Context, payload map[string]any, onEvent func(event), dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	reply := make(chan message, 1)
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.nextID++
	id := c.nextID
	c.pending[id] = reply
	if onEvent != nil {
		c.handlers[id] = onEvent
	}
	c.mu.Unlock()

	payload["id"] = id
	if err := c.write(payload); err != nil {
		c.forget(id)
		return err
	}

	select {
	case msg := <-reply:
		if !msg.Success {
			c.dropHandler(id)
			if msg.Error != nil {
				return msg.Error
			}
			return &ServiceError{Code: "unknown_error", Message: "request failed"}
		}
		if dest != nil && len(msg.Result) > 0 {
			if err := json.Unmarshal(msg.Result, dest); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	case <-c.done:
		return c.Err()
	}
}

func (c *Client) write(payload any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (c *Client) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	delete(c.handlers, id)
	c.mu.Unlock()
}

func (c *Client) dropHandler(id int64) {
	c.mu.Lock()
	delete(c.handlers, id)
	c.mu.Unlock()
}

func (c *Client) authenticate(ctx context.Context, token string) error {
	deadline := time.Now().Add(handshakeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = c.conn.SetReadDeadline(deadline)
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()

	var hello message
	if err := c.conn.ReadJSON(&hello); err != nil {
		return fmt.Errorf("read auth_required: %w", err)
	}
	if hello.Type != "auth_required" {
		return fmt.Errorf("unexpected handshake frame %q", hello.Type)
	}
	c.HAVersion = hello.HAVersion

	if err := c.write(map[string]any{"type": "auth", "access_token": token}); err != nil {
		return err
	}

	var reply message
	if err := c.conn.ReadJSON(&reply); err != nil {
		return fmt.Errorf("read auth result: %w", err)
	}
	switch reply.Type {
	case "auth_ok":
		if reply.HAVersion != "" {
			c.HAVersion = reply.HAVersion
		}
		return nil
	case "auth_invalid":
		if reply.Message != "" {
			return fmt.Errorf("%w: %s", ErrAuthInvalid, reply.Message)
		}
		return ErrAuthInvalid
	default:
		return fmt.Errorf("unexpected auth frame %q", reply.Type)
	}
}

func (c *Client) readLoop() {
	for {
		var msg message
		if err := c.conn.ReadJSON(&msg); err != nil {
			c.shutdown(fmt.Errorf("read frame: %w", err))
			return
		}
		switch msg.Type {
		case "result", "pong":
			if msg.Type == "pong" {
				msg.Success = true
			}
			c.mu.Lock()
			reply, ok := c.pending[msg.ID]
			delete(c.pending, msg.ID)
			c.mu.Unlock()
			if ok {
				reply <- msg
			}
		case "event":
			if msg.Event == nil {
				continue
			}
			c.mu.Lock()
			handler := c.handlers[msg.ID]
			c.mu.Unlock()
			if handler != nil {
				handler(*msg.Event)
			}
		}
	}
}

func (c *Client) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.err = err
		c.pending = map[int64]chan message{}
		c.handlers = map[int64]func(event){}
		c.mu.Unlock()
		close(c.done)
		_ = c.conn.Close()
	})
}

// ParseURL normalizes a Home Assistant address into its websocket endpoint.
// Bare hosts and http(s) URLs are accepted.
func ParseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = defaultURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "ws://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", raw, err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("url scheme must be ws, wss, http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse url %q: missing host", raw)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = "/api/websocket"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
