package app

import (
	"context"
	"errors"
	"sync"

	"github.com/five82/acpanel/internal/hass"
)

// ErrNotConnected is returned for service calls while Home Assistant is
// unreachable.
var ErrNotConnected = errors.New("not connected to Home Assistant")

// Session tracks the current connection across reconnects. It satisfies
// action.Caller, so the UI holds one Session for the whole run.
type Session struct {
	mu   sync.Mutex
	host hass.Host
}

func (s *Session) set(host hass.Host) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.host = host
}

// Connected reports whether a connection is live.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host != nil
}

// CallService forwards to the live connection.
func (s *Session) CallService(ctx context.Context, domain, service string, data map[string]any) error {
	s.mu.Lock()
	host := s.host
	s.mu.Unlock()
	if host == nil {
		return ErrNotConnected
	}
	return host.CallService(ctx, domain, service, data)
}
