// Package hass provides a websocket client for the Home Assistant API.
//
// # Overview
//
// acpanel never talks to printers directly. Everything it shows comes from
// Home Assistant entities published by the anycubic_cloud integration, and
// every action it takes is a Home Assistant service call. This package wraps
// the small part of the websocket API the panel needs and the types that
// mirror its payloads.
//
// # Architecture
//
//   - client.go: connection, authentication handshake, request/response
//     matching, event subscriptions
//   - types.go: entity states, device and entity registry entries, errors
//
// # Protocol
//
// After the socket opens the server sends auth_required; the client answers
// with a long-lived access token and waits for auth_ok. Every later command
// carries a numeric id and the server echoes it on the matching result or
// event frames:
//
//	-> {"id": 3, "type": "call_service", "domain": "anycubic_cloud",
//	    "service": "delete_file_local", "service_data": {...}}
//	<- {"id": 3, "type": "result", "success": false,
//	    "error": {"code": "home_assistant_error", "message": "device offline"}}
//
// Rejected commands surface as *ServiceError so callers can show the
// server's message verbatim.
//
// # Client Usage
//
//	client, err := hass.Dial(ctx, "http://homeassistant.local:8123", token)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	states, err := client.FetchStates(ctx)
//	...
//	err = client.SubscribeStateChanged(ctx, func(change hass.StateChange) {
//		store.Apply(change)
//	})
//
// # Concurrency
//
// A single goroutine reads frames and dispatches them. Writes are serialized
// with a mutex, so commands may be issued from any goroutine. Subscription
// handlers run on the read goroutine and must return quickly.
//
// # Lifecycle
//
// Done is closed when the socket ends for any reason and Err reports why.
// The client does not reconnect; the app package owns the reconnect loop.
package hass
