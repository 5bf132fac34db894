package action

import (
	"context"
	"errors"
	"fmt"
	"log"
	"maps"
	"strings"

	"github.com/five82/acpanel/internal/hass"
)

// DefaultDomain is the integration's service domain.
const DefaultDomain = "anycubic_cloud"

// Print services offered by the integration.
const (
	ServicePrintNoCloudSave  = "print_and_upload_no_cloud_save"
	ServicePrintSaveInCloud  = "print_and_upload_save_in_cloud"
	ServicePressButton       = "press"
	ButtonDomain             = "button"
	payloadKeyConfigEntry    = "config_entry"
	payloadKeyDeviceID       = "device_id"
	payloadKeyButtonEntityID = "entity_id"
)

var (
	ErrNoDevice  = errors.New("no printer selected")
	ErrNoService = errors.New("no service named")
)

// Caller is the service-invocation transport. *hass.Client satisfies it.
type Caller interface {
	CallService(ctx context.Context, domain, service string, data map[string]any) error
}

// Request is a service call ready to send.
type Request struct {
	Domain  string
	Service string
	Data    map[string]any
}

func (r Request) String() string {
	return fmt.Sprintf("%s.%s", r.Domain, r.Service)
}

// BuildRequest merges payload over the device context. Payload keys named
// config_entry or device_id replace the device's values.
func BuildRequest(device *hass.Device, service string, payload map[string]any) (Request, error) {
	if device == nil || strings.TrimSpace(device.ID) == "" {
		return Request{}, ErrNoDevice
	}
	if strings.TrimSpace(service) == "" {
		return Request{}, ErrNoService
	}
	data := make(map[string]any, len(payload)+2)
	data[payloadKeyConfigEntry] = device.ConfigEntry()
	data[payloadKeyDeviceID] = device.ID
	maps.Copy(data, payload)
	return Request{Service: service, Data: data}, nil
}

// PressButton builds a button.press request for entityID.
func PressButton(entityID string) Request {
	return Request{
		Domain:  ButtonDomain,
		Service: ServicePressButton,
		Data:    map[string]any{payloadKeyButtonEntityID: entityID},
	}
}

// Outcome is the result of one dispatched request.
type Outcome struct {
	Request Request
	Err     error
}

// OK reports success.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Message is the text shown next to the control on failure. Home Assistant
// rejections show their message only.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	var svcErr *hass.ServiceError
	if errors.As(o.Err, &svcErr) && svcErr.Message != "" {
		return svcErr.Message
	}
	return o.Err.Error()
}

// Dispatcher sends service requests for the selected printer.
type Dispatcher struct {
	Caller Caller
	Domain string

	// Feedback fires when a request starts. It runs on its own goroutine.
	Feedback func()
}

// Run builds the request for device and sends it once. Build errors return
// without calling the transport.
func (d *Dispatcher) Run(ctx context.Context, device *hass.Device, service string, payload map[string]any) Outcome {
	req, err := BuildRequest(device, service, payload)
	if err != nil {
		return Outcome{Err: err}
	}
	return d.Send(ctx, req)
}

// Send dispatches a prepared request. Requests without a domain use the
// dispatcher's.
func (d *Dispatcher) Send(ctx context.Context, req Request) Outcome {
	if req.Domain == "" {
		req.Domain = d.domain()
	}
	if d.Caller == nil {
		return Outcome{Request: req, Err: errors.New("no connection")}
	}
	d.fireFeedback()

	if err := d.Caller.CallService(ctx, req.Domain, req.Service, req.Data); err != nil {
		log.Printf("action %s failed: %v", req, err)
		return Outcome{Request: req, Err: err}
	}
	return Outcome{Request: req}
}

func (d *Dispatcher) domain() string {
	if d.Domain == "" {
		return DefaultDomain
	}
	return d.Domain
}

func (d *Dispatcher) fireFeedback() {
	if d.Feedback == nil {
		return
	}
	fn := d.Feedback
	go func() {
		defer func() { _ = recover() }()
		fn()
	}()
}
