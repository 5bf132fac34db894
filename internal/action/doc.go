// Package action sends integration service calls and tracks their outcome.
//
// A Dispatcher turns (device, service, payload) into one call on the
// transport:
//
//	{service: "print_and_upload_no_cloud_save",
//	 data: {config_entry: "...", device_id: "...", filename: "cube.gcode"}}
//
// The device context always overrides payload keys of the same name. A
// missing device or service returns an error without calling the transport.
// One Run is one request; nothing is retried.
//
// Control holds the visual state of the button that started a request
// (idle, pending, success, error) and the error text shown next to it. Each
// attempt is numbered, so an outcome that arrives after a newer attempt
// started, or after the view was closed, is dropped.
package action
