// Package printer resolves panel routes to printer devices and their entities.
//
// # Routes
//
// Panel paths have the form /<printer-id>/<page-name>:
//
//	/                              printer select
//	/01ab23cd                      main page of printer 01ab23cd
//	/01ab23cd/cloud-files          cloud file browser
//
// Resolve is a pure function of the route and the device list. A route that
// names an unknown printer yields a Selection with a nil Device; callers
// render a "not found" view instead of failing. The device list arrives
// asynchronously, so the same route resolves to "not found" until it does.
//
// Navigator holds the route history. Pushing and replacing routes is kept
// apart from resolution.
//
// # Entity Subsets
//
// The anycubic_cloud integration names every entity of a printer with a
// common object-ID prefix:
//
//	sensor.kobra_3_project_progress
//	sensor.kobra_3_file_list_local
//	button.kobra_3_request_file_list_local
//
// EntityIDPart recovers that prefix from the entity registry, Subset filters
// a snapshot down to it, and SensorState returns a placeholder state when a
// sensor is missing or unavailable.
package printer
