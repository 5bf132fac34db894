// Package ui provides the terminal control panel for acpanel.
//
// # Architecture Overview
//
// The panel is a Bubble Tea program. The Model owns routing, preferences,
// and per-view state; a tick pulls the latest state.Snapshot from the store,
// and every view derives what it shows from that snapshot and the current
// route. Derived values (stat lines, file listings, the print device
// context) sit behind derive.Memo caches so redraws only recompute what the
// snapshot or route actually changed.
//
// # Package Structure
//
//   - app.go: Model, Options, Update/View, routing, and the Run function
//   - header.go: status bar, page tabs, titled boxes
//   - printers.go: printer select list
//   - main_page.go: progress and monitored stats
//   - files_page.go: local/USB/cloud file tables and file actions
//   - print_page.go: print service payload editor
//   - debug_page.go: entity dump and acpanel log tail
//   - actions.go: action controls and result messages
//   - modal.go: confirm dialog
//   - theme.go, style_helpers.go: colors and Lipgloss helpers
//
// # Routes
//
// Routes have the form /<printer-id>/<page>. "/" shows the printer list; an
// unknown printer or page shows a not-found box. Pages:
//
//   - main: progress and stats
//   - local-files, udisk-files, cloud-files: file backends
//   - print-no_cloud_save, print-save_in_cloud: print services
//   - debug: entities and log
//
// # Actions
//
// File deletes, list refreshes, downloads and prints run as tea.Cmds through
// an action.Dispatcher. Each button is an action.Control; leaving a page
// unmounts its controls so results that arrive later are dropped. The
// dispatcher's feedback hook rings the terminal bell when a request starts.
//
// # Key Bindings
//
//   - tab / shift+tab: Next/previous page
//   - 1-7: Jump to page
//   - P: Printer list
//   - esc: Back
//   - j/k, g/G: Move cursor
//   - r / d / D: Refresh / delete / download files
//   - e, enter: Edit payload, print
//   - u / c / o / %: Temperature unit, 24h clock, rounding, percent
//   - T: Cycle theme
//   - ?: Help
//   - q or Ctrl+C: Exit
package ui
