// Package config handles loading and parsing acpanel configuration files.
//
// # Overview
//
// This package reads acpanel's TOML configuration to discover the Home
// Assistant websocket endpoint, the access token, and where to write logs.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/acpanel/config.toml (default)
//  3. If the config file doesn't exist, fall back to hardcoded defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. ACPANEL_URL and ACPANEL_TOKEN override the file
//
// # Default Values
//
//   - Config file: ~/.config/acpanel/config.toml
//   - URL: ws://homeassistant.local:8123/api/websocket
//   - Domain: anycubic_cloud
//   - Log directory: ~/.local/share/acpanel/logs
//   - Log file: <log_dir>/acpanel.log
//
// # TOML Format
//
//	url = "https://homeassistant.example.com"
//	token_file = "~/.config/acpanel/token"
//	domain = "anycubic_cloud"
//	log_dir = "~/.local/share/acpanel/logs"
//
// The url may be a bare host, an http(s) URL, or a ws(s) URL; it is
// normalized to the websocket endpoint. token wins over token_file.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - An unsupported url scheme
//   - An unreadable token_file
//
// A missing token is not a load error. Validate reports it, so commands that
// never connect still work without one.
package config
