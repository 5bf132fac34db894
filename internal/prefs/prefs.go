// Package prefs handles acpanel user preferences persistence.
// Preferences are stored in ~/.config/acpanel/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for acpanel.
type Prefs struct {
	Theme           string   `toml:"theme"`
	TemperatureUnit string   `toml:"temperature_unit"`
	Use24Hr         bool     `toml:"use_24hr"`
	Round           bool     `toml:"round"`
	ShowPercent     bool     `toml:"show_percent"`
	MonitoredStats  []string `toml:"monitored_stats,omitempty"`
}

const (
	defaultPrefsPath       = "~/.config/acpanel/prefs.toml"
	defaultTheme           = "Nightfox"
	defaultTemperatureUnit = "C"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when no file exists.
func Defaults() Prefs {
	return Prefs{
		Theme:           defaultTheme,
		TemperatureUnit: defaultTemperatureUnit,
		Round:           true,
		ShowPercent:     true,
	}
}

// Load reads preferences from path. A missing or unreadable file gives the
// defaults; preferences never stop the panel from starting.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return Defaults(), nil
	}

	p := Defaults()
	if err := toml.Unmarshal(data, &p); err != nil {
		return Defaults(), nil
	}
	p.normalize()
	return p, nil
}

func (p *Prefs) normalize() {
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if strings.EqualFold(strings.TrimSpace(p.TemperatureUnit), "F") {
		p.TemperatureUnit = "F"
	} else {
		p.TemperatureUnit = defaultTemperatureUnit
	}
	stats := p.MonitoredStats[:0]
	for _, name := range p.MonitoredStats {
		if name = strings.TrimSpace(name); name != "" {
			stats = append(stats, name)
		}
	}
	p.MonitoredStats = stats
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
