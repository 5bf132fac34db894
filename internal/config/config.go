package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/acpanel/internal/hass"
)

// Config holds the connection settings for Home Assistant.
type Config struct {
	URL       string // websocket endpoint, normalized
	Token     string // long-lived access token
	TokenFile string
	Domain    string // integration service domain
	LogDir    string
}

const (
	defaultConfigPath = "~/.config/acpanel/config.toml"
	defaultLogDir     = "~/.local/share/acpanel/logs"
	defaultDomain     = "anycubic_cloud"

	// EnvToken overrides the token from the config file.
	EnvToken = "ACPANEL_TOKEN"
	// EnvURL overrides the url from the config file.
	EnvURL = "ACPANEL_URL"
)

// Load locates and parses the acpanel config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw struct {
		URL       string `toml:"url"`
		Token     string `toml:"token"`
		TokenFile string `toml:"token_file"`
		Domain    string `toml:"domain"`
		LogDir    string `toml:"log_dir"`
	}

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	cfg := Config{
		Token:     strings.TrimSpace(raw.Token),
		TokenFile: strings.TrimSpace(raw.TokenFile),
		Domain:    strings.TrimSpace(raw.Domain),
		LogDir:    strings.TrimSpace(raw.LogDir),
	}
	if cfg.Domain == "" {
		cfg.Domain = defaultDomain
	}
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
	cfg.LogDir = mustExpand(cfg.LogDir)

	rawURL := strings.TrimSpace(raw.URL)
	if env := strings.TrimSpace(os.Getenv(EnvURL)); env != "" {
		rawURL = env
	}
	u, err := hass.ParseURL(rawURL)
	if err != nil {
		return Config{}, fmt.Errorf("invalid url: %w", err)
	}
	cfg.URL = u.String()

	if cfg.TokenFile != "" {
		cfg.TokenFile = mustExpand(cfg.TokenFile)
		if cfg.Token == "" {
			data, err := os.ReadFile(cfg.TokenFile)
			if err != nil {
				return Config{}, fmt.Errorf("read token file: %w", err)
			}
			cfg.Token = strings.TrimSpace(string(data))
		}
	}
	if env := strings.TrimSpace(os.Getenv(EnvToken)); env != "" {
		cfg.Token = env
	}

	return cfg, nil
}

// LogPath returns the path to the acpanel log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/acpanel.log")
	}
	return filepath.Join(c.LogDir, "acpanel.log")
}

// Validate reports settings that make connecting impossible.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("no access token: set token or token_file in the config, or %s", EnvToken)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
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
