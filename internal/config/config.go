// Package config loads the command configuration from YAML or JSON-with-
// comments files and applies environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

const (
	EnvBackendURL = "FORMDISPATCH_BACKEND_URL"
	EnvListenAddr = "FORMDISPATCH_LISTEN_ADDR"
	EnvMode       = "FORMDISPATCH_MODE"
)

// Config is the command configuration.
type Config struct {
	Mode     string         `yaml:"mode" json:"mode"`
	Backend  BackendConfig  `yaml:"backend" json:"backend"`
	Web      WebConfig      `yaml:"web" json:"web"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Bindings BindingsConfig `yaml:"bindings" json:"bindings"`

	// Path is the file the configuration was read from (not serialized).
	Path string `yaml:"-" json:"-"`
}

// BackendConfig points at the REST API. A zero Timeout leaves backend calls
// bounded only by the request context and the transport.
type BackendConfig struct {
	URL     string            `yaml:"url" json:"url"`
	Timeout Duration          `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// WebConfig configures the web host.
type WebConfig struct {
	ListenAddr   string `yaml:"listen_addr" json:"listen_addr"`
	Title        string `yaml:"title,omitempty" json:"title,omitempty"`
	ThemeVariant string `yaml:"theme_variant,omitempty" json:"theme_variant,omitempty"`
}

// LogConfig selects the logger flavour.
type LogConfig struct {
	Level       string `yaml:"level" json:"level"`
	Development bool   `yaml:"development" json:"development"`
}

// BindingsConfig locates the binding table. Source is a file path, an
// http(s) URL, or empty for the built-in table.
type BindingsConfig struct {
	Source       string   `yaml:"source,omitempty" json:"source,omitempty"`
	BannerTTL    Duration `yaml:"banner_ttl" json:"banner_ttl"`
	AllowHTTPURL bool     `yaml:"allow_http_url,omitempty" json:"allow_http_url,omitempty"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Mode: "tui",
		Backend: BackendConfig{
			URL: "http://localhost:8000",
		},
		Web: WebConfig{
			ListenAddr: "127.0.0.1:8080",
			Title:      "Stowage console",
		},
		Log: LogConfig{
			Level: "info",
		},
		Bindings: BindingsConfig{
			BannerTTL: Duration(5 * time.Second),
		},
	}
}

// Load reads path over the defaults and applies environment overrides. An
// empty path yields the defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := Decode(path, content, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Path = path
	}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode unmarshals content into cfg. Files ending in .json, .jsonc or
// .hujson may carry comments and trailing commas; everything else is YAML.
func Decode(path string, content []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc", ".hujson":
		standard, err := hujson.Standardize(content)
		if err != nil {
			return fmt.Errorf("config: parse %s: %w", path, err)
		}
		if err := json.Unmarshal(standard, cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return fmt.Errorf("config: decode %s: %w", path, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		return
	}
	if v, ok := lookup(EnvBackendURL); ok && strings.TrimSpace(v) != "" {
		c.Backend.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvListenAddr); ok && strings.TrimSpace(v) != "" {
		c.Web.ListenAddr = strings.TrimSpace(v)
	}
	if v, ok := lookup(EnvMode); ok && strings.TrimSpace(v) != "" {
		c.Mode = strings.ToLower(strings.TrimSpace(v))
	}
}

// Validate checks the fields the command cannot default.
func (c Config) Validate() error {
	switch c.Mode {
	case "tui", "web":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode)
	}
	if strings.TrimSpace(c.Backend.URL) == "" {
		return fmt.Errorf("config: backend url is required")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("config: backend timeout must not be negative")
	}
	return nil
}
