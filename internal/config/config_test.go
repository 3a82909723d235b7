package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeYAML(t *testing.T) {
	content := []byte(`
mode: web
backend:
  url: http://api.internal:8000
  timeout: 10s
  headers:
    X-Console: stowage
web:
  listen_addr: ":9090"
  theme_variant: dark
log:
  level: debug
  development: true
bindings:
  source: bindings.yaml
  banner_ttl: 3s
`)
	cfg := Default()
	if err := Decode("formdispatch.yaml", content, &cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := Config{
		Mode: "web",
		Backend: BackendConfig{
			URL:     "http://api.internal:8000",
			Timeout: Duration(10 * time.Second),
			Headers: map[string]string{"X-Console": "stowage"},
		},
		Web: WebConfig{
			ListenAddr:   ":9090",
			Title:        "Stowage console",
			ThemeVariant: "dark",
		},
		Log: LogConfig{Level: "debug", Development: true},
		Bindings: BindingsConfig{
			Source:    "bindings.yaml",
			BannerTTL: Duration(3 * time.Second),
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeJSONWithComments(t *testing.T) {
	content := []byte(`{
  // local backend
  "backend": {"url": "http://127.0.0.1:8000", "timeout": "2s",},
  "bindings": {"banner_ttl": "1500ms"},
}`)
	cfg := Default()
	if err := Decode("formdispatch.jsonc", content, &cfg); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if cfg.Backend.Timeout.Std() != 2*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Backend.Timeout.Std())
	}
	if cfg.Bindings.BannerTTL.Std() != 1500*time.Millisecond {
		t.Fatalf("unexpected banner ttl %v", cfg.Bindings.BannerTTL.Std())
	}
	if cfg.Mode != "tui" {
		t.Fatalf("defaults should survive partial files, got mode %q", cfg.Mode)
	}
}

func TestDefaultLeavesBackendTimeoutOff(t *testing.T) {
	cfg := Default()
	if cfg.Backend.Timeout != 0 {
		t.Fatalf("backend timeout should be opt-in, got %v", cfg.Backend.Timeout.Std())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestDecodeRejectsBadDuration(t *testing.T) {
	cfg := Default()
	err := Decode("formdispatch.yaml", []byte("backend:\n  timeout: soon\n"), &cfg)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("expected duration error, got %v", err)
	}
}

func TestLoadAppliesEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "formdispatch.yaml")
	if err := os.WriteFile(path, []byte("mode: tui\nbackend:\n  url: http://file:8000\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(EnvBackendURL, " http://env:8000 ")
	t.Setenv(EnvMode, "WEB")
	t.Setenv(EnvListenAddr, "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.URL != "http://env:8000" || cfg.Mode != "web" || cfg.Path != path {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Web.ListenAddr != "127.0.0.1:8080" {
		t.Fatalf("blank env must not override, got %q", cfg.Web.ListenAddr)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "unknown mode", mutate: func(c *Config) { c.Mode = "gui" }, wantErr: "unknown mode"},
		{name: "missing backend", mutate: func(c *Config) { c.Backend.URL = " " }, wantErr: "backend url"},
		{name: "negative timeout", mutate: func(c *Config) { c.Backend.Timeout = Duration(-time.Second) }, wantErr: "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}
