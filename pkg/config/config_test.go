package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != "fail-fast" {
		t.Errorf("expected fail-fast default, got %s", cfg.Mode)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if strings.HasPrefix(cfg.StatePath, "~") {
		t.Errorf("expected expanded state path, got %s", cfg.StatePath)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
manifest: /etc/hearth/manifest.toml
state_path: /var/lib/hearth/hearth.db
mode: best-effort
logging:
  level: debug
  format: json
backends:
  aur_helper: yay
metrics:
  enabled: true
  listen: 127.0.0.1:9999
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Mode != "best-effort" {
		t.Errorf("expected best-effort, got %s", cfg.Mode)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Backends.AURHelper != "yay" {
		t.Errorf("expected yay, got %s", cfg.Backends.AURHelper)
	}
	if cfg.Manifest != "/etc/hearth/manifest.toml" {
		t.Errorf("unexpected manifest path: %s", cfg.Manifest)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != "127.0.0.1:9999" {
		t.Errorf("unexpected metrics: %+v", cfg.Metrics)
	}
}

func TestParsePartialKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte("mode: best-effort\n"))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Mode != "best-effort" {
		t.Errorf("expected best-effort, got %s", cfg.Mode)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level, got %s", cfg.Logging.Level)
	}
}

func TestParseRejectsInvalidMode(t *testing.T) {
	if _, err := Parse([]byte("mode: yolo\n")); err == nil {
		t.Fatal("expected validation error for invalid mode")
	}
}

func TestParseRejectsInvalidLogLevel(t *testing.T) {
	if _, err := Parse([]byte("logging:\n  level: loud\n")); err == nil {
		t.Fatal("expected validation error for invalid log level")
	}
}

func TestExpandHome(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"~", "/home/u"},
		{"~/x/y", "/home/u/x/y"},
		{"/abs/path", "/abs/path"},
		{"rel/path", "rel/path"},
	}
	for _, tc := range cases {
		if got := expandHome(tc.in, "/home/u"); got != tc.want {
			t.Errorf("expandHome(%q): expected %q, got %q", tc.in, tc.want, got)
		}
	}
}

func TestTelemetryMapping(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = "json"
	cfg.Tracing.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Metrics.Listen = ":9464"

	tc := cfg.Telemetry("1.2.3")
	if tc.ServiceVersion != "1.2.3" {
		t.Errorf("expected version 1.2.3, got %s", tc.ServiceVersion)
	}
	if tc.Logging.Level != "warn" || tc.Logging.Format != "json" {
		t.Errorf("unexpected logging mapping: %+v", tc.Logging)
	}
	if !tc.Tracing.Enabled || !tc.Metrics.Enabled || tc.Metrics.ListenAddress != ":9464" {
		t.Errorf("unexpected telemetry mapping: %+v", tc)
	}
}
