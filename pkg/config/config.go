package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hearthd/hearth/pkg/telemetry"
)

// Config is the runtime configuration for hearth.
type Config struct {
	// Manifest is the default manifest path used when the --manifest
	// flag is not given.
	Manifest string `yaml:"manifest" validate:"required"`

	// StatePath is the SQLite database file holding run history.
	StatePath string `yaml:"state_path" validate:"required"`

	// Mode is the default execution mode (fail-fast, best-effort).
	Mode string `yaml:"mode" validate:"oneof=fail-fast best-effort"`

	// Logging configures structured log output.
	Logging LoggingConfig `yaml:"logging"`

	// Backends overrides the commands used to manage host state.
	Backends BackendsConfig `yaml:"backends"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing configures pipeline span export.
	Tracing TracingConfig `yaml:"tracing"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`
}

// BackendsConfig overrides the external commands hearth shells out to.
// Empty fields keep the built-in defaults; AURHelper empty means
// auto-detect (paru, then yay), "none" disables AUR support entirely.
type BackendsConfig struct {
	PacmanBin    string `yaml:"pacman_bin"`
	AURHelper    string `yaml:"aur_helper"`
	SystemctlBin string `yaml:"systemctl_bin"`
}

// MetricsConfig configures the optional metrics HTTP endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// TracingConfig configures span export for plan and reconcile runs.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Manifest:  "~/.config/hearth/manifest.toml",
		StatePath: "~/.local/state/hearth/hearth.db",
		Mode:      "fail-fast",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  "127.0.0.1:9464",
		},
	}
}

// DefaultPath returns the default config file location, honoring
// XDG_CONFIG_HOME when set.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "hearth", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "hearth.yaml"
	}
	return filepath.Join(home, ".config", "hearth", "config.yaml")
}

// Load reads the configuration from path. A missing file yields the
// defaults; a present but malformed or invalid file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.finalize(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes configuration from raw YAML, layered over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) finalize() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	c.Manifest = expandHome(c.Manifest, home)
	c.StatePath = expandHome(c.StatePath, home)

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// Telemetry builds the telemetry configuration implied by the runtime
// config and the given build version.
func (c *Config) Telemetry(version string) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceVersion = version
	tc.Logging.Level = c.Logging.Level
	tc.Logging.Format = c.Logging.Format
	tc.Tracing.Enabled = c.Tracing.Enabled
	tc.Metrics.Enabled = c.Metrics.Enabled
	tc.Metrics.ListenAddress = c.Metrics.Listen
	return tc
}
