// Package config loads and validates the runtime configuration for the
// hearth tool itself: logging, state database location, default execution
// mode, backend command overrides, and telemetry settings.
//
// The runtime configuration is distinct from the manifest: the manifest
// declares what the host should look like, while this package configures
// how hearth behaves while converging it. Configuration is read from a
// YAML file (default ~/.config/hearth/config.yaml) and every field has a
// working default, so a missing file is not an error.
package config
