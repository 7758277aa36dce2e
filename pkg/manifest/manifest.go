// Package manifest loads and resolves the user-authored desired-state
// manifest: a TOML file declaring the packages, linked files and service
// units the host should have. Entries may be declared once for every host
// or under a per-hostname section; the resolved result feeds the engine's
// resource model.
package manifest

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// PackageEntry declares one package.
type PackageEntry struct {
	// Name is the package name.
	Name string `toml:"name" validate:"required"`

	// State is "present" (default) or "absent".
	State string `toml:"state,omitempty" validate:"omitempty,oneof=present absent"`

	// AUR routes installs and removals through the AUR helper.
	AUR bool `toml:"aur,omitempty"`
}

// LinkEntry declares one symlink that should exist.
type LinkEntry struct {
	// Path is where the link lives. A leading ~ resolves to the home
	// directory; a relative path resolves against the manifest
	// directory.
	Path string `toml:"path" validate:"required"`

	// Source is what the link points at, resolved the same way. Unused
	// when State is absent.
	Source string `toml:"source,omitempty"`

	// State is "present" (default) or "absent".
	State string `toml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

// ServiceEntry declares one service unit.
type ServiceEntry struct {
	// Unit is the service unit name.
	Unit string `toml:"unit" validate:"required"`

	// State is "present" (default) or "absent". An absent unit is
	// desired disabled and stopped.
	State string `toml:"state,omitempty" validate:"omitempty,oneof=present absent"`

	// Enabled is whether the unit should start at boot.
	Enabled bool `toml:"enabled,omitempty"`

	// Running is whether the unit should be active now.
	Running bool `toml:"running,omitempty"`
}

// Section is one group of declarations: the common section or one host
// overlay.
type Section struct {
	Packages []PackageEntry `toml:"packages,omitempty" validate:"dive"`
	Links    []LinkEntry    `toml:"links,omitempty" validate:"dive"`
	Services []ServiceEntry `toml:"services,omitempty" validate:"dive"`
}

// Manifest is the parsed manifest file: common declarations plus optional
// per-hostname overlays. Host overlays union with the common section;
// a host link whose path matches a common link overrides it in place.
type Manifest struct {
	Section

	// Hosts maps a hostname to its overlay section.
	Hosts map[string]Section `toml:"hosts,omitempty"`

	// dir is the directory of the manifest file, for resolving relative
	// paths.
	dir string
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses manifest content. The path is used only to resolve relative
// link paths later.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}

	validate := validator.New()
	if err := validate.Struct(&m.Section); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	for host, section := range m.Hosts {
		if err := validate.Struct(&section); err != nil {
			return nil, fmt.Errorf("invalid manifest %s, host %s: %w", path, host, err)
		}
	}

	m.dir = manifestDir(path)
	return &m, nil
}

func manifestDir(path string) string {
	if path == "" {
		return "."
	}
	abs, err := os.Getwd()
	if err != nil {
		abs = "."
	}
	return resolveDir(path, abs)
}
