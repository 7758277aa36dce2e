package manifest

import (
	"path/filepath"
	"strings"

	"github.com/hearthd/hearth/pkg/engine"
)

// Resolved is the manifest flattened for one specific host: engine entries
// in declaration order plus the routing table for AUR-managed packages.
type Resolved struct {
	// Entries is the desired-state set in declaration order: packages,
	// then links, then services; within each list the common section
	// comes before the host overlay.
	Entries []engine.Entry

	// AURManaged holds the package names whose mutations go through the
	// AUR helper.
	AURManaged map[string]struct{}
}

// Resolve flattens the manifest for the given hostname and home directory.
// Host overlay entries are appended after the common ones, except links,
// where a host link with the same resolved path overrides the common link
// in place (keeping its position). Duplicate declarations are left intact
// for the engine's model validation to reject.
func (m *Manifest) Resolve(hostname, home string) *Resolved {
	section := m.Section
	overlay, hasOverlay := m.Hosts[hostname]

	resolved := &Resolved{AURManaged: make(map[string]struct{})}

	packages := section.Packages
	services := section.Services
	links := mergeLinks(section.Links, nil)
	if hasOverlay {
		packages = append(append([]PackageEntry{}, packages...), overlay.Packages...)
		services = append(append([]ServiceEntry{}, services...), overlay.Services...)
		links = mergeLinks(section.Links, overlay.Links)
	}

	for _, pkg := range packages {
		resolved.Entries = append(resolved.Entries, engine.Entry{
			ID: engine.ID{Kind: engine.KindPackage, Name: pkg.Name},
			Desired: engine.DesiredState{
				Presence: presence(pkg.State),
			},
		})
		if pkg.AUR {
			resolved.AURManaged[pkg.Name] = struct{}{}
		}
	}

	for _, link := range links {
		desired := engine.DesiredState{Presence: presence(link.State)}
		if desired.Presence == engine.PresencePresent {
			desired.LinkSource = m.resolvePath(link.Source, home)
		}
		resolved.Entries = append(resolved.Entries, engine.Entry{
			ID:      engine.ID{Kind: engine.KindLinkedFile, Name: m.resolvePath(link.Path, home)},
			Desired: desired,
		})
	}

	for _, svc := range services {
		resolved.Entries = append(resolved.Entries, engine.Entry{
			ID: engine.ID{Kind: engine.KindServiceUnit, Name: svc.Unit},
			Desired: engine.DesiredState{
				Presence: presence(svc.State),
				Enabled:  svc.Enabled,
				Running:  svc.Running,
			},
		})
	}

	return resolved
}

// mergeLinks overlays host links onto common ones: same path replaces in
// place, new paths append in overlay order.
func mergeLinks(common, overlay []LinkEntry) []LinkEntry {
	merged := make([]LinkEntry, len(common))
	copy(merged, common)

	index := make(map[string]int, len(common))
	for i, link := range common {
		index[link.Path] = i
	}
	for _, link := range overlay {
		if i, ok := index[link.Path]; ok {
			merged[i] = link
			continue
		}
		index[link.Path] = len(merged)
		merged = append(merged, link)
	}
	return merged
}

func presence(state string) engine.Presence {
	if state == "absent" {
		return engine.PresenceAbsent
	}
	return engine.PresencePresent
}

// resolvePath expands a leading ~ to the home directory and anchors
// relative paths at the manifest directory.
func (m *Manifest) resolvePath(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(m.dir, path)
}

// resolveDir returns the absolute directory containing path, anchored at
// cwd when path is relative.
func resolveDir(path, cwd string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}
	return filepath.Dir(filepath.Clean(path))
}
