package backends

import (
	"context"
	"fmt"

	"github.com/hearthd/hearth/pkg/engine"
)

// Layered composes the system and AUR package backends into the single
// logical backend the engine consumes. The AUR layer takes precedence when
// a name appears in both installed lists, and mutations are routed to the
// AUR helper for names the manifest marks as AUR-managed.
type Layered struct {
	system engine.PackageBackend
	aur    engine.PackageBackend

	// aurManaged holds the package names whose mutations go through the
	// AUR layer. Built from the manifest's per-package aur flag.
	aurManaged map[string]struct{}
}

// NewLayered composes the two package backends. The aur backend may be nil
// when no AUR helper is available; AUR-managed names then fail to install
// with a routing error instead of silently using the wrong backend.
func NewLayered(system, aur engine.PackageBackend, aurManaged map[string]struct{}) *Layered {
	if aurManaged == nil {
		aurManaged = make(map[string]struct{})
	}
	return &Layered{
		system:     system,
		aur:        aur,
		aurManaged: aurManaged,
	}
}

// ListInstalled merges the bulk installed lists of both layers. Membership
// is the union; a name present in both is attributed to the AUR layer.
func (l *Layered) ListInstalled(ctx context.Context) (map[string]struct{}, error) {
	installed, err := l.system.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("system package query failed: %w", err)
	}
	if l.aur == nil {
		return installed, nil
	}
	foreign, err := l.aur.ListInstalled(ctx)
	if err != nil {
		return nil, fmt.Errorf("aur package query failed: %w", err)
	}
	for name := range foreign {
		installed[name] = struct{}{}
	}
	return installed, nil
}

// Install routes the install to the AUR helper for AUR-managed names and to
// the system package manager otherwise.
func (l *Layered) Install(ctx context.Context, name string) error {
	if _, isAUR := l.aurManaged[name]; isAUR {
		if l.aur == nil {
			return fmt.Errorf("package %s is AUR-managed but no AUR helper is configured", name)
		}
		return l.aur.Install(ctx, name)
	}
	return l.system.Install(ctx, name)
}

// Remove routes the removal the same way installs are routed. When the AUR
// layer is unavailable the system package manager removes foreign packages
// just as well.
func (l *Layered) Remove(ctx context.Context, name string) error {
	if _, isAUR := l.aurManaged[name]; isAUR && l.aur != nil {
		return l.aur.Remove(ctx, name)
	}
	return l.system.Remove(ctx, name)
}
