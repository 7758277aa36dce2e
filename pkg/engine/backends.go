package engine

import "context"

// PackageBackend is the capability contract for the package manager. The
// engine sees one logical backend; composing the system and AUR package
// managers (with AUR precedence on name collision) is the backend's concern.
type PackageBackend interface {
	// ListInstalled returns the names of all installed packages in one
	// bulk query. Preferred over per-package queries to bound latency.
	ListInstalled(ctx context.Context) (map[string]struct{}, error)

	// Install installs the named package, delegating dependency
	// resolution to the package manager.
	Install(ctx context.Context, name string) error

	// Remove removes the named package.
	Remove(ctx context.Context, name string) error
}

// LinkProbe is the result of inspecting a linked-file target path.
type LinkProbe struct {
	// Exists is false when nothing occupies the path.
	Exists bool

	// Occupied is true when a non-symlink occupies the path. Such an
	// occupant is never deleted by the engine.
	Occupied bool

	// Source is the resolved symlink target when the path is a symlink.
	Source string
}

// FileBackend is the capability contract for symlink management.
type FileBackend interface {
	// ResolveLink inspects the given path without mutating anything.
	ResolveLink(ctx context.Context, path string) (LinkProbe, error)

	// CreateLink makes path a symlink to source, replacing an existing
	// symlink with a different target. It must refuse, with a link
	// conflict error, to replace anything that is not a symlink.
	CreateLink(ctx context.Context, path, source string) error

	// RemoveLink removes the symlink at path. It must refuse to remove
	// anything that is not a symlink.
	RemoveLink(ctx context.Context, path string) error
}

// ServiceStatus is the observed state of one service unit. A flag is
// FlagUnknown when its query failed.
type ServiceStatus struct {
	// Exists is false when the unit is not known to the service manager.
	Exists bool

	// Enabled reports whether the unit starts at boot.
	Enabled Flag

	// Running reports whether the unit is currently active.
	Running Flag
}

// ServiceBackend is the capability contract for the service manager.
type ServiceBackend interface {
	// Query returns the enabled/running state of the named unit.
	Query(ctx context.Context, unit string) (ServiceStatus, error)

	// Enable marks the unit to start at boot.
	Enable(ctx context.Context, unit string) error

	// Disable unmarks the unit from starting at boot.
	Disable(ctx context.Context, unit string) error

	// Start starts the unit now.
	Start(ctx context.Context, unit string) error

	// Stop stops the unit now.
	Stop(ctx context.Context, unit string) error
}

// Backends bundles the three backend capabilities one run reconciles against.
type Backends struct {
	Packages PackageBackend
	Files    FileBackend
	Services ServiceBackend
}
