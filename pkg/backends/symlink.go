package backends

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hearthd/hearth/pkg/engine"
)

// Symlinks is the filesystem link backend. It only ever creates and removes
// symlinks; anything else occupying a target path is a conflict the user
// must resolve, never something to delete.
type Symlinks struct{}

// NewSymlinks creates the filesystem link backend.
func NewSymlinks() *Symlinks {
	return &Symlinks{}
}

// ResolveLink inspects path without mutating anything.
func (s *Symlinks) ResolveLink(_ context.Context, path string) (engine.LinkProbe, error) {
	info, err := os.Lstat(path)
	if os.IsNotExist(err) {
		return engine.LinkProbe{}, nil
	}
	if err != nil {
		return engine.LinkProbe{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return engine.LinkProbe{Exists: true, Occupied: true}, nil
	}
	source, err := os.Readlink(path)
	if err != nil {
		return engine.LinkProbe{}, fmt.Errorf("failed to read link %s: %w", path, err)
	}
	return engine.LinkProbe{Exists: true, Source: source}, nil
}

// CreateLink makes path a symlink to source. An existing symlink with a
// different target is replaced; a non-symlink occupant yields a link
// conflict without touching the occupant. Parent directories are created as
// needed.
func (s *Symlinks) CreateLink(ctx context.Context, path, source string) error {
	probe, err := s.ResolveLink(ctx, path)
	if err != nil {
		return err
	}
	switch {
	case probe.Occupied:
		return engine.NewError(engine.ErrLinkConflict,
			fmt.Sprintf("%s exists and is not a symlink", path), nil)
	case probe.Exists:
		if probe.Source == source {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove stale link %s: %w", path, err)
		}
	default:
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create parent directory of %s: %w", path, err)
		}
	}
	if err := os.Symlink(source, path); err != nil {
		return fmt.Errorf("failed to create link %s -> %s: %w", path, source, err)
	}
	return nil
}

// RemoveLink removes the symlink at path. A missing path is already
// converged; a non-symlink occupant is a conflict, not ours to remove.
func (s *Symlinks) RemoveLink(ctx context.Context, path string) error {
	probe, err := s.ResolveLink(ctx, path)
	if err != nil {
		return err
	}
	if !probe.Exists {
		return nil
	}
	if probe.Occupied {
		return engine.NewError(engine.ErrLinkConflict,
			fmt.Sprintf("%s exists and is not a symlink", path), nil)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove link %s: %w", path, err)
	}
	return nil
}
