package engine

import (
	"fmt"
	"os"
	"path/filepath"
)

// Kind identifies one of the manageable resource kinds.
type Kind string

const (
	// KindPackage is a package installed through the package manager.
	KindPackage Kind = "package"

	// KindLinkedFile is a symlink that should exist at a target path.
	KindLinkedFile Kind = "file"

	// KindServiceUnit is a service-manager unit with enabled/running state.
	KindServiceUnit Kind = "service"
)

// Validate checks that the kind is one of the known resource kinds.
func (k Kind) Validate() error {
	switch k {
	case KindPackage, KindLinkedFile, KindServiceUnit:
		return nil
	default:
		return fmt.Errorf("invalid resource kind: %s", k)
	}
}

// ID is the primary key of a resource across the whole model: a kind plus a
// kind-specific name (package name, link target path, unit name).
type ID struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name"`
}

// String returns the canonical "kind/name" form used in logs and reports.
func (id ID) String() string {
	return string(id.Kind) + "/" + id.Name
}

// Presence is the existence component of a resource state.
type Presence string

const (
	// PresencePresent means the resource exists on the host.
	PresencePresent Presence = "present"

	// PresenceAbsent means the resource does not exist on the host.
	PresenceAbsent Presence = "absent"

	// PresenceUnknown means the backend query failed or the observation
	// was ambiguous. Never treated as absent.
	PresenceUnknown Presence = "unknown"
)

// Flag is a tri-state boolean for observed service properties, where a
// failed query yields FlagUnknown rather than a guess.
type Flag string

const (
	// FlagOn means the property is set (enabled, running).
	FlagOn Flag = "on"

	// FlagOff means the property is unset (disabled, stopped).
	FlagOff Flag = "off"

	// FlagUnknown means the property could not be determined.
	FlagUnknown Flag = "unknown"
)

// flagFor converts a desired boolean into its Flag form.
func flagFor(b bool) Flag {
	if b {
		return FlagOn
	}
	return FlagOff
}

// DesiredState describes what the manifest wants for one resource.
//
// Presence is present or absent, never unknown. LinkSource is set only for
// linked files that should be present. Enabled and Running are meaningful
// only for service units that should be present; an absent service unit is
// desired disabled and stopped.
type DesiredState struct {
	Presence   Presence `json:"presence"`
	LinkSource string   `json:"link_source,omitempty"`
	Enabled    bool     `json:"enabled,omitempty"`
	Running    bool     `json:"running,omitempty"`
}

// ObservedState describes what the observer found for one resource.
//
// LinkSource holds the resolved symlink target when the path is a symlink.
// Conflict is set when a non-symlink occupies a linked-file target path; the
// presence is then unknown, because the path is neither absent nor the
// wanted link, and the occupant must never be removed automatically.
type ObservedState struct {
	Presence   Presence `json:"presence"`
	LinkSource string   `json:"link_source,omitempty"`
	Conflict   bool     `json:"conflict,omitempty"`
	Enabled    Flag     `json:"enabled,omitempty"`
	Running    Flag     `json:"running,omitempty"`
}

// Snapshot is the observed state of every resource in a model, taken once
// per run before planning.
type Snapshot map[ID]ObservedState

// Entry pairs a resource identity with its desired state, in manifest
// declaration order.
type Entry struct {
	ID      ID           `json:"id"`
	Desired DesiredState `json:"desired"`
}

// Model is the immutable, validated desired-state set for one run.
type Model struct {
	entries []Entry
	index   map[ID]int
}

// NewModel validates the given entries and builds a model. Validation fails
// with an ErrInvalidManifest error when a name is empty, a resource is
// declared twice, or a linked-file source is not an absolute path to an
// existing file.
func NewModel(entries []Entry) (*Model, error) {
	index := make(map[ID]int, len(entries))
	for i, entry := range entries {
		if err := entry.ID.Kind.Validate(); err != nil {
			return nil, NewError(ErrInvalidManifest, "unknown resource kind", err)
		}
		if entry.ID.Name == "" {
			return nil, NewError(ErrInvalidManifest,
				fmt.Sprintf("%s resource with empty name", entry.ID.Kind), nil)
		}
		if _, dup := index[entry.ID]; dup {
			return nil, NewError(ErrInvalidManifest, "duplicate resource", nil).
				WithResource(entry.ID.String())
		}
		if err := validateDesired(entry.ID, entry.Desired); err != nil {
			return nil, err
		}
		index[entry.ID] = i
	}

	model := &Model{
		entries: make([]Entry, len(entries)),
		index:   index,
	}
	copy(model.entries, entries)
	return model, nil
}

// validateDesired checks the kind-specific desired state constraints.
func validateDesired(id ID, desired DesiredState) error {
	switch desired.Presence {
	case PresencePresent, PresenceAbsent:
	default:
		return NewError(ErrInvalidManifest,
			fmt.Sprintf("desired presence must be present or absent, got %q", desired.Presence), nil).
			WithResource(id.String())
	}

	if id.Kind != KindLinkedFile {
		return nil
	}

	if !filepath.IsAbs(id.Name) {
		return NewError(ErrInvalidManifest, "link target path is not absolute", nil).
			WithResource(id.String())
	}
	if desired.Presence != PresencePresent {
		return nil
	}
	if !filepath.IsAbs(desired.LinkSource) {
		return NewError(ErrInvalidManifest, "link source path is not absolute", nil).
			WithResource(id.String())
	}
	if _, err := os.Stat(desired.LinkSource); err != nil {
		return NewError(ErrInvalidManifest,
			fmt.Sprintf("link source %s does not exist", desired.LinkSource), err).
			WithResource(id.String())
	}
	return nil
}

// Entries returns the model entries in declaration order. The returned
// slice is a copy; the model itself never changes after construction.
func (m *Model) Entries() []Entry {
	entries := make([]Entry, len(m.entries))
	copy(entries, m.entries)
	return entries
}

// Len returns the number of resources in the model.
func (m *Model) Len() int {
	return len(m.entries)
}

// Desired returns the desired state for the given resource.
func (m *Model) Desired(id ID) (DesiredState, bool) {
	i, ok := m.index[id]
	if !ok {
		return DesiredState{}, false
	}
	return m.entries[i].Desired, true
}
