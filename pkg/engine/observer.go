package engine

import (
	"context"

	"github.com/rs/zerolog"
)

// Observer snapshots the current host state for the resources in a model.
// It is strictly read-only: no mutating backend call is ever issued.
type Observer struct {
	backends Backends
	logger   zerolog.Logger
}

// NewObserver creates an observer over the given backends.
func NewObserver(backends Backends, logger zerolog.Logger) *Observer {
	return &Observer{
		backends: backends,
		logger:   logger.With().Str("component", "observer").Logger(),
	}
}

// Observe returns the observed state of every resource in the model. A
// backend query failure downgrades the affected resources to
// PresenceUnknown and is logged as an observation failure; it never aborts
// the pass and is never treated as absent.
func (o *Observer) Observe(ctx context.Context, model *Model) Snapshot {
	snapshot := make(Snapshot, model.Len())

	// One bulk query covers every package resource.
	installed, pkgErr := o.backends.Packages.ListInstalled(ctx)
	if pkgErr != nil {
		o.logger.Warn().Err(pkgErr).Msg("package list query failed, observing packages as unknown")
	}

	for _, entry := range model.Entries() {
		switch entry.ID.Kind {
		case KindPackage:
			snapshot[entry.ID] = o.observePackage(entry.ID, installed, pkgErr)
		case KindLinkedFile:
			snapshot[entry.ID] = o.observeLink(ctx, entry.ID)
		case KindServiceUnit:
			snapshot[entry.ID] = o.observeService(ctx, entry.ID)
		}
	}

	return snapshot
}

func (o *Observer) observePackage(id ID, installed map[string]struct{}, pkgErr error) ObservedState {
	if pkgErr != nil {
		return ObservedState{Presence: PresenceUnknown}
	}
	if _, ok := installed[id.Name]; ok {
		return ObservedState{Presence: PresencePresent}
	}
	return ObservedState{Presence: PresenceAbsent}
}

func (o *Observer) observeLink(ctx context.Context, id ID) ObservedState {
	probe, err := o.backends.Files.ResolveLink(ctx, id.Name)
	if err != nil {
		o.logger.Warn().Err(err).Str("resource", id.String()).
			Msg("link inspection failed, observing as unknown")
		return ObservedState{Presence: PresenceUnknown}
	}
	switch {
	case !probe.Exists:
		return ObservedState{Presence: PresenceAbsent}
	case probe.Occupied:
		// A plain file or directory at the target path is neither the
		// wanted link nor absent. It must not be deleted; surface it
		// as a conflict.
		return ObservedState{Presence: PresenceUnknown, Conflict: true}
	default:
		return ObservedState{Presence: PresencePresent, LinkSource: probe.Source}
	}
}

func (o *Observer) observeService(ctx context.Context, id ID) ObservedState {
	status, err := o.backends.Services.Query(ctx, id.Name)
	if err != nil {
		o.logger.Warn().Err(err).Str("resource", id.String()).
			Msg("service query failed, observing as unknown")
		return ObservedState{
			Presence: PresenceUnknown,
			Enabled:  FlagUnknown,
			Running:  FlagUnknown,
		}
	}
	presence := PresencePresent
	if !status.Exists {
		presence = PresenceAbsent
	}
	return ObservedState{
		Presence: presence,
		Enabled:  status.Enabled,
		Running:  status.Running,
	}
}
