package backends

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hearthd/hearth/pkg/engine"
)

// Systemd is the service backend, shelling out to systemctl.
type Systemd struct {
	bin string
}

// NewSystemd creates a systemd backend. An empty bin defaults to "systemctl".
func NewSystemd(bin string) *Systemd {
	if bin == "" {
		bin = "systemctl"
	}
	return &Systemd{bin: bin}
}

// Query returns the enabled/running state of the named unit. systemctl's
// state queries exit non-zero for negative answers, so exit status is
// ignored and only the printed state is interpreted; an unrecognized state
// maps to the unknown flag rather than a guess.
func (s *Systemd) Query(ctx context.Context, unit string) (engine.ServiceStatus, error) {
	loadState, err := s.output(ctx, "show", unit, "--property=LoadState", "--value")
	if err != nil {
		return engine.ServiceStatus{}, fmt.Errorf("failed to query unit %s: %w", unit, err)
	}
	if loadState == "not-found" {
		return engine.ServiceStatus{
			Exists:  false,
			Enabled: engine.FlagOff,
			Running: engine.FlagOff,
		}, nil
	}

	enabled, _ := s.output(ctx, "is-enabled", unit)
	running, _ := s.output(ctx, "is-active", unit)
	return engine.ServiceStatus{
		Exists:  true,
		Enabled: parseEnabledState(enabled),
		Running: parseActiveState(running),
	}, nil
}

// Enable marks the unit to start at boot.
func (s *Systemd) Enable(ctx context.Context, unit string) error {
	return s.run(ctx, "enable", unit)
}

// Disable unmarks the unit from starting at boot.
func (s *Systemd) Disable(ctx context.Context, unit string) error {
	return s.run(ctx, "disable", unit)
}

// Start starts the unit now.
func (s *Systemd) Start(ctx context.Context, unit string) error {
	return s.run(ctx, "start", unit)
}

// Stop stops the unit now.
func (s *Systemd) Stop(ctx context.Context, unit string) error {
	return s.run(ctx, "stop", unit)
}

func (s *Systemd) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, s.bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w: %s",
			s.bin, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// output runs a query subcommand and returns its trimmed stdout. The exit
// status is intentionally not part of the result.
func (s *Systemd) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, s.bin, args...)
	output, err := cmd.Output()
	state := strings.TrimSpace(string(output))
	if state == "" && err != nil {
		return "", err
	}
	return state, nil
}

func parseEnabledState(state string) engine.Flag {
	switch state {
	case "enabled", "enabled-runtime":
		return engine.FlagOn
	case "disabled", "static", "indirect", "masked":
		return engine.FlagOff
	default:
		return engine.FlagUnknown
	}
}

func parseActiveState(state string) engine.Flag {
	switch state {
	case "active", "activating", "reloading":
		return engine.FlagOn
	case "inactive", "deactivating", "failed":
		return engine.FlagOff
	default:
		return engine.FlagUnknown
	}
}
