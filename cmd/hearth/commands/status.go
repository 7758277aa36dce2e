package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hearthd/hearth/pkg/engine"
)

func newStatusCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show each declared resource against the host",
		Long: `Observe every declared resource and report where the host diverges
from the manifest. Resources with no pending actions are in sync;
a linked-file path occupied by something that is not a symlink is
reported as a conflict.`,
		Example: `  # Show resource status for the default manifest
  hearth status

  # Machine-readable output
  hearth status --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, runtimeOptions{
				loadManifest: true,
				openBackends: true,
			})
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			observer := engine.NewObserver(rt.backends, rt.logger)
			snapshot := observer.Observe(ctx, rt.model)
			actions := engine.Diff(rt.model, snapshot)

			pending := make(map[engine.ID][]string)
			for _, action := range actions {
				pending[action.Resource] = append(pending[action.Resource], string(action.Op))
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(statusRows(rt.model, snapshot, pending))
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tNAME\tDESIRED\tOBSERVED\tSTATUS")
			for _, row := range statusRows(rt.model, snapshot, pending) {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					row.Kind, row.Name, row.Desired, row.Observed, row.Status)
			}
			return w.Flush()
		},
	}

	return cmd
}

type statusRow struct {
	Kind     string `json:"kind"`
	Name     string `json:"name"`
	Desired  string `json:"desired"`
	Observed string `json:"observed"`
	Status   string `json:"status"`
}

func statusRows(model *engine.Model, snapshot engine.Snapshot, pending map[engine.ID][]string) []statusRow {
	rows := make([]statusRow, 0, model.Len())
	for _, entry := range model.Entries() {
		observed := snapshot[entry.ID]

		status := "in sync"
		switch {
		case observed.Conflict:
			status = "conflict"
		case len(pending[entry.ID]) > 0:
			status = strings.Join(pending[entry.ID], ", ")
		}

		rows = append(rows, statusRow{
			Kind:     string(entry.ID.Kind),
			Name:     entry.ID.Name,
			Desired:  describeDesired(entry.Desired),
			Observed: describeObserved(observed),
			Status:   status,
		})
	}
	return rows
}

func describeDesired(d engine.DesiredState) string {
	if d.Presence == engine.PresenceAbsent {
		return "absent"
	}
	parts := []string{"present"}
	if d.Enabled {
		parts = append(parts, "enabled")
	}
	if d.Running {
		parts = append(parts, "running")
	}
	return strings.Join(parts, ", ")
}

func describeObserved(o engine.ObservedState) string {
	if o.Conflict {
		return "occupied by non-symlink"
	}
	parts := []string{string(o.Presence)}
	if o.Enabled != "" && o.Enabled != engine.FlagUnknown {
		if o.Enabled == engine.FlagOn {
			parts = append(parts, "enabled")
		} else {
			parts = append(parts, "disabled")
		}
	}
	if o.Running != "" && o.Running != engine.FlagUnknown {
		if o.Running == engine.FlagOn {
			parts = append(parts, "running")
		} else {
			parts = append(parts, "stopped")
		}
	}
	return strings.Join(parts, ", ")
}
