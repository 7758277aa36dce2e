package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCommand(version string) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past reconciliation runs",
		Long: `List the most recent runs recorded in the state database, or show
the per-action results of one run with --run.`,
		Example: `  # List the last 20 runs
  hearth history

  # Show every action of one run
  hearth history --run 6f1c2a8e-...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, runtimeOptions{openStore: true})
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if runID != "" {
				return showRun(cmd, rt, runID)
			}

			runs, err := rt.store.ListRuns(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tSTARTED\tMODE\tSTATUS\tAPPLIED\tSKIPPED\tFAILED")
			for _, run := range runs {
				mode := run.Mode
				if run.DryRun {
					mode += " (dry-run)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
					run.ID,
					run.StartedAt.Local().Format(time.RFC3339),
					mode,
					run.Status,
					run.Applied,
					run.Skipped,
					run.Failed,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show the action results of one run")

	return cmd
}

func showRun(cmd *cobra.Command, rt *runtime, runID string) error {
	ctx := cmd.Context()

	run, err := rt.store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	actions, err := rt.store.ListActions(ctx, runID)
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Run     any `json:"run"`
			Actions any `json:"actions"`
		}{run, actions})
	}

	fmt.Printf("Run %s (%s, %s): started %s, finished %s.\n\n",
		run.ID, run.Mode, run.Status,
		run.StartedAt.Local().Format(time.RFC3339),
		run.CompletedAt.Local().Format(time.RFC3339),
	)

	w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tOP\tRESOURCE\tSTATUS\tDETAIL")
	for _, action := range actions {
		detail := action.Reason
		if action.Error != "" {
			detail = action.Error
		}
		fmt.Fprintf(w, "%d\t%s\t%s/%s\t%s\t%s\n",
			action.Seq+1,
			action.Op,
			action.ResourceKind,
			action.ResourceName,
			action.Status,
			detail,
		)
	}
	return w.Flush()
}
