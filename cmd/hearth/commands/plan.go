package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearthd/hearth/pkg/engine"
)

func newPlanCommand(version string) *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would change",
		Long: `Compute the ordered action plan without touching the host.

The plan:
  - Observes the current state of every declared resource
  - Diffs observed state against the manifest
  - Orders actions so teardown runs first, apply second, each in
    dependency order (packages before files before services, reversed
    for teardown)`,
		Example: `  # Show the plan for the default manifest
  hearth plan

  # Plan a specific manifest and save the result
  hearth plan --manifest ./manifest.toml --out plan.json`,
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

			plan, err := rt.reconciler().Plan(ctx, rt.model)
			if err != nil {
				return err
			}

			if outFile != "" {
				data, err := json.MarshalIndent(plan, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode plan: %w", err)
				}
				if err := os.WriteFile(outFile, data, 0o644); err != nil {
					return fmt.Errorf("failed to write plan: %w", err)
				}
			}

			if jsonOutput {
				return json.NewEncoder(os.Stdout).Encode(plan)
			}
			printPlan(plan)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the plan as JSON to this file")

	return cmd
}

func printPlan(plan *engine.Plan) {
	if plan.Empty() {
		fmt.Printf("Nothing to do: %d resources in sync.\n", plan.Summary.InSync)
		return
	}

	fmt.Printf("Plan %s: %d to apply, %d to tear down, %d in sync.\n\n",
		plan.ID, plan.Summary.ToApply, plan.Summary.ToTeardown, plan.Summary.InSync)
	for i, action := range plan.Actions {
		fmt.Printf("  %2d. [%s] %s\n", i+1, action.Resource.Kind, action)
	}
}
