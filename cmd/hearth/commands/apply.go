package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/hearthd/hearth/pkg/engine"
)

func newApplyCommand(version string) *cobra.Command {
	var (
		dryRun     bool
		bestEffort bool
		watch      bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Converge the host toward the manifest",
		Long: `Observe the host, compute the plan, and execute it.

Execution is sequential in plan order. Under the default fail-fast mode
the first failed action aborts the run and the remaining actions are
reported as skipped; under --best-effort every action is attempted and
failures are collected. A dry run computes and records the identical
plan without invoking any mutating backend call.`,
		Example: `  # Converge the host
  hearth apply

  # Show what would happen without changing anything
  hearth apply --dry-run

  # Keep going past failures
  hearth apply --best-effort

  # Re-apply whenever the manifest changes
  hearth apply --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx, version, runtimeOptions{
				loadManifest: true,
				openBackends: true,
				openStore:    true,
			})
			if err != nil {
				return err
			}
			defer rt.close(ctx)

			if err := rt.metrics.StartServer(); err != nil {
				return err
			}

			opts := engine.Options{Mode: modeFor(rt, bestEffort), DryRun: dryRun}

			if watch {
				return watchAndApply(ctx, rt, opts)
			}
			return applyOnce(ctx, rt, opts)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute and report the plan without changing the host")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "attempt every action instead of aborting on the first failure")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "re-apply whenever the manifest file changes")

	return cmd
}

func modeFor(rt *runtime, bestEffort bool) engine.Mode {
	if bestEffort {
		return engine.ModeBestEffort
	}
	return engine.Mode(rt.cfg.Mode)
}

func applyOnce(ctx context.Context, rt *runtime, opts engine.Options) error {
	report, err := rt.reconciler().Reconcile(ctx, rt.model, opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			return err
		}
	} else {
		printReport(report)
	}

	switch report.Status {
	case engine.RunAborted:
		return fmt.Errorf("run aborted after a failed action")
	case engine.RunCompletedWithFailures:
		return fmt.Errorf("run completed with failures")
	}
	return nil
}

// watchAndApply re-runs the pipeline whenever the manifest file changes.
// The manifest's directory is watched rather than the file itself because
// editors typically replace the file on save.
func watchAndApply(ctx context.Context, rt *runtime, opts engine.Options) error {
	path := manifestPath
	if path == "" {
		path = rt.cfg.Manifest
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch manifest directory: %w", err)
	}

	if err := applyOnce(ctx, rt, opts); err != nil {
		rt.logger.Error().Err(err).Msg("apply failed")
	}

	// Debounce rapid write bursts from editors into one run
	const settle = 500 * time.Millisecond
	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(settle)
				pending = timer.C
			} else {
				timer.Reset(settle)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rt.logger.Warn().Err(err).Msg("watch error")

		case <-pending:
			timer = nil
			pending = nil
			rt.logger.Info().Str("manifest", abs).Msg("manifest changed, re-applying")
			if err := rt.loadManifest(); err != nil {
				rt.logger.Error().Err(err).Msg("manifest reload failed")
				continue
			}
			if err := rt.openBackends(); err != nil {
				rt.logger.Error().Err(err).Msg("backend setup failed")
				continue
			}
			if err := applyOnce(ctx, rt, opts); err != nil {
				rt.logger.Error().Err(err).Msg("apply failed")
			}
		}
	}
}

func printReport(report *engine.Report) {
	if len(report.Results) == 0 {
		fmt.Println("Nothing to do: host is in sync.")
		return
	}

	if report.DryRun {
		fmt.Printf("Dry run %s: %d actions planned, none executed.\n\n",
			report.RunID, len(report.Results))
	} else {
		applied, skipped, failed := report.Counts()
		fmt.Printf("Run %s (%s): %d applied, %d skipped, %d failed.\n\n",
			report.RunID, report.Status, applied, skipped, failed)
	}

	for _, result := range report.Results {
		marker := "+"
		detail := ""
		switch result.Status {
		case engine.StatusSkipped:
			marker = "-"
			detail = fmt.Sprintf(" (%s)", result.Reason)
		case engine.StatusFailed:
			marker = "!"
			detail = fmt.Sprintf(" (%v)", result.Err)
		}
		fmt.Printf("  %s %s%s\n", marker, result.Action, detail)
	}
}
