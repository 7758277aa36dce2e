package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hearthd/hearth/pkg/engine"
	"github.com/hearthd/hearth/pkg/manifest"
)

func newValidateCommand(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [manifest]",
		Short: "Validate a manifest without touching the host",
		Long: `Parse the manifest, resolve the host overlay, and validate the
resulting resource set.

This command checks:
  - TOML syntax and field constraints
  - Duplicate resource declarations
  - Linked-file targets are absolute paths
  - Linked-file sources are absolute paths to existing files`,
		Example: `  # Validate the configured manifest
  hearth validate

  # Validate a specific file
  hearth validate ./manifest.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := manifestPath
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				rt, err := newRuntime(cmd.Context(), version, runtimeOptions{})
				if err != nil {
					return err
				}
				path = rt.cfg.Manifest
			}

			m, err := manifest.Load(path)
			if err != nil {
				return err
			}

			hostname, err := os.Hostname()
			if err != nil {
				return fmt.Errorf("failed to determine hostname: %w", err)
			}
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to resolve home directory: %w", err)
			}

			resolved := m.Resolve(hostname, home)
			model, err := engine.NewModel(resolved.Entries)
			if err != nil {
				return err
			}

			fmt.Printf("%s is valid: %d resources (%d AUR-managed).\n",
				path, model.Len(), len(resolved.AURManaged))
			return nil
		},
	}

	return cmd
}
