package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hearthd/hearth/pkg/config"
	"github.com/hearthd/hearth/pkg/stores"
)

const starterConfig = `# hearth runtime configuration
manifest: ~/.config/hearth/manifest.toml
state_path: ~/.local/state/hearth/hearth.db
mode: fail-fast

logging:
  level: info
  format: console

backends:
  # pacman_bin: pacman
  # aur_helper: paru      # empty auto-detects; "none" disables AUR support
  # systemctl_bin: systemctl

metrics:
  enabled: false
  listen: 127.0.0.1:9464

tracing:
  enabled: false
`

const starterManifest = `# hearth manifest: the desired state of this host

[[packages]]
name = "git"
state = "present"

# [[packages]]
# name = "paru-bin"
# state = "present"
# aur = true

# [[links]]
# path = "~/.gitconfig"
# source = "dotfiles/gitconfig"    # relative to this file
# state = "present"

# [[services]]
# unit = "sshd"
# state = "present"
# enabled = true
# running = true

# Per-host additions and overrides
# [hosts.workstation]
# [[hosts.workstation.packages]]
# name = "docker"
# state = "present"
`

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter config and manifest",
		Long: `Create a starter runtime config and manifest, and initialize the
run-history database. Existing files are left alone unless --force
is given.`,
		Example: `  # Set up the default locations
  hearth init

  # Set up in a custom config location
  hearth init --config ./hearth.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfgPath := configPath
			if cfgPath == "" {
				cfgPath = config.DefaultPath()
			}
			if err := writeIfMissing(cfgPath, starterConfig, force); err != nil {
				return err
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}

			if err := writeIfMissing(cfg.Manifest, starterManifest, force); err != nil {
				return err
			}

			store, err := stores.NewSQLiteStore(cfg.StatePath)
			if err != nil {
				return err
			}
			if err := store.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize state database: %w", err)
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("failed to migrate state database: %w", err)
			}

			fmt.Printf("Initialized hearth:\n")
			fmt.Printf("  config:   %s\n", cfgPath)
			fmt.Printf("  manifest: %s\n", cfg.Manifest)
			fmt.Printf("  state:    %s\n", cfg.StatePath)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	return cmd
}

func writeIfMissing(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			fmt.Printf("  exists:   %s (kept)\n", path)
			return nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
