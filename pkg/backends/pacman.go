package backends

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Pacman is the system package backend, shelling out to pacman.
type Pacman struct {
	bin string
}

// NewPacman creates a pacman backend. An empty bin defaults to "pacman".
func NewPacman(bin string) *Pacman {
	if bin == "" {
		bin = "pacman"
	}
	return &Pacman{bin: bin}
}

// ListInstalled returns the names of all installed native packages in one
// bulk query (pacman -Qqn).
func (p *Pacman) ListInstalled(ctx context.Context) (map[string]struct{}, error) {
	return listPackages(ctx, p.bin, "-Qqn")
}

// Install installs the named package, letting pacman resolve dependencies.
func (p *Pacman) Install(ctx context.Context, name string) error {
	return runPackageCommand(ctx, p.bin, "-S", "--noconfirm", "--needed", name)
}

// Remove removes the named package and its now-unneeded dependencies.
func (p *Pacman) Remove(ctx context.Context, name string) error {
	return runPackageCommand(ctx, p.bin, "-Rs", "--noconfirm", name)
}

// listPackages runs a query command and parses one package name per line.
func listPackages(ctx context.Context, bin string, args ...string) (map[string]struct{}, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w: %s",
			bin, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}

	installed := make(map[string]struct{})
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name != "" {
			installed[name] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse %s output: %w", bin, err)
	}
	return installed, nil
}

// runPackageCommand runs a mutating package-manager command.
func runPackageCommand(ctx context.Context, bin string, args ...string) error {
	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w: %s",
			bin, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
