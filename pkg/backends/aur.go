package backends

import (
	"context"
	"fmt"
	"os/exec"
)

// aurHelpers are the supported AUR helpers, in detection order.
var aurHelpers = []string{"paru", "yay"}

// AUR is the AUR package backend. Queries go through pacman's foreign-package
// list (AUR packages are foreign to the sync databases); mutations go through
// an AUR helper, which builds packages as an unprivileged user.
type AUR struct {
	helper    string
	pacmanBin string
}

// NewAUR creates an AUR backend using the given helper binary. An empty
// helper is detected from PATH; an empty pacmanBin defaults to "pacman".
func NewAUR(helper, pacmanBin string) (*AUR, error) {
	if helper == "" {
		detected, err := detectAURHelper()
		if err != nil {
			return nil, err
		}
		helper = detected
	}
	if pacmanBin == "" {
		pacmanBin = "pacman"
	}
	return &AUR{helper: helper, pacmanBin: pacmanBin}, nil
}

// Helper returns the helper binary this backend mutates through.
func (a *AUR) Helper() string {
	return a.helper
}

// ListInstalled returns the names of all installed foreign packages in one
// bulk query (pacman -Qqm).
func (a *AUR) ListInstalled(ctx context.Context) (map[string]struct{}, error) {
	return listPackages(ctx, a.pacmanBin, "-Qqm")
}

// Install installs the named package from the AUR.
func (a *AUR) Install(ctx context.Context, name string) error {
	return runPackageCommand(ctx, a.helper, "-S", "--noconfirm", "--needed", name)
}

// Remove removes the named package.
func (a *AUR) Remove(ctx context.Context, name string) error {
	return runPackageCommand(ctx, a.helper, "-Rs", "--noconfirm", name)
}

func detectAURHelper() (string, error) {
	for _, helper := range aurHelpers {
		if _, err := exec.LookPath(helper); err == nil {
			return helper, nil
		}
	}
	return "", fmt.Errorf("no supported AUR helper found (tried %v)", aurHelpers)
}
