package ops

import (
	"context"
	"fmt"
	"strings"
)

// Winget refreshes winget's sources, and with packages.apply set also
// installs every pending upgrade.
func (o *Ops) Winget(ctx context.Context) (string, error) {
	if !o.inv.Installed("winget") {
		return "", fmt.Errorf("winget is %w", ErrNotInstalled)
	}

	if _, err := o.inv.Invoke(ctx, "winget", "source", "update"); err != nil {
		return "", err
	}
	if !o.cfg.ApplyUpgrades() {
		return "sources refreshed", nil
	}

	_, err := o.inv.Invoke(ctx, "winget", "upgrade", "--all",
		"--silent",
		"--accept-package-agreements",
		"--accept-source-agreements",
	)
	if err != nil {
		return "", err
	}
	return "sources refreshed, upgrades applied", nil
}

// Chocolatey reports outdated packages, or upgrades everything when
// packages.apply is set.
func (o *Ops) Chocolatey(ctx context.Context) (string, error) {
	if !o.inv.Installed("choco") {
		return "", fmt.Errorf("chocolatey is %w", ErrNotInstalled)
	}

	if !o.cfg.ApplyUpgrades() {
		res, err := o.inv.Invoke(ctx, "choco", "outdated", "--limit-output")
		if err != nil {
			return "", err
		}
		n := 0
		for _, line := range strings.Split(res.Stdout, "\n") {
			if strings.TrimSpace(line) != "" {
				n++
			}
		}
		return fmt.Sprintf("%d package(s) outdated", n), nil
	}

	if _, err := o.inv.Invoke(ctx, "choco", "upgrade", "all", "-y"); err != nil {
		return "", err
	}
	return "upgrades applied", nil
}
