package ops

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Cleanup sweeps the temp directories. The operation as a whole always
// succeeds: an entry that can't be removed (file in use, permissions) is
// one WARN line and the sweep moves on. Partial sweeps are fine, the next
// run picks up the rest.
func (o *Ops) Cleanup(ctx context.Context) (string, error) {
	targets := append([]string(nil), o.tempDirs...)
	targets = append(targets, o.cfg.ExtraCleanupPaths()...)

	removed, skipped := 0, 0
	for _, dir := range targets {
		entries, err := os.ReadDir(dir)
		if err != nil {
			slog.WarnContext(ctx, fmt.Sprintf("can't list %s, skipping: %v", dir, err))
			continue
		}
		for _, entry := range entries {
			path := filepath.Join(dir, entry.Name())
			if err := o.remove(path); err != nil {
				slog.WarnContext(ctx, fmt.Sprintf("can't remove %s: %v", path, err))
				skipped++
				continue
			}
			removed++
		}
	}

	return fmt.Sprintf("%d removed, %d skipped", removed, skipped), nil
}
