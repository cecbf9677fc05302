// Package ops is the catalog of maintenance operations. Every operation
// is a thin layer over external Windows tooling invoked through
// proc.Invoker, so tests run everywhere with a fake invoker.
package ops

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/winsweep/winsweep/internal/model"
	"github.com/winsweep/winsweep/internal/proc"
	"github.com/winsweep/winsweep/internal/task"
)

var ErrNotInstalled = errors.New("not installed")

// Ops binds the catalog to an invoker, the loaded config and the terminal.
type Ops struct {
	inv proc.Invoker
	cfg model.Config
	out io.Writer

	// sweep targets and removal are swappable so the cleanup sweep is
	// testable without touching the machine's real temp directories
	tempDirs []string
	remove   func(string) error
}

func New(inv proc.Invoker, cfg model.Config, out io.Writer) *Ops {
	return &Ops{
		inv:      inv,
		cfg:      cfg,
		out:      out,
		tempDirs: defaultTempDirs(),
		remove:   os.RemoveAll,
	}
}

func defaultTempDirs() []string {
	dirs := []string{os.TempDir()}
	if runtime.GOOS == "windows" {
		dirs = append(dirs, filepath.Join(os.Getenv("SystemRoot"), "Temp"))
	}
	return dirs
}

// Catalog returns the fixed, ordered operation list. Order matters: the
// filesystem-heavy operations come after the checks, and optimization
// runs after cleanup so it works on the swept volume.
func (o *Ops) Catalog() []task.Entry {
	return []task.Entry{
		{Key: "updates", Title: "Windows Update check", Default: true, Run: o.UpdateCheck},
		{Key: "winget", Title: "winget source refresh", Default: true, Run: o.Winget},
		{Key: "choco", Title: "Chocolatey package check", Default: true, Run: o.Chocolatey},
		{Key: "dism", Title: "Component store health check", Default: true, Run: o.ComponentStoreCheck},
		{Key: "sfc", Title: "System file integrity scan", Default: true, Run: o.IntegrityScan},
		{Key: "cleanup", Title: "Temporary file cleanup", Default: true, Run: o.Cleanup},
		{Key: "defrag", Title: "Disk optimization", Default: true, Run: o.Optimize},
		{Key: "inventory", Title: "Hardware and OS inventory", Default: true, Run: o.Inventory},
	}
}

// powershell runs an inline script through the scripting host. The whole
// script travels as one argument, nothing in it is ever interpreted by a
// shell layer of ours.
func (o *Ops) powershell(ctx context.Context, script string) (proc.Result, error) {
	return o.inv.Invoke(ctx, "powershell.exe",
		"-NoProfile",
		"-NonInteractive",
		"-ExecutionPolicy", "Bypass",
		"-Command", script,
	)
}
