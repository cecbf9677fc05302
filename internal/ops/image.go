package ops

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/winsweep/winsweep/internal/proc"
)

// ComponentStoreCheck runs the image servicing tool's quick health verb
// against the running OS image.
func (o *Ops) ComponentStoreCheck(ctx context.Context) (string, error) {
	res, err := o.inv.Invoke(ctx, "Dism.exe", "/Online", "/Cleanup-Image", "/CheckHealth")
	if err != nil {
		return "", err
	}
	if strings.Contains(res.Stdout, "No component store corruption detected") {
		return "no corruption detected", nil
	}
	return "", nil
}

// IntegrityScan runs the system file checker over all protected files.
// Exit code 1 means sfc found (and possibly repaired) corrupt files; that
// gets a pointer at sfc's own log instead of the bare exit status.
func (o *Ops) IntegrityScan(ctx context.Context) (string, error) {
	_, err := o.inv.Invoke(ctx, "sfc", "/scannow")
	var exitErr *proc.ExitError
	if errors.As(err, &exitErr) && exitErr.Code == 1 {
		return "", fmt.Errorf(
			"sfc found integrity violations, details in %%windir%%\\Logs\\CBS\\CBS.log: %w", err)
	}
	if err != nil {
		return "", err
	}
	return "", nil
}

// Optimize runs the volume optimizer against the configured volume.
func (o *Ops) Optimize(ctx context.Context) (string, error) {
	if _, err := o.inv.Invoke(ctx, "defrag", o.cfg.Volume(), "/O"); err != nil {
		return "", err
	}
	return o.cfg.Volume() + " optimized", nil
}
