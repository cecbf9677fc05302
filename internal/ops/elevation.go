package ops

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotElevated = errors.New("administrator privileges required")

// CheckElevation probes for administrator rights. `net session` answers
// with exit 0 only in an elevated console, which makes it a cheap probe
// that needs no Windows API calls.
//
// This is the gate: it is not part of the catalog and its failure is meant
// to stop the whole run.
func (o *Ops) CheckElevation(ctx context.Context) error {
	if _, err := o.inv.Invoke(ctx, "net", "session"); err != nil {
		return fmt.Errorf("%w: start the terminal with \"Run as administrator\" and try again", ErrNotElevated)
	}
	return nil
}
