package ops

import (
	"context"
	"strings"

	_ "embed"
)

//go:embed scripts/updates.ps1
var updatesScript string

// UpdateCheck asks the Windows Update agent for the number of pending,
// non-hidden updates. The scripting host's own error surfaces verbatim.
func (o *Ops) UpdateCheck(ctx context.Context) (string, error) {
	res, err := o.powershell(ctx, updatesScript)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}
