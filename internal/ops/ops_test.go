package ops_test

import (
	"context"
	"strings"
	"testing"

	"github.com/winsweep/winsweep/internal/model"
	"github.com/winsweep/winsweep/internal/ops"
	"github.com/winsweep/winsweep/internal/proc"
	"github.com/stretchr/testify/require"
)

// fakeInvoker records invocations and replays canned results keyed by the
// executable name.
type fakeInvoker struct {
	calls     [][]string
	results   map[string]proc.Result
	errs      map[string]error
	installed map[string]bool
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{
		results:   map[string]proc.Result{},
		errs:      map[string]error{},
		installed: map[string]bool{},
	}
}

func (f *fakeInvoker) Invoke(_ context.Context, name string, args ...string) (proc.Result, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if err, ok := f.errs[name]; ok {
		return f.results[name], err
	}
	return f.results[name], nil
}

func (f *fakeInvoker) Installed(name string) bool {
	return f.installed[name]
}

func cfg(t *testing.T, yml string) model.Config {
	t.Helper()
	c, err := model.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)
	return c
}

func TestCheckElevation(t *testing.T) {
	t.Parallel()
	t.Run("elevated", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		require.NoError(t, o.CheckElevation(t.Context()))
		require.Equal(t, [][]string{{"net", "session"}}, inv.calls)
	})
	t.Run("not elevated", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.errs["net"] = &proc.ExitError{Name: "net", Code: 2, Stderr: "Access is denied."}
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		err := o.CheckElevation(t.Context())
		require.ErrorIs(t, err, ops.ErrNotElevated)
		require.Contains(t, err.Error(), "Run as administrator")
	})
}

func TestUpdateCheck(t *testing.T) {
	t.Parallel()
	t.Run("reports the pending count", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.results["powershell.exe"] = proc.Result{Stdout: "4 update(s) pending\r\n"}
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})

		detail, err := o.UpdateCheck(t.Context())
		require.NoError(t, err)
		require.Equal(t, "4 update(s) pending", detail)

		require.Len(t, inv.calls, 1)
		call := inv.calls[0]
		require.Equal(t, "powershell.exe", call[0])
		require.Contains(t, call, "-NonInteractive")
		require.Contains(t, call[len(call)-1], "Microsoft.Update.Session")
	})
	t.Run("host failure surfaces verbatim", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		boom := &proc.ExitError{Name: "powershell.exe", Code: 1, Stderr: "COM error"}
		inv.errs["powershell.exe"] = boom
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})

		_, err := o.UpdateCheck(t.Context())
		require.ErrorIs(t, err, boom)
	})
}

func TestWinget(t *testing.T) {
	t.Parallel()
	t.Run("not installed", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		_, err := o.Winget(t.Context())
		require.ErrorIs(t, err, ops.ErrNotInstalled)
		require.Contains(t, err.Error(), "winget is not installed")
		require.Empty(t, inv.calls)
	})
	t.Run("report only by default", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.installed["winget"] = true
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})

		detail, err := o.Winget(t.Context())
		require.NoError(t, err)
		require.Equal(t, "sources refreshed", detail)
		require.Equal(t, [][]string{{"winget", "source", "update"}}, inv.calls)
	})
	t.Run("apply policy upgrades everything", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.installed["winget"] = true
		o := ops.New(inv, cfg(t, "version: 0\npackages:\n  apply: true\n"), &strings.Builder{})

		detail, err := o.Winget(t.Context())
		require.NoError(t, err)
		require.Equal(t, "sources refreshed, upgrades applied", detail)
		require.Len(t, inv.calls, 2)
		require.Equal(t, []string{"winget", "upgrade", "--all", "--silent",
			"--accept-package-agreements", "--accept-source-agreements"}, inv.calls[1])
	})
}

func TestChocolatey(t *testing.T) {
	t.Parallel()
	t.Run("not installed", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		_, err := o.Chocolatey(t.Context())
		require.ErrorIs(t, err, ops.ErrNotInstalled)
	})
	t.Run("counts outdated packages", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.installed["choco"] = true
		inv.results["choco"] = proc.Result{Stdout: "git|2.39|2.44|false\r\n7zip|22.0|24.6|false\r\n"}
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})

		detail, err := o.Chocolatey(t.Context())
		require.NoError(t, err)
		require.Equal(t, "2 package(s) outdated", detail)
		require.Equal(t, [][]string{{"choco", "outdated", "--limit-output"}}, inv.calls)
	})
	t.Run("apply policy upgrades all", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.installed["choco"] = true
		o := ops.New(inv, cfg(t, "version: 0\npackages:\n  apply: true\n"), &strings.Builder{})

		detail, err := o.Chocolatey(t.Context())
		require.NoError(t, err)
		require.Equal(t, "upgrades applied", detail)
		require.Equal(t, [][]string{{"choco", "upgrade", "all", "-y"}}, inv.calls)
	})
}

func TestComponentStoreCheck(t *testing.T) {
	t.Parallel()
	inv := newFakeInvoker()
	inv.results["Dism.exe"] = proc.Result{Stdout: "No component store corruption detected.\nThe operation completed successfully."}
	o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})

	detail, err := o.ComponentStoreCheck(t.Context())
	require.NoError(t, err)
	require.Equal(t, "no corruption detected", detail)
	require.Equal(t, [][]string{{"Dism.exe", "/Online", "/Cleanup-Image", "/CheckHealth"}}, inv.calls)
}

func TestIntegrityScan(t *testing.T) {
	t.Parallel()
	t.Run("clean scan", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		_, err := o.IntegrityScan(t.Context())
		require.NoError(t, err)
		require.Equal(t, [][]string{{"sfc", "/scannow"}}, inv.calls)
	})
	t.Run("exit 1 points at the CBS log", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		inv.errs["sfc"] = &proc.ExitError{Name: "sfc", Code: 1}
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		_, err := o.IntegrityScan(t.Context())
		require.Error(t, err)
		require.Contains(t, err.Error(), `CBS.log`)
	})
	t.Run("other exits surface raw", func(t *testing.T) {
		t.Parallel()
		inv := newFakeInvoker()
		boom := &proc.ExitError{Name: "sfc", Code: 2, Stderr: "pending repair"}
		inv.errs["sfc"] = boom
		o := ops.New(inv, model.DefaultConfig(), &strings.Builder{})
		_, err := o.IntegrityScan(t.Context())
		require.ErrorIs(t, err, boom)
		require.NotContains(t, err.Error(), "CBS.log")
	})
}

func TestOptimize(t *testing.T) {
	t.Parallel()
	inv := newFakeInvoker()
	o := ops.New(inv, cfg(t, "version: 0\noptimize:\n  volume: \"D:\"\n"), &strings.Builder{})

	detail, err := o.Optimize(t.Context())
	require.NoError(t, err)
	require.Equal(t, "D: optimized", detail)
	require.Equal(t, [][]string{{"defrag", "D:", "/O"}}, inv.calls)
}

func TestCatalog(t *testing.T) {
	t.Parallel()
	o := ops.New(newFakeInvoker(), model.DefaultConfig(), &strings.Builder{})
	entries := o.Catalog()

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
		require.NotEmpty(t, e.Title)
		require.NotNil(t, e.Run)
		require.True(t, e.Default)
	}
	require.Equal(t, []string{
		"updates", "winget", "choco", "dism", "sfc", "cleanup", "defrag", "inventory",
	}, keys)
}
