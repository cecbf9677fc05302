package model_test

import (
	"strings"
	"testing"

	"github.com/winsweep/winsweep/internal/model"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()
	yml := `
version: 0
log:
  dir: D:\logs
  verbose: true
packages:
  apply: true
cleanup:
  paths:
    - C:\Users\op\AppData\Local\Temp
optimize:
  volume: "D:"
`
	cfg, err := model.LoadConfig(strings.NewReader(yml))
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Version)
	require.Equal(t, `D:\logs`, cfg.LogDir())
	require.True(t, cfg.Verbose())
	require.True(t, cfg.ApplyUpgrades())
	require.Equal(t, []string{`C:\Users\op\AppData\Local\Temp`}, cfg.ExtraCleanupPaths())
	require.Equal(t, "D:", cfg.Volume())
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()
	cfg, err := model.LoadConfig(strings.NewReader("version: 0\n"))
	require.NoError(t, err)
	require.False(t, cfg.Verbose())
	require.False(t, cfg.ApplyUpgrades())
	require.Empty(t, cfg.ExtraCleanupPaths())
	require.Equal(t, "C:", cfg.Volume())
	require.NotEmpty(t, cfg.LogDir())
}

func TestLoadConfig_Fail(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"wrong version": "version: 7\n",
		"bad volume": `
version: 0
optimize:
  volume: "CC"
`,
		"unknown field": `
version: 0
shedule: daily
`,
		"empty cleanup path": `
version: 0
cleanup:
  paths: [""]
`,
	}
	for name, yml := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := model.LoadConfig(strings.NewReader(yml))
			require.Error(t, err)
			require.NotEmpty(t, model.CueErrDetails(err))
		})
	}
}

func TestDefaultConfig_RoundTrips(t *testing.T) {
	t.Parallel()
	cfg := model.DefaultConfig()
	require.Equal(t, 0, cfg.Version)
	// the default config must satisfy its own schema
	_, err := model.LoadConfig(strings.NewReader("version: 0\n"))
	require.NoError(t, err)
}
