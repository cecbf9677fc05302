package model

import (
	"io"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/encoding/yaml"

	_ "embed"
)

//go:embed config.cue
var cueSource []byte

var (
	cueCtx *cue.Context
	schema cue.Value
)

func init() {
	if len(cueSource) == 0 {
		panic("variable cueSource is empty")
	}
	cueCtx = cuecontext.New()
	compiled := cueCtx.CompileBytes(cueSource)
	if compiled.Err() != nil {
		panic(compiled.Err())
	}

	if err := compiled.Validate(); err != nil {
		panic(err)
	}

	schema = compiled.LookupPath(cue.ParsePath("#Config"))
	if schema.Err() != nil {
		panic(schema.Err())
	}
	if err := schema.Validate(); err != nil {
		panic(err)
	}
}

// Config carries both json tags (CUE decoding) and yaml tags (writing the
// default config file without null sections).
type Config struct {
	Version  int       `json:"version" yaml:"version"` // fixed 0 for now
	Log      *Log      `json:"log,omitempty" yaml:"log,omitempty"`
	Packages *Packages `json:"packages,omitempty" yaml:"packages,omitempty"`
	Cleanup  *Cleanup  `json:"cleanup,omitempty" yaml:"cleanup,omitempty"`
	Optimize *Optimize `json:"optimize,omitempty" yaml:"optimize,omitempty"`
}

// Log destination settings.
type Log struct {
	Dir     *string `json:"dir,omitempty" yaml:"dir,omitempty"` // nil => OS temp directory
	Verbose *bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Packages controls the winget/choco operations.
type Packages struct {
	// Apply switches the package managers from reporting pending upgrades
	// to installing them. Off by default.
	Apply *bool `json:"apply,omitempty" yaml:"apply,omitempty"`
}

// Cleanup lists extra directories swept besides the temp directories.
type Cleanup struct {
	Paths []string `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Optimize selects the volume handed to the disk optimizer.
type Optimize struct {
	Volume *string `json:"volume,omitempty" yaml:"volume,omitempty"` // e.g. "C:"
}

// LogDir resolves the run-log directory.
func (c Config) LogDir() string {
	if c.Log != nil && c.Log.Dir != nil && *c.Log.Dir != "" {
		return *c.Log.Dir
	}
	return os.TempDir()
}

// Verbose reports whether debug log entries are wanted.
func (c Config) Verbose() bool {
	return c.Log != nil && c.Log.Verbose != nil && *c.Log.Verbose
}

// ApplyUpgrades reports whether package managers should install pending
// upgrades rather than only report them.
func (c Config) ApplyUpgrades() bool {
	return c.Packages != nil && c.Packages.Apply != nil && *c.Packages.Apply
}

// ExtraCleanupPaths returns configured additional sweep targets.
func (c Config) ExtraCleanupPaths() []string {
	if c.Cleanup == nil {
		return nil
	}
	return c.Cleanup.Paths
}

// Volume resolves the optimization target, defaulting to the system drive.
func (c Config) Volume() string {
	if c.Optimize != nil && c.Optimize.Volume != nil && *c.Optimize.Volume != "" {
		return *c.Optimize.Volume
	}
	return "C:"
}

// DefaultConfig is what a first run writes next to the user's config.
func DefaultConfig() Config {
	return Config{
		Version: 0,
	}
}

// LoadConfig validates YAML from r against the CUE schema and decodes it.
func LoadConfig(r io.Reader) (Config, error) {
	yamlFile, err := yaml.Extract("config.yaml", r)
	if err != nil {
		return Config{}, err
	}
	yamlValue := cueCtx.BuildFile(yamlFile)

	unified := schema.Unify(yamlValue)
	if err := unified.Validate(
		cue.All(),          // all constraints
		cue.Concrete(true), // no incomplete values
	); err != nil {
		return Config{}, err
	}

	var out Config
	if err := unified.Decode(&out); err != nil {
		return Config{}, err
	}

	return out, nil
}
