package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/winsweep/winsweep/internal/log"
	"github.com/winsweep/winsweep/internal/model"
	"github.com/winsweep/winsweep/internal/ops"
	"github.com/winsweep/winsweep/internal/proc"
	"github.com/winsweep/winsweep/internal/service"
	"github.com/winsweep/winsweep/internal/task"
	"github.com/winsweep/winsweep/internal/ui"
	"gopkg.in/yaml.v3"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	userConfigPath string // default config directory for winsweep on this OS
	configPath     string // actual config file used (if loaded)
	config         model.Config
	logPath        string
	logFile        *os.File

	flagConfigFilePath string // value of --config flag
	flagVerbose        bool   // value of --verbose flag
	flagSilent         bool   // value of --silent flag
)

func init() {
	d, err := os.UserConfigDir()
	if err != nil {
		panic(err)
	}
	userConfigPath = filepath.Join(d, "winsweep")
}

func main() {
	enableANSIConsole()

	// root flags
	rootCmd.PersistentFlags().StringVar(&flagConfigFilePath, "config", "", "Config file to load - default is winsweep.yaml in current directory or in "+userConfigPath)
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "verbose logging")
	runCmd.Flags().BoolVar(&flagSilent, "silent", false, "run the default task set without the selection prompt")

	// never print messages
	rootCmd.SilenceErrors = true

	// parse or create a config, setup logging
	rootCmd.PersistentPreRunE = initWinsweep

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)

	err := rootCmd.Execute()
	if logFile != nil {
		_ = logFile.Close()
	}
	if err != nil {
		slog.Error("winsweep failed", "err", err)
		fmt.Fprintln(os.Stderr, "winsweep:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "winsweep",
	Short:        "Windows system maintenance runner",
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run executes the maintenance tasks and writes a run log",
	RunE:  doRun,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "version provides the version of winsweep",
	Run: func(cmd *cobra.Command, args []string) {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			fmt.Println("winsweep: version info not available")
			return
		}

		if configPath != "" {
			fmt.Printf("config:   %s\n", configPath)
		}
		fmt.Printf("winsweep: %s\n", info.Main.Version)
		fmt.Printf("go:       %s\n", info.GoVersion)
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				fmt.Printf("commit:   %s\n", s.Value)
			case "vcs.time":
				fmt.Printf("date:     %s\n", s.Value)
			case "vcs.modified":
				fmt.Printf("dirty:    %s\n", s.Value)
			}
		}
		fmt.Println()
	},
}

func doRun(cmd *cobra.Command, args []string) error {
	ctx := log.ContextAttrs(cmd.Context(),
		slog.String("run", uuid.NewString()[:8]),
		slog.Int("pid", os.Getpid()),
	)

	invoker := proc.Exec{}
	catalog := ops.New(invoker, config, os.Stdout)

	var prompter service.Prompter = service.Defaults{}
	var progress task.Progress = ui.NewSpinner(os.Stdout)
	if !flagSilent {
		prompter = interactivePrompter{}
	}

	svc := service.New(
		catalog.CheckElevation,
		catalog.Catalog(),
		prompter,
		progress,
		os.Stdout,
		logPath,
	)
	return svc.Run(ctx)
}

// interactivePrompter adapts the checkbox prompt to service.Prompter.
type interactivePrompter struct{}

func (interactivePrompter) Select(entries []task.Entry) ([]task.Entry, error) {
	return ui.AskTasks(entries)
}

func initWinsweep(cmd *cobra.Command, _ []string) error {
	if envConfig, ok := os.LookupEnv("WINSWEEPCONFIG"); ok {
		configPath = envConfig
	} else if flagConfigFilePath != "" {
		configPath = flagConfigFilePath
	} else {
		for _, d := range []string{userConfigPath, "."} {
			path := filepath.Join(d, "winsweep.yaml")
			if exists(path) {
				configPath = path
				break
			}
		}
	}

	// store default configuration
	if configPath == "" {
		config = model.DefaultConfig()
		configPath = filepath.Join(userConfigPath, "winsweep.yaml")
		err := os.MkdirAll(filepath.Dir(configPath), 0755)
		if err != nil {
			return fmt.Errorf("creating directory %s: %w", filepath.Dir(configPath), err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("creating file %s: %w", configPath, err)
		}
		defer func() {
			_ = f.Close()
		}()
		enc := yaml.NewEncoder(f)
		err = enc.Encode(config)
		if err != nil {
			return fmt.Errorf("storing configuration: %w", err)
		}
	} else {
		f, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("opening config file: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		config, err = model.LoadConfig(f)
		if err != nil {
			for _, d := range model.CueErrDetails(err) {
				fmt.Fprintln(os.Stderr, "winsweep: config:", d)
			}
			return fmt.Errorf("parsing config: %w", err)
		}
	}

	// --verbose has a precedence over config file
	verbose := flagVerbose || config.Verbose()

	// initialize logging: one append-only file per run
	logPath = log.Path(config.LogDir(), time.Now())
	var err error
	logFile, err = log.Open(logPath)
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", logPath, err)
	}
	slog.SetDefault(log.New(logFile, verbose))

	slog.Debug("winsweep run", "configPath", configPath)
	return nil
}

func exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info != nil && info.Mode().IsRegular()
}
