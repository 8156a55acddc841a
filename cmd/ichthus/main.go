package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ichthus/internal/config"
	"ichthus/internal/logging"
)

// Version is stamped by the release build.
var Version = "dev"

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	formatFlag string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ichthus",
	Short: "ichthus - Ichthus coding conventions checker",
	Long: `ichthus checks C# and VB.NET sources against the Ichthus coding
conventions: identifier casing, acronym capitalization, Hungarian and
control-prefix policy, namespace shape, Core dependency rules, doc
comments, suppression hygiene, and embedded SQL formatting.

It also validates the convention guide itself: revision documents are
checked for section numbering, structure, and undeclared contradictions
with earlier revisions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		if err := logging.Initialize(resolveWorkspace()); err != nil {
			logger.Warn("categorized logging unavailable", zap.Error(err))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ichthus version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ichthus %s\n", Version)
	},
}

// initCmd writes a starter config into the workspace.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .ichthus/config.yaml into the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		ws := resolveWorkspace()
		path := config.DefaultPath(ws)
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}

		cfg := config.DefaultConfig()
		cfg.Workspace = ws
		if err := cfg.Save(path); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

// resolveWorkspace returns the --workspace flag value or the current
// directory, as an absolute path.
func resolveWorkspace() string {
	ws := workspace
	if ws == "" {
		ws, _ = os.Getwd()
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return ws
	}
	return abs
}

// loadConfig loads configuration for the resolved workspace.
func loadConfig() (*config.Config, string, error) {
	ws := resolveWorkspace()
	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if cfg.Workspace == "" {
		cfg.Workspace = ws
	}
	return cfg, ws, nil
}

// databasePath resolves the baseline database location against the
// workspace when the configured path is relative.
func databasePath(cfg *config.Config, ws string) string {
	p := cfg.Store.DatabasePath
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(ws, p)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.ichthus/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: text, json, or sarif")

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
