package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ichthus/internal/analyze"
	"ichthus/internal/docs"
	"ichthus/internal/report"
	"ichthus/internal/rule"
	"ichthus/internal/store"
)

var noBaseline bool

// lintCmd checks the workspace sources against the conventions.
var lintCmd = &cobra.Command{
	Use:   "lint [paths...]",
	Short: "Check C# and VB.NET sources against the Ichthus conventions",
	Long: `Scans the workspace (or the given paths) and reports convention
violations. Findings already accepted into the baseline are filtered
out; pass --no-baseline to see everything.

Exits non-zero when error-severity findings remain.`,
	RunE: runLint,
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	cfg, ws, err := loadConfig()
	if err != nil {
		return err
	}

	analyzer := analyze.New(cfg)
	defer analyzer.Close()

	var paths []string
	if len(args) > 0 {
		paths, err = resolvePaths(ws, args)
	} else {
		paths, err = analyze.CollectSources(ws)
	}
	if err != nil {
		return err
	}
	logger.Debug("collected sources", zap.Int("count", len(paths)))

	findings, err := analyzer.LintFiles(cmd.Context(), ws, paths)
	if err != nil {
		return err
	}

	suppressed := 0
	if !noBaseline {
		db, err := store.NewBaselineStore(databasePath(cfg, ws))
		if err != nil {
			return err
		}
		defer db.Close()

		findings, suppressed, err = db.Filter(findings)
		if err != nil {
			return err
		}
		if _, err := db.RecordRun(len(findings), suppressed); err != nil {
			logger.Warn("failed to record run", zap.Error(err))
		}
	}

	renderer, err := report.New(format, analyzer.Registry())
	if err != nil {
		return err
	}
	summary := report.Summary{FilesScanned: len(paths), Suppressed: suppressed}
	if err := renderer.Render(os.Stdout, findings, summary); err != nil {
		return err
	}

	if rule.HasErrors(findings) {
		return fmt.Errorf("%d error-severity finding(s)", rule.CountBySeverity(findings)[rule.SeverityError])
	}
	return nil
}

// resolvePaths converts explicit CLI path arguments to workspace-relative
// source paths, expanding directories.
func resolvePaths(ws string, args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		abs := arg
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(ws, arg)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			nested, err := analyze.CollectSources(abs)
			if err != nil {
				return nil, err
			}
			for _, p := range nested {
				rel, err := filepath.Rel(ws, filepath.Join(abs, p))
				if err != nil {
					return nil, err
				}
				out = append(out, rel)
			}
			continue
		}
		rel, err := filepath.Rel(ws, abs)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}

// docsCmd groups the guide-document commands.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Style-guide document commands",
}

var docsCheckCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate guide revision documents",
	Long: `Parses the guide revision documents and checks section numbering,
heading structure, and contradictions with earlier revisions that are
not declared with the deviation marker.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(formatFlag)
		if err != nil {
			return err
		}
		cfg, ws, err := loadConfig()
		if err != nil {
			return err
		}

		dir := ws
		if len(args) == 1 {
			dir = args[0]
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(ws, dir)
			}
		}

		checker := docs.NewChecker(cfg)
		findings, err := checker.CheckDirectory(dir)
		if err != nil {
			return err
		}

		renderer, err := report.New(format, rule.NewRegistry())
		if err != nil {
			return err
		}
		if err := renderer.Render(os.Stdout, findings, report.Summary{}); err != nil {
			return err
		}
		if rule.HasErrors(findings) {
			return fmt.Errorf("%d error-severity finding(s)", rule.CountBySeverity(findings)[rule.SeverityError])
		}
		return nil
	},
}

func init() {
	lintCmd.Flags().BoolVar(&noBaseline, "no-baseline", false, "Report all findings, ignoring the baseline")
	docsCmd.AddCommand(docsCheckCmd)
}
