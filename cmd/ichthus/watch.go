package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ichthus/internal/analyze"
	"ichthus/internal/docs"
	"ichthus/internal/report"
	"ichthus/internal/rule"
	"ichthus/internal/store"
	"ichthus/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-lint files as they change",
	Long: `Watches the workspace and re-checks sources and guide documents as
they are saved. Rapid save bursts are coalesced into one run. Stop
with Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, ws, err := loadConfig()
	if err != nil {
		return err
	}

	analyzer := analyze.New(cfg)
	defer analyzer.Close()

	checker := docs.NewChecker(cfg)
	renderer := report.NewTextRenderer()

	db, err := store.NewBaselineStore(databasePath(cfg, ws))
	if err != nil {
		return err
	}
	defer db.Close()

	onChange := func(ctx context.Context, paths []string) {
		var sources, guides []string
		for _, p := range paths {
			if strings.EqualFold(filepath.Ext(p), ".md") {
				guides = append(guides, p)
			} else {
				sources = append(sources, p)
			}
		}

		findings, err := analyzer.LintFiles(ctx, ws, sources)
		if err != nil {
			logger.Error("lint failed", zap.Error(err))
			return
		}
		for _, g := range guides {
			content, err := os.ReadFile(filepath.Join(ws, g))
			if err != nil {
				continue
			}
			rev := docs.ParseRevision(g, content)
			findings = append(findings, checker.CheckRevision(rev)...)
		}
		rule.Sort(findings)

		fresh, suppressed, err := db.Filter(findings)
		if err != nil {
			logger.Error("baseline filter failed", zap.Error(err))
			return
		}

		fmt.Printf("\n--- %d file(s) changed ---\n", len(paths))
		summary := report.Summary{FilesScanned: len(paths), Suppressed: suppressed}
		if err := renderer.Render(os.Stdout, fresh, summary); err != nil {
			logger.Error("render failed", zap.Error(err))
		}
	}

	w, err := watch.New(ws, cfg.GetWatchDebounce(), onChange)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", ws)

	<-ctx.Done()
	w.Stop()
	fmt.Println("\nStopped")
	return nil
}
