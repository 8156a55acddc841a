package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ichthus/internal/analyze"
	"ichthus/internal/store"
)

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Manage the accepted-findings baseline",
	Long: `The baseline records fingerprints of findings the team has accepted.
Subsequent lint runs report only findings outside the baseline, so the
checker can be adopted on a codebase with existing violations.`,
}

var baselineUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Re-lint the workspace and accept all current findings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ws, err := loadConfig()
		if err != nil {
			return err
		}

		analyzer := analyze.New(cfg)
		defer analyzer.Close()

		findings, err := analyzer.LintWorkspace(cmd.Context(), ws)
		if err != nil {
			return err
		}

		db, err := store.NewBaselineStore(databasePath(cfg, ws))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.UpdateBaseline(findings); err != nil {
			return err
		}
		fmt.Printf("Baselined %d finding(s)\n", len(findings))
		return nil
	},
}

var baselineClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every baselined fingerprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ws, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := store.NewBaselineStore(databasePath(cfg, ws))
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Clear(); err != nil {
			return err
		}
		fmt.Println("Baseline cleared")
		return nil
	},
}

var baselineShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the baseline size and recent runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, ws, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := store.NewBaselineStore(databasePath(cfg, ws))
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := db.Count()
		if err != nil {
			return err
		}
		fmt.Printf("Baselined fingerprints: %d\n", n)

		runs, err := db.Runs(10)
		if err != nil {
			return err
		}
		if len(runs) > 0 {
			fmt.Println("\nRecent runs:")
			for _, r := range runs {
				fmt.Printf("  %s  %s  %d finding(s), %d baselined\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.ID, r.Findings, r.Suppressed)
			}
		}
		return nil
	},
}

func init() {
	baselineCmd.AddCommand(baselineUpdateCmd)
	baselineCmd.AddCommand(baselineClearCmd)
	baselineCmd.AddCommand(baselineShowCmd)
}
