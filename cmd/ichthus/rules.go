package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ichthus/internal/report"
	"ichthus/internal/rule"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the built-in rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every rule with its default severity",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := report.RuleTable(rule.NewRegistry().All())
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

var rulesExplainCmd = &cobra.Command{
	Use:   "explain [rule-id]",
	Short: "Show a rule's rationale",
	Long: `Renders the rule's summary and the guide rationale behind it.

Example:
  ichthus rules explain ICH010`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := rule.NewRegistry().Get(rule.FormatID(args[0]))
		if err != nil {
			return err
		}
		out, err := report.ExplainRule(r)
		if err != nil {
			return err
		}
		fmt.Print(out)
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesExplainCmd)
}
