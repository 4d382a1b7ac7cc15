package cmd

import (
	"github.com/spf13/cobra"

	"budgeter/internal/core"
)

// summaryCmd represents the summary command.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show balance, weekly spending, bills and the main goal",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	l := ledger()

	var eta *core.ETA
	if g, ok := l.MainGoal(); ok {
		e, err := l.ETA(g.Name)
		if err != nil {
			return err
		}
		eta = &e
	}
	printer().Summary(l.Summary(), eta)
	return nil
}
