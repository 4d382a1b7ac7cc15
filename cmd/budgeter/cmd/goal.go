package cmd

import (
	"github.com/spf13/cobra"

	"budgeter/internal/core"
)

var (
	goalCurrent string
	goalRename  string
	goalTarget  string
)

// goalCmd groups the savings goal commands.
var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage savings goals",
	Args:  cobra.NoArgs,
	RunE:  runGoalList,
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals and their progress",
	Args:  cobra.NoArgs,
	RunE:  runGoalList,
}

var goalAddCmd = &cobra.Command{
	Use:   "add NAME TARGET",
	Short: "Add a savings goal",
	Example: `  budgeter goal add Laptop 1200
  budgeter goal add "Summer trip" 800 --current 150`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := positiveAmount(args[1])
		if err != nil {
			return err
		}
		current := core.Money{}
		if goalCurrent != "" {
			if current, err = nonNegativeAmount(goalCurrent); err != nil {
				return err
			}
		}
		g, err := ledger().AddGoal(cmd.Context(), core.Goal{Name: args[0], CurrentAmount: current, TargetAmount: target})
		if err != nil {
			return err
		}
		done("Added goal %q (%s / %s)", g.Name, g.CurrentAmount, g.TargetAmount)
		return nil
	},
}

var goalUpdateCmd = &cobra.Command{
	Use:     "update NAME",
	Short:   "Change a goal's name, saved amount or target",
	Example: `  budgeter goal update Laptop --current 300`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			current, target core.Money
			err             error
		)
		if goalCurrent != "" {
			if current, err = nonNegativeAmount(goalCurrent); err != nil {
				return err
			}
		}
		if goalTarget != "" {
			if target, err = positiveAmount(goalTarget); err != nil {
				return err
			}
		}

		g, err := ledger().UpdateGoal(cmd.Context(), args[0], func(g *core.Goal) {
			if goalRename != "" {
				g.Name = goalRename
			}
			if goalCurrent != "" {
				g.CurrentAmount = current
			}
			if goalTarget != "" {
				g.TargetAmount = target
			}
		})
		if err != nil {
			return err
		}
		done("Updated goal %q (%s / %s)", g.Name, g.CurrentAmount, g.TargetAmount)
		return nil
	},
}

var goalRemoveCmd = &cobra.Command{
	Use:     "rm NAME",
	Aliases: []string{"remove"},
	Short:   "Remove a goal",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ledger().RemoveGoal(cmd.Context(), args[0]); err != nil {
			return err
		}
		done("Removed goal %q", args[0])
		return nil
	},
}

var goalMainCmd = &cobra.Command{
	Use:   "main NAME",
	Short: "Select the goal shown in the summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ledger().SetMainGoal(cmd.Context(), args[0]); err != nil {
			return err
		}
		done("Main goal is now %q", args[0])
		return nil
	},
}

var goalETACmd = &cobra.Command{
	Use:   "eta NAME",
	Short: "Estimate when a goal is reached at the current weekly pace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eta, err := ledger().ETA(args[0])
		if err != nil {
			return err
		}
		done("%s: %s", args[0], eta)
		return nil
	},
}

func runGoalList(cmd *cobra.Command, args []string) error {
	l := ledger()
	mainName := ""
	if g, ok := l.MainGoal(); ok {
		mainName = g.Name
	}
	printer().Goals(l.Goals(), mainName)
	return nil
}

func init() {
	goalAddCmd.Flags().StringVar(&goalCurrent, "current", "", "amount already saved")

	goalUpdateCmd.Flags().StringVar(&goalRename, "name", "", "new name")
	goalUpdateCmd.Flags().StringVar(&goalCurrent, "current", "", "amount saved so far")
	goalUpdateCmd.Flags().StringVar(&goalTarget, "target", "", "target amount")

	goalCmd.AddCommand(goalListCmd, goalAddCmd, goalUpdateCmd, goalRemoveCmd, goalMainCmd, goalETACmd)
}
