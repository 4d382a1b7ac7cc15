package cmd

import (
	"github.com/spf13/cobra"

	"budgeter/internal/core"
)

var (
	billRetitle string
	billAmount  string
)

// billCmd groups the recurring bill commands.
var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Manage upcoming bills",
	Args:  cobra.NoArgs,
	RunE:  runBillList,
}

var billListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bills and their total",
	Args:  cobra.NoArgs,
	RunE:  runBillList,
}

var billAddCmd = &cobra.Command{
	Use:     "add TITLE AMOUNT",
	Short:   "Add a bill",
	Example: `  budgeter bill add Rent 450`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := nonNegativeAmount(args[1])
		if err != nil {
			return err
		}
		b, err := ledger().AddBill(cmd.Context(), core.Bill{Title: args[0], Amount: amount})
		if err != nil {
			return err
		}
		done("Added bill %q (%s)", b.Title, b.Amount)
		return nil
	},
}

var billUpdateCmd = &cobra.Command{
	Use:   "update TITLE",
	Short: "Change a bill's title or amount",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var amount core.Money
		if billAmount != "" {
			var err error
			if amount, err = nonNegativeAmount(billAmount); err != nil {
				return err
			}
		}
		b, err := ledger().UpdateBill(cmd.Context(), args[0], func(b *core.Bill) {
			if billRetitle != "" {
				b.Title = billRetitle
			}
			if billAmount != "" {
				b.Amount = amount
			}
		})
		if err != nil {
			return err
		}
		done("Updated bill %q (%s)", b.Title, b.Amount)
		return nil
	},
}

var billRemoveCmd = &cobra.Command{
	Use:     "rm TITLE",
	Aliases: []string{"remove"},
	Short:   "Remove a bill",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ledger().RemoveBill(cmd.Context(), args[0]); err != nil {
			return err
		}
		done("Removed bill %q", args[0])
		return nil
	},
}

func runBillList(cmd *cobra.Command, args []string) error {
	printer().Bills(ledger().Bills())
	return nil
}

func init() {
	billUpdateCmd.Flags().StringVar(&billRetitle, "title", "", "new title")
	billUpdateCmd.Flags().StringVar(&billAmount, "amount", "", "new amount")

	billCmd.AddCommand(billListCmd, billAddCmd, billUpdateCmd, billRemoveCmd)
}
