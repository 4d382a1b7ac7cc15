package cmd

import (
	"github.com/spf13/cobra"
)

// balanceCmd shows the running balance.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show or set the current balance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		printer().Balance(ledger().Balance())
		return nil
	},
}

var balanceSetCmd = &cobra.Command{
	Use:   "set AMOUNT",
	Short: "Overwrite the balance, e.g. after checking the bank",
	Example: `  budgeter balance set 1250.40
  budgeter balance set -- -20`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := signedAmount(args[0])
		if err != nil {
			return err
		}
		if err := ledger().SetBalance(cmd.Context(), amount); err != nil {
			return err
		}
		done("Balance set to %s", amount)
		return nil
	},
}

func init() {
	balanceCmd.AddCommand(balanceSetCmd)
}
