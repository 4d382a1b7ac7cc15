package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgeter/internal/cli"
	"budgeter/internal/core"
)

var (
	txCategory string
	txNote     string
	txDate     string
)

var incomeCmd = &cobra.Command{
	Use:     "income AMOUNT",
	Short:   "Record money coming in",
	Example: `  budgeter income 50 --category Personal --note "birthday"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordTransaction(cmd, core.Income, args[0])
	},
}

var expenseCmd = &cobra.Command{
	Use:     "expense AMOUNT",
	Short:   "Record money going out",
	Example: `  budgeter expense 12,50 --category Food --note lunch`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return recordTransaction(cmd, core.Expense, args[0])
	},
}

// txCmd groups the transaction history commands.
var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Inspect the last 7 days of transactions",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent transactions",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var txRemoveCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Delete a transaction from history; the balance is not changed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l := ledger()
		id, err := cli.ResolveTransactionID(l.Transactions(), args[0])
		if err != nil {
			return err
		}
		if err := l.RemoveTransaction(cmd.Context(), id); err != nil {
			return err
		}
		done("Removed transaction %s", id)
		return nil
	},
}

var txPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop transactions older than 7 days now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ledger().Prune(cmd.Context())
		if err != nil {
			return err
		}
		done("Pruned %d transaction(s)", n)
		return nil
	},
}

func recordTransaction(cmd *cobra.Command, kind core.TransactionKind, arg string) error {
	amount, err := positiveAmount(arg)
	if err != nil {
		return err
	}
	tx := core.Transaction{Kind: kind, Category: txCategory, Amount: amount, Note: txNote}
	if txDate != "" {
		if tx.Date, err = core.ParseDate(txDate); err != nil {
			return err
		}
	}

	l := ledger()
	added, err := l.AddTransaction(cmd.Context(), tx)
	if err != nil {
		return err
	}
	done("Recorded %s of %s in %s, balance %s", strings.ToLower(string(added.Kind)), added.Amount, added.Category, l.Balance())
	if !core.Retained(added, l.Now()) {
		done("Note: %s is outside the 7 day window, so only the balance keeps it", added.Date)
	}
	return nil
}

func runTxList(cmd *cobra.Command, args []string) error {
	printer().Transactions(ledger().Transactions())
	return nil
}

func completeCategories(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return defaultCategories, cobra.ShellCompDirectiveNoFileComp
}

func init() {
	for _, c := range []*cobra.Command{incomeCmd, expenseCmd} {
		c.Flags().StringVarP(&txCategory, "category", "c", "Other", fmt.Sprintf("category, e.g. %s", strings.Join(defaultCategories, ", ")))
		c.Flags().StringVarP(&txNote, "note", "n", "", "free text note")
		c.Flags().StringVar(&txDate, "date", "", "date as YYYY-MM-DD (default today)")
		_ = c.RegisterFlagCompletionFunc("category", completeCategories)
	}

	txCmd.AddCommand(txListCmd, txRemoveCmd, txPruneCmd)
}
