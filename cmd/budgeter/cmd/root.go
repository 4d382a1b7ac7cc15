// Package cmd provides CLI commands for budgeter.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"budgeter/internal/cli"
	"budgeter/internal/log"
	"budgeter/internal/services"
)

var (
	dataDir      string
	backendName  string
	debug        bool
	resetCorrupt bool

	logger  *log.Logger
	session *cli.Session
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "budgeter",
	Short: "Keep track of savings goals, bills and the last week of spending",
	Long: `budgeter keeps a running balance, savings goals, recurring bills
and a rolling 7-day history of income and expenses.

Data is stored as JSON files in the data directory (default ./data), or in
SQLite when DATA_BACKEND=sqlite.

Example:
  budgeter balance set 250
  budgeter expense 12.50 --category Food --note lunch
  budgeter goal add Bike 200 --current 50
  budgeter summary`,
	SilenceUsage:      true,
	PersistentPreRunE: openSession,
	RunE:              runSummary,
}

// Execute adds all child commands to the root command and runs it until
// done or interrupted.
func Execute() error {
	ctx, stop := cli.ShutdownContext(context.Background(), nil)
	defer stop()
	return execute(ctx, os.Args[1:])
}

// execute runs one command line. Flags start from their defaults and the
// session is closed whether or not the command failed.
func execute(ctx context.Context, args []string) error {
	resetFlags(rootCmd)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && logger != nil {
		logger.Debug("Command failed", log.NewFields().
			WithError(err, cli.ErrorType(err)).
			ToSlice()...)
	}
	if session != nil {
		err = errors.Join(err, session.Close())
		session = nil
	}
	return err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default $BUDGETER_DATA_DIR or ./data)")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "", "storage backend: json, sqlite or memory (default $DATA_BACKEND or json)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&resetCorrupt, "reset-corrupt", false, "replace corrupt data files with empty ones instead of failing")

	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(incomeCmd)
	rootCmd.AddCommand(expenseCmd)
	rootCmd.AddCommand(txCmd)
}

func openSession(cmd *cobra.Command, args []string) error {
	cli.LoadEnvFile()

	cfg, err := cli.LoadAndValidateConfig(cli.Overrides{
		DataDir:      dataDir,
		Backend:      backendName,
		ResetCorrupt: resetCorrupt,
	})
	if err != nil {
		return err
	}

	logger, err = cli.SetupLogger(cfg.LogLevel, debug)
	if err != nil {
		return err
	}

	session, err = cli.Open(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("Failed to open ledger", log.FieldError, err)
		return err
	}
	return nil
}

func ledger() *services.Ledger { return session.Ledger }

func printer() *cli.Printer { return cli.NewPrinter(os.Stdout) }

func done(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
