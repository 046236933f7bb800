// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"go-bank-ledger/config"
	"go-bank-ledger/db"
	"go-bank-ledger/logger"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// App holds what the commands share: where the configuration lives and the
// store opened from it.
type App struct {
	configDir string
	conn      *sql.DB
	sessions  *db.SessionFactory
}

// Run is the process entry point.
func Run() {
	logger.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := Execute(ctx, os.Args[1:], os.Stdout); err != nil {
		logger.Log.WithError(err).Error("Command failed")
		stop()
		os.Exit(1)
	}
}

// Execute runs the command line in args, writing user-facing output to out.
// The store is released before it returns.
func Execute(ctx context.Context, args []string, out io.Writer) error {
	a := &App{}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(out)
	defer a.stop()

	return root.ExecuteContext(ctx)
}

func (a *App) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "bank",
		Short: "Minimal bank ledger backed by a relational store",
		Long: `A minimal bank ledger: accounts holding a balance and an append-only
list of deposit and withdraw transactions, stored in SQLite or PostgreSQL.

Run without a subcommand to play the demonstration scenario: accounts 1 and 2
are created with balances 100 and 50, then 50 is transferred from 1 to 2.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.start()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				return RunDemo(ctx, s, cmd.OutOrStdout())
			})
		},
	}

	root.PersistentFlags().StringVar(&a.configDir, "config", ".", "Directory containing config.yml")

	root.AddCommand(
		a.openCommand(),
		a.depositCommand(),
		a.withdrawCommand(),
		a.transferCommand(),
		a.balanceCommand(),
		a.statementCommand(),
		a.accountsCommand(),
	)
	return root
}

func (a *App) start() error {
	if err := config.LoadConfig(a.configDir); err != nil {
		return err
	}
	if err := logger.Configure(config.AppConfig.Log.Level, config.AppConfig.Log.Format); err != nil {
		return err
	}
	logger.Log.Debug("Configuration loaded successfully")

	conn, sessions, err := db.InitConnection(config.AppConfig.Database, db.BankSchema)
	if err != nil {
		return err
	}
	a.conn = conn
	a.sessions = sessions
	return nil
}

func (a *App) stop() {
	if a.conn == nil {
		return
	}
	if err := a.conn.Close(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close database")
	}
	a.conn = nil
	logger.Log.Debug("Database closed")
}
