package app

import (
	"context"
	"fmt"
	"go-bank-ledger/db"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"strconv"

	"github.com/spf13/cobra"
)

func parseAccountID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid account id %q", s)
	}
	return id, nil
}

func (a *App) openCommand() *cobra.Command {
	var balance float64

	cmd := &cobra.Command{
		Use:   "open ID",
		Short: "Open a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				account, err := service.NewAccountService(s).OpenAccount(ctx, id, balance)
				if err != nil {
					return report(cmd.OutOrStdout(), "open", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), account)
				return nil
			})
		},
	}

	cmd.Flags().Float64Var(&balance, "balance", 0, "Opening balance")
	return cmd
}

// singleAccountCommand builds deposit and withdraw, which share their shape.
func (a *App) singleAccountCommand(use, short, op string,
	apply func(svc *service.AccountService, ctx context.Context, account *model.Account, amount float64) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				accounts := service.NewAccountService(s)
				account, err := accounts.LoadAccount(ctx, id)
				if err != nil {
					return err
				}

				amount, ok := model.ParseAmount(args[1])
				if !ok {
					return report(out, op, service.ErrInvalidAmount)
				}
				if err := apply(accounts, ctx, account, amount); err != nil {
					return report(out, op, err)
				}

				fmt.Fprintln(out, account)
				return nil
			})
		},
	}
}

func (a *App) depositCommand() *cobra.Command {
	return a.singleAccountCommand("deposit ID AMOUNT", "Deposit money into an account", "deposit",
		(*service.AccountService).Deposit)
}

func (a *App) withdrawCommand() *cobra.Command {
	return a.singleAccountCommand("withdraw ID AMOUNT", "Withdraw money from an account", "withdraw",
		(*service.AccountService).Withdraw)
}

func (a *App) transferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer FROM TO AMOUNT",
		Short: "Transfer money between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			fromID, err := parseAccountID(args[0])
			if err != nil {
				return err
			}
			toID, err := parseAccountID(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				accounts := service.NewAccountService(s)
				from, err := accounts.LoadAccount(ctx, fromID)
				if err != nil {
					return err
				}
				to, err := accounts.LoadAccount(ctx, toID)
				if err != nil {
					return err
				}

				amount, ok := model.ParseAmount(args[2])
				if !ok {
					return report(out, "transfer", service.ErrInvalidAmount)
				}
				if err := service.NewTransactionService(s).Transfer(ctx, from, to, amount); err != nil {
					return report(out, "transfer", err)
				}

				fmt.Fprintln(out, from)
				fmt.Fprintln(out, to)
				return nil
			})
		},
	}
}

func (a *App) balanceCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "balance ID",
		Short: "Print the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				accounts := service.NewAccountService(s)
				account, err := accounts.LoadAccount(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", accounts.GetBalance(account))
				return nil
			})
		},
	}
}

func (a *App) statementCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "statement ID",
		Short: "Print the transactions of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseAccountID(args[0])
			if err != nil {
				return err
			}

			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				account, err := service.NewAccountService(s).LoadAccount(ctx, id)
				if err != nil {
					return err
				}
				history, err := service.NewTransactionService(s).ListTransactionsForAccount(ctx, id)
				if err != nil {
					return err
				}
				RenderStatement(cmd.OutOrStdout(), account, history)
				return nil
			})
		},
	}
}

func (a *App) accountsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.sessions.WithSession(cmd.Context(), func(ctx context.Context, s *db.Session) error {
				accounts, err := service.NewAccountService(s).ListAccounts(ctx)
				if err != nil {
					return err
				}
				RenderAccounts(cmd.OutOrStdout(), accounts)
				return nil
			})
		},
	}
}
