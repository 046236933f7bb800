package app

import (
	"context"
	"errors"
	"fmt"
	"go-bank-ledger/model"
	"go-bank-ledger/service"
	"io"
)

// RunDemo transfers 50 from account 1 to account 2. Accounts missing from
// the store are registered first, 1 with 100 and 2 with 50; accounts left by
// earlier runs are loaded and keep their balance.
func RunDemo(ctx context.Context, session service.ISession, out io.Writer) error {
	accounts := service.NewAccountService(session)
	transactions := service.NewTransactionService(session)

	account1, err := demoAccount(ctx, accounts, 1, 100)
	if err != nil {
		return err
	}
	account2, err := demoAccount(ctx, accounts, 2, 50)
	if err != nil {
		return err
	}

	if err := report(out, "transfer", transactions.Transfer(ctx, account1, account2, 50)); err != nil {
		return err
	}

	fmt.Fprintln(out, account1)
	fmt.Fprintln(out, account2)
	return nil
}

func demoAccount(ctx context.Context, accounts *service.AccountService, id int, balance float64) (*model.Account, error) {
	account, err := accounts.LoadAccount(ctx, id)
	if !errors.Is(err, service.ErrAccountNotFound) {
		return account, err
	}

	account = model.NewAccount(id, balance)
	if err := accounts.Register(account); err != nil {
		return nil, err
	}
	return account, nil
}

// report prints business rejections and passes every other error through.
func report(out io.Writer, op string, err error) error {
	if err == nil {
		return nil
	}
	if service.IsRejected(err) {
		fmt.Fprintf(out, "%s rejected: %v\n", op, err)
		return nil
	}
	return err
}
