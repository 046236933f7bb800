// file: service/session.go

package service

import (
	"context"
	"go-bank-ledger/model"
)

// ISession is the persistence handle the services work through. It is
// implemented by *db.Session and mocked in tests.
type ISession interface {
	AddAccount(accs ...*model.Account) error
	AddTransaction(ts ...*model.Transaction)
	Commit(ctx context.Context) error
	GetAccount(ctx context.Context, accountID int) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]*model.Account, error)
	ListTransactions(ctx context.Context, accountID int) ([]*model.Transaction, error)
}
