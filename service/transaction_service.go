package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

type TransactionService struct {
	session ISession
}

func NewTransactionService(session ISession) *TransactionService {
	return &TransactionService{session: session}
}

// Transfer moves amount from one account to another. Both balance updates and
// both records, a withdrawal on from followed by a deposit on to, are
// committed together or not at all. A transfer to the same account must pass
// the same instance twice.
func (s *TransactionService) Transfer(ctx context.Context, from, to *model.Account, amount float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"from_account_id": from.AccountID,
		"to_account_id":   to.AccountID,
		"amount":          amount,
	})

	log.Info("Starting money transfer process")

	if !model.IsValidAmount(amount) {
		log.Info("Transfer rejected: invalid amount")
		return ErrInvalidAmount
	}
	if from.Balance < amount {
		log.WithField("balance", from.Balance).Info("Transfer rejected: insufficient funds")
		return ErrInsufficientFunds
	}

	if err := s.session.AddAccount(from, to); err != nil {
		log.WithError(err).Error("Transfer failed")
		return fmt.Errorf("could not attach accounts: %w", err)
	}
	fromBalance, toBalance := from.Balance, to.Balance
	from.Balance -= amount
	to.Balance += amount

	s.session.AddTransaction(
		model.NewTransaction(from.AccountID, amount, model.TypeWithdraw),
		model.NewTransaction(to.AccountID, amount, model.TypeDeposit),
	)

	if err := s.session.Commit(ctx); err != nil {
		to.Balance = toBalance
		from.Balance = fromBalance
		return fmt.Errorf("could not commit transfer: %w", err)
	}

	log.Info("Transaction completed successfully")
	return nil
}

// ListTransactionsForAccount retrieves the committed history of an account.
func (s *TransactionService) ListTransactionsForAccount(ctx context.Context, accountID int) ([]*model.Transaction, error) {
	if _, err := s.session.GetAccount(ctx, accountID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	return s.session.ListTransactions(ctx, accountID)
}
