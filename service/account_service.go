// file: service/account_service.go

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"math"

	"github.com/sirupsen/logrus"
)

// AccountService runs single-account operations against one session.
type AccountService struct {
	session ISession
}

func NewAccountService(session ISession) *AccountService {
	return &AccountService{session: session}
}

// Register attaches accounts to the session without committing. They are
// inserted by the next commit, usually the one of the first operation, so
// ids must not exist in the store yet.
func (s *AccountService) Register(accs ...*model.Account) error {
	return s.session.AddAccount(accs...)
}

// OpenAccount creates and commits a new account.
func (s *AccountService) OpenAccount(ctx context.Context, accountID int, balance float64) (*model.Account, error) {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": accountID,
		"balance":    balance,
	})

	if balance < 0 || math.IsNaN(balance) || math.IsInf(balance, 0) {
		log.Info("Open account rejected: invalid opening balance")
		return nil, ErrInvalidAmount
	}

	_, err := s.session.GetAccount(ctx, accountID)
	switch {
	case err == nil:
		log.Info("Open account rejected: id already in use")
		return nil, ErrAccountExists
	case !errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("could not check account: %w", err)
	}

	account := model.NewAccount(accountID, balance)
	if err := s.session.AddAccount(account); err != nil {
		return nil, fmt.Errorf("could not attach account: %w", err)
	}
	if err := s.session.Commit(ctx); err != nil {
		return nil, fmt.Errorf("could not commit new account: %w", err)
	}

	log.Info("Account opened")
	return account, nil
}

// LoadAccount returns the session's instance of the account.
func (s *AccountService) LoadAccount(ctx context.Context, accountID int) (*model.Account, error) {
	account, err := s.session.GetAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

// ListAccounts returns every committed account.
func (s *AccountService) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	return s.session.ListAccounts(ctx)
}

// Deposit adds amount to the balance and records a deposit.
func (s *AccountService) Deposit(ctx context.Context, account *model.Account, amount float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.AccountID,
		"amount":     amount,
	})

	if !model.IsValidAmount(amount) {
		log.Info("Deposit rejected: invalid amount")
		return ErrInvalidAmount
	}

	if err := s.session.AddAccount(account); err != nil {
		log.WithError(err).Error("Deposit failed")
		return fmt.Errorf("could not attach account: %w", err)
	}
	previous := account.Balance
	account.Balance += amount
	s.session.AddTransaction(model.NewTransaction(account.AccountID, amount, model.TypeDeposit))

	if err := s.session.Commit(ctx); err != nil {
		account.Balance = previous
		return fmt.Errorf("could not commit deposit: %w", err)
	}

	log.Info("Deposit completed")
	return nil
}

// Withdraw takes amount from the balance and records a withdrawal.
func (s *AccountService) Withdraw(ctx context.Context, account *model.Account, amount float64) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.AccountID,
		"amount":     amount,
	})

	if !model.IsValidAmount(amount) {
		log.Info("Withdraw rejected: invalid amount")
		return ErrInvalidAmount
	}
	if account.Balance < amount {
		log.WithField("balance", account.Balance).Info("Withdraw rejected: insufficient funds")
		return ErrInsufficientFunds
	}

	if err := s.session.AddAccount(account); err != nil {
		log.WithError(err).Error("Withdraw failed")
		return fmt.Errorf("could not attach account: %w", err)
	}
	previous := account.Balance
	account.Balance -= amount
	s.session.AddTransaction(model.NewTransaction(account.AccountID, amount, model.TypeWithdraw))

	if err := s.session.Commit(ctx); err != nil {
		account.Balance = previous
		return fmt.Errorf("could not commit withdrawal: %w", err)
	}

	log.Info("Withdraw completed")
	return nil
}

// GetBalance never touches the store.
func (s *AccountService) GetBalance(account *model.Account) float64 {
	return account.GetBalance()
}
