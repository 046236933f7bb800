// file: db/session.go

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"
	"go-bank-ledger/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrSessionClosed   = errors.New("session is closed")
	ErrAccountAttached = errors.New("another instance of the account is already attached")
)

type trackedAccount struct {
	account   *model.Account
	flushed   float64
	persisted bool
}

func (t *trackedAccount) dirty() bool {
	return !t.persisted || t.account.Balance != t.flushed
}

// Session is a unit of work over the store. On Commit, new attached accounts
// are inserted and changed ones updated, then pending transactions are
// inserted in the order they were added. All of it happens in one store
// transaction.
//
// A Session is not safe for concurrent use. It has exactly one owner.
type Session struct {
	ID string

	db           *sql.DB
	accounts     repository.IAccountRepository
	transactions repository.ITransactionRepository

	tracked map[int]*trackedAccount
	order   []int
	pending []*model.Transaction
	closed  bool
}

func NewSession(db *sql.DB) *Session {
	return &Session{
		ID:           uuid.NewString(),
		db:           db,
		accounts:     repository.NewAccountRepository(db),
		transactions: repository.NewTransactionRepository(db),
		tracked:      make(map[int]*trackedAccount),
	}
}

func (s *Session) log() *logrus.Entry {
	return logger.Log.WithField("session_id", s.ID)
}

// AddAccount attaches accounts. Each id maps to one instance per session:
// attaching a different instance for an id that is already attached fails
// with ErrAccountAttached and attaches nothing.
func (s *Session) AddAccount(accs ...*model.Account) error {
	if s.closed {
		return ErrSessionClosed
	}

	seen := make(map[int]*model.Account, len(accs))
	for _, acc := range accs {
		attached := seen[acc.AccountID]
		if t, ok := s.tracked[acc.AccountID]; ok {
			attached = t.account
		}
		if attached != nil && attached != acc {
			return fmt.Errorf("account %d: %w", acc.AccountID, ErrAccountAttached)
		}
		seen[acc.AccountID] = acc
	}

	for _, acc := range accs {
		if _, ok := s.tracked[acc.AccountID]; ok {
			continue
		}
		s.tracked[acc.AccountID] = &trackedAccount{account: acc, flushed: acc.Balance}
		s.order = append(s.order, acc.AccountID)
	}
	return nil
}

// AddTransaction registers records to insert on the next Commit.
func (s *Session) AddTransaction(ts ...*model.Transaction) {
	s.pending = append(s.pending, ts...)
}

// Pending returns the number of transactions waiting for Commit.
func (s *Session) Pending() int {
	return len(s.pending)
}

// Commit writes every dirty attached account and every pending transaction
// atomically. On failure nothing is stored and the session is rolled back.
func (s *Session) Commit(ctx context.Context) error {
	if s.closed {
		return ErrSessionClosed
	}

	var dirty []*trackedAccount
	for _, id := range s.order {
		if t := s.tracked[id]; t.dirty() {
			dirty = append(dirty, t)
		}
	}
	if len(dirty) == 0 && len(s.pending) == 0 {
		return nil
	}

	log := s.log().WithFields(logrus.Fields{
		"accounts":     len(dirty),
		"transactions": len(s.pending),
	})

	if err := s.flush(ctx, dirty); err != nil {
		log.WithError(err).Error("Commit failed, rolling back session")
		s.Rollback()
		return err
	}

	for _, t := range dirty {
		t.flushed = t.account.Balance
		t.persisted = true
	}
	s.pending = nil

	log.Debug("Session committed")
	return nil
}

func (s *Session) flush(ctx context.Context, dirty []*trackedAccount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, t := range dirty {
		store := s.accounts.CreateAccount
		if t.persisted {
			store = s.accounts.UpdateBalance
		}
		if err := store(ctx, tx, t.account); err != nil {
			return fmt.Errorf("could not store account %d: %w", t.account.AccountID, err)
		}
	}

	for _, tr := range s.pending {
		if err := s.transactions.CreateTransaction(ctx, tx, tr); err != nil {
			return fmt.Errorf("could not create transaction record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Rollback discards pending transactions and resets attached accounts to the
// balance they had when last flushed or attached.
func (s *Session) Rollback() {
	for _, id := range s.order {
		t := s.tracked[id]
		t.account.Balance = t.flushed
	}
	for _, tr := range s.pending {
		tr.TransactionID = 0
	}
	s.pending = nil
}

// Close rolls back uncommitted work and detaches everything.
func (s *Session) Close() {
	if s.closed {
		return
	}
	if len(s.pending) > 0 {
		s.log().WithField("transactions", len(s.pending)).Warn("Closing session with uncommitted transactions")
	}
	s.Rollback()
	s.tracked = make(map[int]*trackedAccount)
	s.order = nil
	s.closed = true
}

// GetAccount returns the attached instance for accountID, loading and
// attaching it when needed. It returns sql.ErrNoRows for unknown ids.
func (s *Session) GetAccount(ctx context.Context, accountID int) (*model.Account, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if t, ok := s.tracked[accountID]; ok {
		return t.account, nil
	}

	acc, err := s.accounts.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	s.tracked[accountID] = &trackedAccount{account: acc, flushed: acc.Balance, persisted: true}
	s.order = append(s.order, accountID)
	return acc, nil
}

// ListAccounts reads every committed account.
func (s *Session) ListAccounts(ctx context.Context) ([]*model.Account, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.accounts.GetAllAccounts(ctx)
}

// ListTransactions reads the committed transactions of an account.
func (s *Session) ListTransactions(ctx context.Context, accountID int) ([]*model.Transaction, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.transactions.GetTransactionsByAccountID(ctx, accountID)
}

// SessionFactory hands out sessions bound to one store.
type SessionFactory struct {
	db *sql.DB
}

func NewSessionFactory(db *sql.DB) *SessionFactory {
	return &SessionFactory{db: db}
}

func (f *SessionFactory) NewSession() *Session {
	return NewSession(f.db)
}

// WithSession runs fn with a fresh session and closes it afterwards, whether
// fn returns an error or panics.
func (f *SessionFactory) WithSession(ctx context.Context, fn func(ctx context.Context, s *Session) error) error {
	s := f.NewSession()
	defer s.Close()
	return fn(ctx, s)
}
