// file: db/session_test.go

package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"go-bank-ledger/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockSession(t *testing.T) (*Session, sqlmock.Sqlmock) {
	conn, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewSession(conn), dbMock
}

func TestSession_Commit(t *testing.T) {
	ctx := context.Background()

	t.Run("flushes new accounts then transactions in order", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		acc1 := model.NewAccount(1, 100)
		acc2 := model.NewAccount(2, 50)
		require.NoError(t, s.AddAccount(acc1, acc2))
		withdrawal := model.NewTransaction(1, 50, model.TypeWithdraw)
		deposit := model.NewTransaction(2, 50, model.TypeDeposit)
		s.AddTransaction(withdrawal, deposit)

		dbMock.ExpectBegin()
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(1, 100.0).WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(2, 50.0).WillReturnResult(sqlmock.NewResult(2, 1))
		dbMock.ExpectQuery("INSERT INTO transactions").
			WithArgs(1, 50.0, "withdraw", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(1))
		dbMock.ExpectQuery("INSERT INTO transactions").
			WithArgs(2, 50.0, "deposit", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(2))
		dbMock.ExpectCommit()

		err := s.Commit(ctx)

		require.NoError(t, err)
		assert.Equal(t, int64(1), withdrawal.TransactionID)
		assert.Equal(t, int64(2), deposit.TransactionID)
		assert.Zero(t, s.Pending())
		assert.NoError(t, dbMock.ExpectationsWereMet())

		// Nothing is dirty anymore, so no statement is issued.
		assert.NoError(t, s.Commit(ctx))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("only changed accounts are flushed", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		acc1 := model.NewAccount(1, 100)
		acc2 := model.NewAccount(2, 50)
		require.NoError(t, s.AddAccount(acc1, acc2))

		dbMock.ExpectBegin()
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(1, 100.0).WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(2, 50.0).WillReturnResult(sqlmock.NewResult(2, 1))
		dbMock.ExpectCommit()
		require.NoError(t, s.Commit(ctx))

		acc2.Balance = 80
		dbMock.ExpectBegin()
		dbMock.ExpectExec("UPDATE accounts SET balance").WithArgs(80.0, 2).WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectCommit()

		require.NoError(t, s.Commit(ctx))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("insert failure rolls everything back", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		acc := model.NewAccount(1, 100)
		require.NoError(t, s.AddAccount(acc))
		dbMock.ExpectBegin()
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(1, 100.0).WillReturnResult(sqlmock.NewResult(1, 1))
		dbMock.ExpectCommit()
		require.NoError(t, s.Commit(ctx))

		acc.Balance += 25
		s.AddTransaction(model.NewTransaction(1, 25, model.TypeDeposit))

		dbMock.ExpectBegin()
		dbMock.ExpectExec("UPDATE accounts SET balance").WithArgs(125.0, 1).WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectQuery("INSERT INTO transactions").WillReturnError(errors.New("constraint failed"))
		dbMock.ExpectRollback()

		err := s.Commit(ctx)

		assert.ErrorContains(t, err, "could not create transaction record")
		assert.Equal(t, 100.0, acc.Balance)
		assert.Zero(t, s.Pending())
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		acc := model.NewAccount(3, 10)
		require.NoError(t, s.AddAccount(acc))
		tr := model.NewTransaction(3, 10, model.TypeDeposit)
		s.AddTransaction(tr)

		dbMock.ExpectBegin()
		dbMock.ExpectExec("INSERT INTO accounts").WithArgs(3, 10.0).WillReturnResult(sqlmock.NewResult(3, 1))
		dbMock.ExpectQuery("INSERT INTO transactions").
			WillReturnRows(sqlmock.NewRows([]string{"transaction_id"}).AddRow(9))
		dbMock.ExpectCommit().WillReturnError(errors.New("commit failed"))

		err := s.Commit(ctx)

		assert.ErrorContains(t, err, "could not commit transaction")
		assert.Zero(t, tr.TransactionID)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		require.NoError(t, s.AddAccount(model.NewAccount(4)))
		dbMock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		err := s.Commit(ctx)

		assert.ErrorContains(t, err, "could not begin transaction")
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestSession_AddAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("same instance twice", func(t *testing.T) {
		s, _ := newMockSession(t)
		acc := model.NewAccount(1, 100)

		require.NoError(t, s.AddAccount(acc, acc))
		require.NoError(t, s.AddAccount(acc))
		assert.Len(t, s.order, 1)
	})

	t.Run("another instance of an attached id", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		dbMock.ExpectQuery("SELECT account_id, balance FROM accounts WHERE account_id").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).AddRow(1, 100.0))
		loaded, err := s.GetAccount(ctx, 1)
		require.NoError(t, err)

		err = s.AddAccount(model.NewAccount(1, 100))

		assert.ErrorIs(t, err, ErrAccountAttached)
		current, err := s.GetAccount(ctx, 1)
		require.NoError(t, err)
		assert.Same(t, loaded, current)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("two instances of one id in a single call", func(t *testing.T) {
		s, _ := newMockSession(t)

		err := s.AddAccount(model.NewAccount(2), model.NewAccount(3), model.NewAccount(3))

		assert.ErrorIs(t, err, ErrAccountAttached)
		assert.Empty(t, s.order)
	})

	t.Run("closed session", func(t *testing.T) {
		s, _ := newMockSession(t)
		s.Close()

		assert.ErrorIs(t, s.AddAccount(model.NewAccount(1)), ErrSessionClosed)
	})
}

func TestSession_CommitInsertsNewAccountsOnly(t *testing.T) {
	s, dbMock := newMockSession(t)
	acc := model.NewAccount(1)
	require.NoError(t, s.AddAccount(acc))
	acc.Balance = 5
	s.AddTransaction(model.NewTransaction(1, 5, model.TypeDeposit))

	dbMock.ExpectBegin()
	dbMock.ExpectExec("INSERT INTO accounts").
		WithArgs(1, 5.0).
		WillReturnError(errors.New("UNIQUE constraint failed: accounts.account_id"))
	dbMock.ExpectRollback()

	err := s.Commit(context.Background())

	assert.ErrorContains(t, err, "could not store account 1")
	assert.Equal(t, 0.0, acc.Balance)
	assert.Zero(t, s.Pending())
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSession_RollbackAndClose(t *testing.T) {
	ctx := context.Background()
	s, dbMock := newMockSession(t)
	acc := model.NewAccount(1, 100)
	require.NoError(t, s.AddAccount(acc))

	acc.Balance = 40
	s.AddTransaction(model.NewTransaction(1, 60, model.TypeWithdraw))
	s.Rollback()

	assert.Equal(t, 100.0, acc.Balance)
	assert.Zero(t, s.Pending())

	acc.Balance = 70
	s.Close()
	assert.Equal(t, 100.0, acc.Balance)
	assert.ErrorIs(t, s.Commit(ctx), ErrSessionClosed)
	_, err := s.GetAccount(ctx, 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
	s.Close()
	assert.NoError(t, dbMock.ExpectationsWereMet())
}

func TestSession_GetAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once then returns the attached instance", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		dbMock.ExpectQuery("SELECT account_id, balance FROM accounts WHERE account_id").
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}).AddRow(5, 20.0))

		first, err := s.GetAccount(ctx, 5)
		require.NoError(t, err)
		second, err := s.GetAccount(ctx, 5)
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.NoError(t, dbMock.ExpectationsWereMet())

		// Loaded accounts are clean until changed, then updated in place.
		assert.NoError(t, s.Commit(ctx))

		first.Balance = 35
		dbMock.ExpectBegin()
		dbMock.ExpectExec("UPDATE accounts SET balance").WithArgs(35.0, 5).WillReturnResult(sqlmock.NewResult(0, 1))
		dbMock.ExpectCommit()
		require.NoError(t, s.Commit(ctx))
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})

	t.Run("unknown id", func(t *testing.T) {
		s, dbMock := newMockSession(t)
		dbMock.ExpectQuery("SELECT account_id, balance FROM accounts WHERE account_id").
			WithArgs(6).
			WillReturnRows(sqlmock.NewRows([]string{"account_id", "balance"}))

		_, err := s.GetAccount(ctx, 6)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, dbMock.ExpectationsWereMet())
	})
}

func TestSessionFactory_WithSession(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	factory := NewSessionFactory(conn)
	acc := model.NewAccount(1, 100)
	var used *Session
	boom := errors.New("boom")

	err = factory.WithSession(context.Background(), func(ctx context.Context, s *Session) error {
		used = s
		require.NoError(t, s.AddAccount(acc))
		acc.Balance = 0
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 100.0, acc.Balance)
	assert.ErrorIs(t, used.Commit(context.Background()), ErrSessionClosed)
}

func TestSessionFactory_WithSessionPanics(t *testing.T) {
	conn, _, err := sqlmock.New()
	require.NoError(t, err)
	defer conn.Close()

	var used *Session
	assert.Panics(t, func() {
		_ = NewSessionFactory(conn).WithSession(context.Background(), func(ctx context.Context, s *Session) error {
			used = s
			panic("unexpected")
		})
	})
	assert.ErrorIs(t, used.Commit(context.Background()), ErrSessionClosed)
}
