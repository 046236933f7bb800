package repository

import (
	"context"
	"database/sql"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// IAccountRepository defines the contract for account database operations.
type IAccountRepository interface {
	CreateAccount(ctx context.Context, tx DBTX, account *model.Account) error
	UpdateBalance(ctx context.Context, tx DBTX, account *model.Account) error
	GetAccountByID(ctx context.Context, accountID int) (*model.Account, error)
	GetAllAccounts(ctx context.Context) ([]*model.Account, error)
}

type AccountRepository struct {
	DB DBTX
}

func NewAccountRepository(db DBTX) *AccountRepository {
	return &AccountRepository{DB: db}
}

// CreateAccount inserts a new account. An id already in use is a constraint
// error from the store.
func (r *AccountRepository) CreateAccount(ctx context.Context, tx DBTX, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.AccountID,
		"balance":    account.Balance,
	})
	log.Debug("Executing query to create account")

	query := `INSERT INTO accounts (account_id, balance) VALUES ($1, $2)`
	_, err := tx.ExecContext(ctx, query, account.AccountID, account.Balance)
	if err != nil {
		log.WithError(err).Error("Failed to execute create account query")
		return err
	}
	return nil
}

// UpdateBalance writes the balance of a stored account. It returns
// sql.ErrNoRows when no row has that id.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx DBTX, account *model.Account) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": account.AccountID,
		"balance":    account.Balance,
	})
	log.Debug("Executing query to update account balance")

	query := `UPDATE accounts SET balance = $1 WHERE account_id = $2`
	result, err := tx.ExecContext(ctx, query, account.Balance, account.AccountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute update balance query")
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		log.Warn("No account updated")
		return sql.ErrNoRows
	}
	return nil
}

// GetAccountByID returns sql.ErrNoRows when the account does not exist.
func (r *AccountRepository) GetAccountByID(ctx context.Context, accountID int) (*model.Account, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Debug("Executing query to get account by ID")

	account := &model.Account{}
	query := `SELECT account_id, balance FROM accounts WHERE account_id = $1`
	err := r.DB.QueryRowContext(ctx, query, accountID).Scan(&account.AccountID, &account.Balance)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("Account not found")
		} else {
			log.WithError(err).Error("Failed to execute get account by ID query")
		}
		return nil, err
	}
	return account, nil
}

// GetAllAccounts retrieves all accounts ordered by id.
func (r *AccountRepository) GetAllAccounts(ctx context.Context) ([]*model.Account, error) {
	log := logger.Log
	log.Debug("Executing query to get all accounts")

	query := `SELECT account_id, balance FROM accounts ORDER BY account_id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for all accounts")
		return nil, err
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var acc model.Account
		if err := rows.Scan(&acc.AccountID, &acc.Balance); err != nil {
			log.WithError(err).Error("Failed to scan account row")
			return nil, err
		}
		accounts = append(accounts, &acc)
	}
	return accounts, rows.Err()
}
