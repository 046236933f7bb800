package repository

import (
	"context"
	"go-bank-ledger/logger"
	"go-bank-ledger/model"

	"github.com/sirupsen/logrus"
)

// ITransactionRepository defines the contract for transaction database operations.
type ITransactionRepository interface {
	CreateTransaction(ctx context.Context, tx DBTX, transaction *model.Transaction) error
	GetTransactionsByAccountID(ctx context.Context, accountID int) ([]*model.Transaction, error)
	CountTransactions(ctx context.Context) (int, error)
}

// TransactionRepository implements ITransactionRepository.
type TransactionRepository struct {
	DB DBTX
}

func NewTransactionRepository(db DBTX) *TransactionRepository {
	return &TransactionRepository{DB: db}
}

// CreateTransaction inserts the record and sets its store-assigned id.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, tx DBTX, transaction *model.Transaction) error {
	log := logger.Log.WithFields(logrus.Fields{
		"account_id": transaction.AccountID,
		"amount":     transaction.Amount,
		"type":       transaction.Type,
	})
	log.Debug("Executing query to create a new transaction")

	query := `INSERT INTO transactions (account_id, amount, type, timestamp) VALUES ($1, $2, $3, $4) RETURNING transaction_id`
	err := tx.QueryRowContext(ctx, query,
		transaction.AccountID, transaction.Amount, string(transaction.Type), transaction.Timestamp,
	).Scan(&transaction.TransactionID)
	if err != nil {
		log.WithError(err).Error("Failed to execute create transaction query")
		return err
	}
	return nil
}

// GetTransactionsByAccountID retrieves the transactions of an account in insertion order.
func (r *TransactionRepository) GetTransactionsByAccountID(ctx context.Context, accountID int) ([]*model.Transaction, error) {
	log := logger.Log.WithField("account_id", accountID)
	log.Debug("Executing query to get transactions by account ID")

	query := `
		SELECT transaction_id, account_id, amount, type, timestamp
		FROM transactions
		WHERE account_id = $1
		ORDER BY transaction_id`

	rows, err := r.DB.QueryContext(ctx, query, accountID)
	if err != nil {
		log.WithError(err).Error("Failed to execute query for transactions by account ID")
		return nil, err
	}
	defer rows.Close()

	var transactions []*model.Transaction
	for rows.Next() {
		var t model.Transaction
		var typ string
		if err := rows.Scan(&t.TransactionID, &t.AccountID, &t.Amount, &typ, &t.Timestamp); err != nil {
			log.WithError(err).Error("Failed to scan transaction row")
			return nil, err
		}
		t.Type = model.TransactionType(typ)
		transactions = append(transactions, &t)
	}

	return transactions, rows.Err()
}

// CountTransactions returns the number of persisted transactions.
func (r *TransactionRepository) CountTransactions(ctx context.Context) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count transactions")
		return 0, err
	}
	return n, nil
}
