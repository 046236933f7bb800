package model

import (
	"time"
)

type TransactionType string

const (
	TypeDeposit  TransactionType = "deposit"
	TypeWithdraw TransactionType = "withdraw"
)

// Transaction is an append-only record of one balance change. Amount is
// always positive; Type carries the direction.
type Transaction struct {
	TransactionID int64           `json:"transaction_id"`
	AccountID     int             `json:"account_id"`
	Amount        float64         `json:"amount"`
	Type          TransactionType `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewTransaction stamps the record with the current time.
func NewTransaction(accountID int, amount float64, typ TransactionType) *Transaction {
	return &Transaction{
		AccountID: accountID,
		Amount:    amount,
		Type:      typ,
		Timestamp: time.Now(),
	}
}
