package model

import "fmt"

// Account holds a caller-assigned id and a balance. It carries no store
// handle; persistence goes through a db.Session.
type Account struct {
	AccountID int     `json:"account_id"`
	Balance   float64 `json:"balance"`
}

// NewAccount builds an account. The balance defaults to 0.
func NewAccount(accountID int, balance ...float64) *Account {
	acc := &Account{AccountID: accountID}
	if len(balance) > 0 {
		acc.Balance = balance[0]
	}
	return acc
}

// GetBalance returns the in-memory balance without touching the store.
func (a *Account) GetBalance() float64 {
	return a.Balance
}

func (a *Account) String() string {
	return fmt.Sprintf("Account(id=%d, balance=%.2f)", a.AccountID, a.Balance)
}
