package service

import "errors"

// Business rejections. When one of these is returned nothing changed: no
// balance moved, no transaction was recorded and nothing was committed.
var (
	ErrInvalidAmount     = errors.New("amount must be a number greater than zero")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountExists     = errors.New("account already exists")
	ErrAccountNotFound   = errors.New("account not found")
)

// IsRejected reports whether err is a business rejection rather than a
// persistence failure.
func IsRejected(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrAccountExists)
}
