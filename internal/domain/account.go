// Package domain provides definitions of all ledger entities and their errors.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the balance of a single customer account.
type Account struct {
	ID        int32           `json:"id"`
	Owner     string          `json:"owner"`
	IBAN      string          `json:"iban"`
	Balance   decimal.Decimal `json:"balance"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateAccountParams is the input data to open an account.
type CreateAccountParams struct {
	Owner   string          `json:"owner"`
	IBAN    string          `json:"iban"`
	Balance decimal.Decimal `json:"balance"`
}
