// Package store defines the unit of work shared by the ledger services and
// its Postgres implementation.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Querier is the set of account and transaction operations available
// inside and outside a unit of work.
type Querier interface {
	CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error)
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	// GetAccountForUpdate locks the account until the unit of work ends.
	GetAccountForUpdate(ctx context.Context, id int32) (domain.Account, error)
	GetAccountByIBAN(ctx context.Context, iban string) (domain.Account, error)
	ListAccounts(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error)
	UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) (domain.Account, error)

	CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
	GetTransaction(ctx context.Context, id int64) (domain.Transaction, error)
	// GetTransactionForUpdate locks the transaction until the unit of work ends.
	GetTransactionForUpdate(ctx context.Context, id int64) (domain.Transaction, error)
	ListTransactionsByStatus(ctx context.Context, status domain.Status) ([]domain.Transaction, error)
	// ListTransactionsByAccount pages through the transactions that have the
	// account as source or destination, ordered by id.
	ListTransactionsByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error)
	SumTransactionAmounts(ctx context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error)
}

// Store runs queries either one by one or grouped in an atomic unit of work.
type Store interface {
	Querier
	// ExecTx runs fn inside a unit of work. All changes made through the given
	// Querier are committed when fn returns nil and discarded otherwise.
	ExecTx(ctx context.Context, fn func(q Querier) error) error
}
