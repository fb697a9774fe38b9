package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/accountrepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/transactionrepo"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Queries executes queries against a connection pool or an open transaction.
type Queries struct {
	accounts     *accountrepo.RepoPGS
	transactions *transactionrepo.RepoPGS
}

// NewQueries returns Queries running on db.
func NewQueries(db dbpkg.SQLInterface) *Queries {
	return &Queries{
		accounts:     accountrepo.NewRepoPGS(db),
		transactions: transactionrepo.NewRepoPGS(db),
	}
}

// SQLStore provides all queries and their execution in Postgres transactions.
type SQLStore struct {
	*Queries
	db *sql.DB
}

// NewSQLStore returns SQLStore backed by db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		Queries: NewQueries(db),
		db:      db,
	}
}

// ExecTx executes fn within a database transaction.
func (s *SQLStore) ExecTx(ctx context.Context, fn func(q Querier) error) error {
	l := zerolog.Ctx(ctx)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(NewQueries(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

// CreateAccount creates the account and then returns it.
func (q *Queries) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	return q.accounts.Create(ctx, arg)
}

// GetAccount returns the account with the given id.
func (q *Queries) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	return q.accounts.Get(ctx, id)
}

// GetAccountForUpdate returns the account with the given id and locks its row.
func (q *Queries) GetAccountForUpdate(ctx context.Context, id int32) (domain.Account, error) {
	return q.accounts.GetForUpdate(ctx, id)
}

// GetAccountByIBAN returns the account with the given iban.
func (q *Queries) GetAccountByIBAN(ctx context.Context, iban string) (domain.Account, error) {
	return q.accounts.GetByIBAN(ctx, iban)
}

// ListAccounts returns the accounts of the owner.
func (q *Queries) ListAccounts(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	return q.accounts.List(ctx, owner, limit, offset)
}

// UpdateAccountBalance saves the balance of the account.
func (q *Queries) UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) (domain.Account, error) {
	return q.accounts.UpdateBalance(ctx, id, balance)
}

// CreateTransaction saves a new transaction.
func (q *Queries) CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	return q.transactions.Create(ctx, t)
}

// GetTransaction returns the transaction with the given id.
func (q *Queries) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	return q.transactions.Get(ctx, id)
}

// GetTransactionForUpdate returns the transaction with the given id and locks its row.
func (q *Queries) GetTransactionForUpdate(ctx context.Context, id int64) (domain.Transaction, error) {
	return q.transactions.GetForUpdate(ctx, id)
}

// ListTransactionsByStatus returns all transactions in the status.
func (q *Queries) ListTransactionsByStatus(ctx context.Context, status domain.Status) ([]domain.Transaction, error) {
	return q.transactions.ListByStatus(ctx, status)
}

// ListTransactionsByAccount returns a page of the transactions moving money from or to the account.
func (q *Queries) ListTransactionsByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Transaction, error) {
	return q.transactions.ListByAccount(ctx, accountID, limit, offset)
}

// UpdateTransactionStatus moves a non-terminal transaction to the status.
func (q *Queries) UpdateTransactionStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error) {
	return q.transactions.UpdateStatus(ctx, id, status, detail)
}

// SumTransactionAmounts sums the outgoing amounts of the account in the statuses.
func (q *Queries) SumTransactionAmounts(ctx context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error) {
	return q.transactions.SumAmounts(ctx, sourceAccountID, statuses)
}
