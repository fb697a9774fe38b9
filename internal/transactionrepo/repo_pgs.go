// Package transactionrepo manages repository layer of transactions.
package transactionrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// RepoPGS facilitates transaction repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns transaction RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const columns = `id, type, status, amount, source_account_id, destination_account_id,
	destination_iban, title, error, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (domain.Transaction, error) {
	var (
		t           domain.Transaction
		source, dst sql.NullInt32
	)

	err := row.Scan(
		&t.ID,
		&t.Type,
		&t.Status,
		&t.Amount,
		&source,
		&dst,
		&t.DestinationIBAN,
		&t.Title,
		&t.Error,
		&t.CreatedAt,
		&t.UpdatedAt,
	)

	t.SourceAccountID = source.Int32
	t.DestinationAccountID = dst.Int32

	return t, err
}

// nullID stores an absent account reference as NULL.
func nullID(id int32) sql.NullInt32 {
	return sql.NullInt32{Int32: id, Valid: id != 0}
}

const createQuery = `
INSERT INTO
    transactions (type, status, amount, source_account_id, destination_account_id, destination_iban, title)
VALUES
    ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + columns

// Create saves the transaction and then returns it with its id and timestamps.
func (r *RepoPGS) Create(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	if t.Status == "" {
		t.Status = domain.StatusNew
	}

	row := r.db.QueryRowContext(ctx, createQuery,
		t.Type,
		t.Status,
		t.Amount,
		nullID(t.SourceAccountID),
		nullID(t.DestinationAccountID),
		t.DestinationIBAN,
		t.Title,
	)

	created, err := scanTransaction(row)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx, %+v)", t)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Constraint {
			case "transactions_source_account_id_fkey", "transactions_destination_account_id_fkey":
				return domain.Transaction{}, domain.ErrAccountNotFound
			case "transactions_amount_check":
				return domain.Transaction{}, domain.ErrInvalidAmount
			}
		}

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return created, nil
}

const getQuery = `
SELECT ` + columns + `
FROM transactions
WHERE id = $1
`

// Get returns the transaction with the given id.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return r.get(ctx, getQuery, id)
}

const getForUpdateQuery = getQuery + `FOR UPDATE`

// GetForUpdate returns the transaction with the given id and locks its row
// until the surrounding transaction ends.
func (r *RepoPGS) GetForUpdate(ctx context.Context, id int64) (domain.Transaction, error) {
	return r.get(ctx, getForUpdateQuery, id)
}

func (r *RepoPGS) get(ctx context.Context, query string, id int64) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transaction{}, domain.ErrTransactionNotFound
		}

		l.Error().Err(err).Send()

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const listByStatusQuery = `
SELECT ` + columns + `
FROM transactions
WHERE status = $1
ORDER BY id
`

// ListByStatus returns all transactions in the given status, oldest first.
func (r *RepoPGS) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Transaction, error) {
	return r.list(ctx, listByStatusQuery, status)
}

const listByAccountQuery = `
SELECT ` + columns + `
FROM transactions
WHERE source_account_id = $1 OR destination_account_id = $1
ORDER BY id
LIMIT $2
OFFSET $3
`

// ListByAccount returns the specified page of the transactions that have the
// account as source or destination, oldest first.
func (r *RepoPGS) ListByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Transaction, error) {
	return r.list(ctx, listByAccountQuery, accountID, limit, offset)
}

func (r *RepoPGS) list(ctx context.Context, query string, args ...any) ([]domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Transaction{}

	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, t)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const updateStatusQuery = `
UPDATE transactions
SET status = $2, error = $3, updated_at = now()
WHERE id = $1 AND status IN ('NEW', 'PENDING')
RETURNING ` + columns

// UpdateStatus moves a non-terminal transaction to the given status.
//
// It returns domain.ErrTransactionFinalized for transactions that already reached
// a terminal status, which are left untouched.
func (r *RepoPGS) UpdateStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error) {
	l := zerolog.Ctx(ctx)

	t, err := scanTransaction(r.db.QueryRowContext(ctx, updateStatusQuery, id, status, detail))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if _, err := r.Get(ctx, id); err != nil {
				return domain.Transaction{}, err
			}

			return domain.Transaction{}, domain.ErrTransactionFinalized
		}

		l.Error().Err(err).Send()

		return domain.Transaction{}, errorspkg.ErrInternal
	}

	return t, nil
}

const sumAmountsQuery = `
SELECT COALESCE(SUM(amount), 0)
FROM transactions
WHERE source_account_id = $1 AND status = ANY($2)
`

// SumAmounts returns the total amount of the transactions leaving the account
// in any of the given statuses.
func (r *RepoPGS) SumAmounts(ctx context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	var sum decimal.Decimal

	err := r.db.QueryRowContext(ctx, sumAmountsQuery, sourceAccountID, pq.Array(names)).Scan(&sum)
	if err != nil {
		l.Error().Err(err).Send()
		return decimal.Decimal{}, errorspkg.ErrInternal
	}

	return sum, nil
}
