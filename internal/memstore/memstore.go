// Package memstore provides an in-memory store.Store.
//
// Every unit of work stages its writes and applies them on commit. Rows are
// locked for the life of the unit of work that first wrote or selected them
// for update, so concurrent read-modify-write cycles on the same account are
// serialized the same way Postgres row locks serialize them.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/store"
)

var (
	_ store.Store   = (*Store)(nil)
	_ store.Querier = (*unit)(nil)
)

// rowLock is a mutex whose acquisition can be abandoned when ctx is done.
type rowLock chan struct{}

func (l rowLock) acquire(ctx context.Context) error {
	select {
	case l <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l rowLock) release() {
	<-l
}

// Store keeps accounts and transactions in memory.
type Store struct {
	mu sync.RWMutex

	accounts     map[int32]domain.Account
	ibans        map[string]int32
	transactions map[int64]domain.Transaction

	accountLocks     map[int32]rowLock
	transactionLocks map[int64]rowLock

	lastAccountID     int32
	lastTransactionID int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		accounts:         make(map[int32]domain.Account),
		ibans:            make(map[string]int32),
		transactions:     make(map[int64]domain.Transaction),
		accountLocks:     make(map[int32]rowLock),
		transactionLocks: make(map[int64]rowLock),
	}
}

// ExecTx runs fn inside a unit of work.
func (s *Store) ExecTx(ctx context.Context, fn func(q store.Querier) error) error {
	u := s.begin()
	defer u.release()

	if err := fn(u); err != nil {
		return err
	}

	return u.commit()
}

// autocommit runs a single operation in its own unit of work.
func autocommit[T any](s *Store, fn func(u *unit) (T, error)) (T, error) {
	u := s.begin()
	defer u.release()

	v, err := fn(u)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := u.commit(); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// CreateAccount creates the account and then returns it.
func (s *Store) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	return autocommit(s, func(u *unit) (domain.Account, error) { return u.CreateAccount(ctx, arg) })
}

// GetAccount returns the account with the given id.
func (s *Store) GetAccount(ctx context.Context, id int32) (domain.Account, error) {
	return autocommit(s, func(u *unit) (domain.Account, error) { return u.GetAccount(ctx, id) })
}

// GetAccountForUpdate outside a unit of work releases the lock right away.
func (s *Store) GetAccountForUpdate(ctx context.Context, id int32) (domain.Account, error) {
	return autocommit(s, func(u *unit) (domain.Account, error) { return u.GetAccountForUpdate(ctx, id) })
}

// GetAccountByIBAN returns the account with the given iban.
func (s *Store) GetAccountByIBAN(ctx context.Context, iban string) (domain.Account, error) {
	return autocommit(s, func(u *unit) (domain.Account, error) { return u.GetAccountByIBAN(ctx, iban) })
}

// ListAccounts returns the accounts of the owner ordered by id.
func (s *Store) ListAccounts(ctx context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	return autocommit(s, func(u *unit) ([]domain.Account, error) { return u.ListAccounts(ctx, owner, limit, offset) })
}

// UpdateAccountBalance saves the balance of the account.
func (s *Store) UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) (domain.Account, error) {
	return autocommit(s, func(u *unit) (domain.Account, error) { return u.UpdateAccountBalance(ctx, id, balance) })
}

// CreateTransaction saves a new transaction.
func (s *Store) CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	return autocommit(s, func(u *unit) (domain.Transaction, error) { return u.CreateTransaction(ctx, t) })
}

// GetTransaction returns the transaction with the given id.
func (s *Store) GetTransaction(ctx context.Context, id int64) (domain.Transaction, error) {
	return autocommit(s, func(u *unit) (domain.Transaction, error) { return u.GetTransaction(ctx, id) })
}

// GetTransactionForUpdate outside a unit of work releases the lock right away.
func (s *Store) GetTransactionForUpdate(ctx context.Context, id int64) (domain.Transaction, error) {
	return autocommit(s, func(u *unit) (domain.Transaction, error) { return u.GetTransactionForUpdate(ctx, id) })
}

// ListTransactionsByStatus returns all transactions in the status ordered by id.
func (s *Store) ListTransactionsByStatus(ctx context.Context, status domain.Status) ([]domain.Transaction, error) {
	return autocommit(s, func(u *unit) ([]domain.Transaction, error) { return u.ListTransactionsByStatus(ctx, status) })
}

// ListTransactionsByAccount returns a page of the transactions moving money
// from or to the account, ordered by id.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID int32, limit, offset int32) ([]domain.Transaction, error) {
	return autocommit(s, func(u *unit) ([]domain.Transaction, error) {
		return u.ListTransactionsByAccount(ctx, accountID, limit, offset)
	})
}

// UpdateTransactionStatus moves a non-terminal transaction to the status.
func (s *Store) UpdateTransactionStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error) {
	return autocommit(s, func(u *unit) (domain.Transaction, error) {
		return u.UpdateTransactionStatus(ctx, id, status, detail)
	})
}

// SumTransactionAmounts sums the outgoing amounts of the account in the statuses.
func (s *Store) SumTransactionAmounts(ctx context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error) {
	return autocommit(s, func(u *unit) (decimal.Decimal, error) {
		return u.SumTransactionAmounts(ctx, sourceAccountID, statuses)
	})
}

func (s *Store) accountLock(id int32) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.accountLocks[id]
	if !ok {
		l = make(rowLock, 1)
		s.accountLocks[id] = l
	}

	return l
}

func (s *Store) transactionLock(id int64) rowLock {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.transactionLocks[id]
	if !ok {
		l = make(rowLock, 1)
		s.transactionLocks[id] = l
	}

	return l
}

func now() time.Time {
	return time.Now().UTC()
}

func sortAccounts(items []domain.Account) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func sortTransactions(items []domain.Transaction) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

// page cuts the [offset, offset+limit) window out of items. A non-positive
// limit means no upper bound.
func page[T any](items []T, limit, offset int32) ([]T, error) {
	if offset < 0 {
		return nil, domain.ErrInvalidPage
	}

	if int(offset) >= len(items) {
		return []T{}, nil
	}

	items = items[offset:]
	if limit > 0 && int(limit) < len(items) {
		items = items[:limit]
	}

	return items, nil
}
