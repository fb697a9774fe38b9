package memstore

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// unit is a single unit of work over Store.
type unit struct {
	s *Store

	heldAccounts     map[int32]rowLock
	heldTransactions map[int64]rowLock

	accounts     map[int32]domain.Account
	transactions map[int64]domain.Transaction
}

func (s *Store) begin() *unit {
	return &unit{
		s:                s,
		heldAccounts:     make(map[int32]rowLock),
		heldTransactions: make(map[int64]rowLock),
		accounts:         make(map[int32]domain.Account),
		transactions:     make(map[int64]domain.Transaction),
	}
}

// commit applies the staged writes to the store.
func (u *unit) commit() error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for id, a := range u.accounts {
		if owner, ok := u.s.ibans[a.IBAN]; ok && owner != id {
			return domain.ErrIBANAlreadyExists
		}
	}

	for id, a := range u.accounts {
		u.s.accounts[id] = a
		u.s.ibans[a.IBAN] = id
	}

	for id, t := range u.transactions {
		u.s.transactions[id] = t
	}

	u.accounts = make(map[int32]domain.Account)
	u.transactions = make(map[int64]domain.Transaction)

	return nil
}

// release drops every lock held by the unit. Writes not committed by then are lost.
func (u *unit) release() {
	for id, l := range u.heldAccounts {
		l.release()
		delete(u.heldAccounts, id)
	}

	for id, l := range u.heldTransactions {
		l.release()
		delete(u.heldTransactions, id)
	}
}

func (u *unit) lockAccount(ctx context.Context, id int32) error {
	if _, ok := u.heldAccounts[id]; ok {
		return nil
	}

	l := u.s.accountLock(id)
	if err := l.acquire(ctx); err != nil {
		return err
	}

	u.heldAccounts[id] = l

	return nil
}

func (u *unit) lockTransaction(ctx context.Context, id int64) error {
	if _, ok := u.heldTransactions[id]; ok {
		return nil
	}

	l := u.s.transactionLock(id)
	if err := l.acquire(ctx); err != nil {
		return err
	}

	u.heldTransactions[id] = l

	return nil
}

func (u *unit) account(id int32) (domain.Account, bool) {
	if a, ok := u.accounts[id]; ok {
		return a, true
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	a, ok := u.s.accounts[id]

	return a, ok
}

func (u *unit) transaction(id int64) (domain.Transaction, bool) {
	if t, ok := u.transactions[id]; ok {
		return t, true
	}

	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	t, ok := u.s.transactions[id]

	return t, ok
}

func (u *unit) CreateAccount(ctx context.Context, arg domain.CreateAccountParams) (domain.Account, error) {
	if arg.Balance.IsNegative() {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if _, err := u.GetAccountByIBAN(ctx, arg.IBAN); err == nil {
		return domain.Account{}, domain.ErrIBANAlreadyExists
	}

	u.s.mu.Lock()
	u.s.lastAccountID++
	id := u.s.lastAccountID
	u.s.mu.Unlock()

	if err := u.lockAccount(ctx, id); err != nil {
		return domain.Account{}, err
	}

	a := domain.Account{
		ID:        id,
		Owner:     arg.Owner,
		IBAN:      arg.IBAN,
		Balance:   arg.Balance,
		CreatedAt: now(),
	}
	u.accounts[id] = a

	return a, nil
}

func (u *unit) GetAccount(_ context.Context, id int32) (domain.Account, error) {
	a, ok := u.account(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return a, nil
}

func (u *unit) GetAccountForUpdate(ctx context.Context, id int32) (domain.Account, error) {
	if _, ok := u.account(id); !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if err := u.lockAccount(ctx, id); err != nil {
		return domain.Account{}, err
	}

	return u.GetAccount(ctx, id)
}

func (u *unit) GetAccountByIBAN(ctx context.Context, iban string) (domain.Account, error) {
	for _, a := range u.accounts {
		if a.IBAN == iban {
			return a, nil
		}
	}

	u.s.mu.RLock()
	id, ok := u.s.ibans[iban]
	u.s.mu.RUnlock()

	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	return u.GetAccount(ctx, id)
}

func (u *unit) ListAccounts(_ context.Context, owner string, limit, offset int32) ([]domain.Account, error) {
	u.s.mu.RLock()
	merged := make(map[int32]domain.Account, len(u.s.accounts))
	for id, a := range u.s.accounts {
		merged[id] = a
	}
	u.s.mu.RUnlock()

	for id, a := range u.accounts {
		merged[id] = a
	}

	items := []domain.Account{}

	for _, a := range merged {
		if a.Owner == owner {
			items = append(items, a)
		}
	}

	sortAccounts(items)

	return page(items, limit, offset)
}

func (u *unit) UpdateAccountBalance(ctx context.Context, id int32, balance decimal.Decimal) (domain.Account, error) {
	if err := u.lockAccount(ctx, id); err != nil {
		return domain.Account{}, err
	}

	a, ok := u.account(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}

	if balance.IsNegative() {
		return domain.Account{}, domain.ErrInsufficientFunds
	}

	a.Balance = balance
	u.accounts[id] = a

	return a, nil
}

func (u *unit) CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	if !t.Amount.IsPositive() {
		return domain.Transaction{}, domain.ErrInvalidAmount
	}

	for _, id := range t.AccountIDs() {
		if _, ok := u.account(id); !ok {
			return domain.Transaction{}, domain.ErrAccountNotFound
		}
	}

	u.s.mu.Lock()
	u.s.lastTransactionID++
	t.ID = u.s.lastTransactionID
	u.s.mu.Unlock()

	if err := u.lockTransaction(ctx, t.ID); err != nil {
		return domain.Transaction{}, err
	}

	if t.Status == "" {
		t.Status = domain.StatusNew
	}

	t.Error = ""
	t.CreatedAt = now()
	t.UpdatedAt = t.CreatedAt
	u.transactions[t.ID] = t

	return t, nil
}

func (u *unit) GetTransaction(_ context.Context, id int64) (domain.Transaction, error) {
	t, ok := u.transaction(id)
	if !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	return t, nil
}

func (u *unit) GetTransactionForUpdate(ctx context.Context, id int64) (domain.Transaction, error) {
	if _, ok := u.transaction(id); !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	if err := u.lockTransaction(ctx, id); err != nil {
		return domain.Transaction{}, err
	}

	return u.GetTransaction(ctx, id)
}

func (u *unit) transactionsSnapshot() map[int64]domain.Transaction {
	u.s.mu.RLock()
	merged := make(map[int64]domain.Transaction, len(u.s.transactions))
	for id, t := range u.s.transactions {
		merged[id] = t
	}
	u.s.mu.RUnlock()

	for id, t := range u.transactions {
		merged[id] = t
	}

	return merged
}

func (u *unit) ListTransactionsByStatus(_ context.Context, status domain.Status) ([]domain.Transaction, error) {
	items := []domain.Transaction{}

	for _, t := range u.transactionsSnapshot() {
		if t.Status == status {
			items = append(items, t)
		}
	}

	sortTransactions(items)

	return items, nil
}

func (u *unit) ListTransactionsByAccount(_ context.Context, accountID int32, limit, offset int32) ([]domain.Transaction, error) {
	items := []domain.Transaction{}

	for _, t := range u.transactionsSnapshot() {
		if t.SourceAccountID == accountID || t.DestinationAccountID == accountID {
			items = append(items, t)
		}
	}

	sortTransactions(items)

	return page(items, limit, offset)
}

func (u *unit) UpdateTransactionStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error) {
	if _, ok := u.transaction(id); !ok {
		return domain.Transaction{}, domain.ErrTransactionNotFound
	}

	if err := u.lockTransaction(ctx, id); err != nil {
		return domain.Transaction{}, err
	}

	t, _ := u.transaction(id)
	if t.Status.IsTerminal() {
		return domain.Transaction{}, domain.ErrTransactionFinalized
	}

	t.Status = status
	t.Error = detail
	t.UpdatedAt = now()
	u.transactions[id] = t

	return t, nil
}

func (u *unit) SumTransactionAmounts(_ context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error) {
	sum := decimal.Zero

	for _, t := range u.transactionsSnapshot() {
		if t.SourceAccountID != sourceAccountID {
			continue
		}

		for _, s := range statuses {
			if t.Status == s {
				sum = sum.Add(t.Amount)
				break
			}
		}
	}

	return sum, nil
}
