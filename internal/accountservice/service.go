// Package accountservice manages business logic layer of accounts.
//
// Balances change only through Deposit and Withdraw or, inside a unit of work
// already holding the account lock, through DepositTx and WithdrawTx.
package accountservice

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// Service facilitates account service layer logic.
type Service struct {
	store store.Store
}

// New returns account service struct to manage account business logic.
func New(s store.Store) *Service {
	return &Service{store: s}
}

// Create opens an empty account for the owner. A new IBAN is assigned when iban is empty.
func (s *Service) Create(ctx context.Context, owner, iban string) (domain.Account, error) {
	if iban == "" {
		iban = randompkg.IBAN()
	}

	arg := domain.CreateAccountParams{
		Owner:   owner,
		IBAN:    iban,
		Balance: decimal.Zero,
	}

	return s.store.CreateAccount(ctx, arg)
}

// Get returns account for the given account ID.
func (s *Service) Get(ctx context.Context, id int32) (domain.Account, error) {
	return s.store.GetAccount(ctx, id)
}

// GetByIBAN returns account for the given IBAN.
func (s *Service) GetByIBAN(ctx context.Context, iban string) (domain.Account, error) {
	return s.store.GetAccountByIBAN(ctx, iban)
}

// List returns accounts that are owned by the given user.
func (s *Service) List(ctx context.Context, owner string, pageSize, pageID int32) ([]domain.Account, error) {
	offset, ok := pageOffset(pageSize, pageID)
	if !ok {
		return []domain.Account{}, nil
	}

	return s.store.ListAccounts(ctx, owner, pageSize, offset)
}

// Transactions returns a page of the transactions that move money from or to
// the account, oldest first.
func (s *Service) Transactions(ctx context.Context, accountID int32, pageSize, pageID int32) ([]domain.Transaction, error) {
	offset, ok := pageOffset(pageSize, pageID)
	if !ok {
		return []domain.Transaction{}, nil
	}

	return s.store.ListTransactionsByAccount(ctx, accountID, pageSize, offset)
}

// Deposit adds amount to the account balance in its own unit of work.
func (s *Service) Deposit(ctx context.Context, account domain.Account, amount decimal.Decimal) (domain.Account, error) {
	var result domain.Account

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		locked, err := q.GetAccountForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}

		result, err = s.DepositTx(ctx, q, locked, amount)

		return err
	})

	return result, err
}

// Withdraw subtracts amount from the account balance in its own unit of work.
func (s *Service) Withdraw(ctx context.Context, account domain.Account, amount decimal.Decimal) (domain.Account, error) {
	var result domain.Account

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		locked, err := q.GetAccountForUpdate(ctx, account.ID)
		if err != nil {
			return err
		}

		result, err = s.WithdrawTx(ctx, q, locked, amount)

		return err
	})

	return result, err
}

// DepositTx credits the account through q. The caller must hold the account lock
// and pass the account as read under it.
func (s *Service) DepositTx(ctx context.Context, q store.Querier, account domain.Account, amount decimal.Decimal) (domain.Account, error) {
	if err := moneypkg.Check(amount); err != nil {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	return q.UpdateAccountBalance(ctx, account.ID, account.Balance.Add(amount))
}

// WithdrawTx debits the account through q. The caller must hold the account lock
// and pass the account as read under it.
func (s *Service) WithdrawTx(ctx context.Context, q store.Querier, account domain.Account, amount decimal.Decimal) (domain.Account, error) {
	if err := moneypkg.Check(amount); err != nil {
		return domain.Account{}, domain.ErrInvalidAmount
	}

	if amount.GreaterThan(account.Balance) {
		zerolog.Ctx(ctx).Debug().
			Int32("account_id", account.ID).
			Str("balance", account.Balance.String()).
			Str("amount", amount.String()).
			Msg("insufficient funds")

		return domain.Account{}, domain.ErrInsufficientFunds
	}

	return q.UpdateAccountBalance(ctx, account.ID, account.Balance.Sub(amount))
}

// pageOffset returns the row offset of the page. It reports false when the
// page starts beyond the int32 range, which no store can hold.
func pageOffset(pageSize, pageID int32) (int32, bool) {
	offset := (int64(pageID) - 1) * int64(pageSize)
	if offset < 0 || offset > math.MaxInt32 {
		return 0, false
	}

	return int32(offset), true
}
