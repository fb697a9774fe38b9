// Package balanceservice computes working balances of accounts.
package balanceservice

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// Repo provides data access layer interface needed by balance service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package balanceservice
type Repo interface {
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	SumTransactionAmounts(ctx context.Context, sourceAccountID int32, statuses []domain.Status) (decimal.Decimal, error)
}

// Service facilitates working balance logic.
type Service struct {
	repo Repo
}

// New returns balance service reading from r.
func New(r Repo) *Service {
	return &Service{repo: r}
}

// WorkingBalance returns the stored balance of the account minus the amounts
// held by its outgoing NEW and PENDING transactions. The two reads are not
// locked together and the result may be negative.
func (s *Service) WorkingBalance(ctx context.Context, accountID int32) (decimal.Decimal, error) {
	l := zerolog.Ctx(ctx)

	account, err := s.repo.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Decimal{}, err
	}

	held, err := s.repo.SumTransactionAmounts(ctx, accountID, domain.HeldStatuses)
	if err != nil {
		return decimal.Decimal{}, err
	}

	working := account.Balance.Sub(held)

	if working.IsNegative() {
		l.Warn().
			Int32("account_id", accountID).
			Str("balance", account.Balance.String()).
			Str("held", held.String()).
			Msg("held funds exceed balance")
	}

	return working, nil
}
