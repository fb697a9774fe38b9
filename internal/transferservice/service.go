// Package transferservice registers money movements requested by account owners.
//
// Own transfers, deposits and withdrawals are processed right away. Other
// transfers stay NEW until the next sweep picks them up.
package transferservice

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Repo provides data access layer interface needed by transfer service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package transferservice
type Repo interface {
	GetAccount(ctx context.Context, id int32) (domain.Account, error)
	GetAccountByIBAN(ctx context.Context, iban string) (domain.Account, error)
	CreateTransaction(ctx context.Context, t domain.Transaction) (domain.Transaction, error)
}

// Processor runs a registered transaction through the processing pipeline.
type Processor interface {
	ProcessByID(ctx context.Context, id int64) (domain.Transaction, error)
}

// BalanceService reports the funds an account can still spend.
type BalanceService interface {
	WorkingBalance(ctx context.Context, accountID int32) (decimal.Decimal, error)
}

// Service facilitates transfer service layer logic.
type Service struct {
	repo      Repo
	processor Processor
	balances  BalanceService
}

// New returns transfer service struct to manage transfer business logic.
func New(r Repo, p Processor, b BalanceService) *Service {
	return &Service{
		repo:      r,
		processor: p,
		balances:  b,
	}
}

func parseAmount(ctx context.Context, amount string) (decimal.Decimal, error) {
	d, err := moneypkg.Parse(amount)
	if err != nil {
		zerolog.Ctx(ctx).Info().Err(err).Str("amount", amount).Send()
		return decimal.Decimal{}, domain.ErrInvalidAmount
	}

	return d, nil
}

// ownedAccount returns the account if username owns it.
func (s *Service) ownedAccount(ctx context.Context, username string, id int32) (domain.Account, error) {
	account, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		return domain.Account{}, err
	}

	if account.Owner != username {
		zerolog.Ctx(ctx).Info().Int32("account_id", id).Str("username", username).Msg("invalid owner")
		return domain.Account{}, domain.ErrInvalidOwner
	}

	return account, nil
}

// checkFunds compares amount with the working balance, so that funds held by
// queued transfers cannot be promised twice.
func (s *Service) checkFunds(ctx context.Context, account domain.Account, amount decimal.Decimal) error {
	working, err := s.balances.WorkingBalance(ctx, account.ID)
	if err != nil {
		return err
	}

	if working.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}

	return nil
}

// Transfer registers a transfer to another account of this bank.
func (s *Service) Transfer(ctx context.Context, username string, arg domain.CreateTransferParams) (domain.Transaction, error) {
	amount, err := parseAmount(ctx, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	from, err := s.ownedAccount(ctx, username, arg.FromAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	to, err := s.repo.GetAccountByIBAN(ctx, arg.ToIBAN)
	if err != nil {
		return domain.Transaction{}, err
	}

	if from.ID == to.ID {
		return domain.Transaction{}, domain.ErrSameAccount
	}

	if err := s.checkFunds(ctx, from, amount); err != nil {
		return domain.Transaction{}, err
	}

	t, err := s.repo.CreateTransaction(ctx, domain.NewTransfer(from, to, amount, arg.Title))
	if err != nil {
		return domain.Transaction{}, err
	}

	if t.Type == domain.TypeTransferOwn {
		return s.process(ctx, t)
	}

	return t, nil
}

// TransferExternal registers a transfer to an account outside the bank.
func (s *Service) TransferExternal(ctx context.Context, username string, arg domain.CreateTransferParams) (domain.Transaction, error) {
	amount, err := parseAmount(ctx, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	if arg.ToIBAN == "" {
		return domain.Transaction{}, domain.ErrMissingDestinationIBAN
	}

	from, err := s.ownedAccount(ctx, username, arg.FromAccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := s.checkFunds(ctx, from, amount); err != nil {
		return domain.Transaction{}, err
	}

	return s.repo.CreateTransaction(ctx, domain.NewExternalTransfer(from, arg.ToIBAN, amount, arg.Title))
}

// Deposit registers and processes a deposit into an account of the user.
func (s *Service) Deposit(ctx context.Context, username string, arg domain.CreateOperationParams) (domain.Transaction, error) {
	amount, err := parseAmount(ctx, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	account, err := s.ownedAccount(ctx, username, arg.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	t, err := s.repo.CreateTransaction(ctx, domain.NewDeposit(account, amount, arg.Title))
	if err != nil {
		return domain.Transaction{}, err
	}

	return s.process(ctx, t)
}

// Withdraw registers and processes a withdrawal from an account of the user.
func (s *Service) Withdraw(ctx context.Context, username string, arg domain.CreateOperationParams) (domain.Transaction, error) {
	amount, err := parseAmount(ctx, arg.Amount)
	if err != nil {
		return domain.Transaction{}, err
	}

	account, err := s.ownedAccount(ctx, username, arg.AccountID)
	if err != nil {
		return domain.Transaction{}, err
	}

	if err := s.checkFunds(ctx, account, amount); err != nil {
		return domain.Transaction{}, err
	}

	t, err := s.repo.CreateTransaction(ctx, domain.NewWithdrawal(account, amount, arg.Title))
	if err != nil {
		return domain.Transaction{}, err
	}

	return s.process(ctx, t)
}

// process runs t inline. A failed run still returns the recorded transaction.
func (s *Service) process(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	processed, err := s.processor.ProcessByID(ctx, t.ID)
	if err != nil {
		if processed.ID == 0 {
			processed = t
		}

		if !errors.Is(err, domain.ErrTransactionFinalized) {
			return processed, err
		}
	}

	return processed, nil
}
