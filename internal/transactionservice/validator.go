package transactionservice

import (
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
)

// Validate checks the shape of t before anything is mutated. It never does I/O.
func Validate(t domain.Transaction) error {
	if err := moneypkg.Check(t.Amount); err != nil {
		return domain.ErrInvalidAmount
	}

	switch t.Type {
	case domain.TypeDeposit:
		if t.SourceAccountID != 0 {
			return domain.ErrUnexpectedSourceAccount
		}

		if t.DestinationAccountID == 0 {
			return domain.ErrMissingDestinationAccount
		}
	case domain.TypeWithdrawal:
		if t.SourceAccountID == 0 {
			return domain.ErrMissingSourceAccount
		}

		if t.DestinationAccountID != 0 {
			return domain.ErrUnexpectedDestinationAccount
		}
	case domain.TypeTransferInternal, domain.TypeTransferOwn:
		if t.SourceAccountID == 0 {
			return domain.ErrMissingSourceAccount
		}

		if t.DestinationAccountID == 0 {
			return domain.ErrMissingDestinationAccount
		}

		if t.SourceAccountID == t.DestinationAccountID {
			return domain.ErrSameAccount
		}
	case domain.TypeTransferExternal:
		if t.SourceAccountID == 0 {
			return domain.ErrMissingSourceAccount
		}

		if t.DestinationAccountID != 0 {
			return domain.ErrUnexpectedDestinationAccount
		}

		if t.DestinationIBAN == "" {
			return domain.ErrMissingDestinationIBAN
		}
	default:
		return domain.ErrUnsupportedType
	}

	return nil
}
