package transactionservice

import (
	"errors"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// CheckStatus admits only NEW transactions into execution.
func CheckStatus(t domain.Transaction) error {
	switch {
	case t.Status == domain.StatusNew:
		return nil
	case t.Status == domain.StatusPending:
		return domain.ErrTransactionPending
	default:
		return domain.ErrTransactionFinalized
	}
}

// isRejected reports whether err came from the status check. Such
// transactions are left exactly as they are.
func isRejected(err error) bool {
	return errors.Is(err, domain.ErrTransactionFinalized) || errors.Is(err, domain.ErrTransactionPending)
}
