package transactionservice

import (
	"context"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// ErrorObserver is notified about every transaction that ends in INTERNAL_ERROR.
type ErrorObserver interface {
	OnTransactionError(ctx context.Context, t domain.Transaction, err error)
}

// ErrorObserverFunc adapts a function to ErrorObserver.
type ErrorObserverFunc func(ctx context.Context, t domain.Transaction, err error)

// OnTransactionError calls f(ctx, t, err).
func (f ErrorObserverFunc) OnTransactionError(ctx context.Context, t domain.Transaction, err error) {
	f(ctx, t, err)
}
