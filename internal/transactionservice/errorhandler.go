package transactionservice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
)

// StatusUpdater persists the outcome of a failed transaction and reads it back
// when the update does not go through.
//
//go:generate mockgen -source errorhandler.go -destination errorhandler_mock.go -package transactionservice
type StatusUpdater interface {
	GetTransaction(ctx context.Context, id int64) (domain.Transaction, error)
	UpdateTransactionStatus(ctx context.Context, id int64, status domain.Status, detail string) (domain.Transaction, error)
}

// ErrorHandler turns processing failures into terminal transaction statuses.
type ErrorHandler struct {
	updater StatusUpdater

	mu        sync.RWMutex
	observers []ErrorObserver
}

// NewErrorHandler returns ErrorHandler writing statuses through u.
func NewErrorHandler(u StatusUpdater, observers ...ErrorObserver) *ErrorHandler {
	return &ErrorHandler{
		updater:   u,
		observers: observers,
	}
}

// Register adds o to the observers notified about internal errors.
func (h *ErrorHandler) Register(o ErrorObserver) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.observers = append(h.observers, o)
}

// Classify returns the terminal status a processing failure maps to.
func Classify(err error) domain.Status {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrAccountConflict),
		errors.Is(err, domain.ErrAccountNotFound):
		return domain.StatusValidationError
	case errors.Is(err, domain.ErrInsufficientFunds):
		return domain.StatusInsufficientFunds
	default:
		return domain.StatusInternalError
	}
}

// Handle records the failure of t and returns the transaction as persisted.
// Transactions that are already final keep their status.
func (h *ErrorHandler) Handle(ctx context.Context, t domain.Transaction, cause error) domain.Transaction {
	l := zerolog.Ctx(ctx)
	status := Classify(cause)

	if status == domain.StatusInternalError {
		l.Error().Err(cause).Int64("transaction_id", t.ID).Msg("transaction failed unexpectedly")
	} else {
		l.Warn().Err(cause).Int64("transaction_id", t.ID).Str("status", string(status)).Msg("transaction rejected")
	}

	updated, err := h.updater.UpdateTransactionStatus(ctx, t.ID, status, cause.Error())
	if err != nil {
		l.Error().Err(err).Int64("transaction_id", t.ID).Msg("cannot save transaction status")

		updated = h.reload(ctx, t)
	}

	if status == domain.StatusInternalError {
		h.notify(ctx, updated, cause)
	}

	return updated
}

// reload returns the stored state of t, or t itself when it cannot be read.
func (h *ErrorHandler) reload(ctx context.Context, t domain.Transaction) domain.Transaction {
	stored, err := h.updater.GetTransaction(ctx, t.ID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("transaction_id", t.ID).Msg("cannot reload transaction")

		return t
	}

	return stored
}

func (h *ErrorHandler) notify(ctx context.Context, t domain.Transaction, cause error) {
	h.mu.RLock()
	observers := append([]ErrorObserver(nil), h.observers...)
	h.mu.RUnlock()

	for _, o := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					zerolog.Ctx(ctx).Error().
						Err(fmt.Errorf("observer panic: %v", r)).
						Int64("transaction_id", t.ID).
						Send()
				}
			}()

			o.OnTransactionError(ctx, t, cause)
		}()
	}
}
