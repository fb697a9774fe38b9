// Package transactionservice drives transactions from NEW to a terminal status.
//
// Every transaction goes through the same pipeline: Validate, CheckStatus and
// the Executor registered for its type. The executor, the balance changes and
// the DONE status are committed in one unit of work. Failures are recorded on
// the transaction by the ErrorHandler.
package transactionservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
)

// Service facilitates transaction processing logic.
type Service struct {
	store     store.Store
	ops       AccountOperations
	executors Executors
	errors    *ErrorHandler
}

// Option configures Service.
type Option func(*Service)

// WithExecutors replaces the executor registry.
func WithExecutors(e Executors) Option {
	return func(s *Service) {
		s.executors = e
	}
}

// WithObservers registers observers notified about internal errors.
func WithObservers(observers ...ErrorObserver) Option {
	return func(s *Service) {
		for _, o := range observers {
			s.errors.Register(o)
		}
	}
}

// New returns transaction service processing transactions kept in st.
func New(st store.Store, ops AccountOperations, opts ...Option) *Service {
	s := &Service{
		store:     st,
		ops:       ops,
		executors: DefaultExecutors(),
		errors:    NewErrorHandler(st),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// RegisterObserver adds o to the observers notified about internal errors.
func (s *Service) RegisterObserver(o ErrorObserver) {
	s.errors.Register(o)
}

// Get returns the transaction with the given id.
func (s *Service) Get(ctx context.Context, id int64) (domain.Transaction, error) {
	return s.store.GetTransaction(ctx, id)
}

// ProcessByID processes a single transaction.
//
// It returns the transaction in its resulting state along with the failure
// that led to it, if any. Rejections by the status check leave the
// transaction unchanged.
func (s *Service) ProcessByID(ctx context.Context, id int64) (domain.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return domain.Transaction{}, err
	}

	return s.process(ctx, t)
}

// ProcessAllNew processes every NEW transaction one by one.
//
// A failing transaction never stops the sweep. The returned error reports
// only a failure to list the transactions. The sweep stops between
// transactions once ctx is done; the remaining ones count as skipped.
func (s *Service) ProcessAllNew(ctx context.Context) (domain.BatchSummary, error) {
	l := zerolog.Ctx(ctx)

	var summary domain.BatchSummary

	items, err := s.store.ListTransactionsByStatus(ctx, domain.StatusNew)
	if err != nil {
		l.Error().Err(err).Msg("cannot list new transactions")
		return summary, err
	}

	summary.Total = len(items)

	for i, t := range items {
		if ctx.Err() != nil {
			summary.Skipped += len(items) - i
			l.Warn().Err(ctx.Err()).Int("skipped", len(items)-i).Msg("sweep interrupted")

			break
		}

		_, err := s.process(ctx, t)

		switch {
		case err == nil:
			summary.Done++
		case isRejected(err):
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	l.Info().
		Int("total", summary.Total).
		Int("done", summary.Done).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("sweep completed")

	return summary, nil
}

// process runs the pipeline on t. It never panics.
func (s *Service) process(ctx context.Context, t domain.Transaction) (result domain.Transaction, err error) {
	logger := zerolog.Ctx(ctx).With().
		Int64("transaction_id", t.ID).
		Str("transaction_type", string(t.Type)).
		Logger()
	ctx = logger.WithContext(ctx)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: panic: %v", errorspkg.ErrInternal, r)
			result = s.errors.Handle(ctx, t, err)
		}
	}()

	if err := Validate(t); err != nil {
		return s.errors.Handle(ctx, t, err), err
	}

	if err := CheckStatus(t); err != nil {
		logger.Info().Str("status", string(t.Status)).Msg("transaction skipped")
		return t, err
	}

	done, err := s.execute(ctx, t)
	if err != nil {
		if isRejected(err) {
			logger.Info().Err(err).Msg("transaction skipped")

			current, getErr := s.store.GetTransaction(ctx, t.ID)
			if getErr != nil {
				return t, err
			}

			return current, err
		}

		return s.errors.Handle(ctx, t, err), err
	}

	logger.Info().Str("amount", done.Amount.String()).Msg("transaction done")

	return done, nil
}

// execute applies t in a single unit of work. Once started it is not
// interrupted by the cancellation of ctx.
func (s *Service) execute(ctx context.Context, t domain.Transaction) (domain.Transaction, error) {
	ctx = context.WithoutCancel(ctx)

	var done domain.Transaction

	err := s.store.ExecTx(ctx, func(q store.Querier) error {
		locked, err := q.GetTransactionForUpdate(ctx, t.ID)
		if err != nil {
			return err
		}

		if err := CheckStatus(locked); err != nil {
			return err
		}

		execute, ok := s.executors[locked.Type]
		if !ok {
			return domain.ErrUnsupportedType
		}

		accounts, err := lockAccounts(ctx, q, locked.AccountIDs())
		if err != nil {
			return err
		}

		err = execute(ctx, Execution{
			Transaction: locked,
			Accounts:    accounts,
			Querier:     q,
			Ops:         s.ops,
		})
		if err != nil {
			return err
		}

		done, err = q.UpdateTransactionStatus(ctx, locked.ID, domain.StatusDone, "")

		return err
	})

	if errors.Is(err, domain.ErrTransactionNotFound) {
		return domain.Transaction{}, fmt.Errorf("%w: transaction %d vanished", errorspkg.ErrInternal, t.ID)
	}

	return done, err
}
