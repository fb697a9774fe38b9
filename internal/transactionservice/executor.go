package transactionservice

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/store"
)

// AccountOperations changes balances inside a unit of work that already
// holds the account locks.
//
//go:generate mockgen -source executor.go -destination executor_mock.go -package transactionservice
type AccountOperations interface {
	DepositTx(ctx context.Context, q store.Querier, account domain.Account, amount decimal.Decimal) (domain.Account, error)
	WithdrawTx(ctx context.Context, q store.Querier, account domain.Account, amount decimal.Decimal) (domain.Account, error)
}

// Execution is what an Executor gets to work with.
type Execution struct {
	Transaction domain.Transaction
	// Accounts holds every in-bank account of the transaction, read under lock.
	Accounts map[int32]domain.Account
	Querier  store.Querier
	Ops      AccountOperations
}

func (e Execution) source() domain.Account {
	return e.Accounts[e.Transaction.SourceAccountID]
}

func (e Execution) destination() domain.Account {
	return e.Accounts[e.Transaction.DestinationAccountID]
}

// Executor applies the balance changes of one transaction type.
type Executor func(ctx context.Context, e Execution) error

// Executors maps each transaction type to its Executor.
type Executors map[domain.TransactionType]Executor

// DefaultExecutors returns the executors of every supported transaction type.
func DefaultExecutors() Executors {
	return Executors{
		domain.TypeDeposit:          executeDeposit,
		domain.TypeWithdrawal:       executeWithdrawal,
		domain.TypeTransferInternal: executeTransfer,
		domain.TypeTransferOwn:      executeOwnTransfer,
		domain.TypeTransferExternal: executeWithdrawal,
	}
}

func executeDeposit(ctx context.Context, e Execution) error {
	_, err := e.Ops.DepositTx(ctx, e.Querier, e.destination(), e.Transaction.Amount)
	return err
}

// executeWithdrawal serves external transfers too: the money leaves the bank.
func executeWithdrawal(ctx context.Context, e Execution) error {
	_, err := e.Ops.WithdrawTx(ctx, e.Querier, e.source(), e.Transaction.Amount)
	return err
}

func executeTransfer(ctx context.Context, e Execution) error {
	if _, err := e.Ops.WithdrawTx(ctx, e.Querier, e.source(), e.Transaction.Amount); err != nil {
		return err
	}

	_, err := e.Ops.DepositTx(ctx, e.Querier, e.destination(), e.Transaction.Amount)

	return err
}

func executeOwnTransfer(ctx context.Context, e Execution) error {
	if e.source().Owner != e.destination().Owner {
		return domain.ErrOwnerMismatch
	}

	return executeTransfer(ctx, e)
}

// lockAccounts locks the accounts in ascending id order so that two
// transfers over the same pair never wait on each other in a cycle.
func lockAccounts(ctx context.Context, q store.Querier, ids []int32) (map[int32]domain.Account, error) {
	sorted := append([]int32(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	accounts := make(map[int32]domain.Account, len(sorted))

	for _, id := range sorted {
		a, err := q.GetAccountForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}

		accounts[id] = a
	}

	return accounts, nil
}
