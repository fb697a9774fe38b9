package test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/store"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// SeedAccount creates an account of owner with the given balance.
func SeedAccount(t *testing.T, q store.Querier, owner string, balance decimal.Decimal) domain.Account {
	t.Helper()

	arg := domain.CreateAccountParams{
		Owner:   owner,
		IBAN:    randompkg.IBAN(),
		Balance: balance,
	}

	account, err := q.CreateAccount(context.Background(), arg)
	if err != nil {
		t.Fatalf("q.CreateAccount(context.Background(), %+v) returned error: %v", arg, err)
	}

	return account
}

// SeedTransaction stores tr as it is.
func SeedTransaction(t *testing.T, q store.Querier, tr domain.Transaction) domain.Transaction {
	t.Helper()

	created, err := q.CreateTransaction(context.Background(), tr)
	if err != nil {
		t.Fatalf("q.CreateTransaction(context.Background(), %+v) returned error: %v", tr, err)
	}

	return created
}
