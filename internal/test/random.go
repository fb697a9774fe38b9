// Package test provides shared test helpers.
package test

import (
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
)

// EquateDecimals makes cmp.Diff compare decimals by value, so 10 equals 10.00.
var EquateDecimals = cmp.Comparer(func(a, b decimal.Decimal) bool {
	return a.Equal(b)
})

// RandomAccount returns random account owned by the given owner.
func RandomAccount(owner string) domain.Account {
	return domain.Account{
		ID:        randompkg.IntBetween(1, 100),
		Owner:     owner,
		IBAN:      randompkg.IBAN(),
		Balance:   randompkg.MoneyAmountBetween(1000, 10_000),
		CreatedAt: time.Now().Truncate(time.Second).UTC(),
	}
}

// RandomTransfer returns a random NEW transfer between the given accounts.
func RandomTransfer(from, to domain.Account) domain.Transaction {
	t := domain.NewTransfer(from, to, randompkg.MoneyAmountBetween(1, 1000), randompkg.Title())
	t.ID = int64(randompkg.IntBetween(1, 1000))
	t.CreatedAt = time.Now().Truncate(time.Second).UTC()
	t.UpdatedAt = t.CreatedAt

	return t
}
