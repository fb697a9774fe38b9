// Package moneypkg provides parsing and validation of monetary amounts.
package moneypkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places an amount may carry.
const Scale = 2

// Errors returned by Parse.
var (
	ErrMalformed   = errors.New("amount is not a decimal number")
	ErrNotPositive = errors.New("amount must be positive")
	ErrPrecision   = errors.New("amount must have at most 2 decimal places")
)

// Parse converts s into a positive amount with at most Scale decimal places.
func Parse(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrMalformed
	}

	if err := Check(amount); err != nil {
		return decimal.Decimal{}, err
	}

	return amount, nil
}

// Check reports whether amount is positive and fits into Scale decimal places.
func Check(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrNotPositive
	}

	if !amount.Equal(amount.Truncate(Scale)) {
		return ErrPrecision
	}

	return nil
}

// ValidAmount is a binding rule for string fields holding a money amount.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := Parse(s)
		return err == nil
	}

	return false
}
