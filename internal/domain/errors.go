package domain

import (
	"errors"
	"fmt"
)

// Error categories. Specific errors wrap exactly one of them so callers can
// classify failures with errors.Is.
var (
	// ErrValidation indicates a structural or business rule violation.
	ErrValidation = errors.New("validation failed")
	// ErrAccountConflict indicates that the accounts involved may not be used together.
	ErrAccountConflict = errors.New("account conflict")
	// ErrInsufficientFunds indicates that the source balance does not cover the amount.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrIBANAlreadyExists indicates that an account with the given IBAN already exists.
	ErrIBANAlreadyExists = errors.New("account iban already exists")
	// ErrTransactionNotFound indicates that the transaction is not found.
	ErrTransactionNotFound = errors.New("transaction not found")
	// ErrTransactionFinalized indicates that the transaction already left the processable states.
	ErrTransactionFinalized = errors.New("transaction already finalized")
	// ErrTransactionPending indicates that the transaction is accepted and waits outside the processing queue.
	ErrTransactionPending = errors.New("transaction is pending")
)

var (
	ErrInvalidAmount                = fmt.Errorf("%w: amount must be greater than zero with at most two decimal places", ErrValidation)
	ErrMissingSourceAccount         = fmt.Errorf("%w: source account is required", ErrValidation)
	ErrMissingDestinationAccount    = fmt.Errorf("%w: destination account is required", ErrValidation)
	ErrUnexpectedSourceAccount      = fmt.Errorf("%w: source account is not allowed", ErrValidation)
	ErrUnexpectedDestinationAccount = fmt.Errorf("%w: destination account is not allowed", ErrValidation)
	ErrMissingDestinationIBAN       = fmt.Errorf("%w: destination iban is required", ErrValidation)
	ErrSameAccount                  = fmt.Errorf("%w: source and destination accounts must differ", ErrValidation)
	ErrUnsupportedType              = fmt.Errorf("%w: unsupported transaction type", ErrValidation)
	ErrInvalidPage                  = fmt.Errorf("%w: page is out of range", ErrValidation)
)

var (
	// ErrOwnerMismatch indicates an own transfer between accounts of different owners.
	ErrOwnerMismatch = fmt.Errorf("%w: accounts belong to different owners", ErrAccountConflict)
	// ErrInvalidOwner indicates that the user is not allowed to move money from the account.
	ErrInvalidOwner = fmt.Errorf("%w: unauthorized owner", ErrAccountConflict)
)
