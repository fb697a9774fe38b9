package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells which accounts a transaction touches.
type TransactionType string

// Supported transaction types.
const (
	TypeDeposit          TransactionType = "DEPOSIT"
	TypeWithdrawal       TransactionType = "WITHDRAWAL"
	TypeTransferInternal TransactionType = "TRANSFER_INTERNAL"
	TypeTransferOwn      TransactionType = "TRANSFER_OWN"
	TypeTransferExternal TransactionType = "TRANSFER_EXTERNAL"
)

// Status is a transaction lifecycle state.
type Status string

// Transaction statuses. NEW and PENDING are the only non-terminal ones.
const (
	StatusNew               Status = "NEW"
	StatusPending           Status = "PENDING"
	StatusDone              Status = "DONE"
	StatusValidationError   Status = "VALIDATION_ERROR"
	StatusInsufficientFunds Status = "INSUFFICIENT_FUNDS"
	StatusInternalError     Status = "INTERNAL_ERROR"
)

// HeldStatuses lists the statuses whose outgoing amounts are held against the working balance.
var HeldStatuses = []Status{StatusNew, StatusPending}

// IsTerminal reports whether no further transition may leave s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusDone, StatusValidationError, StatusInsufficientFunds, StatusInternalError:
		return true
	default:
		return false
	}
}

// IsHeld reports whether transactions in status s still reserve funds.
func (s Status) IsHeld() bool {
	return s == StatusNew || s == StatusPending
}

// Transaction is a single monetary operation and its processing state.
type Transaction struct {
	ID                   int64           `json:"id"`
	Type                 TransactionType `json:"type"`
	Status               Status          `json:"status"`
	Amount               decimal.Decimal `json:"amount"` // must be positive
	SourceAccountID      int32           `json:"source_account_id,omitempty"`
	DestinationAccountID int32           `json:"destination_account_id,omitempty"`
	DestinationIBAN      string          `json:"destination_iban,omitempty"`
	Title                string          `json:"title"`
	Error                string          `json:"error,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// IsTransfer reports whether the transaction moves money between two parties.
func (t Transaction) IsTransfer() bool {
	switch t.Type {
	case TypeTransferInternal, TypeTransferOwn, TypeTransferExternal:
		return true
	default:
		return false
	}
}

// AccountIDs returns the ids of the accounts kept in this bank that t touches.
func (t Transaction) AccountIDs() []int32 {
	ids := make([]int32, 0, 2)
	if t.SourceAccountID != 0 {
		ids = append(ids, t.SourceAccountID)
	}
	if t.DestinationAccountID != 0 && t.DestinationAccountID != t.SourceAccountID {
		ids = append(ids, t.DestinationAccountID)
	}

	return ids
}

// NewDeposit builds a NEW deposit into the account.
func NewDeposit(to Account, amount decimal.Decimal, title string) Transaction {
	return Transaction{
		Type:                 TypeDeposit,
		Status:               StatusNew,
		Amount:               amount,
		DestinationAccountID: to.ID,
		Title:                title,
	}
}

// NewWithdrawal builds a NEW withdrawal from the account.
func NewWithdrawal(from Account, amount decimal.Decimal, title string) Transaction {
	return Transaction{
		Type:            TypeWithdrawal,
		Status:          StatusNew,
		Amount:          amount,
		SourceAccountID: from.ID,
		Title:           title,
	}
}

// NewTransfer builds a NEW transfer between two accounts of this bank.
// Accounts of the same owner produce a TRANSFER_OWN, any other pair a TRANSFER_INTERNAL.
func NewTransfer(from, to Account, amount decimal.Decimal, title string) Transaction {
	transferType := TypeTransferInternal
	if from.Owner == to.Owner {
		transferType = TypeTransferOwn
	}

	return Transaction{
		Type:                 transferType,
		Status:               StatusNew,
		Amount:               amount,
		SourceAccountID:      from.ID,
		DestinationAccountID: to.ID,
		Title:                title,
	}
}

// NewExternalTransfer builds a NEW transfer to a counterparty outside the bank.
func NewExternalTransfer(from Account, iban string, amount decimal.Decimal, title string) Transaction {
	return Transaction{
		Type:            TypeTransferExternal,
		Status:          StatusNew,
		Amount:          amount,
		SourceAccountID: from.ID,
		DestinationIBAN: iban,
		Title:           title,
	}
}

// CreateTransferParams is the input data for a transfer request.
type CreateTransferParams struct {
	FromAccountID int32  `json:"from_account_id"`
	ToIBAN        string `json:"to_iban"`
	Amount        string `json:"amount"`
	Title         string `json:"title"`
}

// CreateOperationParams is the input data for a deposit or withdrawal request.
type CreateOperationParams struct {
	AccountID int32  `json:"account_id"`
	Amount    string `json:"amount"`
	Title     string `json:"title"`
}

// BatchSummary reports the outcome of a sweep over NEW transactions.
type BatchSummary struct {
	Total   int `json:"total"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
