// Package store defines the record-store ports consumed by the HTTP
// layer and the ledger. Implementations live in internal/storage
// (SQLite) and internal/storage/memory.
package store

import (
	"context"
	"errors"

	"kopilka/internal/core"
)

// ErrNotFound is returned when an identifier does not resolve to a
// stored record.
var ErrNotFound = errors.New("record not found")

// TransactionStore is create/read/update/delete for transactions.
type TransactionStore interface {
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// RecurringStore is create/read/update/delete for recurring items.
type RecurringStore interface {
	ListRecurringItems(ctx context.Context) ([]core.RecurringItem, error)
	CreateRecurringItem(ctx context.Context, ri core.RecurringItem) (core.RecurringItem, error)
	UpdateRecurringItem(ctx context.Context, ri core.RecurringItem) (core.RecurringItem, error)
	DeleteRecurringItem(ctx context.Context, id string) error
}

// DebtStore is create/read/update/delete for debts.
type DebtStore interface {
	ListDebts(ctx context.Context) ([]core.Debt, error)
	GetDebt(ctx context.Context, id string) (core.Debt, error)
	CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
	UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error)
	DeleteDebt(ctx context.Context, id string) error
}

// DepositStore is create/read/update/delete for deposits.
type DepositStore interface {
	ListDeposits(ctx context.Context) ([]core.Deposit, error)
	GetDeposit(ctx context.Context, id string) (core.Deposit, error)
	CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error)
	UpdateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error)
	DeleteDeposit(ctx context.Context, id string) error
}

// Store is the full record store: durable storage for the four entity
// collections, keyed by opaque identifier.
type Store interface {
	TransactionStore
	RecurringStore
	DebtStore
	DepositStore
}

// TxRunner is implemented by stores that can run a set of writes
// atomically. The ledger prefers it for compound operations so a
// balance update and its correlated transaction commit together.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(Store) error) error
}
