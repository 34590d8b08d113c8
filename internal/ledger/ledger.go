// Package ledger coordinates the compound mutations that keep a
// correlated transaction in sync with the record it originates from:
// debt payments, deposit interest postings and deposit closures. Each
// operation changes one balance and appends exactly one transaction.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

var (
	// ErrDepositClosed rejects lifecycle violations: closing or
	// crediting a deposit that is no longer active.
	ErrDepositClosed = errors.New("deposit already closed")

	// ErrPartialFailure marks a compound operation whose balance
	// update committed but whose correlated transaction did not. The
	// store now needs manual reconciliation; retrying blindly would
	// double-apply the balance change.
	ErrPartialFailure = errors.New("compound operation partially applied")
)

// PartialFailureError carries enough detail to reconcile a half-applied
// compound operation. It matches ErrPartialFailure under errors.Is.
type PartialFailureError struct {
	Op       string // "debt payment", "deposit interest", "deposit close"
	EntityID string // the debt/deposit whose balance already changed
	Err      error  // the transaction-append failure
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s on %s: balance updated but transaction append failed: %v",
		e.Op, e.EntityID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

func (e *PartialFailureError) Is(target error) bool { return target == ErrPartialFailure }

// Service runs compound operations against a record store. When the
// store implements store.TxRunner both writes go through one storage
// transaction; otherwise the balance write commits first and a failed
// transaction append surfaces as a PartialFailureError.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// MakeDebtPayment reduces a debt's outstanding balance by amount,
// clamped at zero, and appends the matching expense transaction.
func (svc *Service) MakeDebtPayment(ctx context.Context, debtID string, amount core.Money, now time.Time) (core.Debt, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.Debt{}, core.Transaction{}, err
	}

	var (
		debt core.Debt
		txn  core.Transaction
	)
	err := svc.execute(ctx, func(st store.Store, atomic bool) error {
		var err error
		debt, err = st.GetDebt(ctx, debtID)
		if err != nil {
			return fmt.Errorf("get debt %s: %w", debtID, err)
		}

		remaining := debt.CurrentAmount.Sub(amount)
		if remaining.Cents < 0 {
			remaining = core.Money{}
		}
		debt.CurrentAmount = remaining

		debt, err = st.UpdateDebt(ctx, debt)
		if err != nil {
			return fmt.Errorf("update debt %s: %w", debtID, err)
		}

		txn, err = st.CreateTransaction(ctx, core.Transaction{
			Date:        core.DateOf(now),
			Amount:      amount,
			Category:    core.CategoryDebts,
			Description: "Платеж по долгу: " + debt.Name,
			Type:        core.Expense,
		})
		if err != nil {
			return svc.appendFailure("debt payment", debtID, atomic, err)
		}
		return nil
	})
	if err != nil {
		return core.Debt{}, core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Debt payment recorded",
		"debt_id", debt.ID,
		"amount_cents", amount.Cents,
		"remaining_cents", debt.CurrentAmount.Cents,
		"transaction_id", txn.ID)
	return debt, txn, nil
}

// PostDepositInterest credits interest to an active deposit and appends
// the matching income transaction.
func (svc *Service) PostDepositInterest(ctx context.Context, depositID string, amount core.Money, now time.Time) (core.Deposit, core.Transaction, error) {
	if err := amount.Validate(); err != nil {
		return core.Deposit{}, core.Transaction{}, err
	}

	var (
		dep core.Deposit
		txn core.Transaction
	)
	err := svc.execute(ctx, func(st store.Store, atomic bool) error {
		var err error
		dep, err = st.GetDeposit(ctx, depositID)
		if err != nil {
			return fmt.Errorf("get deposit %s: %w", depositID, err)
		}
		if dep.Status != core.DepositActive {
			return ErrDepositClosed
		}

		dep.Amount = dep.Amount.Add(amount)
		dep, err = st.UpdateDeposit(ctx, dep)
		if err != nil {
			return fmt.Errorf("update deposit %s: %w", depositID, err)
		}

		txn, err = st.CreateTransaction(ctx, core.Transaction{
			Date:        core.DateOf(now),
			Amount:      amount,
			Category:    core.CategoryDepositInterest,
			Description: "Проценты по вкладу: " + dep.Name,
			Type:        core.Income,
		})
		if err != nil {
			return svc.appendFailure("deposit interest", depositID, atomic, err)
		}
		return nil
	})
	if err != nil {
		return core.Deposit{}, core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Deposit interest posted",
		"deposit_id", dep.ID,
		"amount_cents", amount.Cents,
		"balance_cents", dep.Amount.Cents,
		"transaction_id", txn.ID)
	return dep, txn, nil
}

// CloseDeposit moves an active deposit to closed and appends an income
// transaction for the payout. The payout is the closeAmount supplied by
// the caller, not the stored balance: banks settle final interest at
// closing, so the two routinely differ.
func (svc *Service) CloseDeposit(ctx context.Context, depositID string, closeAmount core.Money, now time.Time) (core.Deposit, core.Transaction, error) {
	if err := closeAmount.Validate(); err != nil {
		return core.Deposit{}, core.Transaction{}, err
	}

	var (
		dep core.Deposit
		txn core.Transaction
	)
	err := svc.execute(ctx, func(st store.Store, atomic bool) error {
		var err error
		dep, err = st.GetDeposit(ctx, depositID)
		if err != nil {
			return fmt.Errorf("get deposit %s: %w", depositID, err)
		}
		if dep.Status != core.DepositActive {
			return ErrDepositClosed
		}

		dep.Status = core.DepositClosed
		dep, err = st.UpdateDeposit(ctx, dep)
		if err != nil {
			return fmt.Errorf("update deposit %s: %w", depositID, err)
		}

		txn, err = st.CreateTransaction(ctx, core.Transaction{
			Date:        core.DateOf(now),
			Amount:      closeAmount,
			Category:    core.CategoryDeposits,
			Description: "Закрытие вклада: " + dep.Name,
			Type:        core.Income,
		})
		if err != nil {
			return svc.appendFailure("deposit close", depositID, atomic, err)
		}
		return nil
	})
	if err != nil {
		return core.Deposit{}, core.Transaction{}, err
	}

	slog.InfoContext(ctx, "Deposit closed",
		"deposit_id", dep.ID,
		"payout_cents", closeAmount.Cents,
		"transaction_id", txn.ID)
	return dep, txn, nil
}

// execute runs fn inside a storage transaction when the store supports
// one. The atomic flag tells fn whether a failure after the balance
// write will be rolled back or must be reported as partial.
func (svc *Service) execute(ctx context.Context, fn func(st store.Store, atomic bool) error) error {
	if txr, ok := svc.store.(store.TxRunner); ok {
		return txr.WithinTx(ctx, func(st store.Store) error {
			return fn(st, true)
		})
	}
	return fn(svc.store, false)
}

func (svc *Service) appendFailure(op, entityID string, atomic bool, err error) error {
	if atomic {
		// The enclosing storage transaction rolls the balance
		// write back; nothing was partially applied.
		return fmt.Errorf("%s on %s: append transaction: %w", op, entityID, err)
	}
	return &PartialFailureError{Op: op, EntityID: entityID, Err: err}
}
