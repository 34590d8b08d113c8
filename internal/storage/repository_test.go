package storage

import (
	"context"
	"errors"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(":memory:")
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestTransactionRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateTransaction(ctx, core.Transaction{
		Date:        core.NewDate(2025, 5, 10),
		Amount:      core.Money{Cents: 1500000},
		Category:    "Жилье",
		Description: "Оплата аренды",
		Type:        core.Expense,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create did not assign an id")
	}

	list, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0] != created {
		t.Errorf("list = %+v, want [%+v]", list, created)
	}

	created.Amount = core.Money{Cents: 1600000}
	created.Category = "Питание"
	if _, err := repo.UpdateTransaction(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, _ = repo.ListTransactions(ctx)
	if list[0].Amount.Cents != 1600000 || list[0].Category != "Питание" {
		t.Errorf("after update got %+v", list[0])
	}

	if err := repo.DeleteTransaction(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteTransaction(ctx, created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsInvalidRecords(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.CreateTransaction(ctx, core.Transaction{
		Date:     core.NewDate(2025, 5, 10),
		Amount:   core.Money{Cents: -5},
		Category: "Питание",
		Type:     core.Expense,
	}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Errorf("create with negative amount error = %v, want ErrInvalidAmount", err)
	}

	if _, err := repo.CreateDebt(ctx, core.Debt{
		Name:          "x",
		InitialAmount: core.Money{Cents: 1000},
		CurrentAmount: core.Money{Cents: 1000},
		DueDay:        0,
		StartDate:     core.NewDate(2025, 1, 1),
	}); !errors.Is(err, core.ErrInvalidDueDay) {
		t.Errorf("create with bad due day error = %v, want ErrInvalidDueDay", err)
	}
}

func TestDebtGetAndNotFound(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateDebt(ctx, core.Debt{
		Name:           "Кредит на автомобиль",
		InitialAmount:  core.Money{Cents: 50000000},
		CurrentAmount:  core.Money{Cents: 35000000},
		InterestRate:   12,
		MinimumPayment: core.Money{Cents: 1500000},
		DueDay:         15,
		StartDate:      core.NewDate(2024, 11, 15),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetDebt(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Errorf("get = %+v, want %+v", got, created)
	}

	if _, err := repo.GetDebt(ctx, "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get missing error = %v, want ErrNotFound", err)
	}
}

func TestRecurringItemOptionalEndDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	openEnded, err := repo.CreateRecurringItem(ctx, core.RecurringItem{
		Amount:      core.Money{Cents: 10000000},
		Description: "Ежемесячная зарплата",
		Category:    "Зарплата",
		Type:        core.Income,
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2025, 1, 1),
	})
	if err != nil {
		t.Fatalf("create open-ended: %v", err)
	}

	bounded, err := repo.CreateRecurringItem(ctx, core.RecurringItem{
		Amount:      core.Money{Cents: 500000},
		Description: "Подписки",
		Category:    "Развлечения",
		Type:        core.Expense,
		Frequency:   core.Monthly,
		StartDate:   core.NewDate(2025, 1, 1),
		EndDate:     core.NewDate(2025, 12, 31),
	})
	if err != nil {
		t.Fatalf("create bounded: %v", err)
	}

	list, err := repo.ListRecurringItems(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list len = %d, want 2", len(list))
	}
	if list[0] != openEnded || !list[0].EndDate.IsZero() {
		t.Errorf("open-ended item = %+v", list[0])
	}
	if list[1] != bounded {
		t.Errorf("bounded item = %+v, want %+v", list[1], bounded)
	}
}

func TestDepositRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created, err := repo.CreateDeposit(ctx, core.Deposit{
		Name:             "Срочный вклад",
		Amount:           core.Money{Cents: 50000000},
		InitialAmount:    core.Money{Cents: 50000000},
		InterestRate:     8.2,
		StartDate:        core.NewDate(2025, 4, 1),
		EndDate:          core.NewDate(2026, 4, 1),
		Bank:             "ВТБ",
		IsCapitalized:    false,
		PaymentFrequency: core.PayoutQuarterly,
		Status:           core.DepositActive,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetDeposit(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != created {
		t.Errorf("get = %+v, want %+v", got, created)
	}

	got.Status = core.DepositClosed
	if _, err := repo.UpdateDeposit(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ = repo.GetDeposit(ctx, created.ID)
	if got.Status != core.DepositClosed {
		t.Errorf("status = %s, want closed", got.Status)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	debt, err := repo.CreateDebt(ctx, core.Debt{
		Name:          "Кредитная карта",
		InitialAmount: core.Money{Cents: 10000000},
		CurrentAmount: core.Money{Cents: 8000000},
		DueDay:        20,
		StartDate:     core.NewDate(2025, 2, 20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	err = repo.WithinTx(ctx, func(st store.Store) error {
		debt.CurrentAmount = core.Money{Cents: 0}
		if _, err := st.UpdateDebt(ctx, debt); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithinTx error = %v, want boom", err)
	}

	got, err := repo.GetDebt(ctx, debt.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrentAmount.Cents != 8000000 {
		t.Errorf("balance after rollback = %d, want 8000000", got.CurrentAmount.Cents)
	}
}

func TestWithinTxCommitsBothWrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	debt, err := repo.CreateDebt(ctx, core.Debt{
		Name:          "Кредитная карта",
		InitialAmount: core.Money{Cents: 10000000},
		CurrentAmount: core.Money{Cents: 8000000},
		DueDay:        20,
		StartDate:     core.NewDate(2025, 2, 20),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = repo.WithinTx(ctx, func(st store.Store) error {
		debt.CurrentAmount = core.Money{Cents: 7000000}
		if _, err := st.UpdateDebt(ctx, debt); err != nil {
			return err
		}
		_, err := st.CreateTransaction(ctx, core.Transaction{
			Date:        core.NewDate(2025, 5, 20),
			Amount:      core.Money{Cents: 1000000},
			Category:    core.CategoryDebts,
			Description: "Платеж по долгу: Кредитная карта",
			Type:        core.Expense,
		})
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx: %v", err)
	}

	got, _ := repo.GetDebt(ctx, debt.ID)
	if got.CurrentAmount.Cents != 7000000 {
		t.Errorf("balance = %d, want 7000000", got.CurrentAmount.Cents)
	}
	txs, _ := repo.ListTransactions(ctx)
	if len(txs) != 1 {
		t.Errorf("transaction count = %d, want 1", len(txs))
	}
}
