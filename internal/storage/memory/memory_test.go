package memory

import (
	"context"
	"testing"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

func testTransaction(units int64) core.Transaction {
	return core.Transaction{
		Date:        core.NewDate(2025, 5, 10),
		Amount:      core.Money{Cents: units * 100},
		Category:    core.CategoryOther,
		Description: "тест",
		Type:        core.Expense,
	}
}

func TestDeleteReleasesOrderSlot(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateTransaction(ctx, testTransaction(10))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := s.CreateTransaction(ctx, testTransaction(20))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteTransaction(ctx, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(s.order) != 1 {
		t.Errorf("order slice has %d ids after delete, want 1", len(s.order))
	}
	for _, id := range s.order {
		if id == first.ID {
			t.Errorf("order slice still holds deleted id %s", first.ID)
		}
	}

	listed, err := s.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != second.ID {
		t.Errorf("list after delete = %v, want only %s", listed, second.ID)
	}
}

func TestOrderDoesNotGrowAcrossDeleteCreateCycles(t *testing.T) {
	ctx := context.Background()
	s := New()

	for i := 0; i < 50; i++ {
		txn, err := s.CreateTransaction(ctx, testTransaction(int64(i+1)))
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if err := s.DeleteTransaction(ctx, txn.ID); err != nil {
			t.Fatalf("delete %d: %v", i, err)
		}
	}
	if len(s.order) != 0 {
		t.Errorf("order slice has %d ids after balanced cycles, want 0", len(s.order))
	}
}

func TestDeleteUnknownIDNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.DeleteDebt(ctx, "missing"); err != store.ErrNotFound {
		t.Errorf("DeleteDebt(missing) = %v, want %v", err, store.ErrNotFound)
	}
	if err := s.DeleteDeposit(ctx, "missing"); err != store.ErrNotFound {
		t.Errorf("DeleteDeposit(missing) = %v, want %v", err, store.ErrNotFound)
	}
}
