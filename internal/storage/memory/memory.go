// Package memory is an in-memory record store. It backs the `memory`
// data backend and the ledger, metrics and HTTP tests. It deliberately
// does not implement store.TxRunner, which exercises the ledger's
// sequential write path.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions map[string]core.Transaction
	recurring    map[string]core.RecurringItem
	debts        map[string]core.Debt
	deposits     map[string]core.Deposit
	order        []string // insertion order of all ids, for stable listings
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		transactions: make(map[string]core.Transaction),
		recurring:    make(map[string]core.RecurringItem),
		debts:        make(map[string]core.Debt),
		deposits:     make(map[string]core.Deposit),
	}
}

// removeOrder drops id from the insertion-order slice. Caller holds mu.
func (s *Store) removeOrder(id string) {
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0, len(s.transactions))
	for _, id := range s.order {
		if t, ok := s.transactions[id]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = uuid.NewString()
	s.transactions[t.ID] = t
	s.order = append(s.order, t.ID)
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[t.ID]; !ok {
		return core.Transaction{}, store.ErrNotFound
	}
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.transactions, id)
	s.removeOrder(id)
	return nil
}

func (s *Store) ListRecurringItems(_ context.Context) ([]core.RecurringItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.RecurringItem, 0, len(s.recurring))
	for _, id := range s.order {
		if ri, ok := s.recurring[id]; ok {
			out = append(out, ri)
		}
	}
	return out, nil
}

func (s *Store) CreateRecurringItem(_ context.Context, ri core.RecurringItem) (core.RecurringItem, error) {
	if err := ri.Validate(); err != nil {
		return core.RecurringItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ri.ID = uuid.NewString()
	s.recurring[ri.ID] = ri
	s.order = append(s.order, ri.ID)
	return ri, nil
}

func (s *Store) UpdateRecurringItem(_ context.Context, ri core.RecurringItem) (core.RecurringItem, error) {
	if err := ri.Validate(); err != nil {
		return core.RecurringItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[ri.ID]; !ok {
		return core.RecurringItem{}, store.ErrNotFound
	}
	s.recurring[ri.ID] = ri
	return ri, nil
}

func (s *Store) DeleteRecurringItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recurring[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.recurring, id)
	s.removeOrder(id)
	return nil
}

func (s *Store) ListDebts(_ context.Context) ([]core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Debt, 0, len(s.debts))
	for _, id := range s.order {
		if d, ok := s.debts[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) GetDebt(_ context.Context, id string) (core.Debt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.debts[id]
	if !ok {
		return core.Debt{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) CreateDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = uuid.NewString()
	s.debts[d.ID] = d
	s.order = append(s.order, d.ID)
	return d, nil
}

func (s *Store) UpdateDebt(_ context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[d.ID]; !ok {
		return core.Debt{}, store.ErrNotFound
	}
	s.debts[d.ID] = d
	return d, nil
}

func (s *Store) DeleteDebt(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.debts[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.debts, id)
	s.removeOrder(id)
	return nil
}

func (s *Store) ListDeposits(_ context.Context) ([]core.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Deposit, 0, len(s.deposits))
	for _, id := range s.order {
		if d, ok := s.deposits[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) GetDeposit(_ context.Context, id string) (core.Deposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deposits[id]
	if !ok {
		return core.Deposit{}, store.ErrNotFound
	}
	return d, nil
}

func (s *Store) CreateDeposit(_ context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = uuid.NewString()
	s.deposits[d.ID] = d
	s.order = append(s.order, d.ID)
	return d, nil
}

func (s *Store) UpdateDeposit(_ context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[d.ID]; !ok {
		return core.Deposit{}, store.ErrNotFound
	}
	s.deposits[d.ID] = d
	return d, nil
}

func (s *Store) DeleteDeposit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deposits[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.deposits, id)
	s.removeOrder(id)
	return nil
}
