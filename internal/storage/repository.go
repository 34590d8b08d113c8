// Package storage is the SQLite record store. It persists the four
// entity collections and implements store.TxRunner so compound ledger
// operations commit both of their writes together.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query
// methods serve direct calls and transactional calls.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

type SQLiteRepository struct {
	db *sql.DB
	queries
}

var (
	_ store.Store    = (*SQLiteRepository)(nil)
	_ store.TxRunner = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection sidesteps SQLITE_BUSY under concurrent
	// writes and keeps :memory: databases on one handle.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: queries{db: db}}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithinTx implements store.TxRunner. fn sees a Store whose writes all
// land in one SQLite transaction; any error rolls everything back.
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(store.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// --- transactions ---

const transactionColumns = "id, date, amount_cents, category, description, type"

func (q queries) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions ORDER BY date DESC, created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (q queries) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t.ID = uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO transactions (id, date, amount_cents, category, description, type) VALUES (?, ?, ?, ?, ?, ?)",
		t.ID, t.Date.String(), t.Amount.Cents, t.Category, t.Description, string(t.Type))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return t, nil
}

func (q queries) UpdateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	res, err := q.db.ExecContext(ctx,
		"UPDATE transactions SET date = ?, amount_cents = ?, category = ?, description = ?, type = ? WHERE id = ?",
		t.Date.String(), t.Amount.Cents, t.Category, t.Description, string(t.Type), t.ID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

func (q queries) DeleteTransaction(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireAffected(res)
}

// --- recurring items ---

const recurringColumns = "id, amount_cents, description, category, type, frequency, start_date, end_date"

func (q queries) ListRecurringItems(ctx context.Context) ([]core.RecurringItem, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+recurringColumns+" FROM recurring_items ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list recurring items: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringItem
	for rows.Next() {
		ri, err := scanRecurringItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ri)
	}
	return out, rows.Err()
}

func (q queries) CreateRecurringItem(ctx context.Context, ri core.RecurringItem) (core.RecurringItem, error) {
	if err := ri.Validate(); err != nil {
		return core.RecurringItem{}, err
	}
	ri.ID = uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO recurring_items (id, amount_cents, description, category, type, frequency, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		ri.ID, ri.Amount.Cents, ri.Description, ri.Category, string(ri.Type),
		string(ri.Frequency), ri.StartDate.String(), ri.EndDate.String())
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("create recurring item: %w", err)
	}
	return ri, nil
}

func (q queries) UpdateRecurringItem(ctx context.Context, ri core.RecurringItem) (core.RecurringItem, error) {
	if err := ri.Validate(); err != nil {
		return core.RecurringItem{}, err
	}
	res, err := q.db.ExecContext(ctx,
		"UPDATE recurring_items SET amount_cents = ?, description = ?, category = ?, type = ?, frequency = ?, start_date = ?, end_date = ? WHERE id = ?",
		ri.Amount.Cents, ri.Description, ri.Category, string(ri.Type),
		string(ri.Frequency), ri.StartDate.String(), ri.EndDate.String(), ri.ID)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("update recurring item: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.RecurringItem{}, err
	}
	return ri, nil
}

func (q queries) DeleteRecurringItem(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM recurring_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete recurring item: %w", err)
	}
	return requireAffected(res)
}

// --- debts ---

const debtColumns = "id, name, initial_amount_cents, current_amount_cents, interest_rate, minimum_payment_cents, due_day, start_date"

func (q queries) ListDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q queries) GetDebt(ctx context.Context, id string) (core.Debt, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE id = ?", id)
	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return core.Debt{}, store.ErrNotFound
	}
	return d, err
}

func (q queries) CreateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	d.ID = uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO debts (id, name, initial_amount_cents, current_amount_cents, interest_rate, minimum_payment_cents, due_day, start_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.InitialAmount.Cents, d.CurrentAmount.Cents,
		d.InterestRate, d.MinimumPayment.Cents, d.DueDay, d.StartDate.String())
	if err != nil {
		return core.Debt{}, fmt.Errorf("create debt: %w", err)
	}
	return d, nil
}

func (q queries) UpdateDebt(ctx context.Context, d core.Debt) (core.Debt, error) {
	if err := d.Validate(); err != nil {
		return core.Debt{}, err
	}
	res, err := q.db.ExecContext(ctx,
		"UPDATE debts SET name = ?, initial_amount_cents = ?, current_amount_cents = ?, interest_rate = ?, minimum_payment_cents = ?, due_day = ?, start_date = ? WHERE id = ?",
		d.Name, d.InitialAmount.Cents, d.CurrentAmount.Cents, d.InterestRate,
		d.MinimumPayment.Cents, d.DueDay, d.StartDate.String(), d.ID)
	if err != nil {
		return core.Debt{}, fmt.Errorf("update debt: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Debt{}, err
	}
	return d, nil
}

func (q queries) DeleteDebt(ctx context.Context, id string) error {
	// No cascade: historical payment transactions outlive the debt.
	res, err := q.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete debt: %w", err)
	}
	return requireAffected(res)
}

// --- deposits ---

const depositColumns = "id, name, amount_cents, initial_amount_cents, interest_rate, start_date, end_date, bank, is_capitalized, payment_frequency, status"

func (q queries) ListDeposits(ctx context.Context) ([]core.Deposit, error) {
	rows, err := q.db.QueryContext(ctx,
		"SELECT "+depositColumns+" FROM deposits ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("list deposits: %w", err)
	}
	defer rows.Close()

	var out []core.Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (q queries) GetDeposit(ctx context.Context, id string) (core.Deposit, error) {
	row := q.db.QueryRowContext(ctx,
		"SELECT "+depositColumns+" FROM deposits WHERE id = ?", id)
	d, err := scanDeposit(row)
	if err == sql.ErrNoRows {
		return core.Deposit{}, store.ErrNotFound
	}
	return d, err
}

func (q queries) CreateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}
	d.ID = uuid.NewString()
	_, err := q.db.ExecContext(ctx,
		"INSERT INTO deposits (id, name, amount_cents, initial_amount_cents, interest_rate, start_date, end_date, bank, is_capitalized, payment_frequency, status) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		d.ID, d.Name, d.Amount.Cents, d.InitialAmount.Cents, d.InterestRate,
		d.StartDate.String(), d.EndDate.String(), d.Bank, d.IsCapitalized,
		string(d.PaymentFrequency), string(d.Status))
	if err != nil {
		return core.Deposit{}, fmt.Errorf("create deposit: %w", err)
	}
	return d, nil
}

func (q queries) UpdateDeposit(ctx context.Context, d core.Deposit) (core.Deposit, error) {
	if err := d.Validate(); err != nil {
		return core.Deposit{}, err
	}
	res, err := q.db.ExecContext(ctx,
		"UPDATE deposits SET name = ?, amount_cents = ?, initial_amount_cents = ?, interest_rate = ?, start_date = ?, end_date = ?, bank = ?, is_capitalized = ?, payment_frequency = ?, status = ? WHERE id = ?",
		d.Name, d.Amount.Cents, d.InitialAmount.Cents, d.InterestRate,
		d.StartDate.String(), d.EndDate.String(), d.Bank, d.IsCapitalized,
		string(d.PaymentFrequency), string(d.Status), d.ID)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("update deposit: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return core.Deposit{}, err
	}
	return d, nil
}

func (q queries) DeleteDeposit(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, "DELETE FROM deposits WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete deposit: %w", err)
	}
	return requireAffected(res)
}

// --- scan helpers ---

type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t        core.Transaction
		date, ft string
	)
	if err := s.Scan(&t.ID, &date, &t.Amount.Cents, &t.Category, &t.Description, &ft); err != nil {
		if err == sql.ErrNoRows {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	var err error
	if t.Date, err = core.ParseDate(date); err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction date %q: %w", date, err)
	}
	t.Type = core.FlowType(ft)
	return t, nil
}

func scanRecurringItem(s scanner) (core.RecurringItem, error) {
	var (
		ri                       core.RecurringItem
		ft, freq, startD, endD string
	)
	if err := s.Scan(&ri.ID, &ri.Amount.Cents, &ri.Description, &ri.Category,
		&ft, &freq, &startD, &endD); err != nil {
		return core.RecurringItem{}, fmt.Errorf("scan recurring item: %w", err)
	}
	var err error
	if ri.StartDate, err = core.ParseDate(startD); err != nil {
		return core.RecurringItem{}, fmt.Errorf("scan recurring start date %q: %w", startD, err)
	}
	if endD != "" {
		if ri.EndDate, err = core.ParseDate(endD); err != nil {
			return core.RecurringItem{}, fmt.Errorf("scan recurring end date %q: %w", endD, err)
		}
	}
	ri.Type = core.FlowType(ft)
	ri.Frequency = core.Frequency(freq)
	return ri, nil
}

func scanDebt(s scanner) (core.Debt, error) {
	var (
		d      core.Debt
		startD string
	)
	if err := s.Scan(&d.ID, &d.Name, &d.InitialAmount.Cents, &d.CurrentAmount.Cents,
		&d.InterestRate, &d.MinimumPayment.Cents, &d.DueDay, &startD); err != nil {
		if err == sql.ErrNoRows {
			return core.Debt{}, err
		}
		return core.Debt{}, fmt.Errorf("scan debt: %w", err)
	}
	var err error
	if d.StartDate, err = core.ParseDate(startD); err != nil {
		return core.Debt{}, fmt.Errorf("scan debt start date %q: %w", startD, err)
	}
	return d, nil
}

func scanDeposit(s scanner) (core.Deposit, error) {
	var (
		d                          core.Deposit
		startD, endD, freq, status string
	)
	if err := s.Scan(&d.ID, &d.Name, &d.Amount.Cents, &d.InitialAmount.Cents,
		&d.InterestRate, &startD, &endD, &d.Bank, &d.IsCapitalized,
		&freq, &status); err != nil {
		if err == sql.ErrNoRows {
			return core.Deposit{}, err
		}
		return core.Deposit{}, fmt.Errorf("scan deposit: %w", err)
	}
	var err error
	if d.StartDate, err = core.ParseDate(startD); err != nil {
		return core.Deposit{}, fmt.Errorf("scan deposit start date %q: %w", startD, err)
	}
	if d.EndDate, err = core.ParseDate(endD); err != nil {
		return core.Deposit{}, fmt.Errorf("scan deposit end date %q: %w", endD, err)
	}
	d.PaymentFrequency = core.PayoutFrequency(freq)
	d.Status = core.DepositStatus(status)
	return d, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
