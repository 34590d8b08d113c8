// Package metrics is the financial aggregation engine. Every metric is
// a pure function of a Snapshot of the four record collections plus an
// explicit reference time; nothing here caches, mutates or reads the
// clock. Recomputing on every read is linear in collection size, which
// is cheap at personal-finance volumes and removes cache invalidation
// entirely.
package metrics

import (
	"sort"
	"time"

	"kopilka/internal/core"
)

// Snapshot is the in-memory state the engine computes over. Callers
// load it from the record store; the engine never touches storage.
type Snapshot struct {
	Transactions   []core.Transaction
	RecurringItems []core.RecurringItem
	Debts          []core.Debt
	Deposits       []core.Deposit
}

// MonthSummary is the per-month income/expense rollup.
type MonthSummary struct {
	Month   string // YYYY-MM
	Income  core.Money
	Expense core.Money
	Net     core.Money
}

// BankGroup is the active-deposit total for a single bank.
type BankGroup struct {
	Bank       string
	Amount     core.Money
	Percentage float64 // share of all active deposits, 0 when none
}

// BreakEven is the projected month at which recurring net cash flow
// fully offsets outstanding debt.
type BreakEven struct {
	Months int       // whole months from the reference time, ceiling
	Month  time.Time // first day of the projected month, UTC
}

// maturityHorizon is how far ahead the upcoming-maturity watchlist
// looks.
const maturityHorizon = 3 // months

// TotalBalance sums all transactions, income positive, expense
// negative.
func (s Snapshot) TotalBalance() core.Money {
	var sum core.Money
	for _, t := range s.Transactions {
		if t.Type == core.Income {
			sum = sum.Add(t.Amount)
		} else {
			sum = sum.Sub(t.Amount)
		}
	}
	return sum
}

// MonthlyIncome sums income transactions dated in the calendar month of
// now.
func (s Snapshot) MonthlyIncome(now time.Time) core.Money {
	return s.monthlyFlow(core.Income, now)
}

// MonthlyExpense sums expense transactions dated in the calendar month
// of now.
func (s Snapshot) MonthlyExpense(now time.Time) core.Money {
	return s.monthlyFlow(core.Expense, now)
}

func (s Snapshot) monthlyFlow(ft core.FlowType, now time.Time) core.Money {
	var sum core.Money
	for _, t := range s.Transactions {
		if t.Type == ft && t.Date.SameMonth(now) {
			sum = sum.Add(t.Amount)
		}
	}
	return sum
}

// TotalDebt sums the outstanding balance of every debt.
func (s Snapshot) TotalDebt() core.Money {
	var sum core.Money
	for _, d := range s.Debts {
		sum = sum.Add(d.CurrentAmount)
	}
	return sum
}

// MonthlyRecurringIncome sums monthly-frequency recurring income items.
// Other frequencies are not folded into monthly totals.
func (s Snapshot) MonthlyRecurringIncome() core.Money {
	return s.recurringFlow(core.Income)
}

// MonthlyRecurringExpense sums monthly-frequency recurring expense
// items.
func (s Snapshot) MonthlyRecurringExpense() core.Money {
	return s.recurringFlow(core.Expense)
}

func (s Snapshot) recurringFlow(ft core.FlowType) core.Money {
	var sum core.Money
	for _, ri := range s.RecurringItems {
		if ri.Type == ft && ri.Frequency == core.Monthly {
			sum = sum.Add(ri.Amount)
		}
	}
	return sum
}

// MonthlyNet is recurring income minus recurring expense. It may be
// negative.
func (s Snapshot) MonthlyNet() core.Money {
	return s.MonthlyRecurringIncome().Sub(s.MonthlyRecurringExpense())
}

// BreakEvenPoint projects when cumulative recurring net cash flow
// offsets total debt. The projection is undefined (ok=false) when there
// is no debt or when net cash flow is not positive. Ceiling division:
// any remainder costs a full extra month.
func (s Snapshot) BreakEvenPoint(now time.Time) (BreakEven, bool) {
	debt := s.TotalDebt().Cents
	net := s.MonthlyNet().Cents
	if debt <= 0 || net <= 0 {
		return BreakEven{}, false
	}
	months := int((debt + net - 1) / net)
	y, m, _ := now.UTC().Date()
	return BreakEven{
		Months: months,
		Month:  time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC),
	}, true
}

// TransactionsByMonth groups transactions by calendar month, summing
// income and expense per group, ordered ascending by month.
func (s Snapshot) TransactionsByMonth() []MonthSummary {
	grouped := make(map[string]*MonthSummary)
	for _, t := range s.Transactions {
		key := t.Date.YearMonth()
		ms, ok := grouped[key]
		if !ok {
			ms = &MonthSummary{Month: key}
			grouped[key] = ms
		}
		if t.Type == core.Income {
			ms.Income = ms.Income.Add(t.Amount)
		} else {
			ms.Expense = ms.Expense.Add(t.Amount)
		}
	}

	out := make([]MonthSummary, 0, len(grouped))
	for _, ms := range grouped {
		ms.Net = ms.Income.Sub(ms.Expense)
		out = append(out, *ms)
	}
	// Lexicographic YYYY-MM order is chronological order.
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ExpensesByCategory sums current-month expenses per category.
func (s Snapshot) ExpensesByCategory(now time.Time) map[string]core.Money {
	out := make(map[string]core.Money)
	for _, t := range s.Transactions {
		if t.Type == core.Expense && t.Date.SameMonth(now) {
			out[t.Category] = out[t.Category].Add(t.Amount)
		}
	}
	return out
}

// TotalDeposits sums the balance of active deposits.
func (s Snapshot) TotalDeposits() core.Money {
	var sum core.Money
	for _, d := range s.Deposits {
		if d.Status == core.DepositActive {
			sum = sum.Add(d.Amount)
		}
	}
	return sum
}

// TotalDepositInterest is cumulative interest credited to active
// deposits since opening: the sum of (amount - initialAmount).
func (s Snapshot) TotalDepositInterest() core.Money {
	var sum core.Money
	for _, d := range s.Deposits {
		if d.Status == core.DepositActive {
			sum = sum.Add(d.Amount.Sub(d.InitialAmount))
		}
	}
	return sum
}

// ActiveDeposits filters deposits in active status.
func (s Snapshot) ActiveDeposits() []core.Deposit {
	out := make([]core.Deposit, 0, len(s.Deposits))
	for _, d := range s.Deposits {
		if d.Status == core.DepositActive {
			out = append(out, d)
		}
	}
	return out
}

// UpcomingMaturityDeposits lists active deposits maturing within three
// months of now, inclusive, earliest maturity first.
func (s Snapshot) UpcomingMaturityDeposits(now time.Time) []core.Deposit {
	horizon := core.DateOf(now).AddDate(0, maturityHorizon, 0)
	var out []core.Deposit
	for _, d := range s.Deposits {
		if d.Status == core.DepositActive && !d.EndDate.After(horizon) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].EndDate.Before(out[j].EndDate.Time)
	})
	return out
}

// DepositsByBank groups active deposits by bank with each bank's share
// of the total. Shares are zero when there are no active deposits.
func (s Snapshot) DepositsByBank() []BankGroup {
	sums := make(map[string]core.Money)
	var order []string
	for _, d := range s.Deposits {
		if d.Status != core.DepositActive {
			continue
		}
		if _, seen := sums[d.Bank]; !seen {
			order = append(order, d.Bank)
		}
		sums[d.Bank] = sums[d.Bank].Add(d.Amount)
	}

	total := s.TotalDeposits().Cents
	out := make([]BankGroup, 0, len(order))
	for _, bank := range order {
		g := BankGroup{Bank: bank, Amount: sums[bank]}
		if total > 0 {
			g.Percentage = float64(g.Amount.Cents) / float64(total) * 100
		}
		out = append(out, g)
	}
	return out
}

// TotalAssets is transaction balance plus active deposits.
func (s Snapshot) TotalAssets() core.Money {
	return s.TotalBalance().Add(s.TotalDeposits())
}

// NetWorth is total assets minus total debt.
func (s Snapshot) NetWorth() core.Money {
	return s.TotalAssets().Sub(s.TotalDebt())
}
