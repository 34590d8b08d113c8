package http

import (
	"context"
	"net/http"

	"kopilka/internal/core"
	"kopilka/internal/metrics"
)

// loadSnapshot reads all four collections for one consistent metrics
// pass.
func (s *Server) loadSnapshot(ctx context.Context) (metrics.Snapshot, error) {
	var snap metrics.Snapshot
	var err error
	if snap.Transactions, err = s.store.ListTransactions(ctx); err != nil {
		return metrics.Snapshot{}, err
	}
	if snap.RecurringItems, err = s.store.ListRecurringItems(ctx); err != nil {
		return metrics.Snapshot{}, err
	}
	if snap.Debts, err = s.store.ListDebts(ctx); err != nil {
		return metrics.Snapshot{}, err
	}
	if snap.Deposits, err = s.store.ListDeposits(ctx); err != nil {
		return metrics.Snapshot{}, err
	}
	return snap, nil
}

type monthSummaryJSON struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Net     string `json:"net"`
}

type bankGroupJSON struct {
	Bank       string  `json:"bank"`
	Amount     string  `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type breakEvenJSON struct {
	Months int    `json:"months"`
	Month  string `json:"month"` // YYYY-MM
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loadSnapshot(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	now := s.now()
	ov := snap.Overview(now)

	asString := func(cents int64) string { return core.Money{Cents: cents}.String() }

	overview := envelope{
		"totalBalance":            asString(ov.TotalBalance),
		"monthlyIncome":           asString(ov.MonthlyIncome),
		"monthlyExpense":          asString(ov.MonthlyExpense),
		"totalDebt":               asString(ov.TotalDebt),
		"monthlyRecurringIncome":  asString(ov.MonthlyRecurringIncome),
		"monthlyRecurringExpense": asString(ov.MonthlyRecurringExpense),
		"monthlyNet":              asString(ov.MonthlyNet),
		"totalDeposits":           asString(ov.TotalDeposits),
		"totalDepositInterest":    asString(ov.TotalDepositInterest),
		"totalAssets":             asString(ov.TotalAssets),
		"netWorth":                asString(ov.NetWorth),
	}
	if ov.BreakEven != nil {
		overview["breakEven"] = breakEvenJSON{
			Months: ov.BreakEven.Months,
			Month:  ov.BreakEven.Month.Format("2006-01"),
		}
	}

	months := snap.TransactionsByMonth()
	byMonth := make([]monthSummaryJSON, len(months))
	for i, m := range months {
		byMonth[i] = monthSummaryJSON{
			Month:   m.Month,
			Income:  m.Income.String(),
			Expense: m.Expense.String(),
			Net:     m.Net.String(),
		}
	}

	byCategory := make(map[string]string)
	for cat, amount := range snap.ExpensesByCategory(now) {
		byCategory[cat] = amount.String()
	}

	banks := snap.DepositsByBank()
	byBank := make([]bankGroupJSON, len(banks))
	for i, b := range banks {
		byBank[i] = bankGroupJSON{
			Bank:       b.Bank,
			Amount:     b.Amount.String(),
			Percentage: b.Percentage,
		}
	}

	respondOK(w, envelope{
		"overview":           overview,
		"transactionsByMonth": byMonth,
		"expensesByCategory": byCategory,
		"depositsByBank":     byBank,
		"upcomingMaturities": renderDeposits(snap.UpcomingMaturityDeposits(now)),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	respondOK(w, envelope{
		"income":  core.DefaultIncomeCategories(),
		"expense": core.DefaultExpenseCategories(),
	})
}
