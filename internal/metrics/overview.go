package metrics

import "time"

// Overview bundles the scalar metrics for a single dashboard read. One
// snapshot and one reference time feed every field, so the numbers are
// mutually consistent.
type Overview struct {
	TotalBalance            int64
	MonthlyIncome           int64
	MonthlyExpense          int64
	TotalDebt               int64
	MonthlyRecurringIncome  int64
	MonthlyRecurringExpense int64
	MonthlyNet              int64
	TotalDeposits           int64
	TotalDepositInterest    int64
	TotalAssets             int64
	NetWorth                int64
	BreakEven               *BreakEven // nil when undefined
}

// Overview computes every scalar metric against one reference time.
func (s Snapshot) Overview(now time.Time) Overview {
	ov := Overview{
		TotalBalance:            s.TotalBalance().Cents,
		MonthlyIncome:           s.MonthlyIncome(now).Cents,
		MonthlyExpense:          s.MonthlyExpense(now).Cents,
		TotalDebt:               s.TotalDebt().Cents,
		MonthlyRecurringIncome:  s.MonthlyRecurringIncome().Cents,
		MonthlyRecurringExpense: s.MonthlyRecurringExpense().Cents,
		MonthlyNet:              s.MonthlyNet().Cents,
		TotalDeposits:           s.TotalDeposits().Cents,
		TotalDepositInterest:    s.TotalDepositInterest().Cents,
		TotalAssets:             s.TotalAssets().Cents,
		NetWorth:                s.NetWorth().Cents,
	}
	if be, ok := s.BreakEvenPoint(now); ok {
		ov.BreakEven = &be
	}
	return ov
}
