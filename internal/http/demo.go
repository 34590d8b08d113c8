package http

import (
	"context"
	"fmt"
	"time"

	"kopilka/internal/core"
	"kopilka/internal/store"
)

func rub(units int64) core.Money {
	return core.Money{Cents: units * 100}
}

// seedDemoData populates an empty store with a representative dataset
// relative to now: two months of transactions, a recurring budget, two
// debts and three deposits.
func seedDemoData(ctx context.Context, st store.Store, now time.Time) error {
	today := core.DateOf(now)
	lastMonth := core.DateOf(now.AddDate(0, -1, 0))
	monthsAgo := func(n int) core.Date { return core.DateOf(now.AddDate(0, -n, 0)) }
	monthsAhead := func(n int) core.Date { return core.DateOf(now.AddDate(0, n, 0)) }

	transactions := []core.Transaction{
		{Date: today, Amount: rub(100000), Category: "Зарплата", Description: "Зарплата за текущий месяц", Type: core.Income},
		{Date: today, Amount: rub(20000), Category: "Фриланс", Description: "Проект для клиента", Type: core.Income},
		{Date: today, Amount: rub(15000), Category: "Жилье", Description: "Оплата аренды", Type: core.Expense},
		{Date: today, Amount: rub(5000), Category: "Питание", Description: "Продукты", Type: core.Expense},
		{Date: lastMonth, Amount: rub(100000), Category: "Зарплата", Description: "Зарплата за прошлый месяц", Type: core.Income},
		{Date: lastMonth, Amount: rub(10000), Category: "Развлечения", Description: "Кино и ресторан", Type: core.Expense},
	}
	for _, t := range transactions {
		if _, err := st.CreateTransaction(ctx, t); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}

	recurring := []core.RecurringItem{
		{Amount: rub(100000), Description: "Ежемесячная зарплата", Category: "Зарплата", Type: core.Income, Frequency: core.Monthly, StartDate: today},
		{Amount: rub(15000), Description: "Оплата аренды", Category: "Жилье", Type: core.Expense, Frequency: core.Monthly, StartDate: today},
		{Amount: rub(20000), Description: "Продукты", Category: "Питание", Type: core.Expense, Frequency: core.Monthly, StartDate: today},
		{Amount: rub(5000), Description: "Подписки", Category: "Развлечения", Type: core.Expense, Frequency: core.Monthly, StartDate: today},
	}
	for _, ri := range recurring {
		if _, err := st.CreateRecurringItem(ctx, ri); err != nil {
			return fmt.Errorf("seed recurring item: %w", err)
		}
	}

	debts := []core.Debt{
		{
			Name:           "Кредит на автомобиль",
			InitialAmount:  rub(500000),
			CurrentAmount:  rub(350000),
			InterestRate:   12,
			MinimumPayment: rub(15000),
			DueDay:         15,
			StartDate:      monthsAgo(6),
		},
		{
			Name:           "Кредитная карта",
			InitialAmount:  rub(100000),
			CurrentAmount:  rub(80000),
			InterestRate:   18,
			MinimumPayment: rub(5000),
			DueDay:         20,
			StartDate:      monthsAgo(3),
		},
	}
	for _, d := range debts {
		if _, err := st.CreateDebt(ctx, d); err != nil {
			return fmt.Errorf("seed debt: %w", err)
		}
	}

	deposits := []core.Deposit{
		{
			Name:             "Накопительный вклад",
			Amount:           rub(200000),
			InitialAmount:    rub(200000),
			InterestRate:     7.5,
			StartDate:        monthsAgo(2),
			EndDate:          monthsAhead(10),
			Bank:             "Сбербанк",
			IsCapitalized:    true,
			PaymentFrequency: core.PayoutMonthly,
			Status:           core.DepositActive,
		},
		{
			Name:             "Срочный вклад",
			Amount:           rub(500000),
			InitialAmount:    rub(500000),
			InterestRate:     8.2,
			StartDate:        monthsAgo(1),
			EndDate:          monthsAhead(12),
			Bank:             "ВТБ",
			IsCapitalized:    false,
			PaymentFrequency: core.PayoutQuarterly,
			Status:           core.DepositActive,
		},
		{
			Name:             "Накопительный счет",
			Amount:           rub(150000),
			InitialAmount:    rub(100000),
			InterestRate:     6.5,
			StartDate:        monthsAgo(3),
			EndDate:          monthsAhead(9),
			Bank:             "Тинькофф",
			IsCapitalized:    true,
			PaymentFrequency: core.PayoutMonthly,
			Status:           core.DepositActive,
		},
	}
	for _, d := range deposits {
		if _, err := st.CreateDeposit(ctx, d); err != nil {
			return fmt.Errorf("seed deposit: %w", err)
		}
	}

	return nil
}
