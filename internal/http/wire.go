package http

import (
	"bytes"
	"encoding/json"
	"fmt"

	"kopilka/internal/core"
)

// amountValue accepts a JSON number or a decimal string for monetary
// fields, so producers can send 1234.56 or "1234,56" interchangeably.
type amountValue string

func (a *amountValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = amountValue(n.String())
	return nil
}

func (a amountValue) Money() (core.Money, error) {
	if a == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	return core.ParseMoney(string(a))
}

// MoneyOrZero parses a balance field where absence and zero are legal.
func (a amountValue) MoneyOrZero() (core.Money, error) {
	if a == "" {
		return core.Money{}, nil
	}
	return core.ParseMoneyNonNeg(string(a))
}

type transactionPayload struct {
	Date        string      `json:"date"`
	Amount      amountValue `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
}

func (p transactionPayload) toCore() (core.Transaction, error) {
	date, err := core.ParseDate(p.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("date: %w", err)
	}
	amount, err := p.Amount.Money()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}
	return core.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    sanitizeInput(p.Category),
		Description: sanitizeInput(p.Description),
		Type:        core.FlowType(p.Type),
	}, nil
}

type recurringPayload struct {
	Amount      amountValue `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Frequency   string      `json:"frequency"`
	StartDate   string      `json:"startDate"`
	EndDate     string      `json:"endDate"`
}

func (p recurringPayload) toCore() (core.RecurringItem, error) {
	amount, err := p.Amount.Money()
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("amount: %w", err)
	}
	start, err := core.ParseDate(p.StartDate)
	if err != nil {
		return core.RecurringItem{}, fmt.Errorf("startDate: %w", err)
	}
	item := core.RecurringItem{
		Amount:      amount,
		Description: sanitizeInput(p.Description),
		Category:    sanitizeInput(p.Category),
		Type:        core.FlowType(p.Type),
		Frequency:   core.Frequency(p.Frequency),
		StartDate:   start,
	}
	if p.EndDate != "" {
		if item.EndDate, err = core.ParseDate(p.EndDate); err != nil {
			return core.RecurringItem{}, fmt.Errorf("endDate: %w", err)
		}
	}
	return item, nil
}

type debtPayload struct {
	Name           string      `json:"name"`
	InitialAmount  amountValue `json:"initialAmount"`
	CurrentAmount  amountValue `json:"currentAmount"`
	InterestRate   float64     `json:"interestRate"`
	MinimumPayment amountValue `json:"minimumPayment"`
	DueDay         int         `json:"dueDay"`
	StartDate      string      `json:"startDate"`
}

func (p debtPayload) toCore() (core.Debt, error) {
	initial, err := p.InitialAmount.Money()
	if err != nil {
		return core.Debt{}, fmt.Errorf("initialAmount: %w", err)
	}
	// A fully repaid debt stays on the books at zero.
	current, err := p.CurrentAmount.MoneyOrZero()
	if err != nil {
		return core.Debt{}, fmt.Errorf("currentAmount: %w", err)
	}
	minimum, err := p.MinimumPayment.MoneyOrZero()
	if err != nil {
		return core.Debt{}, fmt.Errorf("minimumPayment: %w", err)
	}
	start, err := core.ParseDate(p.StartDate)
	if err != nil {
		return core.Debt{}, fmt.Errorf("startDate: %w", err)
	}
	return core.Debt{
		Name:           sanitizeInput(p.Name),
		InitialAmount:  initial,
		CurrentAmount:  current,
		InterestRate:   p.InterestRate,
		MinimumPayment: minimum,
		DueDay:         p.DueDay,
		StartDate:      start,
	}, nil
}

type depositPayload struct {
	Name             string      `json:"name"`
	Amount           amountValue `json:"amount"`
	InitialAmount    amountValue `json:"initialAmount"`
	InterestRate     float64     `json:"interestRate"`
	StartDate        string      `json:"startDate"`
	EndDate          string      `json:"endDate"`
	Bank             string      `json:"bank"`
	IsCapitalized    bool        `json:"isCapitalized"`
	PaymentFrequency string      `json:"paymentFrequency"`
	Status           string      `json:"status"`
}

func (p depositPayload) toCore() (core.Deposit, error) {
	amount, err := p.Amount.MoneyOrZero()
	if err != nil {
		return core.Deposit{}, fmt.Errorf("amount: %w", err)
	}
	initial, err := p.InitialAmount.Money()
	if err != nil {
		return core.Deposit{}, fmt.Errorf("initialAmount: %w", err)
	}
	start, err := core.ParseDate(p.StartDate)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("startDate: %w", err)
	}
	end, err := core.ParseDate(p.EndDate)
	if err != nil {
		return core.Deposit{}, fmt.Errorf("endDate: %w", err)
	}
	status := core.DepositStatus(p.Status)
	if p.Status == "" {
		status = core.DepositActive
	}
	return core.Deposit{
		Name:             sanitizeInput(p.Name),
		Amount:           amount,
		InitialAmount:    initial,
		InterestRate:     p.InterestRate,
		StartDate:        start,
		EndDate:          end,
		Bank:             sanitizeInput(p.Bank),
		IsCapitalized:    p.IsCapitalized,
		PaymentFrequency: core.PayoutFrequency(p.PaymentFrequency),
		Status:           status,
	}, nil
}

// Outbound shapes. Amounts travel as decimal strings, dates as
// YYYY-MM-DD.

type transactionJSON struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

func renderTransaction(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:          t.ID,
		Date:        t.Date.String(),
		Amount:      t.Amount.String(),
		Category:    t.Category,
		Description: t.Description,
		Type:        string(t.Type),
	}
}

func renderTransactions(ts []core.Transaction) []transactionJSON {
	out := make([]transactionJSON, len(ts))
	for i, t := range ts {
		out[i] = renderTransaction(t)
	}
	return out
}

type recurringJSON struct {
	ID          string `json:"id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Type        string `json:"type"`
	Frequency   string `json:"frequency"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate,omitempty"`
}

func renderRecurring(ri core.RecurringItem) recurringJSON {
	return recurringJSON{
		ID:          ri.ID,
		Amount:      ri.Amount.String(),
		Description: ri.Description,
		Category:    ri.Category,
		Type:        string(ri.Type),
		Frequency:   string(ri.Frequency),
		StartDate:   ri.StartDate.String(),
		EndDate:     ri.EndDate.String(),
	}
}

func renderRecurrings(items []core.RecurringItem) []recurringJSON {
	out := make([]recurringJSON, len(items))
	for i, ri := range items {
		out[i] = renderRecurring(ri)
	}
	return out
}

type debtJSON struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	InitialAmount  string  `json:"initialAmount"`
	CurrentAmount  string  `json:"currentAmount"`
	InterestRate   float64 `json:"interestRate"`
	MinimumPayment string  `json:"minimumPayment"`
	DueDay         int     `json:"dueDay"`
	StartDate      string  `json:"startDate"`
}

func renderDebt(d core.Debt) debtJSON {
	return debtJSON{
		ID:             d.ID,
		Name:           d.Name,
		InitialAmount:  d.InitialAmount.String(),
		CurrentAmount:  d.CurrentAmount.String(),
		InterestRate:   d.InterestRate,
		MinimumPayment: d.MinimumPayment.String(),
		DueDay:         d.DueDay,
		StartDate:      d.StartDate.String(),
	}
}

func renderDebts(debts []core.Debt) []debtJSON {
	out := make([]debtJSON, len(debts))
	for i, d := range debts {
		out[i] = renderDebt(d)
	}
	return out
}

type depositJSON struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Amount           string  `json:"amount"`
	InitialAmount    string  `json:"initialAmount"`
	InterestRate     float64 `json:"interestRate"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	Bank             string  `json:"bank"`
	IsCapitalized    bool    `json:"isCapitalized"`
	PaymentFrequency string  `json:"paymentFrequency"`
	Status           string  `json:"status"`
}

func renderDeposit(d core.Deposit) depositJSON {
	return depositJSON{
		ID:               d.ID,
		Name:             d.Name,
		Amount:           d.Amount.String(),
		InitialAmount:    d.InitialAmount.String(),
		InterestRate:     d.InterestRate,
		StartDate:        d.StartDate.String(),
		EndDate:          d.EndDate.String(),
		Bank:             d.Bank,
		IsCapitalized:    d.IsCapitalized,
		PaymentFrequency: string(d.PaymentFrequency),
		Status:           string(d.Status),
	}
}

func renderDeposits(deposits []core.Deposit) []depositJSON {
	out := make([]depositJSON, len(deposits))
	for i, d := range deposits {
		out[i] = renderDeposit(d)
	}
	return out
}
