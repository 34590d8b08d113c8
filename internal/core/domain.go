package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  FlowType = "income"
	Expense FlowType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

const (
	PayoutMonthly    PayoutFrequency = "monthly"
	PayoutQuarterly  PayoutFrequency = "quarterly"
	PayoutYearly     PayoutFrequency = "yearly"
	PayoutAtMaturity PayoutFrequency = "atMaturity"
)

const (
	DepositActive DepositStatus = "active"
	DepositClosed DepositStatus = "closed"
)

type (
	// FlowType marks a cash flow as incoming or outgoing.
	FlowType string

	// Frequency is the repetition schedule of a recurring item.
	Frequency string

	// PayoutFrequency is how often a deposit credits interest.
	PayoutFrequency string

	// DepositStatus is the lifecycle state of a deposit. The only legal
	// transition is active -> closed.
	DepositStatus string

	// Date is a calendar date at UTC midnight. The time component is
	// always zero; callers normalize before constructing one.
	Date struct {
		time.Time
	}

	// Transaction is a single realized income or expense.
	Transaction struct {
		ID          string
		Date        Date
		Amount      Money
		Category    string
		Description string
		Type        FlowType
	}

	// RecurringItem is a scheduled cash flow not yet realized as
	// individual transactions. Only monthly items feed the projection
	// metrics; other frequencies are stored as-is.
	RecurringItem struct {
		ID          string
		Amount      Money
		Description string
		Category    string
		Type        FlowType
		Frequency   Frequency
		StartDate   Date
		EndDate     Date // optional, zero when open-ended
	}

	// Debt is an outstanding liability. CurrentAmount only decreases via
	// payments and never goes below zero. InterestRate is stored for
	// display; no accrual is applied automatically.
	Debt struct {
		ID             string
		Name           string
		InitialAmount  Money
		CurrentAmount  Money
		InterestRate   float64 // annual percent
		MinimumPayment Money
		DueDay         int // day of month, 1-31
		StartDate      Date
	}

	// Deposit is an interest-bearing bank deposit. Amount grows via
	// interest postings; InitialAmount is fixed at opening.
	Deposit struct {
		ID               string
		Name             string
		Amount           Money
		InitialAmount    Money
		InterestRate     float64
		StartDate        Date
		EndDate          Date // maturity
		Bank             string
		IsCapitalized    bool
		PaymentFrequency PayoutFrequency
		Status           DepositStatus
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidType      = errors.New("invalid flow type")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidStatus    = errors.New("invalid deposit status")
	ErrInvalidDueDay    = errors.New("invalid due day")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyDescription = errors.New("empty description")
)

// NewDate creates a Date from year, month and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date in YYYY-MM-DD form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// YearMonth returns the YYYY-MM key of the date. Lexicographic order of
// these keys equals chronological order.
func (d Date) YearMonth() string {
	return d.Format("2006-01")
}

// SameMonth reports whether d falls in the same calendar month as t.
func (d Date) SameMonth(t time.Time) bool {
	return d.Year() == t.UTC().Year() && d.Month() == t.UTC().Month()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format("2006-01-02")
}

func (ft FlowType) Validate() error {
	switch ft {
	case Income, Expense:
		return nil
	}
	return ErrInvalidType
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidFrequency
}

func (pf PayoutFrequency) Validate() error {
	switch pf {
	case PayoutMonthly, PayoutQuarterly, PayoutYearly, PayoutAtMaturity:
		return nil
	}
	return ErrInvalidFrequency
}

func (ds DepositStatus) Validate() error {
	switch ds {
	case DepositActive, DepositClosed:
		return nil
	}
	return ErrInvalidStatus
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return t.Type.Validate()
}

func (ri RecurringItem) Validate() error {
	if err := ri.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if !ri.EndDate.IsZero() && ri.EndDate.Before(ri.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	if err := ri.Amount.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(ri.Description)) == 0 {
		return ErrEmptyDescription
	}
	if strings.TrimSpace(ri.Category) == "" {
		return ErrEmptyCategory
	}
	if err := ri.Type.Validate(); err != nil {
		return err
	}
	return ri.Frequency.Validate()
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrEmptyName
	}
	if err := d.InitialAmount.Validate(); err != nil {
		return err
	}
	// Zero is legal here: a fully repaid debt stays on the books.
	if d.CurrentAmount.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.InterestRate < 0 {
		return errors.New("negative interest rate")
	}
	if d.MinimumPayment.Cents < 0 {
		return ErrInvalidAmount
	}
	if d.DueDay < 1 || d.DueDay > 31 {
		return ErrInvalidDueDay
	}
	return d.StartDate.Validate()
}

func (dp Deposit) Validate() error {
	if strings.TrimSpace(dp.Name) == "" {
		return ErrEmptyName
	}
	if dp.Amount.Cents < 0 {
		return ErrInvalidAmount
	}
	if err := dp.InitialAmount.Validate(); err != nil {
		return err
	}
	if dp.InterestRate < 0 {
		return errors.New("negative interest rate")
	}
	if err := dp.StartDate.Validate(); err != nil {
		return errors.New("invalid start date: " + err.Error())
	}
	if err := dp.EndDate.Validate(); err != nil {
		return errors.New("invalid end date: " + err.Error())
	}
	if dp.EndDate.Before(dp.StartDate.Time) {
		return errors.New("end date must not be before start date")
	}
	if strings.TrimSpace(dp.Bank) == "" {
		return errors.New("empty bank")
	}
	if err := dp.PaymentFrequency.Validate(); err != nil {
		return err
	}
	return dp.Status.Validate()
}
