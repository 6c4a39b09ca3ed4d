package core

import (
	"strings"
	"time"
)

// Frequency describes how often an income recurs.
type Frequency string

const (
	Weekly   Frequency = "Weekly"
	BiWeekly Frequency = "Bi-weekly"
	Monthly  Frequency = "Monthly"
	Yearly   Frequency = "Yearly"
)

// Date is a calendar date without a time component. It marshals to JSON
// as "2006-01-02".
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Month returns the month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Budget is a spending envelope for one category. Spent is a denormalized
// aggregate over the active expenses referencing the budget; only the
// aggregate maintainer mutates it. Remaining is never stored, it is
// recomputed from amount and spent wherever the budget is read.
type Budget struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Title     string    `json:"title"`
	Amount    Money     `json:"amount"`
	Spent     Money     `json:"spent"`
	Remaining Money     `json:"remaining"`
	Category  string    `json:"category"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecomputeRemaining refreshes the derived remaining field. Spent is not
// clamped, so remaining may be negative when a budget is overrun.
func (b *Budget) RecomputeRemaining() {
	b.Remaining = b.Amount.Sub(b.Spent)
}

// Validate checks budget fields for create requests.
func (b Budget) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(b.Title) == "" {
		ve.Add("title", "title is required")
	}
	if len(b.Title) > 100 {
		ve.Add("title", "title too long (max 100 characters)")
	}
	if b.Amount.Cents < 0 {
		ve.Add("amount", "amount must be non-negative")
	}
	if strings.TrimSpace(b.Category) == "" {
		ve.Add("category", "category is required")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// Expense is a single spend record with an optional weak reference to a
// budget. Deleting the expense never deletes the budget, but it must
// reverse the expense's effect on the budget's spent aggregate.
type Expense struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Amount      Money     `json:"amount"`
	Date        Date      `json:"date"`
	Category    string    `json:"category"`
	Receipt     bool      `json:"receipt"`
	Description string    `json:"description,omitempty"`
	BudgetID    *int64    `json:"budgetId,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks expense fields for create requests.
func (e Expense) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(e.Name) == "" {
		ve.Add("name", "name is required")
	}
	if len(e.Name) > 100 {
		ve.Add("name", "name too long (max 100 characters)")
	}
	if e.Amount.Cents < 0 {
		ve.Add("amount", "amount must be non-negative")
	}
	if e.Date.IsZero() {
		ve.Add("date", "date is required")
	}
	if strings.TrimSpace(e.Category) == "" {
		ve.Add("category", "category is required")
	}
	if len(e.Description) > 250 {
		ve.Add("description", "description too long (max 250 characters)")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// Subscription is a recurring service the user pays for. It has no
// aggregate coupling to budgets.
type Subscription struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"-"`
	Name            string    `json:"name"`
	Plan            string    `json:"plan"`
	TotalSpend      Money     `json:"totalSpend"`
	DurationMonths  int       `json:"duration"`
	Recurring       bool      `json:"recurring"`
	Category        string    `json:"category"`
	Color           string    `json:"color,omitempty"`
	NextPaymentDate *Date     `json:"nextPaymentDate,omitempty"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Validate checks subscription fields for create requests.
func (s Subscription) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(s.Name) == "" {
		ve.Add("name", "name is required")
	}
	if s.TotalSpend.Cents < 0 {
		ve.Add("totalSpend", "totalSpend must be non-negative")
	}
	if s.DurationMonths < 0 {
		ve.Add("duration", "duration must be non-negative")
	}
	if strings.TrimSpace(s.Category) == "" {
		ve.Add("category", "category is required")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// Income is a recurring income source. Hard-deleted, no soft flag.
type Income struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Type      string    `json:"type"`
	Amount    Money     `json:"amount"`
	Frequency Frequency `json:"frequency"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidFrequency reports whether f is one of the supported income frequencies.
func ValidFrequency(f Frequency) bool {
	switch f {
	case Weekly, BiWeekly, Monthly, Yearly:
		return true
	}
	return false
}

// Validate checks income fields for create requests.
func (i Income) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(i.Type) == "" {
		ve.Add("type", "type is required")
	}
	if i.Amount.Cents < 0 {
		ve.Add("amount", "amount must be non-negative")
	}
	if !ValidFrequency(i.Frequency) {
		ve.Add("frequency", "frequency must be one of Weekly, Bi-weekly, Monthly, Yearly")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// SavingsExpense is a monthly savings target per category. PerYear is
// derived from PerMonth and recomputed on every write path, never trusted
// from a previously stored row.
type SavingsExpense struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"-"`
	Category  string    `json:"category"`
	PerMonth  Money     `json:"perMonth"`
	PerYear   Money     `json:"perYear"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecomputePerYear refreshes the derived yearly figure.
func (s *SavingsExpense) RecomputePerYear() {
	s.PerYear = Money{Cents: s.PerMonth.Cents * 12}
}

// Validate checks savings expense fields for create requests.
func (s SavingsExpense) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(s.Category) == "" {
		ve.Add("category", "category is required")
	}
	if s.PerMonth.Cents < 0 {
		ve.Add("perMonth", "perMonth must be non-negative")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// SavingsBudget is the single overall monthly savings target for a user.
// Writes are upserts keyed by user.
type SavingsBudget struct {
	ID            int64     `json:"id"`
	UserID        string    `json:"-"`
	MonthlyBudget Money     `json:"monthlyBudget"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Validate checks savings budget fields for upsert requests.
func (s SavingsBudget) Validate() error {
	if s.MonthlyBudget.Cents < 0 {
		return NewValidationError("monthlyBudget", "monthlyBudget must be non-negative")
	}
	return nil
}

// ExpenseAnalytics is a per-category planned-versus-actual row, unique per
// (user, category, month, year). Writes are upserts on that key.
type ExpenseAnalytics struct {
	ID          int64     `json:"id"`
	UserID      string    `json:"-"`
	Category    string    `json:"category"`
	Actual      Money     `json:"actual"`
	Budget      Money     `json:"budget"`
	LastYear    Money     `json:"lastYear"`
	Description string    `json:"description,omitempty"`
	Month       int       `json:"month"`
	Year        int       `json:"year"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Validate checks analytics fields for upsert requests.
func (a ExpenseAnalytics) Validate() error {
	ve := &ValidationError{}
	if strings.TrimSpace(a.Category) == "" {
		ve.Add("category", "category is required")
	}
	if a.Actual.Cents < 0 {
		ve.Add("actual", "actual must be non-negative")
	}
	if a.Budget.Cents < 0 {
		ve.Add("budget", "budget must be non-negative")
	}
	if a.LastYear.Cents < 0 {
		ve.Add("lastYear", "lastYear must be non-negative")
	}
	if a.Month < 1 || a.Month > 12 {
		ve.Add("month", "month must be between 1 and 12")
	}
	if a.Year < 2020 {
		ve.Add("year", "year must be 2020 or later")
	}
	if ve.Empty() {
		return nil
	}
	return ve
}

// SameBudgetRef reports whether two optional budget references point at
// the same budget (both nil, or both set to the same id).
func SameBudgetRef(a, b *int64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
