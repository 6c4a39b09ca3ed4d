package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"bilancio/internal/core"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*core.Expense, error) {
	var (
		e         core.Expense
		date      string
		receipt   int
		active    int
		created   string
		updated   string
		budgetRef sql.NullInt64
	)
	err := row.Scan(&e.ID, &e.UserID, &e.Name, &e.Amount.Cents, &date, &e.Category,
		&receipt, &e.Description, &budgetRef, &active, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan expense: %w", err)
	}
	parsed, err := core.ParseDate(date)
	if err != nil {
		return nil, fmt.Errorf("parse expense date %q: %w", date, err)
	}
	e.Date = parsed
	e.Receipt = receipt != 0
	e.Active = active != 0
	if budgetRef.Valid {
		id := budgetRef.Int64
		e.BudgetID = &id
	}
	e.CreatedAt = mustParseTime(created)
	e.UpdatedAt = mustParseTime(updated)
	return &e, nil
}

func scanBudget(row rowScanner) (*core.Budget, error) {
	var (
		b       core.Budget
		active  int
		created string
		updated string
	)
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Amount.Cents, &b.Spent.Cents,
		&b.Category, &b.Icon, &b.Color, &active, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan budget: %w", err)
	}
	b.Active = active != 0
	b.CreatedAt = mustParseTime(created)
	b.UpdatedAt = mustParseTime(updated)
	// remaining is derived, never stored
	b.RecomputeRemaining()
	return &b, nil
}

func scanSubscription(row rowScanner) (*core.Subscription, error) {
	var (
		s        core.Subscription
		next     sql.NullString
		recur    int
		active   int
		created  string
		updated  string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Plan, &s.TotalSpend.Cents,
		&s.DurationMonths, &recur, &s.Category, &s.Color, &next, &active, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan subscription: %w", err)
	}
	s.Recurring = recur != 0
	s.Active = active != 0
	if next.Valid && next.String != "" {
		d, err := core.ParseDate(next.String)
		if err != nil {
			return nil, fmt.Errorf("parse next payment date %q: %w", next.String, err)
		}
		s.NextPaymentDate = &d
	}
	s.CreatedAt = mustParseTime(created)
	s.UpdatedAt = mustParseTime(updated)
	return &s, nil
}

func scanIncome(row rowScanner) (*core.Income, error) {
	var (
		in      core.Income
		freq    string
		created string
		updated string
	)
	err := row.Scan(&in.ID, &in.UserID, &in.Type, &in.Amount.Cents, &freq, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan income: %w", err)
	}
	in.Frequency = core.Frequency(freq)
	in.CreatedAt = mustParseTime(created)
	in.UpdatedAt = mustParseTime(updated)
	return &in, nil
}

func scanSavingsExpense(row rowScanner) (*core.SavingsExpense, error) {
	var (
		s       core.SavingsExpense
		created string
		updated string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Category, &s.PerMonth.Cents, &s.PerYear.Cents, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan savings expense: %w", err)
	}
	// per_year is derived from per_month; recompute instead of trusting
	// the stored value
	s.RecomputePerYear()
	s.CreatedAt = mustParseTime(created)
	s.UpdatedAt = mustParseTime(updated)
	return &s, nil
}

func scanAnalytics(row rowScanner) (*core.ExpenseAnalytics, error) {
	var (
		a       core.ExpenseAnalytics
		created string
		updated string
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Category, &a.Actual.Cents, &a.Budget.Cents,
		&a.LastYear.Cents, &a.Description, &a.Month, &a.Year, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("scan analytics row: %w", err)
	}
	a.CreatedAt = mustParseTime(created)
	a.UpdatedAt = mustParseTime(updated)
	return &a, nil
}
