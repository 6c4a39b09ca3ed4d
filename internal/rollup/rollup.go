// Package rollup provides pure, stateless summary computations over
// snapshots of entity collections. Callers are expected to pass slices
// already filtered to the requesting user and to active records; the
// functions here never touch storage.
package rollup

import (
	"math"
	"time"

	"bilancio/internal/core"
)

// Summary is a flat total over a filtered sequence.
type Summary struct {
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// CategorySummary is the per-category slice of a breakdown.
type CategorySummary struct {
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// MonthBucket is one month's slice of a dense monthly breakdown.
type MonthBucket struct {
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// TrendBucket is one calendar month of a trailing-window trend.
type TrendBucket struct {
	Label string     `json:"label"`
	Total core.Money `json:"total"`
	Count int        `json:"count"`
}

// VarianceResult is the planned-versus-actual outcome for one bucket.
type VarianceResult struct {
	Variance    core.Money `json:"variance"`
	VariancePct int        `json:"variancePct"`
}

// Totals folds a slice into a flat sum and count.
func Totals[T any](items []T, amount func(T) int64) Summary {
	var s Summary
	for _, it := range items {
		s.Total.Cents += amount(it)
		s.Count++
	}
	return s
}

// CategoryBreakdown groups a slice by category. The key set is exactly
// the categories present in the input; absent categories are omitted,
// not zero-filled.
func CategoryBreakdown[T any](items []T, category func(T) string, amount func(T) int64) map[string]CategorySummary {
	out := make(map[string]CategorySummary)
	for _, it := range items {
		key := category(it)
		cs := out[key]
		cs.Total.Cents += amount(it)
		cs.Count++
		out[key] = cs
	}
	return out
}

// MonthlyBreakdown buckets a slice by month of the given year. The result
// is dense: all 12 months are present and zero-initialized even when the
// input is empty. Records from other years are ignored.
func MonthlyBreakdown[T any](items []T, year int, when func(T) time.Time, amount func(T) int64) map[int]MonthBucket {
	out := make(map[int]MonthBucket, 12)
	for m := 1; m <= 12; m++ {
		out[m] = MonthBucket{}
	}
	for _, it := range items {
		t := when(it)
		if t.Year() != year {
			continue
		}
		m := int(t.Month())
		b := out[m]
		b.Total.Cents += amount(it)
		b.Count++
		out[m] = b
	}
	return out
}

// Trend buckets a slice into a dense trailing window of calendar months,
// iterating backward from the month containing now. Buckets are returned
// in ascending chronological order ending at the current month, each
// labelled "Jan 2006" and bounded by calendar-month start and end.
// Bounds are computed in UTC because stored dates are UTC midnights; a
// local-zone boundary would shift first-of-month records into the wrong
// bucket.
func Trend[T any](items []T, windowMonths int, now time.Time, when func(T) time.Time, amount func(T) int64) []TrendBucket {
	if windowMonths <= 0 {
		return nil
	}
	now = now.UTC()
	buckets := make([]TrendBucket, windowMonths)
	for i := windowMonths - 1; i >= 0; i-- {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

		b := TrendBucket{Label: monthStart.Format("Jan 2006")}
		for _, it := range items {
			t := when(it)
			if t.Before(monthStart) || t.After(monthEnd) {
				continue
			}
			b.Total.Cents += amount(it)
			b.Count++
		}
		buckets[windowMonths-1-i] = b
	}
	return buckets
}

// Variance computes budget minus actual and its rounded percentage of the
// budget. A zero budget yields a zero percentage, never a division error.
func Variance(budgetCents, actualCents int64) VarianceResult {
	v := VarianceResult{Variance: core.Money{Cents: budgetCents - actualCents}}
	if budgetCents != 0 {
		v.VariancePct = int(math.Round(float64(v.Variance.Cents) / float64(budgetCents) * 100))
	}
	return v
}

// Utilization returns spent as a rounded percentage of amount, with the
// same zero-divisor guard as Variance.
func Utilization(spentCents, amountCents int64) int {
	if amountCents == 0 {
		return 0
	}
	return int(math.Round(float64(spentCents) / float64(amountCents) * 100))
}

// UtilizationExact returns the unrounded utilization percentage, used
// where messages report one decimal place.
func UtilizationExact(spentCents, amountCents int64) float64 {
	if amountCents == 0 {
		return 0
	}
	return float64(spentCents) / float64(amountCents) * 100
}

// MonthlyIncome normalizes a set of incomes to a single monthly figure:
// weekly incomes count 52 payments a year, bi-weekly 26, yearly one
// twelfth per month.
func MonthlyIncome(incomes []core.Income) core.Money {
	var cents int64
	for _, in := range incomes {
		switch in.Frequency {
		case core.Weekly:
			cents += in.Amount.Cents * 52 / 12
		case core.BiWeekly:
			cents += in.Amount.Cents * 26 / 12
		case core.Monthly:
			cents += in.Amount.Cents
		case core.Yearly:
			cents += in.Amount.Cents / 12
		}
	}
	return core.Money{Cents: cents}
}
