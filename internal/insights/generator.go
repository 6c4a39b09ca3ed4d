// Package insights derives ranked advisory notifications from rollups.
// Insights are pure values recomputed per request; nothing here persists
// or reads state.
package insights

import (
	"fmt"
	"sort"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
)

// Severity ranks an insight. Alerts outrank warnings, warnings outrank
// informational notices.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityAlert   Severity = "alert"
)

var severityRank = map[Severity]int{
	SeverityAlert:   3,
	SeverityWarning: 2,
	SeverityInfo:    1,
}

// Insight is a single advisory notification.
type Insight struct {
	Severity Severity `json:"severity"`
	Kind     string   `json:"kind"`
	Message  string   `json:"message"`
}

// Insight kinds emitted by Generate.
const (
	KindBudgetNearLimit       = "budget_near_limit"
	KindUnusualExpense        = "unusual_expense"
	KindUnderBudget           = "under_budget"
	KindOverBudget            = "over_budget"
	KindCategoryConcentration = "category_concentration"
	KindOverallUtilization    = "overall_utilization"
)

// Thresholds for the generation rules.
const (
	utilizationWarning    = 90.0
	utilizationInfo       = 80.0
	anomalyFactor         = 2.0
	variancePctThreshold  = 20
	concentrationPct      = 40.0
	overallUtilizationPct = 80.0
)

// Generate scans budgets, the current month's expenses, and the current
// year's analytics rows, and returns advisory notifications sorted by
// severity. The rules run in a fixed order and the final sort is stable,
// so insights of equal severity keep their emission order.
func Generate(budgets []core.Budget, monthExpenses []core.Expense, yearAnalytics []core.ExpenseAnalytics) []Insight {
	var out []Insight

	// Rule 1: per-budget utilization.
	for _, b := range budgets {
		u := rollup.UtilizationExact(b.Spent.Cents, b.Amount.Cents)
		switch {
		case u >= utilizationWarning:
			out = append(out, Insight{
				Severity: SeverityWarning,
				Kind:     KindBudgetNearLimit,
				Message:  fmt.Sprintf("Budget %q is at %.1f%% of its limit", b.Title, u),
			})
		case u >= utilizationInfo:
			out = append(out, Insight{
				Severity: SeverityInfo,
				Kind:     KindBudgetNearLimit,
				Message:  fmt.Sprintf("Budget %q is at %.1f%% of its limit", b.Title, u),
			})
		}
	}

	// Rule 2: anomalous expense per category in the current month.
	byCategory := make(map[string][]int64)
	var categories []string
	for _, e := range monthExpenses {
		if _, seen := byCategory[e.Category]; !seen {
			categories = append(categories, e.Category)
		}
		byCategory[e.Category] = append(byCategory[e.Category], e.Amount.Cents)
	}
	for _, cat := range categories {
		amounts := byCategory[cat]
		var sum, max int64
		for _, a := range amounts {
			sum += a
			if a > max {
				max = a
			}
		}
		mean := float64(sum) / float64(len(amounts))
		if float64(max) > anomalyFactor*mean {
			out = append(out, Insight{
				Severity: SeverityInfo,
				Kind:     KindUnusualExpense,
				Message:  fmt.Sprintf("Unusually high expense detected in category %q", cat),
			})
		}
	}

	// Rule 3: planned-versus-actual variance for the current year.
	for _, row := range yearAnalytics {
		if row.Budget.Cents == 0 {
			continue
		}
		v := rollup.Variance(row.Budget.Cents, row.Actual.Cents)
		switch {
		case v.VariancePct > variancePctThreshold:
			out = append(out, Insight{
				Severity: SeverityWarning,
				Kind:     KindUnderBudget,
				Message:  fmt.Sprintf("Spending less than budgeted in %q", row.Category),
			})
		case v.VariancePct < -variancePctThreshold:
			out = append(out, Insight{
				Severity: SeverityAlert,
				Kind:     KindOverBudget,
				Message:  fmt.Sprintf("Spending more than budgeted in %q", row.Category),
			})
		}
	}

	// Rule 4: category spend concentration.
	var totalSpend int64
	for _, e := range monthExpenses {
		totalSpend += e.Amount.Cents
	}
	if totalSpend > 0 {
		for _, cat := range categories {
			var catTotal int64
			for _, a := range byCategory[cat] {
				catTotal += a
			}
			share := float64(catTotal) / float64(totalSpend) * 100
			if share > concentrationPct {
				out = append(out, Insight{
					Severity: SeverityInfo,
					Kind:     KindCategoryConcentration,
					Message:  fmt.Sprintf("Category %q accounts for over 40%% of spending this period, consider diversifying", cat),
				})
			}
		}
	}

	// Rule 5: overall utilization across all budgets.
	var totalSpent, totalAmount int64
	for _, b := range budgets {
		totalSpent += b.Spent.Cents
		totalAmount += b.Amount.Cents
	}
	if rollup.UtilizationExact(totalSpent, totalAmount) > overallUtilizationPct {
		out = append(out, Insight{
			Severity: SeverityWarning,
			Kind:     KindOverallUtilization,
			Message:  "Overall budget utilization is above 80%",
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return severityRank[out[i].Severity] > severityRank[out[j].Severity]
	})
	return out
}
