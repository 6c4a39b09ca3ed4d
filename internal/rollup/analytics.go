package rollup

import (
	"bilancio/internal/core"
)

// AnalyticsCategorySummary aggregates planned-versus-actual rows for one
// category.
type AnalyticsCategorySummary struct {
	TotalBudget   core.Money `json:"totalBudget"`
	TotalActual   core.Money `json:"totalActual"`
	TotalLastYear core.Money `json:"totalLastYear"`
	Variance      core.Money `json:"variance"`
	VariancePct   int        `json:"variancePct"`
}

// AnalyticsByCategory groups analytics rows by category and computes the
// variance of the grouped budget against the grouped actual. Like
// CategoryBreakdown, the key set is exactly the categories present.
func AnalyticsByCategory(rows []core.ExpenseAnalytics) map[string]AnalyticsCategorySummary {
	out := make(map[string]AnalyticsCategorySummary)
	for _, row := range rows {
		cs := out[row.Category]
		cs.TotalBudget.Cents += row.Budget.Cents
		cs.TotalActual.Cents += row.Actual.Cents
		cs.TotalLastYear.Cents += row.LastYear.Cents
		out[row.Category] = cs
	}
	for cat, cs := range out {
		v := Variance(cs.TotalBudget.Cents, cs.TotalActual.Cents)
		cs.Variance = v.Variance
		cs.VariancePct = v.VariancePct
		out[cat] = cs
	}
	return out
}
