package insights

import (
	"strings"
	"testing"

	"bilancio/internal/core"
)

func budget(title string, amountCents, spentCents int64) core.Budget {
	return core.Budget{
		Title:  title,
		Amount: core.Money{Cents: amountCents},
		Spent:  core.Money{Cents: spentCents},
	}
}

func expense(category string, cents int64) core.Expense {
	return core.Expense{
		Category: category,
		Amount:   core.Money{Cents: cents},
	}
}

func kinds(insights []Insight) map[string]int {
	out := make(map[string]int)
	for _, in := range insights {
		out[in.Kind]++
	}
	return out
}

func TestGenerate_Empty(t *testing.T) {
	if got := Generate(nil, nil, nil); len(got) != 0 {
		t.Errorf("Generate() with no data = %v, want empty", got)
	}
}

func TestGenerate_BudgetNearLimit(t *testing.T) {
	tests := []struct {
		name         string
		spent        int64
		wantKind     bool
		wantSeverity Severity
	}{
		{"below info threshold", 7900, false, ""},
		{"info at 80 percent", 8000, true, SeverityInfo},
		{"warning at 90 percent", 9000, true, SeverityWarning},
		{"warning above limit", 11000, true, SeverityWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Generate([]core.Budget{budget("Food", 10000, tt.spent)}, nil, nil)
			var found *Insight
			for i := range got {
				if got[i].Kind == KindBudgetNearLimit {
					found = &got[i]
				}
			}
			if (found != nil) != tt.wantKind {
				t.Fatalf("budget_near_limit present = %v, want %v (insights: %v)", found != nil, tt.wantKind, got)
			}
			if found != nil && found.Severity != tt.wantSeverity {
				t.Errorf("severity = %s, want %s", found.Severity, tt.wantSeverity)
			}
		})
	}
}

func TestGenerate_UnusualExpense(t *testing.T) {
	// Max 9000 against mean (9000+1000+1000+1000)/4 = 3000: 9000 > 2*3000.
	spiky := []core.Expense{
		expense("groceries", 9000),
		expense("groceries", 1000),
		expense("groceries", 1000),
		expense("groceries", 1000),
	}
	got := Generate(nil, spiky, nil)
	if kinds(got)[KindUnusualExpense] != 1 {
		t.Errorf("want one unusual_expense insight, got %v", got)
	}

	// Uniform amounts never exceed twice their own mean.
	flat := []core.Expense{
		expense("groceries", 1000),
		expense("groceries", 1000),
	}
	got = Generate(nil, flat, nil)
	if kinds(got)[KindUnusualExpense] != 0 {
		t.Errorf("uniform spending should not flag an anomaly, got %v", got)
	}
}

func TestGenerate_Variance(t *testing.T) {
	rows := []core.ExpenseAnalytics{
		{Category: "under", Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 5000}},  // +50%
		{Category: "over", Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 15000}},  // -50%
		{Category: "close", Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 9000}},  // +10%
		{Category: "unplanned", Budget: core.Money{Cents: 0}, Actual: core.Money{Cents: 9999}},  // skipped
	}

	got := Generate(nil, nil, rows)
	k := kinds(got)
	if k[KindUnderBudget] != 1 {
		t.Errorf("want one under_budget insight, got %v", got)
	}
	if k[KindOverBudget] != 1 {
		t.Errorf("want one over_budget insight, got %v", got)
	}

	// The over-budget alert must sort ahead of the under-budget warning.
	if len(got) > 0 && got[0].Kind != KindOverBudget {
		t.Errorf("first insight = %s, want over_budget alert first", got[0].Kind)
	}
}

func TestGenerate_CategoryConcentration(t *testing.T) {
	concentrated := []core.Expense{
		expense("rent", 5000),
		expense("groceries", 3000),
		expense("transport", 2000),
	}
	got := Generate(nil, concentrated, nil)
	if kinds(got)[KindCategoryConcentration] != 1 {
		t.Errorf("rent at 50%% share should flag concentration, got %v", got)
	}

	spread := []core.Expense{
		expense("a", 2500),
		expense("b", 2500),
		expense("c", 2500),
		expense("d", 2500),
	}
	got = Generate(nil, spread, nil)
	if kinds(got)[KindCategoryConcentration] != 0 {
		t.Errorf("even 25%% shares should not flag concentration, got %v", got)
	}
}

func TestGenerate_OverallUtilization(t *testing.T) {
	budgets := []core.Budget{
		budget("A", 10000, 5000),
		budget("B", 10000, 12000),
	}
	got := Generate(budgets, nil, nil)
	if kinds(got)[KindOverallUtilization] != 1 {
		t.Errorf("85%% aggregate utilization should flag, got %v", got)
	}

	healthy := []core.Budget{budget("A", 10000, 5000)}
	got = Generate(healthy, nil, nil)
	if kinds(got)[KindOverallUtilization] != 0 {
		t.Errorf("50%% utilization should not flag, got %v", got)
	}
}

func TestGenerate_SeverityOrderingIsStable(t *testing.T) {
	budgets := []core.Budget{
		budget("First", 10000, 8000),  // info
		budget("Second", 10000, 8500), // info, emitted after First
	}
	rows := []core.ExpenseAnalytics{
		{Category: "over", Budget: core.Money{Cents: 10000}, Actual: core.Money{Cents: 20000}},
	}

	got := Generate(budgets, nil, rows)
	if len(got) < 3 {
		t.Fatalf("want at least 3 insights, got %v", got)
	}
	if got[0].Severity != SeverityAlert {
		t.Errorf("first insight severity = %s, want alert", got[0].Severity)
	}

	// Ties keep emission order: First's info before Second's info.
	var infos []Insight
	for _, in := range got {
		if in.Severity == SeverityInfo {
			infos = append(infos, in)
		}
	}
	if len(infos) != 2 {
		t.Fatalf("want 2 info insights, got %v", infos)
	}
	if !strings.Contains(infos[0].Message, "First") || !strings.Contains(infos[1].Message, "Second") {
		t.Errorf("stable sort broke emission order: %q then %q", infos[0].Message, infos[1].Message)
	}
}
