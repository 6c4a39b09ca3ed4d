package http

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
)

const trendWindowMonths = 6

// DashboardSummary is the aggregated view for one user and period. It is
// cached briefly per (user, period) and recomputed after any write.
type DashboardSummary struct {
	Period          rollup.Period                     `json:"period"`
	Spend           rollup.Summary                    `json:"spend"`
	ByCategory      map[string]rollup.CategorySummary `json:"byCategory"`
	Trend           []rollup.TrendBucket              `json:"trend"`
	MonthlyIncome   core.Money                        `json:"monthlyIncome"`
	BudgetAllocated core.Money                        `json:"budgetAllocated"`
	BudgetSpent     core.Money                        `json:"budgetSpent"`
	BudgetUtilized  int                               `json:"budgetUtilized"`
	Subscriptions   rollup.Summary                    `json:"subscriptions"`
}

// handleDashboard assembles the period overview. The four entity reads
// are independent, so they run concurrently and the first failure cancels
// the rest.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	period, err := rollup.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondBadRequest(w, "period must be one of week, month, quarter, year")
		return
	}

	userID := UserID(r.Context())
	cacheKey := userID + "|" + string(period)
	if cached, found := s.dashboardCache.Get(cacheKey); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "period", period)
		respondData(w, http.StatusOK, cached)
		return
	}

	now := time.Now().UTC()
	start, end := rollup.PeriodRange(period, now)
	trendStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(trendWindowMonths - 1), 0)

	var (
		periodExpenses []core.Expense
		trendExpenses  []core.Expense
		budgets        []core.Budget
		incomes        []core.Income
		subs           []core.Subscription
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		periodExpenses, err = s.storage.ListExpensesBetween(ctx, userID, start, end)
		return err
	})
	g.Go(func() error {
		var err error
		trendExpenses, err = s.storage.ListExpensesBetween(ctx, userID, trendStart, end)
		return err
	})
	g.Go(func() error {
		var err error
		budgets, err = s.storage.ListBudgets(ctx, userID, 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		incomes, err = s.storage.ListIncomes(ctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = s.storage.ListSubscriptions(ctx, userID, 0, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, r, err)
		return
	}

	allocated := rollup.Totals(budgets, func(b core.Budget) int64 { return b.Amount.Cents })
	spent := rollup.Totals(budgets, func(b core.Budget) int64 { return b.Spent.Cents })

	sum := DashboardSummary{
		Period:          period,
		Spend:           rollup.Totals(periodExpenses, expenseAmount),
		ByCategory:      rollup.CategoryBreakdown(periodExpenses, expenseCategory, expenseAmount),
		Trend:           rollup.Trend(trendExpenses, trendWindowMonths, now, expenseDate, expenseAmount),
		MonthlyIncome:   rollup.MonthlyIncome(incomes),
		BudgetAllocated: allocated.Total,
		BudgetSpent:     spent.Total,
		BudgetUtilized:  rollup.Utilization(spent.Total.Cents, allocated.Total.Cents),
		Subscriptions:   rollup.Totals(subs, func(sub core.Subscription) int64 { return sub.TotalSpend.Cents }),
	}

	s.dashboardCache.Set(cacheKey, sum)
	respondData(w, http.StatusOK, sum)
}
