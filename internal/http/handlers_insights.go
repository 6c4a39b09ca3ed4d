package http

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"bilancio/internal/core"
	"bilancio/internal/insights"
)

// handleInsights runs the advisory rules over the user's budgets, the
// current month's expenses, and the current year's analytics rows.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	userID := UserID(r.Context())
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	var (
		budgets   []core.Budget
		expenses  []core.Expense
		analytics []core.ExpenseAnalytics
	)

	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		budgets, err = s.storage.ListBudgets(ctx, userID, 0, 0)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = s.storage.ListExpensesBetween(ctx, userID, monthStart, monthEnd)
		return err
	})
	g.Go(func() error {
		var err error
		analytics, err = s.storage.ListExpenseAnalytics(ctx, userID, now.Year())
		return err
	})
	if err := g.Wait(); err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, insights.Generate(budgets, expenses, analytics))
}
