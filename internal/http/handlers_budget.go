package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
)

type budgetRequest struct {
	Title    string     `json:"title"`
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Icon     string     `json:"icon"`
	Color    string     `json:"color"`
}

type budgetPatchRequest struct {
	Title    *string     `json:"title"`
	Amount   *core.Money `json:"amount"`
	Category *string     `json:"category"`
	Icon     *string     `json:"icon"`
	Color    *string     `json:"color"`
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	b := core.Budget{
		UserID:   UserID(r.Context()),
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Icon:     req.Icon,
		Color:    req.Color,
	}
	if err := b.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.CreateBudget(r.Context(), &b); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(b.UserID)
	respondData(w, http.StatusCreated, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r.URL.Query())
	budgets, err := s.storage.ListBudgets(r.Context(), UserID(r.Context()), p.Page, p.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, budgets)
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid budget id")
		return
	}
	b, err := s.storage.GetBudget(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, b)
}

// handleUpdateBudget patches title, amount, and presentation fields. The
// spent aggregate is not reachable from here; only expense writes touch it.
func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid budget id")
		return
	}
	var req budgetPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	userID := UserID(r.Context())
	b, err := s.storage.GetBudget(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Title != nil {
		b.Title = *req.Title
	}
	if req.Amount != nil {
		b.Amount = *req.Amount
	}
	if req.Category != nil {
		b.Category = *req.Category
	}
	if req.Icon != nil {
		b.Icon = *req.Icon
	}
	if req.Color != nil {
		b.Color = *req.Color
	}
	if err := b.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpdateBudget(r.Context(), b); err != nil {
		respondError(w, r, err)
		return
	}
	b.RecomputeRemaining()
	s.invalidateDashboard(userID)
	respondData(w, http.StatusOK, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid budget id")
		return
	}
	userID := UserID(r.Context())
	if err := s.storage.SoftDeleteBudget(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondMessage(w, http.StatusOK, "budget deleted", nil)
}

// budgetSummary aggregates the user's active budgets: flat totals plus
// overall utilization of allocated amounts.
type budgetSummary struct {
	TotalAllocated core.Money                        `json:"totalAllocated"`
	TotalSpent     core.Money                        `json:"totalSpent"`
	TotalRemaining core.Money                        `json:"totalRemaining"`
	Utilization    int                               `json:"utilization"`
	Count          int                               `json:"count"`
	ByCategory     map[string]rollup.CategorySummary `json:"byCategory"`
}

func (s *Server) handleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.storage.ListBudgets(r.Context(), UserID(r.Context()), 0, 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	allocated := rollup.Totals(budgets, func(b core.Budget) int64 { return b.Amount.Cents })
	spent := rollup.Totals(budgets, func(b core.Budget) int64 { return b.Spent.Cents })

	sum := budgetSummary{
		TotalAllocated: allocated.Total,
		TotalSpent:     spent.Total,
		TotalRemaining: allocated.Total.Sub(spent.Total),
		Utilization:    rollup.Utilization(spent.Total.Cents, allocated.Total.Cents),
		Count:          allocated.Count,
		ByCategory: rollup.CategoryBreakdown(budgets,
			func(b core.Budget) string { return b.Category },
			func(b core.Budget) int64 { return b.Spent.Cents }),
	}
	respondData(w, http.StatusOK, sum)
}
