package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
	"bilancio/internal/services"
	"bilancio/internal/storage"
)

type expenseRequest struct {
	Name        string     `json:"name"`
	Amount      core.Money `json:"amount"`
	Date        core.Date  `json:"date"`
	Category    string     `json:"category"`
	Receipt     bool       `json:"receipt"`
	Description string     `json:"description"`
	BudgetID    *int64     `json:"budgetId"`
}

// expensePatchRequest distinguishes an absent budgetId from an explicit
// null: absent keeps the stored reference, null detaches the expense.
type expensePatchRequest struct {
	Name        *string         `json:"name"`
	Amount      *core.Money     `json:"amount"`
	Date        *core.Date      `json:"date"`
	Category    *string         `json:"category"`
	Receipt     *bool           `json:"receipt"`
	Description *string         `json:"description"`
	BudgetID    json.RawMessage `json:"budgetId"`
}

func (p expensePatchRequest) budgetRef() (services.BudgetRef, error) {
	if p.BudgetID == nil {
		return services.BudgetRef{}, nil
	}
	if string(p.BudgetID) == "null" {
		return services.BudgetRef{Set: true}, nil
	}
	id, err := strconv.ParseInt(string(p.BudgetID), 10, 64)
	if err != nil || id <= 0 {
		return services.BudgetRef{}, core.NewValidationError("budgetId", "budgetId must be a positive integer or null")
	}
	return services.BudgetRef{Set: true, ID: &id}, nil
}

type expenseCreateResponse struct {
	Expense core.Expense `json:"expense"`
	Budget  *core.Budget `json:"budget,omitempty"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	e := core.Expense{
		UserID:      UserID(r.Context()),
		Name:        req.Name,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Receipt:     req.Receipt,
		Description: req.Description,
		BudgetID:    req.BudgetID,
	}

	budget, err := s.expenses.CreateExpense(r.Context(), &e)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(e.UserID)
	respondData(w, http.StatusCreated, expenseCreateResponse{Expense: e, Budget: budget})
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	month := parseMonth(query)
	if month < 0 {
		respondBadRequest(w, "month must be between 1 and 12")
		return
	}
	p := parsePagination(query)
	f := storage.ExpenseFilter{
		Category: query.Get("category"),
		Month:    month,
		Page:     p.Page,
		Limit:    p.Limit,
	}
	if month > 0 {
		f.Year = parseYear(query, time.Now())
	}

	expenses, err := s.storage.ListExpenses(r.Context(), UserID(r.Context()), f)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid expense id")
		return
	}
	e, err := s.storage.GetExpense(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid expense id")
		return
	}
	var req expensePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}
	ref, err := req.budgetRef()
	if err != nil {
		respondError(w, r, err)
		return
	}

	patch := services.ExpensePatch{
		Name:        req.Name,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    req.Category,
		Receipt:     req.Receipt,
		Description: req.Description,
		BudgetID:    ref,
	}

	userID := UserID(r.Context())
	e, err := s.expenses.UpdateExpense(r.Context(), userID, id, patch)
	if err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondData(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid expense id")
		return
	}
	userID := UserID(r.Context())
	if err := s.expenses.DeleteExpense(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondMessage(w, http.StatusOK, "expense deleted", nil)
}

// expenseSummary combines the sparse category breakdown with the dense
// twelve-month breakdown for one year.
type expenseSummary struct {
	Year       int                               `json:"year"`
	Total      core.Money                        `json:"total"`
	Count      int                               `json:"count"`
	ByCategory map[string]rollup.CategorySummary `json:"byCategory"`
	ByMonth    map[int]rollup.MonthBucket        `json:"byMonth"`
}

func (s *Server) handleExpenseSummary(w http.ResponseWriter, r *http.Request) {
	year := parseYear(r.URL.Query(), time.Now())
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)

	expenses, err := s.storage.ListExpensesBetween(r.Context(), UserID(r.Context()), start, end)
	if err != nil {
		respondError(w, r, err)
		return
	}

	totals := rollup.Totals(expenses, expenseAmount)
	sum := expenseSummary{
		Year:       year,
		Total:      totals.Total,
		Count:      totals.Count,
		ByCategory: rollup.CategoryBreakdown(expenses, expenseCategory, expenseAmount),
		ByMonth:    rollup.MonthlyBreakdown(expenses, year, expenseDate, expenseAmount),
	}
	respondData(w, http.StatusOK, sum)
}

func expenseAmount(e core.Expense) int64    { return e.Amount.Cents }
func expenseCategory(e core.Expense) string { return e.Category }
func expenseDate(e core.Expense) time.Time  { return e.Date.Time }
