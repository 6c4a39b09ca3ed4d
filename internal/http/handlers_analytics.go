package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
)

type analyticsRequest struct {
	Category    string     `json:"category"`
	Actual      core.Money `json:"actual"`
	Budget      core.Money `json:"budget"`
	LastYear    core.Money `json:"lastYear"`
	Description string     `json:"description"`
	Month       int        `json:"month"`
	Year        int        `json:"year"`
}

// handleUpsertAnalytics creates or replaces the row for the request's
// (category, month, year) cell.
func (s *Server) handleUpsertAnalytics(w http.ResponseWriter, r *http.Request) {
	var req analyticsRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	a := core.ExpenseAnalytics{
		UserID:      UserID(r.Context()),
		Category:    req.Category,
		Actual:      req.Actual,
		Budget:      req.Budget,
		LastYear:    req.LastYear,
		Description: req.Description,
		Month:       req.Month,
		Year:        req.Year,
	}
	if err := a.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpsertExpenseAnalytics(r.Context(), &a); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, a)
}

func (s *Server) handleListAnalytics(w http.ResponseWriter, r *http.Request) {
	year := parseYear(r.URL.Query(), time.Now())
	rows, err := s.storage.ListExpenseAnalytics(r.Context(), UserID(r.Context()), year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, rows)
}

func (s *Server) handleDeleteAnalytics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid analytics id")
		return
	}
	if err := s.storage.DeleteExpenseAnalytics(r.Context(), UserID(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "analytics row deleted", nil)
}

// analyticsSummary pairs the dense monthly actual-spend buckets with the
// per-category planned-versus-actual rollup for one year.
type analyticsSummary struct {
	Year       int                                        `json:"year"`
	ByMonth    map[int]rollup.MonthBucket                 `json:"byMonth"`
	ByCategory map[string]rollup.AnalyticsCategorySummary `json:"byCategory"`
}

func (s *Server) handleAnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	year := parseYear(r.URL.Query(), time.Now())
	rows, err := s.storage.ListExpenseAnalytics(r.Context(), UserID(r.Context()), year)
	if err != nil {
		respondError(w, r, err)
		return
	}

	sum := analyticsSummary{
		Year: year,
		ByMonth: rollup.MonthlyBreakdown(rows, year,
			func(a core.ExpenseAnalytics) time.Time {
				return time.Date(a.Year, time.Month(a.Month), 1, 0, 0, 0, 0, time.UTC)
			},
			func(a core.ExpenseAnalytics) int64 { return a.Actual.Cents }),
		ByCategory: rollup.AnalyticsByCategory(rows),
	}
	respondData(w, http.StatusOK, sum)
}
