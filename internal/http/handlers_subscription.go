package http

import (
	"net/http"

	"bilancio/internal/core"
	"bilancio/internal/rollup"
)

type subscriptionRequest struct {
	Name            string     `json:"name"`
	Plan            string     `json:"plan"`
	TotalSpend      core.Money `json:"totalSpend"`
	DurationMonths  int        `json:"duration"`
	Recurring       bool       `json:"recurring"`
	Category        string     `json:"category"`
	Color           string     `json:"color"`
	NextPaymentDate *core.Date `json:"nextPaymentDate"`
}

type subscriptionPatchRequest struct {
	Name            *string     `json:"name"`
	Plan            *string     `json:"plan"`
	TotalSpend      *core.Money `json:"totalSpend"`
	DurationMonths  *int        `json:"duration"`
	Recurring       *bool       `json:"recurring"`
	Category        *string     `json:"category"`
	Color           *string     `json:"color"`
	NextPaymentDate *core.Date  `json:"nextPaymentDate"`
}

func (s *Server) handleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	sub := core.Subscription{
		UserID:          UserID(r.Context()),
		Name:            req.Name,
		Plan:            req.Plan,
		TotalSpend:      req.TotalSpend,
		DurationMonths:  req.DurationMonths,
		Recurring:       req.Recurring,
		Category:        req.Category,
		Color:           req.Color,
		NextPaymentDate: req.NextPaymentDate,
	}
	if err := sub.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.CreateSubscription(r.Context(), &sub); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(sub.UserID)
	respondData(w, http.StatusCreated, sub)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	p := parsePagination(r.URL.Query())
	subs, err := s.storage.ListSubscriptions(r.Context(), UserID(r.Context()), p.Page, p.Limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, subs)
}

func (s *Server) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid subscription id")
		return
	}
	sub, err := s.storage.GetSubscription(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sub)
}

func (s *Server) handleUpdateSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid subscription id")
		return
	}
	var req subscriptionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	userID := UserID(r.Context())
	sub, err := s.storage.GetSubscription(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Name != nil {
		sub.Name = *req.Name
	}
	if req.Plan != nil {
		sub.Plan = *req.Plan
	}
	if req.TotalSpend != nil {
		sub.TotalSpend = *req.TotalSpend
	}
	if req.DurationMonths != nil {
		sub.DurationMonths = *req.DurationMonths
	}
	if req.Recurring != nil {
		sub.Recurring = *req.Recurring
	}
	if req.Category != nil {
		sub.Category = *req.Category
	}
	if req.Color != nil {
		sub.Color = *req.Color
	}
	if req.NextPaymentDate != nil {
		sub.NextPaymentDate = req.NextPaymentDate
	}
	if err := sub.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpdateSubscription(r.Context(), sub); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondData(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubscription(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid subscription id")
		return
	}
	userID := UserID(r.Context())
	if err := s.storage.SoftDeleteSubscription(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondMessage(w, http.StatusOK, "subscription deleted", nil)
}

type subscriptionSummary struct {
	Total      core.Money                        `json:"total"`
	Count      int                               `json:"count"`
	Recurring  int                               `json:"recurring"`
	ByCategory map[string]rollup.CategorySummary `json:"byCategory"`
}

func (s *Server) handleSubscriptionSummary(w http.ResponseWriter, r *http.Request) {
	subs, err := s.storage.ListSubscriptions(r.Context(), UserID(r.Context()), 0, 0)
	if err != nil {
		respondError(w, r, err)
		return
	}

	totals := rollup.Totals(subs, func(sub core.Subscription) int64 { return sub.TotalSpend.Cents })
	recurring := 0
	for _, sub := range subs {
		if sub.Recurring {
			recurring++
		}
	}

	sum := subscriptionSummary{
		Total:     totals.Total,
		Count:     totals.Count,
		Recurring: recurring,
		ByCategory: rollup.CategoryBreakdown(subs,
			func(sub core.Subscription) string { return sub.Category },
			func(sub core.Subscription) int64 { return sub.TotalSpend.Cents }),
	}
	respondData(w, http.StatusOK, sum)
}
