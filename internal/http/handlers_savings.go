package http

import (
	"net/http"

	"bilancio/internal/core"
)

type savingsExpenseRequest struct {
	Category string     `json:"category"`
	PerMonth core.Money `json:"perMonth"`
}

type savingsExpensePatchRequest struct {
	Category *string     `json:"category"`
	PerMonth *core.Money `json:"perMonth"`
}

type savingsBudgetRequest struct {
	MonthlyBudget core.Money `json:"monthlyBudget"`
}

func (s *Server) handleCreateSavingsExpense(w http.ResponseWriter, r *http.Request) {
	var req savingsExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	se := core.SavingsExpense{
		UserID:   UserID(r.Context()),
		Category: req.Category,
		PerMonth: req.PerMonth,
	}
	if err := se.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.CreateSavingsExpense(r.Context(), &se); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, se)
}

func (s *Server) handleListSavingsExpenses(w http.ResponseWriter, r *http.Request) {
	targets, err := s.storage.ListSavingsExpenses(r.Context(), UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, targets)
}

func (s *Server) handleUpdateSavingsExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid savings expense id")
		return
	}
	var req savingsExpensePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	userID := UserID(r.Context())
	se, err := s.storage.GetSavingsExpense(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Category != nil {
		se.Category = *req.Category
	}
	if req.PerMonth != nil {
		se.PerMonth = *req.PerMonth
	}
	if err := se.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpdateSavingsExpense(r.Context(), se); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, se)
}

func (s *Server) handleDeleteSavingsExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid savings expense id")
		return
	}
	if err := s.storage.DeleteSavingsExpense(r.Context(), UserID(r.Context()), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "savings expense deleted", nil)
}

func (s *Server) handleGetSavingsBudget(w http.ResponseWriter, r *http.Request) {
	sb, err := s.storage.GetSavingsBudget(r.Context(), UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sb)
}

func (s *Server) handleUpsertSavingsBudget(w http.ResponseWriter, r *http.Request) {
	var req savingsBudgetRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	sb := core.SavingsBudget{
		UserID:        UserID(r.Context()),
		MonthlyBudget: req.MonthlyBudget,
	}
	if err := sb.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpsertSavingsBudget(r.Context(), &sb); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sb)
}
