package http

import (
	"net/http"

	"bilancio/internal/core"
)

type incomeRequest struct {
	Type      string         `json:"type"`
	Amount    core.Money     `json:"amount"`
	Frequency core.Frequency `json:"frequency"`
}

type incomePatchRequest struct {
	Type      *string         `json:"type"`
	Amount    *core.Money     `json:"amount"`
	Frequency *core.Frequency `json:"frequency"`
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	in := core.Income{
		UserID:    UserID(r.Context()),
		Type:      req.Type,
		Amount:    req.Amount,
		Frequency: req.Frequency,
	}
	if err := in.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.CreateIncome(r.Context(), &in); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(in.UserID)
	respondData(w, http.StatusCreated, in)
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.storage.ListIncomes(r.Context(), UserID(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, incomes)
}

func (s *Server) handleGetIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid income id")
		return
	}
	in, err := s.storage.GetIncome(r.Context(), UserID(r.Context()), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, in)
}

func (s *Server) handleUpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid income id")
		return
	}
	var req incomePatchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(w, "malformed JSON body")
		return
	}

	userID := UserID(r.Context())
	in, err := s.storage.GetIncome(r.Context(), userID, id)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if req.Type != nil {
		in.Type = *req.Type
	}
	if req.Amount != nil {
		in.Amount = *req.Amount
	}
	if req.Frequency != nil {
		in.Frequency = *req.Frequency
	}
	if err := in.Validate(); err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.storage.UpdateIncome(r.Context(), in); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondData(w, http.StatusOK, in)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondBadRequest(w, "invalid income id")
		return
	}
	userID := UserID(r.Context())
	if err := s.storage.DeleteIncome(r.Context(), userID, id); err != nil {
		respondError(w, r, err)
		return
	}
	s.invalidateDashboard(userID)
	respondMessage(w, http.StatusOK, "income deleted", nil)
}
