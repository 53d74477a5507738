package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type budgetRequest struct {
	Amount *amountField `json:"amount"`
	Month  int          `json:"month"`
	Year   int          `json:"year"`
}

type budgetCapRequest struct {
	Amount *amountField `json:"amount"`
}

type budgetPatchRequest struct {
	Amount *amountField `json:"amount"`
	Spent  *amountField `json:"spent"`
}

// handleCurrentBudget answers 404 when no budget exists for the window.
func (s *Server) handleCurrentBudget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	win, err := s.currentWindow(r)
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	b, err := s.deps.Budgets.CurrentBudget(r.Context(), sess, win)
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	if b == nil {
		writeError(w, http.StatusNotFound, "no budget for "+win.String())
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(*b))
}

// handleSetBudgetCap creates the window's budget or changes its cap.
func (s *Server) handleSetBudgetCap(w http.ResponseWriter, r *http.Request, sess core.Session) {
	win, err := s.currentWindow(r)
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	var req budgetCapRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	if !win.Valid() {
		respondError(w, r, log.OpUpdate, core.ErrInvalidWindow)
		return
	}
	amount, err := req.Amount.required()
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	b, err := s.deps.Budgets.SetCap(r.Context(), sess, win, amount)
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(*b))
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.required()
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	id, err := s.deps.Budgets.Create(r.Context(), sess, core.BudgetInput{
		Amount: amount,
		Month:  req.Month,
		Year:   req.Year,
	})
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	b, err := s.deps.Budgets.Get(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(b))
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	var req budgetPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	var patch core.BudgetPatch
	if req.Amount != nil {
		patch.Amount = &req.Amount.Decimal
	}
	if req.Spent != nil {
		patch.Spent = &req.Spent.Decimal
	}

	if _, err := s.deps.Budgets.Get(r.Context(), sess, id); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.deps.Budgets.Update(r.Context(), id, patch); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	b, err := s.deps.Budgets.Get(r.Context(), sess, id)
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetJSON(b))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	if _, err := s.deps.Budgets.Get(r.Context(), sess, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := s.deps.Budgets.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
