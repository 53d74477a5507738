package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func ledgerPath(k core.Kind) string {
	if k == core.KindIncome {
		return "/income"
	}
	return "/expenses"
}

type transactionRequest struct {
	Amount   *amountField `json:"amount"`
	Category string       `json:"category"`
	Note     string       `json:"note"`
	Date     string       `json:"date"`
}

type transactionPatchRequest struct {
	Amount   *amountField `json:"amount"`
	Category *string      `json:"category"`
	Note     *string      `json:"note"`
	Date     *string      `json:"date"`
}

func (p transactionPatchRequest) toPatch() (core.TransactionPatch, error) {
	var patch core.TransactionPatch
	if p.Amount != nil {
		patch.Amount = &p.Amount.Decimal
	}
	if p.Category != nil {
		c := sanitizeInput(*p.Category)
		patch.Category = &c
	}
	if p.Note != nil {
		n := sanitizeInput(*p.Note)
		patch.Note = &n
	}
	if p.Date != nil {
		d, err := parseDate(*p.Date)
		if err != nil {
			return core.TransactionPatch{}, err
		}
		patch.Date = &d
	}
	return patch, patch.Validate()
}

// ledgerHandlers serves one ledger collection; expenses and income share
// the same shape.
type ledgerHandlers struct {
	s   *Server
	svc *services.LedgerService
}

func (h ledgerHandlers) list(w http.ResponseWriter, r *http.Request, sess core.Session) {
	win, ok, err := parseWindow(r.URL.Query())
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	var filter *core.Window
	if ok {
		filter = &win
	}
	ts, err := h.svc.List(r.Context(), sess, filter)
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	out := make([]transactionJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h ledgerHandlers) create(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	amount, err := req.Amount.required()
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	in := core.TransactionInput{
		Amount:   amount,
		Category: sanitizeInput(req.Category),
		Note:     sanitizeInput(req.Note),
		Date:     date,
	}
	if err := in.Validate(); err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	id, err := h.svc.Create(r.Context(), sess, in)
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (h ledgerHandlers) get(w http.ResponseWriter, r *http.Request, sess core.Session) {
	t, err := h.svc.Get(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

func (h ledgerHandlers) update(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	var req transactionPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		writeError(w, validationStatus(err), err.Error())
		return
	}
	if _, err := h.svc.Get(r.Context(), sess, id); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	if err := h.svc.Update(r.Context(), id, patch); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	t, err := h.svc.Get(r.Context(), sess, id)
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionJSON(t))
}

// delete is idempotent: a record that is already gone answers 204.
func (h ledgerHandlers) delete(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	if _, err := h.svc.Get(r.Context(), sess, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validationStatus is 422 for input that failed a Validate call, whatever
// its error type.
func validationStatus(err error) int {
	if s := statusFor(err); s != http.StatusInternalServerError {
		return s
	}
	return http.StatusUnprocessableEntity
}
