package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/identity"
	"fintrack/internal/log"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// statusFor maps domain errors to HTTP status codes; anything unknown is a
// server error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnauthenticated),
		errors.Is(err, core.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrBudgetExists),
		errors.Is(err, core.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrEmptyCategory),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrInvalidWindow),
		errors.Is(err, identity.ErrInvalidEmail),
		errors.Is(err, identity.ErrWeakPassword):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with its mapped status. Server errors are logged
// and their details withheld from the client.
func respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldOperation, op,
			log.FieldPath, r.URL.Path,
			log.FieldError, err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

type idResponse struct {
	ID string `json:"id"`
}

type transactionJSON struct {
	ID        string    `json:"id"`
	Kind      core.Kind `json:"kind"`
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	Note      string    `json:"note,omitempty"`
	Date      time.Time `json:"date"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toTransactionJSON(t core.Transaction) transactionJSON {
	return transactionJSON{
		ID:        t.ID,
		Kind:      t.Kind,
		Amount:    t.Amount.StringFixed(2),
		Category:  t.Category,
		Note:      t.Note,
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

type categoryJSON struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Icon string    `json:"icon,omitempty"`
	Kind core.Kind `json:"kind"`
}

func toCategoryJSON(c core.Category) categoryJSON {
	return categoryJSON{ID: c.ID, Name: c.Name, Icon: c.Icon, Kind: c.Kind}
}

type progressJSON struct {
	Ratio     float64 `json:"ratio"`
	Percent   int     `json:"percent"`
	Over      bool    `json:"over"`
	Remaining string  `json:"remaining"`
}

type budgetJSON struct {
	ID        string       `json:"id"`
	Amount    string       `json:"amount"`
	Spent     string       `json:"spent"`
	Month     int          `json:"month"`
	Year      int          `json:"year"`
	Progress  progressJSON `json:"progress"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func toBudgetJSON(b core.Budget) budgetJSON {
	p := core.ProgressOf(b)
	return budgetJSON{
		ID:     b.ID,
		Amount: b.Amount.StringFixed(2),
		Spent:  b.Spent.StringFixed(2),
		Month:  b.Month,
		Year:   b.Year,
		Progress: progressJSON{
			Ratio:     p.Ratio,
			Percent:   p.Percent,
			Over:      p.Over,
			Remaining: p.Remaining.StringFixed(2),
		},
		UpdatedAt: b.UpdatedAt,
	}
}

type reportEntryJSON struct {
	Kind     core.Kind `json:"kind"`
	ID       string    `json:"id"`
	Amount   string    `json:"amount"`
	Category string    `json:"category"`
	Note     string    `json:"note,omitempty"`
	Date     string    `json:"date"`
}

type reportJSON struct {
	Month        int               `json:"month"`
	Year         int               `json:"year"`
	TotalIncome  string            `json:"total_income"`
	TotalExpense string            `json:"total_expense"`
	Balance      string            `json:"balance"`
	Transactions []reportEntryJSON `json:"recent_transactions"`
}

func toReportJSON(r core.Report) reportJSON {
	out := reportJSON{
		Month:        r.Window.Month,
		Year:         r.Window.Year,
		TotalIncome:  r.TotalIncome.StringFixed(2),
		TotalExpense: r.TotalExpense.StringFixed(2),
		Balance:      r.Balance.StringFixed(2),
		Transactions: make([]reportEntryJSON, 0, len(r.RecentTransactions)),
	}
	for _, e := range r.RecentTransactions {
		out.Transactions = append(out.Transactions, reportEntryJSON{
			Kind:     e.Kind,
			ID:       e.ID,
			Amount:   e.Amount.StringFixed(2),
			Category: e.Category,
			Note:     e.Note,
			Date:     e.Date,
		})
	}
	return out
}

type userJSON struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserJSON(u core.User) userJSON {
	return userJSON{ID: u.ID, Email: u.Email, Name: u.Name, CreatedAt: u.CreatedAt}
}

type sessionJSON struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

func toSessionJSON(s core.Session) sessionJSON {
	return sessionJSON{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		UserID:    s.UserID,
		Email:     s.Email,
		Name:      s.Name,
	}
}
