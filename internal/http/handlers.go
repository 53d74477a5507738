package http

import (
	"context"
	"net/http"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// authed resolves the bearer token to a session and rejects the request when
// there is none.
func (s *Server) authed(next func(http.ResponseWriter, *http.Request, core.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.deps.Identity.Current(bearerToken(r))
		if !ok {
			w.Header().Set("WWW-Authenticate", `Bearer realm="fintrack"`)
			writeError(w, http.StatusUnauthorized, core.ErrUnauthenticated.Error())
			return
		}
		ctx := log.NewContext(r.Context(), log.FromContext(r.Context()).With(log.FieldUserID, sess.UserID))
		next(w, r.WithContext(ctx), sess)
	}
}

// currentWindow is the window "now" falls in, or the one named by the query.
func (s *Server) currentWindow(r *http.Request) (core.Window, error) {
	w, ok, err := parseWindow(r.URL.Query())
	if err != nil {
		return core.Window{}, err
	}
	if !ok {
		w = core.CurrentWindow(s.now().UTC())
	}
	return w, nil
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"requests":  m.TotalRequests,
	})
}

// handleReady checks the backing store before reporting ready.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]any{}

	if s.deps.Ready != nil {
		if err := s.deps.Ready.Ping(ctx); err != nil {
			checks["store"] = "failed: " + err.Error()
			status, code = "not_ready", http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	} else {
		checks["store"] = "ok"
	}

	if s.deps.Limiter != nil {
		checks["rate_limiter"] = map[string]any{
			"active_clients": s.deps.Limiter.ActiveClients(),
			"hits":           s.deps.Limiter.GetMetrics().TotalHits,
		}
	}

	writeJSON(w, code, map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	})
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request, sess core.Session) {
	win, err := s.currentWindow(r)
	if err != nil {
		respondError(w, r, log.OpReport, err)
		return
	}
	rep, err := s.deps.Reports.GenerateMonthlyReport(r.Context(), sess, win)
	if err != nil {
		respondError(w, r, log.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportJSON(rep))
}
