package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpSignUp, err)
		return
	}
	u, err := s.deps.Identity.SignUp(r.Context(), req.Email, req.Password, sanitizeInput(req.Name))
	if err != nil {
		respondError(w, r, log.OpSignUp, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserJSON(u))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpSignIn, err)
		return
	}
	sess, err := s.deps.Identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, log.OpSignIn, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionJSON(sess))
}

// handleSignOut always succeeds; an unknown token is already signed out.
func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Identity.SignOut(r.Context(), bearerToken(r)); err != nil {
		respondError(w, r, log.OpSignOut, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request, sess core.Session) {
	u, err := s.deps.Identity.Profile(r.Context(), sess)
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	u, err := s.deps.Identity.UpdateProfile(r.Context(), sess, sanitizeInput(req.Name))
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserJSON(u))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, sess core.Session) {
	if err := s.deps.Identity.DeleteAccount(r.Context(), sess); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
