package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Kind string `json:"kind"`
}

type categoryPatchRequest struct {
	Name *string `json:"name"`
	Icon *string `json:"icon"`
	Kind *string `json:"kind"`
}

// handleListCategories seeds the defaults when ?kind= names a kind the user
// has no categories for yet.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request, sess core.Session) {
	kind, err := parseKind(r.URL.Query())
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	cats, err := s.deps.Categories.List(r.Context(), sess, kind)
	if err != nil {
		respondError(w, r, log.OpList, err)
		return
	}
	out := make([]categoryJSON, 0, len(cats))
	for _, c := range cats {
		out = append(out, toCategoryJSON(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	var req categoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	kind, err := core.ParseKind(req.Kind)
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	id, err := s.deps.Categories.Create(r.Context(), sess, core.Category{
		Name: sanitizeInput(req.Name),
		Icon: sanitizeInput(req.Icon),
		Kind: kind,
	})
	if err != nil {
		respondError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, idResponse{ID: id})
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	c, err := s.deps.Categories.Get(r.Context(), sess, r.PathValue("id"))
	if err != nil {
		respondError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	var req categoryPatchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	var patch core.CategoryPatch
	if req.Name != nil {
		n := sanitizeInput(*req.Name)
		patch.Name = &n
	}
	if req.Icon != nil {
		i := sanitizeInput(*req.Icon)
		patch.Icon = &i
	}
	if req.Kind != nil {
		k, err := core.ParseKind(*req.Kind)
		if err != nil {
			respondError(w, r, log.OpUpdate, err)
			return
		}
		patch.Kind = &k
	}

	if _, err := s.deps.Categories.Get(r.Context(), sess, id); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	if err := s.deps.Categories.Update(r.Context(), id, patch); err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	c, err := s.deps.Categories.Get(r.Context(), sess, id)
	if err != nil {
		respondError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryJSON(c))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request, sess core.Session) {
	id := r.PathValue("id")
	if _, err := s.deps.Categories.Get(r.Context(), sess, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		respondError(w, r, log.OpDelete, err)
		return
	}
	if err := s.deps.Categories.Delete(r.Context(), id); err != nil {
		respondError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
