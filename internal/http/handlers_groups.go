// Package httpx provides the HTTP handlers for the conveyor orchestration API.
package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/conveyorhq/conveyor/internal/domain/model"
	"github.com/conveyorhq/conveyor/internal/service"
)

// GroupHandlers provides HTTP handlers for job group definition management.
type GroupHandlers struct {
	Svc *service.GroupService
}

// Create handles HTTP requests to store a new group definition.
func (h *GroupHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var group model.JobGroup
	if !DecodeJSON(w, r, &group) {
		return
	}

	created, err := h.Svc.Create(r.Context(), &group)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, created)
}

// Get handles HTTP requests to fetch a group definition by id.
func (h *GroupHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	group, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, group)
}

// List handles HTTP requests to list stored group definitions.
func (h *GroupHandlers) List(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 50)
	offset := parseIntQuery(r, "offset", 0)

	groups, err := h.Svc.List(r.Context(), limit, offset)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if groups == nil {
		groups = []*model.JobGroup{}
	}
	WriteJSON(w, http.StatusOK, groups)
}

// Update handles HTTP requests to replace a stored group definition.
func (h *GroupHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	var group model.JobGroup
	if !DecodeJSON(w, r, &group) {
		return
	}
	group.ID = id

	updated, err := h.Svc.Update(r.Context(), &group)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}

// Delete handles HTTP requests to remove a stored group definition.
func (h *GroupHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_path", Err: errors.New("group id is required")})
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), id)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	if !deleted {
		WriteError(w, ErrorParams{Code: http.StatusNotFound, ErrCode: "not_found", Err: errors.New("group not found")})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func parseIntQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
