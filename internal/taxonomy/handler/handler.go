// Package handler exposes taxonomy dropdown lookups to members and entry
// CRUD to operators.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kinship/internal/taxonomy/models"
	"kinship/internal/taxonomy/service"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/httputil"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterPublic wires the dropdown lookups consumed by the profile UI.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/taxonomy/{type}", h.listOptions)
	r.Get("/taxonomy/children/{parentID}", h.listChildren)
}

// RegisterAdmin wires operator-facing entry CRUD. Mount behind the operator
// token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/taxonomy/{type}", h.listEntries)
	r.Post("/taxonomy", h.create)
	r.Patch("/taxonomy/{entryID}", h.update)
	r.Delete("/taxonomy/{entryID}", h.delete)
}

func (h *Handler) listOptions(w http.ResponseWriter, r *http.Request) {
	entryType, err := models.ParseEntryType(chi.URLParam(r, "type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.svc.List(r.Context(), entryType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOptions(entries))
}

func (h *Handler) listChildren(w http.ResponseWriter, r *http.Request) {
	parentID, err := id.ParseEntryID(chi.URLParam(r, "parentID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid parent id"))
		return
	}
	children, err := h.svc.ChildrenOf(r.Context(), parentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toOptions(children))
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	entryType, err := models.ParseEntryType(chi.URLParam(r, "type"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	entries, err := h.svc.List(r.Context(), entryType)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

type createRequest struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	ParentID string `json:"parent_id,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	entryType, err := models.ParseEntryType(req.Type)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var parentID *id.EntryID
	if req.ParentID != "" {
		parsed, err := id.ParseEntryID(req.ParentID)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid parent id"))
			return
		}
		parentID = &parsed
	}
	entry, err := h.svc.Create(r.Context(), entryType, req.Value, parentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, entry)
}

type updateRequest struct {
	Value string `json:"value"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entry id"))
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	entry, err := h.svc.Update(r.Context(), entryID, req.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entry)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	entryID, err := id.ParseEntryID(chi.URLParam(r, "entryID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid entry id"))
		return
	}
	if err := h.svc.Delete(r.Context(), entryID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func toOptions(entries []*models.Entry) []models.Option {
	options := make([]models.Option, 0, len(entries))
	for _, entry := range entries {
		options = append(options, models.Option{ID: entry.ID, Value: entry.Value})
	}
	return options
}
