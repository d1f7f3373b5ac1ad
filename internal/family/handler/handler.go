// Package handler serves the per-section reads of the family graph: the
// member's own details, spouse, children, and both family tree sides, each as
// the flat field set the profile UI renders.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kinship/internal/family/models"
	"kinship/internal/family/service"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/httputil"
	"kinship/pkg/requestcontext"
)

type Handler struct {
	svc    *service.Service
	logger *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register wires the section reads. Mount behind the member auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profile/member", h.getMember)
	r.Get("/profile/spouse", h.getSpouse)
	r.Get("/profile/children", h.getChildren)
	r.Get("/profile/family-tree/{lineage}", h.getTree)
}

func (h *Handler) getMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.svc.Member(r.Context(), requestcontext.MemberID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, MemberDetailsWire(member))
}

func (h *Handler) getSpouse(w http.ResponseWriter, r *http.Request) {
	spouse, err := h.svc.Spouse(r.Context(), requestcontext.MemberID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SpouseWire(spouse))
}

func (h *Handler) getChildren(w http.ResponseWriter, r *http.Request) {
	children, err := h.svc.Children(r.Context(), requestcontext.MemberID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ChildrenWire(children))
}

func (h *Handler) getTree(w http.ResponseWriter, r *http.Request) {
	lineage := models.Lineage(chi.URLParam(r, "lineage"))
	if !lineage.Valid() {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "unknown lineage %q", lineage))
		return
	}
	slots, err := h.svc.Ancestors(r.Context(), requestcontext.MemberID(r.Context()), lineage)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, TreeWire(slots))
}
