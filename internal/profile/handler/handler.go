// Package handler exposes the completion workflow: the profile overview and
// the per-section submit endpoint that drives the step machine.
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	familyhandler "kinship/internal/family/handler"
	"kinship/internal/family/models"
	"kinship/internal/profile"
	id "kinship/pkg/domain"
	dErrors "kinship/pkg/domain-errors"
	"kinship/pkg/platform/httputil"
	"kinship/pkg/requestcontext"
)

type Handler struct {
	svc    *profile.Service
	logger *slog.Logger
}

func New(svc *profile.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Register wires the member-facing workflow endpoints. Mount behind the
// member auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Get("/profile", h.overview)
	r.Put("/profile/{section}", h.submit)
}

// RegisterAdmin wires the operator step reset. Mount behind the operator
// token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/members/{memberID}/step-reset", h.reset)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.svc.Overview(r.Context(), requestcontext.MemberID(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, overview)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memberID := requestcontext.MemberID(ctx)
	section := models.Step(chi.URLParam(r, "section"))

	var (
		result *profile.Result
		err    error
	)
	switch section {
	case models.StepIntro:
		result, err = h.svc.CompleteIntro(ctx, memberID)
	case models.StepMemberDetails:
		result, err = h.submitMemberDetails(r, memberID)
	case models.StepSpouseDetails:
		result, err = h.submitSpouse(r, memberID)
	case models.StepChildrenDetails:
		result, err = h.submitChildren(r, memberID)
	case models.StepMemberFamilyTree:
		result, err = h.submitTree(r, memberID, models.LineageMember)
	case models.StepSpouseFamilyTree:
		result, err = h.submitTree(r, memberID, models.LineageSpouse)
	default:
		err = dErrors.Newf(dErrors.CodeBadRequest, "unknown section %q", section)
	}
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) submitMemberDetails(r *http.Request, memberID id.MemberID) (*profile.Result, error) {
	var payload familyhandler.MemberDetailsPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	dob, err := familyhandler.ParseDate("date_of_birth", payload.DateOfBirth)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitMemberDetails(r.Context(), memberID, profile.MemberDetailsInput{
		Name:          payload.Name,
		Gender:        models.Gender(payload.Gender),
		DateOfBirth:   dob,
		MaritalStatus: models.MaritalStatus(payload.MaritalStatus),
		HasChildren:   payload.HasChildren,
		CountryCode:   payload.CountryCode,
		Phone:         payload.Phone,
		Email:         payload.Email,
		AddressLine:   payload.AddressLine,
		City:          payload.City,
		State:         payload.State,
		Pincode:       payload.Pincode,
		Version:       payload.Version,
	})
}

func (h *Handler) submitSpouse(r *http.Request, memberID id.MemberID) (*profile.Result, error) {
	var payload familyhandler.SpousePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	spouse, err := familyhandler.DecodeSpouse(payload)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitSpouseDetails(r.Context(), memberID, spouse)
}

func (h *Handler) submitChildren(r *http.Request, memberID id.MemberID) (*profile.Result, error) {
	var payload familyhandler.ChildrenPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	children, err := familyhandler.DecodeChildren(payload)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitChildren(r.Context(), memberID, children)
}

func (h *Handler) submitTree(r *http.Request, memberID id.MemberID, lineage models.Lineage) (*profile.Result, error) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body")
	}
	slots, err := familyhandler.DecodeTree(body)
	if err != nil {
		return nil, err
	}
	return h.svc.SubmitFamilyTree(r.Context(), memberID, lineage, slots)
}

type resetRequest struct {
	Step string `json:"step"`
}

func (h *Handler) reset(w http.ResponseWriter, r *http.Request) {
	memberID, err := id.ParseMemberID(chi.URLParam(r, "memberID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid member id"))
		return
	}
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid JSON body"))
		return
	}
	result, err := h.svc.Reset(r.Context(), memberID, models.Step(req.Step))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(r.Context(), "operator reset applied", "member_id", memberID)
	httputil.WriteJSON(w, http.StatusOK, result)
}
