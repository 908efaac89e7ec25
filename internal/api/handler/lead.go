package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Rrens/agent-relay/internal/api/response"
	"github.com/Rrens/agent-relay/internal/domain"
	"github.com/Rrens/agent-relay/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// LeadHandler handles lead endpoints
type LeadHandler struct {
	leadService *service.LeadService
}

// NewLeadHandler creates a new lead handler
func NewLeadHandler(leadService *service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

type leadUpsertRequest struct {
	SessionID         string `json:"sessionId"`
	domain.LeadFields        // field-level validate tags apply
}

// Create handles POST /api/v1/leads: create-or-bind against the optional
// session identifier.
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req leadUpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	lead, err := h.leadService.BindOrCreate(r.Context(), req.SessionID, req.LeadFields)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.Created(w, lead)
}

// Get handles GET /api/v1/leads/{leadID}
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		response.BadRequest(w, "invalid lead ID")
		return
	}

	lead, err := h.leadService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "lead not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, lead)
}

// List handles GET /api/v1/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	leads, err := h.leadService.List(r.Context(), limit, offset)
	if err != nil {
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, leads)
}

// Update handles PATCH /api/v1/leads/{leadID}: supplied fields overwrite,
// omitted fields are untouched.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		response.BadRequest(w, "invalid lead ID")
		return
	}

	var fields domain.LeadFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(fields); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	lead, err := h.leadService.Update(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "lead not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.OK(w, lead)
}

// Delete handles DELETE /api/v1/leads/{leadID} (tombstone)
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "leadID"))
	if err != nil {
		response.BadRequest(w, "invalid lead ID")
		return
	}

	if err := h.leadService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(w, "lead not found")
			return
		}
		response.InternalError(w, err.Error())
		return
	}

	response.NoContent(w)
}
