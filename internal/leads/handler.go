package leads

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/leadflow/internal/leads/filter"
	"github.com/wolfman30/leadflow/internal/tenancy"
	"github.com/wolfman30/leadflow/pkg/logging"
)

// Handler handles HTTP requests for leads
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Routes mounts the lead endpoints; callers are expected to wrap it with auth.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListLeads)
	r.Post("/", h.CreateLead)
	r.Get("/{id}", h.GetLead)
	r.Put("/{id}", h.UpdateLead)
	r.Delete("/{id}", h.DeleteLead)
}

// ListLeadsResponse is the response for listing leads
type ListLeadsResponse struct {
	Success    bool    `json:"success"`
	Data       []*Lead `json:"data"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

type leadResponse struct {
	Success bool  `json:"success"`
	Data    *Lead `json:"data"`
}

// ListLeads handles GET /api/leads requests
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	spec := filter.Spec{}
	for key, values := range query {
		if key == "page" || key == "limit" || len(values) == 0 {
			continue
		}
		spec[key] = values[0]
	}

	result, err := h.service.List(r.Context(), userID, spec, query.Get("page"), query.Get("limit"))
	if err != nil {
		h.logger.Error("failed to list leads", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "Server error")
		return
	}

	writeJSON(w, http.StatusOK, ListLeadsResponse{
		Success:    true,
		Data:       result.Leads,
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// CreateLead handles POST /api/leads requests
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, leadResponse{Success: true, Data: lead})
}

// GetLead handles GET /api/leads/{id} requests
func (h *Handler) GetLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	lead, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, leadResponse{Success: true, Data: lead})
}

// UpdateLead handles PUT /api/leads/{id} requests
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lead, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), &req)
	if err != nil {
		h.writeServiceError(w, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, leadResponse{Success: true, Data: lead})
}

// DeleteLead handles DELETE /api/leads/{id} requests
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.owner(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, "delete", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Lead deleted successfully",
	})
}

func (h *Handler) owner(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := tenancy.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authorized")
		return "", false
	}
	return userID, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrLeadNotFound):
		writeError(w, http.StatusNotFound, "Lead not found")
	case errors.Is(err, ErrInvalidLeadID):
		writeError(w, http.StatusBadRequest, "Invalid lead ID")
	case errors.Is(err, ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, "Email already exists")
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	default:
		h.logger.Error("lead request failed", "op", op, "error", err)
		writeError(w, http.StatusInternalServerError, "Server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
