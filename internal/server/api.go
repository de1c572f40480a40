package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
	"github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/events"
	"github.com/felixgeelhaar/smartplan/internal/log"
	"github.com/felixgeelhaar/smartplan/internal/planner"
)

// maxBodyBytes bounds a plan request body.
const maxBodyBytes = 1 << 20

const internalErrorDetail = "An unexpected error occurred. Please try again."

const templatesDescription = "Domain-specific templates for intelligent task generation"

// ErrorResponse is the body of every 4xx/5xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// TemplatesResponse is the body of GET /api/templates.
type TemplatesResponse struct {
	Templates   map[string]catalog.DomainTemplate `json:"templates"`
	Description string                            `json:"description"`
	Categories  []catalog.Template                `json:"categories"`
	Version     string                            `json:"catalog_version"`
}

// handleCreatePlan handles POST /api/create-plan.
//
// The plan.created event is emitted only after the response has been written
// so delivery never delays or fails the request.
func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req planner.GoalRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		detail := "request body must be a JSON object"
		if err == io.EOF {
			detail = "request body is empty"
		}
		s.writeError(w, r, errors.NewMalformedInputError(detail, err))
		return
	}

	in, err := req.Input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithContext(ctx).Info("Received plan creation request", "goal", log.Truncate(in.Goal, 50))

	plan, err := s.engine.Generate(ctx, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, plan)

	if s.events != nil {
		s.events.Emit(events.PlanCreated(plan, in.UserID))
	}
}

// handleHealthSummary handles GET /api/health.
func (s *Server) handleHealthSummary(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.probeManager.Summary(r.Context()))
}

// handleDomains handles GET /api/domains.
func (s *Server) handleDomains(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.engine.Catalog().Domains)
}

// handleTemplates handles GET /api/templates.
func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	c := s.engine.Catalog()
	s.writeJSON(w, http.StatusOK, TemplatesResponse{
		Templates:   c.DomainTemplates,
		Description: templatesDescription,
		Categories:  c.Templates,
		Version:     c.Version,
	})
}

// handleOpenAPI handles GET /api/openapi.json.
func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(s.contract.json)
}

// writeError maps err to a status code. Validation failures carry their
// message back to the caller; anything else is logged and hidden.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if pe, ok := errors.As(err); ok && pe.IsValidation() {
		s.logger.WithContext(r.Context()).Info("Rejected plan request", "code", pe.Code, "reason", pe.Message)
		s.metrics.RecordError(err, "server")
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Detail: "Invalid input: " + pe.Message,
			Code:   string(pe.Code),
		})
		return
	}

	s.logger.WithContext(r.Context()).WithError(err).Error("Error creating plan")
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Detail: internalErrorDetail})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}
