package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/auth"
	"github.com/blociq/blociq-engine/pkg/intent"
	"github.com/blociq/blociq-engine/pkg/models"
	"github.com/blociq/blociq-engine/pkg/reports"
)

// RunReportRequest is the body of POST /api/v1/reports. Callers pass either
// free text to classify or an explicit subject; an explicit subject wins.
type RunReportRequest struct {
	Text       string              `json:"text,omitempty"`
	Subject    string              `json:"subject,omitempty"`
	Scope      models.ReportScope  `json:"scope,omitempty"`
	BuildingID *uuid.UUID          `json:"building_id,omitempty"`
	UnitID     *uuid.UUID          `json:"unit_id,omitempty"`
	Since      *time.Time          `json:"since,omitempty"`
	Until      *time.Time          `json:"until,omitempty"`
	Format     models.ReportFormat `json:"format,omitempty"`
	Page       int                 `json:"page,omitempty"`
	PageSize   int                 `json:"page_size,omitempty"`
}

// ReportsHandler runs reports from explicit intents and lists the
// available handlers.
type ReportsHandler struct {
	engine   reports.Engine
	registry *reports.Registry
	tenants  TenantScoper
	logger   *zap.Logger
	now      func() time.Time
}

// NewReportsHandler creates the reports handler.
func NewReportsHandler(engine reports.Engine, registry *reports.Registry, tenants TenantScoper, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{
		engine:   engine,
		registry: registry,
		tenants:  tenants,
		logger:   logger.Named("reports"),
		now:      time.Now,
	}
}

// RegisterRoutes registers the reports handler's routes on the given mux.
func (h *ReportsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/reports", h.Run)
	mux.HandleFunc("GET /api/v1/reports/handlers", h.ListHandlers)
}

// Run handles POST /api/v1/reports.
func (h *ReportsHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req RunReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	agencyID, err := auth.AgencyIDFromContext(r.Context())
	if err != nil {
		_ = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", err.Error())
		return
	}

	ctx, cleanup, err := h.tenants.WithTenantScope(r.Context(), agencyID)
	if err != nil {
		h.logger.Error("Failed to acquire tenant scope", zap.Error(err))
		_ = ErrorResponse(w, http.StatusServiceUnavailable, "database_unavailable", "could not acquire database connection")
		return
	}
	defer cleanup()

	var reportIntent *models.ReportIntent
	if req.Subject != "" {
		reportIntent = h.buildIntent(req)
	} else {
		reportIntent = intent.DetectReport(req.Text, req.BuildingID, req.UnitID, h.now())
		if reportIntent == nil {
			_ = ErrorResponse(w, http.StatusBadRequest, "not_a_report", "text was not recognised as a report request")
			return
		}
	}

	exec := h.engine.Execute(ctx, reportIntent, agencyID)
	if !exec.Success {
		_ = WriteJSON(w, http.StatusOK, ReportFailureResponse{Type: "report", Success: false, Error: exec.Error})
		return
	}

	envelope, err := reports.FormatResponse(exec.Result, reportIntent.Format, exec.Result.Meta.Title, exec.Result.Meta.Period, nil)
	if err != nil {
		h.logger.Error("Failed to format report", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "format_failed", "could not format report")
		return
	}
	if envelope.Table != nil && (req.Page > 0 || req.PageSize > 0) {
		table := reports.ToTable(exec.Result.Columns, exec.Result.Rows, req.Page, req.PageSize)
		envelope.Table = &table
	}

	_ = WriteJSON(w, http.StatusOK, envelope)
}

// HandlerDescriptor describes one registered report handler.
type HandlerDescriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListHandlers handles GET /api/v1/reports/handlers.
func (h *ReportsHandler) ListHandlers(w http.ResponseWriter, r *http.Request) {
	registered := h.registry.Handlers()
	descriptors := make([]HandlerDescriptor, 0, len(registered))
	for _, handler := range registered {
		descriptors = append(descriptors, HandlerDescriptor{
			ID:          handler.ID,
			Name:        handler.Name,
			Description: handler.Description,
		})
	}
	sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].ID < descriptors[j].ID })
	_ = WriteJSON(w, http.StatusOK, map[string]any{"handlers": descriptors})
}

// buildIntent fills request defaults the same way free-text detection does.
func (h *ReportsHandler) buildIntent(req RunReportRequest) *models.ReportIntent {
	scope := req.Scope
	if scope == "" {
		scope = models.ScopeBuilding
	}
	format := req.Format
	if format == "" {
		format = models.FormatTable
	}
	period := intent.DefaultPeriod(h.now())
	if req.Since != nil {
		period = models.Period{Since: *req.Since, Until: req.Until}
	}
	return &models.ReportIntent{
		Subject:    req.Subject,
		Scope:      scope,
		BuildingID: req.BuildingID,
		UnitID:     req.UnitID,
		Period:     period,
		Format:     format,
		Confidence: 1.0,
	}
}
