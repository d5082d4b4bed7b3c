package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/adapters"
	"github.com/blociq/blociq-engine/pkg/apperrors"
	"github.com/blociq/blociq-engine/pkg/auth"
	"github.com/blociq/blociq-engine/pkg/database"
	"github.com/blociq/blociq-engine/pkg/intent"
	"github.com/blociq/blociq-engine/pkg/models"
	"github.com/blociq/blociq-engine/pkg/reports"
	"github.com/blociq/blociq-engine/pkg/storage"
)

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question   string                 `json:"question"`
	BuildingID *uuid.UUID             `json:"building_id,omitempty"`
	UnitID     *uuid.UUID             `json:"unit_id,omitempty"`
	Message    *models.OutlookMessage `json:"message,omitempty"`
}

// AnswerResponse is the non-report answer envelope.
type AnswerResponse struct {
	Type   string              `json:"type"`
	Intent string              `json:"intent"`
	Answer *models.QAResult    `json:"answer,omitempty"`
	Reply  *models.ReplyResult `json:"reply,omitempty"`
}

// ReportFailureResponse is returned when a detected report cannot run.
// Classification and validation problems are part of the contract, not
// server faults, so they ship with a 200.
type ReportFailureResponse struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// TenantScoper acquires agency-scoped contexts for request handling.
// *database.TenantScopeProvider satisfies it.
type TenantScoper interface {
	WithTenantScope(ctx context.Context, agencyID uuid.UUID) (context.Context, func(), error)
}

var _ TenantScoper = (*database.TenantScopeProvider)(nil)

// AskHandler routes free-text questions to the report engine or the add-in
// adapters.
type AskHandler struct {
	engine  reports.Engine
	exports storage.Exports
	qa      adapters.QAAdapter
	reply   adapters.ReplyAdapter
	tenants TenantScoper
	logger  *zap.Logger
	now     func() time.Time
}

// NewAskHandler creates the ask handler.
func NewAskHandler(
	engine reports.Engine,
	exports storage.Exports,
	qa adapters.QAAdapter,
	reply adapters.ReplyAdapter,
	tenants TenantScoper,
	logger *zap.Logger,
) *AskHandler {
	return &AskHandler{
		engine:  engine,
		exports: exports,
		qa:      qa,
		reply:   reply,
		tenants: tenants,
		logger:  logger.Named("ask"),
		now:     time.Now,
	}
}

// RegisterRoutes registers the ask handler's routes on the given mux.
func (h *AskHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/ask", h.Ask)
}

// Ask handles POST /api/v1/ask. Report-shaped questions run through the
// engine; everything else goes to the Q&A or reply adapter depending on the
// add-in intent.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "question is required")
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

	if reportIntent := intent.DetectReport(req.Question, req.BuildingID, req.UnitID, h.now()); reportIntent != nil {
		h.runReport(w, ctx, reportIntent, agencyID)
		return
	}

	addinIntent := intent.ParseAddin(req.Question, req.Message)
	if addinIntent.Intent == models.AddinIntentReply {
		result := h.reply.GenerateReply(ctx, agencyID, req.Question, req.Message, nil)
		_ = WriteJSON(w, http.StatusOK, AnswerResponse{Type: "reply", Intent: string(addinIntent.Intent), Reply: result})
		return
	}

	result := h.qa.AnswerQuestion(ctx, agencyID, req.Question, req.Message)
	_ = WriteJSON(w, http.StatusOK, AnswerResponse{Type: "answer", Intent: string(addinIntent.Intent), Answer: result})
}

// runReport executes a detected report intent and writes the response
// envelope. CSV exports are uploaded and linked as a download action.
func (h *AskHandler) runReport(w http.ResponseWriter, ctx context.Context, reportIntent *models.ReportIntent, agencyID uuid.UUID) {
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

	if envelope.CSV != nil && h.exports != nil {
		url, err := h.exports.SaveCSV(ctx, agencyID, envelope.CSV.Filename, envelope.CSV.Content)
		if err != nil {
			if errors.Is(err, apperrors.ErrStorageUnavailable) {
				_ = ErrorResponse(w, http.StatusBadGateway, "storage_unavailable", "could not save the CSV export")
				return
			}
			_ = ErrorResponse(w, http.StatusInternalServerError, "export_failed", "could not save the CSV export")
			return
		}
		envelope.Actions = append(envelope.Actions, models.ReportAction{
			Kind:  "download",
			Label: "Download CSV",
			URL:   url,
		})
	}

	_ = WriteJSON(w, http.StatusOK, envelope)
}
