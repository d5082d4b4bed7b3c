package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/adapters"
	"github.com/blociq/blociq-engine/pkg/auth"
	"github.com/blociq/blociq-engine/pkg/models"
)

// ReplyRequest is the body of POST /api/v1/reply.
type ReplyRequest struct {
	Instruction string                  `json:"instruction"`
	Message     *models.OutlookMessage  `json:"message,omitempty"`
	Settings    *adapters.ReplySettings `json:"settings,omitempty"`
}

// ReplyHandler drafts email replies for the Outlook add-in.
type ReplyHandler struct {
	reply   adapters.ReplyAdapter
	tenants TenantScoper
	logger  *zap.Logger
}

// NewReplyHandler creates the reply handler.
func NewReplyHandler(reply adapters.ReplyAdapter, tenants TenantScoper, logger *zap.Logger) *ReplyHandler {
	return &ReplyHandler{
		reply:   reply,
		tenants: tenants,
		logger:  logger.Named("reply"),
	}
}

// RegisterRoutes registers the reply handler's routes on the given mux.
func (h *ReplyHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/reply", h.Reply)
}

// Reply handles POST /api/v1/reply.
func (h *ReplyHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var req ReplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Instruction == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "instruction is required")
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

	result := h.reply.GenerateReply(ctx, agencyID, req.Instruction, req.Message, req.Settings)
	_ = WriteJSON(w, http.StatusOK, result)
}
