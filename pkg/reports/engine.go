package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/models"
)

// ExecuteResult is the outcome of running a report intent. Execution
// failures land in Error; the engine never lets a handler failure escape as
// a panic or error so the HTTP layer can always respond with a structured
// body.
type ExecuteResult struct {
	Success bool                 `json:"success"`
	Result  *models.ReportResult `json:"result,omitempty"`
	Handler *Handler             `json:"-"`
	Error   string               `json:"error,omitempty"`
}

// Engine orchestrates report execution against the data source.
type Engine interface {
	Execute(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) ExecuteResult
}

type engine struct {
	registry *Registry
	logger   *zap.Logger
}

var _ Engine = (*engine)(nil)

// NewEngine creates a report engine over an already-populated registry.
func NewEngine(registry *Registry, logger *zap.Logger) Engine {
	return &engine{
		registry: registry,
		logger:   logger.Named("report-engine"),
	}
}

// Execute validates the intent, resolves its handler and runs it. Validation
// failures return before any data access. Handler errors and panics are
// contained and reported in the result.
func (e *engine) Execute(ctx context.Context, intent *models.ReportIntent, agencyID uuid.UUID) (result ExecuteResult) {
	valid, errs := e.registry.ValidateIntent(intent, agencyID)
	if !valid {
		return ExecuteResult{
			Success: false,
			Error:   fmt.Sprintf("Invalid report intent: %s", strings.Join(errs, "; ")),
		}
	}

	handler := e.registry.Find(intent.Subject, intent.Scope)
	if handler == nil {
		return ExecuteResult{
			Success: false,
			Error:   fmt.Sprintf("No report handler found for subject: %s, scope: %s", intent.Subject, intent.Scope),
		}
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Report handler panicked",
				zap.String("handler", handler.ID),
				zap.Any("panic", r))
			result = ExecuteResult{
				Success: false,
				Handler: handler,
				Error:   fmt.Sprintf("report handler %s failed", handler.ID),
			}
		}
	}()

	reportResult, err := handler.Run(ctx, intent, agencyID)
	if err != nil {
		e.logger.Error("Report handler failed",
			zap.String("handler", handler.ID),
			zap.String("subject", intent.Subject),
			zap.Error(err))
		return ExecuteResult{
			Success: false,
			Handler: handler,
			Error:   err.Error(),
		}
	}

	return ExecuteResult{
		Success: true,
		Result:  reportResult,
		Handler: handler,
	}
}

// GetStatistics derives summary metrics from result rows. Status counts are
// computed only when rows carry a "Status" column, the overdue count only
// when they carry "Days Overdue". This is opportunistic introspection, not a
// fixed schema.
func GetStatistics(rows []map[string]any) models.ReportStatistics {
	stats := models.ReportStatistics{
		TotalRows: len(rows),
		HasData:   len(rows) > 0,
	}

	if len(rows) == 0 {
		return stats
	}

	summary := make(map[string]any)

	if _, ok := rows[0]["Status"]; ok {
		statusCounts := make(map[string]int)
		for _, row := range rows {
			if status, ok := row["Status"].(string); ok {
				statusCounts[status]++
			}
		}
		summary["statusCounts"] = statusCounts
	}

	if _, ok := rows[0]["Days Overdue"]; ok {
		overdueCount := 0
		for _, row := range rows {
			switch v := row["Days Overdue"].(type) {
			case int:
				if v > 0 {
					overdueCount++
				}
			case float64:
				if v > 0 {
					overdueCount++
				}
			}
		}
		summary["overdueCount"] = overdueCount
	}

	if len(summary) > 0 {
		stats.Summary = summary
	}
	return stats
}
