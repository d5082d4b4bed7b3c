// Package tools provides MCP tool implementations for blociq-engine.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/auth"
	"github.com/blociq/blociq-engine/pkg/intent"
	"github.com/blociq/blociq-engine/pkg/reports"
)

// TenantScoper acquires agency-scoped contexts for tool execution.
type TenantScoper interface {
	WithTenantScope(ctx context.Context, agencyID uuid.UUID) (context.Context, func(), error)
}

// ReportToolDeps contains dependencies for report MCP tools.
type ReportToolDeps struct {
	Engine   reports.Engine
	Registry *reports.Registry
	Tenants  TenantScoper
	Logger   *zap.Logger
	Now      func() time.Time
}

func (d *ReportToolDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// RegisterReportTools registers the report MCP tools.
func RegisterReportTools(s *server.MCPServer, deps *ReportToolDeps) {
	s.AddTool(detectReportIntentTool(), detectReportIntentHandler(deps))
	s.AddTool(runReportTool(), runReportHandler(deps))
	s.AddTool(listReportHandlersTool(), listReportHandlersHandler(deps))
}

func detectReportIntentTool() mcp.Tool {
	return mcp.NewTool(
		"detect_report_intent",
		mcp.WithDescription(
			"Classify free text as a structured report request. "+
				"Returns the detected subject, scope, period, format and confidence, "+
				"or detected=false when the text is not a report request. "+
				"Classification is deterministic keyword matching; no data is read.",
		),
		mcp.WithString(
			"text",
			mcp.Required(),
			mcp.Description("The free-text request to classify"),
		),
		mcp.WithString(
			"building_id",
			mcp.Description("Optional - UUID of the building the request is anchored to"),
		),
		mcp.WithString(
			"unit_id",
			mcp.Description("Optional - UUID of the unit the request is anchored to"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func detectReportIntentHandler(deps *ReportToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := getRequiredString(req, "text")
		if err != nil {
			return nil, err
		}
		buildingID, err := getOptionalUUID(req, "building_id")
		if err != nil {
			return nil, err
		}
		unitID, err := getOptionalUUID(req, "unit_id")
		if err != nil {
			return nil, err
		}

		detected := intent.DetectReport(text, buildingID, unitID, deps.now())
		payload := map[string]any{"detected": detected != nil}
		if detected != nil {
			payload["intent"] = detected
		}

		result, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal intent result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

func runReportTool() mcp.Tool {
	return mcp.NewTool(
		"run_report",
		mcp.WithDescription(
			"Detect a report intent from free text and execute it under the caller's agency. "+
				"The agency comes from the authenticated token, never from arguments. "+
				"Returns the report envelope with the table, CSV or PDF payload the text asked for. "+
				"Execution failures are returned in the envelope, not as tool errors. "+
				"Example: run_report(text='show overdue compliance for the whole portfolio').",
		),
		mcp.WithString(
			"text",
			mcp.Required(),
			mcp.Description("The free-text report request"),
		),
		mcp.WithString(
			"building_id",
			mcp.Description("Optional - UUID of the building the request is anchored to"),
		),
		mcp.WithString(
			"unit_id",
			mcp.Description("Optional - UUID of the unit the request is anchored to"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func runReportHandler(deps *ReportToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		agencyID, err := auth.AgencyIDFromContext(ctx)
		if err != nil {
			return nil, fmt.Errorf("missing agency claim: %w", err)
		}
		text, err := getRequiredString(req, "text")
		if err != nil {
			return nil, err
		}
		buildingID, err := getOptionalUUID(req, "building_id")
		if err != nil {
			return nil, err
		}
		unitID, err := getOptionalUUID(req, "unit_id")
		if err != nil {
			return nil, err
		}

		reportIntent := intent.DetectReport(text, buildingID, unitID, deps.now())
		if reportIntent == nil {
			result, err := json.Marshal(map[string]any{
				"success": false,
				"error":   "text was not recognised as a report request",
			})
			if err != nil {
				return nil, fmt.Errorf("failed to marshal report result: %w", err)
			}
			return mcp.NewToolResultText(string(result)), nil
		}

		tenantCtx, cleanup, err := deps.Tenants.WithTenantScope(ctx, agencyID)
		if err != nil {
			return nil, fmt.Errorf("failed to acquire tenant scope: %w", err)
		}
		defer cleanup()

		exec := deps.Engine.Execute(tenantCtx, reportIntent, agencyID)
		if !exec.Success {
			result, err := json.Marshal(map[string]any{"success": false, "error": exec.Error})
			if err != nil {
				return nil, fmt.Errorf("failed to marshal report result: %w", err)
			}
			return mcp.NewToolResultText(string(result)), nil
		}

		envelope, err := reports.FormatResponse(exec.Result, reportIntent.Format, exec.Result.Meta.Title, exec.Result.Meta.Period, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to format report: %w", err)
		}

		result, err := json.Marshal(envelope)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal report envelope: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}

func listReportHandlersTool() mcp.Tool {
	return mcp.NewTool(
		"list_report_handlers",
		mcp.WithDescription(
			"List the registered report handlers with their ids, names and descriptions. "+
				"Handler ids are subject.scope pairs such as compliance.overview.",
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func listReportHandlersHandler(deps *ReportToolDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		type descriptor struct {
			ID          string `json:"id"`
			Name        string `json:"name"`
			Description string `json:"description"`
		}

		registered := deps.Registry.Handlers()
		descriptors := make([]descriptor, 0, len(registered))
		for _, handler := range registered {
			descriptors = append(descriptors, descriptor{
				ID:          handler.ID,
				Name:        handler.Name,
				Description: handler.Description,
			})
		}
		sort.Slice(descriptors, func(i, j int) bool { return descriptors[i].ID < descriptors[j].ID })

		result, err := json.Marshal(map[string]any{"handlers": descriptors})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal handler list: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}
