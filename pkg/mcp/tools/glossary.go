package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/blociq/blociq-engine/pkg/glossary"
)

// RegisterGlossaryTools registers the acronym glossary MCP tools.
func RegisterGlossaryTools(s *server.MCPServer) {
	s.AddTool(expandAcronymsTool(), expandAcronymsHandler())
}

func expandAcronymsTool() mcp.Tool {
	return mcp.NewTool(
		"expand_acronyms",
		mcp.WithDescription(
			"Expand UK leasehold property-management acronyms in free text. "+
				"Known acronyms (S20, FRA, EICR, EWS1, RTM and so on) are expanded inline "+
				"with their full name and a short description. Also reports whether the "+
				"text is outside the property-management domain and whether unknown "+
				"acronym-shaped tokens need clarification.",
		),
		mcp.WithString(
			"text",
			mcp.Required(),
			mcp.Description("The text to expand"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)
}

func expandAcronymsHandler() server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		text, err := getRequiredString(req, "text")
		if err != nil {
			return nil, err
		}

		processed := glossary.ProcessUserInput(text)
		result, err := json.Marshal(processed)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal glossary result: %w", err)
		}
		return mcp.NewToolResultText(string(result)), nil
	}
}
