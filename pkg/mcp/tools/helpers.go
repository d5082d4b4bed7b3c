package tools

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	args, ok := req.Params.Arguments.(map[string]any)
	if !ok {
		return ""
	}
	val, ok := args[key].(string)
	if !ok {
		return ""
	}
	return val
}

// getRequiredString extracts a required string argument from the request.
func getRequiredString(req mcp.CallToolRequest, key string) (string, error) {
	val := getOptionalString(req, key)
	if val == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return val, nil
}

// getOptionalUUID extracts an optional UUID argument from the request.
// An absent argument returns nil; a present but malformed one is an error.
func getOptionalUUID(req mcp.CallToolRequest, key string) (*uuid.UUID, error) {
	val := getOptionalString(req, key)
	if val == "" {
		return nil, nil
	}
	id, err := uuid.Parse(val)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid UUID: %w", key, err)
	}
	return &id, nil
}
