package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandAcronymsTool(t *testing.T) {
	handler := expandAcronymsHandler()

	t.Run("expands known acronyms", func(t *testing.T) {
		result, err := handler(context.Background(), callReq(map[string]any{"text": "Is an FRA due?"}))
		require.NoError(t, err)

		var payload struct {
			ExpandedText string `json:"expanded_text"`
			OutOfScope   bool   `json:"out_of_scope"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
		assert.Contains(t, payload.ExpandedText, "Fire Risk Assessment")
		assert.False(t, payload.OutOfScope)
	})

	t.Run("flags out-of-scope topics", func(t *testing.T) {
		result, err := handler(context.Background(), callReq(map[string]any{"text": "help me with kubernetes"}))
		require.NoError(t, err)

		var payload struct {
			OutOfScope     bool   `json:"out_of_scope"`
			OutOfScopeTerm string `json:"out_of_scope_term"`
		}
		require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &payload))
		assert.True(t, payload.OutOfScope)
		assert.Equal(t, "kubernetes", payload.OutOfScopeTerm)
	})

	t.Run("missing text", func(t *testing.T) {
		_, err := handler(context.Background(), callReq(map[string]any{}))
		assert.Error(t, err)
	})
}
