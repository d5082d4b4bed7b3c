package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blociq/blociq-engine/pkg/models"
)

func TestReply_Success(t *testing.T) {
	reply := &fakeReplyAdapter{result: &models.ReplyResult{
		SubjectSuggestion: "Re: Service charge query",
		BodyHTML:          "<p>Dear Jane Doe,</p>",
	}}
	h := NewReplyHandler(reply, &fakeScoper{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Reply(rec, authedRequest(t, http.MethodPost, "/api/v1/reply", ReplyRequest{
		Instruction: "reply about the service charge demand",
		Message:     &models.OutlookMessage{From: "jane.doe@example.com", Subject: "Service charge query"},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.ReplyResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "Re: Service charge query", result.SubjectSuggestion)
	require.NotNil(t, reply.gotMsg)
	assert.Equal(t, "jane.doe@example.com", reply.gotMsg.From)
}

func TestReply_MissingInstruction(t *testing.T) {
	h := NewReplyHandler(&fakeReplyAdapter{}, &fakeScoper{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h.Reply(rec, authedRequest(t, http.MethodPost, "/api/v1/reply", ReplyRequest{}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
