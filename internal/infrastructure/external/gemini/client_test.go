package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextedu/portal/internal/domain/chatbot"
	"github.com/nextedu/portal/internal/domain/shared"
	"github.com/nextedu/portal/pkg/circuitbreaker"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig("test-key")
	cfg.BaseURL = srv.URL
	cfg.SystemPrompt = "You are NextEdu Helper."
	cfg.Timeout = 2 * time.Second
	return NewClient(cfg, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestAnswer_SendsConversation(t *testing.T) {
	var got generateRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeJSON(w, http.StatusOK, map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]string{{"text": "Open the "}, {"text": "Fees tab."}}},
				"finishReason": "STOP",
			}},
		})
	})

	resp, err := client.Answer(context.Background(), chatbot.Request{
		PriorMessages: []chatbot.Message{
			{Role: chatbot.RoleModel, Content: chatbot.Greeting},
			{Role: chatbot.RoleUser, Content: "hi"},
			{Role: chatbot.RoleModel, Content: "Hello!"},
		},
		CurrentQuestion: "  where do I pay fees?  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Open the Fees tab.", resp.Answer)

	require.NotNil(t, got.SystemInstruction)
	assert.Equal(t, "You are NextEdu Helper.", got.SystemInstruction.Parts[0].Text)
	require.Len(t, got.Contents, 3)
	assert.Equal(t, "user", got.Contents[0].Role)
	assert.Equal(t, "model", got.Contents[1].Role)
	assert.Equal(t, "where do I pay fees?", got.Contents[2].Parts[0].Text)
}

func TestAnswer_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   any
		want   error
	}{
		{"rate limited", http.StatusTooManyRequests, map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}}, shared.ErrChatbotRateLimited},
		{"server error", http.StatusInternalServerError, map[string]any{}, shared.ErrChatbotUnavailable},
		{"gateway timeout", http.StatusGatewayTimeout, nil, shared.ErrChatbotTimeout},
		{"bad request", http.StatusBadRequest, map[string]any{"error": map[string]any{"message": "bad"}}, shared.ErrExternalService},
		{"no candidates", http.StatusOK, map[string]any{"candidates": []any{}}, shared.ErrChatbotInvalidResponse},
		{"blocked", http.StatusOK, map[string]any{"promptFeedback": map[string]any{"blockReason": "SAFETY"}}, shared.ErrChatbotInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := client.Answer(context.Background(), chatbot.Request{CurrentQuestion: "hi"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	_, err := client.Answer(context.Background(), chatbot.Request{CurrentQuestion: "   "})
	assert.True(t, shared.IsValidation(err))
}

func TestAnswer_Timeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Answer(ctx, chatbot.Request{CurrentQuestion: "hi"})
	assert.ErrorIs(t, err, shared.ErrChatbotTimeout)
}

func TestAnswer_BreakerOpens(t *testing.T) {
	calls := 0
	breaker := circuitbreaker.New("test", circuitbreaker.WithFailureThreshold(2), circuitbreaker.WithTimeout(time.Hour))
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithBreaker(breaker))

	for range 3 {
		_, err := client.Answer(context.Background(), chatbot.Request{CurrentQuestion: "hi"})
		assert.ErrorIs(t, err, shared.ErrChatbotUnavailable)
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())
}
