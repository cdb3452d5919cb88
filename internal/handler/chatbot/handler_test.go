package chatbot_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterra/assistant/internal/handler/chatbot"
	"github.com/solterra/assistant/internal/model/knowledge"
	"github.com/solterra/assistant/internal/service/ratelimit"
	"github.com/solterra/assistant/internal/service/reply"
)

type countingCompleter struct {
	calls int
	reply string
	err   error
}

func (c *countingCompleter) Complete(_ context.Context, _ string, _ knowledge.Snapshot) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

type failingProvider struct{}

func (failingProvider) Snapshot(context.Context) (knowledge.Snapshot, error) {
	return knowledge.Snapshot{}, errors.New("content store unavailable")
}

func setupRouter(t *testing.T, completer reply.Completer, limiter *ratelimit.Limiter) *chi.Mux {
	t.Helper()

	router, err := reply.NewRouter(reply.DefaultCatalogue(), completer, nil)
	require.NoError(t, err)

	if limiter == nil {
		limiter = ratelimit.New(60*time.Second, 10)
	}

	handler := chatbot.New(limiter, router, knowledge.NewMemorySource(knowledge.Seed()), nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postTurn(t *testing.T, r http.Handler, message, sessionID string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"message": message, "sessionId": sessionID})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chatbot", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	r.ServeHTTP(resp, req)
	return resp
}

func decodeResponse(t *testing.T, resp *httptest.ResponseRecorder) map[string]string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	return body
}

func TestTurnGreetingShortcut(t *testing.T) {
	completer := &countingCompleter{reply: "never used"}
	r := setupRouter(t, completer, nil)

	resp := postTurn(t, r, "hello", "session-1")

	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeResponse(t, resp)
	assert.Contains(t, body["response"], "Solterra assistant")
	assert.Zero(t, completer.calls, "greeting must not reach the completion service")
}

func TestTurnServicesEnumeration(t *testing.T) {
	completer := &countingCompleter{}
	r := setupRouter(t, completer, nil)

	resp := postTurn(t, r, "what services do you offer", "session-1")

	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeResponse(t, resp)
	for _, svc := range knowledge.Seed().Services {
		assert.Contains(t, body["response"], svc.Title)
		assert.Contains(t, body["response"], svc.Path)
	}
	assert.Zero(t, completer.calls)
}

func TestTurnCompletionFailureFoldsTo200(t *testing.T) {
	completer := &countingCompleter{err: errors.New("simulated timeout")}
	r := setupRouter(t, completer, nil)

	resp := postTurn(t, r, "explain your data methodology", "session-1")

	require.Equal(t, http.StatusOK, resp.Code, "completion failures fold into a successful response")
	body := decodeResponse(t, resp)
	assert.Equal(t, reply.FallbackReply, body["response"])
}

func TestTurnRateLimitEleventhRejected(t *testing.T) {
	completer := &countingCompleter{reply: "generated"}
	limiter := ratelimit.New(60*time.Second, 10)
	r := setupRouter(t, completer, limiter)

	for i := 0; i < 10; i++ {
		resp := postTurn(t, r, "hello", "burst-session")
		require.Equal(t, http.StatusOK, resp.Code, "request %d should succeed", i+1)
	}

	resp := postTurn(t, r, "hello", "burst-session")
	require.Equal(t, http.StatusTooManyRequests, resp.Code)
	body := decodeResponse(t, resp)
	assert.NotEmpty(t, body["message"])
}

func TestTurnValidation(t *testing.T) {
	r := setupRouter(t, &countingCompleter{}, nil)

	tests := []struct {
		name      string
		message   string
		sessionID string
	}{
		{name: "empty message", message: "", sessionID: "s1"},
		{name: "whitespace message", message: "   ", sessionID: "s1"},
		{name: "missing session", message: "hello", sessionID: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := postTurn(t, r, tc.message, tc.sessionID)
			require.Equal(t, http.StatusBadRequest, resp.Code)
			body := decodeResponse(t, resp)
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestTurnMalformedBody(t *testing.T) {
	r := setupRouter(t, &countingCompleter{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/chatbot", bytes.NewReader([]byte("{not json")))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTurnSnapshotFailureFoldsToFallback(t *testing.T) {
	router, err := reply.NewRouter(reply.DefaultCatalogue(), &countingCompleter{}, nil)
	require.NoError(t, err)
	handler := chatbot.New(ratelimit.New(60*time.Second, 10), router, failingProvider{}, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	resp := postTurn(t, r, "hello", "session-1")

	require.Equal(t, http.StatusOK, resp.Code)
	body := decodeResponse(t, resp)
	assert.Equal(t, reply.FallbackReply, body["response"])
}
