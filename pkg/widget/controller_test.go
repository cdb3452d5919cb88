package widget_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solterra/assistant/pkg/widget"
)

func echoServer(t *testing.T, delay time.Duration, status int, response string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Message   string `json:"message"`
			SessionID string `json:"sessionId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.NotEmpty(t, payload.SessionID)

		if delay > 0 {
			time.Sleep(delay)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{"response": response})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSendAppendsUserAndBotTurns(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "bot answer")
	controller := widget.NewController(server.URL)

	require.NoError(t, controller.Send(context.Background(), "hello"))

	transcript := controller.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, widget.SenderUser, transcript[0].Sender)
	assert.Equal(t, "hello", transcript[0].Content)
	assert.Equal(t, widget.SenderBot, transcript[1].Sender)
	assert.Equal(t, "bot answer", transcript[1].Content)
	assert.Equal(t, widget.StateIdle, controller.State())
}

func TestSendEmptyMessageIsNoOp(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "unused")
	controller := widget.NewController(server.URL)

	assert.ErrorIs(t, controller.Send(context.Background(), "   "), widget.ErrEmptyMessage)
	assert.Empty(t, controller.Transcript())
}

func TestSendWhilePendingIsNoOp(t *testing.T) {
	server := echoServer(t, 300*time.Millisecond, http.StatusOK, "slow answer")
	controller := widget.NewController(server.URL)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, controller.Send(context.Background(), "first"))
	}()

	// Wait until the first turn is in flight.
	require.Eventually(t, func() bool {
		return controller.State() == widget.StateSending
	}, time.Second, 5*time.Millisecond)

	err := controller.Send(context.Background(), "second")
	assert.ErrorIs(t, err, widget.ErrBusy)
	assert.Len(t, controller.Transcript(), 1, "second submission must not touch the transcript")

	wg.Wait()
	assert.Len(t, controller.Transcript(), 2)
}

func TestSendServerErrorAppendsFallback(t *testing.T) {
	server := echoServer(t, 0, http.StatusInternalServerError, "ignored")
	controller := widget.NewController(server.URL)

	require.NoError(t, controller.Send(context.Background(), "hello"))

	transcript := controller.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, widget.SenderBot, transcript[1].Sender)
	assert.Contains(t, transcript[1].Content, "trouble responding")
}

func TestSendRateLimitedAppendsFallback(t *testing.T) {
	server := echoServer(t, 0, http.StatusTooManyRequests, "ignored")
	controller := widget.NewController(server.URL)

	require.NoError(t, controller.Send(context.Background(), "hello"))

	transcript := controller.Transcript()
	require.Len(t, transcript, 2)
	assert.Contains(t, transcript[1].Content, "trouble responding")
}

func TestSendNetworkFailureAppendsFallback(t *testing.T) {
	controller := widget.NewController("http://127.0.0.1:1/api/chatbot",
		widget.WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}))

	require.NoError(t, controller.Send(context.Background(), "hello"))

	transcript := controller.Transcript()
	require.Len(t, transcript, 2)
	assert.Contains(t, transcript[1].Content, "trouble responding")
}

func TestOnUpdateFiresOnEveryChange(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "fine")

	var mu sync.Mutex
	var updates [][]widget.Turn
	controller := widget.NewController(server.URL, widget.WithOnUpdate(func(transcript []widget.Turn) {
		mu.Lock()
		updates = append(updates, transcript)
		mu.Unlock()
	}))

	require.NoError(t, controller.Send(context.Background(), "hello"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 2, "one update per transcript change")
	assert.Len(t, updates[0], 1)
	assert.Len(t, updates[1], 2)
}

func TestSeedWelcome(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "unused")
	controller := widget.NewController(server.URL)

	controller.SeedWelcome(10 * time.Millisecond)

	require.Eventually(t, func() bool {
		return len(controller.Transcript()) == 1
	}, time.Second, 5*time.Millisecond)

	transcript := controller.Transcript()
	assert.Equal(t, widget.SenderBot, transcript[0].Sender)
	assert.NotEmpty(t, transcript[0].Content)
}

func TestSeedWelcomeSkippedWhenConversationStarted(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "answer")
	controller := widget.NewController(server.URL)

	require.NoError(t, controller.Send(context.Background(), "hello"))
	controller.SeedWelcome(10 * time.Millisecond)

	time.Sleep(50 * time.Millisecond)
	assert.Len(t, controller.Transcript(), 2, "welcome must not be injected into an active conversation")
}

func TestRenderHTMLSanitizes(t *testing.T) {
	server := echoServer(t, 0, http.StatusOK, "unused")
	controller := widget.NewController(server.URL)

	turn := widget.Turn{Content: `see /services/data-analytics <script>alert(1)</script>`}
	out := controller.RenderHTML(turn)

	assert.Contains(t, out, `data-internal="true"`)
	assert.NotContains(t, out, "<script")
}
