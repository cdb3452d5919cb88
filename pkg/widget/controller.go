// Package widget implements the client-resident chat session controller: it
// owns the transcript, serialises turn submissions, and degrades gracefully
// when the server or network fails.
package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/solterra/assistant/internal/render"
)

// State is the controller's per-turn state machine.
type State int

const (
	StateIdle State = iota
	StateSending
)

var (
	// ErrBusy is returned when a turn is already in flight; the submission
	// is a no-op so at most one request per session is ever outstanding.
	ErrBusy = errors.New("a turn is already in flight")
	// ErrEmptyMessage is returned when the trimmed input is empty.
	ErrEmptyMessage = errors.New("message is empty")
)

const (
	// fallbackMessage is appended as a bot turn when the turn request fails
	// for any reason. There is no automatic retry.
	fallbackMessage = "Sorry, I'm having trouble responding right now. Please try again shortly."
	welcomeMessage  = "Hi there! I'm the Solterra assistant. How can I help you today?"
)

// Controller orchestrates one conversation. All exported methods are safe
// for concurrent use; Send serialises submissions so the transcript order is
// strictly append order.
type Controller struct {
	mu         sync.Mutex
	state      State
	session    Session
	transcript []Turn

	endpoint string
	client   *http.Client
	renderer *render.Renderer
	onUpdate func([]Turn)
}

// Option customises a Controller.
type Option func(*Controller)

// WithHTTPClient overrides the HTTP client used for turn requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Controller) {
		c.client = client
	}
}

// WithOnUpdate registers a callback fired with a copy of the transcript on
// every change. Hosts use it to re-render and auto-scroll to the newest turn.
func WithOnUpdate(fn func([]Turn)) Option {
	return func(c *Controller) {
		c.onUpdate = fn
	}
}

// NewController creates a controller bound to the turn endpoint, minting a
// fresh session id for the lifetime of this widget instance.
func NewController(endpoint string, opts ...Option) *Controller {
	c := &Controller{
		session: Session{
			ID:        uuid.NewString(),
			CreatedAt: time.Now().UTC(),
		},
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		renderer: render.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session this controller owns.
func (c *Controller) Session() Session {
	return c.session
}

// State returns the current per-turn state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns a copy of the ordered transcript.
func (c *Controller) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Turn(nil), c.transcript...)
}

// Send submits one user turn. The user turn is appended optimistically
// before the request is issued; the bot turn carries either the server reply
// or the fixed fallback message. Submitting while a turn is in flight
// returns ErrBusy without touching the transcript.
func (c *Controller) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state == StateSending {
		c.mu.Unlock()
		return ErrBusy
	}
	c.state = StateSending
	c.appendLocked(SenderUser, text)
	c.mu.Unlock()
	c.notify()

	replyText := c.requestReply(ctx, text)

	c.mu.Lock()
	c.appendLocked(SenderBot, replyText)
	c.state = StateIdle
	c.mu.Unlock()
	c.notify()

	return nil
}

// SeedWelcome appends the canned welcome turn after the given delay, unless
// the visitor has already started the conversation.
func (c *Controller) SeedWelcome(delay time.Duration) {
	time.AfterFunc(delay, func() {
		c.mu.Lock()
		if len(c.transcript) > 0 {
			c.mu.Unlock()
			return
		}
		c.appendLocked(SenderBot, welcomeMessage)
		c.mu.Unlock()
		c.notify()
	})
}

// RenderHTML returns sanitized, linkified markup for a turn's content.
func (c *Controller) RenderHTML(turn Turn) string {
	return c.renderer.Render(turn.Content)
}

// requestReply performs the turn request and normalises every failure mode
// into the fallback message.
func (c *Controller) requestReply(ctx context.Context, text string) string {
	payload, err := json.Marshal(map[string]string{
		"message":   text,
		"sessionId": c.session.ID,
	})
	if err != nil {
		return fallbackMessage
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fallbackMessage
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fallbackMessage
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fallbackMessage
	}

	var body struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || strings.TrimSpace(body.Response) == "" {
		return fallbackMessage
	}

	return body.Response
}

func (c *Controller) appendLocked(sender Sender, content string) {
	c.transcript = append(c.transcript, Turn{
		ID:        uuid.NewString(),
		Content:   content,
		Sender:    sender,
		CreatedAt: time.Now().UTC(),
	})
}

func (c *Controller) notify() {
	if c.onUpdate == nil {
		return
	}
	c.onUpdate(c.Transcript())
}
