package chatbot

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/solterra/assistant/internal/metrics"
	"github.com/solterra/assistant/internal/model/knowledge"
	"github.com/solterra/assistant/internal/service/ratelimit"
	"github.com/solterra/assistant/internal/service/reply"
	"github.com/solterra/assistant/pkg/utils"
)

// Handler serves the single-turn chat endpoint.
type Handler struct {
	limiter   *ratelimit.Limiter
	router    *reply.Router
	knowledge knowledge.Provider
	logger    *slog.Logger
}

// New creates the chatbot handler.
func New(limiter *ratelimit.Limiter, router *reply.Router, provider knowledge.Provider, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		limiter:   limiter,
		router:    router,
		knowledge: provider,
		logger:    logger,
	}
}

// RegisterRoutes registers the turn endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chatbot", h.handleTurn)
}

// handleTurn validates the request, applies the rate limit, then routes the
// message. Completion failures are folded into a successful response holding
// the fallback reply; the widget never sees a bare 5xx for them.
func (h *Handler) handleTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"sessionId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		metrics.TurnsTotal.WithLabelValues("invalid").Inc()
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	sessionID := strings.TrimSpace(payload.SessionID)

	if message == "" {
		metrics.TurnsTotal.WithLabelValues("invalid").Inc()
		utils.RespondError(w, http.StatusBadRequest, "message is required")
		return
	}
	if sessionID == "" {
		metrics.TurnsTotal.WithLabelValues("invalid").Inc()
		utils.RespondError(w, http.StatusBadRequest, "sessionId is required")
		return
	}

	if !h.limiter.Allow(sessionID) {
		metrics.TurnsTotal.WithLabelValues("rate_limited").Inc()
		h.logger.Warn("rate limit exceeded", slog.String("session_id", sessionID))
		utils.RespondError(w, http.StatusTooManyRequests, "too many requests, please wait a moment")
		return
	}

	snap, err := h.knowledge.Snapshot(r.Context())
	if err != nil {
		// The assistant must stay usable even when the content source is
		// down, so this folds into the fallback reply as well.
		metrics.TurnsTotal.WithLabelValues("fallback").Inc()
		h.logger.Error("knowledge snapshot unavailable",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		utils.RespondJSON(w, http.StatusOK, map[string]string{"response": reply.FallbackReply})
		return
	}

	replyText, outcome := h.router.Route(r.Context(), sessionID, message, snap)
	metrics.TurnsTotal.WithLabelValues(outcome.String()).Inc()

	utils.RespondJSON(w, http.StatusOK, map[string]string{"response": replyText})
}
