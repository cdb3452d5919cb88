// Package reply produces a bot reply for an incoming message, trying the
// deterministic shortcut catalogue before delegating to the completion
// service.
package reply

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/solterra/assistant/internal/model/knowledge"
)

// FallbackReply is the fixed, polite reply used whenever the completion
// service cannot produce an answer. The widget never sees a raw error.
const FallbackReply = "I'm having a little trouble connecting right now. Please try again in a moment, or reach our team via /contact."

// Completer obtains a natural-language reply for messages no shortcut covers.
type Completer interface {
	Complete(ctx context.Context, message string, snap knowledge.Snapshot) (string, error)
}

// Outcome records how a reply was produced, for metrics.
type Outcome int

const (
	OutcomeShortcut Outcome = iota
	OutcomeCompletion
	OutcomeFallback
)

func (o Outcome) String() string {
	switch o {
	case OutcomeShortcut:
		return "shortcut"
	case OutcomeCompletion:
		return "completion"
	case OutcomeFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

type compiledShortcut struct {
	name     string
	triggers []string
	tmpl     *template.Template
}

// Router evaluates the ordered shortcut catalogue top-to-bottom and
// short-circuits on the first match; everything else goes to the Completer
// exactly once.
type Router struct {
	shortcuts []compiledShortcut
	completer Completer
	logger    *slog.Logger
}

// NewRouter compiles the catalogue templates and wires the completer.
func NewRouter(catalogue []Shortcut, completer Completer, logger *slog.Logger) (*Router, error) {
	if logger == nil {
		logger = slog.Default()
	}

	shortcuts := make([]compiledShortcut, 0, len(catalogue))
	for _, shortcut := range catalogue {
		tmpl, err := template.New(shortcut.Name).Parse(shortcut.Template)
		if err != nil {
			return nil, fmt.Errorf("compile shortcut %q: %w", shortcut.Name, err)
		}
		triggers := make([]string, 0, len(shortcut.Triggers))
		for _, trigger := range shortcut.Triggers {
			triggers = append(triggers, strings.ToLower(trigger))
		}
		shortcuts = append(shortcuts, compiledShortcut{
			name:     shortcut.Name,
			triggers: triggers,
			tmpl:     tmpl,
		})
	}

	return &Router{
		shortcuts: shortcuts,
		completer: completer,
		logger:    logger,
	}, nil
}

// Route returns the reply for the message and how it was produced.
// Completion failures are folded into FallbackReply here so callers always
// get a displayable string.
func (r *Router) Route(ctx context.Context, sessionID, message string, snap knowledge.Snapshot) (string, Outcome) {
	normalized := strings.ToLower(strings.TrimSpace(message))

	for _, shortcut := range r.shortcuts {
		if !shortcut.matches(normalized) {
			continue
		}

		var b strings.Builder
		if err := shortcut.tmpl.Execute(&b, snap); err != nil {
			// A matched message must never reach the completion service,
			// so a broken template degrades to the fallback reply instead.
			r.logger.Error("shortcut template failed",
				slog.String("shortcut", shortcut.name),
				slog.String("session_id", sessionID),
				slog.String("error", err.Error()))
			return FallbackReply, OutcomeFallback
		}
		return strings.TrimSpace(b.String()), OutcomeShortcut
	}

	replyText, err := r.completer.Complete(ctx, message, snap)
	if err != nil {
		r.logger.Error("completion failed",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()))
		return FallbackReply, OutcomeFallback
	}

	return replyText, OutcomeCompletion
}

// matches reports whether any trigger substring occurs in the normalized
// message. Containment is exact; there is no fuzzy matching.
func (s compiledShortcut) matches(normalized string) bool {
	for _, trigger := range s.triggers {
		if strings.Contains(normalized, trigger) {
			return true
		}
	}
	return false
}
