// Package completion calls the external natural-language completion service
// and normalises its output or failure into a uniform result.
package completion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/solterra/assistant/internal/model/knowledge"
)

// Gateway builds a grounding prompt from the knowledge snapshot and forwards
// a single conversation turn to the completion service. Temperature and
// output length are fixed on the model at construction; callers cannot vary
// them per request.
type Gateway struct {
	chain   compose.Runnable[map[string]any, *schema.Message]
	timeout time.Duration
	logger  *slog.Logger
}

// NewGateway compiles the single-turn prompt chain around the supplied chat
// model.
func NewGateway(ctx context.Context, chatModel model.BaseChatModel, timeout time.Duration, logger *slog.Logger) (*Gateway, error) {
	if logger == nil {
		logger = slog.Default()
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, &CompletionError{Op: "compile", Err: err}
	}

	return &Gateway{
		chain:   runnable,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Complete obtains a reply for the user message grounded on the snapshot.
// Any failure, including an empty model output, is returned as a
// *CompletionError.
func (g *Gateway) Complete(ctx context.Context, message string, snap knowledge.Snapshot) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	input := map[string]any{
		"system": BuildSystemPrompt(snap),
		"query":  message,
	}

	response, err := g.chain.Invoke(ctx, input)
	if err != nil {
		return "", &CompletionError{Op: "invoke", Err: err}
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", &CompletionError{Op: "invoke", Err: errors.New("empty completion output")}
	}

	g.logger.Debug("completion generated", slog.Int("length", len(content)))
	return content, nil
}

// Disabled is a Completer stand-in used when no model credentials are
// configured. Every call fails, so the router degrades to the fallback reply
// while the rest of the service stays usable.
type Disabled struct{}

// Complete always reports the service as unconfigured.
func (Disabled) Complete(context.Context, string, knowledge.Snapshot) (string, error) {
	return "", &CompletionError{Op: "invoke", Err: errors.New("completion service not configured")}
}
