package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/solterra/assistant/internal/config"
	"github.com/solterra/assistant/internal/handler"
	"github.com/solterra/assistant/internal/handler/chatbot"
	"github.com/solterra/assistant/internal/model/knowledge"
	"github.com/solterra/assistant/internal/service/completion"
	"github.com/solterra/assistant/internal/service/ratelimit"
	"github.com/solterra/assistant/internal/service/reply"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Warn("no .env file loaded, using system environment", slog.String("error", err.Error()))
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	source := knowledge.NewMemorySource(knowledge.Seed())
	limiter := ratelimit.New(cfg.RateLimit.Window, cfg.RateLimit.MaxRequests)

	catalogue := reply.DefaultCatalogue()
	if cfg.Shortcuts.File != "" {
		catalogue, err = reply.LoadCatalogue(cfg.Shortcuts.File)
		if err != nil {
			logger.Error("failed to load shortcut catalogue",
				slog.String("file", cfg.Shortcuts.File),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		logger.Info("loaded shortcut catalogue", slog.String("file", cfg.Shortcuts.File), slog.Int("shortcuts", len(catalogue)))
	}

	// Without model credentials the assistant still serves shortcuts and
	// degrades to the fallback reply for everything else.
	var completer reply.Completer = completion.Disabled{}
	if cfg.AI.Enabled() {
		chatModel, err := cfg.AI.NewChatModel(ctx)
		if err != nil {
			logger.Warn("failed to initialise chat model, continuing with shortcuts only", slog.String("error", err.Error()))
		} else {
			gateway, err := completion.NewGateway(ctx, chatModel, cfg.AI.Timeout, logger)
			if err != nil {
				logger.Warn("failed to build completion gateway, continuing with shortcuts only", slog.String("error", err.Error()))
			} else {
				completer = gateway
				logger.Info("completion gateway initialised", slog.String("model", cfg.AI.Model))
			}
		}
	} else {
		logger.Info("model credentials not configured, completion disabled")
	}

	replyRouter, err := reply.NewRouter(catalogue, completer, logger)
	if err != nil {
		logger.Error("failed to build response router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	chatbotHandler := chatbot.New(limiter, replyRouter, source, logger)
	router := handler.NewRouter(chatbotHandler)

	startServer(ctx, cfg.Server, router, logger)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("assistant backend listening", slog.String("addr", serverCfg.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
