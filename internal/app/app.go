package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"StoryGenerator/internal/config"
	"StoryGenerator/internal/infrastructure/azure"
	"StoryGenerator/internal/infrastructure/llm"
	"StoryGenerator/internal/logging"
	"StoryGenerator/internal/match"
	"StoryGenerator/internal/server"
	"StoryGenerator/internal/usecase"
)

// Application wires configs to use cases and the HTTP surface.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	boards *azure.Boards
	server *server.Server
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	boards := azure.NewBoards(cfg.Azure)
	wiki := azure.NewWiki(cfg.Azure)

	// Always a concrete client: with no API key its Complete fails, which the
	// matcher treats as fallback and the pipeline as a generation abort.
	completer := llm.NewChatGPTClient(cfg.OpenAI)

	matcher := match.NewMatcher(completer, baseLogger.With("component", "matcher"))

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Epics:     boards,
		Wiki:      wiki,
		Matcher:   matcher,
		Generator: completer,
		Publisher: boards,
		Logger:    baseLogger.With("component", "pipeline"),
	})

	srv := server.New(cfg.Server.Addr, pipeline, cfg.Azure, baseLogger.With("component", "server"))

	return &Application{cfg: cfg, logger: baseLogger, boards: boards, server: srv}
}

// Handler exposes the wired HTTP routes, mainly for tests.
func (a *Application) Handler() http.Handler {
	return a.server.Handler()
}

// Run checks upstream credentials and serves HTTP until ctx is canceled.
func (a *Application) Run(ctx context.Context) error {
	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	if err := a.boards.CheckAuth(checkCtx); err != nil {
		a.logger.Warn("azure auth check failed", "error", err)
	} else {
		a.logger.Info("azure auth check passed", "org", a.cfg.Azure.OrgURL, "project", a.cfg.Azure.Project)
	}
	cancel()

	a.logger.Info("listening", "addr", a.cfg.Server.Addr)
	return a.server.Start(ctx)
}
