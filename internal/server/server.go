package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"StoryGenerator/internal/config"
	"StoryGenerator/internal/domain"
	"StoryGenerator/internal/usecase"
)

// PipelineService is the slice of the orchestrator the HTTP layer consumes.
type PipelineService interface {
	FindRelatedPages(ctx context.Context, epicTitle string) ([]domain.PageMatch, error)
	RunFromEpic(ctx context.Context, epicID int) (usecase.EpicResult, error)
	RunWithPages(ctx context.Context, pagePaths []string, epicID int) (usecase.PagesResult, error)
}

// Server exposes the pipeline over HTTP. Handlers carry no pipeline logic;
// they decode requests, call the service, and map errors to status codes.
type Server struct {
	pipeline PipelineService
	azure    config.AzureConfig
	logger   *slog.Logger
	router   *chi.Mux
	http     *http.Server
}

// New builds the router with the service's routes registered.
func New(addr string, pipeline PipelineService, azureCfg config.AzureConfig, logger *slog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	s := &Server{
		pipeline: pipeline,
		azure:    azureCfg,
		logger:   logger,
		router:   r,
		http: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	r.Post("/find_wiki_pages", s.handleFindWikiPages)
	r.Post("/generate_stories", s.handleGenerateStories)
	r.Post("/generate_from_epic", s.handleGenerateFromEpic)
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
