package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/docquery-ai/docquery/internal/api/handlers"
	"github.com/docquery-ai/docquery/internal/config"
	"github.com/docquery-ai/docquery/internal/core"
	"github.com/docquery-ai/docquery/internal/services"
)

// Server wraps the HTTP server instance and its handlers.
type Server struct {
	httpServer *http.Server
	log        *zap.Logger
}

// NewServer builds and wires all routes.
func NewServer(cfg *config.Config, docs *services.DocumentService, chat *services.ChatService, contexts core.ContextProvider, log *zap.Logger) *Server {
	docHandler := handlers.NewDocumentHandler(docs, log)
	chatHandler := handlers.NewChatHandler(contexts, chat, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(api chi.Router) {
		api.Post("/documents/upload", docHandler.UploadDocument)
		api.Post("/documents/ingest", docHandler.IngestDocument)
		api.Post("/context", chatHandler.GetContext)
		api.Post("/chat/query", chatHandler.QueryDocument)
	})

	httpSrv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	return &Server{httpServer: httpSrv, log: log}
}

// Start runs the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.httpServer.Shutdown(ctx)
}
