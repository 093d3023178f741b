package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/georepute/domain-intelligence/internal/config"
	"github.com/georepute/domain-intelligence/internal/monitoring"
	"github.com/georepute/domain-intelligence/internal/pipeline"
	"github.com/georepute/domain-intelligence/internal/storage"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	config       *config.Config
	router       http.Handler
	httpServer   *http.Server
	orchestrator *pipeline.Orchestrator
	jobStore     *storage.PostgresStore
	recentStore  *storage.RecentStore
	metrics      *monitoring.Metrics
	logger       *zap.Logger
}

func NewServer(cfg *config.Config, orch *pipeline.Orchestrator, js *storage.PostgresStore, rs *storage.RecentStore, m *monitoring.Metrics, l *zap.Logger) *Server {
	s := &Server{
		config:       cfg,
		orchestrator: orch,
		jobStore:     js,
		recentStore:  rs,
		metrics:      m,
		logger:       l,
	}
	s.router = s.setupRouter()
	return s
}

func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%s", s.config.ServerPort),
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
