package web

import (
	"context"
	"net/http"

	"match-agent/config"
	"match-agent/database"
	"match-agent/graph"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	orch   *graph.Orchestrator
	store  *database.PostgresStore
	logger *zap.Logger
	config *config.Config
}

func NewServer(orch *graph.Orchestrator, store *database.PostgresStore, logger *zap.Logger, config *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		router: router,
		orch:   orch,
		store:  store,
		logger: logger,
		config: config,
	}

	server.setupRoutes()
	return server
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.POST("/chat", s.handleChat)
	s.router.POST("/onboarding/chat", s.handleOnboarding)
	s.router.POST("/social/assess", s.handleSocialAssess)
	s.router.POST("/users", s.handleUpsertUser)
}

func (s *Server) Start(ctx context.Context, addr string) error {
	s.logger.Info("Starting web server", zap.String("address", addr))

	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Web server failed to start", zap.Error(err))
		}
	}()

	<-ctx.Done()

	s.logger.Info("Shutting down web server")
	return srv.Shutdown(context.Background())
}
