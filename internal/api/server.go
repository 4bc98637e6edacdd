package api

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/moex-history-service/internal/domain/history"
	"github.com/muhammadchandra19/moex-history-service/pkg/config"
	"github.com/muhammadchandra19/moex-history-service/pkg/logger"
	"github.com/muhammadchandra19/moex-history-service/pkg/postgresql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server hosts the HTTP API.
type Server struct {
	cfg        config.AppConfig
	logger     logger.Interface
	usecase    history.Usecase
	db         postgresql.PostgreSQLClient
	httpServer *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg config.AppConfig, log logger.Interface, usecase history.Usecase, db postgresql.PostgreSQLClient) *Server {
	return &Server{
		cfg:     cfg,
		logger:  log,
		usecase: usecase,
		db:      db,
	}
}

// Run starts the HTTP server and blocks until the context is cancelled or
// the server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: s.buildRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	s.logger.Info("API server listening", logger.Field{Key: "port", Value: s.cfg.Port})

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !stderrors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) buildRouter() *gin.Engine {
	if s.cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestContext())

	router.GET("/healthz", s.handleHealthz)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	historyGroup := router.Group("/history")
	historyGroup.POST("/security_by_days", s.handleDaysHistory)

	return router
}

func (s *Server) handleHealthz(c *gin.Context) {
	health := s.db.CheckHealth(c.Request.Context())
	if !health.Healthy() {
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}
