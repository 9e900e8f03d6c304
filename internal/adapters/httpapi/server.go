package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// Server exposes the classification service over HTTP
type Server struct {
	service         *core.ClassificationService
	logger          *zap.Logger
	listenAddr      string
	shutdownTimeout time.Duration
	router          *gin.Engine
	server          *http.Server
}

// NewServer creates a new HTTP server for the classification service
func NewServer(
	service *core.ClassificationService,
	logger *zap.Logger,
	listenAddr string,
	shutdownTimeout time.Duration,
) *Server {
	s := &Server{
		service:         service,
		logger:          logger,
		listenAddr:      listenAddr,
		shutdownTimeout: shutdownTimeout,
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the underlying router
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(s.logger), recovery(s.logger))

	router.POST("/classify", s.handleClassify)
	router.GET("/health", s.handleHealth)

	return router
}

// Start starts listening in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	s.logger.Info("HTTP API started", zap.String("address", ln.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	s.logger.Info("HTTP API stopped")
	return nil
}
