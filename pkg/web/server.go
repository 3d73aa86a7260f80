// Package web serves the swap page and the JSON API driving the lifecycle
// controller.
package web

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"intents-swap/pkg/logger"
	"intents-swap/pkg/swap"
	"intents-swap/pkg/wallet"
)

//go:embed index.html
var indexHTML []byte

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 10 * time.Second
)

// Server is the HTTP server for the swap UI
type Server struct {
	logger *logger.Logger
	router *gin.Engine
	port   int
	server *http.Server

	controller *swap.Controller
	session    *wallet.Session
}

// corsMiddleware adds CORS headers to all responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// NewServer creates the HTTP server for a controller and session
func NewServer(controller *swap.Controller, session *wallet.Session, port int, log *logger.Logger) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())

	s := &Server{
		logger:     log,
		router:     router,
		port:       port,
		controller: controller,
		session:    session,
	}

	s.routes()

	return s
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("0.0.0.0:%v", s.port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Infow("Starting HTTP server", "address", addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server...")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown error: %w", err)
	}

	return nil
}
