package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"AIBlog/internal/logger"

	"github.com/gin-gonic/gin"
)

// Server HTTP-сервер API
type Server struct {
	server          *http.Server
	log             logger.Logger
	shutdownTimeout time.Duration
}

// ServerOptions настройки сервера
type ServerOptions struct {
	Port            int
	Debug           bool
	ShutdownTimeout time.Duration
	Metrics         http.Handler
}

// NewRouter собирает gin-роутер со всеми маршрутами
func NewRouter(h *Handler, metrics http.Handler, log logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	h.Register(router)
	return router
}

// NewServer создает сервер
func NewServer(h *Handler, opts ServerOptions, log logger.Logger) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	return &Server{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(h, opts.Metrics, log),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		log:             log,
		shutdownTimeout: opts.ShutdownTimeout,
	}
}

// Run запускает сервер и останавливает его при отмене контекста
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("🌐 HTTP API запущен", logger.String("address", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ошибка остановки HTTP-сервера: %w", err)
	}

	s.log.Info("HTTP API остановлен")
	return nil
}

func requestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug("HTTP запрос",
			logger.String("method", c.Request.Method),
			logger.String("path", c.FullPath()),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("took", time.Since(start)),
		)
	}
}
