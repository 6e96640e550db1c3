package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"portfoliolab/internal/engine"
)

// Runner is the part of engine.Engine the HTTP layer needs.
type Runner interface {
	Run(ctx context.Context, req engine.Request, onProgress engine.ProgressFunc) (*engine.Result, error)
	RunBatch(ctx context.Context, reqs []engine.Request, limit int) ([]*engine.Result, error)
}

type Server struct {
	engine *gin.Engine
	server *http.Server
	log    *zap.Logger
}

func NewServer(addr string, runner Runner, log *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(loggerMiddleware(log))

	s := &Server{
		engine: r,
		log:    log,
		server: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	s.setupRoutes(NewHandler(runner, log))
	return s
}

func (s *Server) setupRoutes(h *Handler) {
	api := s.engine.Group("/api")
	{
		api.POST("/backtests", h.RunBacktest)
		api.POST("/backtests/batch", h.RunBatch)
	}

	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func loggerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
