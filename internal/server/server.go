// Package server hosts the prediction API: listing-shaped JSON payloads
// in, price predictions and sale probabilities out.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"priceflow/config"
	"priceflow/logger"
	"priceflow/writer"
)

// Server hosts the Gin-powered prediction API.
type Server struct {
	cfg        *config.Config
	log        *logger.Log
	store      *writer.Artifacts
	httpServer *http.Server
	limiter    *rate.Limiter
	now        func() time.Time
}

// New constructs the API server when the api feature is enabled. When
// the API is disabled the returned server is nil.
func New(cfg *config.Config, log *logger.Log) (*Server, error) {
	if !cfg.API.Enabled {
		return nil, nil
	}

	s := &Server{
		cfg:   cfg,
		log:   log,
		store: writer.NewArtifacts(cfg.Storage.ArtifactsDir),
		now:   time.Now,
	}
	if cfg.API.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.API.RateLimit), cfg.API.RateBurst)
	}
	return s, nil
}

// Run starts the HTTP server and blocks until the provided context is
// cancelled or the underlying server exits with an error.
func (s *Server) Run(ctx context.Context) error {
	if s == nil {
		return nil
	}

	router := s.buildRouter()
	s.httpServer = &http.Server{
		Addr:    normalizeAddress(s.cfg.API.Address),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithComponent("api").WithFields(logger.Fields{
			"address": s.httpServer.Addr,
		}).Info("prediction API listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case err, ok := <-errCh:
		if ok && err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) buildRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	if s.limiter != nil {
		router.Use(s.rateLimit())
	}

	router.GET("/health", s.handleHealth)
	router.POST("/predict/price", s.handlePredictPrice)
	router.POST("/predict/sold", s.handlePredictSold)
	return router
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// normalizeAddress mirrors lenient config values like "8080" or
// "localhost" into valid listen addresses.
func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return ":8080"
	}
	if !strings.Contains(addr, ":") {
		if _, err := net.LookupPort("tcp", addr); err == nil {
			return ":" + addr
		}
		return addr + ":8080"
	}
	return addr
}
