// Package server exposes the receipt pipeline over HTTP: processing,
// stored receipts, the alias catalog, the confirmation queue, export and
// operational endpoints. Handlers stay thin; all domain logic lives in the
// pipeline and its collaborators.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"receiptserver/ai"
	"receiptserver/confirmation"
	"receiptserver/database"
	"receiptserver/internal/config"
	"receiptserver/pipeline"
	"receiptserver/server/middleware"
	"receiptserver/server/monitoring"
)

// Version is reported by the health endpoint and the swagger metadata.
const Version = "1.0.0"

// Server wires the pipeline, persistence and confirmation queue to the HTTP
// surface.
type Server struct {
	cfg       *config.Config
	db        *database.DB
	processor *pipeline.Processor
	confirmer *confirmation.QueueConfirmer
	gateway   *ai.Gateway
	metrics   *monitoring.MetricsCollector
	health    *monitoring.HealthChecker

	httpServer     *http.Server
	httpHandler    http.Handler
	handlerOnce    sync.Once
	handlerInitErr error
}

// NewServer builds a server over the given collaborators. gateway may be
// nil when the model stage is disabled.
func NewServer(cfg *config.Config, db *database.DB, processor *pipeline.Processor, confirmer *confirmation.QueueConfirmer, gateway *ai.Gateway) *Server {
	s := &Server{
		cfg:       cfg,
		db:        db,
		processor: processor,
		confirmer: confirmer,
		gateway:   gateway,
		metrics:   monitoring.NewMetricsCollector(),
	}

	s.health = monitoring.NewHealthChecker(Version, db)
	s.health.RegisterComponent("model_gateway", s.checkModelGateway)
	s.health.RegisterComponent("confirmation_queue", s.checkConfirmationQueue)

	return s
}

// Metrics exposes the collector so the entry point can share it.
func (s *Server) Metrics() *monitoring.MetricsCollector {
	return s.metrics
}

// Start builds the handler and serves until Shutdown or a listener error.
func (s *Server) Start() error {
	handler, err := s.ensureHTTPHandler()
	if err != nil {
		return err
	}

	// WriteTimeout must stay above the confirmation window: processing
	// blocks while a name waits for a human answer.
	addr := fmt.Sprintf(":%s", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("[Server] Listening on %s", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server on %s: %w", addr, err)
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("[Server] Initiating graceful shutdown...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	log.Println("[Server] Graceful shutdown completed")
	return nil
}

// ServeHTTP implements http.Handler for tests and embedding.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, err := s.ensureHTTPHandler()
	if err != nil {
		http.Error(w, "server is not initialized", http.StatusInternalServerError)
		return
	}

	handler.ServeHTTP(w, r)
}

func (s *Server) ensureHTTPHandler() (http.Handler, error) {
	s.handlerOnce.Do(func() {
		s.httpHandler, s.handlerInitErr = s.buildHTTPHandler()
	})

	if s.handlerInitErr != nil {
		return nil, s.handlerInitErr
	}
	return s.httpHandler, nil
}

func (s *Server) buildHTTPHandler() (http.Handler, error) {
	// Release mode unless the environment says otherwise.
	if ginMode := os.Getenv("GIN_MODE"); ginMode == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Gzip())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics(s.metrics))
	router.Use(middleware.Recovery())

	s.registerSwaggerRoutes(router)
	s.registerRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		writeError(c, NewNotFoundError("route not found", nil))
	})

	return router, nil
}

// checkModelGateway reports the model stage's state. A disabled backend is
// degraded, not unhealthy: names fall through to user confirmation.
func (s *Server) checkModelGateway(ctx context.Context) monitoring.ComponentHealth {
	health := monitoring.ComponentHealth{
		Name:      "model_gateway",
		Timestamp: time.Now(),
	}

	if s.gateway == nil || !s.gateway.Enabled() {
		health.Status = monitoring.HealthStatusDegraded
		health.Message = "Model backend disabled, unresolved names go to confirmation"
		return health
	}

	stats := s.gateway.Stats()
	health.Status = monitoring.HealthStatusHealthy
	health.Message = fmt.Sprintf("Model backend up, %d calls, %d failures", stats.Calls, stats.Failures)
	return health
}

// checkConfirmationQueue reports how many requests wait for a human.
func (s *Server) checkConfirmationQueue(ctx context.Context) monitoring.ComponentHealth {
	health := monitoring.ComponentHealth{
		Name:      "confirmation_queue",
		Timestamp: time.Now(),
		Status:    monitoring.HealthStatusHealthy,
	}

	if s.confirmer == nil {
		health.Status = monitoring.HealthStatusDegraded
		health.Message = "No confirmation queue wired"
		return health
	}

	health.Message = fmt.Sprintf("%d pending confirmations", s.confirmer.Len())
	return health
}
