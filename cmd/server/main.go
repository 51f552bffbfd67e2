// @title Receipt Server API
// @version 1.0
// @description HTTP API over the receipt normalization pipeline: processing, storage, aliases, confirmations and export.

// @host localhost:8090
// @BasePath /api/v1
// @schemes http

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"receiptserver/ai"
	"receiptserver/confirmation"
	"receiptserver/database"
	"receiptserver/internal/config"
	"receiptserver/normalization"
	"receiptserver/pipeline"
	"receiptserver/server"
	"receiptserver/stores"
	"receiptserver/verification"
)

func main() {
	log.Println("Starting receipt server...")

	ctx := context.Background()

	log.Println("[1/7] Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("✗ Failed to load configuration: %v", err)
	}
	log.Printf("✓ Configuration loaded. Port: %s", cfg.Port)

	log.Println("[2/7] Opening database...")
	db, err := database.OpenWithConfig(cfg.DatabasePath, database.Config{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("✗ Failed to open database at %s: %v", cfg.DatabasePath, err)
	}
	defer db.Close()
	log.Printf("✓ Database ready: %s", cfg.DatabasePath)

	log.Println("[3/7] Connecting model backend...")
	client, err := ai.NewClientFromConfig(ctx, cfg.Gateway)
	if err != nil {
		log.Printf("⚠ Model backend unavailable: %v", err)
		log.Println("  Unresolved names will go to the confirmation queue")
		client = nil
	}
	gateway := ai.NewGatewayFromConfig(client, cfg.Gateway)
	if gateway.Enabled() {
		log.Println("✓ Model gateway ready")
	} else {
		log.Println("⚠ Model stage disabled, serving from caches only")
	}

	log.Println("[4/7] Starting confirmation queue...")
	confirmer := confirmation.NewQueueConfirmer(cfg.ConfirmationTimeout)
	log.Printf("✓ Confirmation queue ready (answer window: %s)", cfg.ConfirmationTimeout)

	log.Println("[5/7] Assembling processing pipeline...")
	names := normalization.NewPipeline(normalization.Config{
		AliasSimilarityThreshold: cfg.AliasSimilarityThreshold,
		MinAcceptableConfidence:  cfg.MinAcceptableConfidence,
		ModelConfidence:          cfg.ModelConfidence,
	}, gateway, confirmer)
	detector := stores.NewDetector(stores.Options{
		DetectionPrefixLen: cfg.DetectionPrefixLen,
		MathTolerance:      decimal.NewFromFloat(cfg.MathTolerance),
	})
	verifier := verification.NewVerifier(verification.Config{
		MathTolerance:         cfg.MathTolerance,
		SignificantDifference: cfg.SignificantDifference,
		MaxDiscountShare:      cfg.MaxDiscountShare,
	})
	processor := pipeline.NewProcessor(detector, verifier, names, db, pipeline.Options{
		AutoPersistThreshold: cfg.AutoPersistThreshold,
	})
	log.Println("✓ Pipeline assembled")

	log.Println("[6/7] Creating server...")
	srv := server.NewServer(cfg, db, processor, confirmer, gateway)
	log.Println("✓ Server created")

	startErrorChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("✗ HTTP server failed on port %s: %v", cfg.Port, err)
			startErrorChan <- err
		}
	}()

	log.Println("[7/7] Waiting for the server to come up...")
	select {
	case err := <-startErrorChan:
		log.Printf("✗ Server did not start: %v", err)
		os.Exit(1)
	case <-time.After(3 * time.Second):
	}

	log.Printf("✓ Server running on port %s", cfg.Port)
	log.Printf("API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("Swagger UI: http://localhost:%s/swagger/index.html", cfg.Port)
	log.Printf("Health check: http://localhost:%s/health", cfg.Port)
	log.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	} else {
		log.Println("Server stopped")
	}
}
