package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/datwatch/verifier/config"
	_ "github.com/datwatch/verifier/docs"
	"github.com/datwatch/verifier/internal/database"
	"github.com/datwatch/verifier/internal/fetchclient"
	"github.com/datwatch/verifier/internal/handlers"
	"github.com/datwatch/verifier/internal/middleware"
	"github.com/datwatch/verifier/internal/repository"
	"github.com/datwatch/verifier/internal/services"
	"github.com/datwatch/verifier/internal/sources"
)

// @title DatWatch Verifier API
// @version 1.0
// @description Fact verification layer: polite fetching, extraction gating, corporate-action normalization and source reconciliation.
// @BasePath /
func main() {
	// Missing .env is fine in deployed environments; real env vars win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Shared fetch primitive: one disk cache and one per-host limiter for
	// every source adapter, so the politeness budget is global.
	diskCache, err := fetchclient.NewDiskCache(cfg.CacheDir)
	if err != nil {
		log.Fatalf("Failed to initialize fetch cache: %v", err)
	}
	fetcher, err := fetchclient.NewClient(cfg.Contact, diskCache, fetchclient.NewHostLimiter(fetchclient.DefaultSpacing))
	if err != nil {
		log.Fatalf("Failed to initialize fetch client: %v", err)
	}
	fetcher.SetTTL(cfg.FetchTTL)
	fetcher.SetRetryPolicy(cfg.FetchMaxRetries, 0, 0)

	// Initialize repositories
	actionRepo := repository.NewActionRepository(db.Pool)
	canonicalRepo := repository.NewCanonicalRepository(db.Pool)
	discrepancyRepo := repository.NewDiscrepancyRepository(db.Pool)

	// Initialize source adapters
	registry := sources.NewRegistry(sources.DefaultEntities)
	adapters := []sources.Adapter{
		sources.NewSECFactsAdapter(fetcher, registry, ""),
	}
	if cfg.DashboardURL != "" {
		adapters = append(adapters, sources.NewDashboardAdapter(fetcher, cfg.DashboardURL))
	}
	if cfg.AggregatorURL != "" {
		adapters = append(adapters, sources.NewAggregatorAdapter(fetcher, cfg.AggregatorURL))
	}

	// Initialize services
	policy := services.PolicyFromConfig(cfg)
	reconcileSvc := services.NewReconciliationService(adapters, actionRepo, canonicalRepo, discrepancyRepo, policy)
	reviewSvc := services.NewReviewService(discrepancyRepo, canonicalRepo)
	runner := services.NewRunner(reconcileSvc, registry, cfg.ReconcileWorkers)

	// Initialize handlers
	normalizeHandler := handlers.NewNormalizeHandler(actionRepo)
	discrepancyHandler := handlers.NewDiscrepancyHandler(reviewSvc, discrepancyRepo)
	reconcileHandler := handlers.NewReconcileHandler(runner)

	// Setup Gin router
	router := gin.Default()
	router.Use(middleware.IdentifyReviewer())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/normalize", normalizeHandler.Normalize)
	router.POST("/reconcile", reconcileHandler.Reconcile)

	router.GET("/discrepancies", discrepancyHandler.List)
	review := router.Group("/discrepancies", middleware.RequireReviewer())
	review.POST("/:id/approve", discrepancyHandler.Approve)
	review.POST("/:id/reject", discrepancyHandler.Reject)
	review.POST("/:id/dismiss", discrepancyHandler.Dismiss)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
