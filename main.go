package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Khalil2008k/guild-contracts/config"
	"github.com/Khalil2008k/guild-contracts/handler"
	"github.com/Khalil2008k/guild-contracts/middleware"
	"github.com/Khalil2008k/guild-contracts/pkg/logger"
	"github.com/Khalil2008k/guild-contracts/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	minioSvc, err := service.NewMinioService(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize MINIO service", "error", err)
		os.Exit(1)
	}

	// Ensure bucket exists
	if err := minioSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure MINIO bucket", "error", err)
		os.Exit(1)
	}

	pdfSvc := service.NewPDFConvertService(&cfg.PDF)

	// Contract store: Postgres when a DSN is configured, in-memory otherwise
	var store service.ContractStore
	if cfg.Database.DSN != "" {
		pool, err := service.ConnectPostgres(context.Background(), &cfg.Database)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pgStore := service.NewPostgresStore(pool)
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			slog.Error("failed to ensure contracts schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
		slog.Info("using postgres contract store")
	} else {
		store = service.NewMemoryStore()
		slog.Warn("no database DSN configured, using in-memory contract store")
	}

	signer := service.NewSignatureEngine()
	rules := service.DefaultPlatformRules()
	controller := service.NewLifecycleController(store, signer, rules)
	renderer := service.NewDocumentRenderer()
	exportSvc := service.NewExportService(renderer, pdfSvc, minioSvc)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	contractHandler := handler.NewContractHandler(controller, store, renderer, exportSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(&cfg.Server))      // Rate limiting per client IP

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/contracts", contractHandler.Create)
		protected.GET("/contracts", contractHandler.List)
		protected.GET("/contracts/:id", contractHandler.Get)
		protected.GET("/jobs/:jobId/contract", contractHandler.GetByJob)
		protected.POST("/contracts/:id/request-signatures", contractHandler.RequestSignatures)
		protected.POST("/contracts/:id/sign", contractHandler.Sign)
		protected.PUT("/contracts/:id/status", contractHandler.UpdateStatus)
		protected.GET("/contracts/:id/document", contractHandler.Document)
		protected.GET("/contracts/:id/document.html", contractHandler.DocumentHTML)
		protected.POST("/contracts/:id/export", contractHandler.Export)
		protected.GET("/contracts/:id/signatures", contractHandler.Signatures)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
