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

	"github.com/elisa-rivadeneira/gestor-documentario/config"
	"github.com/elisa-rivadeneira/gestor-documentario/handler"
	"github.com/elisa-rivadeneira/gestor-documentario/middleware"
	"github.com/elisa-rivadeneira/gestor-documentario/pkg/logger"
	"github.com/elisa-rivadeneira/gestor-documentario/service"
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
	store, err := service.NewStore(&cfg.Database)
	if err != nil {
		slog.Error("failed to open registry store", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.SeedUsers(context.Background(), cfg.Users); err != nil {
		slog.Error("failed to seed user accounts", "error", err)
		os.Exit(1)
	}

	storageSvc, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize object storage", "error", err)
		os.Exit(1)
	}

	if err := storageSvc.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure storage bucket", "error", err)
		os.Exit(1)
	}

	extractSvc := service.NewExtractService(&cfg.Extractor)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg, store)
	documentHandler := handler.NewDocumentHandler(store, storageSvc)
	contractHandler := handler.NewContractHandler(store, storageSvc)
	attachmentHandler := handler.NewAttachmentHandler(store, storageSvc)
	uploadHandler := handler.NewUploadHandler(store, storageSvc)
	analyzeHandler := handler.NewAnalyzeHandler(storageSvc, extractSvc)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)

	// Read-only routes: the inbox is browsable without a session
	public := api.Group("/")
	public.Use(middleware.OptionalAuth(&cfg.Auth))
	{
		public.GET("/documents", documentHandler.List)
		public.GET("/documents/numbers", documentHandler.Numbers)
		public.GET("/documents/:id", documentHandler.Get)
		public.GET("/documents/:id/replies", documentHandler.Replies)
		public.GET("/contracts", contractHandler.List)
		public.GET("/contracts/:id", contractHandler.Get)
		public.GET("/files/url", uploadHandler.FileURL)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/documents", documentHandler.Create)
		protected.PUT("/documents/:id", documentHandler.Update)
		protected.DELETE("/documents/:id", documentHandler.Delete)
		protected.POST("/documents/:id/file", uploadHandler.AttachDocumentFile)
		protected.POST("/documents/:id/attachments", attachmentHandler.AddToDocument)

		protected.POST("/contracts", contractHandler.Create)
		protected.PUT("/contracts/:id", contractHandler.Update)
		protected.DELETE("/contracts/:id", contractHandler.Delete)
		protected.POST("/contracts/:id/file", uploadHandler.AttachContractFile)
		protected.POST("/contracts/:id/attachments", attachmentHandler.AddToContract)

		protected.DELETE("/attachments/:id", attachmentHandler.Delete)

		protected.POST("/uploads/temp", uploadHandler.TempUpload)
		protected.POST("/uploads/temp/:name/analyze", analyzeHandler.Analyze)
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
