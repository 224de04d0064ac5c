package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"robinhoodarmy/internal/config"
	"robinhoodarmy/internal/database"
	"robinhoodarmy/internal/handlers"
	"robinhoodarmy/internal/models"
	"robinhoodarmy/internal/realtime"
	"robinhoodarmy/internal/security"
	"robinhoodarmy/internal/service"
	"robinhoodarmy/internal/storage"
)

const (
	// Function calls allowed per caller per window
	functionRateLimit  = 30
	functionRateWindow = time.Minute

	realtimeBuffer = 64
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	if cfg.JWTSecret == "change-me" {
		log.Println("Warning: JWT_SECRET is not set, using the development default")
	}

	ctx := context.Background()
	hub := realtime.NewHub(realtimeBuffer)

	// Photo storage: S3 when a bucket is configured, local directory otherwise
	var photos storage.Storage
	publicRoot := ""
	if cfg.S3Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Endpoint, cfg.S3PublicURL, cfg.Debug)
		if err != nil {
			log.Fatalf("Failed to initialize S3 storage: %v", err)
		}
		photos = s3Storage
	} else {
		localStorage, err := storage.NewLocalStorage(cfg.StoragePath, cfg.PublicURL+"/storage/v1/object/public/"+models.PhotosBucket)
		if err != nil {
			log.Fatalf("Failed to initialize local storage: %v", err)
		}
		photos = localStorage
		publicRoot = localStorage.Root()
	}

	// Initialize services
	authService := service.NewAuthService(cfg.JWTSecret, cfg.TokenDuration)
	tableService := service.NewTableService(db, hub)
	procedureService := service.NewProcedureService(db, hub)

	if cfg.GeminiAPIKey == "" {
		log.Println("Content generation disabled: GEMINI_API_KEY not configured")
	}
	generator := service.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, cfg.Debug)
	contentService := service.NewContentService(db, generator, hub, cfg.Debug)

	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	// Initialize handlers
	stopLimiter := make(chan struct{})
	defer close(stopLimiter)
	limiter := security.NewRateLimiter(functionRateLimit, functionRateWindow, stopLimiter)

	routes := &handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, limiter),
		Rest:       handlers.NewRestHandler(tableService),
		Storage:    handlers.NewStorageHandler(photos, cfg.UploadMaxSize),
		Functions:  handlers.NewFunctionsHandler(procedureService, contentService, emailService, cfg.Debug),
		Realtime:   handlers.NewRealtimeHandler(hub),
		Health:     handlers.NewHealthHandler(db),
		PublicRoot: publicRoot,
	}

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:        addr,
		Handler:     routes.Handler(),
		ReadTimeout: 15 * time.Second,
		// Content generation can take most of a minute
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
