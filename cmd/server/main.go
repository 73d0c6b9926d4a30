package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/stelform/adminkit/internal/apps/dispatch"
	"github.com/stelform/adminkit/internal/batch"
	"github.com/stelform/adminkit/internal/config"
	"github.com/stelform/adminkit/internal/db"
	"github.com/stelform/adminkit/internal/httpapi"
	"github.com/stelform/adminkit/internal/middleware"
	"github.com/stelform/adminkit/internal/repository"
)

func main() {
	// Create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Setup database connection
	conn, err := db.NewConnection(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Run migrations
	if err := db.RunMigrations(cfg.Database, cfg.Server.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create repositories and engine services
	recordRepo := repository.NewRecordRepository(conn)
	tenantRepo := repository.NewTenantRepository(conn)
	executor := batch.NewExecutor(recordRepo)

	// Build the sample application's declarations
	pipeline, err := dispatch.Pipeline()
	if err != nil {
		log.Fatalf("Failed to build dispatch pipeline: %v", err)
	}

	apiHandler := httpapi.NewHandler(httpapi.Config{
		Pipeline:     pipeline,
		QuickFilters: dispatch.QuickFilters(),
		Codes:        dispatch.Codes(),
		Records:      recordRepo,
		Tenants:      tenantRepo,
		Executor:     executor,
		TagJoin:      dispatch.TagJoin,
	})

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	handler := corsHandler.Handler(
		middleware.LoggingMiddleware(
			middleware.DataLoaderMiddleware(recordRepo)(apiHandler),
		),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
