// PowerPulse server - ingests chat transcripts, scores them with an LLM
// provider, and serves upload/progress endpoints over HTTP.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gl4d3/powerpulse/pkg/api"
	"github.com/gl4d3/powerpulse/pkg/config"
	"github.com/gl4d3/powerpulse/pkg/database"
	"github.com/gl4d3/powerpulse/pkg/llmadapter"
	"github.com/gl4d3/powerpulse/pkg/orchestrator"
	"github.com/gl4d3/powerpulse/pkg/progress"
	"github.com/gl4d3/powerpulse/pkg/queue"
	"github.com/gl4d3/powerpulse/pkg/storage"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: could not load %s: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")

	log.Printf("Starting PowerPulse")
	log.Printf("HTTP Port: %s", httpPort)
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}

	dbConfig, err := database.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}

	dbClient, err := database.NewClient(ctx, dbConfig)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			log.Printf("Error closing database client: %v", err)
		}
	}()
	log.Println("Connected to PostgreSQL database")

	adapter, err := llmadapter.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize LLM adapter: %v", err)
	}

	gateway := storage.NewGateway(dbClient.Client)
	tracker := progress.NewTracker()
	cancels := queue.NewCancelRegistry()
	orch := orchestrator.New(gateway, tracker, cancels, adapter, cfg, slog.Default())

	server := api.NewServer(cfg, dbClient, orch, tracker)

	go func() {
		if err := server.Start(":" + httpPort); err != nil {
			log.Printf("HTTP server stopped: %v", err)
		}
	}()
	log.Printf("HTTP server listening on :%s", httpPort)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
}
