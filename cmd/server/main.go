package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/docmatch/backend/config"
	httpDelivery "github.com/docmatch/backend/internal/delivery/http"
	"github.com/docmatch/backend/internal/domain"
	"github.com/docmatch/backend/internal/infrastructure/extract"
	"github.com/docmatch/backend/internal/infrastructure/gemini"
	"github.com/docmatch/backend/internal/infrastructure/jobstore"
	"github.com/docmatch/backend/internal/usecase"
)

func main() {
	// Optional .env for local development
	if err := godotenv.Load(); err == nil {
		log.Printf(".env file loaded")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting DocMatch Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Initialize infrastructure dependencies
	store := jobstore.NewMemoryStore()
	extractor := extract.NewFileExtractor(extract.Config{
		PdftotextPath: cfg.Extract.PdftotextPath,
		TesseractPath: cfg.Extract.TesseractPath,
	})

	var ai domain.StructuredExtractor
	if cfg.Gemini.APIKey == "" {
		log.Printf("WARNING: Gemini API key not set (DOCMATCH_GEMINI_API_KEY). Using mock extraction client.")
		ai = gemini.NewMockClient()
	} else {
		client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Model)
		if cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Printf("Gemini client debug mode enabled")
		}
		log.Printf("Gemini client initialized: %s (model: %s)", cfg.Gemini.BaseURL, cfg.Gemini.Model)
		ai = client
	}

	// Initialize usecase layer
	jobService := usecase.NewJobService(store, extractor, ai, usecase.JobServiceConfig{
		Workers:   cfg.Jobs.Workers,
		QueueSize: cfg.Jobs.QueueSize,
	})
	log.Printf("Job workers: %d (queue size: %d)", cfg.Jobs.Workers, cfg.Jobs.QueueSize)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(jobService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
