package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"axion/interview-evaluator/internal/config"
	"axion/interview-evaluator/internal/repositories"
	"axion/interview-evaluator/internal/services"
)

func main() {
	log.Println("🚀 Starting transcript reindex...")

	// Load configuration
	cfg := config.Load()
	if !cfg.SearchEnabled() {
		log.Fatal("❌ QDRANT_URL and GEMINI_API_KEY are required for reindexing")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}
	responseRepo := repositories.NewResponseRepository(db)

	// Initialize services
	geminiService, err := services.NewGeminiService(cfg.Gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := qdrantService.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	indexer := services.NewTranscriptIndexer(responseRepo, geminiService, qdrantService, services.NewTextChunker())

	successCount := 0
	visited := make(map[uuid.UUID]struct{})
	failed := make(map[uuid.UUID]struct{})

	for {
		pending, err := responseRepo.FindUnindexed(cfg.Worker.BatchSize + len(visited))
		if err != nil {
			log.Fatalf("❌ Failed to fetch unindexed responses: %v", err)
		}

		progressed := false
		for _, resp := range pending {
			if _, seen := visited[resp.ID]; seen {
				continue
			}
			visited[resp.ID] = struct{}{}
			progressed = true

			log.Printf("📄 Indexing response %s", resp.ID)
			if err := indexer.IndexResponse(ctx, resp.ID); err != nil {
				log.Printf("   ❌ Failed: %v", err)
				failed[resp.ID] = struct{}{}
				continue
			}
			successCount++
		}

		if !progressed {
			break
		}
	}

	// Summary
	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Reindex Summary:")
	log.Printf("   ✅ Indexed: %d responses", successCount)
	log.Printf("   ❌ Failed: %d responses", len(failed))
	log.Println(strings.Repeat("=", 60))

	if len(failed) > 0 {
		log.Println("⚠️  Some responses failed to index. Please check the logs above.")
		os.Exit(1)
	}

	log.Println("✅ All transcripts indexed successfully!")
}
