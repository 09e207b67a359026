package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"careerlens/career-mentor/internal/config"
	"careerlens/career-mentor/internal/services"
)

// Ingests industry-trend documents into the market trends collection so
// resume assessments can ground their demand claims. Usage:
//
//	go run ./scripts [docs-dir]
//
// docs-dir defaults to ./market_docs and may contain PDF, DOCX, or plain
// text files.
func main() {
	log.Println("🚀 Starting market trend ingestion...")

	docsDir := "./market_docs"
	if len(os.Args) > 1 {
		docsDir = os.Args[1]
	}

	cfg := config.Load()

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	trendsStore, err := services.NewTrendsStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	if err := trendsStore.InitCollection(); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	extractor := services.NewTextExtractor()
	chunker := services.NewTextChunker()

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		log.Fatalf("❌ Failed to read docs directory %s: %v", docsDir, err)
	}

	ctx := context.Background()
	successCount := 0
	failCount := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(docsDir, entry.Name())
		mediaType := mediaTypeForFile(entry.Name())
		if mediaType == "" {
			log.Printf("⚠️  Skipping %s (unsupported extension)", entry.Name())
			continue
		}

		log.Printf("\n📄 Processing: %s", entry.Name())

		text, err := extractor.Extract(path, mediaType)
		if err != nil {
			log.Printf("   ❌ Failed to extract text: %v", err)
			failCount++
			continue
		}

		chunks := chunker.ChunkText(text, 1000, 200)
		log.Printf("   ✂️  Created %d chunks", len(chunks))

		for i, chunk := range chunks {
			embedding, err := geminiService.GenerateEmbedding(ctx, chunk)
			if err != nil {
				log.Printf("   ❌ Failed to embed chunk %d: %v", i+1, err)
				continue
			}

			snippetID := fmt.Sprintf("%s_chunk_%d", entry.Name(), i)
			if err := trendsStore.UpsertSnippet(ctx, snippetID, entry.Name(), chunk, embedding); err != nil {
				log.Printf("   ❌ Failed to store chunk %d: %v", i+1, err)
				continue
			}

			if (i+1)%5 == 0 || i == len(chunks)-1 {
				log.Printf("   📊 Progress: %d/%d chunks stored", i+1, len(chunks))
			}
		}

		log.Printf("   ✅ Ingested %s", entry.Name())
		successCount++
	}

	log.Println("\n" + strings.Repeat("=", 60))
	log.Printf("📊 Ingestion Summary: %d ok, %d failed", successCount, failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}
}

func mediaTypeForFile(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return services.MediaTypePDF
	case ".docx":
		return services.MediaTypeDocx
	case ".txt":
		return services.MediaTypeText
	default:
		return ""
	}
}
