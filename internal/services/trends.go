package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

// TrendsStore keeps embedded industry-trend snippets used to ground the
// assessment prompt's market demand claims.
type TrendsStore interface {
	InitCollection() error
	UpsertSnippet(ctx context.Context, snippetID, source, text string, embedding []float32) error
	SearchRelevant(ctx context.Context, queryEmbedding []float32, limit int) ([]TrendSnippet, error)
}

type TrendSnippet struct {
	ID     string
	Score  float32
	Text   string
	Source string
}

type trendsStore struct {
	client         *qdrant.Client
	collectionName string
	vectorSize     uint64
}

func NewTrendsStore(urlStr, apiKey, collectionName string) (TrendsStore, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsed.Hostname()
	useTLS := parsed.Scheme == "https"

	// gRPC port, not the REST one
	port := 6334
	if p := parsed.Port(); p != "" {
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &trendsStore{
		client:         client,
		collectionName: collectionName,
		vectorSize:     768, // text-embedding-004 dimension
	}, nil
}

// InitCollection implements TrendsStore.
func (t *trendsStore) InitCollection() error {
	ctx := context.Background()

	exists, err := t.client.CollectionExists(ctx, t.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Println("✅ Trends collection already exists")
		return nil
	}

	err = t.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: t.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     t.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully\n", t.collectionName)
	return nil
}

// UpsertSnippet implements TrendsStore.
func (t *trendsStore) UpsertSnippet(ctx context.Context, snippetID, source, text string, embedding []float32) error {
	pointID := uuid.New()

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDNum(uint64(pointID.ID())),
		Vectors: qdrant.NewVectors(embedding...),
		Payload: qdrant.NewValueMap(map[string]interface{}{
			"snippet_id": snippetID,
			"source":     source,
			"text":       text,
		}),
	}

	_, err := t.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: t.collectionName,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		return fmt.Errorf("failed to upsert snippet: %w", err)
	}

	return nil
}

// SearchRelevant implements TrendsStore.
func (t *trendsStore) SearchRelevant(ctx context.Context, queryEmbedding []float32, limit int) ([]TrendSnippet, error) {
	searchResult, err := t.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: t.collectionName,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search trends: %w", err)
	}

	var snippets []TrendSnippet
	for _, point := range searchResult {
		snippet := TrendSnippet{Score: point.Score}

		if id, ok := point.Payload["snippet_id"]; ok {
			if val, ok := id.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.ID = val.StringValue
			}
		}
		if text, ok := point.Payload["text"]; ok {
			if val, ok := text.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Text = val.StringValue
			}
		}
		if source, ok := point.Payload["source"]; ok {
			if val, ok := source.GetKind().(*qdrant.Value_StringValue); ok {
				snippet.Source = val.StringValue
			}
		}

		snippets = append(snippets, snippet)
	}

	return snippets, nil
}

// FormatMarketContext renders retrieved snippets into a prompt section.
func FormatMarketContext(snippets []TrendSnippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var parts []string
	for i, snippet := range snippets {
		parts = append(parts, fmt.Sprintf("--- Trend %d (%s) ---\n%s",
			i+1, snippet.Source, strings.TrimSpace(snippet.Text)))
	}

	return strings.Join(parts, "\n\n")
}
