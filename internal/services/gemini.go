package services

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"careerlens/career-mentor/internal/models"
)

// Generator is the outbound model capability: role-tagged history plus a
// final user message in, plain text out. Failures are classified as
// *TransientError or *PermanentError so the invoker can decide whether to
// retry.
type Generator interface {
	Generate(ctx context.Context, modelID string, req models.ModelRequest) (string, error)
}

type GeminiService interface {
	Generator
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type geminiService struct {
	client     *genai.Client
	embedModel string
}

func NewGeminiService(apiKey string) (GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiService{
		client:     client,
		embedModel: "text-embedding-004",
	}, nil
}

// Generate implements Generator.
func (g *geminiService) Generate(ctx context.Context, modelID string, req models.ModelRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, turn := range req.History {
		role := genai.Role(genai.RoleUser)
		if turn.Role == models.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Message, genai.RoleUser))

	temperature := float32(0.3)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 4096,
	}

	resp, err := g.client.Models.GenerateContent(ctx, modelID, contents, config)
	if err != nil {
		return "", classifyGeminiError(err)
	}

	if resp == nil {
		return "", &TransientError{Err: fmt.Errorf("no response generated (nil response)")}
	}

	text := resp.Text()
	if text == "" {
		return "", &TransientError{Err: fmt.Errorf("no text content in response")}
	}

	return text, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	// Truncate text if too long (max ~10000 tokens for embedding)
	if len(text) > 40000 {
		text = text[:40000]
	}

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// classifyGeminiError maps API failures onto the retry taxonomy. Rate
// limits and server-side faults are worth retrying; auth and bad-request
// failures are not.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429, 500, 502, 503, 504:
			return &TransientError{Err: err}
		default:
			return &PermanentError{Err: err}
		}
	}

	// Network-level failures with no API status are treated as transient.
	return &TransientError{Err: err}
}
