package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"careerlens/career-mentor/internal/models"
	"careerlens/career-mentor/internal/repositories"
)

// AnalyzerService drives one resume through the full pipeline: extract,
// build prompt, invoke the model, validate the reply.
type AnalyzerService interface {
	AnalyzeResume(ctx context.Context, filePath, mediaType, originalName string) (*models.Assessment, error)
}

type analyzerService struct {
	analysisRepo  repositories.AnalysisRepository
	extractor     TextExtractor
	promptBuilder *PromptBuilder
	invoker       ModelInvoker
	parser        AssessmentParser
	gemini        GeminiService
	trends        TrendsStore // nil when market context retrieval is disabled
}

func NewAnalyzerService(
	analysisRepo repositories.AnalysisRepository,
	extractor TextExtractor,
	promptBuilder *PromptBuilder,
	invoker ModelInvoker,
	parser AssessmentParser,
	gemini GeminiService,
	trends TrendsStore,
) AnalyzerService {
	return &analyzerService{
		analysisRepo:  analysisRepo,
		extractor:     extractor,
		promptBuilder: promptBuilder,
		invoker:       invoker,
		parser:        parser,
		gemini:        gemini,
		trends:        trends,
	}
}

func (a *analyzerService) AnalyzeResume(ctx context.Context, filePath, mediaType, originalName string) (*models.Assessment, error) {
	analysis := &models.Analysis{
		ID:        uuid.New(),
		Filename:  originalName,
		MediaType: mediaType,
		Status:    models.StatusProcessing,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := a.analysisRepo.Create(analysis); err != nil {
		return nil, fmt.Errorf("failed to record analysis: %w", err)
	}

	log.Printf("🔄 Starting analysis %s (%s)\n", analysis.ID, originalName)

	resumeText, err := a.extractor.Extract(filePath, mediaType)
	if err != nil {
		a.markFailed(analysis.ID, fmt.Sprintf("extraction failed: %v", err))
		return nil, fmt.Errorf("failed to extract resume text: %w", err)
	}

	marketContext := a.retrieveMarketContext(ctx, resumeText)

	prompt := a.promptBuilder.BuildAssessmentPrompt(resumeText, marketContext, time.Now())
	log.Printf("📝 Assessment prompt length: %d characters", len(prompt))

	response, err := a.invoker.Invoke(ctx, models.ModelRequest{Message: prompt})
	if err != nil {
		a.markFailed(analysis.ID, fmt.Sprintf("model invocation failed: %v", err))
		return nil, fmt.Errorf("failed to generate assessment: %w", err)
	}

	assessment, err := a.parser.Parse(response)
	if err != nil {
		a.markFailed(analysis.ID, fmt.Sprintf("response validation failed: %v", err))
		return nil, fmt.Errorf("failed to validate assessment: %w", err)
	}

	if err := a.analysisRepo.MarkCompleted(analysis.ID, assessment.MatchScore); err != nil {
		log.Printf("⚠️  Failed to update analysis record %s: %v\n", analysis.ID, err)
	}

	log.Printf("✅ Analysis %s completed, match score %d\n", analysis.ID, assessment.MatchScore)
	return assessment, nil
}

// retrieveMarketContext looks up trend snippets similar to the resume.
// Retrieval is best-effort: any failure degrades to an ungrounded prompt.
func (a *analyzerService) retrieveMarketContext(ctx context.Context, resumeText string) string {
	if a.trends == nil || resumeText == "" {
		return ""
	}

	embedding, err := a.gemini.GenerateEmbedding(ctx, resumeText)
	if err != nil {
		log.Printf("⚠️  Failed to embed resume for trend lookup: %v\n", err)
		return ""
	}

	snippets, err := a.trends.SearchRelevant(ctx, embedding, 3)
	if err != nil {
		log.Printf("⚠️  Failed to retrieve market trends: %v\n", err)
		return ""
	}

	return FormatMarketContext(snippets)
}

func (a *analyzerService) markFailed(id uuid.UUID, msg string) {
	if err := a.analysisRepo.MarkFailed(id, msg); err != nil {
		log.Printf("⚠️  Failed to update analysis record %s: %v\n", id, err)
	}
}
