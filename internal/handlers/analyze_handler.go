package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"careerlens/career-mentor/internal/models"
	"careerlens/career-mentor/internal/services"
)

type AnalyzeHandler struct {
	analyzer       services.AnalyzerService
	storageService services.StorageService
	maxFileSize    int64
}

func NewAnalyzeHandler(
	analyzer services.AnalyzerService,
	storageService services.StorageService,
	maxFileSize int64,
) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:       analyzer,
		storageService: storageService,
		maxFileSize:    maxFileSize,
	}
}

// HandleAnalyze handles POST /api/v1/analyze-resume. The uploaded file is
// staged on disk for the duration of the request and removed on every
// exit path.
func (h *AnalyzeHandler) HandleAnalyze(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "No file uploaded",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("Resume file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	filename, filePath, err := h.storageService.SaveFile(file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: fmt.Sprintf("failed to save resume file: %v", err),
		})
	}
	defer func() {
		if err := h.storageService.DeleteFile(filename); err != nil {
			log.Printf("⚠️  Failed to remove staged file %s: %v\n", filename, err)
		}
	}()

	assessment, err := h.analyzer.AnalyzeResume(c.UserContext(), filePath, resolveMediaType(file), file.Filename)
	if err != nil {
		log.Printf("❌ Analysis failed for %s: %v\n", file.Filename, err)

		status := fiber.StatusInternalServerError
		if errors.Is(err, services.ErrUnreadable) {
			status = fiber.StatusUnprocessableEntity
		}
		return c.Status(status).JSON(models.ErrorResponse{
			Error: "Analysis failed",
		})
	}

	return c.JSON(assessment)
}

// resolveMediaType prefers the declared Content-Type, falling back to the
// filename extension.
func resolveMediaType(file *multipart.FileHeader) string {
	if declared := file.Header.Get("Content-Type"); declared != "" && declared != "application/octet-stream" {
		return declared
	}

	switch strings.ToLower(filepath.Ext(file.Filename)) {
	case ".pdf":
		return services.MediaTypePDF
	case ".docx":
		return services.MediaTypeDocx
	case ".txt":
		return services.MediaTypeText
	default:
		return "application/octet-stream"
	}
}
