package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"careerlens/career-mentor/internal/models"
	"careerlens/career-mentor/internal/services"
)

type ChatHandler struct {
	chatService services.ChatService
}

func NewChatHandler(chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// HandleChat handles POST /api/v1/chat
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "Invalid request payload",
		})
	}

	reply, err := h.chatService.HandleTurn(c.UserContext(), req.SessionKey, req.Message, time.Now())
	if err != nil {
		if errors.Is(err, services.ErrEmptyMessage) {
			return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
				Error: "message is required",
			})
		}

		log.Printf("❌ Chat turn failed (session %q): %v\n", req.SessionKey, err)
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Chat failed",
		})
	}

	return c.JSON(models.ChatResponse{Reply: reply})
}
