package handlers

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/creatorhub/internal/service"
)

type ContentHandler struct {
	s service.AIService
}

func NewContentHandler(service service.AIService) *ContentHandler {
	return &ContentHandler{s: service}
}

type generateContentRequest struct {
	Type  string `json:"type"`
	Input string `json:"input"`
}

func (h *ContentHandler) GenerateContent(c *fiber.Ctx) error {
	var req generateContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	content, err := h.s.GenerateContent(c.Context(), req.Type, req.Input)
	if err != nil {
		log.Printf("Content generation failed: %v", err)

		switch {
		case errors.Is(err, service.ErrRateLimited):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		case errors.Is(err, service.ErrPaymentRequired):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "AI credits exhausted. Please add credits to continue.",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to generate content",
			})
		}
	}

	return c.JSON(fiber.Map{"content": content})
}
