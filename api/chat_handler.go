package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/clerk/pkg/assistant"
)

// handleChat handles POST /v1/chat with a JSON assistant.Request body.
func (s *Server) handleChat(c *fiber.Ctx) error {
	var req assistant.Request
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, "invalid request body")
	}

	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return errorJSON(c, fiber.StatusBadRequest, "query is required")
	}

	return c.JSON(s.config.Assistant.Ask(c.Context(), req))
}
