package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/clerk/pkg/session"
)

// SessionResponse is the body of session create and history responses.
type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []session.Turn `json:"turns,omitempty"`
}

func (s *Server) handleCreateSession(c *fiber.Ctx) error {
	id := s.config.Sessions.Create()
	return c.Status(fiber.StatusCreated).JSON(SessionResponse{SessionID: id})
}

func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions := s.config.Sessions.List()
	return c.JSON(map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if !s.config.Sessions.Exists(id) {
		return errorJSON(c, fiber.StatusNotFound, "session not found")
	}

	return c.JSON(SessionResponse{
		SessionID: id,
		Turns:     s.config.Sessions.History(id),
	})
}

func (s *Server) handleDeleteSession(c *fiber.Ctx) error {
	id := c.Params("id")

	err := s.config.Sessions.Delete(id)
	if errors.Is(err, session.ErrSessionNotFound) {
		return errorJSON(c, fiber.StatusNotFound, "session not found")
	}
	if err != nil {
		s.logger.Error("deleting session failed", "session_id", id, "error", err)
		return errorJSON(c, fiber.StatusInternalServerError, "failed to delete session")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleClearSessions(c *fiber.Ctx) error {
	s.config.Sessions.ClearAll()
	s.logger.Info("cleared all sessions")
	return c.SendStatus(fiber.StatusNoContent)
}
