package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/papercomputeco/rubberduck/pkg/conversation"
	"github.com/papercomputeco/rubberduck/pkg/llm"
	"github.com/papercomputeco/rubberduck/pkg/panel"
)

// SubmitRequest is the body of POST /conversations/:id/messages.
type SubmitRequest struct {
	Content string `json:"content"`
}

// SubmitResponse reports whether the conversation took the message.
type SubmitResponse struct {
	Accepted bool `json:"accepted"`
}

// ListResponse is the body of GET /conversations.
type ListResponse struct {
	Conversations []conversation.View `json:"conversations"`
	Count         int                 `json:"count"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleListConversations returns every open conversation in creation order.
func (s *Server) handleListConversations(c *fiber.Ctx) error {
	views := s.panel.List()
	return c.JSON(ListResponse{Conversations: views, Count: len(views)})
}

// handleCreateConversation starts a conversation for the posted trigger.
func (s *Server) handleCreateConversation(c *fiber.Ctx) error {
	var trigger conversation.Trigger
	if err := c.BodyParser(&trigger); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid trigger body"})
	}

	conv, err := s.panel.Create(c.UserContext(), trigger)
	if err != nil {
		s.logger.Debug("rejected trigger", "action", string(trigger.Type), "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(conv.View())
}

// handleGetConversation returns the messages, state and content of one
// conversation.
func (s *Server) handleGetConversation(c *fiber.Ctx) error {
	conv, err := s.panel.Get(c.Params("id"))
	if err != nil {
		return s.notFound(c, err)
	}
	return c.JSON(conv.View())
}

// handleCloseConversation removes a conversation from the panel.
func (s *Server) handleCloseConversation(c *fiber.Ctx) error {
	if err := s.panel.Close(c.Params("id")); err != nil {
		return s.notFound(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// handleSubmitMessage forwards a user reply. Busy and errored conversations
// answer accepted=false rather than an error status.
func (s *Server) handleSubmitMessage(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{Error: "invalid message body"})
	}

	accepted, err := s.panel.Submit(c.UserContext(), c.Params("id"), req.Content)
	if err != nil {
		return s.notFound(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(SubmitResponse{Accepted: accepted})
}

func (s *Server) notFound(c *fiber.Ctx, err error) error {
	if errors.Is(err, panel.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{Error: "conversation not found"})
	}
	s.logger.Error("panel request failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{Error: err.Error()})
}
