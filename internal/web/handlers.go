package web

import (
	"cypher_chat/internal/core"
	"cypher_chat/pkg"
	"cypher_chat/src/conversation"
	"cypher_chat/src/logger"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// handleIndex renders the chat page with the session history
func (s *Server) handleIndex(c *fiber.Ctx) error {
	id := s.sessionID(c)
	return s.renderHistory(c, id, nil, "")
}

// handleAskForm processes a form submission and renders the page with the
// turn's answer, query and results.
func (s *Server) handleAskForm(c *fiber.Ctx) error {
	id := s.sessionID(c)
	question := c.FormValue("question")

	turn, err := s.assistant.Ask(c.UserContext(), id, question)
	switch {
	case errors.Is(err, core.ErrEmptyQuestion):
		return s.renderHistory(c, id, nil, "")
	case errors.Is(err, core.ErrTurnInProgress):
		c.Status(fiber.StatusConflict)
		return s.renderHistory(c, id, nil, "Your previous question is still being processed.")
	case err != nil && turn == nil:
		logger.Error().Err(err).Str("session_id", id).Msg("Ask failed")
		c.Status(fiber.StatusInternalServerError)
		return s.renderHistory(c, id, nil, "The question could not be processed.")
	case err != nil:
		// the turn was answered but could not be stored
		logger.Error().Err(err).Str("session_id", id).Msg("Turn not recorded")
	}

	return s.renderHistory(c, id, turn, "")
}

// handleReset starts a fresh conversation
func (s *Server) handleReset(c *fiber.Ctx) error {
	id := s.sessionID(c)
	if err := s.assistant.Reset(c.UserContext(), id); err != nil {
		logger.Error().Err(err).Str("session_id", id).Msg("Reset failed")
		c.Status(fiber.StatusInternalServerError)
		return s.renderHistory(c, id, nil, "The conversation could not be reset.")
	}
	return c.Redirect("/", fiber.StatusSeeOther)
}

// handleHistory returns the session's exchanges, newest first
func (s *Server) handleHistory(c *fiber.Ctx) error {
	id := s.sessionID(c)
	history, err := s.assistant.History(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: "failed to load history"})
	}
	return c.JSON(pkg.HistoryResponse{SessionID: id, Exchanges: history.Recent(0)})
}

// handleTranscript returns the session's archived turns, oldest first
func (s *Server) handleTranscript(c *fiber.Ctx) error {
	id := s.sessionID(c)
	entries, err := s.assistant.Transcript(c.UserContext(), id)
	switch {
	case errors.Is(err, conversation.ErrTranscriptsDisabled):
		return c.Status(fiber.StatusNotFound).JSON(pkg.ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error().Err(err).Str("session_id", id).Msg("Failed to load transcript")
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: "failed to load transcript"})
	}
	return c.JSON(pkg.TranscriptResponse{SessionID: id, Entries: entries})
}

// handleAsk answers a JSON question
func (s *Server) handleAsk(c *fiber.Ctx) error {
	id := s.sessionID(c)

	var req pkg.AskRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{Error: "invalid request body"})
	}

	turn, err := s.assistant.Ask(c.UserContext(), id, req.Question)
	switch {
	case errors.Is(err, core.ErrEmptyQuestion):
		return c.Status(fiber.StatusBadRequest).JSON(pkg.ErrorResponse{Error: err.Error()})
	case errors.Is(err, core.ErrTurnInProgress):
		return c.Status(fiber.StatusConflict).JSON(pkg.ErrorResponse{Error: err.Error()})
	case err != nil:
		logger.Error().Err(err).Str("session_id", id).Msg("Ask failed")
		return c.Status(fiber.StatusInternalServerError).JSON(pkg.ErrorResponse{Error: "failed to process question"})
	}

	return c.JSON(turn)
}

// handleHealth reports whether the graph database and the history store are reachable
func (s *Server) handleHealth(c *fiber.Ctx) error {
	if s.health != nil {
		if err := s.health(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable", "error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) renderHistory(c *fiber.Ctx, sessionID string, turn *pkg.Turn, notice string) error {
	history, err := s.assistant.History(c.UserContext(), sessionID)
	if err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to load history")
		return s.render(c, fiber.StatusInternalServerError, pageData{Turn: turn, Notice: "History is unavailable."})
	}

	return s.render(c, c.Response().StatusCode(), pageData{
		Turn:      turn,
		Exchanges: history.Recent(0),
		Notice:    notice,
	})
}
