package conversation

import (
	"context"
	"cypher_chat/pkg"
	"cypher_chat/src/logger"
	"errors"
	"fmt"
)

var ErrTranscriptsDisabled = errors.New("transcript archiving is not enabled")

type Service struct {
	repo    Repository
	archive *TranscriptArchive
}

// NewService wraps a repository. archive may be nil.
func NewService(repo Repository, archive *TranscriptArchive) *Service {
	return &Service{repo: repo, archive: archive}
}

// RecordTurn appends the turn's question and answer to the session history
// and archives the turn when a transcript directory is configured.
func (s *Service) RecordTurn(ctx context.Context, turn *pkg.Turn) error {
	if err := s.repo.AppendTurn(ctx, turn.SessionID, turn.Question, turn.Answer); err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}

	if s.archive != nil {
		if err := s.archive.Save(pkg.NewTranscriptEntry(turn)); err != nil {
			// the live history is already updated
			logger.Warn().Err(err).Str("session_id", turn.SessionID).Msg("Failed to archive turn")
		}
	}
	return nil
}

// History returns the full conversation history
func (s *Service) History(ctx context.Context, sessionID string) (*History, error) {
	return s.repo.Load(ctx, sessionID)
}

func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}

// Transcript returns the archived turns of a session, oldest first
func (s *Service) Transcript(_ context.Context, sessionID string) ([]pkg.TranscriptEntry, error) {
	if s.archive == nil {
		return nil, ErrTranscriptsDisabled
	}
	return s.archive.Load(sessionID)
}
