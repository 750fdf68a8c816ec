package conversation

import (
	"context"
	"sync"
)

// Repository stores session histories. AppendTurn adds a question and its
// answer in one step.
type Repository interface {
	Load(ctx context.Context, sessionID string) (*History, error)
	AppendTurn(ctx context.Context, sessionID, question, answer string) error
	Delete(ctx context.Context, sessionID string) error
}

// MemoryRepository keeps histories in process memory
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]*History
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string]*History)}
}

func (m *MemoryRepository) Load(_ context.Context, sessionID string) (*History, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history, ok := m.sessions[sessionID]
	if !ok {
		return NewHistory(), nil
	}
	return history.clone(), nil
}

func (m *MemoryRepository) AppendTurn(_ context.Context, sessionID, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	history, ok := m.sessions[sessionID]
	if !ok {
		history = NewHistory()
		m.sessions[sessionID] = history
	}
	history.Append(question, answer)
	return nil
}

func (m *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionID)
	return nil
}
