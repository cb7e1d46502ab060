package session

import (
	"errors"
	"slices"
	"sync"

	"github.com/matst80/slask-builder/pkg/builder"
)

var ErrNotFound = errors.New("no builder state for session")

// Storage persists one builder state per browser session.
type Storage interface {
	GetState(sessionId int) (*builder.State, error)
	SaveState(sessionId int, state *builder.State) error
	DeleteState(sessionId int) error
}

// MemoryStorage keeps builder states in process, for tests and
// single-node runs.
type MemoryStorage struct {
	mu     sync.RWMutex
	states map[int]builder.State
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		states: make(map[int]builder.State),
	}
}

func (s *MemoryStorage) GetState(sessionId int) (*builder.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[sessionId]
	if !ok {
		return nil, ErrNotFound
	}
	// entries are cloned so callers cannot mutate stored state
	state.Selections.Entries = slices.Clone(state.Selections.Entries)
	return &state, nil
}

func (s *MemoryStorage) SaveState(sessionId int, state *builder.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *state
	stored.Selections.Entries = slices.Clone(stored.Selections.Entries)
	s.states[sessionId] = stored
	return nil
}

func (s *MemoryStorage) DeleteState(sessionId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionId)
	return nil
}
