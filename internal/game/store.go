package game

import (
	"context"
	"errors"
	"sync"
)

// ErrStateNotFound is returned by a Store when no state exists for the ID.
var ErrStateNotFound = errors.New("game state not found")

// Store is the persistence port for participant game state. The core and the
// services depend on this interface only; the gorm/redis-backed implementation
// lives in internal/repository.
type Store interface {
	// Get loads the full state (grid plus responses) for a participant.
	Get(ctx context.Context, participantID int64) (GameState, error)
	// Put writes the whole updated state as one logical unit.
	Put(ctx context.Context, participantID int64, gs GameState) error
	// List scans the whole collection (researcher aggregation and export).
	List(ctx context.Context) (map[int64]GameState, error)
}

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]GameState

	// FailNextPut makes the next Put return an error and then resets.
	FailNextPut error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]GameState)}
}

func (s *MemoryStore) Get(ctx context.Context, participantID int64) (GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gs, ok := s.states[participantID]
	if !ok {
		return GameState{}, ErrStateNotFound
	}
	return gs, nil
}

func (s *MemoryStore) Put(ctx context.Context, participantID int64, gs GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNextPut != nil {
		err := s.FailNextPut
		s.FailNextPut = nil
		return err
	}

	s.states[participantID] = gs
	return nil
}

func (s *MemoryStore) List(ctx context.Context) (map[int64]GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]GameState, len(s.states))
	for id, gs := range s.states {
		out[id] = gs
	}
	return out, nil
}
