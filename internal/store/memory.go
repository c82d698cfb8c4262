package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/battlesync/battlesync-server/internal/engine"
)

// Memory is an in-process store for tests and single-node development.
// Documents are kept as serialized bytes so loads return independent
// copies, matching the database-backed behavior.
type Memory struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	versions map[string]int64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		docs:     make(map[string][]byte),
		versions: make(map[string]int64),
	}
}

func (s *Memory) Create(ctx context.Context, m *engine.MatchState) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[m.ID]; ok {
		return fmt.Errorf("match %s already exists", m.ID)
	}
	s.docs[m.ID] = doc
	s.versions[m.ID] = m.MatchVersion
	return nil
}

func (s *Memory) Load(ctx context.Context, id string) (*engine.MatchState, error) {
	s.mu.RLock()
	doc, ok := s.docs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var m engine.MatchState
	if err := json.Unmarshal(doc, &m); err != nil {
		return nil, fmt.Errorf("unmarshal match %s: %w", id, err)
	}
	return &m, nil
}

func (s *Memory) Save(ctx context.Context, m *engine.MatchState, expectedVersion int64) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal match %s: %w", m.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.versions[m.ID]
	if !ok {
		return ErrNotFound
	}
	if stored != expectedVersion {
		return ErrVersionConflict
	}
	s.docs[m.ID] = doc
	s.versions[m.ID] = m.MatchVersion
	return nil
}

func (s *Memory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return ErrNotFound
	}
	delete(s.docs, id)
	delete(s.versions, id)
	return nil
}
