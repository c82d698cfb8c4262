package store

import (
	"context"
	"errors"
	"testing"

	"github.com/battlesync/battlesync-server/internal/engine"
)

func newStoredMatch(t *testing.T, s *Memory, id string) *engine.MatchState {
	t.Helper()
	m := &engine.MatchState{
		ID: id,
		Players: []*engine.Player{
			{ID: "p1", HP: 20},
			{ID: "p2", HP: 20},
		},
	}
	if err := s.Create(context.Background(), m); err != nil {
		t.Fatalf("create: %v", err)
	}
	return m
}

func TestMemoryRoundTrip(t *testing.T) {
	s := NewMemory()
	newStoredMatch(t, s, "m1")

	loaded, err := s.Load(context.Background(), "m1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.ID != "m1" || len(loaded.Players) != 2 {
		t.Fatalf("unexpected document: %+v", loaded)
	}
}

func TestMemoryLoadReturnsCopies(t *testing.T) {
	s := NewMemory()
	newStoredMatch(t, s, "m1")

	a, _ := s.Load(context.Background(), "m1")
	a.Players[0].HP = 1

	b, _ := s.Load(context.Background(), "m1")
	if b.Players[0].HP != 20 {
		t.Error("mutating a loaded document must not affect the store")
	}
}

func TestMemoryVersionConflict(t *testing.T) {
	s := NewMemory()
	m := newStoredMatch(t, s, "m1")

	m.Bump()
	if err := s.Save(context.Background(), m, 0); err != nil {
		t.Fatalf("first save: %v", err)
	}

	// A stale writer still holds version 0.
	stale := &engine.MatchState{ID: "m1", MatchVersion: 1}
	err := s.Save(context.Background(), stale, 0)
	if !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected version conflict, got %v", err)
	}
}

func TestMemoryNotFound(t *testing.T) {
	s := NewMemory()

	if _, err := s.Load(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on load, got %v", err)
	}
	if err := s.Save(context.Background(), &engine.MatchState{ID: "ghost"}, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on save, got %v", err)
	}
	if err := s.Delete(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on delete, got %v", err)
	}
}

func TestMemoryCreateDuplicate(t *testing.T) {
	s := NewMemory()
	newStoredMatch(t, s, "m1")

	err := s.Create(context.Background(), &engine.MatchState{ID: "m1"})
	if err == nil {
		t.Fatal("expected duplicate create rejected")
	}
}
