// Package store persists match documents. The match state is stored as a
// single JSONB document per match, with an optimistic version column
// guarding concurrent writers.
package store

import (
	"context"
	"errors"

	"github.com/battlesync/battlesync-server/internal/engine"
)

var (
	// ErrNotFound reports a match id with no stored document.
	ErrNotFound = errors.New("match not found")
	// ErrVersionConflict reports a save that lost an optimistic
	// concurrency race; the caller should reload and retry.
	ErrVersionConflict = errors.New("match version conflict")
)

// Store is the persistence contract for match documents.
type Store interface {
	// Create stores a new match document. The match id must be unused.
	Create(ctx context.Context, m *engine.MatchState) error
	// Load returns the stored match, or ErrNotFound.
	Load(ctx context.Context, id string) (*engine.MatchState, error)
	// Save overwrites the document if the stored version still equals
	// expectedVersion, otherwise returns ErrVersionConflict.
	Save(ctx context.Context, m *engine.MatchState, expectedVersion int64) error
	// Delete removes the match document.
	Delete(ctx context.Context, id string) error
}
