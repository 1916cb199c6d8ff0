package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwebster45206/gamebook-engine/pkg/session"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// Storage persists session state and save slots, and serves story
// documents. Save slots live under a single key per story; cross-story
// isolation comes from the story id, never from the engine.
type Storage interface {
	// Ping tests the backing connection
	Ping(ctx context.Context) error

	// Close closes the backing connection
	Close() error

	// SaveSession persists a session state keyed by its UUID
	SaveSession(ctx context.Context, s *session.State) error

	// LoadSession retrieves a session state by UUID.
	// Returns nil if the session doesn't exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error)

	// DeleteSession removes a session state by UUID
	DeleteSession(ctx context.Context, id uuid.UUID) error

	// ListSaves returns all save slots for a story, ordered by slot id
	ListSaves(ctx context.Context, storyID string) ([]session.SaveSlot, error)

	// PutSave writes a save slot, replacing any slot with the same id
	PutSave(ctx context.Context, storyID string, slot session.SaveSlot) error

	// DeleteSave removes a save slot unconditionally
	DeleteSave(ctx context.Context, storyID string, slotID int) error

	// ListStories returns a map of story title to filename
	ListStories(ctx context.Context) (map[string]string, error)

	// GetStory loads a story document by filename
	GetStory(ctx context.Context, filename string) (*storybook.Document, error)
}
