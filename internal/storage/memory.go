package storage

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/jwebster45206/gamebook-engine/pkg/session"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// MemoryStorage is an in-memory Storage used in tests and for running the
// API without Redis. Stories can be registered directly or read from disk.
type MemoryStorage struct {
	sessions map[uuid.UUID]*session.State
	saves    map[string][]session.SaveSlot
	stories  map[string]*storybook.Document
	dataDir  string
	logger   *slog.Logger
}

var _ Storage = (*MemoryStorage)(nil)

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		sessions: make(map[uuid.UUID]*session.State),
		saves:    make(map[string][]session.SaveSlot),
		stories:  make(map[string]*storybook.Document),
	}
}

// WithDataDir enables filesystem story lookup alongside registered stories.
func (m *MemoryStorage) WithDataDir(dir string, logger *slog.Logger) *MemoryStorage {
	m.dataDir = dir
	m.logger = logger
	return m
}

// AddStory registers a story document under a filename.
func (m *MemoryStorage) AddStory(filename string, doc *storybook.Document) {
	m.stories[filename] = doc
}

func (m *MemoryStorage) Ping(ctx context.Context) error { return nil }
func (m *MemoryStorage) Close() error                   { return nil }

func (m *MemoryStorage) SaveSession(ctx context.Context, s *session.State) error {
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStorage) LoadSession(ctx context.Context, id uuid.UUID) (*session.State, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *MemoryStorage) DeleteSession(ctx context.Context, id uuid.UUID) error {
	delete(m.sessions, id)
	return nil
}

func (m *MemoryStorage) ListSaves(ctx context.Context, storyID string) ([]session.SaveSlot, error) {
	slots := append([]session.SaveSlot{}, m.saves[storyID]...)
	sort.Slice(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	return slots, nil
}

func (m *MemoryStorage) PutSave(ctx context.Context, storyID string, slot session.SaveSlot) error {
	slots := m.saves[storyID]
	for i := range slots {
		if slots[i].Slot == slot.Slot {
			slots[i] = slot
			m.saves[storyID] = slots
			return nil
		}
	}
	m.saves[storyID] = append(slots, slot)
	return nil
}

func (m *MemoryStorage) DeleteSave(ctx context.Context, storyID string, slotID int) error {
	slots := m.saves[storyID]
	kept := slots[:0]
	for _, s := range slots {
		if s.Slot != slotID {
			kept = append(kept, s)
		}
	}
	m.saves[storyID] = kept
	return nil
}

func (m *MemoryStorage) ListStories(ctx context.Context) (map[string]string, error) {
	out := make(map[string]string, len(m.stories))
	for filename, doc := range m.stories {
		title := doc.Metadata.Title
		if title == "" {
			title = filename
		}
		out[title] = filename
	}
	if m.dataDir != "" {
		fromDisk, err := listStories(filepath.Join(m.dataDir, "stories"), m.logger)
		if err == nil {
			for title, filename := range fromDisk {
				out[title] = filename
			}
		}
	}
	return out, nil
}

func (m *MemoryStorage) GetStory(ctx context.Context, filename string) (*storybook.Document, error) {
	if doc, ok := m.stories[filename]; ok {
		return doc, nil
	}
	if m.dataDir != "" {
		return readStory(filepath.Join(m.dataDir, "stories", filename))
	}
	return nil, nil
}
