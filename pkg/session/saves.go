package session

import (
	"errors"
	"time"
)

// MaxSaveSlots bounds the number of save slots per story.
const MaxSaveSlots = 5

// previewLength bounds the plain-text page preview stored with a slot.
const previewLength = 100

// ErrSaveAtHardEnding is returned when saving on a hard-ending page.
var ErrSaveAtHardEnding = errors.New("saving is not permitted on a hard ending")

// SaveSlot is a deep snapshot of a session state plus display metadata.
// Its lifecycle is independent of the live state: created on save,
// consumed on load, deleted explicitly.
type SaveSlot struct {
	Slot       int       `json:"slot"`
	Name       string    `json:"name,omitempty"`
	StoryTitle string    `json:"story_title,omitempty"`
	Preview    string    `json:"preview,omitempty"`
	SavedAt    time.Time `json:"saved_at"`
	State      *State    `json:"state"`
}

// Save captures the current session into a slot. The snapshot is fully
// independent of the live state.
func (e *Engine) Save(slot int, name string) (*SaveSlot, error) {
	if !e.CanSave() {
		return nil, ErrSaveAtHardEnding
	}

	preview := ""
	if page := e.CurrentPage(); page != nil {
		preview = truncate(page.Text, previewLength)
	}

	return &SaveSlot{
		Slot:       slot,
		Name:       name,
		StoryTitle: e.doc.Metadata.Title,
		Preview:    preview,
		SavedAt:    time.Now().UTC(),
		State:      e.state.Clone(),
	}, nil
}

// LoadSave replaces the session state wholesale from the slot. No effects
// are re-applied; like JumpToPage, restoration is pure repositioning.
func (e *Engine) LoadSave(slot *SaveSlot) {
	if slot == nil || slot.State == nil {
		return
	}
	e.state = slot.State.Clone()
	e.mode = ModeIdle
	e.pending = nil
}

// NextSlot picks the slot id for a new save: the lowest id in
// [1, MaxSaveSlots] not already occupied, or slot 1 when all are taken
// (deterministic implicit overwrite).
func NextSlot(existing []SaveSlot) int {
	occupied := make(map[int]bool, len(existing))
	for _, s := range existing {
		occupied[s.Slot] = true
	}
	for id := 1; id <= MaxSaveSlots; id++ {
		if !occupied[id] {
			return id
		}
	}
	return 1
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
