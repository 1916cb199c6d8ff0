package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// State is the mutable play-through state, distinct from the immutable
// story document. It is exclusively owned by the Engine: no other component
// mutates it except through the engine's entry points.
type State struct {
	ID         uuid.UUID `json:"id"`
	StoryID    string    `json:"story_id,omitempty"`
	StoryFile  string    `json:"story_file,omitempty"`
	PlayerName string    `json:"player_name,omitempty"`

	CurrentPageID storybook.PageID `json:"current_page_id"`
	Inventory     []string         `json:"inventory,omitempty"`
	Stats         map[string]int   `json:"stats,omitempty"`
	Variables     map[string]any   `json:"variables,omitempty"`

	// History is the full path log including revisits. Visited is the
	// first-visit set; the two are deliberately distinct.
	History []storybook.PageID        `json:"history,omitempty"`
	Visited map[storybook.PageID]bool `json:"visited_pages,omitempty"`

	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// NewState runs the session initializer against a story document. Preset
// defaults seed stats and variables, then player-declared starting values
// overwrite same-named entries. The first page's own effects are not
// applied here; they only ever fire through the engine's first-visit rule.
func NewState(doc *storybook.Document) *State {
	s := &State{
		ID:         uuid.New(),
		StoryID:    doc.Metadata.ID,
		PlayerName: doc.Player.Name,
		Stats:      make(map[string]int),
		Variables:  make(map[string]any),
		Inventory:  make([]string, 0),
		Visited:    make(map[storybook.PageID]bool),
		CreatedAt:  time.Now().UTC(),
	}

	for _, preset := range doc.Presets.Stats {
		s.Stats[preset.Name] = preset.Default
	}
	for name, value := range doc.Player.Stats {
		s.Stats[name] = value
	}

	for name, value := range doc.Presets.Variables {
		s.Variables[name] = value
	}
	for name, value := range doc.Player.Variables {
		s.Variables[name] = value
	}

	// startingItems and inventory are alternative spellings, not additive.
	switch {
	case doc.Player.StartingItems != nil:
		s.Inventory = append(s.Inventory, doc.Player.StartingItems...)
	case doc.Player.Inventory != nil:
		s.Inventory = append(s.Inventory, doc.Player.Inventory...)
	}

	pages := doc.Pages()
	if len(pages) > 0 {
		first := pages[0].ID
		s.CurrentPageID = first
		s.History = []storybook.PageID{first}
		s.Visited[first] = true
	}

	return s
}

// Clone returns a deep copy. Save slots and restoration rely on snapshots
// being fully independent of the live state.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	out := &State{
		ID:            s.ID,
		StoryID:       s.StoryID,
		StoryFile:     s.StoryFile,
		PlayerName:    s.PlayerName,
		CurrentPageID: s.CurrentPageID,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}

	if s.Inventory != nil {
		out.Inventory = make([]string, len(s.Inventory))
		copy(out.Inventory, s.Inventory)
	}
	if s.Stats != nil {
		out.Stats = make(map[string]int, len(s.Stats))
		for k, v := range s.Stats {
			out.Stats[k] = v
		}
	}
	if s.Variables != nil {
		out.Variables = make(map[string]any, len(s.Variables))
		for k, v := range s.Variables {
			out.Variables[k] = v
		}
	}
	if s.History != nil {
		out.History = make([]storybook.PageID, len(s.History))
		copy(out.History, s.History)
	}
	if s.Visited != nil {
		out.Visited = make(map[storybook.PageID]bool, len(s.Visited))
		for k, v := range s.Visited {
			out.Visited[k] = v
		}
	}

	return out
}

// HasItem reports whether the item id is in the inventory.
func (s *State) HasItem(id string) bool {
	for _, held := range s.Inventory {
		if held == id {
			return true
		}
	}
	return false
}

// Stat returns the stat value, treating unset stats as 0.
func (s *State) Stat(name string) int {
	return s.Stats[name]
}
