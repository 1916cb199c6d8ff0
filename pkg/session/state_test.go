package session

import (
	"reflect"
	"testing"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

func TestNewState_PlayerValuesOverridePresets(t *testing.T) {
	doc := &storybook.Document{
		Presets: storybook.Presets{
			Stats: []storybook.StatPreset{
				{Name: "SKILL", Default: 7},
				{Name: "LUCK", Default: 9},
			},
			Variables: map[string]any{"torch_lit": false, "visited_inn": false},
		},
		Player: storybook.PlayerConfig{
			Name:      "Aster",
			Stats:     map[string]int{"SKILL": 10},
			Variables: map[string]any{"torch_lit": true},
		},
		RawPages: []storybook.Page{{ID: "1", Text: "start"}},
	}

	s := NewState(doc)

	if s.Stats["SKILL"] != 10 {
		t.Errorf("player stat should override preset default, got %d", s.Stats["SKILL"])
	}
	if s.Stats["LUCK"] != 9 {
		t.Errorf("untouched preset default should survive, got %d", s.Stats["LUCK"])
	}
	if got, _ := s.Variables["torch_lit"].(bool); !got {
		t.Error("player variable should override preset")
	}
	if got, _ := s.Variables["visited_inn"].(bool); got {
		t.Error("untouched preset variable should survive")
	}
	if s.PlayerName != "Aster" {
		t.Errorf("expected player name Aster, got %q", s.PlayerName)
	}
}

func TestNewState_InventoryAlternatives(t *testing.T) {
	tests := []struct {
		name   string
		player storybook.PlayerConfig
		want   []string
	}{
		{"startingItems wins", storybook.PlayerConfig{StartingItems: []string{"sword"}, Inventory: []string{"rope"}}, []string{"sword"}},
		{"inventory fallback", storybook.PlayerConfig{Inventory: []string{"rope"}}, []string{"rope"}},
		{"neither", storybook.PlayerConfig{}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &storybook.Document{
				Player:   tt.player,
				RawPages: []storybook.Page{{ID: "1", Text: "start"}},
			}
			s := NewState(doc)
			if !reflect.DeepEqual(s.Inventory, tt.want) {
				t.Errorf("inventory = %v, want %v", s.Inventory, tt.want)
			}
		})
	}
}

func TestNewState_FirstPageSeedsEverything(t *testing.T) {
	doc := &storybook.Document{
		RawPages: []storybook.Page{
			{
				ID:   "1",
				Text: "start",
				// First-page effects must NOT fire at init.
				Effects: &storybook.Effect{Stats: map[string]int{"SKILL": 99}},
			},
			{ID: "2", Text: "later"},
		},
	}

	s := NewState(doc)
	if s.CurrentPageID != "1" {
		t.Errorf("current page should be the first page, got %v", s.CurrentPageID)
	}
	if !reflect.DeepEqual(s.History, []storybook.PageID{"1"}) {
		t.Errorf("history should hold only the first page, got %v", s.History)
	}
	if !s.Visited["1"] {
		t.Error("first page should be seeded as visited")
	}
	if s.Stats["SKILL"] != 0 {
		t.Errorf("first page effects must not apply at init, SKILL = %d", s.Stats["SKILL"])
	}
}

func TestNewState_EmptyDocument(t *testing.T) {
	s := NewState(&storybook.Document{})
	if !s.CurrentPageID.IsZero() {
		t.Errorf("empty story should leave the current page unset, got %v", s.CurrentPageID)
	}
	if len(s.History) != 0 {
		t.Errorf("empty story should have no history, got %v", s.History)
	}
}

func TestState_CloneIsIndependent(t *testing.T) {
	doc := &storybook.Document{
		Presets:  storybook.Presets{Stats: []storybook.StatPreset{{Name: "SKILL", Default: 7}}},
		Player:   storybook.PlayerConfig{StartingItems: []string{"sword"}},
		RawPages: []storybook.Page{{ID: "1", Text: "start"}},
	}
	s := NewState(doc)
	s.Variables["seen"] = true

	c := s.Clone()
	if !reflect.DeepEqual(s, c) {
		t.Fatal("clone should be deep-equal to the original")
	}

	c.Stats["SKILL"] = 1
	c.Inventory[0] = "dagger"
	c.Variables["seen"] = false
	c.History = append(c.History, "2")
	c.Visited["2"] = true

	if s.Stats["SKILL"] != 7 || s.Inventory[0] != "sword" {
		t.Error("mutating the clone must not touch the original")
	}
	if got, _ := s.Variables["seen"].(bool); !got {
		t.Error("clone shares the variables map")
	}
	if len(s.History) != 1 || s.Visited["2"] {
		t.Error("clone shares history or visited set")
	}
}
