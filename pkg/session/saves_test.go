package session

import (
	"reflect"
	"strings"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	e := newTestEngine(t)
	e.MakeChoice(&e.Choices()[0]) // into 2, effects fire

	slot, err := e.Save(1, "before the troll")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	atSave := e.State().Clone()

	// Keep playing, then restore.
	e.MakeChoice(&e.Choices()[0]) // into 3
	e.LoadSave(slot)

	if !reflect.DeepEqual(atSave, e.State()) {
		t.Errorf("load must reproduce the state at save time:\nwant %+v\ngot  %+v", atSave, e.State())
	}
}

func TestSave_SnapshotIsIndependent(t *testing.T) {
	e := newTestEngine(t)
	slot, err := e.Save(2, "fresh")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	e.MakeChoice(&e.Choices()[0]) // mutate live state

	if slot.State.CurrentPageID != "1" {
		t.Error("slot snapshot should not track the live state")
	}
	if len(slot.State.Inventory) != 0 {
		t.Errorf("snapshot inventory changed: %v", slot.State.Inventory)
	}
}

func TestSave_Metadata(t *testing.T) {
	e := newTestEngine(t)
	slot, err := e.Save(1, "start")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if slot.StoryTitle != "Cavern of Trials" {
		t.Errorf("unexpected story title %q", slot.StoryTitle)
	}
	if !strings.HasPrefix("You wake at the cavern mouth.", slot.Preview) || slot.Preview == "" {
		t.Errorf("preview should be a prefix of the page text, got %q", slot.Preview)
	}
	if slot.SavedAt.IsZero() {
		t.Error("saved-at timestamp should be set")
	}
}

func TestSave_PreviewTruncation(t *testing.T) {
	e := newTestEngine(t)
	long := strings.Repeat("troll ", 40)
	e.byID["1"].Text = long

	slot, err := e.Save(1, "long page")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if got := len([]rune(slot.Preview)); got != previewLength {
		t.Errorf("preview should truncate to %d runes, got %d", previewLength, got)
	}
}

func TestSave_DisallowedOnHardEnding(t *testing.T) {
	e := newTestEngine(t)
	e.MakeChoice(&e.Choices()[0])
	e.MakeChoice(&e.Choices()[0]) // at 3
	e.MakeChoice(&e.Choices()[0])
	e.ResolveCombat(false, nil) // hard ending

	if _, err := e.Save(1, "doomed"); err != ErrSaveAtHardEnding {
		t.Errorf("expected ErrSaveAtHardEnding, got %v", err)
	}
}

func TestLoadSave_NilIsNoOp(t *testing.T) {
	e := newTestEngine(t)
	before := e.State().Clone()

	e.LoadSave(nil)
	e.LoadSave(&SaveSlot{Slot: 1})

	if !reflect.DeepEqual(before, e.State()) {
		t.Error("loading an empty slot must not change the state")
	}
}

func TestNextSlot(t *testing.T) {
	tests := []struct {
		name     string
		occupied []int
		want     int
	}{
		{"all free", nil, 1},
		{"lowest gap", []int{1, 2, 4}, 3},
		{"tail free", []int{1, 2, 3, 4}, 5},
		{"all occupied defaults to one", []int{1, 2, 3, 4, 5}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var existing []SaveSlot
			for _, id := range tt.occupied {
				existing = append(existing, SaveSlot{Slot: id})
			}
			if got := NextSlot(existing); got != tt.want {
				t.Errorf("NextSlot() = %d, want %d", got, tt.want)
			}
		})
	}
}
