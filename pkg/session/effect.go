package session

import "github.com/jwebster45206/gamebook-engine/pkg/storybook"

// applyEffect mutates the state per the effect semantics: stat deltas are
// additive and unclamped, variables are literal overwrites, item adds are
// idempotent and removals of absent items are no-ops. Only the engine calls
// this; effects reach the state through no other path.
func applyEffect(s *State, e *storybook.Effect) {
	if e.IsEmpty() {
		return
	}

	for name, delta := range e.Stats {
		if s.Stats == nil {
			s.Stats = make(map[string]int)
		}
		s.Stats[name] += delta
	}

	for name, value := range e.Variables {
		if s.Variables == nil {
			s.Variables = make(map[string]any)
		}
		s.Variables[name] = value
	}

	for _, item := range e.ItemsAdd {
		if !s.HasItem(item) {
			s.Inventory = append(s.Inventory, item)
		}
	}

	for _, item := range e.ItemsRemove {
		for i, held := range s.Inventory {
			if held == item {
				s.Inventory = append(s.Inventory[:i], s.Inventory[i+1:]...)
				break
			}
		}
	}
}
