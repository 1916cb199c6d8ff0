package storybook

// Effect is a deterministic mutation descriptor. Stat entries are signed
// deltas, variable entries are literal overwrites, and the item lists are
// set additions/removals.
type Effect struct {
	Stats       map[string]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	Variables   map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	ItemsAdd    []string       `json:"itemsAdd,omitempty" yaml:"itemsAdd,omitempty"`
	ItemsRemove []string       `json:"itemsRemove,omitempty" yaml:"itemsRemove,omitempty"`
}

// IsEmpty reports whether the effect changes nothing.
func (e *Effect) IsEmpty() bool {
	return e == nil || (len(e.Stats) == 0 &&
		len(e.Variables) == 0 &&
		len(e.ItemsAdd) == 0 &&
		len(e.ItemsRemove) == 0)
}

// PageEffect folds a page's modern effects object and its legacy mutators
// (addItems, removeItems, statChanges) into one canonical Effect. Returns
// nil when the page mutates nothing.
func (p *Page) PageEffect() *Effect {
	if p.Effects.IsEmpty() && len(p.AddItems) == 0 && len(p.RemoveItems) == 0 && len(p.StatChanges) == 0 {
		return nil
	}

	out := &Effect{}
	if p.Effects != nil {
		if len(p.Effects.Stats) > 0 {
			out.Stats = make(map[string]int, len(p.Effects.Stats))
			for k, v := range p.Effects.Stats {
				out.Stats[k] = v
			}
		}
		if len(p.Effects.Variables) > 0 {
			out.Variables = make(map[string]any, len(p.Effects.Variables))
			for k, v := range p.Effects.Variables {
				out.Variables[k] = v
			}
		}
		out.ItemsAdd = append(out.ItemsAdd, p.Effects.ItemsAdd...)
		out.ItemsRemove = append(out.ItemsRemove, p.Effects.ItemsRemove...)
	}

	out.ItemsAdd = append(out.ItemsAdd, p.AddItems...)
	out.ItemsRemove = append(out.ItemsRemove, p.RemoveItems...)
	for _, sc := range p.StatChanges {
		if out.Stats == nil {
			out.Stats = make(map[string]int, len(p.StatChanges))
		}
		out.Stats[sc.Stat] += sc.Delta
	}

	return out
}
