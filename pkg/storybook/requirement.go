package storybook

import "sort"

// ClauseKind discriminates the canonical predicate variants.
type ClauseKind int

const (
	// ClauseItemHeld passes when the item id is in the session inventory.
	ClauseItemHeld ClauseKind = iota
	// ClauseStatBound passes when the stat value satisfies the gte/lte
	// window. An unset stat reads as 0, never as unknown.
	ClauseStatBound
	// ClauseVarEquals passes when the session variable strictly equals the
	// expected literal.
	ClauseVarEquals
)

// Clause is the canonical eligibility predicate all three document schemas
// translate into. The evaluator only ever sees this form.
type Clause struct {
	Kind ClauseKind

	Item string // ClauseItemHeld

	Stat string // ClauseStatBound
	GTE  *int
	LTE  *int

	Var  string // ClauseVarEquals
	Want any
}

// Clauses translates every eligibility predicate present on the choice into
// the canonical clause list. Absent sources contribute nothing; every
// returned clause must pass for the choice to be available. Map-backed
// sources are emitted in sorted key order so the list is deterministic.
func (c *Choice) Clauses() []Clause {
	var out []Clause

	if c.RequiresItem != "" {
		out = append(out, Clause{Kind: ClauseItemHeld, Item: c.RequiresItem})
	}
	if c.RequiresStat != nil {
		min := c.RequiresStat.Min
		out = append(out, Clause{Kind: ClauseStatBound, Stat: c.RequiresStat.Name, GTE: &min})
	}

	out = appendConditionSet(out, c.Conditions)
	out = appendConditionSet(out, c.Requires)
	return out
}

func appendConditionSet(out []Clause, cs *ConditionSet) []Clause {
	if cs == nil {
		return out
	}

	for _, item := range cs.Items {
		out = append(out, Clause{Kind: ClauseItemHeld, Item: item})
	}

	for _, stat := range sortedKeys(cs.Stats) {
		bound := cs.Stats[stat]
		cl := Clause{Kind: ClauseStatBound, Stat: stat}
		if bound.GTE != nil {
			v := *bound.GTE
			cl.GTE = &v
		}
		if bound.LTE != nil {
			v := *bound.LTE
			cl.LTE = &v
		}
		out = append(out, cl)
	}

	for _, name := range sortedKeys(cs.Variables) {
		out = append(out, Clause{Kind: ClauseVarEquals, Var: name, Want: cs.Variables[name]})
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
