package session

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

var titleCaser = cases.Title(language.English)

// Evaluate decides whether a choice can currently be taken. Evaluation is
// conjunctive across every clause of every predicate schema present on the
// choice. The returned hints describe each unmet clause for rendering
// locked choices; they never affect the boolean result.
func Evaluate(c *storybook.Choice, s *State) (bool, []string) {
	var unmet []string

	for _, clause := range c.Clauses() {
		if pass, hint := evaluateClause(clause, s); !pass {
			unmet = append(unmet, hint)
		}
	}

	return len(unmet) == 0, unmet
}

func evaluateClause(cl storybook.Clause, s *State) (bool, string) {
	switch cl.Kind {
	case storybook.ClauseItemHeld:
		if s.HasItem(cl.Item) {
			return true, ""
		}
		return false, fmt.Sprintf("Requires %s", displayName(cl.Item))

	case storybook.ClauseStatBound:
		value := s.Stat(cl.Stat)
		if cl.GTE != nil && value < *cl.GTE {
			return false, fmt.Sprintf("Requires %s %d or higher", displayName(cl.Stat), *cl.GTE)
		}
		if cl.LTE != nil && value > *cl.LTE {
			return false, fmt.Sprintf("Requires %s %d or lower", displayName(cl.Stat), *cl.LTE)
		}
		return true, ""

	case storybook.ClauseVarEquals:
		if valuesEqual(s.Variables[cl.Var], cl.Want) {
			return true, ""
		}
		return false, fmt.Sprintf("Requires %s to be %v", displayName(cl.Var), cl.Want)
	}

	return true, ""
}

// valuesEqual compares variable literals by value. Numeric kinds are
// normalized first so a document literal 5 matches a session value 5.0
// regardless of which decoder produced which.
func valuesEqual(got, want any) bool {
	if gf, gok := asFloat(got); gok {
		wf, wok := asFloat(want)
		return wok && gf == wf
	}
	return got == want
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// displayName turns a machine id like "rusty_key" into "Rusty Key".
func displayName(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}
