package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <story.json|story.yaml>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	validator := &StoryValidator{}

	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Story file is valid!")
}

type StoryValidator struct {
	errors []string
}

func (v *StoryValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	v.errors = nil

	var doc storybook.Document
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("file %s failed YAML unmarshaling: %w", filename, err)
		}
	case ".json":
		if !json.Valid(data) {
			return fmt.Errorf("file %s contains invalid JSON", filename)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("file %s failed JSON unmarshaling: %w", filename, err)
		}
	default:
		return fmt.Errorf("unsupported story file extension %q", ext)
	}

	v.validateDocument(&doc)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}

	return nil
}

func (v *StoryValidator) validateDocument(doc *storybook.Document) {
	pages := doc.Pages()
	if len(pages) == 0 {
		v.addError("story has no pages")
		return
	}

	byID := make(map[storybook.PageID]*storybook.Page, len(pages))
	for i := range pages {
		page := &pages[i]
		if page.ID.IsZero() {
			v.addError(fmt.Sprintf("page %d has no id", i))
			continue
		}
		if _, dup := byID[page.ID]; dup {
			v.addError(fmt.Sprintf("duplicate page id %q", page.ID))
			continue
		}
		byID[page.ID] = page
	}

	bookmarks := doc.Bookmarks()
	stats := declaredStats(doc)
	items := declaredItems(doc)
	vars := declaredVariables(doc, pages)

	for i := range pages {
		v.validatePage(&pages[i], byID, bookmarks, stats, items, vars)
	}

	v.checkReachability(pages, byID, bookmarks)
}

func (v *StoryValidator) validatePage(page *storybook.Page, byID map[storybook.PageID]*storybook.Page, bookmarks map[string]storybook.PageID, stats, items, vars map[string]bool) {
	where := fmt.Sprintf("page %q", page.ID)

	v.validateEffect(page.PageEffect(), where, stats, items)

	if page.Shop != nil {
		if page.Shop.CurrencyStat == "" {
			v.addError(where + " has a shop with no currencyStat")
		} else if !stats[page.Shop.CurrencyStat] {
			v.addError(fmt.Sprintf("%s shop uses undeclared stat %q", where, page.Shop.CurrencyStat))
		}
		for _, item := range page.Shop.Items {
			if !items[item.ID] {
				v.addError(fmt.Sprintf("%s shop sells undeclared item %q", where, item.ID))
			}
		}
	}

	for i := range page.Choices {
		v.validateChoice(&page.Choices[i], fmt.Sprintf("%s choice %d", where, i), byID, bookmarks, stats, items, vars)
	}
}

func (v *StoryValidator) validateChoice(c *storybook.Choice, where string, byID map[storybook.PageID]*storybook.Page, bookmarks map[string]storybook.PageID, stats, items, vars map[string]bool) {
	hasDestination := false

	if c.ToBookmark != "" {
		hasDestination = true
		if _, ok := bookmarks[c.ToBookmark]; !ok {
			v.addError(fmt.Sprintf("%s targets unknown bookmark %q", where, c.ToBookmark))
		}
	}
	if dest := c.DirectDestination(); !dest.IsZero() {
		hasDestination = true
		v.checkPageRef(dest, where+" destination", byID)
	}

	if c.Combat != nil {
		hasDestination = true
		v.checkPageRef(c.Combat.WinPageID, where+" combat win page", byID)
		v.checkPageRef(c.Combat.LosePageID, where+" combat lose page", byID)
		v.validateEffect(c.Combat.WinEffects, where+" win effects", stats, items)
		v.validateEffect(c.Combat.LoseEffects, where+" lose effects", stats, items)
	}
	if c.Input != nil {
		if !c.Input.FailurePageID.IsZero() {
			v.checkPageRef(c.Input.FailurePageID, where+" input failure page", byID)
		}
		if c.Input.Answer == "" {
			v.addError(where + " has an input with no answer")
		}
	}

	if !hasDestination {
		v.addError(where + " has no destination")
	}

	for _, clause := range c.Clauses() {
		switch clause.Kind {
		case storybook.ClauseItemHeld:
			if !items[clause.Item] {
				v.addError(fmt.Sprintf("%s requires undeclared item %q", where, clause.Item))
			}
		case storybook.ClauseStatBound:
			if !stats[clause.Stat] {
				v.addError(fmt.Sprintf("%s requires undeclared stat %q", where, clause.Stat))
			}
		case storybook.ClauseVarEquals:
			if !vars[clause.Var] {
				v.addError(fmt.Sprintf("%s requires undeclared variable %q", where, clause.Var))
			}
		}
	}

	v.validateEffect(c.Effects, where+" effects", stats, items)
}

func (v *StoryValidator) validateEffect(e *storybook.Effect, where string, stats, items map[string]bool) {
	if e == nil {
		return
	}
	for stat := range e.Stats {
		if !stats[stat] {
			v.addError(fmt.Sprintf("%s changes undeclared stat %q", where, stat))
		}
	}
	for _, item := range e.ItemsAdd {
		if !items[item] {
			v.addError(fmt.Sprintf("%s grants undeclared item %q", where, item))
		}
	}
	for _, item := range e.ItemsRemove {
		if !items[item] {
			v.addError(fmt.Sprintf("%s removes undeclared item %q", where, item))
		}
	}
}

func (v *StoryValidator) checkPageRef(id storybook.PageID, where string, byID map[storybook.PageID]*storybook.Page) {
	if id.IsZero() {
		return
	}
	if _, ok := byID[id]; !ok {
		v.addError(fmt.Sprintf("%s references unknown page %q", where, id))
	}
}

// checkReachability walks choice edges from the first page and reports
// pages nothing links to.
func (v *StoryValidator) checkReachability(pages []storybook.Page, byID map[storybook.PageID]*storybook.Page, bookmarks map[string]storybook.PageID) {
	reached := make(map[storybook.PageID]bool, len(pages))
	queue := []storybook.PageID{pages[0].ID}

	push := func(id storybook.PageID) {
		if !id.IsZero() && !reached[id] {
			if _, ok := byID[id]; ok {
				reached[id] = true
				queue = append(queue, id)
			}
		}
	}
	reached[pages[0].ID] = true

	for len(queue) > 0 {
		page := byID[queue[0]]
		queue = queue[1:]
		if page == nil {
			continue
		}
		for i := range page.Choices {
			c := &page.Choices[i]
			if c.ToBookmark != "" {
				if target, ok := bookmarks[c.ToBookmark]; ok {
					push(target)
				}
			}
			push(c.DirectDestination())
			if c.Combat != nil {
				push(c.Combat.WinPageID)
				push(c.Combat.LosePageID)
			}
			if c.Input != nil {
				push(c.Input.FailurePageID)
			}
		}
	}

	for i := range pages {
		if !pages[i].ID.IsZero() && !reached[pages[i].ID] {
			v.addError(fmt.Sprintf("page %q is unreachable from the first page", pages[i].ID))
		}
	}
}

func declaredStats(doc *storybook.Document) map[string]bool {
	out := make(map[string]bool)
	for _, s := range doc.Presets.Stats {
		out[s.Name] = true
	}
	for name := range doc.Player.Stats {
		out[name] = true
	}
	return out
}

func declaredItems(doc *storybook.Document) map[string]bool {
	out := make(map[string]bool)
	for _, item := range doc.Presets.Items {
		out[item.ID] = true
	}
	return out
}

// declaredVariables collects every variable a session could hold: preset and
// player defaults plus anything an effect writes along the way.
func declaredVariables(doc *storybook.Document, pages []storybook.Page) map[string]bool {
	out := make(map[string]bool)
	for name := range doc.Presets.Variables {
		out[name] = true
	}
	for name := range doc.Player.Variables {
		out[name] = true
	}

	record := func(e *storybook.Effect) {
		if e == nil {
			return
		}
		for name := range e.Variables {
			out[name] = true
		}
	}
	for i := range pages {
		record(pages[i].PageEffect())
		for j := range pages[i].Choices {
			c := &pages[i].Choices[j]
			record(c.Effects)
			if c.Combat != nil {
				record(c.Combat.WinEffects)
				record(c.Combat.LoseEffects)
			}
		}
	}
	return out
}

func (v *StoryValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}
