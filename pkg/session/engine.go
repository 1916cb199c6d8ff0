package session

import (
	"errors"

	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

// ErrEmptyStory is returned when a document normalizes to zero pages; a
// session cannot start from one.
var ErrEmptyStory = errors.New("story has no pages")

// Mode is the engine's suspension state. The engine idles between player
// actions; combat and input choices suspend it until an external
// collaborator supplies a resolution.
type Mode int

const (
	ModeIdle Mode = iota
	ModeAwaitingInput
	ModeAwaitingCombat
)

func (m Mode) String() string {
	switch m {
	case ModeAwaitingInput:
		return "awaiting_input"
	case ModeAwaitingCombat:
		return "awaiting_combat"
	default:
		return "idle"
	}
}

// Engine is the transition state machine over a story document and one
// session state. All play operations are synchronous and run to
// completion; invalid navigation is a silent no-op rather than an error,
// so a defective document can stall a session but never crash it.
type Engine struct {
	doc       *storybook.Document
	pages     []storybook.Page
	byID      map[storybook.PageID]*storybook.Page
	bookmarks map[string]storybook.PageID

	state   *State
	mode    Mode
	pending *storybook.Choice
}

// NewEngine normalizes the document, builds the bookmark registry and
// derives a fresh session state.
func NewEngine(doc *storybook.Document) (*Engine, error) {
	e, err := newEngine(doc)
	if err != nil {
		return nil, err
	}
	e.state = NewState(doc)
	return e, nil
}

// ResumeEngine rebuilds an engine around a previously persisted state.
// Pages and bookmarks are re-derived from the document; the state is
// adopted as-is, with no effects re-applied.
func ResumeEngine(doc *storybook.Document, state *State) (*Engine, error) {
	e, err := newEngine(doc)
	if err != nil {
		return nil, err
	}
	e.state = state
	return e, nil
}

func newEngine(doc *storybook.Document) (*Engine, error) {
	pages := doc.Pages()
	if len(pages) == 0 {
		return nil, ErrEmptyStory
	}

	byID := make(map[storybook.PageID]*storybook.Page, len(pages))
	for i := range pages {
		byID[pages[i].ID] = &pages[i]
	}

	return &Engine{
		doc:       doc,
		pages:     pages,
		byID:      byID,
		bookmarks: doc.Bookmarks(),
	}, nil
}

// Document returns the immutable story document.
func (e *Engine) Document() *storybook.Document { return e.doc }

// State returns the live session state. Callers must treat it as
// read-only; mutation goes through the engine's entry points.
func (e *Engine) State() *State { return e.state }

// Mode returns the current suspension state.
func (e *Engine) Mode() Mode { return e.mode }

// CurrentPage returns the page the session is on, or nil when the current
// id resolves to no page.
func (e *Engine) CurrentPage() *storybook.Page {
	return e.byID[e.state.CurrentPageID]
}

// PageByID looks up a page in the normalized list.
func (e *Engine) PageByID(id storybook.PageID) *storybook.Page {
	return e.byID[id]
}

// PageByBookmark resolves a named anchor to its page.
func (e *Engine) PageByBookmark(name string) *storybook.Page {
	id, ok := e.bookmarks[name]
	if !ok {
		return nil
	}
	return e.byID[id]
}

// Choices returns the current page's outgoing choices.
func (e *Engine) Choices() []storybook.Choice {
	page := e.CurrentPage()
	if page == nil {
		return nil
	}
	return page.Choices
}

// EvaluateChoice reports whether the choice is currently available, with
// human-readable descriptions of any unmet requirements.
func (e *Engine) EvaluateChoice(c *storybook.Choice) (bool, []string) {
	return Evaluate(c, e.state)
}

// IsEnding reports whether the current page terminates the story.
func (e *Engine) IsEnding() bool {
	page := e.CurrentPage()
	return page != nil && page.IsEnding()
}

// EndingKind returns the current page's ending type, empty when the page
// is not an ending.
func (e *Engine) EndingKind() string {
	page := e.CurrentPage()
	if page == nil {
		return ""
	}
	return page.EndingKind()
}

// CanSave reports whether saving is permitted. Hard endings forbid it.
func (e *Engine) CanSave() bool {
	return e.EndingKind() != storybook.EndingHard
}

// MakeChoice drives one navigation event. Combat and input choices suspend
// the engine and mutate nothing until resolved; all other choices advance
// immediately. An unresolved or nonexistent destination is a silent no-op.
func (e *Engine) MakeChoice(c *storybook.Choice) {
	if e.mode != ModeIdle || c == nil {
		return
	}

	if c.Combat != nil {
		e.mode = ModeAwaitingCombat
		e.pending = c
		return
	}
	if c.Input != nil {
		e.mode = ModeAwaitingInput
		e.pending = c
		return
	}

	e.advance(e.destinationFor(c, nil), c.Effects, true)
}

// ResolveInput completes a suspended input puzzle. The collaborator checks
// the typed answer and reports only correctness; an incorrect answer
// redirects to the failure page when one is defined and skips the choice's
// own effects.
func (e *Engine) ResolveInput(correct bool) {
	if e.mode != ModeAwaitingInput || e.pending == nil {
		return
	}
	c := e.pending
	e.mode = ModeIdle
	e.pending = nil

	e.advance(e.destinationFor(c, &correct), c.Effects, correct)
}

// ResolveCombat completes a suspended combat encounter. Combat is
// adjudicated entirely outside the engine: the collaborator supplies the
// outcome and the final stats, which overwrite the session's stats before
// the win/lose redirect. This is a trust boundary, not ordinary effect
// application.
func (e *Engine) ResolveCombat(won bool, finalStats map[string]int) {
	if e.mode != ModeAwaitingCombat || e.pending == nil {
		return
	}
	c := e.pending
	e.mode = ModeIdle
	e.pending = nil

	if finalStats != nil {
		e.SetStats(finalStats)
	}

	dest := c.Combat.LosePageID
	effects := c.Combat.LoseEffects
	if won {
		dest = c.Combat.WinPageID
		effects = c.Combat.WinEffects
	}
	e.advance(dest, effects, true)
}

// PendingCombat returns the suspended combat descriptor, nil unless the
// engine is awaiting a combat resolution.
func (e *Engine) PendingCombat() *storybook.Combat {
	if e.mode != ModeAwaitingCombat || e.pending == nil {
		return nil
	}
	return e.pending.Combat
}

// PendingInput returns the suspended input descriptor, nil unless the
// engine is awaiting an input resolution.
func (e *Engine) PendingInput() *storybook.Input {
	if e.mode != ModeAwaitingInput || e.pending == nil {
		return nil
	}
	return e.pending.Input
}

// Abandon discards a suspended combat or input dialog, leaving the state
// untouched, as if MakeChoice had never been called.
func (e *Engine) Abandon() {
	e.mode = ModeIdle
	e.pending = nil
}

// destinationFor resolves a choice's destination id by priority: bookmark
// redirect, then input-failure redirect, then the direct page id.
func (e *Engine) destinationFor(c *storybook.Choice, inputCorrect *bool) storybook.PageID {
	if c.ToBookmark != "" {
		return e.bookmarks[c.ToBookmark]
	}
	if c.Input != nil && inputCorrect != nil && !*inputCorrect && !c.Input.FailurePageID.IsZero() {
		return c.Input.FailurePageID
	}
	return c.DirectDestination()
}

// advance is the single mutation path for navigation. Page effects fire
// only on the first visit; choice effects fire only on a successful
// outcome. History always grows, even on revisits.
func (e *Engine) advance(dest storybook.PageID, choiceEffects *storybook.Effect, success bool) {
	if dest.IsZero() {
		return
	}
	page, ok := e.byID[dest]
	if !ok {
		return
	}

	firstVisit := !e.state.Visited[dest]
	if e.state.Visited == nil {
		e.state.Visited = make(map[storybook.PageID]bool)
	}
	e.state.Visited[dest] = true

	if success {
		applyEffect(e.state, choiceEffects)
	}
	if firstVisit {
		applyEffect(e.state, page.PageEffect())
	}

	e.state.History = append(e.state.History, dest)
	e.state.CurrentPageID = dest
}

// JumpToPage repositions the session onto a page already in its history,
// truncating the history at that page's most recent occurrence. It never
// applies effects and never touches the visited set; loading a story,
// walking into a page and jumping back must not replay anything.
func (e *Engine) JumpToPage(id storybook.PageID) {
	if e.mode != ModeIdle {
		return
	}
	for i := len(e.state.History) - 1; i >= 0; i-- {
		if e.state.History[i] == id {
			e.state.History = e.state.History[:i+1]
			e.state.CurrentPageID = id
			return
		}
	}
}

// Restart discards the session state and re-runs the initializer against
// the same document. The session identity and creation time survive so a
// restarted session stays addressable.
func (e *Engine) Restart() {
	id := e.state.ID
	file := e.state.StoryFile
	created := e.state.CreatedAt

	e.state = NewState(e.doc)
	e.state.ID = id
	e.state.StoryFile = file
	e.state.CreatedAt = created
	e.mode = ModeIdle
	e.pending = nil
}

// SetStats replaces the stats map wholesale. This is the narrow
// externally-adjudicated overwrite used by combat collaborators.
func (e *Engine) SetStats(stats map[string]int) {
	replaced := make(map[string]int, len(stats))
	for k, v := range stats {
		replaced[k] = v
	}
	e.state.Stats = replaced
}

// SetStat is the explicit single-stat editing entry point.
func (e *Engine) SetStat(name string, value int) {
	if e.state.Stats == nil {
		e.state.Stats = make(map[string]int)
	}
	e.state.Stats[name] = value
}

// SetVariable is the explicit variable editing entry point.
func (e *Engine) SetVariable(name string, value any) {
	if e.state.Variables == nil {
		e.state.Variables = make(map[string]any)
	}
	e.state.Variables[name] = value
}

// Purchase buys an item from the current page's shop, deducting its price
// from the currency stat. Reports false without mutating when the page has
// no shop, the item is not stocked, the player already holds it, or funds
// are short. Unlike effect deltas, a purchase requires the full price.
func (e *Engine) Purchase(itemID string) bool {
	page := e.CurrentPage()
	if page == nil || page.Shop == nil || e.mode != ModeIdle {
		return false
	}

	for _, entry := range page.Shop.Items {
		if entry.ID != itemID {
			continue
		}
		if e.state.HasItem(itemID) {
			return false
		}
		if e.state.Stat(page.Shop.CurrencyStat) < entry.Price {
			return false
		}
		applyEffect(e.state, &storybook.Effect{
			Stats:    map[string]int{page.Shop.CurrencyStat: -entry.Price},
			ItemsAdd: []string{itemID},
		})
		return true
	}
	return false
}
