package storybook

import "strings"

// Ending markers. A page with zero choices is also an ending even without
// an explicit marker (soft by default).
const (
	EndingSoft = "soft"
	EndingHard = "hard"
)

// StatChange is the legacy per-page stat mutator.
type StatChange struct {
	Stat  string `json:"stat" yaml:"stat"`
	Delta int    `json:"delta" yaml:"delta"`
}

// Page is a node in the story graph. Pages are read-only during play.
type Page struct {
	ID       PageID   `json:"id" yaml:"id"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text     string   `json:"text" yaml:"text"`
	Image    string   `json:"image,omitempty" yaml:"image,omitempty"`
	Bookmark string   `json:"bookmark,omitempty" yaml:"bookmark,omitempty"`
	Choices  []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Effects  *Effect  `json:"effects,omitempty" yaml:"effects,omitempty"`
	Ending   string   `json:"ending,omitempty" yaml:"ending,omitempty"`
	Shop     *Shop    `json:"shop,omitempty" yaml:"shop,omitempty"`

	// Legacy per-page mutators, superseded by Effects.
	AddItems    []string     `json:"addItems,omitempty" yaml:"addItems,omitempty"`
	RemoveItems []string     `json:"removeItems,omitempty" yaml:"removeItems,omitempty"`
	StatChanges []StatChange `json:"statChanges,omitempty" yaml:"statChanges,omitempty"`
}

// IsEnding reports whether the page terminates the story, either through an
// explicit marker or by having no outgoing choices.
func (p *Page) IsEnding() bool {
	return p.Ending != "" || len(p.Choices) == 0
}

// EndingKind returns the ending type, defaulting to soft when the page is an
// ending only by virtue of having zero choices. Empty for non-ending pages.
func (p *Page) EndingKind() string {
	if p.Ending != "" {
		return p.Ending
	}
	if len(p.Choices) == 0 {
		return EndingSoft
	}
	return ""
}

// StatBound is a gte/lte window over a single stat.
type StatBound struct {
	GTE *int `json:"gte,omitempty" yaml:"gte,omitempty"`
	LTE *int `json:"lte,omitempty" yaml:"lte,omitempty"`
}

// ConditionSet is the object-form eligibility predicate. Both the
// "conditions" and "requires" document fields decode into this shape.
type ConditionSet struct {
	Items     []string             `json:"items,omitempty" yaml:"items,omitempty"`
	Stats     map[string]StatBound `json:"stats,omitempty" yaml:"stats,omitempty"`
	Variables map[string]any       `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// StatRequirement is the legacy scalar stat predicate; Min behaves as gte.
type StatRequirement struct {
	Name string `json:"name" yaml:"name"`
	Min  int    `json:"min" yaml:"min"`
}

// Combat describes an externally adjudicated encounter. The engine treats
// it as a choice with two possible resolved destinations.
type Combat struct {
	EnemyID     string  `json:"enemyId" yaml:"enemyId"`
	WinPageID   PageID  `json:"winPageId,omitempty" yaml:"winPageId,omitempty"`
	LosePageID  PageID  `json:"losePageId,omitempty" yaml:"losePageId,omitempty"`
	WinEffects  *Effect `json:"winEffects,omitempty" yaml:"winEffects,omitempty"`
	LoseEffects *Effect `json:"loseEffects,omitempty" yaml:"loseEffects,omitempty"`
}

// Input describes a typed-answer puzzle. The collaborator checks the answer
// and reports only correct/incorrect back to the engine.
type Input struct {
	Prompt        string `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Answer        string `json:"answer" yaml:"answer"`
	FailurePageID PageID `json:"failurePageId,omitempty" yaml:"failurePageId,omitempty"`
}

// Matches checks a typed answer, ignoring case and surrounding whitespace.
func (i *Input) Matches(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(i.Answer))
}

// ShopItem is a purchasable entry on a shop page.
type ShopItem struct {
	ID    string `json:"id" yaml:"id"`
	Price int    `json:"price" yaml:"price"`
}

// Shop configures a page where items can be bought with a currency stat.
type Shop struct {
	CurrencyStat string     `json:"currencyStat" yaml:"currencyStat"`
	Items        []ShopItem `json:"items,omitempty" yaml:"items,omitempty"`
}

// Choice is an edge from a page to a destination, optionally gated and/or
// effectful. The destination is expressed in exactly one of several ways:
// a direct page id (NextPageID, or legacy To), a bookmark, or a
// combat/input outcome redirect.
type Choice struct {
	Text       string `json:"text" yaml:"text"`
	NextPageID PageID `json:"nextPageId,omitempty" yaml:"nextPageId,omitempty"`
	To         PageID `json:"to,omitempty" yaml:"to,omitempty"`
	ToBookmark string `json:"toBookmark,omitempty" yaml:"toBookmark,omitempty"`

	Effects *Effect `json:"effects,omitempty" yaml:"effects,omitempty"`

	// Eligibility predicates across three schema generations. All present
	// sources apply conjunctively.
	RequiresItem string           `json:"requiresItem,omitempty" yaml:"requiresItem,omitempty"`
	RequiresStat *StatRequirement `json:"requiresStat,omitempty" yaml:"requiresStat,omitempty"`
	Conditions   *ConditionSet    `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Requires     *ConditionSet    `json:"requires,omitempty" yaml:"requires,omitempty"`

	Combat *Combat `json:"combat,omitempty" yaml:"combat,omitempty"`
	Input  *Input  `json:"input,omitempty" yaml:"input,omitempty"`
}

// DirectDestination returns the plain destination id, preferring the modern
// field over the legacy one. Zero when the choice routes only through a
// bookmark or a combat/input outcome.
func (c *Choice) DirectDestination() PageID {
	if !c.NextPageID.IsZero() {
		return c.NextPageID
	}
	return c.To
}
