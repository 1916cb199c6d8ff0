package storybook

// Metadata identifies a story. The ID scopes save data; cross-story
// isolation of save slots is the caller's responsibility.
type Metadata struct {
	ID     string `json:"id" yaml:"id"`
	Title  string `json:"title" yaml:"title"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// StatPreset declares a stat with its starting default. Min and Max are
// authoring guidance only; the engine never clamps at runtime.
type StatPreset struct {
	Name    string `json:"name" yaml:"name"`
	Min     int    `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int    `json:"max,omitempty" yaml:"max,omitempty"`
	Default int    `json:"default,omitempty" yaml:"default,omitempty"`
}

// Item is a catalog entry referenced by inventory ids.
type Item struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Price       int    `json:"price,omitempty" yaml:"price,omitempty"`
}

// Enemy is a catalog entry for combat encounters. Combat itself is
// adjudicated outside the engine; these numbers feed the adjudicator.
type Enemy struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Skill       int    `json:"skill,omitempty" yaml:"skill,omitempty"`
	Stamina     int    `json:"stamina,omitempty" yaml:"stamina,omitempty"`
}

// CharacterProfile is a pre-built player character authors can offer at
// session creation.
type CharacterProfile struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Stats       map[string]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	Items       []string       `json:"items,omitempty" yaml:"items,omitempty"`
}

// Presets hold the author-declared catalogs and defaults.
type Presets struct {
	Stats      []StatPreset       `json:"stats,omitempty" yaml:"stats,omitempty"`
	Variables  map[string]any     `json:"variables,omitempty" yaml:"variables,omitempty"`
	Characters []CharacterProfile `json:"characters,omitempty" yaml:"characters,omitempty"`
	Items      []Item             `json:"items,omitempty" yaml:"items,omitempty"`
	Enemies    []Enemy            `json:"enemies,omitempty" yaml:"enemies,omitempty"`
}

// PlayerConfig is the author-declared starting configuration for a session.
// StartingItems and Inventory are alternative spellings from different
// document generations, not additive.
type PlayerConfig struct {
	Mode          string         `json:"mode,omitempty" yaml:"mode,omitempty"`
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Stats         map[string]int `json:"stats,omitempty" yaml:"stats,omitempty"`
	Variables     map[string]any `json:"variables,omitempty" yaml:"variables,omitempty"`
	StartingItems []string       `json:"startingItems,omitempty" yaml:"startingItems,omitempty"`
	Inventory     []string       `json:"inventory,omitempty" yaml:"inventory,omitempty"`
}

// Section is the legacy page container. Older documents nest narrative
// content in "sections" instead of a flat "pages" array.
type Section struct {
	ID       PageID   `json:"id" yaml:"id"`
	Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
	Title    string   `json:"title,omitempty" yaml:"title,omitempty"`
	Text     string   `json:"text,omitempty" yaml:"text,omitempty"`
	Image    string   `json:"image,omitempty" yaml:"image,omitempty"`
	Bookmark string   `json:"bookmark,omitempty" yaml:"bookmark,omitempty"`
	Choices  []Choice `json:"choices,omitempty" yaml:"choices,omitempty"`
	Effects  *Effect  `json:"effects,omitempty" yaml:"effects,omitempty"`
	Ending   string   `json:"ending,omitempty" yaml:"ending,omitempty"`
}

// Document is an author-authored story. It is immutable during play; the
// engine only ever reads it.
type Document struct {
	Metadata Metadata     `json:"metadata" yaml:"metadata"`
	Presets  Presets      `json:"presets,omitempty" yaml:"presets,omitempty"`
	RawPages []Page       `json:"pages,omitempty" yaml:"pages,omitempty"`
	Sections []Section    `json:"sections,omitempty" yaml:"sections,omitempty"`
	Player   PlayerConfig `json:"player,omitempty" yaml:"player,omitempty"`
}

// FindItem looks up a catalog item by id.
func (d *Document) FindItem(id string) (Item, bool) {
	for _, it := range d.Presets.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// FindEnemy looks up an enemy by id.
func (d *Document) FindEnemy(id string) (Enemy, bool) {
	for _, e := range d.Presets.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return Enemy{}, false
}

// FindCharacter looks up a character profile by id.
func (d *Document) FindCharacter(id string) (CharacterProfile, bool) {
	for _, c := range d.Presets.Characters {
		if c.ID == id {
			return c, true
		}
	}
	return CharacterProfile{}, false
}
