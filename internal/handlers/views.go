package handlers

import (
	"github.com/jwebster45206/gamebook-engine/pkg/session"
	"github.com/jwebster45206/gamebook-engine/pkg/storybook"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// InputView exposes an input puzzle to clients without leaking the answer.
type InputView struct {
	Prompt        string `json:"prompt,omitempty"`
	HasFailure    bool   `json:"has_failure"`
	FailurePageID string `json:"failure_page_id,omitempty"`
}

// CombatView pairs the combat descriptor with the resolved enemy so the
// adjudicating client has everything it needs.
type CombatView struct {
	Enemy      *storybook.Enemy `json:"enemy,omitempty"`
	WinPageID  string           `json:"win_page_id,omitempty"`
	LosePageID string           `json:"lose_page_id,omitempty"`
}

// ChoiceView is one outgoing choice with its current eligibility.
type ChoiceView struct {
	Index     int         `json:"index"`
	Text      string      `json:"text"`
	Available bool        `json:"available"`
	Hints     []string    `json:"hints,omitempty"`
	Combat    *CombatView `json:"combat,omitempty"`
	Input     *InputView  `json:"input,omitempty"`
}

// PageView is the renderable slice of the current page.
type PageView struct {
	ID       string          `json:"id"`
	Title    string          `json:"title,omitempty"`
	Text     string          `json:"text"`
	Image    string          `json:"image,omitempty"`
	Bookmark string          `json:"bookmark,omitempty"`
	Shop     *storybook.Shop `json:"shop,omitempty"`
}

// SessionView is the full response shape for session endpoints.
type SessionView struct {
	SessionID  string         `json:"session_id"`
	StoryID    string         `json:"story_id,omitempty"`
	StoryTitle string         `json:"story_title,omitempty"`
	Page       *PageView      `json:"page,omitempty"`
	Choices    []ChoiceView   `json:"choices"`
	State      *session.State `json:"state"`
	IsEnding   bool           `json:"is_ending"`
	EndingKind string         `json:"ending_kind,omitempty"`
	CanSave    bool           `json:"can_save"`
}

// NewSessionView assembles the client view from an engine.
func NewSessionView(e *session.Engine) *SessionView {
	doc := e.Document()
	view := &SessionView{
		SessionID:  e.State().ID.String(),
		StoryID:    doc.Metadata.ID,
		StoryTitle: doc.Metadata.Title,
		State:      e.State(),
		Choices:    []ChoiceView{},
		IsEnding:   e.IsEnding(),
		EndingKind: e.EndingKind(),
		CanSave:    e.CanSave(),
	}

	page := e.CurrentPage()
	if page == nil {
		return view
	}

	view.Page = &PageView{
		ID:       page.ID.String(),
		Title:    page.Title,
		Text:     page.Text,
		Image:    page.Image,
		Bookmark: page.Bookmark,
		Shop:     page.Shop,
	}

	for i := range page.Choices {
		c := &page.Choices[i]
		available, hints := e.EvaluateChoice(c)
		cv := ChoiceView{
			Index:     i,
			Text:      c.Text,
			Available: available,
			Hints:     hints,
		}
		if c.Combat != nil {
			combat := &CombatView{
				WinPageID:  c.Combat.WinPageID.String(),
				LosePageID: c.Combat.LosePageID.String(),
			}
			if enemy, ok := doc.FindEnemy(c.Combat.EnemyID); ok {
				combat.Enemy = &enemy
			}
			cv.Combat = combat
		}
		if c.Input != nil {
			cv.Input = &InputView{
				Prompt:        c.Input.Prompt,
				HasFailure:    !c.Input.FailurePageID.IsZero(),
				FailurePageID: c.Input.FailurePageID.String(),
			}
		}
		view.Choices = append(view.Choices, cv)
	}

	return view
}
