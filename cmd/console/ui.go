package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jwebster45206/gamebook-engine/internal/handlers"
	"github.com/jwebster45206/gamebook-engine/pkg/session"
)

const placeholderText = "Choice number or /command..."

// ConsoleUI is the BubbleTea model that runs the player.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config    *ConsoleConfig
	api       *apiClient
	rng       *rand.Rand
	view      *handlers.SessionView
	pageVp    viewport.Model
	metaVp    viewport.Model
	input     textinput.Model
	ready     bool
	width     int
	height    int
	err       error
	loading   bool
	statusMsg string

	// Pending input puzzle: the choice index awaiting an answer.
	pendingInput int

	// Story selection state
	showStoryModal bool
	stories        []string
	storyMap       map[string]string
	selectedStory  int
	loadingStories bool

	// Quit confirmation state
	showQuitModal bool
}

type sessionMsg struct {
	view   *handlers.SessionView
	status string
	err    error
}

type storiesLoadedMsg struct {
	stories  []string
	storyMap map[string]string
	err      error
}

type savesListedMsg struct {
	saves []session.SaveSlot
	err   error
}

var (
	pagePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	choiceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	lockedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	endingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client, rng *rand.Rand) ConsoleUI {
	ti := textinput.New()
	ti.Placeholder = placeholderText
	ti.Focus()
	ti.Prompt = promptStyle.Render(":: ")
	ti.CharLimit = 200
	ti.Width = 50

	pageVp := viewport.New(50, 20)
	pageVp.MouseWheelEnabled = true
	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:         cfg,
		api:            &apiClient{client: client, baseURL: cfg.APIBaseURL},
		rng:            rng,
		input:          ti,
		pageVp:         pageVp,
		metaVp:         metaVp,
		pendingInput:   -1,
		showStoryModal: true,
		loadingStories: true,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showStoryModal {
		return m.loadStories()
	}
	return textinput.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showStoryModal {
		return m.updateStoryModal(msg)
	}
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.pageVp, vpCmd = m.pageVp.Update(msg)
		m.metaVp, mvCmd = m.metaVp.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.renderSession()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}
			value := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if value == "" {
				return m, nil
			}
			return m.handleSubmit(value)
		}

	case sessionMsg:
		m.loading = false
		m.statusMsg = msg.status
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			if msg.view != nil {
				m.view = msg.view
			}
		}
		m.renderSession()

	case savesListedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.err = nil
			m.statusMsg = formatSaves(msg.saves)
		}
		m.renderSession()
	}

	m.input, tiCmd = m.input.Update(msg)
	m.pageVp, vpCmd = m.pageVp.Update(msg)
	m.metaVp, mvCmd = m.metaVp.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resize() {
	pageWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - pageWidth - 6
	m.pageVp.Width = pageWidth - 2
	m.pageVp.Height = m.height - 7
	m.metaVp.Width = metaWidth - 2
	m.metaVp.Height = m.height - 4
	m.input.Width = pageWidth - 4
}

// handleSubmit routes a line of input: an answer to a pending puzzle, a
// slash command, or a choice number.
func (m ConsoleUI) handleSubmit(value string) (tea.Model, tea.Cmd) {
	if m.pendingInput >= 0 {
		choice := m.pendingInput
		m.pendingInput = -1
		m.input.Placeholder = placeholderText
		m.loading = true
		return m, m.doSubmitInput(choice, value)
	}

	if strings.HasPrefix(value, "/") {
		return m.handleCommand(value)
	}

	n, err := strconv.Atoi(value)
	if err != nil || m.view == nil || n < 1 || n > len(m.view.Choices) {
		m.statusMsg = "Enter a choice number, or /help for commands."
		m.renderSession()
		return m, nil
	}
	return m.selectChoice(n - 1)
}

func (m ConsoleUI) selectChoice(idx int) (tea.Model, tea.Cmd) {
	choice := m.view.Choices[idx]
	if !choice.Available {
		m.statusMsg = "That choice is locked: " + strings.Join(choice.Hints, ", ")
		m.renderSession()
		return m, nil
	}

	if choice.Input != nil {
		m.pendingInput = idx
		prompt := choice.Input.Prompt
		if prompt == "" {
			prompt = "Enter your answer"
		}
		m.input.Placeholder = prompt
		m.statusMsg = prompt
		m.renderSession()
		return m, textinput.Blink
	}

	m.loading = true
	if choice.Combat != nil {
		return m, m.doCombat(idx, choice.Combat)
	}
	return m, m.doChoice(idx)
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "/help":
		m.statusMsg = helpText
	case "/copy":
		if m.view != nil {
			if err := clipboard.WriteAll(m.view.SessionID); err != nil {
				m.err = err
			} else {
				m.statusMsg = "Session ID copied to clipboard."
			}
		}
	case "/saves":
		m.loading = true
		m.renderSession()
		return m, m.doListSaves()
	case "/save":
		slot := 0
		name := ""
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				slot = n
				name = strings.Join(args[1:], " ")
			} else {
				name = strings.Join(args, " ")
			}
		}
		m.loading = true
		m.renderSession()
		return m, m.doSave(slot, name)
	case "/load":
		if len(args) != 1 {
			m.statusMsg = "Usage: /load <slot>"
			break
		}
		slot, err := strconv.Atoi(args[0])
		if err != nil {
			m.statusMsg = "Usage: /load <slot>"
			break
		}
		m.loading = true
		m.renderSession()
		return m, m.doLoad(slot)
	case "/jump":
		if len(args) != 1 {
			m.statusMsg = "Usage: /jump <page>"
			break
		}
		m.loading = true
		m.renderSession()
		return m, m.doJump(args[0])
	case "/buy":
		if len(args) != 1 {
			m.statusMsg = "Usage: /buy <item-id>"
			break
		}
		m.loading = true
		m.renderSession()
		return m, m.doBuy(args[0])
	case "/restart":
		m.loading = true
		m.renderSession()
		return m, m.doRestart()
	case "/quit":
		m.showQuitModal = true
	default:
		m.statusMsg = "Unknown command. Try /help."
	}

	m.renderSession()
	return m, nil
}

const helpText = `Commands:
/save [slot] [name] - save the game
/saves - list save slots
/load <slot> - restore a save
/jump <page> - revisit a page you have seen
/buy <item-id> - buy from the current shop
/restart - start the story over
/copy - copy session ID to clipboard
/quit - leave the game`

func (m ConsoleUI) doChoice(idx int) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.makeChoice(m.view.SessionID, idx)
		return sessionMsg{view: view, err: err}
	}
}

func (m ConsoleUI) doSubmitInput(idx int, answer string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.submitInput(m.view.SessionID, idx, answer)
		return sessionMsg{view: view, err: err}
	}
}

func (m ConsoleUI) doCombat(idx int, combat *handlers.CombatView) tea.Cmd {
	sessionID := m.view.SessionID
	stats := m.view.State.Stats
	rng := m.rng
	return func() tea.Msg {
		result, err := runCombat(rng, stats, combat)
		if err != nil {
			return sessionMsg{err: err}
		}
		view, err := m.api.submitCombat(sessionID, idx, result.Won, result.FinalStats)
		return sessionMsg{view: view, status: strings.Join(result.Log, "\n"), err: err}
	}
}

func (m ConsoleUI) doListSaves() tea.Cmd {
	return func() tea.Msg {
		saves, err := m.api.listSaves(m.view.SessionID)
		return savesListedMsg{saves: saves, err: err}
	}
}

func (m ConsoleUI) doSave(slot int, name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.api.saveGame(m.view.SessionID, slot, name); err != nil {
			return sessionMsg{err: err}
		}
		return sessionMsg{status: "Game saved."}
	}
}

func (m ConsoleUI) doLoad(slot int) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.loadSave(m.view.SessionID, slot)
		return sessionMsg{view: view, status: "Save restored.", err: err}
	}
}

func (m ConsoleUI) doJump(pageID string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.jump(m.view.SessionID, pageID)
		return sessionMsg{view: view, err: err}
	}
}

func (m ConsoleUI) doBuy(itemID string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.buyItem(m.view.SessionID, itemID)
		return sessionMsg{view: view, err: err}
	}
}

func (m ConsoleUI) doRestart() tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.restart(m.view.SessionID)
		return sessionMsg{view: view, status: "The story begins again.", err: err}
	}
}

func (m ConsoleUI) loadStories() tea.Cmd {
	return func() tea.Msg {
		stories, storyMap, err := m.api.listStories()
		return storiesLoadedMsg{stories, storyMap, err}
	}
}

func (m ConsoleUI) createSessionFromStory(storyFile string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.api.createSession(storyFile, m.config.PlayerName)
		return sessionMsg{view: view, err: err}
	}
}

// renderSession rebuilds both viewports from the current view.
func (m *ConsoleUI) renderSession() {
	pageWidth := m.pageVp.Width - 6
	if pageWidth < 20 {
		pageWidth = 20
	}

	var content strings.Builder
	if m.view != nil && m.view.StoryTitle != "" {
		content.WriteString(titleStyle.Render(strings.ToUpper(m.view.StoryTitle)) + "\n\n")
	}

	if m.view != nil && m.view.Page != nil {
		page := m.view.Page
		if page.Title != "" {
			content.WriteString(titleStyle.Render(page.Title) + "\n\n")
		}
		content.WriteString(wordwrap.String(page.Text, pageWidth) + "\n\n")

		if page.Shop != nil {
			content.WriteString(hintStyle.Render("Wares for sale ("+page.Shop.CurrencyStat+"):") + "\n")
			for _, item := range page.Shop.Items {
				content.WriteString(fmt.Sprintf("  %s - %d\n", item.ID, item.Price))
			}
			content.WriteString(promptStyle.Render("Buy with /buy <item-id>") + "\n\n")
		}

		if m.view.IsEnding {
			label := "THE END"
			if m.view.EndingKind == "soft" {
				label = "An ending... but the story could go on."
			}
			content.WriteString(endingStyle.Render(label) + "\n\n")
		}

		content.WriteString(separatorStyle.Render(strings.Repeat("─", pageWidth)) + "\n\n")
		for _, c := range m.view.Choices {
			line := fmt.Sprintf("%d. %s", c.Index+1, c.Text)
			if c.Combat != nil {
				line += " ⚔"
			}
			if c.Input != nil {
				line += " ✎"
			}
			if c.Available {
				content.WriteString(choiceStyle.Render(line) + "\n")
			} else {
				content.WriteString(lockedStyle.Render(line) + " " + hintStyle.Render(strings.Join(c.Hints, ", ")) + "\n")
			}
		}
	}

	if m.statusMsg != "" {
		content.WriteString("\n" + statusStyle.Render(wordwrap.String(m.statusMsg, pageWidth)) + "\n")
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	if m.loading {
		content.WriteString("\n" + promptStyle.Render("...") + "\n")
	}

	m.pageVp.SetContent(content.String())
	m.pageVp.GotoTop()

	if m.view != nil {
		m.metaVp.SetContent(writeMetadata(m.view))
	}
}

func writeMetadata(v *handlers.SessionView) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE SHEET") + "\n\n")

	content.WriteString("Session:\n")
	if len(v.SessionID) >= 8 {
		content.WriteString(v.SessionID[:8] + "...\n\n")
	} else {
		content.WriteString(v.SessionID + "\n\n")
	}

	if v.Page != nil {
		content.WriteString("Page:\n")
		content.WriteString(v.Page.ID + "\n\n")
	}

	if v.State != nil {
		if len(v.State.Stats) > 0 {
			content.WriteString("Stats:\n")
			for _, name := range sortedStatNames(v.State.Stats) {
				content.WriteString(fmt.Sprintf("• %s: %d\n", name, v.State.Stats[name]))
			}
			content.WriteString("\n")
		}

		content.WriteString("Inventory:\n")
		if len(v.State.Inventory) == 0 {
			content.WriteString("Empty\n")
		} else {
			for _, item := range v.State.Inventory {
				content.WriteString("• " + item + "\n")
			}
		}
		content.WriteString("\n")

		content.WriteString(fmt.Sprintf("Pages visited: %d\n\n", len(v.State.History)))
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Submit\n")
	content.WriteString("• /help: Help\n")
	return content.String()
}

func sortedStatNames(stats map[string]int) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func formatSaves(saves []session.SaveSlot) string {
	if len(saves) == 0 {
		return "No saves yet. Use /save to create one."
	}
	var b strings.Builder
	b.WriteString("Save slots:\n")
	for _, s := range saves {
		name := s.Name
		if name == "" {
			name = s.Preview
		}
		b.WriteString(fmt.Sprintf("  %d. %s (%s)\n", s.Slot, name, s.SavedAt.Format("Jan 2 15:04")))
	}
	return b.String()
}

func (m ConsoleUI) updateStoryModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case storiesLoadedMsg:
		m.loadingStories = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.stories = msg.stories
			m.storyMap = msg.storyMap
		}

	case sessionMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.view = msg.view
			m.showStoryModal = false
			if m.width > 0 && m.height > 0 {
				m.resize()
				m.ready = true
			}
			m.renderSession()
			m.input.Focus()
		}
		return m, textinput.Blink

	case tea.KeyMsg:
		if m.loadingStories || m.err != nil {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedStory > 0 {
				m.selectedStory--
			}
		case tea.KeyDown:
			if m.selectedStory < len(m.stories)-1 {
				m.selectedStory++
			}
		case tea.KeyEnter:
			if len(m.stories) > 0 {
				title := m.stories[m.selectedStory]
				m.loading = true
				return m, m.createSessionFromStory(m.storyMap[title])
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if !m.showStoryModal {
					m.input.Focus()
					return m, textinput.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit Game?"))
	content.WriteString("\n\n")
	content.WriteString("Unsaved progress will be lost when the session expires.")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderStoryModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	switch {
	case m.loadingStories:
		content.WriteString(modalTitleStyle.Render("Loading Stories..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load stories: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening the Book..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select a Story"))
		content.WriteString("\n\n")
		for i, story := range m.stories {
			if i == m.selectedStory {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + story))
			} else {
				content.WriteString(modalItemStyle.Render("  " + story))
			}
			content.WriteString("\n")
		}
		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to select, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showStoryModal {
		return m.renderStoryModal()
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	pageWidth := int(float64(m.width)*0.72) - 4
	metaWidth := m.width - pageWidth - 6

	pagePanel := pagePanelStyle.Width(pageWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.pageVp.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", pageWidth-4)),
			m.input.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaVp.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, pagePanel, metaPanel)
}
