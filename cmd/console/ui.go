package main

import (
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/quest-engine/pkg/event"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

const PlaceHolderText = "Type a command (try /help)..."

// feedEntry is one line of console history, kept raw so the feed can be
// re-wrapped on resize.
type feedEntry struct {
	role string // "you", "engine", "system", "error", "info"
	text string
}

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	config       *ConsoleConfig
	client       *http.Client
	gameState    *state.GameState
	feed         []feedEntry
	feedViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	loading      bool

	// Pack selection state
	showPackModal bool
	packs         []string
	packMap       map[string]string
	selectedPack  int
	loadingPacks  bool

	// Quit confirmation state
	showQuitModal bool
}

type packsLoadedMsg struct {
	packs   []string
	packMap map[string]string
	err     error
}

type gameStateCreatedMsg struct {
	gameState *state.GameState
	err       error
}

type commandResultMsg struct {
	response *CommandResponse
	err      error
}

type eventAppliedMsg struct {
	gameState *state.GameState
	err       error
}

type systemMessagesMsg struct {
	messages []string
	err      error
}

var (
	feedPanelStyle = lipgloss.NewStyle().
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

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")) // purple

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("46")) // bright green

	failedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

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
)

var titleCaser = cases.Title(language.English)

func NewConsoleUI(cfg *ConsoleConfig, client *http.Client) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	feedVp := viewport.New(50, 20)
	feedVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		config:        cfg,
		client:        client,
		textarea:      ta,
		feedViewport:  feedVp,
		metaViewport:  metaVp,
		ready:         false,
		showPackModal: true,
		loadingPacks:  true,
		selectedPack:  0,
	}
}

// packDisplayName turns a pack filename into a readable title.
func packDisplayName(file string) string {
	name := strings.TrimSuffix(file, ".json")
	name = strings.ReplaceAll(name, "_", " ")
	return titleCaser.String(name)
}

func (m ConsoleUI) Init() tea.Cmd {
	if m.showPackModal {
		return m.loadPacks()
	}
	return textarea.Blink
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showPackModal {
		return m.updatePackModal(msg)
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
		m.feedViewport, vpCmd = m.feedViewport.Update(msg)
		m.textarea, tiCmd = m.textarea.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(tiCmd, vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizePanels()
		m.writeFeedContent()
		if m.gameState != nil {
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.ready = true

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyEnter:
			if m.loading {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.handleInput(input)
		}

	case commandResultMsg:
		m.loading = false
		if msg.err != nil {
			m.appendFeed("error", msg.err.Error())
		} else {
			m.gameState = msg.response.GameState
			verdict := "applied"
			if !msg.response.Result.Applied {
				verdict = "rejected"
			}
			line := fmt.Sprintf("%s %s", msg.response.Result.Type, verdict)
			if msg.response.Result.Message != "" {
				line += ": " + msg.response.Result.Message
			}
			m.appendFeed("engine", line)
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.writeFeedContent()
		return m, m.pollMessages()

	case eventAppliedMsg:
		m.loading = false
		if msg.err != nil {
			m.appendFeed("error", msg.err.Error())
		} else {
			m.gameState = msg.gameState
			m.metaViewport.SetContent(writeMetadata(m.gameState))
		}
		m.writeFeedContent()
		return m, m.pollMessages()

	case systemMessagesMsg:
		if msg.err == nil {
			for _, sm := range msg.messages {
				m.appendFeed("system", sm)
			}
			if len(msg.messages) > 0 {
				m.writeFeedContent()
			}
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.feedViewport, vpCmd = m.feedViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

func (m *ConsoleUI) resizePanels() {
	feedWidth := int(float64(m.width)*0.68) - 4
	metaWidth := m.width - feedWidth - 6

	m.feedViewport.Width = feedWidth - 2
	m.feedViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(feedWidth - 4)
}

func (m *ConsoleUI) appendFeed(role, text string) {
	m.feed = append(m.feed, feedEntry{role: role, text: text})
}

// writeFeedContent re-renders the whole feed for the current width.
func (m *ConsoleUI) writeFeedContent() {
	width := m.feedViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("QUEST ENGINE") + "\n\n")
	content.WriteString("Issue narrator commands or /events to drive the session.\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, entry := range m.feed {
		wrapped := wordwrap.String(entry.text, width-6)
		switch entry.role {
		case "you":
			content.WriteString(userStyle.Render("You: ") + wrapped + "\n\n")
		case "engine":
			content.WriteString(engineStyle.Render("Engine: ") + wrapped + "\n\n")
		case "system":
			content.WriteString(systemStyle.Render("Journal: ") + wrapped + "\n\n")
		case "error":
			content.WriteString(errorStyle.Render("Error: "+wrapped) + "\n\n")
		default:
			content.WriteString(wrapped + "\n\n")
		}
	}

	if m.loading {
		content.WriteString(loadingStyle.Render("Working...") + "\n")
	}

	m.feedViewport.SetContent(content.String())
	m.feedViewport.GotoBottom()
}

func writeMetadata(gs *state.GameState) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("GAME STATE") + "\n\n")

	content.WriteString("Game ID:\n")
	content.WriteString(gs.ID.String()[:8] + "...  (/id to copy)\n\n")

	content.WriteString("Quest Pack:\n")
	content.WriteString(packDisplayName(gs.QuestPack) + "\n\n")

	content.WriteString(fmt.Sprintf("Game Time: %.0fs\n", gs.World.GameTime))
	if gs.World.Location != "" {
		content.WriteString("Location: " + gs.World.Location + "\n")
	}
	if gs.World.Mode != "" {
		content.WriteString("Mode: " + gs.World.Mode + "\n")
	}
	if gs.World.Music != "" {
		content.WriteString("Music: " + gs.World.Music + "\n")
	}
	content.WriteString("\n")

	content.WriteString(titleStyle.Render("JOURNAL") + "\n")
	if gs.Journal == nil || len(gs.Journal.Quests) == 0 {
		content.WriteString("No quests.\n")
	} else {
		questIDs := make([]string, 0, len(gs.Journal.Quests))
		for id := range gs.Journal.Quests {
			questIDs = append(questIDs, id)
		}
		sort.Strings(questIDs)

		for _, id := range questIDs {
			q := gs.Journal.Quests[id]
			if q == nil {
				continue
			}
			title := q.Title
			if title == "" {
				title = id
			}
			content.WriteString("\n" + renderQuestStatus(string(q.Status), q.Abandoned) + " " + title + "\n")
			for _, o := range q.Objectives {
				if o == nil {
					continue
				}
				marker := "·"
				switch {
				case o.Completed:
					marker = doneStyle.Render("✓")
				case o.Failed:
					marker = failedStyle.Render("✗")
				}
				desc := o.Description
				if desc == "" {
					desc = o.ID
				}
				if !o.IsMandatory() {
					desc += " (optional)"
				}
				content.WriteString("  " + marker + " " + desc + "\n")
			}
		}
	}

	content.WriteString("\n" + titleStyle.Render("INVENTORY") + "\n")
	if gs.Inventory == nil || len(gs.Inventory.Items) == 0 {
		content.WriteString("Empty.\n")
	} else {
		for _, it := range gs.Inventory.Items {
			if it == nil {
				continue
			}
			content.WriteString(fmt.Sprintf("• %s x%d\n", it.Name, it.Quantity))
		}
	}

	if len(gs.Flags) > 0 {
		content.WriteString("\n" + titleStyle.Render("FLAGS") + "\n")
		keys := make([]string, 0, len(gs.Flags))
		for k := range gs.Flags {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			content.WriteString(fmt.Sprintf("• %s: %v\n", k, gs.Flags[k]))
		}
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Send\n")
	content.WriteString("• /help: Help\n")

	return content.String()
}

func renderQuestStatus(status string, abandoned bool) string {
	switch {
	case abandoned:
		return failedStyle.Render("[abandoned]")
	case status == "completed":
		return doneStyle.Render("[completed]")
	case status == "failed":
		return failedStyle.Render("[failed]")
	default:
		return systemStyle.Render("[active]")
	}
}

// handleInput routes one line of console input. Slash commands become
// gameplay events; everything else is sent verbatim as a narrator command
// line.
func (m ConsoleUI) handleInput(input string) (tea.Model, tea.Cmd) {
	if !strings.HasPrefix(input, "/") {
		m.appendFeed("you", input)
		m.loading = true
		m.writeFeedContent()
		return m, m.sendCommand(input)
	}

	fields := strings.Fields(input)
	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "/help":
		m.appendFeed("info", helpText)
		m.writeFeedContent()
		return m, nil

	case "/id":
		if err := clipboard.WriteAll(m.gameState.ID.String()); err != nil {
			m.appendFeed("error", "failed to copy game ID: "+err.Error())
		} else {
			m.appendFeed("info", "Game ID copied to clipboard.")
		}
		m.writeFeedContent()
		return m, nil

	case "/kill":
		if len(args) < 1 {
			return m.usage("/kill <entity_id> [template_id]")
		}
		ev := event.Event{Kind: event.KindEnemyDefeated, EntityID: args[0]}
		if len(args) > 1 {
			ev.TemplateID = args[1]
		}
		return m.sendEventInput(input, ev)

	case "/take", "/drop":
		if len(args) < 1 {
			return m.usage(verb + " <item_id> [qty]")
		}
		qty := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return m.usage(verb + " <item_id> [qty]")
			}
			qty = n
		}
		if verb == "/drop" {
			qty = -qty
		}
		return m.sendEventInput(input, event.Event{
			Kind:   event.KindItemDelta,
			ItemID: args[0],
			Delta:  qty,
		})

	case "/goto":
		if len(args) != 1 {
			return m.usage("/goto <location_id>")
		}
		return m.sendEventInput(input, event.Event{
			Kind:       event.KindLocationVisited,
			LocationID: args[0],
		})

	case "/talk":
		if len(args) != 1 {
			return m.usage("/talk <npc_id>")
		}
		return m.sendEventInput(input, event.Event{
			Kind:     event.KindDialogueCompleted,
			TargetID: args[0],
		})

	case "/use":
		if len(args) != 1 {
			return m.usage("/use <target_id>")
		}
		return m.sendEventInput(input, event.Event{
			Kind:     event.KindInteractionCompleted,
			TargetID: args[0],
		})

	case "/flag":
		if len(args) < 1 {
			return m.usage("/flag <key> [value]")
		}
		var value any = true
		if len(args) > 1 {
			value = parseFlagValue(strings.Join(args[1:], " "))
		}
		return m.sendEventInput(input, event.Event{
			Kind:  event.KindFlagSet,
			Key:   args[0],
			Value: value,
		})

	case "/time":
		if len(args) != 1 {
			return m.usage("/time <seconds>")
		}
		delta, err := strconv.ParseFloat(args[0], 64)
		if err != nil || delta <= 0 {
			return m.usage("/time <seconds>")
		}
		m.appendFeed("you", input)
		m.loading = true
		m.writeFeedContent()
		return m, m.sendCommand(fmt.Sprintf(`STATE_CHANGE {"attribute": "time", "delta": %g}`, delta))

	case "/messages":
		return m, m.pollMessages()

	default:
		m.appendFeed("error", "unknown command "+verb+" (try /help)")
		m.writeFeedContent()
		return m, nil
	}
}

// parseFlagValue interprets flag values the way JSON would: booleans and
// numbers stay typed, everything else is a string.
func parseFlagValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	return raw
}

func (m ConsoleUI) usage(u string) (tea.Model, tea.Cmd) {
	m.appendFeed("error", "usage: "+u)
	m.writeFeedContent()
	return m, nil
}

func (m ConsoleUI) sendEventInput(input string, ev event.Event) (tea.Model, tea.Cmd) {
	m.appendFeed("you", input)
	m.loading = true
	m.writeFeedContent()
	return m, m.sendEvent(ev)
}

const helpText = `Console commands:
/kill <entity_id> [template_id] - record an enemy defeat
/take <item_id> [qty] - gain items
/drop <item_id> [qty] - lose items
/goto <location_id> - visit a location
/talk <npc_id> - complete a dialogue
/use <target_id> - complete an interaction
/flag <key> [value] - set a world flag
/time <seconds> - advance the game clock
/messages - fetch pending journal messages
/id - copy the game ID to the clipboard
Anything else is sent as a raw narrator command line,
e.g. QUEST_UPDATE: wolves:cull_the_pack:completed`

func (m ConsoleUI) sendCommand(line string) tea.Cmd {
	return func() tea.Msg {
		resp, err := postCommand(m.client, m.config.APIBaseURL, m.gameState.ID, line)
		return commandResultMsg{resp, err}
	}
}

func (m ConsoleUI) sendEvent(ev event.Event) tea.Cmd {
	return func() tea.Msg {
		gs, err := postEvent(m.client, m.config.APIBaseURL, m.gameState.ID, ev)
		return eventAppliedMsg{gs, err}
	}
}

func (m ConsoleUI) pollMessages() tea.Cmd {
	return func() tea.Msg {
		msgs, err := fetchMessages(m.client, m.config.APIBaseURL, m.gameState.ID)
		return systemMessagesMsg{msgs, err}
	}
}

func (m ConsoleUI) loadPacks() tea.Cmd {
	return func() tea.Msg {
		names, packMap, err := listQuestPacks(m.client, m.config.APIBaseURL)
		return packsLoadedMsg{names, packMap, err}
	}
}

func (m ConsoleUI) createGameFromPack(packFile string) tea.Cmd {
	return func() tea.Msg {
		gs, err := createGameState(m.client, m.config.APIBaseURL, packFile)
		return gameStateCreatedMsg{gs, err}
	}
}

func (m ConsoleUI) updatePackModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case packsLoadedMsg:
		m.loadingPacks = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.packs = msg.packs
			m.packMap = msg.packMap
		}

	case gameStateCreatedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.gameState = msg.gameState
			m.showPackModal = false
			if m.width > 0 && m.height > 0 {
				m.resizePanels()
			}
			m.writeFeedContent()
			m.metaViewport.SetContent(writeMetadata(m.gameState))
			m.textarea.Focus()
			m.ready = true
			return m, tea.Batch(textarea.Blink, m.pollMessages())
		}
		return m, textarea.Blink

	case tea.KeyMsg:
		if m.loadingPacks || m.err != nil {
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
			if m.selectedPack > 0 {
				m.selectedPack--
			}
		case tea.KeyDown:
			if m.selectedPack < len(m.packs)-1 {
				m.selectedPack++
			}
		case tea.KeyEnter:
			if len(m.packs) > 0 {
				packName := m.packs[m.selectedPack]
				m.loading = true
				return m, m.createGameFromPack(m.packMap[packName])
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
				if m.showPackModal {
					return m, nil
				}
				m.textarea.Focus()
				return m, textarea.Blink
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
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave this session?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderPackModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	if m.loadingPacks {
		content.WriteString(modalTitleStyle.Render("Loading Quest Packs..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch available quest packs..."))
	} else if m.err != nil {
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Failed to load quest packs: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	} else if m.loading {
		content.WriteString(modalTitleStyle.Render("Creating Game..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Instantiating the quest journal..."))
	} else {
		content.WriteString(modalTitleStyle.Render("Select a Quest Pack"))
		content.WriteString("\n\n")

		for i, pack := range m.packs {
			if i == m.selectedPack {
				content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", pack)))
			} else {
				content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", pack)))
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
	if m.showPackModal {
		return m.renderPackModal()
	}

	if m.showQuitModal {
		return m.renderQuitModal()
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	feedWidth := int(float64(m.width)*0.68) - 4
	metaWidth := m.width - feedWidth - 6

	feedPanel := feedPanelStyle.Width(feedWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.feedViewport.View(),
			"",
			separatorStyle.Render(strings.Repeat("─", feedWidth-4)),
			m.textarea.View(),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, feedPanel, metaPanel)
}
