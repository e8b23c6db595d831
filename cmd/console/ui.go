package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jwebster45206/adventure-console/internal/session"
	"github.com/jwebster45206/adventure-console/pkg/chat"
	"github.com/jwebster45206/adventure-console/pkg/state"
)

const (
	PlaceHolderText   = "What do you do?"
	ThinkingText      = "The game master is thinking..."
	RestartPrompt     = "Start a new game? All progress will be lost."
	GameOverPrompt    = "Game over. Press R to start a new adventure."
	ChooseOptionHint  = "Use ↑/↓ or 1-9 to pick an option, Enter to confirm"
	StuckHint         = "No options were offered. Press Ctrl+R to start a new game."
	ConnectingMessage = "Initializing the world..."
)

// ConsoleUI is the BubbleTea model that runs the UI.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctrl    *session.Controller
	timeout time.Duration
	session session.Session

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	spinner      spinner.Model
	renderer     *glamour.TermRenderer
	rendered     map[uint64]string // assistant markdown by message ID

	ready  bool
	width  int
	height int

	// Chip selection in closed-choice phases, and Tab cycling in open ones
	selected int
	tabIndex int

	// Local command output, shown after the message it followed
	notes []note

	showQuitModal    bool
	showRestartModal bool

	copyToClipboard func(string) error
}

type note struct {
	after int
	text  string
}

type startMsg struct{}

type resultMsg struct {
	result session.Result
}

var (
	chatPanelStyle = lipgloss.NewStyle().
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

	narratorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

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

	separatorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey
)

func NewConsoleUI(ctrl *session.Controller, timeout time.Duration) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 1000
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		ctrl:            ctrl,
		timeout:         timeout,
		session:         ctrl.Snapshot(),
		textarea:        ta,
		spinner:         sp,
		chatViewport:    chatVp,
		metaViewport:    metaVp,
		rendered:        make(map[uint64]string),
		copyToClipboard: clipboard.WriteAll,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(
		func() tea.Msg { return startMsg{} },
		textarea.Blink,
	)
}

// dispatch runs the service call off the update loop.
func (m ConsoleUI) dispatch(req session.Request) tea.Cmd {
	ctrl, timeout := m.ctrl, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return resultMsg{ctrl.Dispatch(ctx, req)}
	}
}

// refresh re-reads the session and redraws everything derived from it.
func (m *ConsoleUI) refresh() {
	prevChoice := m.session.Choice()
	prevCount := len(m.session.Suggestions)
	m.session = m.ctrl.Snapshot()

	if m.session.Choice() != prevChoice || len(m.session.Suggestions) != prevCount {
		m.selected = 0
		m.tabIndex = 0
	}

	if m.choosingFromChips() || m.session.GameOver() {
		m.textarea.Blur()
	} else {
		m.textarea.Focus()
	}

	m.metaViewport.SetContent(writeStats(m.session.State))
	m.writeChatContent()
}

// choosingFromChips reports whether input comes from the suggestion chips
// rather than the text box.
func (m ConsoleUI) choosingFromChips() bool {
	return m.session.Choice() == state.ChoiceClosed &&
		!m.session.InFlight &&
		len(m.session.Suggestions) > 0
}

// writeChatContent builds the chat content from the session for the current viewport width
func (m *ConsoleUI) writeChatContent() {
	chatWidth := m.chatViewport.Width - 6 // Account for left(3) + right(3) padding
	if chatWidth < 10 {
		chatWidth = 10
	}

	var content strings.Builder
	content.WriteString(titleStyle.Render("ADVENTURE CONSOLE") + "\n\n")
	content.WriteString(separatorStyle.Render(strings.Repeat("─", chatWidth)) + "\n\n")

	if len(m.session.Messages) == 0 && !m.session.InFlight {
		content.WriteString(promptStyle.Render(ConnectingMessage) + "\n\n")
	}

	m.writeNotes(&content, 0)
	for i, msg := range m.session.Messages {
		if msg.Role == chat.ChatRoleAgent {
			out, ok := m.rendered[msg.ID]
			if !ok {
				out = formatMessage(msg, m.renderer, chatWidth)
				m.rendered[msg.ID] = out
			}
			content.WriteString(out + "\n\n")
		} else {
			content.WriteString(formatMessage(msg, m.renderer, chatWidth) + "\n\n")
		}
		m.writeNotes(&content, i+1)
	}

	if m.session.InFlight {
		content.WriteString(m.spinner.View() + " " + loadingStyle.Render(ThinkingText) + "\n")
	}

	m.chatViewport.SetContent(content.String())
	m.chatViewport.GotoBottom()
}

func (m *ConsoleUI) writeNotes(content *strings.Builder, after int) {
	for _, n := range m.notes {
		if n.after == after {
			content.WriteString(n.text + "\n\n")
		}
	}
}

func (m *ConsoleUI) addNote(text string) {
	m.notes = append(m.notes, note{after: len(m.session.Messages), text: text})
	m.writeChatContent()
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 11 // room for chips and input
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)

	// Markdown must be re-wrapped for the new width
	m.renderer = newMarkdownRenderer(m.chatViewport.Width - 6)
	m.rendered = make(map[uint64]string)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	if m.showRestartModal {
		return m.updateRestartModal(msg)
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.chatViewport, vpCmd = m.chatViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case startMsg:
		req, ok := m.ctrl.BeginStart()
		m.refresh()
		if !ok {
			return m, nil
		}
		return m, tea.Batch(m.dispatch(req), m.spinner.Tick)

	case resultMsg:
		m.ctrl.Apply(msg.result)
		m.refresh()
		if m.session.InFlight {
			// A restart is still waiting on its own result
			return m, nil
		}
		if m.textarea.Focused() {
			return m, textarea.Blink
		}
		return m, nil

	case spinner.TickMsg:
		return m.tickSpinner(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyCtrlR:
			m.showRestartModal = true
			return m, nil
		}

		if m.session.GameOver() {
			if s := msg.String(); s == "r" || s == "R" {
				m.showRestartModal = true
			}
			return m, nil
		}

		if m.choosingFromChips() {
			return m.updateChips(msg)
		}

		switch msg.Type {
		case tea.KeyTab:
			m.fillNextSuggestion()
			return m, nil
		case tea.KeyEnter:
			if m.session.InFlight {
				return m, nil
			}

			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, "/") {
				return m.handleCommand(input)
			}

			return m.submit(input)
		}
	}

	m.textarea, tiCmd = m.textarea.Update(msg)
	m.chatViewport, vpCmd = m.chatViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)

	return m, tea.Batch(tiCmd, vpCmd, mvCmd)
}

// submit hands text to the controller and dispatches it when admitted.
func (m ConsoleUI) submit(text string) (tea.Model, tea.Cmd) {
	req, ok := m.ctrl.BeginAction(text)
	if ok {
		m.textarea.Reset()
	}
	m.refresh()
	if !ok {
		return m, nil
	}
	return m, tea.Batch(m.dispatch(req), m.spinner.Tick)
}

func (m ConsoleUI) updateChips(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.session.Suggestions)

	switch msg.Type {
	case tea.KeyUp, tea.KeyLeft, tea.KeyShiftTab:
		m.selected = (m.selected - 1 + n) % n
	case tea.KeyDown, tea.KeyRight, tea.KeyTab:
		m.selected = (m.selected + 1) % n
	case tea.KeyEnter:
		return m.submit(m.session.Suggestions[m.selected])
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] >= '1' && msg.Runes[0] <= '9' {
			idx := int(msg.Runes[0] - '1')
			if idx < n {
				m.selected = idx
				return m.submit(m.session.Suggestions[idx])
			}
		}
	}
	return m, nil
}

// fillNextSuggestion copies the next suggestion into the input in open phases.
func (m *ConsoleUI) fillNextSuggestion() {
	if m.session.InFlight || len(m.session.Suggestions) == 0 {
		return
	}
	m.textarea.SetValue(m.session.Suggestions[m.tabIndex%len(m.session.Suggestions)])
	m.tabIndex++
}

func (m ConsoleUI) handleCommand(input string) (tea.Model, tea.Cmd) {
	cmd := strings.ToLower(strings.TrimSpace(input))
	m.textarea.Reset()

	switch cmd {
	case "/help":
		helpText := `Commands:
• /help - Show this help
• /state - Show your character sheet as JSON
• /copy - Copy the transcript to the clipboard
• /restart - Start a new game
• Ctrl+R - Start a new game
• Ctrl+C - Quit game

How to play:
• Type your actions and press Enter
• Tab fills in the next suggested action
• When choosing gender or class, pick one of the offered options`
		m.addNote(titleStyle.Render("Help:") + "\n" + helpText)

	case "/state":
		m.addNote(titleStyle.Render("State:") + "\n" +
			promptStyle.Render("Session "+m.session.ID) + "\n" + formatState(m.session.State))

	case "/copy":
		if err := m.copyToClipboard(transcript(m.session.Messages)); err != nil {
			m.addNote(errorStyle.Render(fmt.Sprintf("Could not copy transcript: %v", err)))
		} else {
			m.addNote(promptStyle.Render(fmt.Sprintf("Copied %d messages to the clipboard.", len(m.session.Messages))))
		}

	case "/restart":
		m.showRestartModal = true

	default:
		m.addNote(errorStyle.Render(fmt.Sprintf("Unknown command %s. Type /help for a list.", cmd)))
	}

	return m, nil
}

// tickSpinner keeps the spinner running while a call is outstanding, even
// behind a modal, and lets the tick chain end once it resolves.
func (m ConsoleUI) tickSpinner(msg spinner.TickMsg) (tea.Model, tea.Cmd) {
	if !m.session.InFlight {
		return m, nil
	}
	var spCmd tea.Cmd
	m.spinner, spCmd = m.spinner.Update(msg)
	m.writeChatContent()
	return m, spCmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case resultMsg:
		// Keep the session moving behind the modal
		m.ctrl.Apply(msg.result)
		m.refresh()

	case spinner.TickMsg:
		return m.tickSpinner(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				m.refresh()
				return m, textarea.Blink
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) updateRestartModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case resultMsg:
		m.ctrl.Apply(msg.result)
		m.refresh()

	case spinner.TickMsg:
		return m.tickSpinner(msg)

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showRestartModal = false
			return m, nil
		default:
			switch msg.String() {
			case "y", "Y":
				m.showRestartModal = false
				req := m.ctrl.BeginRestart()
				m.notes = nil
				m.rendered = make(map[uint64]string)
				m.refresh()
				return m, tea.Batch(m.dispatch(req), m.spinner.Tick)
			case "n", "N":
				m.showRestartModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderModal(title, body, hint string) string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render(title))
	content.WriteString("\n\n")
	content.WriteString(body)
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render(hint))

	modal := modalStyle.Width(50).Render(content.String())

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

// inputView is whatever sits below the separator: chips, the text box, or a prompt.
func (m ConsoleUI) inputView(chatWidth int) string {
	if m.session.GameOver() {
		return errorStyle.Render(GameOverPrompt)
	}

	var parts []string
	if !m.session.InFlight && len(m.session.Suggestions) > 0 {
		parts = append(parts, renderChips(m.session.Suggestions, m.selected, m.choosingFromChips(), chatWidth-4))
	}

	switch {
	case m.choosingFromChips():
		parts = append(parts, promptStyle.Render(ChooseOptionHint))
	case m.session.Stuck:
		parts = append(parts, errorStyle.Render(StuckHint), m.textarea.View())
	default:
		parts = append(parts, m.textarea.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderModal("Quit Game?",
			"Are you sure you want to quit your adventure?",
			"Press Y to quit, N to continue, or Ctrl+C to force quit")
	}

	if m.showRestartModal {
		return m.renderModal("New Game?", RestartPrompt, "Press Y to restart or N to keep playing")
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			m.chatViewport.View(),
			"", // Add empty line for spacing
			separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
			m.inputView(chatWidth),
		),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}
