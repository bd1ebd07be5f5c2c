package tui

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/echochat/internal/chat"
	"github.com/diogo/echochat/internal/widget"
)

// Messages delivered to Update from outside key handling
type (
	// callbackMsg carries a timer callback onto the update loop
	callbackMsg struct {
		fn func()
	}
	clipboardMsg struct {
		chars int
		err   error
	}
)

// Options configures the chat TUI
type Options struct {
	// Location is shown in the header, usually the storage directory.
	Location string
	// CopyToClipboard enables ctrl+y.
	CopyToClipboard bool
	// Copy writes text to the clipboard. Defaults to clipboard.WriteAll.
	Copy func(text string) error
}

// Model is the bubbletea model for the chat screen. It draws the widget's
// page and turns key presses into widget events.
type Model struct {
	widget *widget.Widget
	opts   Options

	// UI components
	viewport viewport.Model
	input    textinput.Model

	// State
	ready   bool
	renders int
	notice  string
	err     error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model around an initialized widget
func NewChatModel(w *widget.Widget, opts Options) Model {
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}

	ti := textinput.New()
	ti.Placeholder = "Type your message here..."
	ti.Prompt = ""
	ti.CharLimit = chat.MaxContentLength
	ti.Focus()
	ti.TextStyle = lipgloss.NewStyle().Foreground(st.theme.Text)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(st.theme.TextDim)
	ti.SetValue(w.InputValue())

	return Model{
		widget:  w,
		opts:    opts,
		input:   ti,
		renders: -1,
	}
}

// Init starts the cursor blinking
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update routes timer callbacks and key presses to the widget
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 4  // Input panel with border
		statusHeight := 2 // Status bar
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.input.Width = contentWidth - 16
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case callbackMsg:
		msg.fn()
		m.sync()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.err = fmt.Errorf("copy failed: %w", msg.err)
		} else {
			m.notice = fmt.Sprintf("Copied %d characters", msg.chars)
		}
		return m, nil

	case tea.KeyMsg:
		m.notice = ""
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.widget.SendEnabled() {
				m.widget.Submit()
				m.sync()
			}
			return m, nil

		case "ctrl+n":
			m.widget.Reset()
			m.notice = "Started a new chat"
			m.sync()
			return m, nil

		case "ctrl+y":
			return m, m.copyLastMessage()

		case "up":
			m.viewport.LineUp(1)
			return m, nil
		case "down":
			m.viewport.LineDown(1)
			return m, nil
		case "pgup":
			m.viewport.HalfViewUp()
			return m, nil
		case "pgdown":
			m.viewport.HalfViewDown()
			return m, nil
		}

		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		if m.input.Value() != before {
			m.widget.Input(m.input.Value())
			m.sync()
		}
		return m, tea.Batch(cmds...)
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// sync pulls widget state into the bubbles components after an event.
func (m *Model) sync() {
	if v := m.widget.InputValue(); v != m.input.Value() {
		m.input.SetValue(v)
	}
	if r := m.widget.Renders(); r != m.renders {
		m.renders = r
		m.updateViewport()
		m.viewport.GotoBottom()
	}
	if err := m.widget.LastError(); err != nil {
		m.err = err
		m.widget.ClearError()
	}
}

// updateViewport rebuilds the viewport content from the rendered chat area
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, el := range m.widget.ChatArea().Children() {
		if i > 0 {
			content.WriteString("\n")
		}
		if el.HasClass("user") {
			content.WriteString(st.userLabel.Render("● You"))
			content.WriteString("\n")
			content.WriteString(st.userBubble.Width(bubbleWidth).Render(el.Text))
		} else {
			content.WriteString(st.echoLabel.Render("✦ Echo"))
			content.WriteString("\n")
			content.WriteString(st.echoBubble.Width(bubbleWidth).Render(el.Text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

func (m Model) copyLastMessage() tea.Cmd {
	if !m.opts.CopyToClipboard {
		return nil
	}
	msgs := m.widget.Messages()
	if len(msgs) == 0 {
		return nil
	}
	text := msgs[len(msgs)-1].Content
	copyFn := m.opts.Copy
	return func() tea.Msg {
		return clipboardMsg{chars: len([]rune(text)), err: copyFn(text)}
	}
}

// View draws header, chat area, input row and status bar
func (m Model) View() string {
	if !m.ready {
		return st.hint.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{st.title.Render("✦ Echo Chat")}
	if m.opts.Location != "" {
		headerParts = append(headerParts,
			st.hint.Render("  •  "),
			st.subtitle.Render(m.opts.Location),
		)
	}
	header := st.header.Width(contentWidth).Render(
		lipgloss.JoinHorizontal(lipgloss.Center, headerParts...))
	sections = append(sections, header)

	// Messages
	var messagesContent string
	if len(m.widget.ChatArea().Children()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, st.messages.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input and send button
	send := st.sendOff.Render("[ Send ]")
	if m.widget.SendEnabled() {
		send = st.sendOn.Render("[ Send ]")
	}
	inputRow := lipgloss.JoinHorizontal(lipgloss.Center,
		st.inputLabel.Render("You"),
		m.input.View(),
		send,
	)
	sections = append(sections, st.inputPanel.Width(contentWidth).Render(inputRow))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, st.notice.Render("  "+m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the placeholder shown for an empty chat
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		st.icon.Width(width).Render("✦"),
		"",
		st.welcomeTitle.Width(width).Render("Welcome to Echo Chat"),
		"",
		st.welcome.Width(width).Render("Type a message below and the echo bot will answer"),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar lists the key bindings available on this screen
func (m Model) renderStatusBar(width int) string {
	type shortcut struct {
		key  string
		desc string
	}
	shortcuts := []shortcut{
		{"Enter", "Send"},
		{"Ctrl+N", "New chat"},
	}
	if m.opts.CopyToClipboard {
		shortcuts = append(shortcuts, shortcut{"Ctrl+Y", "Copy last"})
	}
	shortcuts = append(shortcuts, shortcut{"↑↓", "Scroll"}, shortcut{"Esc", "Quit"})

	var items []string
	for _, s := range shortcuts {
		items = append(items, st.statusKey.Render(s.key)+st.statusDesc.Render(" "+s.desc))
	}
	return st.status.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat starts the chat TUI. newWidget receives a post function that
// delivers scheduled callbacks to the bubbletea update loop; the widget's
// scheduler must use it so every mutation happens on that loop.
func RunChat(newWidget func(post func(func())) (*widget.Widget, error), opts Options) error {
	var p *tea.Program
	post := func(fn func()) {
		p.Send(callbackMsg{fn: fn})
	}

	w, err := newWidget(post)
	if err != nil {
		return err
	}

	p = tea.NewProgram(NewChatModel(w, opts), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
