// Package tui provides the terminal user interface for echochat.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/echochat/internal/errors"
)

// styleSet holds every style the chat screen draws with, derived from one theme.
type styleSet struct {
	theme Theme

	header, title, subtitle, hint lipgloss.Style
	messages                      lipgloss.Style
	userBubble, userLabel         lipgloss.Style
	echoBubble, echoLabel         lipgloss.Style
	inputPanel, inputLabel        lipgloss.Style
	sendOn, sendOff               lipgloss.Style
	status, statusKey, statusDesc lipgloss.Style
	notice, failure, failureHint  lipgloss.Style
	welcome, welcomeTitle, icon   lipgloss.Style
}

// st is the active style set; ApplyTheme swaps it.
var st = newStyleSet(TokyoNightTheme)

// ApplyTheme switches the chat screen to theme.
func ApplyTheme(theme Theme) {
	st = newStyleSet(theme)
}

func newStyleSet(t Theme) styleSet {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	panel := func(c lipgloss.Color) lipgloss.Style {
		return lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(c)
	}

	return styleSet{
		theme: t,

		header:   panel(t.Border).Padding(0, 2).MarginBottom(1),
		title:    fg(t.Primary).Bold(true),
		subtitle: fg(t.TextDim),
		hint:     fg(t.TextMute).Italic(true),
		messages: panel(t.Border).Padding(1),

		// user bubbles are indented from the left, echo bubbles from the right
		userBubble: panel(t.Secondary).Padding(0, 1).MarginLeft(4),
		userLabel:  fg(t.Secondary).Bold(true).MarginLeft(4),
		echoBubble: panel(t.Primary).Foreground(t.Text).Padding(0, 1).MarginRight(4),
		echoLabel:  fg(t.Primary).Bold(true),

		inputPanel: panel(t.Border).Padding(0, 1).MarginTop(1),
		inputLabel: fg(t.Primary).Bold(true).MarginRight(1),
		sendOn:     fg(t.Accent).Bold(true).Padding(0, 1),
		sendOff:    fg(t.TextMute).Strikethrough(true).Padding(0, 1),

		status:     fg(t.TextMute).MarginTop(1),
		statusKey:  fg(t.TextDim).Bold(true),
		statusDesc: fg(t.TextMute),

		notice:      fg(t.Secondary).Italic(true),
		failure:     fg(t.Error).Bold(true),
		failureHint: fg(t.TextDim),

		welcome:      fg(t.TextDim).Align(lipgloss.Center),
		welcomeTitle: fg(t.Primary).Bold(true).Align(lipgloss.Center),
		icon:         fg(t.Accent).Align(lipgloss.Center),
	}
}

// FormatError renders err for the status line, adding what the user can do
// about configuration and storage failures.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(st.failure.Render(fmt.Sprintf("✗ %v", err)))

	switch {
	case errors.IsConfigError(err):
		if missing := errors.MissingElements(err); len(missing) > 0 {
			sb.WriteString(st.failureHint.Render("\n  Missing: " + strings.Join(missing, ", ")))
		}
	case errors.IsStorageError(err):
		sb.WriteString(st.failureHint.Render("\n  Hint: The chat is kept in memory but could not be saved. Check the data directory permissions"))
	}

	return sb.String()
}
