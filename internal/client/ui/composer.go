package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	placeholderReady  = "Type a message..."
	placeholderNoRoom = "Select a room first"
	sendLabel         = "Send"
)

// composer is the message input with its send control
type composer struct {
	input   textinput.Model
	sending bool
}

func newComposer() composer {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = placeholderNoRoom
	in.CharLimit = 2000
	in.Width = 40
	return composer{input: in}
}

// canSend reports whether the send control is enabled for room
func (c composer) canSend(room string) bool {
	return room != "" && !c.sending && strings.TrimSpace(c.input.Value()) != ""
}

// setRoom updates the placeholder for the selected room
func (c *composer) setRoom(room string) {
	if room == "" {
		c.input.Placeholder = placeholderNoRoom
		return
	}
	c.input.Placeholder = placeholderReady
}

func (c *composer) focus() tea.Cmd {
	return c.input.Focus()
}

func (c *composer) blur() {
	c.input.Blur()
}

func (c composer) focused() bool {
	return c.input.Focused()
}

func (c composer) value() string {
	return c.input.Value()
}

// sent clears the input after the backend accepted the message
func (c *composer) sent() {
	c.sending = false
	c.input.Reset()
}

// failed keeps the input so the user can retry by hand
func (c *composer) failed() {
	c.sending = false
}

func (c *composer) setWidth(width int) {
	// prompt, cursor, border, padding and the send button
	w := width - lipgloss.Width(sendLabel) - 10
	if w < 5 {
		w = 5
	}
	c.input.Width = w
}

func (c composer) update(msg tea.Msg) (composer, tea.Cmd) {
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c composer) view(width int, room string, focused bool) string {
	button := sendButtonDisabledStyle.Render(sendLabel)
	if c.canSend(room) {
		button = sendButtonStyle.Render(sendLabel)
	}
	if c.sending {
		button = sendButtonDisabledStyle.Render("Sending…")
	}

	box := inputBoxStyle
	if focused {
		box = box.BorderForeground(focusedBorderColor)
	}

	field := box.Width(width - lipgloss.Width(button) - 3).Render(c.input.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, field, " ", button)
}
