package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yourusername/catbot-chat/internal/client/chat"
	"github.com/yourusername/catbot-chat/internal/content"
	"github.com/yourusername/catbot-chat/internal/protocol"
)

// SenderClass is the visual treatment of a message author
type SenderClass int

const (
	ClassOther SenderClass = iota
	ClassSelf
)

func (c SenderClass) String() string {
	if c == ClassSelf {
		return "self"
	}
	return "other"
}

// ClassifySender returns ClassSelf only for the exact sender "User"
func ClassifySender(sender string) SenderClass {
	if sender == protocol.SenderUser {
		return ClassSelf
	}
	return ClassOther
}

// Timestamp layouts seen from backends, most specific first
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999", // Python isoformat() without offset
	"2006-01-02 15:04:05.999999999",
}

// formatTimestamp renders an ISO-8601 timestamp as local wall-clock time. Unparseable
// values are shown as they are.
func formatTimestamp(ts string) string {
	for _, layout := range timestampLayouts {
		var (
			t   time.Time
			err error
		)
		if strings.HasSuffix(layout, "999999999") {
			// no offset in the value: it is the server's local time
			t, err = time.ParseInLocation(layout, ts, time.Local)
		} else {
			t, err = time.Parse(layout, ts)
		}
		if err == nil {
			return t.Local().Format("15:04:05")
		}
	}
	return ts
}

// renderMessage renders one message as a bubble: a "sender · time" line followed by
// its content blocks
func renderMessage(msg protocol.Message, width int) string {
	class := ClassifySender(msg.Sender)

	bubble, meta := otherBubbleStyle, otherMetaStyle
	align := lipgloss.Left
	if class == ClassSelf {
		bubble, meta = selfBubbleStyle, selfMetaStyle
		align = lipgloss.Right
	}

	// bubbles take at most 80% of the panel
	bubbleWidth := width * 4 / 5
	if bubbleWidth < 10 {
		bubbleWidth = width
	}
	inner := bubbleWidth - bubble.GetHorizontalFrameSize()
	if inner < 1 {
		inner = 1
	}

	lines := []string{meta.Render(msg.Sender + " · " + formatTimestamp(msg.Timestamp))}
	for _, b := range content.Parse(msg.Text) {
		switch b.Kind {
		case content.KindText:
			lines = append(lines, lipgloss.NewStyle().Width(inner).Render(b.Text))
		case content.KindImage:
			lines = append(lines, imageStyle.Render("🖼  "+b.URL))
		}
	}

	rendered := bubble.Width(bubbleWidth).Render(strings.Join(lines, "\n"))
	return lipgloss.PlaceHorizontal(width, align, rendered)
}

// historyContent renders the history panel body for the tracker's current state
func historyContent(tr *chat.Tracker, width int, spinner string) string {
	if tr.SelectedRoom() == "" {
		return centerStyle.Width(width).Render("Select a room to see messages.")
	}

	messages := tr.Messages()
	var b strings.Builder

	switch tr.Phase() {
	case chat.Loading:
		if len(messages) == 0 {
			return spinnerStyle.Render(spinner) + " " + mutedStyle.Render("Loading messages...")
		}
	case chat.LoadError:
		b.WriteString(errorStyle.Render("✗ Could not load messages: " + errString(tr.Err())))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("Press ctrl+r to retry"))
		if len(messages) == 0 {
			return b.String()
		}
		b.WriteString("\n\n")
	}

	if len(messages) == 0 {
		return centerStyle.Width(width).Render("No messages yet. Say hello!")
	}

	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderMessage(msg, width))
	}
	return b.String()
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
