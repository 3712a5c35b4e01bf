package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RoomEntry is one row of the room list
type RoomEntry struct {
	ID string
	// Pending is set for rooms created locally that the backend has not seen yet
	Pending bool
}

// roomList is the left panel: known rooms, a cursor and the highlighted room
type roomList struct {
	entries     []RoomEntry
	cursor      int
	highlighted string
	loaded      bool
}

// replace swaps in the backend listing. Pending rooms the backend does not know yet
// stay at the top.
func (r *roomList) replace(ids []string) {
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}

	entries := make([]RoomEntry, 0, len(ids)+len(r.entries))
	for _, e := range r.entries {
		if e.Pending && !known[e.ID] {
			entries = append(entries, e)
		}
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		entries = append(entries, RoomEntry{ID: id})
	}

	r.entries = entries
	r.loaded = true
	r.clampCursor()
}

// create prepends a locally generated room and returns its id. Ids follow the
// room-<unix millis> scheme and are bumped until unique in the list.
func (r *roomList) create(now time.Time) string {
	ms := now.UnixMilli()
	id := fmt.Sprintf("room-%d", ms)
	for r.index(id) >= 0 {
		ms++
		id = fmt.Sprintf("room-%d", ms)
	}

	r.entries = append([]RoomEntry{{ID: id, Pending: true}}, r.entries...)
	r.cursor = 0
	return id
}

// confirm clears the pending mark once the backend has accepted a message for id
func (r *roomList) confirm(id string) {
	if i := r.index(id); i >= 0 {
		r.entries[i].Pending = false
	}
}

// highlight marks id as selected and moves the cursor onto it
func (r *roomList) highlight(id string) {
	r.highlighted = id
	if i := r.index(id); i >= 0 {
		r.cursor = i
	}
}

func (r *roomList) move(delta int) {
	r.cursor += delta
	r.clampCursor()
}

// current returns the room under the cursor
func (r *roomList) current() (string, bool) {
	if len(r.entries) == 0 {
		return "", false
	}
	return r.entries[r.cursor].ID, true
}

func (r *roomList) index(id string) int {
	for i, e := range r.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (r *roomList) clampCursor() {
	if r.cursor >= len(r.entries) {
		r.cursor = len(r.entries) - 1
	}
	if r.cursor < 0 {
		r.cursor = 0
	}
}

// view renders the panel content (without the surrounding box)
func (r *roomList) view(width, height int, focused bool) string {
	title := panelTitleStyle.Width(width).Render("CHAT ROOMS")
	newChat := newChatStyle.Render("+ New Chat (n)")

	lines := []string{title, newChat, ""}

	rows := height - len(lines)
	if rows < 1 {
		rows = 1
	}

	switch {
	case !r.loaded && len(r.entries) == 0:
		lines = append(lines, mutedStyle.Render("Loading rooms..."))
	case len(r.entries) == 0:
		lines = append(lines, mutedStyle.Render("No rooms yet"))
	default:
		// keep the cursor visible
		start := 0
		if r.cursor >= rows {
			start = r.cursor - rows + 1
		}
		end := start + rows
		if end > len(r.entries) {
			end = len(r.entries)
		}
		for i := start; i < end; i++ {
			lines = append(lines, r.row(i, width, focused))
		}
	}

	return strings.Join(lines, "\n")
}

func (r *roomList) row(i, width int, focused bool) string {
	e := r.entries[i]

	label := e.ID
	if e.Pending {
		label += " *"
	}
	if limit := width - 4; limit > 0 && lipgloss.Width(label) > limit {
		label = truncate(label, limit)
	}

	prefix := "  "
	if focused && i == r.cursor {
		prefix = cursorStyle.Render("> ")
	}

	style := optionStyle
	switch {
	case e.ID == r.highlighted:
		style = selectedOptionStyle
	case e.Pending:
		style = pendingRoomStyle
	}
	return prefix + style.Render(label)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 1 {
		return string(runes[:width])
	}
	return string(runes[:width-1]) + "…"
}
