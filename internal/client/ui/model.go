package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/yourusername/catbot-chat/internal/client/chat"
	"github.com/yourusername/catbot-chat/internal/protocol"
)

// Backend is the part of the chat API the TUI needs
type Backend interface {
	ListRooms(ctx context.Context) ([]string, error)
	History(ctx context.Context, roomID string) ([]protocol.Message, error)
	Send(ctx context.Context, roomID, text string) error
}

// focusArea is the panel receiving key presses
type focusArea int

const (
	focusRooms focusArea = iota
	focusComposer
)

const (
	roomsPanelWidth = 32
	composerHeight  = 3
	chromeLines     = 3 // header, status line, help line
	minWidth        = 40
	minHeight       = 12
)

// Model is the main Bubble Tea model. It owns the chat state and composes the room
// list, the message history and the composer.
type Model struct {
	api       Backend
	log       zerolog.Logger
	serverURL string
	now       func() time.Time

	tracker  chat.Tracker
	rooms    roomList
	composer composer
	history  viewport.Model
	spinner  spinner.Model
	focus    focusArea

	// notices are failed operations shown until dismissed, newest last
	notices []string

	width  int
	height int
}

// Option configures a Model
type Option func(*Model)

// WithLogger sets the logger used for failed operations
func WithLogger(l zerolog.Logger) Option {
	return func(m *Model) { m.log = l }
}

// WithServerURL sets the backend address shown in the header
func WithServerURL(u string) Option {
	return func(m *Model) { m.serverURL = u }
}

// WithClock overrides the time source used for new room ids
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// NewModel creates the chat model backed by api
func NewModel(api Backend, opts ...Option) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	m := Model{
		api:      api,
		log:      zerolog.Nop(),
		now:      time.Now,
		composer: newComposer(),
		history:  viewport.New(0, 0),
		spinner:  s,
		focus:    focusRooms,
		width:    80,
		height:   24,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.layout()
	m.syncHistory(false)
	return m
}

// Init loads the room list; rooms are read once, on start
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadRoomsCmd(m.api),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.syncHistory(true)
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.tracker.Phase() == chat.Loading {
			m.syncHistory(false)
		}
		return m, cmd

	case roomsLoadedMsg:
		m.rooms.replace(msg.rooms)
		m.log.Info().Int("rooms", len(msg.rooms)).Msg("room list loaded")
		return m, nil

	case roomsFailedMsg:
		m.log.Error().Err(msg.err).Msg("load rooms failed")
		m.pushNotice("Could not load rooms: " + msg.err.Error())
		return m, nil

	case historyLoadedMsg:
		next, ok := m.tracker.Loaded(msg.fetch, msg.messages)
		if !ok {
			m.log.Debug().Str("room", msg.fetch.Room).Uint64("seq", msg.fetch.Seq).Msg("discarding stale history")
			return m, nil
		}
		m.syncHistory(true)
		return m, fetchHistoryCmd(m.api, next)

	case historyFailedMsg:
		next, ok := m.tracker.Failed(msg.fetch, msg.err)
		if !ok {
			m.log.Debug().Err(msg.err).Str("room", msg.fetch.Room).Msg("discarding stale history failure")
			return m, nil
		}
		m.log.Error().Err(msg.err).Str("room", msg.fetch.Room).Msg("load history failed")
		m.pushNotice("Could not load messages: " + msg.err.Error())
		m.syncHistory(true)
		return m, fetchHistoryCmd(m.api, next)

	case sentMsg:
		m.composer.sent()
		m.rooms.confirm(msg.room)
		f := m.tracker.Refresh()
		m.syncHistory(false)
		return m, fetchHistoryCmd(m.api, f)

	case sendFailedMsg:
		m.composer.failed()
		m.log.Error().Err(msg.err).Str("room", msg.room).Msg("send message failed")
		m.pushNotice("Could not send message: " + msg.err.Error())
		return m, nil
	}

	// cursor blinks and other widget-internal messages
	var cmd tea.Cmd
	m.composer, cmd = m.composer.update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "shift+tab":
		if m.focus == focusRooms {
			return m, m.setFocus(focusComposer)
		}
		return m, m.setFocus(focusRooms)

	case "esc":
		if len(m.notices) > 0 {
			m.notices = m.notices[:len(m.notices)-1]
			return m, nil
		}
		return m, m.setFocus(focusRooms)

	case "ctrl+r":
		f := m.tracker.Retry()
		m.syncHistory(false)
		return m, fetchHistoryCmd(m.api, f)

	case "pgup", "pgdown", "ctrl+u", "ctrl+d":
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	}

	if m.focus == focusRooms {
		return m.updateRooms(msg)
	}
	return m.updateComposer(msg)
}

// updateRooms handles keys while the room list has focus
func (m Model) updateRooms(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit

	case "up", "k":
		m.rooms.move(-1)

	case "down", "j":
		m.rooms.move(1)

	case "enter":
		if id, ok := m.rooms.current(); ok {
			return m.selectRoom(id)
		}

	case "n":
		return m.createRoom()
	}
	return m, nil
}

// updateComposer handles keys while the composer has focus
func (m Model) updateComposer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		return m.send()
	}
	if m.tracker.SelectedRoom() == "" {
		return m, nil
	}

	var cmd tea.Cmd
	m.composer, cmd = m.composer.update(msg)
	return m, cmd
}

// createRoom adds a locally generated room and selects it. The backend learns
// about the room with its first message.
func (m Model) createRoom() (tea.Model, tea.Cmd) {
	id := m.rooms.create(m.now())
	m.log.Info().Str("room", id).Msg("created local room")
	return m.selectRoom(id)
}

// selectRoom highlights id, propagates the selection and fetches its history
func (m Model) selectRoom(id string) (tea.Model, tea.Cmd) {
	m.rooms.highlight(id)
	f := m.tracker.Select(id)
	m.composer.setRoom(id)
	m.syncHistory(true)

	return m, tea.Batch(
		fetchHistoryCmd(m.api, f),
		m.setFocus(focusComposer),
	)
}

// send posts the composer text to the selected room. Blank input, a missing room
// or a send already in flight make it a no-op.
func (m Model) send() (tea.Model, tea.Cmd) {
	room := m.tracker.SelectedRoom()
	if !m.composer.canSend(room) {
		return m, nil
	}

	m.composer.sending = true
	return m, sendCmd(m.api, room, m.composer.value())
}

func (m *Model) setFocus(f focusArea) tea.Cmd {
	if f == focusComposer && m.tracker.SelectedRoom() == "" {
		return nil
	}
	m.focus = f
	if f == focusComposer {
		return m.composer.focus()
	}
	m.composer.blur()
	return nil
}

func (m *Model) pushNotice(text string) {
	m.notices = append(m.notices, text)
}

// layout sizes the widgets for the current terminal size
func (m *Model) layout() {
	_, _, histWidth, histHeight := m.dimensions()
	m.history.Width = histWidth
	m.history.Height = histHeight
	m.composer.setWidth(m.width - roomsPanelWidth)
}

// dimensions returns the body height, the rooms panel height and the history
// viewport size
func (m Model) dimensions() (bodyHeight, roomsHeight, histWidth, histHeight int) {
	width, height := m.width, m.height
	if width < minWidth {
		width = minWidth
	}
	if height < minHeight {
		height = minHeight
	}

	bodyHeight = height - chromeLines
	roomsHeight = bodyHeight - 2
	histWidth = width - roomsPanelWidth - 4
	histHeight = bodyHeight - composerHeight - 2
	return
}

// syncHistory re-renders the history panel; with bottom set a non-empty history is
// scrolled to the newest message
func (m *Model) syncHistory(bottom bool) {
	m.history.SetContent(historyContent(&m.tracker, m.history.Width, m.spinner.View()))
	if bottom && len(m.tracker.Messages()) > 0 {
		m.history.GotoBottom()
	}
}

// View renders the current view
func (m Model) View() string {
	_, roomsHeight, _, histHeight := m.dimensions()
	room := m.tracker.SelectedRoom()
	rightWidth := m.history.Width + 4

	header := titleStyle.Render("🐱 CAT BOT CHAT")
	if m.serverURL != "" {
		header += mutedStyle.Render("  " + m.serverURL)
	}

	roomsBox := roomsBoxStyle
	historyBox := historyBoxStyle
	if m.focus == focusRooms {
		roomsBox = roomsBox.BorderForeground(focusedBorderColor)
	}

	left := roomsBox.
		Width(roomsPanelWidth - 2).
		Height(roomsHeight).
		Render(m.rooms.view(roomsPanelWidth-4, roomsHeight, m.focus == focusRooms))

	right := lipgloss.JoinVertical(
		lipgloss.Left,
		historyBox.Width(rightWidth-2).Height(histHeight).Render(m.history.View()),
		m.composer.view(rightWidth, room, m.focus == focusComposer),
	)

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		body,
		m.statusLine(room),
		m.helpLine(),
	)
}

func (m Model) statusLine(room string) string {
	if n := len(m.notices); n > 0 {
		hint := " (esc to dismiss)"
		if n > 1 {
			hint = fmt.Sprintf(" (esc to dismiss, %d more)", n-1)
		}
		return errorStyle.Render("✗ "+m.notices[n-1]) + mutedStyle.Render(hint)
	}
	if room == "" {
		return mutedStyle.Render("No room selected")
	}
	return mutedStyle.Render("Room: ") + highlightStyle.Render(room)
}

func (m Model) helpLine() string {
	if m.focus == focusComposer {
		return instructionStyle.Render("ENTER: Send  •  TAB/ESC: Rooms  •  PGUP/PGDN: Scroll  •  CTRL+R: Retry  •  CTRL+C: Quit")
	}
	return instructionStyle.Render("↑/↓: Move  •  ENTER: Open  •  N: New chat  •  TAB: Compose  •  Q: Quit")
}
