package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yourusername/catbot-chat/internal/client/chat"
	"github.com/yourusername/catbot-chat/internal/protocol"
)

// roomsLoadedMsg is sent when the room list arrives
type roomsLoadedMsg struct {
	rooms []string
}

// roomsFailedMsg is sent when the room list could not be loaded
type roomsFailedMsg struct {
	err error
}

// historyLoadedMsg carries a history response tagged with the request it answers
type historyLoadedMsg struct {
	fetch    chat.Fetch
	messages []protocol.Message
}

// historyFailedMsg reports a failed history request
type historyFailedMsg struct {
	fetch chat.Fetch
	err   error
}

// sentMsg is sent when the backend accepted a message
type sentMsg struct {
	room string
}

// sendFailedMsg is sent when posting a message failed
type sendFailedMsg struct {
	room string
	err  error
}

// loadRoomsCmd fetches the room list once
func loadRoomsCmd(api Backend) tea.Cmd {
	return func() tea.Msg {
		rooms, err := api.ListRooms(context.Background())
		if err != nil {
			return roomsFailedMsg{err: err}
		}
		return roomsLoadedMsg{rooms: rooms}
	}
}

// fetchHistoryCmd runs the history request described by f
func fetchHistoryCmd(api Backend, f *chat.Fetch) tea.Cmd {
	if f == nil {
		return nil
	}
	fetch := *f
	return func() tea.Msg {
		messages, err := api.History(context.Background(), fetch.Room)
		if err != nil {
			return historyFailedMsg{fetch: fetch, err: err}
		}
		return historyLoadedMsg{fetch: fetch, messages: messages}
	}
}

// sendCmd posts text to room
func sendCmd(api Backend, room, text string) tea.Cmd {
	return func() tea.Msg {
		if err := api.Send(context.Background(), room, text); err != nil {
			return sendFailedMsg{room: room, err: err}
		}
		return sentMsg{room: room}
	}
}
