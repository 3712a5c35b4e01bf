package protocol //handles the REST contract between client and server
// JSON bodies for /api/rooms, /api/history/{room_id} and /api/chat
import (
	"encoding/json"
	"errors"
	"fmt"
)

// API paths served by the backend
const (
	PathRooms   = "/api/rooms"
	PathHistory = "/api/history/" // followed by the room id
	PathChat    = "/api/chat"
)

// Well-known senders. Anything other than SenderUser is rendered as "other".
const (
	SenderUser   = "User"
	SenderSystem = "System"
)

// RoomsResponse is returned by GET /api/rooms
type RoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// Message is one chat turn as returned by GET /api/history/{room_id}.
//
// The backend emits "message" and "send_from"; "text" and "sender" are accepted too.
type Message struct {
	ID         int64  `json:"id"`
	RoomID     string `json:"room_id,omitempty"`
	Sender     string `json:"send_from"`
	Text       string `json:"message"`
	ResponseID string `json:"response_id,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// wireMessage mirrors Message with every accepted spelling
type wireMessage struct {
	ID         *int64  `json:"id"`
	RoomID     string  `json:"room_id"`
	SendFrom   *string `json:"send_from"`
	Sender     *string `json:"sender"`
	Message    *string `json:"message"`
	Text       *string `json:"text"`
	ResponseID *string `json:"response_id"`
	Timestamp  *string `json:"timestamp"`
}

// UnmarshalJSON accepts both field spellings and rejects objects missing required fields
func (m *Message) UnmarshalJSON(data []byte) error {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	sender := firstNonNil(w.SendFrom, w.Sender)
	text := firstNonNil(w.Message, w.Text)

	switch {
	case w.ID == nil:
		return errors.New("message: missing id")
	case sender == nil || *sender == "":
		return fmt.Errorf("message %d: missing sender", *w.ID)
	case text == nil:
		return fmt.Errorf("message %d: missing text", *w.ID)
	case w.Timestamp == nil || *w.Timestamp == "":
		return fmt.Errorf("message %d: missing timestamp", *w.ID)
	}

	*m = Message{
		ID:        *w.ID,
		RoomID:    w.RoomID,
		Sender:    *sender,
		Text:      *text,
		Timestamp: *w.Timestamp,
	}
	if w.ResponseID != nil {
		m.ResponseID = *w.ResponseID
	}
	return nil
}

// IsSelf reports whether the message was written by the local user.
// The comparison is exact and case-sensitive.
func (m Message) IsSelf() bool {
	return m.Sender == SenderUser
}

func firstNonNil(values ...*string) *string {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

// ChatRequest is the body of POST /api/chat
type ChatRequest struct {
	UserInput string `json:"user_input"`
	RoomID    string `json:"room_id"`
}

// ChatReply is the assistant turn produced for a ChatRequest
type ChatReply struct {
	Message    string `json:"message"`
	ResponseID string `json:"response_id"`
}

// ChatResponse is returned by POST /api/chat. Clients are free to ignore it.
type ChatResponse struct {
	Reply ChatReply `json:"reply"`
	// RoomID echoes the room, which the server assigns when the request had none
	RoomID string `json:"room_id,omitempty"`
}

// ErrorResponse is the body of every non-2xx reply from the reference server
type ErrorResponse struct {
	Error string `json:"error"`
}
