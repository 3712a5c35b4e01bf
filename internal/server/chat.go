package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// ErrEmptyInput is returned for a chat request with nothing to say
var ErrEmptyInput = errors.New("user_input is required")

// ResponderError wraps a failure of the assistant backend
type ResponderError struct {
	Responder string
	Err       error
}

func (e *ResponderError) Error() string {
	return fmt.Sprintf("responder %s: %v", e.Responder, e.Err)
}

func (e *ResponderError) Unwrap() error { return e.Err }

// ChatManager runs chat turns: it stores the user turn, asks the responder and
// stores the reply
type ChatManager struct {
	store     *Store
	responder Responder
	log       zerolog.Logger
	window    int

	// one turn at a time per room keeps the log in question/answer order
	mu    sync.Mutex
	rooms map[string]*sync.Mutex
}

// NewChatManager creates a chat manager. window is the number of earlier turns
// handed to the responder.
func NewChatManager(store *Store, responder Responder, log zerolog.Logger, window int) *ChatManager {
	return &ChatManager{
		store:     store,
		responder: responder,
		log:       log,
		window:    window,
		rooms:     make(map[string]*sync.Mutex),
	}
}

// HandleChat runs one turn in roomID. A blank roomID starts a new room; the room
// used is returned with the reply.
func (cm *ChatManager) HandleChat(ctx context.Context, roomID, input string) (protocol.ChatReply, string, error) {
	input = sanitizeInput(input)
	if strings.TrimSpace(input) == "" {
		return protocol.ChatReply{}, "", ErrEmptyInput
	}
	if strings.TrimSpace(roomID) == "" {
		roomID = uuid.New().String()
	}

	lock := cm.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	history, err := cm.store.RecentMessages(ctx, roomID, cm.window)
	if err != nil {
		return protocol.ChatReply{}, roomID, err
	}

	if _, err := cm.store.SaveMessage(ctx, roomID, protocol.SenderUser, input, ""); err != nil {
		return protocol.ChatReply{}, roomID, err
	}
	messagesStored.WithLabelValues(protocol.SenderUser).Inc()

	reply, err := cm.responder.Respond(ctx, Prompt{Input: input, History: history})
	responderRequests.WithLabelValues(cm.responder.Name(), outcome(err)).Inc()
	if err != nil {
		return protocol.ChatReply{}, roomID, &ResponderError{Responder: cm.responder.Name(), Err: err}
	}

	if _, err := cm.store.SaveMessage(ctx, roomID, protocol.SenderSystem, reply.Text, reply.ResponseID); err != nil {
		return protocol.ChatReply{}, roomID, err
	}
	messagesStored.WithLabelValues(protocol.SenderSystem).Inc()

	cm.log.Debug().
		Str("room", roomID).
		Str("response", reply.ResponseID).
		Int("history", len(history)).
		Msg("chat turn completed")

	return protocol.ChatReply{Message: reply.Text, ResponseID: reply.ResponseID}, roomID, nil
}

// Rooms returns every room, most recently active first
func (cm *ChatManager) Rooms(ctx context.Context) ([]string, error) {
	return cm.store.ListRooms(ctx)
}

// History returns all messages of roomID, oldest first
func (cm *ChatManager) History(ctx context.Context, roomID string) ([]protocol.Message, error) {
	return cm.store.History(ctx, roomID)
}

func (cm *ChatManager) roomLock(roomID string) *sync.Mutex {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	l, ok := cm.rooms[roomID]
	if !ok {
		l = &sync.Mutex{}
		cm.rooms[roomID] = l
	}
	return l
}
