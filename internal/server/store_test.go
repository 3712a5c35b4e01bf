package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// newTestStore opens a store in a temp dir with a clock that advances one second per
// call
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "data", "chat.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestStoreSaveAndHistory(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.SaveMessage(ctx, "r1", protocol.SenderUser, "hello", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "2024-01-01T00:00:01.000000Z", first.Timestamp)

	_, err = s.SaveMessage(ctx, "r1", protocol.SenderSystem, "meow", "resp-1")
	require.NoError(t, err)
	_, err = s.SaveMessage(ctx, "r2", protocol.SenderUser, "other room", "")
	require.NoError(t, err)

	history, err := s.History(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "hello", history[0].Text)
	assert.Equal(t, protocol.SenderUser, history[0].Sender)
	assert.Empty(t, history[0].ResponseID)
	assert.Equal(t, "meow", history[1].Text)
	assert.Equal(t, "resp-1", history[1].ResponseID)
	assert.Equal(t, "r1", history[1].RoomID)
}

func TestStoreHistoryUnknownRoomIsEmpty(t *testing.T) {
	s := newTestStore(t)

	history, err := s.History(context.Background(), "nope")
	require.NoError(t, err)
	assert.NotNil(t, history)
	assert.Empty(t, history)
}

func TestStoreListRoomsMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, rooms)

	for _, room := range []string{"a", "b", "a", "c", "b"} {
		_, err := s.SaveMessage(ctx, room, protocol.SenderUser, "x", "")
		require.NoError(t, err)
	}

	rooms, err = s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, rooms)
}

func TestStoreRecentMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, text := range []string{"1", "2", "3", "4"} {
		_, err := s.SaveMessage(ctx, "r", protocol.SenderUser, text, "")
		require.NoError(t, err)
	}

	recent, err := s.RecentMessages(ctx, "r", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "3", recent[0].Text)
	assert.Equal(t, "4", recent[1].Text)

	none, err := s.RecentMessages(ctx, "r", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}
