package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

var history = []protocol.Message{
	{ID: 1, Sender: "Bot", Text: "hi", Timestamp: "2024-01-01T00:00:00Z"},
}

func TestInitialState(t *testing.T) {
	var tr Tracker
	assert.Equal(t, NoRoomSelected, tr.Phase())
	assert.Empty(t, tr.SelectedRoom())
	assert.False(t, tr.RefreshPending())
	assert.Nil(t, tr.Refresh(), "refresh without a room must not fetch")
	assert.False(t, tr.RefreshPending())
	assert.Nil(t, tr.Retry())
}

func TestSelectFetchesAndLoads(t *testing.T) {
	var tr Tracker

	f := tr.Select("r1")
	require.NotNil(t, f)
	assert.Equal(t, "r1", f.Room)
	assert.False(t, f.Refresh)
	assert.Equal(t, Loading, tr.Phase())

	next, ok := tr.Loaded(*f, history)
	require.True(t, ok)
	assert.Nil(t, next)
	assert.Equal(t, Loaded, tr.Phase())
	assert.Equal(t, history, tr.Messages())

	_, inflight := tr.InFlight()
	assert.False(t, inflight)
}

func TestSelectSameRoomIsNoop(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	require.NotNil(t, f)
	_, _ = tr.Loaded(*f, history)

	assert.Nil(t, tr.Select("r1"))
	assert.Equal(t, Loaded, tr.Phase())
}

func TestRefreshClearedExactlyOnce(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	_, _ = tr.Loaded(*f, history)

	rf := tr.Refresh()
	require.NotNil(t, rf)
	assert.True(t, rf.Refresh)
	assert.True(t, tr.RefreshPending())
	assert.Equal(t, Loading, tr.Phase())

	// a second pulse while the first is being served is absorbed
	assert.Nil(t, tr.Refresh())

	next, ok := tr.Loaded(*rf, history)
	require.True(t, ok)
	assert.Nil(t, next, "no follow-up fetch for an already served flag")
	assert.False(t, tr.RefreshPending())

	// a replayed response for the same request is stale
	_, ok = tr.Loaded(*rf, history)
	assert.False(t, ok)
}

func TestRefreshDuringSelectionFetchIsServedOnce(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	require.NotNil(t, f)

	assert.Nil(t, tr.Refresh(), "no duplicate fetch while loading")
	assert.Nil(t, tr.Refresh())
	assert.True(t, tr.RefreshPending())

	// the selection fetch does not clear the flag; one follow-up does
	next, ok := tr.Loaded(*f, nil)
	require.True(t, ok)
	require.NotNil(t, next)
	assert.True(t, next.Refresh)
	assert.True(t, tr.RefreshPending())
	assert.Equal(t, Loading, tr.Phase())

	last, ok := tr.Loaded(*next, history)
	require.True(t, ok)
	assert.Nil(t, last)
	assert.False(t, tr.RefreshPending())
	assert.Equal(t, history, tr.Messages())
}

func TestFailureClearsFlagAndAllowsRetry(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	_, _ = tr.Loaded(*f, history)

	rf := tr.Refresh()
	require.NotNil(t, rf)

	boom := errors.New("boom")
	next, ok := tr.Failed(*rf, boom)
	require.True(t, ok)
	assert.Nil(t, next)
	assert.Equal(t, LoadError, tr.Phase())
	assert.ErrorIs(t, tr.Err(), boom)
	assert.False(t, tr.RefreshPending(), "failure must not leave the flag stuck")

	// the next pulse starts a new cycle
	again := tr.Refresh()
	require.NotNil(t, again)
	assert.Greater(t, again.Seq, rf.Seq)

	_, ok = tr.Loaded(*again, history)
	require.True(t, ok)
	assert.Nil(t, tr.Err())
}

func TestRetryAfterFailure(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	_, _ = tr.Failed(*f, errors.New("down"))

	r := tr.Retry()
	require.NotNil(t, r)
	assert.Equal(t, "r1", r.Room)
	assert.Nil(t, tr.Retry(), "no retry while a request is running")
}

func TestStaleResponseAfterRoomSwitch(t *testing.T) {
	var tr Tracker
	a := tr.Select("a")
	b := tr.Select("b")
	require.NotNil(t, a)
	require.NotNil(t, b)

	_, ok := tr.Loaded(*a, history)
	assert.False(t, ok, "response for a deselected room is discarded")
	assert.Equal(t, Loading, tr.Phase())

	// switching back issues a new request; the old one for "a" is still stale
	a2 := tr.Select("a")
	require.NotNil(t, a2)
	_, ok = tr.Loaded(*a, history)
	assert.False(t, ok)
	_, ok = tr.Failed(*b, errors.New("late"))
	assert.False(t, ok)

	_, ok = tr.Loaded(*a2, history)
	assert.True(t, ok)
	assert.Equal(t, "a", tr.SelectedRoom())
	assert.Equal(t, Loaded, tr.Phase())
}

func TestDeselect(t *testing.T) {
	var tr Tracker
	f := tr.Select("r1")
	assert.Nil(t, tr.Select(""))
	assert.Equal(t, NoRoomSelected, tr.Phase())
	_, ok := tr.Loaded(*f, history)
	assert.False(t, ok)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "phase(9)", Phase(9).String())
}
