// Package chat holds the client-side chat state: which room is selected, whether a
// refresh was requested, and which history fetch is current.
//
// Tracker has no I/O. Its methods return a *Fetch when the caller should issue a
// history request, and the caller reports the outcome back with Loaded or Failed.
package chat

import (
	"fmt"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// Phase is the history panel state
type Phase int

const (
	NoRoomSelected Phase = iota
	Loading
	Loaded
	LoadError
)

func (p Phase) String() string {
	switch p {
	case NoRoomSelected:
		return "no-room"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case LoadError:
		return "error"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Fetch identifies one history request. Responses are matched back by Room and Seq.
type Fetch struct {
	Room string
	Seq  uint64
	// Refresh is true when the request was issued while the refresh flag was set;
	// only such a request clears the flag.
	Refresh bool
}

// Tracker is the state shared between the room list, history panel and composer.
// The zero value is ready to use and has no room selected.
type Tracker struct {
	selected string
	refresh  bool
	phase    Phase
	messages []protocol.Message
	err      error

	seq      uint64
	inflight *Fetch
	// pending records a refresh pulse that arrived while a request issued without
	// the flag was in flight
	pending bool
}

// SelectedRoom returns the selected room id, or "" when none is selected
func (t *Tracker) SelectedRoom() string { return t.selected }

// RefreshPending reports the refresh flag
func (t *Tracker) RefreshPending() bool { return t.refresh }

// Phase returns the current history state
func (t *Tracker) Phase() Phase { return t.phase }

// Messages returns the last successfully loaded history for the selected room
func (t *Tracker) Messages() []protocol.Message { return t.messages }

// Err returns the error of the last failed fetch while in LoadError
func (t *Tracker) Err() error { return t.err }

// InFlight returns the current request, if any
func (t *Tracker) InFlight() (Fetch, bool) {
	if t.inflight == nil {
		return Fetch{}, false
	}
	return *t.inflight, true
}

// Select changes the selected room. Selecting the room that is already selected
// does nothing; selecting "" clears the selection.
func (t *Tracker) Select(room string) *Fetch {
	if room == t.selected {
		return nil
	}

	t.selected = room
	t.messages = nil
	t.err = nil

	if room == "" {
		t.phase = NoRoomSelected
		t.inflight = nil
		t.pending = false
		return nil
	}
	return t.begin()
}

// Refresh sets the refresh flag. It returns a request unless one that will observe
// the flag is already running or no room is selected.
func (t *Tracker) Refresh() *Fetch {
	if t.selected == "" || t.refresh {
		return nil
	}
	t.refresh = true

	if t.phase == Loading {
		// the running request may predate the write that caused the pulse
		t.pending = true
		return nil
	}
	return t.begin()
}

// Retry reissues the history request for the selected room after a failure
func (t *Tracker) Retry() *Fetch {
	if t.selected == "" || t.phase == Loading {
		return nil
	}
	return t.begin()
}

// Loaded records a successful response. It returns false when the response is stale
// and was discarded, and a follow-up request when a refresh pulse arrived meanwhile.
func (t *Tracker) Loaded(f Fetch, messages []protocol.Message) (*Fetch, bool) {
	if !t.current(f) {
		return nil, false
	}

	t.phase = Loaded
	t.messages = messages
	t.err = nil
	return t.finish(f), true
}

// Failed records a failed response. The refresh flag is cleared as for a successful
// one so that the next trigger can start a new cycle.
func (t *Tracker) Failed(f Fetch, err error) (*Fetch, bool) {
	if !t.current(f) {
		return nil, false
	}

	t.phase = LoadError
	t.err = err
	return t.finish(f), true
}

func (t *Tracker) current(f Fetch) bool {
	return t.inflight != nil && f.Seq == t.inflight.Seq && f.Room == t.selected
}

func (t *Tracker) finish(f Fetch) *Fetch {
	t.inflight = nil
	if f.Refresh {
		t.refresh = false
	}
	if t.pending {
		return t.begin()
	}
	return nil
}

func (t *Tracker) begin() *Fetch {
	t.seq++
	t.phase = Loading
	t.pending = false
	t.inflight = &Fetch{Room: t.selected, Seq: t.seq, Refresh: t.refresh}
	f := *t.inflight
	return &f
}
