package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/catbot-chat/internal/client/connection"
	"github.com/yourusername/catbot-chat/internal/protocol"
)

type failingResponder struct{}

func (failingResponder) Name() string { return "failing" }

func (failingResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	return Reply{}, errors.New("model unavailable")
}

type recordingResponder struct {
	prompts []Prompt
}

func (r *recordingResponder) Name() string { return "recording" }

func (r *recordingResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	r.prompts = append(r.prompts, p)
	return Reply{Text: "ok", ResponseID: fmt.Sprintf("resp-%d", len(r.prompts))}, nil
}

func newTestServer(t *testing.T, responder Responder) *httptest.Server {
	t.Helper()

	log := zerolog.Nop()
	chat := NewChatManager(newTestStore(t), responder, log, 10)
	srv := httptest.NewServer(NewRouter(NewHandler(chat, log), log, []string{"http://localhost:3000"}))
	t.Cleanup(srv.Close)
	return srv
}

func postChat(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+protocol.PathChat, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestChatStoresBothTurns(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(&stubCats{cat: testCat}))

	resp := postChat(t, srv, `{"user_input":"show me a cat","room_id":"room-1"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp protocol.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chatResp))
	assert.Equal(t, "room-1", chatResp.RoomID)
	assert.Contains(t, chatResp.Reply.Message, "![cat](https://cdn.example/cat.jpg)")
	assert.NotEmpty(t, chatResp.Reply.ResponseID)

	hist, err := http.Get(srv.URL + protocol.PathHistory + "room-1")
	require.NoError(t, err)
	defer hist.Body.Close()

	var messages []protocol.Message
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&messages))
	require.Len(t, messages, 2)
	assert.Equal(t, protocol.SenderUser, messages[0].Sender)
	assert.Equal(t, "show me a cat", messages[0].Text)
	assert.Equal(t, protocol.SenderSystem, messages[1].Sender)
	assert.Equal(t, chatResp.Reply.ResponseID, messages[1].ResponseID)
}

func TestChatAssignsRoomWhenMissing(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))

	resp := postChat(t, srv, `{"user_input":"hi"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var chatResp protocol.ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&chatResp))
	assert.Len(t, chatResp.RoomID, 36)
}

func TestChatRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))

	cases := map[string]string{
		"not json":    `{`,
		"blank input": `{"user_input":"   ","room_id":"r"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postChat(t, srv, body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var e protocol.ErrorResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
			assert.NotEmpty(t, e.Error)
		})
	}
}

func TestChatPassesPriorTurnsToResponder(t *testing.T) {
	ctx := context.Background()
	responder := &recordingResponder{}
	chat := NewChatManager(newTestStore(t), responder, zerolog.Nop(), 10)

	_, _, err := chat.HandleChat(ctx, "r", "first")
	require.NoError(t, err)
	reply, _, err := chat.HandleChat(ctx, "r", "second")
	require.NoError(t, err)
	assert.Equal(t, "resp-2", reply.ResponseID)

	require.Len(t, responder.prompts, 2)
	assert.Empty(t, responder.prompts[0].History)

	prior := responder.prompts[1].History
	require.Len(t, prior, 2)
	assert.Equal(t, "first", prior[0].Text)
	assert.Equal(t, "resp-1", prior[1].ResponseID)
	assert.Equal(t, "second", responder.prompts[1].Input)
}

func TestChatResponderFailure(t *testing.T) {
	srv := newTestServer(t, failingResponder{})

	resp := postChat(t, srv, `{"user_input":"hi","room_id":"r"}`)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestChatSanitizesInput(t *testing.T) {
	cases := map[string]struct {
		input string
		want  string
	}{
		"comparison":  {"a<b and c>d", "a<b and c>d"},
		"generics":    {"func F[T any]() <T> & friends", "func F[T any]() <T> & friends"},
		"markup kept":  {"<b>bold</b> text", "<b>bold</b> text"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newTestServer(t, NewOfflineResponder(nil))

			body, err := json.Marshal(protocol.ChatRequest{UserInput: tc.input, RoomID: "r"})
			require.NoError(t, err)
			resp := postChat(t, srv, string(body))
			require.Equal(t, http.StatusOK, resp.StatusCode)

			hist, err := http.Get(srv.URL + protocol.PathHistory + "r")
			require.NoError(t, err)
			defer hist.Body.Close()

			var messages []protocol.Message
			require.NoError(t, json.NewDecoder(hist.Body).Decode(&messages))
			require.NotEmpty(t, messages)
			assert.Equal(t, tc.want, messages[0].Text)
		})
	}
}

func TestSanitizeInputCapsLength(t *testing.T) {
	long := strings.Repeat("é", maxInputLength+10)
	assert.Equal(t, maxInputLength, len([]rune(sanitizeInput(long))))
	assert.Equal(t, "ok", sanitizeInput("ok\xff"))
}

func TestRoomsAndEmptyHistory(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))

	resp, err := http.Get(srv.URL + protocol.PathRooms)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var rooms map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rooms))
	assert.Equal(t, []any{}, rooms["rooms"], "rooms is an empty array, never null")

	hist, err := http.Get(srv.URL + protocol.PathHistory + "missing")
	require.NoError(t, err)
	defer hist.Body.Close()

	var messages []any
	require.NoError(t, json.NewDecoder(hist.Body).Decode(&messages))
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+protocol.PathChat, nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}

// The TUI's API client and the reference server agree on the wire format
func TestClientAgainstServer(t *testing.T) {
	srv := newTestServer(t, NewOfflineResponder(nil))
	ctx := context.Background()

	api, err := connection.NewManager(srv.URL)
	require.NoError(t, err)

	roomIDs := []string{"room 1/a", "50%off", "x/y%z", "plain"}
	for _, room := range roomIDs {
		require.NoError(t, api.Send(ctx, room, "hello"))
	}

	rooms, err := api.ListRooms(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, roomIDs, rooms)

	for _, room := range roomIDs {
		messages, err := api.History(ctx, room)
		require.NoError(t, err, room)
		require.Len(t, messages, 2, room)
		assert.True(t, messages[0].IsSelf())
		assert.False(t, messages[1].IsSelf())
		assert.Equal(t, room, messages[0].RoomID)
	}

	err = api.Send(ctx, roomIDs[0], "   ")
	require.Error(t, err)
	assert.True(t, connection.IsNetwork(err))
	assert.Contains(t, err.Error(), ErrEmptyInput.Error())
}
