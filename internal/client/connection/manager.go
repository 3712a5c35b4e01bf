package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// maxErrorBody bounds how much of a failed response is kept for the error message
const maxErrorBody = 512

// Manager talks to the chat backend over its REST API
type Manager struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a Manager
type Option func(*Manager)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithLogger attaches a logger; the default discards everything
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// NewManager creates a manager for the backend at baseURL, e.g. http://127.0.0.1:5000
func NewManager(baseURL string, opts ...Option) (*Manager, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	m := &Manager{
		baseURL: strings.TrimRight(baseURL, "/"),
		// No timeout: requests run until the backend answers
		httpClient: &http.Client{},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// BaseURL returns the backend address without a trailing slash
func (m *Manager) BaseURL() string {
	return m.baseURL
}

// ListRooms fetches the ids of all rooms known to the backend
func (m *Manager) ListRooms(ctx context.Context) ([]string, error) {
	const op = "list rooms"

	body, err := m.do(ctx, op, http.MethodGet, protocol.PathRooms, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Rooms *[]string `json:"rooms"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &MalformedResponseError{Op: op, Err: err}
	}
	if resp.Rooms == nil {
		return nil, &MalformedResponseError{Op: op, Err: errors.New(`missing "rooms"`)}
	}

	m.log.Debug().Int("count", len(*resp.Rooms)).Msg("rooms loaded")
	return *resp.Rooms, nil
}

// History fetches the messages of a room in server order
func (m *Manager) History(ctx context.Context, roomID string) ([]protocol.Message, error) {
	const op = "load history"

	if roomID == "" {
		return nil, errors.New("load history: empty room id")
	}

	body, err := m.do(ctx, op, http.MethodGet, protocol.PathHistory+url.PathEscape(roomID), nil)
	if err != nil {
		return nil, err
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &MalformedResponseError{Op: op, Err: errors.New("expected a JSON array")}
	}

	var messages []protocol.Message
	if err := json.Unmarshal(body, &messages); err != nil {
		return nil, &MalformedResponseError{Op: op, Err: err}
	}

	m.log.Debug().Str("room", roomID).Int("count", len(messages)).Msg("history loaded")
	return messages, nil
}

// Send posts a user message to a room. The reply body is not used.
func (m *Manager) Send(ctx context.Context, roomID, text string) error {
	const op = "send message"

	payload, err := json.Marshal(protocol.ChatRequest{UserInput: text, RoomID: roomID})
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	if _, err := m.do(ctx, op, http.MethodPost, protocol.PathChat, payload); err != nil {
		return err
	}

	m.log.Debug().Str("room", roomID).Int("bytes", len(text)).Msg("message sent")
	return nil
}

// do performs a request and returns the body of a 2xx response
func (m *Manager) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, m.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{
			Op:     op,
			Status: resp.StatusCode,
			Detail: errorDetail(respBody),
			Err:    fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	return respBody, nil
}

// errorDetail extracts {"error": "..."} from a failed response, falling back to the raw body
func errorDetail(body []byte) string {
	var e protocol.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	detail := strings.TrimSpace(string(body))
	if len(detail) > maxErrorBody {
		detail = detail[:maxErrorBody] + "…"
	}
	return detail
}
