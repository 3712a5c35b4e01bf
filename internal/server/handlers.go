package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 64 * 1024

// Handler serves the chat API
type Handler struct {
	chat *ChatManager
	log  zerolog.Logger
}

// NewHandler creates a Handler over chat
func NewHandler(chat *ChatManager, log zerolog.Logger) *Handler {
	return &Handler{chat: chat, log: log}
}

// NewRouter wires middleware and routes. allowedOrigins configures CORS for browser
// clients.
func NewRouter(h *Handler, logger zerolog.Logger, allowedOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(recordMetrics)
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)

	r.Get(protocol.PathRooms, h.ListRooms)
	r.Get(protocol.PathHistory+"{room_id}", h.History)
	r.Post(protocol.PathChat, h.Chat)

	return r
}

// JSON sends a JSON response with the given status code
func (h *Handler) JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Warn().Err(err).Msg("write response")
	}
}

// Error sends a JSON error response with the given status code
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, protocol.ErrorResponse{Error: message})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListRooms handles GET /api/rooms
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.chat.Rooms(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("list rooms")
		h.Error(w, http.StatusInternalServerError, "could not list rooms")
		return
	}
	h.JSON(w, http.StatusOK, protocol.RoomsResponse{Rooms: rooms})
}

// History handles GET /api/history/{room_id}
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	// chi matches on RawPath when the request carried escapes the decoded Path
	// cannot represent, and the param is still escaped only in that case
	roomID := chi.URLParam(r, "room_id")
	if r.URL.RawPath != "" {
		unescaped, err := url.PathUnescape(roomID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid room id")
			return
		}
		roomID = unescaped
	}

	messages, err := h.chat.History(r.Context(), roomID)
	if err != nil {
		h.log.Error().Err(err).Str("room", roomID).Msg("load history")
		h.Error(w, http.StatusInternalServerError, "could not load history")
		return
	}
	h.JSON(w, http.StatusOK, messages)
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req protocol.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	reply, roomID, err := h.chat.HandleChat(r.Context(), req.RoomID, req.UserInput)
	if err != nil {
		var rerr *ResponderError
		switch {
		case errors.Is(err, ErrEmptyInput):
			h.Error(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &rerr):
			h.log.Error().Err(err).Str("room", roomID).Msg("assistant failed")
			h.Error(w, http.StatusBadGateway, "assistant unavailable")
		default:
			h.log.Error().Err(err).Str("room", roomID).Msg("chat turn failed")
			h.Error(w, http.StatusInternalServerError, "could not process message")
		}
		return
	}

	h.JSON(w, http.StatusOK, protocol.ChatResponse{Reply: reply, RoomID: roomID})
}
