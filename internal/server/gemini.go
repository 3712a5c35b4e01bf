package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

// DefaultGeminiURL is the Generative Language API base address
const DefaultGeminiURL = "https://generativelanguage.googleapis.com"

// GeminiConfig configures the Gemini responder
type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// GeminiResponder answers through the Gemini REST API. Gemini gets no tool
// definitions; cat requests are detected up front and the picture is attached to
// the reply.
type GeminiResponder struct {
	cfg        GeminiConfig
	cats       CatFetcher
	httpClient *http.Client
	log        zerolog.Logger
}

// NewGeminiResponder creates the responder; cats may be nil
func NewGeminiResponder(cfg GeminiConfig, cats CatFetcher, log zerolog.Logger) *GeminiResponder {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGeminiURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &GeminiResponder{
		cfg:        cfg,
		cats:       cats,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        log,
	}
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	ResponseID string `json:"responseId"`
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (r *GeminiResponder) Name() string { return "gemini" }

func (r *GeminiResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	input := p.Input

	var cat *Cat
	if r.cats != nil && wantsCat(p.Input) {
		c, err := r.cats.RandomCat(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("cat lookup failed")
		} else {
			cat = &c
			info, _ := json.Marshal(c)
			input += "\n\n(A random cat was fetched for this answer: " + string(info) + ")"
		}
	}

	text, id, err := r.generate(ctx, p.History, input)
	if err != nil {
		return Reply{}, err
	}
	if cat != nil && !strings.Contains(text, cat.ImageURL) {
		text += "\n\n" + cat.Markdown()
	}
	if id == "" {
		id = "gemini-" + uuid.NewString()
	}
	return Reply{Text: text, ResponseID: id}, nil
}

// generate performs one generateContent call
func (r *GeminiResponder) generate(ctx context.Context, history []protocol.Message, input string) (string, string, error) {
	reqBody := geminiRequest{
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: systemPrompt}}},
	}
	for _, m := range history {
		role := "model"
		if m.Sender == protocol.SenderUser {
			role = "user"
		}
		reqBody.Contents = append(reqBody.Contents, geminiContent{Role: role, Parts: []geminiPart{{Text: m.Text}}})
	}
	reqBody.Contents = append(reqBody.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: input}}})

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", r.cfg.BaseURL, r.cfg.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", r.cfg.APIKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to connect to Gemini: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", "", fmt.Errorf("read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("gemini API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var geminiResp geminiResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", "", fmt.Errorf("bad gemini response format: %w", err)
	}

	if len(geminiResp.Candidates) == 0 || len(geminiResp.Candidates[0].Content.Parts) == 0 {
		return "", "", errors.New("empty response from gemini")
	}

	var parts []string
	for _, part := range geminiResp.Candidates[0].Content.Parts {
		parts = append(parts, part.Text)
	}
	return strings.TrimSpace(strings.Join(parts, "")), geminiResp.ResponseID, nil
}
