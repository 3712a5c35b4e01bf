package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yourusername/catbot-chat/internal/protocol"
)

const systemPrompt = `You are Cat Bot, a friendly assistant who loves cats.
Keep answers short. When the user wants to see a cat, call get_random_cat and include
the returned image in your answer as markdown: ![cat](image_url).`

// Prompt is everything a responder gets for one turn
type Prompt struct {
	Input string
	// History holds earlier turns of the room, oldest first
	History []protocol.Message
}

// Reply is an assistant turn
type Reply struct {
	Text       string
	ResponseID string
}

// Responder produces the assistant side of a conversation
type Responder interface {
	Name() string
	Respond(ctx context.Context, p Prompt) (Reply, error)
}

// wantsCat guesses whether the user asked for a cat picture. Used by responders
// without function calling.
func wantsCat(input string) bool {
	s := strings.ToLower(input)
	for _, word := range []string{"cat", "kitten", "kitty", "meow"} {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

// OfflineResponder answers without a language model. It still fetches cats.
type OfflineResponder struct {
	cats CatFetcher
}

// NewOfflineResponder creates a responder backed only by cats, which may be nil
func NewOfflineResponder(cats CatFetcher) *OfflineResponder {
	return &OfflineResponder{cats: cats}
}

func (r *OfflineResponder) Name() string { return "offline" }

func (r *OfflineResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	id := "offline-" + uuid.NewString()

	if r.cats != nil && wantsCat(p.Input) {
		cat, err := r.cats.RandomCat(ctx)
		if err != nil {
			return Reply{Text: "Could not fetch a cat right now 😿", ResponseID: id}, nil
		}
		return Reply{Text: cat.Markdown(), ResponseID: id}, nil
	}

	text := fmt.Sprintf("Meow! You said: %q. Ask me for a cat picture!", p.Input)
	return Reply{Text: text, ResponseID: id}, nil
}
