package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/yourusername/catbot-chat/internal/content"
	"github.com/yourusername/catbot-chat/internal/protocol"
)

const catToolName = "get_random_cat"

// maxToolRounds bounds model/tool round trips per turn
const maxToolRounds = 3

var catTool = openai.Tool{
	Type: openai.ToolTypeFunction,
	Function: &openai.FunctionDefinition{
		Name:        catToolName,
		Description: "Get a random cat image and breed info from TheCatAPI",
		Parameters: json.RawMessage(`{"type":"object","properties":{},"required":[]}`),
	},
}

// OpenAIConfig configures the OpenAI responder
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIResponder answers with chat completions and exposes the cat tool
type OpenAIResponder struct {
	client *openai.Client
	model  string
	cats   CatFetcher
	log    zerolog.Logger
}

// NewOpenAIResponder creates the responder. cats may be nil, in which case the tool
// is not offered.
func NewOpenAIResponder(cfg OpenAIConfig, cats CatFetcher, log zerolog.Logger) *OpenAIResponder {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIResponder{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
		cats:   cats,
		log:    log,
	}
}

func (r *OpenAIResponder) Name() string { return "openai" }

func (r *OpenAIResponder) Respond(ctx context.Context, p Prompt) (Reply, error) {
	messages := r.convertMessages(p)

	var tools []openai.Tool
	if r.cats != nil {
		tools = []openai.Tool{catTool}
	}

	var catImage string
	for round := 0; round < maxToolRounds; round++ {
		resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    r.model,
			Messages: messages,
			Tools:    tools,
		})
		if err != nil {
			return Reply{}, fmt.Errorf("openai: %w", err)
		}
		if len(resp.Choices) == 0 {
			return Reply{}, errors.New("openai: no choices in response")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			text := strings.TrimSpace(msg.Content)
			// make sure a fetched picture reaches the chat even if the model dropped it
			if catImage != "" && !strings.Contains(text, catImage) {
				text += "\n\n" + content.Image("cat", catImage)
			}
			return Reply{Text: text, ResponseID: resp.ID}, nil
		}

		messages = append(messages, msg)
		for _, call := range msg.ToolCalls {
			output, url := r.callTool(ctx, call)
			if url != "" {
				catImage = url
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    output,
				ToolCallID: call.ID,
			})
		}
	}

	return Reply{}, fmt.Errorf("openai: no answer after %d tool rounds", maxToolRounds)
}

// callTool runs one tool call and returns its output and any cat image url
func (r *OpenAIResponder) callTool(ctx context.Context, call openai.ToolCall) (string, string) {
	if call.Function.Name != catToolName || r.cats == nil {
		return fmt.Sprintf(`{"error":"unknown tool %q"}`, call.Function.Name), ""
	}

	cat, err := r.cats.RandomCat(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("cat tool failed")
		return `{"text":"Could not fetch a cat right now 😿"}`, ""
	}

	out, err := json.Marshal(cat)
	if err != nil {
		return `{"error":"encode cat"}`, ""
	}
	return string(out), cat.ImageURL
}

func (r *OpenAIResponder) convertMessages(p Prompt) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(p.History)+2)
	result = append(result, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})

	for _, m := range p.History {
		role := openai.ChatMessageRoleAssistant
		if m.Sender == protocol.SenderUser {
			role = openai.ChatMessageRoleUser
		}
		result = append(result, openai.ChatCompletionMessage{Role: role, Content: m.Text})
	}

	return append(result, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: p.Input,
	})
}
