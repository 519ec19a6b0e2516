package llm

import (
	"encoding/json"
	"fmt"
)

func init() {
	RegisterDialect(&openAIDialect{name: "openai"})
	// Custom providers are OpenAI-compatible endpoints under another name.
	RegisterDialect(&openAIDialect{name: "custom"})
}

// openAIDialect speaks the OpenAI chat completions API. It also serves any
// OpenAI-compatible endpoint via the "custom" registration.
type openAIDialect struct {
	name string
}

func (d *openAIDialect) Name() string     { return d.name }
func (d *openAIDialect) ChatPath() string { return "/chat/completions" }

// AuthHeaders returns a Bearer header, omitted entirely when no secret is
// configured (self-hosted compatible endpoints often need none).
func (d *openAIDialect) AuthHeaders(secret string) map[string]string {
	if secret == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + secret}
}

type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

func (d *openAIDialect) BuildRequest(req CompletionRequest) (any, error) {
	msgs := make([]Message, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, Message{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, req.Messages...)
	return openAIChatRequest{
		Model:       req.Model,
		Messages:    msgs,
		Temperature: req.temperature(),
		MaxTokens:   req.MaxTokens,
	}, nil
}

func (d *openAIDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var resp openAIChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", d.name, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s: response contains no choices", d.name)
	}
	return &CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}
