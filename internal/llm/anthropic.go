package llm

import (
	"encoding/json"
	"fmt"
)

func init() {
	RegisterDialect(&anthropicDialect{})
}

const anthropicVersion = "2023-06-01"

// anthropicDialect speaks the Anthropic messages API.
type anthropicDialect struct{}

func (d *anthropicDialect) Name() string     { return "anthropic" }
func (d *anthropicDialect) ChatPath() string { return "/messages" }

func (d *anthropicDialect) AuthHeaders(secret string) map[string]string {
	headers := map[string]string{"anthropic-version": anthropicVersion}
	if secret != "" {
		headers["x-api-key"] = secret
	}
	return headers
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type anthropicResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (d *anthropicDialect) BuildRequest(req CompletionRequest) (any, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096 // the messages API requires an explicit cap
	}
	return anthropicRequest{
		Model:       req.Model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Messages:    req.Messages,
		Temperature: req.temperature(),
	}, nil
}

func (d *anthropicDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("anthropic: decode response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("anthropic: response contains no content blocks")
	}
	return &CompletionResponse{
		Content: resp.Content[0].Text,
		Model:   resp.Model,
	}, nil
}
