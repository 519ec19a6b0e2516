package llm

import (
	"encoding/json"
	"fmt"
)

func init() {
	RegisterDialect(&localDialect{})
}

// localDialect speaks the Ollama-native chat API. The local inference
// service requires no credential.
type localDialect struct{}

func (d *localDialect) Name() string     { return "local" }
func (d *localDialect) ChatPath() string { return "/api/chat" }

// AuthHeaders returns nil: the local service is unauthenticated.
func (d *localDialect) AuthHeaders(string) map[string]string { return nil }

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string            `json:"model"`
	Message ollamaChatMessage `json:"message"`
	Done    bool              `json:"done"`
}

func (d *localDialect) BuildRequest(req CompletionRequest) (any, error) {
	msgs := make([]ollamaChatMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		msgs = append(msgs, ollamaChatMessage{Role: "system", Content: req.SystemPrompt})
	}
	for _, m := range req.Messages {
		msgs = append(msgs, ollamaChatMessage{Role: m.Role, Content: m.Content})
	}
	return ollamaChatRequest{
		Model:    req.Model,
		Messages: msgs,
		Stream:   false,
		Options: ollamaOptions{
			Temperature: req.temperature(),
			NumPredict:  req.MaxTokens,
		},
	}, nil
}

func (d *localDialect) ParseResponse(body []byte) (*CompletionResponse, error) {
	var resp ollamaChatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("local: decode response: %w", err)
	}
	return &CompletionResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
	}, nil
}
