package llm

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// CompletionRequest is the universal input for all LLM dialects.
type CompletionRequest struct {
	// Model overrides the client's default model.
	Model string `json:"model,omitempty"`
	// Messages is the conversation history.
	Messages []Message `json:"messages"`
	// SystemPrompt is prepended as a system message.
	SystemPrompt string `json:"system_prompt,omitempty"`
	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	// Nil means the client's default; use Temp to set an explicit value.
	Temperature *float64 `json:"temperature,omitempty"`
	// MaxTokens limits the response length. 0 means provider default.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Temp returns a pointer to v for CompletionRequest.Temperature.
func Temp(v float64) *float64 { return &v }

// temperature resolves the request temperature for dialect wire structs.
func (r CompletionRequest) temperature() float64 {
	if r.Temperature == nil {
		return 0
	}
	return *r.Temperature
}

// CompletionResponse is the universal output from all LLM dialects.
type CompletionResponse struct {
	// Content is the generated text.
	Content string `json:"content"`
	// Model is the model that produced the response.
	Model string `json:"model"`
}
