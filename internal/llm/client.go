package llm

import (
	"context"
	"encoding/json"
)

type Message struct {
	Role    string
	Content string
}

// Classification is auxiliary metadata some chat backends attach to a
// reply: their own guess at what the turn was about. It is advisory
// telemetry only and never authorizes an action by itself.
type Classification struct {
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

type Response struct {
	Content          string
	Model            string
	Classification   *Classification
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

type Client interface {
	Generate(ctx context.Context, messages []Message) (Response, error)
}
