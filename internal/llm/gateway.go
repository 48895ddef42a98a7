package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"haru-assistant/internal/envelope"
	"haru-assistant/internal/gateway"
)

// GatewayClient talks to the assistant-chat backend behind the shared
// gateway host. The reply travels in the standard envelope; alongside
// the text the backend may attach its own classification of the turn.
type GatewayClient struct {
	client *gateway.Client
}

func NewGateway(client *gateway.Client) *GatewayClient {
	return &GatewayClient{client: client}
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatReply struct {
	Reply          string          `json:"reply"`
	Model          string          `json:"model"`
	Classification *Classification `json:"classification"`
}

func (c *GatewayClient) Generate(ctx context.Context, messages []Message) (Response, error) {
	turns := make([]chatTurn, 0, len(messages))
	for _, m := range messages {
		turns = append(turns, chatTurn{Role: m.Role, Content: m.Content})
	}

	raw, _, err := c.client.PostJSON(ctx, "/chat/generate", map[string]any{"messages": turns})
	if err != nil {
		return Response{}, err
	}
	env, err := envelope.Normalize(raw)
	if err != nil {
		return Response{}, err
	}
	if err := envelope.Require(env); err != nil {
		return Response{}, err
	}
	if env.Payload.Kind != envelope.Single {
		return Response{}, fmt.Errorf("chat backend returned no reply record")
	}

	var reply chatReply
	if err := json.Unmarshal(env.Payload.One, &reply); err != nil {
		return Response{}, gateway.WrapError(gateway.KindDecode, 0, "chat reply is malformed", err)
	}
	return Response{
		Content:        reply.Reply,
		Model:          reply.Model,
		Classification: reply.Classification,
	}, nil
}
