package llm

import (
	"fmt"

	"haru-assistant/internal/config"
	"haru-assistant/internal/gateway"
)

// NewClient selects the chat provider. The gateway backend is the
// default; direct OpenAI or Yandex can be configured for deployments
// without a gateway chat service.
func NewClient(cfg *config.Config, gw *gateway.Client) (Client, error) {
	switch cfg.ChatProvider {
	case config.ProviderGateway:
		return NewGateway(gw), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), nil
	case config.ProviderYandex:
		return NewYandex(cfg.YandexOAuthToken, cfg.YandexFolderID)
	default:
		return nil, fmt.Errorf("unknown chat provider: %s", cfg.ChatProvider)
	}
}
