package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v6"
)

type ChatProvider string

const (
	ProviderGateway ChatProvider = "gateway"
	ProviderOpenAI  ChatProvider = "openai"
	ProviderYandex  ChatProvider = "yandex"
)

type Config struct {
	TelegramBotToken string  `env:"TELEGRAM_BOT_TOKEN,required"`
	AllowedUsers     []int64 `env:"ALLOWED_USERS" envSeparator:":"`

	// Gateway settings
	GatewayHost        string `env:"GATEWAY_HOST" envDefault:"127.0.0.1"`
	GatewayPort        int    `env:"GATEWAY_PORT" envDefault:"8080"`
	GatewayAccessToken string `env:"GATEWAY_ACCESS_TOKEN"`

	// Request client settings
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RetryBudget    int           `env:"RETRY_BUDGET" envDefault:"2"`
	RetryBackoff   time.Duration `env:"RETRY_BACKOFF" envDefault:"1s"`
	MaxBodyBytes   int64         `env:"MAX_BODY_BYTES" envDefault:"10485760"`

	// Chat backend settings
	ChatProvider     ChatProvider `env:"CHAT_PROVIDER" envDefault:"gateway"`
	OpenAIAPIKey     string       `env:"OPENAI_API_KEY"`
	OpenAIBaseURL    string       `env:"OPENAI_BASE_URL"`
	OpenAIModel      string       `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	YandexOAuthToken string       `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string       `env:"YANDEX_FOLDER_ID"`

	// Dialogue settings
	ContextWindow int `env:"CONTEXT_WINDOW" envDefault:"5"`

	// Storage
	LogFilePath string `env:"LOG_FILE_PATH" envDefault:"logs/interactions.jsonl"`

	// Daily briefing
	BriefingRegion string `env:"BRIEFING_REGION" envDefault:"서울"`
	BriefingSpec   string `env:"BRIEFING_SPEC" envDefault:"0 7 * * *"`

	// Voice output
	VoiceEnabled bool `env:"VOICE_ENABLED" envDefault:"false"`
}

func New() *Config {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

// GatewayBaseURL resolves the single gateway host every backend path hangs off.
func (c *Config) GatewayBaseURL() string {
	return fmt.Sprintf("http://%s:%d", c.GatewayHost, c.GatewayPort)
}
