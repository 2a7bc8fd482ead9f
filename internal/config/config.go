package config

import (
	"context"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	einomodel "github.com/cloudwego/eino/components/model"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Risk-scoring backend (Ark). When no API key is set the server falls
	// back to the keyword analyzer.
	ArkAPIKey  string `env:"ARK_API_KEY"`
	ArkModel   string `env:"ARK_MODEL"`
	ArkBaseURL string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	ArkRegion  string `env:"ARK_REGION" envDefault:"cn-beijing"`

	RiskPromptPath string `env:"RISK_PROMPT_PATH"`

	NtfyBaseURL string `env:"NTFY_BASE_URL" envDefault:"https://ntfy.sh"`

	TranscriptCapacity int `env:"TRANSCRIPT_CAPACITY" envDefault:"6"`

	// Active sessions without updates for this long get a LOCATION_STALE
	// notification. Zero disables the watchdog.
	StaleLocationAfterMinutes int `env:"STALE_LOCATION_AFTER_MINUTES" envDefault:"10"`

	RateLimitPerMin int `env:"RATE_LIMIT_PER_MIN" envDefault:"120"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) StaleLocationAfter() time.Duration {
	return time.Duration(c.StaleLocationAfterMinutes) * time.Minute
}

// AnalyzerEnabled reports whether Ark credentials are configured.
func (c *Config) AnalyzerEnabled() bool {
	return c.ArkAPIKey != "" && c.ArkModel != ""
}

// NewChatModel creates the Ark chat model used by the risk analyzer.
func (c *Config) NewChatModel(ctx context.Context) (einomodel.ChatModel, error) {
	if !c.AnalyzerEnabled() {
		return nil, fmt.Errorf("ARK_API_KEY and ARK_MODEL must both be set")
	}

	return ark.NewChatModel(ctx, &ark.ChatModelConfig{
		BaseURL: c.ArkBaseURL,
		Region:  c.ArkRegion,
		APIKey:  c.ArkAPIKey,
		Model:   c.ArkModel,
	})
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
