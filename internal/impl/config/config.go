package config

import (
	"os"
	"strings"

	"github.com/flowbridge/flowbridge/internal/domain/errs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds every recognized environment option. Required values are
// checked once at startup; a missing one is fatal, not a runtime error.
type Config struct {
	FlowBaseURL        string
	FlowWebhookBaseURL string
	FlowAPIKey         string
	FlowEnv            string
	AnthropicAPIKey    string
	AnthropicModel     string
	LogLevel           string

	SlackBotToken string
	SlackAppToken string
}

// InitConfig loads .env when present, then reads the environment. The
// returned error is a ConfigError naming the first missing required value.
func InitConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if os.IsNotExist(err) {
			logger.Debug("No .env file found; using system environment variables")
		} else {
			return nil, errs.ConfigErrorf("failed to load .env file: %v", err)
		}
	}

	cfg := &Config{
		FlowBaseURL:        os.Getenv("FLOW_BASE_URL"),
		FlowWebhookBaseURL: os.Getenv("FLOW_WEBHOOK_BASE_URL"),
		FlowAPIKey:         os.Getenv("FLOW_API_KEY"),
		FlowEnv:            strings.ToLower(os.Getenv("FLOW_ENV")),
		AnthropicAPIKey:    os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:     os.Getenv("ANTHROPIC_MODEL"),
		LogLevel:           os.Getenv("LOG_LEVEL"),

		SlackBotToken: os.Getenv("SLACK_BOT_TOKEN"),
		SlackAppToken: os.Getenv("SLACK_APP_TOKEN"),
	}

	if cfg.FlowWebhookBaseURL == "" {
		cfg.FlowWebhookBaseURL = cfg.FlowBaseURL
	}
	cfg.FlowBaseURL = strings.TrimRight(cfg.FlowBaseURL, "/")
	cfg.FlowWebhookBaseURL = strings.TrimRight(cfg.FlowWebhookBaseURL, "/")

	if cfg.FlowEnv == "" {
		cfg.FlowEnv = "development"
	}
	if cfg.AnthropicModel == "" {
		cfg.AnthropicModel = "claude-3-opus-20240229"
	}

	required := []struct {
		name  string
		value string
	}{
		{"FLOW_BASE_URL", cfg.FlowBaseURL},
		{"FLOW_API_KEY", cfg.FlowAPIKey},
		{"ANTHROPIC_API_KEY", cfg.AnthropicAPIKey},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, errs.ConfigErrorf("required environment variable %s is not set", r.name)
		}
	}

	logger.Info("Configuration loaded",
		zap.String("flow_base_url", cfg.FlowBaseURL),
		zap.String("flow_env", cfg.FlowEnv),
		zap.String("model", cfg.AnthropicModel),
		zap.String("flow_api_key", maskKey(cfg.FlowAPIKey)))

	return cfg, nil
}

// RequireSlack checks the Slack credentials needed by the Slack surface.
func (c *Config) RequireSlack() error {
	if c.SlackBotToken == "" {
		return errs.ConfigErrorf("required environment variable SLACK_BOT_TOKEN is not set")
	}
	if c.SlackAppToken == "" {
		return errs.ConfigErrorf("required environment variable SLACK_APP_TOKEN is not set")
	}
	return nil
}

// NewLogger builds a zap logger honoring LOG_LEVEL (debug, info, warn,
// error). Unknown or empty levels fall back to info.
func NewLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zapcore.ParseLevel(strings.ToLower(raw)); err == nil {
			level = parsed
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	return cfg.Build()
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
