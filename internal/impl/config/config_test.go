package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("FLOW_BASE_URL", "https://flow.example.com/")
	t.Setenv("FLOW_API_KEY", "flow-key")
	t.Setenv("ANTHROPIC_API_KEY", "anthropic-key")
}

func TestInitConfig_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_WEBHOOK_BASE_URL", "")
	t.Setenv("FLOW_ENV", "")
	t.Setenv("ANTHROPIC_MODEL", "")

	cfg, err := InitConfig(zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, "https://flow.example.com", cfg.FlowBaseURL)
	assert.Equal(t, cfg.FlowBaseURL, cfg.FlowWebhookBaseURL)
	assert.Equal(t, "development", cfg.FlowEnv)
	assert.Equal(t, "claude-3-opus-20240229", cfg.AnthropicModel)
}

func TestInitConfig_MissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_API_KEY", "")

	_, err := InitConfig(zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLOW_API_KEY")
}

func TestInitConfig_EnvLowercased(t *testing.T) {
	setRequired(t)
	t.Setenv("FLOW_ENV", "TEST")

	cfg, err := InitConfig(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.FlowEnv)
}

func TestRequireSlack(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, cfg.RequireSlack())

	cfg.SlackBotToken = "xoxb-token"
	err := cfg.RequireSlack()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_APP_TOKEN")

	cfg.SlackAppToken = "xapp-token"
	assert.NoError(t, cfg.RequireSlack())
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "****", maskKey("abcd"))
	assert.Equal(t, "********-key", maskKey("a-secret-key"))
}
