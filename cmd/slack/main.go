package main

import (
	"context"
	"time"

	"github.com/flowbridge/flowbridge/internal/domain/services"
	"github.com/flowbridge/flowbridge/internal/impl/config"
	"github.com/flowbridge/flowbridge/internal/impl/flowsource"
	"github.com/flowbridge/flowbridge/internal/impl/llm"
	"github.com/flowbridge/flowbridge/internal/slack"

	"go.uber.org/zap"
)

func main() {
	logger, err := config.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig(logger)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}
	if err := cfg.RequireSlack(); err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	source, err := flowsource.NewClient(cfg.FlowBaseURL, cfg.FlowAPIKey, logger)
	if err != nil {
		logger.Fatal("Failed to initialize workflow source", zap.Error(err))
	}

	model, err := llm.NewAnthropicClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
	if err != nil {
		logger.Fatal("Failed to initialize model client", zap.Error(err))
	}

	synthesizer := services.NewSynthesizer(model, cfg.FlowWebhookBaseURL, cfg.FlowEnv, logger)
	catalog := services.NewCatalog(source, synthesizer, logger)
	agent := services.NewAgent(model, catalog, logger)

	refreshCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if _, err := catalog.Refresh(refreshCtx); err != nil {
		logger.Warn("Initial tool refresh failed; catalog is empty until the next refresh", zap.Error(err))
	}
	cancel()

	handler := slack.NewHandler(agent, cfg.SlackBotToken, cfg.SlackAppToken, logger)

	logger.Info("Starting Slack handler")
	if err := handler.Start(context.Background()); err != nil {
		logger.Fatal("Slack handler error", zap.Error(err))
	}
}
