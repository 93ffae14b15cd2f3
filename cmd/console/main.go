package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/flowbridge/flowbridge/internal/domain/services"
	"github.com/flowbridge/flowbridge/internal/impl/config"
	"github.com/flowbridge/flowbridge/internal/impl/flowsource"
	"github.com/flowbridge/flowbridge/internal/impl/llm"

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
	fmt.Println(agent.RefreshTools(refreshCtx))
	cancel()

	fmt.Println("Type a message, or /tools, /refresh, /exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return
		case "/refresh":
			fmt.Println(agent.RefreshTools(context.Background()))
		case "/tools":
			tools := agent.Tools()
			if len(tools) == 0 {
				fmt.Println("No tools registered.")
				continue
			}
			for _, tool := range tools {
				fmt.Printf("%s - %s\n", tool.Name, tool.Description)
			}
		default:
			fmt.Println(agent.ProcessMessage(context.Background(), line))
		}
	}
}
