package main

import (
	"context"
	"net/http"
	"time"

	apicontrollers "github.com/flowbridge/flowbridge/internal/api/controllers"
	"github.com/flowbridge/flowbridge/internal/api/websocket"
	"github.com/flowbridge/flowbridge/internal/domain/services"
	"github.com/flowbridge/flowbridge/internal/impl/config"
	"github.com/flowbridge/flowbridge/internal/impl/flowsource"
	"github.com/flowbridge/flowbridge/internal/impl/llm"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const demoPage = `<!DOCTYPE html>
<html>
<head>
<title>flowbridge</title>
<style>
body { font-family: sans-serif; max-width: 720px; margin: 2em auto; }
#log { border: 1px solid #ccc; padding: 1em; height: 320px; overflow-y: auto; }
#events { color: #888; font-size: 0.85em; }
.user { color: #036; }
.bot { color: #063; }
</style>
</head>
<body>
<h2>flowbridge</h2>
<div id="log"></div>
<form id="form">
<input id="input" style="width: 80%" autocomplete="off" placeholder="Message...">
<button>Send</button>
</form>
<p><button id="refresh">Refresh tools</button></p>
<div id="events"></div>
<script>
const log = document.getElementById("log");
function append(cls, text) {
  const p = document.createElement("p");
  p.className = cls;
  p.textContent = text;
  log.appendChild(p);
  log.scrollTop = log.scrollHeight;
}
document.getElementById("form").onsubmit = async (e) => {
  e.preventDefault();
  const input = document.getElementById("input");
  const message = input.value.trim();
  if (!message) return;
  input.value = "";
  append("user", "You: " + message);
  const resp = await fetch("/api/messages", {
    method: "POST",
    headers: {"Content-Type": "application/json"},
    body: JSON.stringify({message})
  });
  const body = await resp.json();
  append("bot", "Bot: " + (body.response || body.error));
};
document.getElementById("refresh").onclick = async () => {
  const resp = await fetch("/api/tools/refresh", {method: "POST"});
  const body = await resp.json();
  append("bot", body.message);
};
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
ws.onmessage = (e) => {
  const evt = JSON.parse(e.data);
  document.getElementById("events").textContent = "tool: " + evt.tool_name;
};
</script>
</body>
</html>`

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
	if _, err := catalog.Refresh(refreshCtx); err != nil {
		logger.Warn("Initial tool refresh failed; catalog is empty until the next refresh", zap.Error(err))
	}
	cancel()

	hub := websocket.NewEventHub(logger)
	go hub.Run()

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/", func(c echo.Context) error {
		return c.HTML(http.StatusOK, demoPage)
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/ws", echo.WrapHandler(hub.Handler()))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api")
	apicontrollers.NewAgentController(logger, agent).RegisterRoutes(api)

	logger.Info("Starting server", zap.String("address", ":8080"))
	if err := e.Start(":8080"); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Server error", zap.Error(err))
	}
}
