package apicontrollers

import (
	"net/http"

	"github.com/flowbridge/flowbridge/internal/domain/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AgentController struct {
	logger *zap.Logger
	agent  *services.Agent
}

func NewAgentController(logger *zap.Logger, agent *services.Agent) *AgentController {
	return &AgentController{
		logger: logger,
		agent:  agent,
	}
}

// RegisterRoutes registers all agent-related routes with Echo
func (c *AgentController) RegisterRoutes(e *echo.Group) {
	e.POST("/messages", c.SendMessage)
	e.GET("/tools", c.ListTools)
	e.POST("/tools/refresh", c.RefreshTools)
}

// SendMessage runs one conversational exchange and returns the final
// answer. The agent never fails; malformed input is the only 4xx.
func (c *AgentController) SendMessage(ctx echo.Context) error {
	var input struct {
		Message string `json:"message"`
	}
	if err := ctx.Bind(&input); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if input.Message == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Missing message"})
	}

	response := c.agent.ProcessMessage(ctx.Request().Context(), input.Message)
	return ctx.JSON(http.StatusOK, map[string]string{"response": response})
}

// ListTools returns the current catalog entries.
func (c *AgentController) ListTools(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.agent.Tools())
}

// RefreshTools resynthesizes the catalog from the workflow source.
func (c *AgentController) RefreshTools(ctx echo.Context) error {
	message := c.agent.RefreshTools(ctx.Request().Context())
	return ctx.JSON(http.StatusOK, map[string]string{"message": message})
}
