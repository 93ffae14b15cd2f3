package slack

import (
	"context"
	"strings"

	"github.com/flowbridge/flowbridge/internal/domain/services"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// Handler bridges Slack Socket Mode events to the agent. Direct messages
// and app mentions both run one exchange; everything else is ignored.
type Handler struct {
	agent  *services.Agent
	client *slack.Client
	socket *socketmode.Client
	logger *zap.Logger
}

func NewHandler(agent *services.Agent, botToken, appToken string, logger *zap.Logger) *Handler {
	client := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	return &Handler{
		agent:  agent,
		client: client,
		socket: socketmode.New(client),
		logger: logger,
	}
}

// Start runs the Socket Mode event loop until the context is canceled.
func (h *Handler) Start(ctx context.Context) error {
	go h.consumeEvents(ctx)
	return h.socket.RunContext(ctx)
}

func (h *Handler) consumeEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-h.socket.Events:
			if !ok {
				return
			}
			if evt.Type != socketmode.EventTypeEventsAPI {
				continue
			}
			apiEvent, ok := evt.Data.(slackevents.EventsAPIEvent)
			if !ok {
				continue
			}
			h.socket.Ack(*evt.Request)
			h.handleEvent(ctx, apiEvent)
		}
	}
}

func (h *Handler) handleEvent(ctx context.Context, apiEvent slackevents.EventsAPIEvent) {
	switch ev := apiEvent.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		// Skip messages from bots, including our own replies.
		if ev.BotID != "" || ev.Text == "" {
			return
		}
		h.respond(ctx, ev.Channel, ev.Text)
	case *slackevents.AppMentionEvent:
		h.respond(ctx, ev.Channel, stripMention(ev.Text))
	}
}

func (h *Handler) respond(ctx context.Context, channel, text string) {
	h.logger.Info("Slack message received", zap.String("channel", channel))

	response := h.agent.ProcessMessage(ctx, text)

	if _, _, err := h.client.PostMessageContext(ctx, channel, slack.MsgOptionText(response, false)); err != nil {
		h.logger.Error("Failed to post Slack message",
			zap.String("channel", channel),
			zap.Error(err))
	}
}

// stripMention removes the leading <@BOTID> token from a mention.
func stripMention(text string) string {
	if idx := strings.Index(text, ">"); idx >= 0 && strings.HasPrefix(text, "<@") {
		return strings.TrimSpace(text[idx+1:])
	}
	return strings.TrimSpace(text)
}
