package websocket

import (
	"net/http"

	"github.com/flowbridge/flowbridge/internal/domain/entities"
	"github.com/flowbridge/flowbridge/internal/domain/events"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// EventHub fans tool-call events out to connected demo-page clients so
// they can watch webhook activity live while chatting.
type EventHub struct {
	logger      *zap.Logger
	register    chan *websocket.Conn
	unregister  chan *websocket.Conn
	broadcast   chan *entities.ToolCallEvent
	connections map[*websocket.Conn]bool
}

func NewEventHub(logger *zap.Logger) *EventHub {
	return &EventHub{
		logger:      logger,
		register:    make(chan *websocket.Conn),
		unregister:  make(chan *websocket.Conn),
		broadcast:   make(chan *entities.ToolCallEvent),
		connections: make(map[*websocket.Conn]bool),
	}
}

// Run pumps registrations and broadcasts. It subscribes to the tool-call
// event bus and blocks forever; start it in its own goroutine.
func (h *EventHub) Run() {
	unsubscribe := events.SubscribeToToolCallEvents(func(data events.ToolCallEventData) {
		h.broadcast <- data.Event
	})
	defer unsubscribe()

	for {
		select {
		case conn := <-h.register:
			h.connections[conn] = true
		case conn := <-h.unregister:
			if h.connections[conn] {
				delete(h.connections, conn)
				conn.Close()
			}
		case toolEvent := <-h.broadcast:
			for conn := range h.connections {
				if err := conn.WriteJSON(toolEvent); err != nil {
					h.logger.Warn("Write error, dropping connection", zap.Error(err))
					delete(h.connections, conn)
					conn.Close()
				}
			}
		}
	}
}

// Handler upgrades the connection and keeps it registered until the
// client goes away. Clients only receive; inbound frames are discarded.
func (h *EventHub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("Upgrade error", zap.Error(err))
			return
		}

		h.register <- conn

		go func() {
			defer func() { h.unregister <- conn }()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}
}
