package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ayusman/bemysenses/internal/app"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

const writeWait = 5 * time.Second

// EventSource publishes pipeline frame results.
type EventSource interface {
	Subscribe() (<-chan app.FrameResult, func())
}

// EventsHandler streams frame results (prediction, sentence, narration)
// to websocket clients as JSON.
type EventsHandler struct {
	source EventSource
	logger *zap.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(source EventSource, logger *zap.Logger) *EventsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventsHandler{source: source, logger: logger}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade error", zap.Error(err))
		return
	}
	defer conn.Close()

	events, cancel := h.source.Subscribe()
	defer cancel()

	// Detect client close by reading messages
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case res, ok := <-events:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(res); err != nil {
				h.logger.Debug("Websocket write failed", zap.Error(err))
				return
			}
		}
	}
}
