package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/symposium-ai/symposium/logging"
)

const writeTimeout = 5 * time.Second

// wsSubscriber adapts a websocket connection to the Subscriber interface.
// Writes are serialized because the connection does not support concurrent
// writers.
type wsSubscriber struct {
	conn   *websocket.Conn
	mu     sync.Mutex
	closed bool
}

func (w *wsSubscriber) Send(event Event) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("connection closed")
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		w.closed = true
		return fmt.Errorf("websocket write: %w", err)
	}
	return nil
}

func (w *wsSubscriber) close(status websocket.StatusCode, reason string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	_ = w.conn.Close(status, reason)
}

// WSHandler upgrades HTTP requests to websocket subscriptions on a Hub. The
// conversation id is supplied by ConversationID, typically extracted from the
// request path.
type WSHandler struct {
	hub            *Hub
	logger         logging.Logger
	conversationID func(r *http.Request) string
	acceptOptions  *websocket.AcceptOptions
}

// WSHandlerOptions configure a WSHandler.
type WSHandlerOptions struct {
	Logger logging.Logger
	// AcceptOptions are passed through to websocket.Accept, e.g. to relax
	// origin checks in development.
	AcceptOptions *websocket.AcceptOptions
}

// NewWSHandler creates a websocket endpoint bound to the hub.
func NewWSHandler(hub *Hub, conversationID func(r *http.Request) string, optFns ...func(o *WSHandlerOptions)) *WSHandler {
	opts := WSHandlerOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &WSHandler{
		hub:            hub,
		logger:         opts.Logger,
		conversationID: conversationID,
		acceptOptions:  opts.AcceptOptions,
	}
}

// ServeHTTP accepts the connection, subscribes it to the conversation's
// events and answers client pings until the peer goes away.
func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conversationID := h.conversationID(r)
	if conversationID == "" {
		http.Error(w, "missing conversation id", http.StatusBadRequest)
		return
	}

	conn, err := websocket.Accept(w, r, h.acceptOptions)
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	sub := &wsSubscriber{conn: conn}
	h.hub.Subscribe(conversationID, sub)
	defer func() {
		h.hub.Unsubscribe(conversationID, sub)
		sub.close(websocket.StatusNormalClosure, "closing")
	}()

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			if err := sub.Send(Event{Type: TypePong}); err != nil {
				return
			}
		}
	}
}
