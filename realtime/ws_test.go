package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/require"
)

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func readEvent(t *testing.T, ctx context.Context, conn *websocket.Conn) Event {
	t.Helper()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(data, &ev))
	return ev
}

func TestWSHandlerDeliversEvents(t *testing.T) {
	hub := NewHub()
	handler := NewWSHandler(hub, func(r *http.Request) string {
		return strings.TrimPrefix(r.URL.Path, "/ws/")
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv, "/ws/c1"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// Wait for the subscription to register before publishing.
	require.Eventually(t, func() bool {
		hub.mu.Lock()
		defer hub.mu.Unlock()
		return len(hub.subscribers["c1"]) == 1
	}, 2*time.Second, 10*time.Millisecond)

	hub.PublishResponse("c1", "socrates", "Know thyself.", "m1")

	ev := readEvent(t, ctx, conn)
	require.Equal(t, TypeAgentResponse, ev.Type)
	require.Equal(t, "socrates", ev.AgentID)
	require.Equal(t, "Know thyself.", ev.Content)
}

func TestWSHandlerAnswersPing(t *testing.T) {
	hub := NewHub()
	handler := NewWSHandler(hub, func(r *http.Request) string {
		return strings.TrimPrefix(r.URL.Path, "/ws/")
	})
	srv := httptest.NewServer(handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, wsURL(srv, "/ws/c1"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`{"type":"ping"}`)))

	ev := readEvent(t, ctx, conn)
	require.Equal(t, TypePong, ev.Type)
}

func TestWSHandlerRejectsMissingConversation(t *testing.T) {
	hub := NewHub()
	handler := NewWSHandler(hub, func(r *http.Request) string { return "" })
	srv := httptest.NewServer(handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
