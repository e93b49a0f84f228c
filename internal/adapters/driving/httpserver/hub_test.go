package httpserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() }) //nolint:errcheck

	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) (websocket.MessageType, []byte) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	return typ, data
}

func TestHub_PublishWithoutClients(t *testing.T) {
	h := NewHub()
	assert.NotPanics(t, func() { h.Publish(domain.DocumentChange{Path: "doc.txt"}) })
	assert.Equal(t, 0, h.Clients())
}

func TestHub_BareChangeSendsTextReload(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Publish(domain.DocumentChange{Path: "doc.txt"})

	typ, data := readFrame(t, conn)
	assert.Equal(t, websocket.MessageText, typ)
	assert.Equal(t, ReloadMessage, string(data))
}

func TestHub_InlineChangeSendsBinaryContent(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Publish(domain.DocumentChange{Path: "doc.txt", Content: []byte("new text")})

	typ, data := readFrame(t, conn)
	assert.Equal(t, websocket.MessageBinary, typ)
	assert.Equal(t, "new text", string(data))
}

func TestHub_ClientDisconnectUnsubscribes(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowSubscriberDropsNotifications(t *testing.T) {
	h := NewHub()
	sub, err := h.subscribe()
	require.NoError(t, err)

	for i := 0; i < SubscriberBuffer+10; i++ {
		h.Publish(domain.DocumentChange{Path: "doc.txt"})
	}
	assert.Len(t, sub.ch, SubscriberBuffer)
}

func TestHub_CloseDisconnectsAndRefuses(t *testing.T) {
	h := NewHub()
	conn := dialHub(t, h)

	h.Close()
	h.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, _, err := conn.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusGoingAway, websocket.CloseStatus(err))

	_, err = h.subscribe()
	assert.ErrorIs(t, err, ErrHubClosed)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathWebSocket, nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
