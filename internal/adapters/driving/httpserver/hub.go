package httpserver

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// SubscriberBuffer is the number of notifications queued per client.
const SubscriberBuffer = 100

// ReloadMessage is the text frame sent when viewers should re-fetch.
const ReloadMessage = "reload"

const writeTimeout = 5 * time.Second

// Ensure Hub implements the interface.
var _ driven.Broadcaster = (*Hub)(nil)

type frame struct {
	typ  websocket.MessageType
	data []byte
}

type subscriber struct {
	id string
	ch chan frame
}

// Hub fans document changes out to connected websocket clients.
// A client whose queue is full misses notifications instead of
// stalling the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	closed      bool
	done        chan struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]*subscriber),
		done:        make(chan struct{}),
	}
}

// Publish queues change for every subscriber.
// Changes with content go out as binary frames, otherwise as a text reload.
func (h *Hub) Publish(change domain.DocumentChange) {
	f := frame{typ: websocket.MessageText, data: []byte(ReloadMessage)}
	if change.Content != nil {
		f = frame{typ: websocket.MessageBinary, data: change.Content}
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subscribers {
		select {
		case sub.ch <- f:
		default:
			logger.Warn("Viewer %s is not keeping up, dropping notification.", sub.id)
		}
	}
}

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close disconnects every subscriber. Later connections are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

func (h *Hub) subscribe() (*subscriber, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	sub := &subscriber{
		id: uuid.New().String(),
		ch: make(chan frame, SubscriberBuffer),
	}
	h.subscribers[sub.id] = sub
	return sub, nil
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, sub.id)
}

// ServeHTTP upgrades the request and streams notifications until the
// client goes away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscribe()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer h.unsubscribe(sub)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		logger.Warn("Websocket accept failed: %v", err)
		return
	}
	defer conn.CloseNow() //nolint:errcheck

	logger.Debug("Viewer %s connected.", sub.id)
	ctx := conn.CloseRead(context.Background())

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Viewer %s disconnected.", sub.id)
			return
		case <-h.done:
			conn.Close(websocket.StatusGoingAway, "server shutting down") //nolint:errcheck
			return
		case f := <-sub.ch:
			if err := write(ctx, conn, f); err != nil {
				logger.Debug("Viewer %s write failed: %v", sub.id, err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, f frame) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, f.typ, f.data)
}
