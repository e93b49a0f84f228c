// Package websocket receives reload notifications from a serve process
// over a websocket connection.
package websocket

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/websocket"

	"github.com/custodia-labs/livepreview/internal/core/domain"
	"github.com/custodia-labs/livepreview/internal/core/ports/driven"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// DefaultReconnectDelay is the fixed wait between connection attempts.
const DefaultReconnectDelay = time.Second

// DefaultReadLimit bounds one inbound frame, which may carry a whole document.
const DefaultReadLimit = 256 << 20

// Ensure Notifier implements the interface.
var _ driven.ReloadNotifier = (*Notifier)(nil)

// Notifier dials a websocket endpoint and turns frames into reload events.
// Text frames mean "re-fetch"; binary frames carry replacement bytes.
type Notifier struct {
	url            string
	reconnectDelay time.Duration
	readLimit      int64
	now            func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithReconnectDelay overrides DefaultReconnectDelay.
func WithReconnectDelay(d time.Duration) Option {
	return func(n *Notifier) { n.reconnectDelay = d }
}

// WithReadLimit overrides DefaultReadLimit.
func WithReadLimit(limit int64) Option {
	return func(n *Notifier) { n.readLimit = limit }
}

// New creates a notifier for a ws:// or wss:// URL.
func New(url string, opts ...Option) *Notifier {
	n := &Notifier{
		url:            url,
		reconnectDelay: DefaultReconnectDelay,
		readLimit:      DefaultReadLimit,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Listen connects, reconnecting after every failure, until ctx is cancelled.
// Any connection made after a failed attempt delivers a re-fetch event,
// since notifications sent while disconnected are lost.
func (n *Notifier) Listen(ctx context.Context, handle func(context.Context, domain.ReloadEvent)) error {
	missed := false
	for {
		err := n.session(ctx, missed, handle)
		if ctx.Err() != nil {
			return nil
		}
		missed = true
		if errors.Is(err, errDial) {
			logger.Debug("Reload channel unavailable, retrying in %s: %v", n.reconnectDelay, err)
		} else {
			logger.Warn("Reload channel lost, reconnecting in %s: %v", n.reconnectDelay, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(n.reconnectDelay):
		}
	}
}

var errDial = errors.New("dial failed")

// session runs one connection until it fails. It never returns nil.
func (n *Notifier) session(ctx context.Context, reconnect bool, handle func(context.Context, domain.ReloadEvent)) error {
	conn, _, err := websocket.Dial(ctx, n.url, nil)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", errDial, n.url, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(n.readLimit)

	logger.Debug("Connected to reload channel %s.", n.url)
	if reconnect {
		handle(ctx, domain.ReloadEvent{ReceivedAt: n.now()})
	}

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return fmt.Errorf("%w: server closed the connection", domain.ErrNotifierClosed)
			}
			return err
		}

		event := domain.ReloadEvent{ReceivedAt: n.now()}
		if typ == websocket.MessageBinary {
			event.Payload = data
		}
		handle(ctx, event)
	}
}
