// Package httpserver serves the watched document to viewers and pushes
// reload notifications over a websocket.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/custodia-labs/livepreview/internal/core/ports/driving"
	"github.com/custodia-labs/livepreview/internal/logger"
)

// Routes exposed by the server.
const (
	PathIndex     = "/"
	PathServed    = "/served"
	PathWebSocket = "/__livepreview_ws"
	PathHealth    = "/healthz"
)

// Ports aggregates the dependencies of the HTTP server.
type Ports struct {
	// Serve tracks the served document.
	Serve driving.ServeService

	// Hub streams notifications to viewers.
	Hub *Hub
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Serve == nil {
		return ErrMissingServeService
	}
	if p.Hub == nil {
		return ErrMissingHub
	}
	return nil
}

// Server is the HTTP front of the serve command.
type Server struct {
	ports *Ports
	mux   *http.ServeMux
}

// NewServer creates a server with all routes registered.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		mux:   http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET "+PathServed, s.handleServed)
	s.mux.Handle("GET "+PathWebSocket, ports.Hub)
	s.mux.HandleFunc("GET "+PathHealth, s.handleHealth)
	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	return ListenAndServe(ctx, addr, s.mux, s.ports.Hub.Close)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return ServeListener(ctx, ln, s.mux, s.ports.Hub.Close)
}

// ShutdownTimeout bounds the wait for in-flight requests on shutdown.
const ShutdownTimeout = 5 * time.Second

// ListenAndServe listens on addr and serves h until ctx is cancelled.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, onShutdown func()) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return ServeListener(ctx, ln, h, onShutdown)
}

// ServeListener serves h on ln until ctx is cancelled, then runs onShutdown
// (if set) and shuts down gracefully. A clean shutdown returns nil.
func ServeListener(ctx context.Context, ln net.Listener, h http.Handler, onShutdown func()) error {
	httpServer := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		if onShutdown != nil {
			onShutdown()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		stopped <- httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving on http://%s", ln.Addr())
	if err := httpServer.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	if err := <-stopped; err != nil {
		return fmt.Errorf("shutting down %s: %w", ln.Addr(), err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	fmt.Fprint(w, indexPage) //nolint:errcheck
}

func (s *Server) handleServed(w http.ResponseWriter, r *http.Request) {
	path := s.ports.Serve.Status().Path
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}

type healthResponse struct {
	Status            string    `json:"status"`
	Path              string    `json:"path"`
	LastModified      time.Time `json:"last_modified"`
	Clients           int       `json:"clients"`
	NotificationsSent int       `json:"notifications_sent"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	st := s.ports.Serve.Status()
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(healthResponse{ //nolint:errcheck
		Status:            "ok",
		Path:              st.Path,
		LastModified:      st.LastModified,
		Clients:           st.Clients,
		NotificationsSent: st.NotificationsSent,
	})
}

// indexPage embeds the served document and reloads it on every notification.
// Binary frames replace the frame content directly.
const indexPage = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>livepreview</title>
<style>html,body{margin:0;height:100%}iframe{border:0;width:100%;height:100%}</style>
</head>
<body>
<iframe id="doc" src="` + PathServed + `"></iframe>
<script>
(function () {
  var frame = document.getElementById("doc");
  function reload() {
    var y = frame.contentWindow ? frame.contentWindow.scrollY : 0;
    frame.onload = function () { frame.contentWindow.scrollTo(0, y); };
    frame.removeAttribute("srcdoc");
    frame.src = "` + PathServed + `?cacheBust=" + Date.now();
  }
  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "` + PathWebSocket + `");
    ws.binaryType = "blob";
    ws.onmessage = function (e) {
      if (typeof e.data === "string") { reload(); return; }
      e.data.text().then(function (t) { frame.srcdoc = t; });
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>
</body>
</html>
`
