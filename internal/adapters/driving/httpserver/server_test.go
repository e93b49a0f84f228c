package httpserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/livepreview/internal/core/domain"
)

type fakeServeService struct {
	status domain.ServeStatus
}

func (f *fakeServeService) Check(_ context.Context) (bool, error) { return false, nil }

func (f *fakeServeService) ForceReload(_ context.Context) error { return nil }

func (f *fakeServeService) Status() domain.ServeStatus { return f.status }

func newTestServer(t *testing.T, content string) (*Server, *fakeServeService) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	svc := &fakeServeService{status: domain.ServeStatus{Path: path, Clients: 2, NotificationsSent: 7}}
	srv, err := NewServer(&Ports{Serve: svc, Hub: NewHub()})
	require.NoError(t, err)
	return srv, svc
}

func TestNewServer(t *testing.T) {
	t.Run("missing serve service", func(t *testing.T) {
		_, err := NewServer(&Ports{Hub: NewHub()})
		assert.ErrorIs(t, err, ErrMissingServeService)
	})

	t.Run("missing hub", func(t *testing.T) {
		_, err := NewServer(&Ports{Serve: &fakeServeService{}})
		assert.ErrorIs(t, err, ErrMissingHub)
	})
}

func TestServer_Index(t *testing.T) {
	srv, _ := newTestServer(t, "hello")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `src="/served"`)
	assert.Contains(t, rec.Body.String(), PathWebSocket)
}

func TestServer_UnknownPath(t *testing.T) {
	srv, _ := newTestServer(t, "hello")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Served(t *testing.T) {
	srv, _ := newTestServer(t, "hello world")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/served?cacheBust=abc", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "hello world", rec.Body.String())
}

func TestServer_ServedMissingFile(t *testing.T) {
	srv, svc := newTestServer(t, "hello")
	svc.status.Path = filepath.Join(t.TempDir(), "gone.txt")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathServed, nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Health(t *testing.T) {
	srv, svc := newTestServer(t, "hello")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathHealth, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, svc.status.Path, body.Path)
	assert.Equal(t, 2, body.Clients)
	assert.Equal(t, 7, body.NotificationsSent)
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	srv, _ := newTestServer(t, "hello")
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + PathHealth)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServeListener_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- ServeListener(ctx, ln, handler, func() { close(shutdown) })
	}()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
	select {
	case <-shutdown:
	default:
		t.Fatal("shutdown hook not called")
	}
}

func TestListenAndServe_BadAddress(t *testing.T) {
	err := ListenAndServe(context.Background(), "not-an-address", http.NotFoundHandler(), nil)
	assert.Error(t, err)
}
