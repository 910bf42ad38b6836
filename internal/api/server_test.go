package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/bookshelf/internal/book"
	"github.com/nerrad567/bookshelf/internal/infrastructure/config"
	"github.com/nerrad567/bookshelf/internal/infrastructure/logging"
)

const testJWTSecret = "test-secret-key-at-least-32-characters-long"

// testServer creates a Server over a freshly seeded in-memory registry.
// Options may adjust the dependencies before New is called.
func testServer(t *testing.T, opts ...func(*Deps)) (*Server, *book.Registry) {
	t.Helper()

	registry := book.NewRegistry(book.NewMemoryRepository())
	if err := registry.Load(context.Background(), true); err != nil {
		t.Fatalf("Load: %v", err)
	}

	deps := Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:    5,
				Write:   5,
				Idle:    5,
				Handler: 5,
			},
		},
		WS: config.WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:   logging.Discard(),
		Registry: registry,
		Version:  "test",
	}
	for _, opt := range opts {
		opt(&deps)
	}

	srv, err := New(deps)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return srv, registry
}

// serve sends one request through the full router.
func serve(t *testing.T, srv *Server, method, path string, body io.Reader, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

// sendJSON sends v as a JSON body.
func sendJSON(t *testing.T, srv *Server, method, path string, v any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(v); err != nil {
		t.Fatalf("encoding body: %v", err)
	}
	return serve(t, srv, method, path, &body, map[string]string{"Content-Type": "application/json"})
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
	return v
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, want, rec.Body.String())
	}
}

// assertError checks a structured error response.
func assertError(t *testing.T, rec *httptest.ResponseRecorder, status int, code, message string) {
	t.Helper()
	assertStatus(t, rec, status)
	e := decodeBody[Error](t, rec)
	if e.Status != status || e.Code != code {
		t.Errorf("error = %+v, want status %d code %q", e, status, code)
	}
	if message != "" && e.Message != message {
		t.Errorf("message = %q, want %q", e.Message, message)
	}
}

func bookIDs(books []book.Book) []int {
	out := make([]int, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func sameIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func listedBooks(t *testing.T, srv *Server) []book.Book {
	t.Helper()
	rec := serve(t, srv, http.MethodGet, "/api/books", nil, nil)
	assertStatus(t, rec, http.StatusOK)
	return decodeBody[[]book.Book](t, rec)
}

func TestNew_RequiresDependencies(t *testing.T) {
	registry := book.NewRegistry(book.NewMemoryRepository())

	if _, err := New(Deps{Registry: registry}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without registry should fail")
	}

	_, err := New(Deps{
		Logger:   logging.Discard(),
		Registry: registry,
		Config:   config.APIConfig{CORS: config.CORSConfig{AllowedOrigins: []string{"http://[bad"}}},
	})
	if err == nil {
		t.Error("New() with an invalid CORS origin pattern should fail")
	}
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := serve(t, srv, http.MethodGet, "/api/health", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	got := decodeBody[healthResponse](t, rec)
	want := healthResponse{Status: "ok", Version: "test", Books: 3}
	if got != want {
		t.Errorf("health = %+v, want %+v", got, want)
	}
}

type fakeBroker struct{ connected bool }

func (f fakeBroker) IsConnected() bool { return f.connected }

func TestHealth_ReportsMQTT(t *testing.T) {
	srv, _ := testServer(t, func(d *Deps) { d.MQTT = fakeBroker{connected: true} })

	rec := serve(t, srv, http.MethodGet, "/api/health", nil, nil)
	if got := decodeBody[healthResponse](t, rec); got.MQTT != "connected" {
		t.Errorf("mqtt = %q, want connected", got.MQTT)
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := testServer(t, func(d *Deps) { d.MQTT = fakeBroker{} })

	rec := serve(t, srv, http.MethodGet, "/api/metrics", nil, nil)
	assertStatus(t, rec, http.StatusOK)

	m := decodeBody[SystemMetrics](t, rec)
	if m.Books.Total != 3 {
		t.Errorf("books.total = %d, want 3", m.Books.Total)
	}
	if m.Version != "test" {
		t.Errorf("version = %q", m.Version)
	}
	if m.Runtime.Goroutines == 0 {
		t.Error("runtime.goroutines should be positive")
	}
	if m.MQTT == nil || m.MQTT.Connected {
		t.Errorf("mqtt = %+v, want disconnected", m.MQTT)
	}
	if m.Database != nil {
		t.Error("database stats should be omitted without a database")
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := testServer(t)

	rec := serve(t, srv, http.MethodGet, "/api/nope", nil, nil)
	assertError(t, rec, http.StatusNotFound, ErrCodeNotFound, "")
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := testServer(t)

	rec := serve(t, srv, http.MethodPatch, "/api/books/update/1", strings.NewReader("{}"), nil)
	assertStatus(t, rec, http.StatusMethodNotAllowed)
}

func TestServer_StartAndClose(t *testing.T) {
	srv, _ := testServer(t)

	if err := srv.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck() before Start should fail")
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := srv.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}
	if err := srv.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHandlerTimeout(t *testing.T) {
	tests := []struct {
		name    string
		seconds int
		want    time.Duration
	}{
		{"unset uses default", 0, defaultHandlerTimeout},
		{"negative uses default", -1, defaultHandlerTimeout},
		{"configured", 3, 3 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := testServer(t, func(d *Deps) { d.Config.Timeouts.Handler = tt.seconds })
			if got := srv.handlerTimeout(); got != tt.want {
				t.Errorf("handlerTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}
