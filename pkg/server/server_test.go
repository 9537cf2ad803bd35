package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/toastkit/internal/clocktest"
	"github.com/vango-dev/toastkit/pkg/middleware"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	clock  *clocktest.FakeClock
	store  *store.Store
	server *Server
	http   *httptest.Server
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	clk := clocktest.New(time.Date(2026, 5, 2, 8, 15, 0, 0, time.UTC))
	st := store.New(store.Config{Clock: clk})
	if cfg.Container.Clock == nil {
		cfg.Container.Clock = clk
	}
	if cfg.Gatherer == nil {
		cfg.Gatherer = prometheus.NewRegistry()
	}

	srv := New(st, cfg)
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, srv.Shutdown(ctx))
	})
	return &fixture{clock: clk, store: st, server: srv, http: ts}
}

func (f *fixture) show(t *testing.T, in toast.Input) string {
	t.Helper()
	id, err := f.store.Show(in)
	require.NoError(t, err)
	return id
}

func (f *fixture) request(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.http.URL+path, r)
	require.NoError(t, err)
	resp, err := f.http.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestAPI_createListDismiss(t *testing.T) {
	f := newFixture(t, Config{})

	resp := f.request(t, http.MethodPost, "/api/toasts",
		`{"id":"table-12","type":"success","title":"Table 12","message":"Order sent to kitchen","duration":"3s"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "table-12", decode[CreatedResponse](t, resp).ID)

	resp = f.request(t, http.MethodGet, "/api/toasts", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[[]ToastResponse](t, resp)
	require.Len(t, list, 1)
	assert.Equal(t, "table-12", list[0].ID)
	assert.Equal(t, "success", list[0].Type)
	assert.Equal(t, "Table 12", list[0].Title)
	assert.Equal(t, "3s", list[0].Duration)
	assert.Equal(t, "3s", list[0].Remaining)
	assert.True(t, list[0].Dismissible)
	assert.False(t, list[0].Paused)

	reasons := make(chan store.Reason, 4)
	unsubscribe := f.store.Subscribe(func(ev store.Event) {
		if ev.Kind == store.EventDismissed {
			reasons <- ev.Reason
		}
	})
	defer unsubscribe()

	resp = f.request(t, http.MethodDelete, "/api/toasts/table-12", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, store.ReasonProgrammatic, <-reasons)

	resp = f.request(t, http.MethodDelete, "/api/toasts/table-12", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_validationErrors(t *testing.T) {
	f := newFixture(t, Config{})

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"empty message", `{"message":"   "}`, http.StatusUnprocessableEntity, "T001"},
		{"unknown type", `{"type":"fatal","message":"x"}`, http.StatusUnprocessableEntity, "T002"},
		{"negative duration", `{"message":"x","duration":"-1s"}`, http.StatusUnprocessableEntity, "T003"},
		{"progress with duration", `{"message":"x","duration":"2s","progress":{"current":1,"total":4}}`, http.StatusUnprocessableEntity, "T004"},
		{"zero total", `{"message":"x","progress":{"current":1,"total":0}}`, http.StatusUnprocessableEntity, "T005"},
		{"malformed json", `{"message":`, http.StatusBadRequest, "H001"},
		{"unknown field", `{"message":"x","colour":"red"}`, http.StatusBadRequest, "H001"},
		{"bad duration", `{"message":"x","duration":"soon"}`, http.StatusBadRequest, "H001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := f.request(t, http.MethodPost, "/api/toasts", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			body := decode[errorBody](t, resp)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestAPI_pauseResume(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{ID: "a", Message: "Room 4 checked out", Duration: 4 * time.Second})

	f.clock.Advance(time.Second)
	resp := f.request(t, http.MethodPost, "/api/toasts/a/pause", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.True(t, f.store.Paused("a"))

	f.clock.Advance(10 * time.Second)
	list := decode[[]ToastResponse](t, f.request(t, http.MethodGet, "/api/toasts", ""))
	require.Len(t, list, 1)
	assert.True(t, list[0].Paused)
	assert.Equal(t, "3s", list[0].Remaining)

	resp = f.request(t, http.MethodPost, "/api/toasts/a/resume", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.False(t, f.store.Paused("a"))

	f.clock.Advance(3 * time.Second)
	assert.Equal(t, 0, f.store.Len())

	assert.Equal(t, http.StatusNotFound, f.request(t, http.MethodPost, "/api/toasts/a/pause", "").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.request(t, http.MethodPost, "/api/toasts/a/resume", "").StatusCode)
}

func TestAPI_clear(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{Message: "one", Persistent: true})
	f.show(t, toast.Input{Message: "two", Persistent: true})

	resp := f.request(t, http.MethodDelete, "/api/toasts", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, 0, f.store.Len())
}

func TestAPI_routesThroughNotifier(t *testing.T) {
	clk := clocktest.New(time.Now())
	st := store.New(store.Config{Clock: clk})
	n := &countingNotifier{Notifier: st}
	srv := New(st, Config{Notifier: n, Gatherer: prometheus.NewRegistry()})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/toasts", strings.NewReader(`{"message":"hi"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/toasts", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	assert.Equal(t, int32(1), n.shows.Load())
	assert.Equal(t, int32(1), n.clears.Load())
}

type countingNotifier struct {
	toast.Notifier
	shows  atomic.Int32
	clears atomic.Int32
}

func (n *countingNotifier) Show(in toast.Input) (string, error) {
	n.shows.Add(1)
	return n.Notifier.Show(in)
}

func (n *countingNotifier) ClearAll() {
	n.clears.Add(1)
	n.Notifier.ClearAll()
}

func TestPage_populated(t *testing.T) {
	f := newFixture(t, Config{Title: "Front desk"})
	f.show(t, toast.Input{Type: toast.TypeWarning, Message: "Late check-in at 23:00", Persistent: true})

	resp := f.request(t, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/html; charset=utf-8", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	html := string(body)

	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "<title>Front desk</title>")
	assert.Contains(t, html, `<div id="toast-root">`)
	assert.Contains(t, html, `<script defer src="/_toast/client.js"></script>`)
	assert.Contains(t, html, `role="region"`)
	assert.Contains(t, html, "Late check-in at 23:00")
	assert.Contains(t, html, ".toast-container")
}

func TestPage_empty(t *testing.T) {
	f := newFixture(t, Config{})

	body, err := io.ReadAll(f.request(t, http.MethodGet, "/", "").Body)
	require.NoError(t, err)
	html := string(body)

	assert.Contains(t, html, "toast-announcer")
	assert.NotContains(t, html, `role="region"`)
	assert.NotContains(t, html, `aria-label="Notifications"`)
}

func TestThinClient(t *testing.T) {
	f := newFixture(t, Config{})

	resp := f.request(t, http.MethodGet, ThinClientPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/javascript; charset=utf-8", resp.Header.Get("Content-Type"))
	etag := resp.Header.Get("ETag")
	assert.Equal(t, thinClientETag, etag)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "clipboard-result")

	req, err := http.NewRequest(http.MethodGet, f.http.URL+ThinClientPath, nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", `W/"other", `+etag)
	resp, err = f.http.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)

	resp = f.request(t, http.MethodHead, ThinClientPath, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestStylesheet(t *testing.T) {
	f := newFixture(t, Config{})

	resp := f.request(t, http.MethodGet, StylesheetPath, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/css; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.NotEqual(t, thinClientETag, resp.Header.Get("ETag"))
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "toast-countdown")
}

func TestEtagMatches(t *testing.T) {
	assert.True(t, etagMatches(`"abc"`, `"abc"`))
	assert.True(t, etagMatches(`W/"abc"`, `"abc"`))
	assert.True(t, etagMatches(`"x", "abc"`, `"abc"`))
	assert.True(t, etagMatches(`*`, `"abc"`))
	assert.False(t, etagMatches(`"x"`, `"abc"`))
	assert.False(t, etagMatches("", `"abc"`))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{Message: "hello", Persistent: true})

	resp := f.request(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]any](t, resp)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(1), body["toasts"])
	assert.Equal(t, float64(0), body["sessions"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := middleware.NewMetrics(middleware.WithRegistry(reg))
	f := newFixture(t, Config{Recorder: metrics, Gatherer: reg})
	defer metrics.Observe(f.store)()

	f.show(t, toast.Input{Type: toast.TypeSuccess, Message: "Paid", Persistent: true})

	body, err := io.ReadAll(f.request(t, http.MethodGet, "/metrics", "").Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `toastkit_toasts_shown_total{type="success"} 1`)
	assert.Contains(t, string(body), "toastkit_toasts_active 1")
}

func TestRequestIDHeaderPassesThrough(t *testing.T) {
	f := newFixture(t, Config{Middleware: []func(http.Handler) http.Handler{
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("X-Seen", "1")
				next.ServeHTTP(w, r)
			})
		},
	}})

	resp := f.request(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, "1", resp.Header.Get("X-Seen"))
}

func TestCheckOrigin(t *testing.T) {
	assert.Nil(t, checkOrigin(nil))

	open := checkOrigin([]string{"*"})
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.Header.Set("Origin", "https://evil.example")
	assert.True(t, open(req))

	listed := checkOrigin([]string{"https://pousada.example"})
	assert.False(t, listed(req))
	req.Header.Set("Origin", "https://pousada.example")
	assert.True(t, listed(req))
}

func TestServe_shutdownOnCancel(t *testing.T) {
	st := store.New(store.Config{})
	srv := New(st, Config{Address: "127.0.0.1:0", Gatherer: prometheus.NewRegistry(), ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
