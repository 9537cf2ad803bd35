package server

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

type client struct {
	t    *testing.T
	conn *websocket.Conn
	html string
}

func (f *fixture) dial(t *testing.T) *client {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	resp.Body.Close()
	c := &client{t: t, conn: conn}
	t.Cleanup(func() { conn.Close() })
	return c
}

// next reads the next server frame.
func (c *client) next() map[string]any {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, msg, err := c.conn.ReadMessage()
	require.NoError(c.t, err)
	var frame map[string]any
	require.NoError(c.t, json.Unmarshal(msg, &frame))
	if frame["type"] == frameRender {
		c.html = frame["html"].(string)
	}
	return frame
}

// waitRender reads frames until a render satisfies ok.
func (c *client) waitRender(ok func(html string) bool) string {
	c.t.Helper()
	for i := 0; i < 20; i++ {
		frame := c.next()
		if frame["type"] == frameRender && ok(c.html) {
			return c.html
		}
	}
	c.t.Fatalf("no matching render; last html:\n%s", c.html)
	return ""
}

func (c *client) waitContains(s string) string {
	c.t.Helper()
	return c.waitRender(func(html string) bool { return strings.Contains(html, s) })
}

func (c *client) send(frame any) {
	c.t.Helper()
	require.NoError(c.t, c.conn.WriteJSON(frame))
}

func (c *client) event(hid, event string, payload any) {
	c.t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(c.t, err)
	c.send(inboundFrame{Type: frameEvent, HID: hid, Event: event, Payload: data})
}

// hid returns the hydration id of the first element whose opening tag
// matches marker.
func (c *client) hid(marker string) string {
	c.t.Helper()
	re := regexp.MustCompile(`<[a-z]+[^>]*` + regexp.QuoteMeta(marker) + `[^>]*data-hid="([^"]+)"`)
	m := re.FindStringSubmatch(c.html)
	require.NotNil(c.t, m, "no element with %s in:\n%s", marker, c.html)
	return m[1]
}

type reasonLog struct {
	mu      sync.Mutex
	reasons []store.Reason
}

func (l *reasonLog) watch(st *store.Store) func() {
	return st.Subscribe(func(ev store.Event) {
		if ev.Kind == store.EventDismissed {
			l.mu.Lock()
			l.reasons = append(l.reasons, ev.Reason)
			l.mu.Unlock()
		}
	})
}

func (l *reasonLog) get() []store.Reason {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]store.Reason(nil), l.reasons...)
}

func TestWebSocket_initialRender(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{ID: "a", Message: "Table 7 requested the bill", Persistent: true})

	c := f.dial(t)
	frame := c.next()
	assert.Equal(t, frameRender, frame["type"])
	assert.Contains(t, c.html, "Table 7 requested the bill")
	assert.Contains(t, c.html, `data-hid="toast-a"`)
	assert.Eventually(t, func() bool { return f.server.Sessions() == 1 }, time.Second, 10*time.Millisecond)
}

func TestWebSocket_pushesStoreChanges(t *testing.T) {
	f := newFixture(t, Config{})
	c := f.dial(t)
	c.waitContains("toast-announcer")

	f.show(t, toast.Input{Message: "Espresso machine descaled", Persistent: true})
	c.waitContains("Espresso machine descaled")

	f.store.ClearAll()
	html := c.waitContains(toastui.ClearedAnnouncement)
	assert.NotContains(t, html, `role="region"`)
}

func TestWebSocket_clickCloseDismisses(t *testing.T) {
	f := newFixture(t, Config{})
	var log reasonLog
	defer log.watch(f.store)()
	f.show(t, toast.Input{ID: "a", Message: "Room 3 ready", Persistent: true})

	c := f.dial(t)
	c.waitContains("Room 3 ready")
	c.event(c.hid(`class="toast-close"`), "click", nil)

	c.waitRender(func(html string) bool { return !strings.Contains(html, "Room 3 ready") })
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, []store.Reason{store.ReasonManual}, log.get())
}

func TestWebSocket_staleClickAfterTimeoutIsIgnored(t *testing.T) {
	f := newFixture(t, Config{})
	var log reasonLog
	defer log.watch(f.store)()
	f.show(t, toast.Input{ID: "a", Message: "Order 12 sent to kitchen", Duration: time.Second})
	f.show(t, toast.Input{
		ID:         "b",
		Message:    "Printer offline",
		Persistent: true,
		Expandable: &toast.Expandable{Summary: "Details", Details: "paper jam in tray 2"},
	})

	c := f.dial(t)
	c.waitContains("Printer offline")
	staleClose := "toast-a-close"
	require.Contains(t, c.html, `data-hid="`+staleClose+`"`)

	f.clock.Advance(time.Second)
	c.waitRender(func(html string) bool { return !strings.Contains(html, "Order 12") })

	c.event(staleClose, "click", nil)
	// Events run in order, so once b's details show the stale click is done.
	c.event(c.hid(`class="toast-expand"`), "click", nil)
	html := c.waitContains("paper jam in tray 2")

	assert.Contains(t, html, "Printer offline")
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, []store.Reason{store.ReasonTimeout}, log.get())
}

func TestWebSocket_keyboardDismiss(t *testing.T) {
	f := newFixture(t, Config{})
	var log reasonLog
	defer log.watch(f.store)()
	f.show(t, toast.Input{ID: "a", Message: "Gallery closes in 15 minutes", Persistent: true})

	c := f.dial(t)
	c.waitContains("Gallery closes")
	hid := c.hid(`data-toast-id="a"`)

	c.event(hid, "keydown", map[string]any{"key": "Tab"})
	c.event(hid, "keydown", map[string]any{"key": "Escape"})

	c.waitRender(func(html string) bool { return !strings.Contains(html, "Gallery closes") })
	assert.Equal(t, []store.Reason{store.ReasonKeyboard}, log.get())
}

func TestWebSocket_swipeDismiss(t *testing.T) {
	f := newFixture(t, Config{})
	var log reasonLog
	defer log.watch(f.store)()
	f.show(t, toast.Input{ID: "a", Message: "New booking", Persistent: true})

	c := f.dial(t)
	c.waitContains("New booking")
	hid := c.hid(`data-toast-id="a"`)

	c.event(hid, "touchstart", map[string]any{"touches": []map[string]any{{"id": 0, "clientX": 300, "clientY": 40}}})
	c.event(hid, "touchend", map[string]any{"changedTouches": []map[string]any{{"id": 0, "clientX": 160, "clientY": 44}}})

	c.waitRender(func(html string) bool { return !strings.Contains(html, "New booking") })
	assert.Equal(t, []store.Reason{store.ReasonGesture}, log.get())
}

func TestWebSocket_hoverPauses(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{ID: "a", Message: "Saved", Duration: 5 * time.Second})

	c := f.dial(t)
	c.waitContains("animation-play-state: running")
	hid := c.hid(`data-toast-id="a"`)

	c.event(hid, "mouseenter", nil)
	c.waitContains("animation-play-state: paused")
	assert.True(t, f.store.Paused("a"))

	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.store.Len())

	c.event(c.hid(`data-toast-id="a"`), "mouseleave", nil)
	c.waitContains("animation-play-state: running")
	assert.False(t, f.store.Paused("a"))
}

func TestWebSocket_toggleExpandable(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{
		ID:         "a",
		Type:       toast.TypeError,
		Message:    "Sync failed",
		Persistent: true,
		Expandable: &toast.Expandable{Summary: "Details", Details: "timeout contacting PMS"},
	})

	c := f.dial(t)
	html := c.waitContains("Sync failed")
	assert.NotContains(t, html, "timeout contacting PMS")

	c.event(c.hid(`class="toast-expand"`), "click", nil)
	html = c.waitContains("timeout contacting PMS")
	assert.Contains(t, html, `aria-expanded="true"`)
}

func TestWebSocket_resizeMarksMobile(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{Message: "Hello", Persistent: true})

	c := f.dial(t)
	html := c.waitContains("Hello")
	assert.NotContains(t, html, "data-mobile")

	c.send(inboundFrame{Type: frameResize, Width: 390})
	c.waitContains(`data-mobile="true"`)

	c.send(inboundFrame{Type: frameResize, Width: 1280})
	c.waitRender(func(html string) bool { return !strings.Contains(html, "data-mobile") })
}

func TestWebSocket_clipboardRoundTrip(t *testing.T) {
	f := newFixture(t, Config{})
	f.show(t, toast.Input{
		ID:         "a",
		Message:    "Wi-Fi password",
		Persistent: true,
		Copyable:   &toast.Copyable{Text: "pousada2026", Label: "Copy password"},
	})

	c := f.dial(t)
	c.waitContains("Wi-Fi password")
	c.event(c.hid(`class="toast-copy"`), "click", nil)

	var req map[string]any
	for req == nil {
		if frame := c.next(); frame["type"] == frameClipboard {
			req = frame
		}
	}
	assert.Equal(t, "pousada2026", req["text"])

	c.send(inboundFrame{Type: frameClipboardResult, ID: req["id"].(string), OK: true})
	c.waitContains(toastui.CopiedLabel)
	assert.Equal(t, toastui.CopiedLabel, c.sessionContainer(t, f).CopyFeedback("a"))

	f.clock.Advance(toastui.DefaultCopyFeedback)
	c.waitRender(func(html string) bool { return !strings.Contains(html, toastui.CopiedLabel) })
}

func TestWebSocket_clipboardRejected(t *testing.T) {
	rec := &fakeRecorder{}
	f := newFixture(t, Config{Recorder: rec})
	f.show(t, toast.Input{
		ID:         "a",
		Message:    "Invoice number",
		Persistent: true,
		Copyable:   &toast.Copyable{Text: "INV-0042"},
	})

	c := f.dial(t)
	c.waitContains("Invoice number")
	c.event(c.hid(`class="toast-copy"`), "click", nil)

	var id string
	for id == "" {
		if frame := c.next(); frame["type"] == frameClipboard {
			id = frame["id"].(string)
		}
	}
	c.send(inboundFrame{Type: frameClipboardResult, ID: id, Error: "NotAllowedError"})

	html := c.waitContains(toastui.CopyFailedLabel)
	assert.Contains(t, html, "toast-copy-failed")
	assert.Contains(t, html, `class="toast-close"`)
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, 1, rec.count(&rec.clipboard))
}

// sessionContainer returns the container of the only connected session.
func (c *client) sessionContainer(t *testing.T, f *fixture) *toastui.Container {
	t.Helper()
	f.server.mu.Lock()
	defer f.server.mu.Unlock()
	require.Len(t, f.server.sessions, 1)
	for s := range f.server.sessions {
		return s.Container()
	}
	return nil
}

func TestWebSocket_ignoresUnknownHandlers(t *testing.T) {
	f := newFixture(t, Config{})
	c := f.dial(t)
	c.waitContains("toast-announcer")

	c.event("h999", "click", nil)
	c.send(map[string]any{"type": "mystery"})
	require.NoError(t, c.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	f.show(t, toast.Input{Message: "still alive", Persistent: true})
	c.waitContains("still alive")
}

func TestWebSocket_sessionMetrics(t *testing.T) {
	rec := &fakeRecorder{}
	f := newFixture(t, Config{Recorder: rec})

	c := f.dial(t)
	c.next()
	assert.Eventually(t, func() bool { return rec.count(&rec.opened) == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, c.conn.Close())
	assert.Eventually(t, func() bool {
		return rec.count(&rec.closed) == 1 && f.server.Sessions() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_shutdownClosesSessions(t *testing.T) {
	f := newFixture(t, Config{})
	c := f.dial(t)
	c.next()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, f.server.Shutdown(ctx))
	assert.Equal(t, 0, f.server.Sessions())

	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := c.conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)

	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	if resp != nil {
		resp.Body.Close()
	}
}

type fakeRecorder struct {
	mu        sync.Mutex
	opened    int
	closed    int
	clipboard int
	effect    int
}

func (r *fakeRecorder) count(field *int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *field
}

func (r *fakeRecorder) inc(field *int) {
	r.mu.Lock()
	*field++
	r.mu.Unlock()
}

func (r *fakeRecorder) SessionOpened()   { r.inc(&r.opened) }
func (r *fakeRecorder) SessionClosed()   { r.inc(&r.closed) }
func (r *fakeRecorder) ClipboardFailed() { r.inc(&r.clipboard) }
func (r *fakeRecorder) EffectFailed()    { r.inc(&r.effect) }
