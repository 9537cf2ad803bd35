package toastui_test

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vango-dev/toastkit/internal/clocktest"
	"github.com/vango-dev/toastkit/pkg/clipboard"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
	"github.com/vango-dev/toastkit/pkg/vdom"
	"github.com/vango-dev/toastkit/pkg/vtest"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fixture struct {
	clock     *clocktest.FakeClock
	store     *store.Store
	container *toastui.Container
	changes   atomic.Int32
}

func newFixture(t *testing.T, cfg toastui.Config) *fixture {
	t.Helper()
	clk := clocktest.New(time.Date(2026, 3, 14, 19, 30, 0, 0, time.UTC))
	st := store.New(store.Config{Clock: clk})
	if cfg.Clock == nil {
		cfg.Clock = clk
	}
	f := &fixture{clock: clk, store: st}
	f.container = toastui.NewContainer(st, cfg)
	f.container.OnChange(func() { f.changes.Add(1) })
	t.Cleanup(f.container.Close)
	return f
}

func (f *fixture) show(t *testing.T, in toast.Input) string {
	t.Helper()
	id, err := f.store.Show(in)
	require.NoError(t, err)
	return id
}

func toastNodes(root *vdom.VNode) []*vdom.VNode {
	return vdom.ByClass(root, "toast")
}

func TestContainer_populated(t *testing.T) {
	f := newFixture(t, toastui.Config{Position: toastui.BottomLeft})
	f.show(t, toast.Input{ID: "a", Type: toast.TypeSuccess, Message: "Saved"})
	f.show(t, toast.Input{ID: "b", Type: toast.TypeError, Message: "Printer offline"})

	root := f.container.Render()

	assert.Equal(t, "section", root.Tag)
	assert.Equal(t, "region", root.AttrString("role"))
	assert.Equal(t, "Notifications", root.AttrString("aria-label"))
	vtest.ExpectLive(t, root, "polite")
	assert.Equal(t, "bottom-left", root.AttrString("data-position"))
	assert.Len(t, vtest.Landmarks(root), 1)

	vtest.ExpectRoleCount(t, root, "status", 1)
	vtest.ExpectRoleCount(t, root, "alert", 1)

	nodes := toastNodes(root)
	require.Len(t, nodes, 2)
	assert.Equal(t, "a", nodes[0].AttrString("data-toast-id"))
	assert.Equal(t, "b", nodes[1].AttrString("data-toast-id"))
}

func TestContainer_clearAllButton(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "one"})

	assert.Nil(t, vdom.Find(f.container.Render(), vtest.ByClass("toast-clear-all")))

	f.show(t, toast.Input{ID: "b", Message: "two"})
	btn := vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-clear-all"))
	assert.Equal(t, "Clear all", vdom.TextContent(btn))

	vtest.Click(t, btn)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 0, f.store.PendingTimers())
}

// An empty container exposes no landmark, only a polite live node that
// announces the last batch operation.
func TestContainer_emptyHasNoLandmarks(t *testing.T) {
	f := newFixture(t, toastui.Config{})

	root := f.container.Render()
	vtest.ExpectNoLandmarks(t, root)
	vtest.ExpectLive(t, root, "polite")
	assert.Empty(t, root.AttrString("aria-label"))
	assert.Empty(t, root.AttrString("role"))
	assert.Empty(t, vdom.TextContent(root))

	f.show(t, toast.Input{Message: "one"})
	f.show(t, toast.Input{Message: "two"})
	f.show(t, toast.Input{Message: "three"})
	f.store.ClearAll()

	root = f.container.Render()
	vtest.ExpectNoLandmarks(t, root)
	vtest.ExpectLive(t, root, "polite")
	assert.Equal(t, toastui.ClearedAnnouncement, vdom.TextContent(root))
	assert.Equal(t, 0, f.container.ViewCount())

	f.show(t, toast.Input{Message: "four"})
	assert.Empty(t, f.container.Announcement())
}

func TestContainer_keyboardDismiss(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	var reasons []store.Reason
	unsub := f.store.Subscribe(func(ev store.Event) {
		if ev.Kind == store.EventDismissed {
			reasons = append(reasons, ev.Reason)
		}
	})
	defer unsub()

	f.show(t, toast.Input{ID: "a", Message: "Order sent"})
	f.show(t, toast.Input{ID: "b", Message: "Locked", Dismissible: boolPtr(false)})

	nodes := toastNodes(f.container.Render())
	require.Len(t, nodes, 2)

	vtest.KeyDown(t, nodes[0], "Tab")
	assert.Equal(t, 2, f.store.Len())
	vtest.KeyDown(t, nodes[0], "Escape")
	assert.Equal(t, 1, f.store.Len())
	assert.Equal(t, []store.Reason{store.ReasonKeyboard}, reasons)

	assert.Nil(t, nodes[1].Handler("keydown"))
	assert.Equal(t, "-1", nodes[1].AttrString("tabindex"))
}

func TestContainer_swipeDismiss(t *testing.T) {
	f := newFixture(t, toastui.Config{SwipeThreshold: 80})
	f.show(t, toast.Input{ID: "a", Message: "swipe me"})

	node := toastNodes(f.container.Render())[0]
	vtest.Swipe(t, node, 300, 240)
	assert.Equal(t, 1, f.store.Len(), "60px is below the threshold")

	vtest.Swipe(t, node, 300, 200)
	assert.Equal(t, 0, f.store.Len())
}

func TestContainer_touchEndWithoutStart(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "x"})

	node := toastNodes(f.container.Render())[0]
	end := node.Handler("touchend").(func(toastui.TouchEvent))
	end(toastui.TouchEvent{ChangedTouches: []toastui.TouchPoint{{ClientX: 1000}}})

	assert.Equal(t, 1, f.store.Len())
}

// Hovering pauses the countdown; leaving resumes it with the time that was
// left.
func TestContainer_hoverPausesCountdown(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "Check-in complete", Duration: 5 * time.Second})

	f.clock.Advance(2 * time.Second)
	node := toastNodes(f.container.Render())[0]
	vtest.MouseEnter(t, node)
	assert.True(t, f.store.Paused("a"))

	bar := vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-countdown"))
	assert.Equal(t, "animation-duration: 5000ms; animation-delay: -2000ms; animation-play-state: paused", bar.AttrString("style"))

	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.store.Len())

	vtest.MouseLeave(t, node)
	assert.False(t, f.store.Paused("a"))
	f.clock.Advance(2999 * time.Millisecond)
	assert.Equal(t, 1, f.store.Len())
	f.clock.Advance(time.Millisecond)
	assert.Equal(t, 0, f.store.Len())
}

func TestContainer_focusPausesCountdown(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "x"})

	node := toastNodes(f.container.Render())[0]
	vtest.Focus(t, node)
	assert.True(t, f.store.Paused("a"))
	vtest.Blur(t, node)
	assert.False(t, f.store.Paused("a"))
}

func TestContainer_hoverAndFocusHoldPauseTogether(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "Room ready", Duration: 5 * time.Second})

	node := toastNodes(f.container.Render())[0]
	vtest.MouseEnter(t, node)
	vtest.Focus(t, node)
	require.True(t, f.store.Paused("a"))

	vtest.MouseLeave(t, node)
	assert.True(t, f.store.Paused("a"), "focus still holds the countdown")
	f.clock.Advance(time.Minute)
	assert.Equal(t, 1, f.store.Len())

	vtest.Blur(t, node)
	assert.False(t, f.store.Paused("a"))
	f.clock.Advance(5 * time.Second)
	assert.Equal(t, 0, f.store.Len())
}

func TestContainer_leaveWithoutEnterKeepsFocusPause(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "x"})

	node := toastNodes(f.container.Render())[0]
	vtest.Focus(t, node)
	vtest.MouseLeave(t, node)
	assert.True(t, f.store.Paused("a"))
}

func TestContainer_closeResumesHeldPauses(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Message: "Key card printed", Duration: 5 * time.Second})

	vtest.MouseEnter(t, toastNodes(f.container.Render())[0])
	require.True(t, f.store.Paused("a"))

	f.container.Close()
	assert.False(t, f.store.Paused("a"))

	f.clock.Advance(time.Hour)
	assert.Equal(t, 0, f.store.Len())
}

func TestContainer_toggleExpandable(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{ID: "a", Type: toast.TypeError, Message: "Sync failed",
		Expandable: &toast.Expandable{Summary: "Details", Details: "timeout after 30s"}})

	before := f.changes.Load()
	btn := vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-expand"))
	vtest.Click(t, btn)

	assert.True(t, f.container.Expanded("a"))
	assert.Greater(t, f.changes.Load(), before)
	details := vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-details"))
	assert.Equal(t, "timeout after 30s", vdom.TextContent(details))

	f.container.Toggle("a")
	assert.False(t, f.container.Expanded("a"))
	assert.Nil(t, vdom.Find(f.container.Render(), vtest.ByClass("toast-details")))
}

func TestContainer_copySuccess(t *testing.T) {
	var copied atomic.Value
	f := newFixture(t, toastui.Config{
		Clipboard: clipboard.Func(func(_ context.Context, text string) error {
			copied.Store(text)
			return nil
		}),
	})
	id := f.show(t, toast.Input{Message: "Booking created", Copyable: &toast.Copyable{Text: "BK-7781"}})
	tst, _ := f.store.Get(id)

	<-f.container.Copy(tst)
	assert.Equal(t, "BK-7781", copied.Load())
	assert.Equal(t, toastui.CopiedLabel, f.container.CopyFeedback(id))

	btn := vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-copy"))
	assert.Equal(t, "Copied!", vdom.TextContent(btn))

	f.clock.Advance(toastui.DefaultCopyFeedback)
	assert.Empty(t, f.container.CopyFeedback(id))
}

// A rejected clipboard write is logged, counted and shown on the button;
// the toast stays functional and dismissible.
func TestContainer_copyRejected(t *testing.T) {
	var buf bytes.Buffer
	rec := &countingRecorder{}
	f := newFixture(t, toastui.Config{
		Logger:       zerolog.New(&buf),
		Recorder:     rec,
		CopyFeedback: 3 * time.Second,
		Clipboard: clipboard.Func(func(context.Context, string) error {
			return assert.AnError
		}),
	})
	id := f.show(t, toast.Input{Message: "Invoice ready", Persistent: true, Copyable: &toast.Copyable{Text: "INV-1"}})
	tst, _ := f.store.Get(id)

	<-f.container.Copy(tst)

	assert.Equal(t, toastui.CopyFailedLabel, f.container.CopyFeedback(id))
	assert.Equal(t, 1, rec.clipboard)
	assert.Contains(t, buf.String(), "clipboard write failed")
	assert.Contains(t, buf.String(), `"toast_id":"`+id+`"`)
	assert.Contains(t, buf.String(), `"level":"error"`)

	f.clock.Advance(2 * time.Second)
	assert.Equal(t, toastui.CopyFailedLabel, f.container.CopyFeedback(id))
	f.clock.Advance(time.Second)
	assert.Empty(t, f.container.CopyFeedback(id))

	node := toastNodes(f.container.Render())[0]
	vtest.Click(t, vtest.MustFind(t, node, vtest.ByClass("toast-close")))
	assert.Equal(t, 0, f.store.Len())
}

func TestContainer_copyClickFromTree(t *testing.T) {
	done := make(chan struct{})
	f := newFixture(t, toastui.Config{
		Clipboard: clipboard.Func(func(context.Context, string) error {
			close(done)
			return nil
		}),
	})
	id := f.show(t, toast.Input{Message: "x", Copyable: &toast.Copyable{Text: "y"}})

	vtest.Click(t, vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-copy")))
	<-done
	assert.Eventually(t, func() bool {
		return f.container.CopyFeedback(id) == toastui.CopiedLabel
	}, time.Second, time.Millisecond)
}

func TestContainer_actionPanicKeepsToast(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture(t, toastui.Config{Logger: zerolog.New(&buf)})
	f.show(t, toast.Input{ID: "a", Message: "Order failed", Persistent: true,
		Action: &toast.Action{Label: "Retry", OnClick: func() { panic("retry handler bug") }}})

	vtest.Click(t, vtest.MustFind(t, f.container.Render(), vtest.ByClass("toast-action")))

	assert.Equal(t, 1, f.store.Len())
	assert.Contains(t, buf.String(), "toast action panicked")
	assert.Contains(t, buf.String(), "R003")
}

func TestContainer_mobileViewport(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.show(t, toast.Input{Message: "x"})

	assert.False(t, f.container.Mobile())
	assert.Empty(t, f.container.Render().AttrString("data-mobile"))

	before := f.changes.Load()
	f.container.SetViewportWidth(390)
	assert.True(t, f.container.Mobile())
	assert.Equal(t, "true", f.container.Render().AttrString("data-mobile"))
	assert.Equal(t, before+1, f.changes.Load())

	f.container.SetViewportWidth(768)
	assert.False(t, f.container.Mobile())
	assert.Empty(t, f.container.Render().AttrString("data-mobile"))
}

func TestContainer_prunesViewState(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	for i := 0; i < f.store.MaxToasts(); i++ {
		f.show(t, toast.Input{Message: "x"})
	}
	f.container.Render()
	assert.Equal(t, 5, f.container.ViewCount())

	f.show(t, toast.Input{Message: "evicts the oldest"})
	assert.Equal(t, 5, f.container.ViewCount())

	f.clock.Advance(store.DefaultDefaultDuration)
	assert.Equal(t, 0, f.store.Len())
	assert.Equal(t, 0, f.container.ViewCount())
}

func TestContainer_closeStopsNotifications(t *testing.T) {
	f := newFixture(t, toastui.Config{})
	f.container.Close()

	before := f.changes.Load()
	f.show(t, toast.Input{Message: "after close"})
	assert.Equal(t, before, f.changes.Load())

	tst := f.store.Snapshot()[0]
	<-f.container.Copy(tst)
}

func TestParsePosition(t *testing.T) {
	p, err := toastui.ParsePosition("")
	require.NoError(t, err)
	assert.Equal(t, toastui.TopRight, p)

	p, err = toastui.ParsePosition("bottom-center")
	require.NoError(t, err)
	assert.Equal(t, toastui.BottomCenter, p)

	_, err = toastui.ParsePosition("middle")
	assert.Error(t, err)
}

func boolPtr(b bool) *bool { return &b }
