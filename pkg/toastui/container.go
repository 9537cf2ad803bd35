package toastui

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/clipboard"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/vdom"
)

// ClearedAnnouncement is announced after a clear-all empties the stack.
const ClearedAnnouncement = "All notifications cleared"

const (
	DefaultSwipeThreshold   = 100
	DefaultCopyFeedback     = 2 * time.Second
	DefaultClipboardTimeout = 5 * time.Second
	DefaultMobileBreakpoint = 768
)

// Source is the toast state a Container renders. *store.Store implements it.
type Source interface {
	toast.Notifier
	Snapshot() []toast.Toast
	Paused(id string) bool
	Remaining(id string) (time.Duration, bool)
	Subscribe(fn store.Listener) func()
}

// Config configures a Container.
type Config struct {
	// Position anchors the stack (default: TopRight).
	Position Position

	// SwipeThreshold is the horizontal distance in CSS pixels a swipe must
	// exceed to dismiss (default: 100).
	SwipeThreshold float64

	// CopyFeedback is how long "Copied!" or "Copy failed" stays on the copy
	// button (default: 2s).
	CopyFeedback time.Duration

	// ClipboardTimeout bounds one clipboard write (default: 5s).
	ClipboardTimeout time.Duration

	// MobileBreakpoint is the viewport width below which the container is
	// marked mobile (default: 768).
	MobileBreakpoint int

	// Notifier receives the operations triggered by input. Defaults to the
	// Source; set it to route operations through a decorator.
	Notifier toast.Notifier

	// Clipboard receives copy requests (default: clipboard.Unavailable).
	Clipboard clipboard.Writer

	// Clock times copy feedback (default: store.RealClock()).
	Clock store.Clock

	// Effects add cosmetic attributes to each toast.
	Effects []Effect

	// Recorder counts absorbed failures.
	Recorder Recorder

	Logger zerolog.Logger
}

// pauseSource records why the container paused a toast.
type pauseSource uint8

const (
	pauseHover pauseSource = 1 << iota
	pauseFocus
)

type viewState struct {
	expanded    bool
	touchStartX float64
	touching    bool
	pausedBy    pauseSource

	copyLabel     string
	copyGen       uint64
	feedbackTimer store.Timer
}

// Container renders the toast stack and owns its view state.
type Container struct {
	src      Source
	notifier toast.Notifier
	renderer *Renderer
	cfg      Config
	logger   zerolog.Logger

	mu           sync.Mutex
	views        map[string]*viewState
	viewport     int
	announcement string
	onChange     func()
	closed       bool

	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()
}

// NewContainer creates a Container reading from src and subscribes it to
// store events. Call Close to release it.
func NewContainer(src Source, cfg Config) *Container {
	if cfg.Position == "" {
		cfg.Position = TopRight
	}
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = DefaultSwipeThreshold
	}
	if cfg.CopyFeedback <= 0 {
		cfg.CopyFeedback = DefaultCopyFeedback
	}
	if cfg.ClipboardTimeout <= 0 {
		cfg.ClipboardTimeout = DefaultClipboardTimeout
	}
	if cfg.MobileBreakpoint <= 0 {
		cfg.MobileBreakpoint = DefaultMobileBreakpoint
	}
	if cfg.Notifier == nil {
		cfg.Notifier = src
	}
	if cfg.Clipboard == nil {
		cfg.Clipboard = clipboard.Unavailable
	}
	if cfg.Clock == nil {
		cfg.Clock = store.RealClock()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}

	logger := cfg.Logger.With().Str("component", "toastui").Logger()
	ctx, cancel := context.WithCancel(context.Background())
	c := &Container{
		src:      src,
		notifier: cfg.Notifier,
		renderer: NewRenderer(cfg.Effects, cfg.Recorder, logger),
		cfg:      cfg,
		logger:   logger,
		views:    make(map[string]*viewState),
		ctx:      ctx,
		cancel:   cancel,
	}
	c.unsubscribe = src.Subscribe(c.handleEvent)
	return c
}

// OnChange registers fn to be called after view or store state changes.
// fn must not block; it is called from store listeners and timer goroutines.
func (c *Container) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Close unsubscribes from the store, resumes the countdowns it paused,
// cancels in-flight clipboard writes and waits for them to finish.
func (c *Container) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	var held []string
	for id, v := range c.views {
		if v.feedbackTimer != nil {
			v.feedbackTimer.Stop()
		}
		if v.pausedBy != 0 {
			v.pausedBy = 0
			held = append(held, id)
		}
	}
	c.mu.Unlock()

	c.unsubscribe()
	for _, id := range held {
		c.notifier.Resume(id)
	}
	c.cancel()
	c.wg.Wait()
}

// SetViewportWidth records the client viewport width in CSS pixels.
func (c *Container) SetViewportWidth(w int) {
	c.mu.Lock()
	changed := c.viewport != w
	c.viewport = w
	c.mu.Unlock()
	if changed {
		c.notify()
	}
}

// Mobile reports whether the viewport is narrower than the breakpoint.
// An unknown (zero) width is not mobile.
func (c *Container) Mobile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mobileLocked()
}

func (c *Container) mobileLocked() bool {
	return c.viewport > 0 && c.viewport < c.cfg.MobileBreakpoint
}

// Announcement returns the last batch announcement.
func (c *Container) Announcement() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.announcement
}

// Expanded reports whether the toast's details are shown.
func (c *Container) Expanded(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.views[id]
	return ok && v.expanded
}

// CopyFeedback returns the feedback label currently on the toast's copy
// button, or "".
func (c *Container) CopyFeedback(id string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.views[id]; ok {
		return v.copyLabel
	}
	return ""
}

// Render builds the container tree from the current store state.
func (c *Container) Render() *vdom.VNode {
	toasts := c.src.Snapshot()
	views := make([]ToastView, len(toasts))
	for i, t := range toasts {
		views[i].Paused = c.src.Paused(t.ID)
		if left, ok := c.src.Remaining(t.ID); ok {
			views[i].Elapsed = t.Duration - left
		}
	}

	c.mu.Lock()
	c.pruneLocked(toasts)
	for i, t := range toasts {
		v := c.viewLocked(t.ID)
		views[i].Expanded = v.expanded
		views[i].CopyLabel = v.copyLabel
	}
	mobile := c.mobileLocked()
	announcement := c.announcement
	c.mu.Unlock()

	if len(toasts) == 0 {
		return vdom.Div(
			vdom.Class("toast-announcer", "sr-only"),
			vdom.AriaLive("polite"),
			vdom.AriaAtomic(true),
			vdom.Text(announcement),
		)
	}

	items := make([]*vdom.VNode, len(toasts))
	for i, t := range toasts {
		items[i] = c.renderer.Toast(t, views[i], c.callbacks(t))
	}

	return vdom.Section(
		vdom.Class("toast-container", "toast-"+string(c.cfg.Position)),
		vdom.Role("region"),
		vdom.AriaLabel("Notifications"),
		vdom.AriaLive("polite"),
		vdom.Data("position", string(c.cfg.Position)),
		vdom.AttrIf(mobile, vdom.Data("mobile", "true")),
		items,
		vdom.If(len(toasts) >= 2, vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-clear-all"),
			vdom.HIDKey("toast-clear-all"),
			vdom.OnClick(c.clearAll),
			vdom.Text("Clear all"),
		)),
	)
}

func (c *Container) clearAll() {
	c.notifier.ClearAll()
}

// callbacks binds the translation functions to t and its view state.
func (c *Container) callbacks(t toast.Toast) Callbacks {
	n := c.notifier
	cb := Callbacks{
		PointerEnter: func() { c.hold(t, pauseHover) },
		PointerLeave: func() { c.release(t, pauseHover) },
		Focus:        func() { c.hold(t, pauseFocus) },
		Blur:         func() { c.release(t, pauseFocus) },
	}
	if t.Dismissible {
		cb.Dismiss = func() { dismiss(n, t.ID, store.ReasonManual) }
		cb.KeyDown = func(ev KeyboardEvent) { HandleKeyDown(n, t, ev) }
		cb.TouchStart = func(ev TouchEvent) { c.touchStart(t.ID, ev) }
		cb.TouchEnd = func(ev TouchEvent) { c.touchEnd(t, ev) }
	}
	if t.Expandable != nil {
		cb.Toggle = func() { c.Toggle(t.ID) }
	}
	if t.Copyable != nil {
		cb.Copy = func() { c.Copy(t) }
	}
	if t.Action != nil {
		cb.Action = func() { c.action(t.Action, t) }
	}
	if t.SecondaryAction != nil {
		cb.SecondaryAction = func() { c.action(t.SecondaryAction, t) }
	}
	return cb
}

// hold pauses t's countdown on behalf of src. The store is only paused
// when src is the first active source.
func (c *Container) hold(t toast.Toast, src pauseSource) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	v := c.viewLocked(t.ID)
	first := v.pausedBy == 0
	v.pausedBy |= src
	c.mu.Unlock()

	if !first {
		return
	}
	if src == pauseFocus {
		HandleFocus(c.notifier, t)
	} else {
		HandlePointerEnter(c.notifier, t)
	}
}

// release drops src and resumes the countdown once no source holds it.
func (c *Container) release(t toast.Toast, src pauseSource) {
	c.mu.Lock()
	v, ok := c.views[t.ID]
	if !ok || c.closed || v.pausedBy&src == 0 {
		c.mu.Unlock()
		return
	}
	v.pausedBy &^= src
	last := v.pausedBy == 0
	c.mu.Unlock()

	if !last {
		return
	}
	if src == pauseFocus {
		HandleBlur(c.notifier, t)
	} else {
		HandlePointerLeave(c.notifier, t)
	}
}

func (c *Container) action(a *toast.Action, t toast.Toast) {
	_ = HandleAction(a, t, c.logger)
	c.notify()
}

// Toggle flips the expanded state of the toast's details.
func (c *Container) Toggle(id string) {
	c.mu.Lock()
	v := c.viewLocked(id)
	v.expanded = HandleToggle(v.expanded)
	c.mu.Unlock()
	c.notify()
}

func (c *Container) touchStart(id string, ev TouchEvent) {
	x, ok := HandleTouchStart(ev)
	if !ok {
		return
	}
	c.mu.Lock()
	v := c.viewLocked(id)
	v.touchStartX = x
	v.touching = true
	c.mu.Unlock()
}

func (c *Container) touchEnd(t toast.Toast, ev TouchEvent) {
	c.mu.Lock()
	v := c.viewLocked(t.ID)
	startX, touching := v.touchStartX, v.touching
	v.touching = false
	c.mu.Unlock()

	if !touching {
		return
	}
	HandleTouchEnd(c.notifier, t, startX, ev, c.cfg.SwipeThreshold)
}

// Copy writes the toast's copyable text to the clipboard in the background
// and shows feedback on its button. The returned channel is closed once the
// feedback has been applied.
func (c *Container) Copy(t toast.Toast) <-chan struct{} {
	done := make(chan struct{})
	c.mu.Lock()
	if t.Copyable == nil || c.closed {
		c.mu.Unlock()
		close(done)
		return done
	}
	c.wg.Add(1)
	c.mu.Unlock()

	result := HandleCopy(c.ctx, c.cfg.Clipboard, t.Copyable.Text, c.cfg.ClipboardTimeout)
	go func() {
		defer c.wg.Done()
		defer close(done)

		label := CopiedLabel
		if err := <-result; err != nil {
			label = CopyFailedLabel
			c.cfg.Recorder.ClipboardFailed()
			c.logger.Error().Err(err).Str("toast_id", t.ID).Msg("clipboard write failed")
		}
		c.showCopyFeedback(t.ID, label)
	}()
	return done
}

func (c *Container) showCopyFeedback(id, label string) {
	c.mu.Lock()
	v, ok := c.views[id]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	if v.feedbackTimer != nil {
		v.feedbackTimer.Stop()
	}
	v.copyGen++
	gen := v.copyGen
	v.copyLabel = label
	v.feedbackTimer = c.cfg.Clock.AfterFunc(c.cfg.CopyFeedback, func() {
		c.clearCopyFeedback(id, gen)
	})
	c.mu.Unlock()
	c.notify()
}

func (c *Container) clearCopyFeedback(id string, gen uint64) {
	c.mu.Lock()
	v, ok := c.views[id]
	if !ok || v.copyGen != gen {
		c.mu.Unlock()
		return
	}
	v.copyLabel = ""
	v.feedbackTimer = nil
	c.mu.Unlock()
	c.notify()
}

// handleEvent keeps view state in step with the store.
func (c *Container) handleEvent(ev store.Event) {
	c.mu.Lock()
	switch ev.Kind {
	case store.EventShown:
		c.viewLocked(ev.Toast.ID)
		c.announcement = ""
	case store.EventDismissed:
		c.dropLocked(ev.Toast.ID)
	case store.EventCleared:
		for id := range c.views {
			c.dropLocked(id)
		}
		c.announcement = ClearedAnnouncement
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Container) viewLocked(id string) *viewState {
	v, ok := c.views[id]
	if !ok {
		v = &viewState{}
		c.views[id] = v
	}
	return v
}

func (c *Container) dropLocked(id string) {
	if v, ok := c.views[id]; ok {
		if v.feedbackTimer != nil {
			v.feedbackTimer.Stop()
		}
		delete(c.views, id)
	}
}

// pruneLocked drops view state of toasts no longer in the store.
func (c *Container) pruneLocked(toasts []toast.Toast) {
	live := make(map[string]struct{}, len(toasts))
	for _, t := range toasts {
		live[t.ID] = struct{}{}
	}
	for id := range c.views {
		if _, ok := live[id]; !ok {
			c.dropLocked(id)
		}
	}
}

// ViewCount returns the number of toasts with view state.
func (c *Container) ViewCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

func (c *Container) notify() {
	c.mu.Lock()
	fn := c.onChange
	closed := c.closed
	c.mu.Unlock()
	if fn != nil && !closed {
		fn()
	}
}
