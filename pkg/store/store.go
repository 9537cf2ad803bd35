package store

import (
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/toast"
)

const (
	DefaultMaxToasts       = 5
	DefaultDefaultDuration = 5 * time.Second
)

// Config configures a Store.
type Config struct {
	// MaxToasts is the capacity bound (default: 5).
	MaxToasts int

	// DefaultDuration applies to toasts that set no duration and are not
	// persistent (default: 5s).
	DefaultDuration time.Duration

	// Clock arms auto-dismiss timers (default: RealClock()).
	Clock Clock

	// Logger receives debug traces of store mutations.
	Logger zerolog.Logger
}

// timerRecord tracks the auto-dismiss countdown of one toast.
type timerRecord struct {
	remaining  time.Duration
	startedAt  time.Time
	timer      Timer
	paused     bool
	generation uint64
}

type entry struct {
	toast toast.Toast
	timer *timerRecord
}

// Store holds the active toasts.
type Store struct {
	mu         sync.Mutex
	entries    []*entry
	generation uint64

	listenersMu sync.Mutex
	listeners   map[int]Listener
	nextID      int

	// queue holds events in mutation order until a drainer delivers them.
	queueMu  sync.Mutex
	queue    []Event
	draining bool

	maxToasts       int
	defaultDuration time.Duration
	clock           Clock
	logger          zerolog.Logger
}

var _ toast.Notifier = (*Store)(nil)

// New creates a Store.
func New(cfg Config) *Store {
	if cfg.MaxToasts <= 0 {
		cfg.MaxToasts = DefaultMaxToasts
	}
	if cfg.DefaultDuration <= 0 {
		cfg.DefaultDuration = DefaultDefaultDuration
	}
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	return &Store{
		listeners:       make(map[int]Listener),
		maxToasts:       cfg.MaxToasts,
		defaultDuration: cfg.DefaultDuration,
		clock:           cfg.Clock,
		logger:          cfg.Logger.With().Str("component", "store").Logger(),
	}
}

// MaxToasts returns the capacity bound.
func (s *Store) MaxToasts() int { return s.maxToasts }

// Show adds a toast, or replaces the active toast with the same id.
// It returns the toast id, or a validation error from toast.Input.Build.
func (s *Store) Show(in toast.Input) (string, error) {
	t, err := in.Build(toast.Defaults{
		DefaultDuration: s.defaultDuration,
		Now:             s.clock.Now,
	})
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	var events []Event
	if i := s.indexLocked(t.ID); i >= 0 {
		old := s.entries[i]
		s.stopLocked(old)
		s.entries[i] = &entry{toast: t}
		s.armLocked(s.entries[i])
		events = append(events, Event{Kind: EventUpdated, Toast: t})
	} else {
		e := &entry{toast: t}
		s.entries = append(s.entries, e)
		s.armLocked(e)
		events = append(events, Event{Kind: EventShown, Toast: t})
		for len(s.entries) > s.maxToasts {
			oldest := s.entries[0]
			s.stopLocked(oldest)
			s.entries = s.entries[1:]
			events = append(events, Event{Kind: EventDismissed, Toast: oldest.toast, Reason: ReasonEvicted})
		}
	}
	s.enqueueLocked(events...)
	s.mu.Unlock()

	s.logger.Debug().Str("toast_id", t.ID).Str("type", string(t.Type)).Msg("toast shown")
	s.drain()
	return t.ID, nil
}

// Dismiss removes the toast with the given id. Unknown ids are ignored.
func (s *Store) Dismiss(id string) {
	s.DismissWithReason(id, ReasonManual)
}

// DismissWithReason removes the toast with the given id, recording why.
// It reports whether a toast was removed.
func (s *Store) DismissWithReason(id string, reason Reason) bool {
	s.mu.Lock()
	t, ok := s.removeLocked(id)
	if ok {
		s.enqueueLocked(Event{Kind: EventDismissed, Toast: t, Reason: reason})
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.logger.Debug().Str("toast_id", id).Str("reason", string(reason)).Msg("toast dismissed")
	s.drain()
	return true
}

// ClearAll removes every toast and cancels every pending timer.
func (s *Store) ClearAll() {
	s.mu.Lock()
	n := len(s.entries)
	for _, e := range s.entries {
		s.stopLocked(e)
	}
	s.entries = nil
	if n > 0 {
		s.enqueueLocked(Event{Kind: EventCleared, Count: n, Reason: ReasonCleared})
	}
	s.mu.Unlock()

	if n == 0 {
		return
	}
	s.logger.Debug().Int("count", n).Msg("toasts cleared")
	s.drain()
}

// Pause suspends the auto-dismiss countdown of a toast, keeping the time
// already elapsed. Pausing a paused or timer-less toast is a no-op.
func (s *Store) Pause(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	e := s.entries[i]
	rec := e.timer
	if rec == nil || rec.paused {
		s.mu.Unlock()
		return
	}
	rec.timer.Stop()
	rec.remaining -= s.clock.Now().Sub(rec.startedAt)
	if rec.remaining < 0 {
		rec.remaining = 0
	}
	rec.paused = true
	rec.timer = nil
	s.enqueueLocked(Event{Kind: EventPaused, Toast: e.toast})
	s.mu.Unlock()

	s.drain()
}

// Resume continues a paused countdown from where it stopped.
// Resuming a running or timer-less toast is a no-op.
func (s *Store) Resume(id string) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	e := s.entries[i]
	rec := e.timer
	if rec == nil || !rec.paused {
		s.mu.Unlock()
		return
	}
	rec.paused = false
	s.startLocked(e.toast.ID, rec)
	s.enqueueLocked(Event{Kind: EventResumed, Toast: e.toast})
	s.mu.Unlock()

	s.drain()
}

// Paused reports whether the toast's countdown is paused.
func (s *Store) Paused(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 && s.entries[i].timer != nil {
		return s.entries[i].timer.paused
	}
	return false
}

// Remaining returns the unpaused time left before the toast auto-dismisses.
func (s *Store) Remaining(id string) (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexLocked(id)
	if i < 0 || s.entries[i].timer == nil {
		return 0, false
	}
	rec := s.entries[i].timer
	if rec.paused {
		return rec.remaining, true
	}
	left := rec.remaining - s.clock.Now().Sub(rec.startedAt)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Snapshot returns the active toasts in display order.
func (s *Store) Snapshot() []toast.Toast {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]toast.Toast, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.toast
	}
	return out
}

// Get returns the active toast with the given id.
func (s *Store) Get(id string) (toast.Toast, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.entries[i].toast, true
	}
	return toast.Toast{}, false
}

// Len returns the number of active toasts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// PendingTimers returns the number of armed auto-dismiss timers.
func (s *Store) PendingTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.timer != nil && e.timer.timer != nil {
			n++
		}
	}
	return n
}

// Subscribe registers a listener for every subsequent mutation.
// The returned function removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// enqueueLocked queues events while s.mu is held, fixing their order.
func (s *Store) enqueueLocked(events ...Event) {
	s.queueMu.Lock()
	s.queue = append(s.queue, events...)
	s.queueMu.Unlock()
}

// drain delivers queued events. Only one goroutine drains at a time; a
// listener that mutates the store has its events delivered by the same loop.
func (s *Store) drain() {
	s.queueMu.Lock()
	if s.draining {
		s.queueMu.Unlock()
		return
	}
	s.draining = true
	for len(s.queue) > 0 {
		ev := s.queue[0]
		s.queue = s.queue[1:]
		s.queueMu.Unlock()

		for _, fn := range s.subscribers() {
			fn(ev)
		}

		s.queueMu.Lock()
	}
	s.draining = false
	s.queueMu.Unlock()
}

func (s *Store) subscribers() []Listener {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	subs := make([]Listener, 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.listeners[id])
	}
	return subs
}

func (s *Store) indexLocked(id string) int {
	for i, e := range s.entries {
		if e.toast.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) removeLocked(id string) (toast.Toast, bool) {
	i := s.indexLocked(id)
	if i < 0 {
		return toast.Toast{}, false
	}
	e := s.entries[i]
	s.stopLocked(e)
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return e.toast, true
}

// armLocked attaches and starts a timer record when the toast auto-dismisses.
func (s *Store) armLocked(e *entry) {
	if !e.toast.AutoDismiss() {
		return
	}
	e.timer = &timerRecord{remaining: e.toast.Duration}
	s.startLocked(e.toast.ID, e.timer)
}

func (s *Store) startLocked(id string, rec *timerRecord) {
	s.generation++
	gen := s.generation
	rec.generation = gen
	rec.startedAt = s.clock.Now()
	rec.timer = s.clock.AfterFunc(rec.remaining, func() {
		s.expire(id, gen)
	})
}

func (s *Store) stopLocked(e *entry) {
	if e.timer == nil {
		return
	}
	if e.timer.timer != nil {
		e.timer.timer.Stop()
		e.timer.timer = nil
	}
	// Invalidate a callback that is already running.
	e.timer.generation = 0
}

// expire is the timer callback. It only dismisses the toast when the timer
// that fired is still the current one for that id.
func (s *Store) expire(id string, gen uint64) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return
	}
	e := s.entries[i]
	if e.timer == nil || e.timer.paused || e.timer.generation != gen {
		s.mu.Unlock()
		return
	}
	e.timer.timer = nil
	t, _ := s.removeLocked(id)
	s.enqueueLocked(Event{Kind: EventDismissed, Toast: t, Reason: ReasonTimeout})
	s.mu.Unlock()

	s.logger.Debug().Str("toast_id", id).Msg("toast expired")
	s.drain()
}
