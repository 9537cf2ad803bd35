package toastui

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/clipboard"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
)

// ReasonDismisser is implemented by notifiers that record why a toast was
// dismissed. *store.Store implements it.
type ReasonDismisser interface {
	DismissWithReason(id string, reason store.Reason) bool
}

// dismiss removes the toast, passing the reason along when n supports it.
func dismiss(n toast.Notifier, id string, reason store.Reason) {
	if d, ok := n.(ReasonDismisser); ok {
		d.DismissWithReason(id, reason)
		return
	}
	n.Dismiss(id)
}

// IsDismissKey reports whether key dismisses a focused toast.
func IsDismissKey(key string) bool {
	switch key {
	case "Escape", "Esc", "Enter", " ", "Space", "Spacebar":
		return true
	default:
		return false
	}
}

// HandleKeyDown dismisses a dismissible toast on Escape, Enter or Space.
// It reports whether the toast was dismissed.
func HandleKeyDown(n toast.Notifier, t toast.Toast, ev KeyboardEvent) bool {
	if !t.Dismissible || !IsDismissKey(ev.Key) {
		return false
	}
	dismiss(n, t.ID, store.ReasonKeyboard)
	return true
}

// HandleTouchStart returns the X coordinate a swipe starts from.
func HandleTouchStart(ev TouchEvent) (float64, bool) {
	p, ok := ev.first()
	if !ok {
		return 0, false
	}
	return p.ClientX, true
}

// HandleTouchEnd dismisses a dismissible toast when the horizontal distance
// from startX exceeds threshold. It reports whether the toast was dismissed.
func HandleTouchEnd(n toast.Notifier, t toast.Toast, startX float64, ev TouchEvent, threshold float64) bool {
	if !t.Dismissible {
		return false
	}
	p, ok := ev.first()
	if !ok {
		return false
	}
	if math.Abs(p.ClientX-startX) <= threshold {
		return false
	}
	dismiss(n, t.ID, store.ReasonGesture)
	return true
}

// HandlePointerEnter pauses the countdown while the pointer is over the toast.
func HandlePointerEnter(n toast.Notifier, t toast.Toast) { n.Pause(t.ID) }

// HandlePointerLeave resumes the countdown.
func HandlePointerLeave(n toast.Notifier, t toast.Toast) { n.Resume(t.ID) }

// HandleFocus pauses the countdown while the toast has keyboard focus.
func HandleFocus(n toast.Notifier, t toast.Toast) { n.Pause(t.ID) }

// HandleBlur resumes the countdown.
func HandleBlur(n toast.Notifier, t toast.Toast) { n.Resume(t.ID) }

// HandleToggle returns the next expanded state of an expandable toast.
func HandleToggle(expanded bool) bool { return !expanded }

// HandleCopy writes text to w on its own goroutine, bounded by timeout.
// The returned channel receives exactly one result and is never closed
// before it does. A writer that ignores ctx is abandoned at the deadline.
func HandleCopy(ctx context.Context, w clipboard.Writer, text string, timeout time.Duration) <-chan error {
	out := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		result := make(chan error, 1)
		go func() { result <- safeWrite(ctx, w, text) }()

		select {
		case err := <-result:
			out <- err
		case <-ctx.Done():
			out <- errors.New(errors.CodeClipboardWrite).Wrap(ctx.Err())
		}
	}()
	return out
}

func safeWrite(ctx context.Context, w clipboard.Writer, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeClipboardWrite).Wrap(fmt.Errorf("panic: %v", r))
		}
	}()
	if w == nil {
		return errors.New(errors.CodeClipboardWrite).WithDetail("no clipboard writer configured")
	}
	if err := w.Write(ctx, text); err != nil {
		return errors.FromError(err, errors.CodeClipboardWrite)
	}
	return nil
}

// HandleAction runs an action callback. A panic is recovered, logged and
// returned as an error; the toast is never dismissed implicitly.
func HandleAction(a *toast.Action, t toast.Toast, logger zerolog.Logger) (err error) {
	if a == nil || a.OnClick == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeActionPanicked).Wrap(fmt.Errorf("%v", r))
			logger.Error().Err(err).Str("toast_id", t.ID).Str("action", a.Label).Msg("toast action panicked")
		}
	}()
	a.OnClick()
	return nil
}
