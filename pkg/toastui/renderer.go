package toastui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/vdom"
)

// Copy button labels.
const (
	CopiedLabel     = "Copied!"
	CopyFailedLabel = "Copy failed"
)

// ToastView is the per-toast state the renderer needs beyond the toast.
type ToastView struct {
	Expanded bool
	Paused   bool
	// Elapsed is how much of the countdown has run. The countdown bar is
	// offset by it so a re-render does not restart the animation.
	Elapsed time.Duration
	// CopyLabel overrides the copy button label while feedback is shown.
	CopyLabel string
}

// Callbacks are bound to the rendered elements. Nil callbacks are not bound.
type Callbacks struct {
	Dismiss         func()
	KeyDown         func(KeyboardEvent)
	TouchStart      func(TouchEvent)
	TouchEnd        func(TouchEvent)
	PointerEnter    func()
	PointerLeave    func()
	Focus           func()
	Blur            func()
	Toggle          func()
	Copy            func()
	Action          func()
	SecondaryAction func()
}

// Renderer builds the element tree of a single toast.
type Renderer struct {
	effects  []Effect
	recorder Recorder
	logger   zerolog.Logger
}

// NewRenderer creates a Renderer. A nil recorder discards failure counts.
func NewRenderer(effects []Effect, recorder Recorder, logger zerolog.Logger) *Renderer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Renderer{effects: effects, recorder: recorder, logger: logger}
}

// ElementID returns the DOM id of the toast's root element.
func ElementID(id string) string { return "toast-" + id }

// DetailsID returns the DOM id of an expandable toast's details region.
func DetailsID(id string) string { return "toast-" + id + "-details" }

// ProgressLabelID returns the DOM id of the visible progress label.
func ProgressLabelID(id string) string { return "toast-" + id + "-progress-label" }

// hidKey gives a toast element a hydration ID derived from the toast id, so
// an event for a toast that is gone finds no handler instead of hitting
// whichever element took its place.
func hidKey(t toast.Toast, part string) vdom.Attr {
	if part == "" {
		return vdom.HIDKey(ElementID(t.ID))
	}
	return vdom.HIDKey(ElementID(t.ID) + "-" + part)
}

// Toast renders t.
func (r *Renderer) Toast(t toast.Toast, v ToastView, cb Callbacks) *vdom.VNode {
	role, live := "status", "polite"
	if t.Type == toast.TypeError {
		role, live = "alert", "assertive"
	}

	tabIndex := -1
	if t.Dismissible {
		tabIndex = 0
	}

	args := []any{
		vdom.ID(ElementID(t.ID)),
		vdom.Class("toast", "toast-"+string(t.Type)),
		vdom.ClassIf(t.Loading, "toast-loading"),
		vdom.ClassIf(v.Paused, "toast-paused"),
		vdom.Key(t.ID),
		hidKey(t, ""),
		vdom.Role(role),
		vdom.AriaLive(live),
		vdom.AriaAtomic(true),
		vdom.TabIndex(tabIndex),
		vdom.Data("toast-id", t.ID),
		vdom.Data("type", string(t.Type)),
		vdom.AttrIf(t.Loading, vdom.AriaBusy(true)),
		vdom.AttrIf(t.Expandable != nil && v.Expanded, vdom.AriaDescribedBy(DetailsID(t.ID))),
		r.effectAttrs(t),
	}

	if t.Dismissible {
		args = append(args, bind(vdom.OnKeyDown, cb.KeyDown), bind(vdom.OnTouchStart, cb.TouchStart), bind(vdom.OnTouchEnd, cb.TouchEnd))
	}
	args = append(args,
		bind(vdom.OnMouseEnter, cb.PointerEnter),
		bind(vdom.OnMouseLeave, cb.PointerLeave),
		bind(vdom.OnFocus, cb.Focus),
		bind(vdom.OnBlur, cb.Blur),

		vdom.Span(vdom.Class("sr-only"), vdom.Text(t.Announcement())),
		r.content(t),
		vdom.When(t.Expandable != nil, func() *vdom.VNode { return r.expandable(t, v, cb) }),
		vdom.When(t.Progress != nil, func() *vdom.VNode { return r.progress(t) }),
		r.actions(t, v, cb),
		vdom.When(t.Progress == nil && t.AutoDismiss(), func() *vdom.VNode { return r.countdown(t, v) }),
	)

	return vdom.Div(args...)
}

// bind returns an event binding, or nil when fn is nil.
func bind(on func(any) vdom.EventHandler, fn any) any {
	if fn == nil || isNilFunc(fn) {
		return nil
	}
	return on(fn)
}

func isNilFunc(fn any) bool {
	switch f := fn.(type) {
	case func():
		return f == nil
	case func(KeyboardEvent):
		return f == nil
	case func(TouchEvent):
		return f == nil
	default:
		return false
	}
}

// content is the visible text. It is hidden from assistive technology
// because the sr-only announcement already carries it.
func (r *Renderer) content(t toast.Toast) *vdom.VNode {
	icon := vdom.Span(vdom.Class("toast-icon", "toast-icon-"+string(t.Type)), vdom.AriaHidden(true))
	if t.Loading {
		icon = vdom.Span(vdom.Class("toast-spinner"), vdom.AriaHidden(true))
	}
	return vdom.Div(vdom.Class("toast-content"), vdom.AriaHidden(true),
		icon,
		vdom.Div(vdom.Class("toast-body"),
			vdom.If(t.Title != "", vdom.Strong(vdom.Class("toast-title"), vdom.Text(t.Title))),
			vdom.P(vdom.Class("toast-message"), vdom.Text(t.Message)),
		),
	)
}

func (r *Renderer) expandable(t toast.Toast, v ToastView, cb Callbacks) *vdom.VNode {
	detailsID := DetailsID(t.ID)
	return vdom.Div(vdom.Class("toast-expandable"),
		vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-expand"),
			hidKey(t, "expand"),
			vdom.AriaExpanded(v.Expanded),
			vdom.AriaControls(detailsID),
			bind(vdom.OnClick, cb.Toggle),
			vdom.Text(t.Expandable.Summary),
		),
		vdom.If(v.Expanded, vdom.Div(
			vdom.ID(detailsID),
			vdom.Class("toast-details"),
			vdom.Text(t.Expandable.Details),
		)),
	)
}

func (r *Renderer) progress(t toast.Toast) *vdom.VNode {
	p := *t.Progress
	pct := p.Percent()
	name := vdom.AriaLabel("Progress")
	if p.Label != "" {
		name = vdom.AriaLabelledBy(ProgressLabelID(t.ID))
	}
	return vdom.Div(vdom.Class("toast-progress"),
		vdom.Div(
			vdom.Class("toast-progress-track"),
			vdom.Role("progressbar"),
			name,
			vdom.AriaValueNow(pct),
			vdom.AriaValueMin(0),
			vdom.AriaValueMax(100),
			vdom.Div(vdom.Class("toast-progress-fill"), vdom.StyleAttr("width: "+formatPercent(pct)+"%")),
		),
		vdom.If(p.Label != "", vdom.Span(vdom.ID(ProgressLabelID(t.ID)), vdom.Class("toast-progress-label"), vdom.Text(p.Label))),
	)
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', -1, 64)
}

func (r *Renderer) countdown(t toast.Toast, v ToastView) *vdom.VNode {
	state := "running"
	if v.Paused {
		state = "paused"
	}
	style := fmt.Sprintf("animation-duration: %dms; animation-delay: -%dms; animation-play-state: %s",
		t.Duration.Milliseconds(), v.Elapsed.Milliseconds(), state)
	return vdom.Div(vdom.Class("toast-countdown"), vdom.AriaHidden(true), vdom.StyleAttr(style))
}

func (r *Renderer) actions(t toast.Toast, v ToastView, cb Callbacks) *vdom.VNode {
	var buttons []*vdom.VNode
	if t.Action != nil {
		buttons = append(buttons, vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-action"),
			hidKey(t, "action"),
			bind(vdom.OnClick, cb.Action),
			vdom.Text(t.Action.Label),
		))
	}
	if t.SecondaryAction != nil {
		buttons = append(buttons, vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-action", "toast-action-secondary"),
			hidKey(t, "secondary"),
			bind(vdom.OnClick, cb.SecondaryAction),
			vdom.Text(t.SecondaryAction.Label),
		))
	}
	if t.Copyable != nil {
		label := t.Copyable.Label
		if label == "" {
			label = "Copy"
		}
		text := label
		if v.CopyLabel != "" {
			text = v.CopyLabel
		}
		buttons = append(buttons, vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-copy"),
			vdom.ClassIf(v.CopyLabel == CopyFailedLabel, "toast-copy-failed"),
			hidKey(t, "copy"),
			vdom.AriaLabel(label+": "+t.Copyable.Text),
			bind(vdom.OnClick, cb.Copy),
			vdom.Text(text),
		))
	}
	if t.Dismissible {
		buttons = append(buttons, vdom.Button(
			vdom.Type("button"),
			vdom.Class("toast-close"),
			hidKey(t, "close"),
			vdom.AriaLabel("Dismiss notification"),
			bind(vdom.OnClick, cb.Dismiss),
			vdom.Span(vdom.AriaHidden(true), vdom.Text("×")),
		))
	}
	if len(buttons) == 0 {
		return nil
	}
	return vdom.Div(vdom.Class("toast-actions"), buttons)
}

// effectAttrs runs every effect under a recover guard. Failures are logged
// and counted; the toast renders without that effect.
func (r *Renderer) effectAttrs(t toast.Toast) []vdom.Attr {
	var out []vdom.Attr
	for i, e := range r.effects {
		attrs, err := runEffect(e, t)
		if err != nil {
			r.recorder.EffectFailed()
			r.logger.Error().
				Err(errors.FromError(err, errors.CodeEffectFailed)).
				Str("toast_id", t.ID).
				Int("effect", i).
				Msg("toast effect failed")
			continue
		}
		out = append(out, attrs...)
	}
	return out
}
