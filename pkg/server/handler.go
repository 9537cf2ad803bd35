package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

// Handler is the internal event handler function type.
// It receives a decoded event and processes it.
type Handler func(event *Event)

// Event represents a decoded event from the client with runtime context.
type Event struct {
	// Type is the DOM event name (click, keydown, touchend, ...).
	Type string

	// HID is the hydration ID of the target element.
	HID string

	// Payload is the raw event data sent by the client.
	Payload json.RawMessage

	// Time is when the event was received by the server.
	Time time.Time
}

// key returns the handler registry key, e.g. "h1_onclick".
func (e *Event) key() string {
	return e.HID + "_on" + e.Type
}

// keyboardPayload is the wire form of a keydown.
type keyboardPayload struct {
	Key      string `json:"key"`
	CtrlKey  bool   `json:"ctrlKey"`
	ShiftKey bool   `json:"shiftKey"`
	AltKey   bool   `json:"altKey"`
	MetaKey  bool   `json:"metaKey"`
}

// touchPointPayload is the wire form of a single touch point.
type touchPointPayload struct {
	ID      int     `json:"id"`
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// touchPayload is the wire form of a touchstart or touchend.
type touchPayload struct {
	Touches        []touchPointPayload `json:"touches"`
	ChangedTouches []touchPointPayload `json:"changedTouches"`
}

func touchPoints(in []touchPointPayload) []toastui.TouchPoint {
	if len(in) == 0 {
		return nil
	}
	out := make([]toastui.TouchPoint, len(in))
	for i, p := range in {
		out[i] = toastui.TouchPoint{ID: p.ID, ClientX: p.ClientX, ClientY: p.ClientY}
	}
	return out
}

// wrapHandler converts a handler collected by the renderer to the internal
// Handler type. It supports the signatures the toast renderer binds.
func wrapHandler(value any, logger zerolog.Logger) Handler {
	switch h := value.(type) {
	// Click, pointer and focus handlers - no arguments
	case func():
		return func(e *Event) { h() }

	case func(*Event):
		return h

	// Keyboard event handler
	case func(toastui.KeyboardEvent):
		return func(e *Event) {
			var data keyboardPayload
			if err := json.Unmarshal(e.Payload, &data); err != nil {
				logger.Warn().Err(err).Str("hid", e.HID).Msg("malformed keyboard payload")
				return
			}
			h(toastui.KeyboardEvent{
				Key:      data.Key,
				CtrlKey:  data.CtrlKey,
				ShiftKey: data.ShiftKey,
				AltKey:   data.AltKey,
				MetaKey:  data.MetaKey,
			})
		}

	// Touch event handler
	case func(toastui.TouchEvent):
		return func(e *Event) {
			var data touchPayload
			if err := json.Unmarshal(e.Payload, &data); err != nil {
				logger.Warn().Err(err).Str("hid", e.HID).Msg("malformed touch payload")
				return
			}
			h(toastui.TouchEvent{
				Touches:        touchPoints(data.Touches),
				ChangedTouches: touchPoints(data.ChangedTouches),
			})
		}

	default:
		logger.Warn().Str("type", fmt.Sprintf("%T", value)).Msg("unrecognized handler type, handler will not be called")
		return func(e *Event) {}
	}
}
