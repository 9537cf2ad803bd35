package toastui

// KeyboardEvent is a keydown delivered from the browser.
type KeyboardEvent struct {
	Key      string
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool
}

// TouchPoint represents a single touch point.
type TouchPoint struct {
	ID      int
	ClientX float64
	ClientY float64
}

// TouchEvent is a touchstart or touchend. On touchend the lifted finger is
// only present in ChangedTouches.
type TouchEvent struct {
	Touches        []TouchPoint
	ChangedTouches []TouchPoint
}

// first returns the first touch point, preferring changed touches.
func (e TouchEvent) first() (TouchPoint, bool) {
	if len(e.ChangedTouches) > 0 {
		return e.ChangedTouches[0], true
	}
	if len(e.Touches) > 0 {
		return e.Touches[0], true
	}
	return TouchPoint{}, false
}
