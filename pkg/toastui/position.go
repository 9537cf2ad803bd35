package toastui

import "fmt"

// Position is where the stack is anchored on screen. It only affects layout.
type Position string

const (
	TopRight     Position = "top-right"
	TopLeft      Position = "top-left"
	BottomRight  Position = "bottom-right"
	BottomLeft   Position = "bottom-left"
	TopCenter    Position = "top-center"
	BottomCenter Position = "bottom-center"
)

// Positions lists every valid position.
var Positions = []Position{TopRight, TopLeft, BottomRight, BottomLeft, TopCenter, BottomCenter}

// Valid reports whether p is a known position.
func (p Position) Valid() bool {
	for _, known := range Positions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePosition parses a position name. The empty string is TopRight.
func ParsePosition(s string) (Position, error) {
	if s == "" {
		return TopRight, nil
	}
	p := Position(s)
	if !p.Valid() {
		return "", fmt.Errorf("unknown toast position %q", s)
	}
	return p, nil
}
