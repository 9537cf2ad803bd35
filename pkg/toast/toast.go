package toast

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vango-dev/toastkit/internal/errors"
)

// Type represents the toast notification type.
type Type string

const (
	TypeSuccess Type = "success"
	TypeError   Type = "error"
	TypeWarning Type = "warning"
	TypeInfo    Type = "info"
)

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeSuccess, TypeError, TypeWarning, TypeInfo:
		return true
	default:
		return false
	}
}

// ParseType parses a type name. The empty string parses as TypeInfo.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return TypeInfo, nil
	}
	if !t.Valid() {
		return "", errors.New(errors.CodeUnknownType).Wrap(fmt.Errorf("got %q", s))
	}
	return t, nil
}

// Action is a labeled button rendered inside a toast.
// Clicking it calls OnClick; it never dismisses the toast by itself.
type Action struct {
	Label   string
	OnClick func()
}

// Progress drives a determinate progress bar.
type Progress struct {
	Current float64
	Total   float64
	Label   string
}

// Percent returns Current/Total as a percentage clamped to [0, 100].
func (p Progress) Percent() float64 {
	if p.Total <= 0 {
		return 0
	}
	pct := p.Current / p.Total * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return pct
	}
}

// Expandable is a summary line with a details region toggled by the user.
type Expandable struct {
	Summary string
	Details string
}

// Copyable is text the user can copy to the system clipboard.
type Copyable struct {
	Text  string
	Label string
}

// Toast is a single active notification.
type Toast struct {
	ID              string
	Type            Type
	Message         string
	Title           string
	Dismissible     bool
	Duration        time.Duration
	Persistent      bool
	Loading         bool
	Action          *Action
	SecondaryAction *Action
	Progress        *Progress
	Expandable      *Expandable
	Copyable        *Copyable
	CreatedAt       time.Time
}

// AutoDismiss reports whether the toast should be dismissed by a timer.
func (t Toast) AutoDismiss() bool {
	return t.Duration > 0 && !t.Persistent && !t.Loading
}

// Announcement is the text read out by assistive technology.
func (t Toast) Announcement() string {
	var b strings.Builder
	b.WriteString(string(t.Type))
	b.WriteString(" notification: ")
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteString(". ")
	}
	b.WriteString(t.Message)
	return b.String()
}

// Defaults are the values applied by Input.Build when the caller leaves a
// field unset.
type Defaults struct {
	DefaultDuration time.Duration
	Now             func() time.Time
}

// Input is what a producer hands to Notifier.Show.
type Input struct {
	ID              string
	Type            Type
	Message         string
	Title           string
	Dismissible     *bool
	Duration        time.Duration
	Persistent      bool
	Loading         bool
	Action          *Action
	SecondaryAction *Action
	Progress        *Progress
	Expandable      *Expandable
	Copyable        *Copyable
}

// Build validates the input and turns it into a Toast.
func (in Input) Build(d Defaults) (Toast, error) {
	if strings.TrimSpace(in.Message) == "" {
		return Toast{}, errors.New(errors.CodeEmptyMessage)
	}

	typ := in.Type
	if typ == "" {
		typ = TypeInfo
	}
	if !typ.Valid() {
		return Toast{}, errors.New(errors.CodeUnknownType).Wrap(fmt.Errorf("got %q", in.Type))
	}

	if in.Duration < 0 {
		return Toast{}, errors.New(errors.CodeNegativeDuration)
	}
	if in.Progress != nil {
		if in.Duration > 0 {
			return Toast{}, errors.New(errors.CodeProgressWithDuration)
		}
		if in.Progress.Total <= 0 {
			return Toast{}, errors.New(errors.CodeInvalidProgress)
		}
	}

	t := Toast{
		ID:              in.ID,
		Type:            typ,
		Message:         in.Message,
		Title:           in.Title,
		Dismissible:     true,
		Duration:        in.Duration,
		Persistent:      in.Persistent,
		Loading:         in.Loading,
		Action:          in.Action,
		SecondaryAction: in.SecondaryAction,
		Progress:        in.Progress,
		Expandable:      in.Expandable,
		Copyable:        in.Copyable,
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if in.Dismissible != nil {
		t.Dismissible = *in.Dismissible
	}
	if t.Duration == 0 && !t.Persistent && !t.Loading && t.Progress == nil {
		t.Duration = d.DefaultDuration
	}
	if d.Now != nil {
		t.CreatedAt = d.Now()
	} else {
		t.CreatedAt = time.Now()
	}

	return t, nil
}
