package toast

import "time"

// Notifier is the narrow surface producers and the renderer depend on.
// *store.Store implements it.
type Notifier interface {
	Show(in Input) (string, error)
	Dismiss(id string)
	ClearAll()
	Pause(id string)
	Resume(id string)
}

// Option configures an Input built by the producer helpers.
type Option func(*Input)

// WithTitle sets the toast heading.
func WithTitle(title string) Option {
	return func(in *Input) { in.Title = title }
}

// WithID sets the toast id. Reusing an active id replaces that toast.
func WithID(id string) Option {
	return func(in *Input) { in.ID = id }
}

// WithDuration overrides the store's default auto-dismiss duration.
func WithDuration(d time.Duration) Option {
	return func(in *Input) { in.Duration = d }
}

// Persistent disables auto-dismiss.
func Persistent() Option {
	return func(in *Input) { in.Persistent = true }
}

// NotDismissible removes every manual dismissal affordance.
func NotDismissible() Option {
	return func(in *Input) {
		f := false
		in.Dismissible = &f
	}
}

// WithAction adds the primary action button.
func WithAction(label string, onClick func()) Option {
	return func(in *Input) { in.Action = &Action{Label: label, OnClick: onClick} }
}

// WithSecondaryAction adds the secondary action button.
func WithSecondaryAction(label string, onClick func()) Option {
	return func(in *Input) { in.SecondaryAction = &Action{Label: label, OnClick: onClick} }
}

// WithProgress attaches a determinate progress bar.
func WithProgress(current, total float64, label string) Option {
	return func(in *Input) { in.Progress = &Progress{Current: current, Total: total, Label: label} }
}

// WithExpandable attaches a collapsible details region.
func WithExpandable(summary, details string) Option {
	return func(in *Input) { in.Expandable = &Expandable{Summary: summary, Details: details} }
}

// WithCopyable attaches a copy-to-clipboard button.
func WithCopyable(text, label string) Option {
	return func(in *Input) { in.Copyable = &Copyable{Text: text, Label: label} }
}

// Show builds an Input of the given type and hands it to n.
func Show(n Notifier, level Type, message string, opts ...Option) (string, error) {
	in := Input{Type: level, Message: message}
	for _, opt := range opts {
		opt(&in)
	}
	return n.Show(in)
}

// Success shows a success toast.
//
//	toast.Success(n, "Reservation confirmed")
func Success(n Notifier, message string, opts ...Option) (string, error) {
	return Show(n, TypeSuccess, message, opts...)
}

// Error shows an error toast.
//
//	toast.Error(n, "Payment declined", toast.WithTitle("Checkout"))
func Error(n Notifier, message string, opts ...Option) (string, error) {
	return Show(n, TypeError, message, opts...)
}

// Warning shows a warning toast.
//
//	toast.Warning(n, "Room 12 is overbooked")
func Warning(n Notifier, message string, opts ...Option) (string, error) {
	return Show(n, TypeWarning, message, opts...)
}

// Info shows an info toast.
//
//	toast.Info(n, "New order received")
func Info(n Notifier, message string, opts ...Option) (string, error) {
	return Show(n, TypeInfo, message, opts...)
}

// Loading shows a persistent info toast with a spinner and returns its id.
func Loading(n Notifier, message string, opts ...Option) (string, error) {
	opts = append([]Option{func(in *Input) { in.Loading = true }}, opts...)
	return Show(n, TypeInfo, message, opts...)
}

// Clear removes every active toast.
func Clear(n Notifier) {
	n.ClearAll()
}
