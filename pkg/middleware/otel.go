package middleware

import (
	"context"

	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/store"
	"github.com/vango-dev/toastkit/pkg/toast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for toastkit.
const defaultTracerName = "toastkit"

// Span attribute keys.
const (
	AttrToastID   = attribute.Key("toast.id")
	AttrToastType = attribute.Key("toast.type")
	AttrReason    = attribute.Key("toast.reason")
	AttrErrorCode = attribute.Key("toast.error_code")
)

// OTelConfig configures the OpenTelemetry decorator.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "toastkit").
	TracerName string

	// Provider supplies the tracer (default: otel.GetTracerProvider()).
	Provider trace.TracerProvider
}

// OTelOption configures the OpenTelemetry decorator.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.Provider = tp
	}
}

// TracedNotifier is a toast.Notifier that records a span per operation
// before delegating.
type TracedNotifier struct {
	next   toast.Notifier
	tracer trace.Tracer
}

var _ toast.Notifier = (*TracedNotifier)(nil)

// Trace wraps next with OpenTelemetry spans.
func Trace(next toast.Notifier, opts ...OTelOption) *TracedNotifier {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &TracedNotifier{
		next:   next,
		tracer: config.Provider.Tracer(config.TracerName),
	}
}

func (n *TracedNotifier) start(name string, attrs ...attribute.KeyValue) trace.Span {
	_, span := n.tracer.Start(context.Background(), name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return span
}

// Show implements toast.Notifier.
func (n *TracedNotifier) Show(in toast.Input) (string, error) {
	typ := in.Type
	if typ == "" {
		typ = toast.TypeInfo
	}
	span := n.start("toast.show", AttrToastType.String(string(typ)))
	defer span.End()

	id, err := n.next.Show(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if code := errors.CodeOf(err); code != "" {
			span.SetAttributes(AttrErrorCode.String(code))
		}
		return "", err
	}
	span.SetAttributes(AttrToastID.String(id))
	span.SetStatus(codes.Ok, "")
	return id, nil
}

// Dismiss implements toast.Notifier.
func (n *TracedNotifier) Dismiss(id string) {
	span := n.start("toast.dismiss", AttrToastID.String(id))
	defer span.End()
	n.next.Dismiss(id)
}

// DismissWithReason forwards the reason when the wrapped notifier records
// one, and falls back to Dismiss otherwise.
func (n *TracedNotifier) DismissWithReason(id string, reason store.Reason) bool {
	span := n.start("toast.dismiss", AttrToastID.String(id), AttrReason.String(string(reason)))
	defer span.End()

	if d, ok := n.next.(interface {
		DismissWithReason(string, store.Reason) bool
	}); ok {
		removed := d.DismissWithReason(id, reason)
		span.SetAttributes(attribute.Bool("toast.removed", removed))
		return removed
	}
	n.next.Dismiss(id)
	return true
}

// ClearAll implements toast.Notifier.
func (n *TracedNotifier) ClearAll() {
	span := n.start("toast.clear_all")
	defer span.End()
	n.next.ClearAll()
}

// Pause implements toast.Notifier.
func (n *TracedNotifier) Pause(id string) {
	span := n.start("toast.pause", AttrToastID.String(id))
	defer span.End()
	n.next.Pause(id)
}

// Resume implements toast.Notifier.
func (n *TracedNotifier) Resume(id string) {
	span := n.start("toast.resume", AttrToastID.String(id))
	defer span.End()
	n.next.Resume(id)
}
