// Package middleware provides the observability layer around the toast store.
//
// This package includes:
//   - Prometheus metrics fed by a store subscription and recorder hooks
//   - An OpenTelemetry decorator that traces every Notifier operation
//
// # Prometheus Metrics
//
//	m := middleware.NewMetrics(middleware.WithRegistry(reg))
//	defer m.Observe(st)()
//
// Metrics exposed (with the default "toastkit" namespace):
//   - toastkit_toasts_shown_total{type}
//   - toastkit_toasts_dismissed_total{reason}
//   - toastkit_toasts_active
//   - toastkit_toast_lifetime_seconds{reason}
//   - toastkit_toast_clipboard_failures_total
//   - toastkit_toast_effect_failures_total
//   - toastkit_toast_ws_sessions
//
// Metrics also implements toastui.Recorder, so clipboard and effect
// failures the renderer absorbs are still counted.
//
// # OpenTelemetry
//
// Trace wraps a Notifier and starts a span per operation:
//
//	n := middleware.Trace(st, middleware.WithTracerName("toastd"))
//	toast.Success(n, "Saved")
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure the provider in main() before serving.
package middleware
