package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

// SessionConfig holds configuration for individual WebSocket sessions.
type SessionConfig struct {
	// ReadTimeout is the maximum time to wait for a message or pong from the
	// client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the inbound event buffer.
	// Default: 64.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024,
		MaxEventQueue:     64,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	d := DefaultSessionConfig()
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 {
		c.HeartbeatInterval = d.HeartbeatInterval
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.MaxEventQueue <= 0 {
		c.MaxEventQueue = d.MaxEventQueue
	}
	return c
}

// Recorder receives the counters the server feeds. *middleware.Metrics
// implements it.
type Recorder interface {
	toastui.Recorder
	SessionOpened()
	SessionClosed()
}

// Config configures a Server.
type Config struct {
	// Address is the host:port to listen on.
	// Default: "localhost:7300".
	Address string

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// AllowedOrigins lists the Origin values accepted on WebSocket upgrade.
	// "*" accepts any origin. Empty means same-origin only.
	AllowedOrigins []string

	// Title is the page title of GET /.
	// Default: "Notifications".
	Title string

	// Session configures each WebSocket session.
	Session SessionConfig

	// Container is the template for every per-client container. Clipboard,
	// Recorder and Logger are filled in by the server.
	Container toastui.Config

	// Notifier routes producer and user operations. Defaults to the store;
	// set it to a decorator such as middleware.Trace.
	Notifier toast.Notifier

	// Recorder counts sessions and absorbed failures. Optional.
	Recorder Recorder

	// Gatherer backs GET /metrics.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Middleware wraps every route, after the built-in stack.
	Middleware []func(http.Handler) http.Handler

	Logger zerolog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:7300",
		ShutdownTimeout: 10 * time.Second,
		Title:           "Notifications",
		Session:         DefaultSessionConfig(),
		Gatherer:        prometheus.DefaultGatherer,
		Logger:          zerolog.Nop(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.Title == "" {
		c.Title = d.Title
	}
	if c.Gatherer == nil {
		c.Gatherer = d.Gatherer
	}
	c.Session = c.Session.withDefaults()
	return c
}
