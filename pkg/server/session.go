package server

import (
	"encoding/json"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/render"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

// Session is one connected browser. It owns a container and a renderer;
// handlers run only on the session's event loop.
type Session struct {
	// ID is a unique identifier for this session.
	ID string

	conn      *websocket.Conn
	config    SessionConfig
	container *toastui.Container
	renderer  *render.Renderer
	logger    zerolog.Logger

	// writeMu serializes frame writes; gorilla allows one concurrent writer.
	writeMu sync.Mutex

	events   chan *Event
	renderCh chan struct{}
	done     chan struct{}
	readDone chan struct{}
	once     sync.Once

	pendingMu sync.Mutex
	pending   map[string]chan clipboardResult

	lastHTML   string
	eventCount int
}

// newSession creates a session for conn. The container is built from tmpl
// with the session's browser clipboard.
func newSession(conn *websocket.Conn, src toastui.Source, tmpl toastui.Config, config SessionConfig, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	s := &Session{
		ID:       id,
		conn:     conn,
		config:   config,
		renderer: render.NewRenderer(render.RendererConfig{}),
		logger:   logger.With().Str("session_id", id).Logger(),
		events:   make(chan *Event, config.MaxEventQueue),
		renderCh: make(chan struct{}, 1),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
		pending:  make(map[string]chan clipboardResult),
	}

	tmpl.Clipboard = browserClipboard{session: s}
	tmpl.Logger = s.logger
	s.container = toastui.NewContainer(src, tmpl)
	s.container.OnChange(s.scheduleRender)
	return s
}

// serve runs the session until the client disconnects or Close is called.
func (s *Session) serve() {
	go s.readLoop()
	s.eventLoop()
	s.Close()

	s.container.Close()
	s.writeMu.Lock()
	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	s.writeMu.Unlock()
	_ = s.conn.Close()
	<-s.readDone

	s.logger.Debug().Int("events", s.eventCount).Msg("session closed")
}

// Close stops the session. It is safe to call from any goroutine.
func (s *Session) Close() {
	s.once.Do(func() { close(s.done) })
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Container returns the session's toast container.
func (s *Session) Container() *toastui.Container {
	return s.container
}

// queueEvent hands an event to the event loop.
func (s *Session) queueEvent(event *Event) error {
	select {
	case s.events <- event:
		return nil
	case <-s.done:
		return ErrSessionClosed
	default:
		s.logger.Warn().Str("hid", event.HID).Msg("event queue full, dropping event")
		return ErrEventQueueFull
	}
}

// scheduleRender asks the event loop for a render. It never blocks.
func (s *Session) scheduleRender() {
	select {
	case s.renderCh <- struct{}{}:
	default:
	}
}

// eventLoop processes queued events and render requests.
func (s *Session) eventLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	s.render()
	for {
		select {
		case event := <-s.events:
			s.handleEvent(event)

		case <-s.renderCh:
			s.render()

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug().Err(err).Msg("ping failed")
				return
			}

		case <-s.done:
			return
		}
	}
}

// handleEvent dispatches an event to the handler the last render bound to
// its HID. Handlers that change state trigger a render through OnChange.
func (s *Session) handleEvent(event *Event) {
	s.eventCount++

	value, ok := s.renderer.Handlers()[event.key()]
	if !ok {
		s.logger.Warn().Str("hid", event.HID).Str("type", event.Type).Msg("handler not found")
		return
	}
	s.safeExecute(wrapHandler(value, s.logger), event)
}

// safeExecute runs a handler with panic recovery.
func (s *Session) safeExecute(handler Handler, event *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Interface("panic", r).
				Str("hid", event.HID).
				Str("type", event.Type).
				Bytes("stack", debug.Stack()).
				Msg("handler panic")
		}
	}()

	handler(event)
}

// render rebuilds the container and sends it when the HTML changed.
func (s *Session) render() {
	s.renderer.Reset()
	html, err := s.renderer.RenderToString(s.container.Render())
	if err != nil {
		s.logger.Error().Err(err).Msg("render failed")
		return
	}
	if html == s.lastHTML {
		return
	}
	if err := s.writeFrame(renderFrame{Type: frameRender, HTML: html}); err != nil {
		s.logger.Debug().Err(err).Msg("render write failed")
		s.Close()
		return
	}
	s.lastHTML = html
}

// writeFrame sends v as a JSON text frame.
func (s *Session) writeFrame(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}
