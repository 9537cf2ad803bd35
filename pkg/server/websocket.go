package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/toastkit/internal/errors"
)

// Frame types. Frames are JSON text messages tagged by "type".
const (
	// Server to client.
	frameRender    = "render"
	frameClipboard = "clipboard"

	// Client to server.
	frameEvent           = "event"
	frameResize          = "resize"
	frameClipboardResult = "clipboard-result"
)

// inboundFrame is any frame sent by the client.
type inboundFrame struct {
	Type string `json:"type"`

	// event
	HID     string          `json:"hid,omitempty"`
	Event   string          `json:"event,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// resize
	Width int `json:"width,omitempty"`

	// clipboard-result
	ID    string `json:"id,omitempty"`
	OK    bool   `json:"ok,omitempty"`
	Error string `json:"error,omitempty"`
}

// renderFrame replaces the client's container markup.
type renderFrame struct {
	Type string `json:"type"`
	HTML string `json:"html"`
}

// clipboardFrame asks the client to write text to its clipboard.
type clipboardFrame struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Text string `json:"text"`
}

// HandleWebSocket upgrades the request and runs a session until the client
// goes away or the server shuts down.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.track() {
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(errors.New(errors.CodeUpgradeFailed).Wrap(err)).Msg("websocket upgrade failed")
		return
	}

	session := newSession(conn, s.src, s.containerConfig(), s.config.Session, s.logger)
	if !s.register(session) {
		session.container.Close()
		_ = conn.Close()
		return
	}
	defer s.unregister(session)

	if s.config.Recorder != nil {
		s.config.Recorder.SessionOpened()
		defer s.config.Recorder.SessionClosed()
	}

	session.logger.Debug().Str("remote", r.RemoteAddr).Msg("session opened")
	session.serve()
}

// readLoop continuously reads frames from the connection until it fails,
// then closes the session.
func (s *Session) readLoop() {
	defer close(s.readDone)
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Warn().Err(errors.New(errors.CodeClientGone).Wrap(err)).Msg("read error")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		var frame inboundFrame
		if err := json.Unmarshal(msg, &frame); err != nil {
			s.logger.Warn().Err(errors.New(errors.CodeBadRequest).Wrap(err)).Msg("frame decode error")
			continue
		}
		s.handleFrame(frame)
	}
}

// handleFrame routes a decoded frame. Events go to the event loop; resize and
// clipboard results are safe to apply from the read goroutine.
func (s *Session) handleFrame(frame inboundFrame) {
	switch frame.Type {
	case frameEvent:
		if frame.HID == "" || frame.Event == "" {
			s.logger.Warn().Msg("event frame without hid or event")
			return
		}
		_ = s.queueEvent(&Event{
			Type:    frame.Event,
			HID:     frame.HID,
			Payload: frame.Payload,
			Time:    time.Now(),
		})

	case frameResize:
		s.container.SetViewportWidth(frame.Width)

	case frameClipboardResult:
		s.resolveClipboard(frame.ID, clipboardResult{ok: frame.OK, err: frame.Error})

	default:
		s.logger.Warn().Str("type", frame.Type).Msg("unknown frame type")
	}
}
