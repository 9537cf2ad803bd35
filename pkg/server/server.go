package server

import (
	"bytes"
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/pkg/render"
	"github.com/vango-dev/toastkit/pkg/toast"
	"github.com/vango-dev/toastkit/pkg/toastui"
)

// Store is the toast state the server serves. *store.Store implements it.
type Store interface {
	toastui.Source
	Get(id string) (toast.Toast, bool)
	Len() int
}

// Server is the HTTP/WebSocket delivery server for the toast stack.
type Server struct {
	src      Store
	notifier toast.Notifier
	config   Config
	router   chi.Router
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	mu         sync.Mutex
	sessions   map[*Session]struct{}
	closing    bool
	httpServer *http.Server

	// wg tracks WebSocket handlers, which outlive http.Server.Shutdown
	// because their connections are hijacked.
	wg sync.WaitGroup
}

// New creates a Server for src.
func New(src Store, config Config) *Server {
	config = config.withDefaults()
	if config.Notifier == nil {
		config.Notifier = src
	}

	s := &Server{
		src:      src,
		notifier: config.Notifier,
		config:   config,
		logger:   config.Logger.With().Str("component", "server").Logger(),
		sessions: make(map[*Session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     checkOrigin(config.AllowedOrigins),
	}
	s.router = s.routes()
	return s
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(s.logger))
	r.Use(middleware.Recoverer)
	for _, mw := range s.config.Middleware {
		r.Use(mw)
	}

	r.Get("/", s.handlePage)
	r.Get("/ws", s.HandleWebSocket)
	r.Method(http.MethodGet, ThinClientPath, thinClientAsset)
	r.Method(http.MethodHead, ThinClientPath, thinClientAsset)
	r.Method(http.MethodGet, StylesheetPath, stylesheetAsset)
	r.Method(http.MethodHead, StylesheetPath, stylesheetAsset)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/toasts", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Delete("/", s.handleClear)
		r.Delete("/{id}", s.handleDismiss)
		r.Post("/{id}/pause", s.handlePause)
		r.Post("/{id}/resume", s.handleResume)
	})
	return r
}

// Handler returns the server's http.Handler for mounting in another router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the number of connected WebSocket sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// containerConfig returns the per-session container template.
func (s *Server) containerConfig() toastui.Config {
	cfg := s.config.Container
	cfg.Notifier = s.notifier
	if s.config.Recorder != nil {
		cfg.Recorder = s.config.Recorder
	}
	return cfg
}

// handlePage renders the full page with the current stack.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	cfg := s.containerConfig()
	cfg.Logger = s.logger
	c := toastui.NewContainer(s.src, cfg)
	defer c.Close()

	var buf bytes.Buffer
	err := render.NewRenderer(render.RendererConfig{}).RenderPage(&buf, render.PageData{
		Body:         c.Render(),
		Title:        s.config.Title,
		Styles:       []string{string(stylesheet)},
		ClientScript: ThinClientPath,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("page render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"toasts":   s.src.Len(),
		"sessions": s.Sessions(),
	})
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", ln.Addr().String()).Msg("server starting")
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info().Msg("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and gracefully shuts down the HTTP server,
// bounded by ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	s.closing = true
	srv := s.httpServer
	for session := range s.sessions {
		session.Close()
	}
	s.mu.Unlock()

	var err error
	if srv != nil {
		if err = srv.Shutdown(ctx); err != nil {
			s.logger.Error().Err(err).Msg("shutdown error")
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		if err == nil {
			err = ctx.Err()
		}
		s.logger.Error().Err(err).Msg("sessions did not finish before shutdown timeout")
		return err
	}

	s.logger.Info().Msg("server shutdown complete")
	return err
}

// track registers a WebSocket handler with the shutdown wait group.
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *Server) register(session *Session) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.sessions[session] = struct{}{}
	return true
}

func (s *Server) unregister(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session)
	s.mu.Unlock()
}

// checkOrigin returns the upgrader origin check for allowed. An empty list
// keeps gorilla's same-origin default.
func checkOrigin(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// accessLog logs one line per request with the chi request id.
func accessLog(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Debug().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", ww.Status()).
					Int("bytes", ww.BytesWritten()).
					Dur("duration", time.Since(start)).
					Msg("request")
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
