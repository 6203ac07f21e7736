// Package devserver serves a mounted component tree over HTTP.
//
// The page is rendered on the server; a small client applies the patches
// every redraw commits, streamed over a websocket, and sends DOM events
// back to the tree. The server also exposes the dependency graph, a write
// API for registered objects and Prometheus metrics.
//
// All access to the runtime goes through its EventLoop, so handlers run
// on the loop goroutine like every other render.
package devserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/snapshot"
	"github.com/vango-dev/autotrack/pkg/track"
)

// Config holds dev server configuration.
type Config struct {
	// Addr is the listen address. Default: "localhost:3000".
	Addr string

	// Title is the page title. Default: "autotrack".
	Title string

	// WriteTimeout bounds each websocket write. Default: 10 seconds.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown. Default: 5 seconds.
	ShutdownTimeout time.Duration

	// Gatherer serves /metrics. Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:3000"
	}
	if c.Title == "" {
		c.Title = "autotrack"
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 10 * time.Second
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5 * time.Second
	}
	if c.Gatherer == nil {
		c.Gatherer = prometheus.DefaultGatherer
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Server is the dev server.
type Server struct {
	config Config
	loop   *track.EventLoop
	rt     *track.Runtime
	hub    *Hub
	router chi.Router
	logger *slog.Logger

	// tree and objects are only touched on the loop goroutine.
	tree    *host.Tree
	objects map[string]*track.Object

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a server for rt, whose loop must be loop.
func New(rt *track.Runtime, loop *track.EventLoop, config Config) *Server {
	config.applyDefaults()
	logger := config.Logger.With("component", "devserver")

	s := &Server{
		config:  config,
		loop:    loop,
		rt:      rt,
		hub:     NewHub(logger, config.WriteTimeout),
		logger:  logger,
		objects: make(map[string]*track.Object),
	}
	s.hub.onEvent = s.handleEvent
	s.router = s.routes()
	return s
}

// Committer returns the committer trees served by s must be mounted with.
func (s *Server) Committer() host.Committer {
	return s.hub
}

// Attach serves tree. It must be called on the loop goroutine.
func (s *Server) Attach(tree *host.Tree) {
	s.tree = tree
}

// Register exposes o to the write API under its name. It must be called
// on the loop goroutine.
func (s *Server) Register(objects ...*track.Object) {
	for _, o := range objects {
		s.objects[o.Name()] = o
	}
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	r.Get("/ws", s.hub.HandleWebSocket)
	r.Get("/debug/graph", s.handleGraph)
	r.Post("/api/objects/{name}/{key}", s.handleWrite)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.config.Gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok"))
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// handlePage renders the current tree into the page shell.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	var body string
	var renderErr error
	err := s.loop.Call(r.Context(), func() {
		if s.tree == nil || s.tree.Unmounted() {
			renderErr = errors.New("E004")
			return
		}
		body, renderErr = s.tree.HTML()
	})
	if err == nil {
		err = renderErr
	}
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.FromError(err, "E004"))
		return
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, pageData{
		Title: s.config.Title,
		Body:  template.HTML(body),
	}); err != nil {
		s.logger.Error("page template", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// handleGraph returns a snapshot of the dependency graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	var snap *snapshot.Snapshot
	if err := s.loop.Call(r.Context(), func() {
		snap = snapshot.Capture(s.rt)
	}); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.FromError(err, "E141"))
		return
	}

	data, err := snapshot.Encode(snap)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, errors.FromError(err, "E200"))
		return
	}
	w.Header().Set("Content-Type", snapshot.ContentType)
	w.Write(data)
}

// handleWrite sets one property of a registered object to the JSON value
// in the request body.
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	key := chi.URLParam(r, "key")

	value, err := decodeValue(w, r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.New("E061").Wrap(err))
		return
	}

	found := false
	if err := s.loop.Call(r.Context(), func() {
		o, ok := s.objects[name]
		if !ok {
			return
		}
		found = true
		o.Set(key, value)
	}); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, errors.FromError(err, "E141"))
		return
	}
	if !found {
		s.writeError(w, http.StatusNotFound, errors.New("E062").WithDetailf("no object named %q", name))
		return
	}

	s.logger.Debug("property written", "object", name, "key", key)
	w.WriteHeader(http.StatusNoContent)
}

// decodeValue reads a single JSON value. Integral numbers decode as int.
func decodeValue(w http.ResponseWriter, r *http.Request) (any, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("body must contain a single JSON value")
	}

	if n, ok := value.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return int(i), nil
		}
		f, err := n.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	}
	return value, nil
}

// handleEvent dispatches a browser event on the loop goroutine.
func (s *Server) handleEvent(c *client, ev Event) {
	var dispatchErr error
	err := s.loop.Call(context.Background(), func() {
		if s.tree == nil {
			dispatchErr = errors.New("E004")
			return
		}
		dispatchErr = s.tree.Dispatch(ev.HID, ev.Event, ev.Value)
	})
	if err == nil {
		err = dispatchErr
	}
	if err != nil {
		coded := errors.FromError(err, "E003")
		s.logger.Debug("event failed", "hid", ev.HID, "event", ev.Event, "error", err)
		s.hub.send(c, Frame{Type: FrameError, Code: coded.Code, Error: coded.Error()})
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err *errors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(err.FormatJSON()))
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return errors.New("E141").Wrap(err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes websocket clients and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.hub.Close()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
