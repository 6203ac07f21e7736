package track

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// defaultTracerName is the tracer used when WithTracer is not given.
const defaultTracerName = "autotrack"

// Runtime ties together the dependency graph, the render coordinator and
// the batched scheduler.
//
// A Runtime is confined to the goroutine that runs its Loop.
type Runtime struct {
	graph   *Graph
	sched   *Scheduler
	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	// depth counts renders in progress. It is zero between renders.
	depth int
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.logger = logger
		}
	}
}

// WithMetrics sets the Prometheus metrics sink. Metrics are disabled by default.
func WithMetrics(m *Metrics) Option {
	return func(rt *Runtime) {
		rt.metrics = m
	}
}

// WithTracer sets the OpenTelemetry tracer used for flush spans.
func WithTracer(t trace.Tracer) Option {
	return func(rt *Runtime) {
		if t != nil {
			rt.tracer = t
		}
	}
}

// New creates a Runtime whose flushes are posted to loop.
// A nil loop gets a manual Queue.
func New(loop Loop, opts ...Option) *Runtime {
	if loop == nil {
		loop = NewQueue()
	}

	rt := &Runtime{
		graph:  NewGraph(),
		logger: slog.Default().With("component", "track"),
		tracer: otel.Tracer(defaultTracerName),
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.sched = &Scheduler{
		loop:    loop,
		queued:  make(map[uint64]struct{}),
		logger:  rt.logger,
		metrics: rt.metrics,
		tracer:  rt.tracer,
		graph:   rt.graph,
	}
	return rt
}

// NewObject creates a property-bag object seeded with a copy of initial.
func (rt *Runtime) NewObject(name string, initial map[string]any) *Object {
	bag := make(bagStore, len(initial))
	for k, v := range initial {
		bag[k] = v
	}
	return rt.newObject(name, bag)
}

// Observe wraps an existing value for tracking.
//
// A map[string]any is used in place: writes are visible in the caller's
// map. A pointer to a struct exposes its exported fields as keys. Any
// other target yields an empty property bag.
func (rt *Runtime) Observe(name string, target any) *Object {
	s, ok := newStore(target)
	if !ok {
		rt.logger.Debug("unsupported observe target, using empty object", "object", name)
	}
	return rt.newObject(name, s)
}

func (rt *Runtime) newObject(name string, s store) *Object {
	return &Object{
		id:    NextID(),
		name:  name,
		rt:    rt,
		store: s,
	}
}

// Render runs one render cycle of obs.
//
// The observer's previous dependencies are removed first, so the edges
// left after fn returns are exactly the properties read during this
// render. The scope passed to fn is closed on every exit path, including
// a panic in fn, which is re-raised after the scope is closed.
//
// A panicking render keeps the edges it read and regains the ones it held
// before, so the observer still redraws on writes that its last good
// output depends on.
func (rt *Runtime) Render(obs Observer, fn func(s *Scope)) {
	prev := rt.graph.Dependencies(obs)
	rt.unlink(obs)

	s := &Scope{rt: rt, observer: obs, active: true}
	rt.depth++
	defer func() {
		s.active = false
		rt.depth--
		if r := recover(); r != nil {
			if obs != nil && obs.Alive() {
				for _, e := range prev {
					rt.graph.Link(e.Object, e.Key, obs)
				}
			}
			rt.metrics.setEdges(rt.graph.edges)
			panic(r)
		}
		rt.metrics.setEdges(rt.graph.edges)
	}()

	fn(s)
}

// Resume runs fn with s re-activated.
//
// Function components are invoked by the host after the element that
// wraps them was created, possibly after the creating render returned.
// Resume restores the captured scope for the duration of fn so the
// function's reads are still attributed to the enclosing observer. If s is
// already active, fn runs unchanged; a nil scope runs fn untracked.
func (rt *Runtime) Resume(s *Scope, fn func(s *Scope)) {
	if s == nil || s.active {
		fn(s)
		return
	}

	s.active = true
	rt.depth++
	defer func() {
		s.active = false
		rt.depth--
		rt.metrics.setEdges(rt.graph.edges)
	}()

	fn(s)
}

// Release removes every edge of obs and drops it from the pending set.
// Hosts call it when an observer is permanently destroyed.
func (rt *Runtime) Release(obs Observer) int {
	n := rt.unlink(obs)
	rt.sched.forget(obs)
	rt.metrics.setEdges(rt.graph.edges)
	return n
}

// Rendering reports whether any render is in progress.
func (rt *Runtime) Rendering() bool {
	return rt.depth > 0
}

// Graph returns the dependency graph.
func (rt *Runtime) Graph() *Graph {
	return rt.graph
}

// Scheduler returns the batched update scheduler.
func (rt *Runtime) Scheduler() *Scheduler {
	return rt.sched
}

// Flush redraws all pending observers immediately instead of waiting for
// the posted flush.
func (rt *Runtime) Flush() {
	rt.sched.FlushNow()
}

// Logger returns the runtime logger.
func (rt *Runtime) Logger() *slog.Logger {
	return rt.logger
}

// Tracer returns the runtime tracer.
func (rt *Runtime) Tracer() trace.Tracer {
	return rt.tracer
}

func (rt *Runtime) unlink(obs Observer) int {
	n := rt.graph.Unlink(obs)
	if n > 0 {
		rt.metrics.unlinked(n)
	}
	return n
}

// invalidate queues every current reader of (o, key).
func (rt *Runtime) invalidate(o *Object, key string) {
	rt.metrics.wrote()
	readers := rt.graph.Observers(o, key)
	if len(readers) == 0 {
		return
	}
	rt.sched.Enqueue(readers...)
}
