package track

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Scheduler coalesces redraw requests.
//
// The first observer queued in a quiescent window posts one flush to the
// loop. Further writes before that flush runs only grow the pending set.
// The flush redraws every live pending observer exactly once.
type Scheduler struct {
	loop Loop

	// pending holds queued observers in arrival order.
	pending []Observer

	// queued deduplicates pending by observer ID.
	queued map[uint64]struct{}

	// inFlight is set while a posted flush has not started yet.
	inFlight bool

	logger  *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer
	graph   *Graph
}

// Enqueue adds observers to the pending set and schedules a flush if none
// is in flight. Observers already pending are ignored.
func (s *Scheduler) Enqueue(observers ...Observer) {
	added := 0
	for _, obs := range observers {
		if obs == nil {
			continue
		}
		id := obs.ID()
		if _, ok := s.queued[id]; ok {
			continue
		}
		s.queued[id] = struct{}{}
		s.pending = append(s.pending, obs)
		added++
	}
	if added == 0 {
		return
	}

	s.metrics.setPending(len(s.pending))
	if !s.inFlight {
		s.inFlight = true
		s.loop.Post(s.flush)
	}
}

// Pending returns the number of queued observers.
func (s *Scheduler) Pending() int {
	return len(s.pending)
}

// InFlight reports whether a flush has been posted and not yet started.
func (s *Scheduler) InFlight() bool {
	return s.inFlight
}

// FlushNow runs a flush synchronously. A flush already posted to the loop
// still runs later and finds nothing to do.
func (s *Scheduler) FlushNow() {
	s.flush()
}

// forget drops obs from the pending set.
func (s *Scheduler) forget(obs Observer) {
	if obs == nil {
		return
	}
	id := obs.ID()
	if _, ok := s.queued[id]; !ok {
		return
	}
	delete(s.queued, id)
	s.pending = slices.DeleteFunc(s.pending, func(p Observer) bool {
		return p.ID() == id
	})
	s.metrics.setPending(len(s.pending))
}

// flush redraws the current pending set.
// The set and the in-flight flag are reset before any redraw runs, so
// writes made by a redraw open a new window instead of extending this one.
func (s *Scheduler) flush() {
	batch := s.pending
	s.pending = nil
	clear(s.queued)
	s.inFlight = false

	if len(batch) == 0 {
		return
	}

	_, span := s.tracer.Start(context.Background(), "autotrack.flush",
		trace.WithAttributes(attribute.Int("autotrack.pending", len(batch))))
	defer span.End()

	start := time.Now()
	s.metrics.setPending(0)

	var redrawn, skipped, failed int
	for _, obs := range batch {
		if !obs.Alive() {
			skipped++
			s.logger.Debug("skipping redraw of dead observer", "observer", obs.ID())
			continue
		}
		if err := s.redraw(obs); err != nil {
			failed++
			span.RecordError(err)
			continue
		}
		redrawn++
	}

	s.metrics.flushed(time.Since(start), redrawn, skipped, failed)
	s.metrics.setEdges(s.graph.edges)

	span.SetAttributes(
		attribute.Int("autotrack.redrawn", redrawn),
		attribute.Int("autotrack.skipped", skipped),
	)
	if failed > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf("%d redraws panicked", failed))
	}
}

// redraw runs obs.Redraw with panic recovery so one failing observer does
// not abort the rest of the flush.
func (s *Scheduler) redraw(obs Observer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("redraw of observer %d panicked: %v", obs.ID(), r)
			s.logger.Error("redraw panic",
				"observer", obs.ID(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	obs.Redraw()
	return nil
}
