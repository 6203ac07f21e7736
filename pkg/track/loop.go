package track

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
)

// Loop defers work to a later turn of a single-threaded event loop.
type Loop interface {
	// Post schedules fn to run after the current synchronous work.
	Post(fn func())
}

// =============================================================================
// Queue
// =============================================================================

// Queue is a manually driven Loop. Tests and the CLI use it to decide
// exactly when a posted flush runs.
type Queue struct {
	tasks []func()
}

// NewQueue creates an empty Queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Post implements Loop.
func (q *Queue) Post(fn func()) {
	if fn != nil {
		q.tasks = append(q.tasks, fn)
	}
}

// Len returns the number of tasks waiting.
func (q *Queue) Len() int {
	return len(q.tasks)
}

// Step runs the tasks queued at call time, which is one loop turn.
// Tasks posted while stepping wait for the next call.
func (q *Queue) Step() int {
	tasks := q.tasks
	q.tasks = nil
	for _, fn := range tasks {
		fn()
	}
	return len(tasks)
}

// RunPending runs tasks until the queue is empty, including tasks posted
// while running. Returns the number of tasks run.
func (q *Queue) RunPending() int {
	n := 0
	for len(q.tasks) > 0 {
		n += q.Step()
	}
	return n
}

// =============================================================================
// EventLoop
// =============================================================================

// EventLoop runs posted functions one at a time on the goroutine that
// calls Run. It is the threading model of a Runtime served to other
// goroutines: everything touching the runtime goes through Post or Call.
type EventLoop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool

	wake    chan struct{}
	stopped chan struct{}
	logger  *slog.Logger
}

// NewEventLoop creates a stopped EventLoop. Call Run to start it.
func NewEventLoop(logger *slog.Logger) *EventLoop {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventLoop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
		logger:  logger.With("component", "loop"),
	}
}

// Post implements Loop. It is safe to call from any goroutine, including
// the loop itself. Work posted after the loop stopped is dropped.
func (l *EventLoop) Post(fn func()) {
	l.post(fn)
}

func (l *EventLoop) post(fn func()) bool {
	if fn == nil {
		return false
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
		// Already signalled
	}
	return true
}

// Call runs fn on the loop and waits for it to finish.
// Must not be called from the loop goroutine.
func (l *EventLoop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopClosed
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopped:
		return ErrLoopClosed
	}
}

// Run processes posted work until ctx is cancelled.
// Work still queued at cancellation is discarded.
func (l *EventLoop) Run(ctx context.Context) error {
	defer l.shutdown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}

		for _, fn := range l.take() {
			l.run(fn)
		}
	}
}

// Done is closed once Run has returned.
func (l *EventLoop) Done() <-chan struct{} {
	return l.stopped
}

func (l *EventLoop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	tasks := l.tasks
	l.tasks = nil
	return tasks
}

func (l *EventLoop) shutdown() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	dropped := len(l.tasks)
	l.tasks = nil
	l.mu.Unlock()

	if dropped > 0 {
		l.logger.Warn("event loop stopped with pending work", "dropped", dropped)
	}
	close(l.stopped)
}

// run executes fn with panic recovery so one task cannot stop the loop.
func (l *EventLoop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
