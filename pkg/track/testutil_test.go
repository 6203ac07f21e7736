package track

// testObserver is a minimal Observer for tests.
type testObserver struct {
	id      uint64
	dead    bool
	redraws int

	// onRedraw runs inside Redraw when set.
	onRedraw func()
}

func newTestObserver() *testObserver {
	return &testObserver{id: NextID()}
}

func (o *testObserver) ID() uint64  { return o.id }
func (o *testObserver) Alive() bool { return !o.dead }

func (o *testObserver) Redraw() {
	o.redraws++
	if o.onRedraw != nil {
		o.onRedraw()
	}
}

// newTestRuntime returns a runtime driven by a manual queue.
func newTestRuntime() (*Runtime, *Queue) {
	q := NewQueue()
	return New(q), q
}
