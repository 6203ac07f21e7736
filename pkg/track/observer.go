package track

// Observer is anything whose rendered output depends on tracked properties.
// Component instances in the host implement it.
type Observer interface {
	// ID returns a unique identifier for this observer.
	// Edges and pending updates are keyed by it.
	ID() uint64

	// Alive reports whether the observer can still be redrawn.
	// The scheduler skips observers that report false.
	Alive() bool

	// Redraw re-runs the observer's render and commits the new output.
	Redraw()
}
