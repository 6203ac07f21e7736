package track

import "errors"

// ErrLoopClosed is returned when work is submitted to a stopped EventLoop.
var ErrLoopClosed = errors.New("track: event loop closed")

var (
	errUnknownField = errors.New("track: unknown field")
	errTypeMismatch = errors.New("track: value type does not match field")
	errFixedShape   = errors.New("track: struct-backed objects cannot delete keys")
)
