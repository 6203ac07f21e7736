// Package snapshot captures the dependency graph of a runtime and writes
// it as JSON to a directory, a bbolt database or an S3 bucket.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	aterrors "github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/track"
)

// ErrNoBucket is returned by S3Store when no bucket is set.
var ErrNoBucket = errors.New("snapshot: no bucket configured")

// ContentType is the media type of encoded snapshots.
const ContentType = "application/json"

// Snapshot is a point-in-time copy of a dependency graph.
type Snapshot struct {
	ID    string    `json:"id"`
	Taken time.Time `json:"taken"`
	track.GraphSnapshot
}

// Capture copies rt's graph. It must run on the runtime's loop goroutine.
func Capture(rt *track.Runtime) *Snapshot {
	return &Snapshot{
		ID:            uuid.NewString(),
		Taken:         time.Now().UTC(),
		GraphSnapshot: rt.Graph().Snapshot(),
	}
}

// Name returns the object name the snapshot is stored under. Names sort
// by capture time; the ID suffix keeps same-millisecond captures apart.
func (s *Snapshot) Name() string {
	name := "graph-" + s.Taken.UTC().Format("20060102T150405.000Z")
	if len(s.ID) >= 8 {
		name += "-" + s.ID[:8]
	}
	return name + ".json"
}

// Encode returns the snapshot as indented JSON.
func Encode(s *Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, aterrors.New("E200").Wrap(err)
	}
	return data, nil
}

// Store persists encoded snapshots.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
}

// Write encodes s and puts it into store. It returns the name written.
func Write(ctx context.Context, store Store, s *Snapshot) (string, error) {
	if store == nil {
		return "", aterrors.New("E202")
	}

	data, err := Encode(s)
	if err != nil {
		return "", err
	}

	name := s.Name()
	if err := store.Put(ctx, name, data); err != nil {
		return "", aterrors.New("E201").WithDetailf("writing %s", name).Wrap(err)
	}
	return name, nil
}
