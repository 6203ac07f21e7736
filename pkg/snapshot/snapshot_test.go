package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	aterrors "github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/track"
)

type observer struct{ id uint64 }

func (o *observer) ID() uint64  { return o.id }
func (o *observer) Alive() bool { return true }
func (o *observer) Redraw()     {}

func capture(t *testing.T) *Snapshot {
	t.Helper()
	rt := track.New(track.NewQueue())
	o := rt.NewObject("todos", map[string]any{"items": nil, "filter": "all"})
	c := &observer{id: track.NextID()}
	rt.Render(c, func(s *track.Scope) {
		o.Get(s, "items")
		o.Get(s, "filter")
	})
	return Capture(rt)
}

func TestCapture(t *testing.T) {
	snap := capture(t)

	if snap.Taken.IsZero() {
		t.Error("Taken should be set")
	}
	if len(snap.ID) != 36 {
		t.Errorf("ID = %q, want a UUID", snap.ID)
	}
	if snap.Stats.Edges != 2 || snap.Stats.Objects != 1 || snap.Stats.Observers != 1 {
		t.Errorf("Stats = %+v, want 1 object, 1 observer, 2 edges", snap.Stats)
	}
	if len(snap.Objects) != 1 || snap.Objects[0].Name != "todos" {
		t.Fatalf("Objects = %+v", snap.Objects)
	}
	if len(snap.Observers) != 1 || len(snap.Observers[0].Dependencies) != 2 {
		t.Errorf("Observers = %+v", snap.Observers)
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(capture(t))
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	for _, key := range []string{"id", "taken", "stats", "objects", "observers"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("encoded snapshot missing %q", key)
		}
	}
}

func TestName(t *testing.T) {
	snap := capture(t)
	name := snap.Name()
	if !strings.HasPrefix(name, "graph-") || !strings.HasSuffix(name, "-"+snap.ID[:8]+".json") {
		t.Errorf("Name() = %q", name)
	}
	if other := capture(t); other.Name() == name {
		t.Error("two captures should not share a name")
	}
}

func TestBoltStore(t *testing.T) {
	store, err := OpenBolt(filepath.Join(t.TempDir(), "graphs.db"))
	if err != nil {
		t.Fatalf("OpenBolt() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	first, err := Write(ctx, store, capture(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	second, err := Write(ctx, store, capture(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	names, err := store.Names()
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}
	if len(names) != 2 || names[0] > names[1] {
		t.Errorf("Names() = %v, want 2 sorted names", names)
	}

	data, err := store.Get(second)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("stored value is not a snapshot: %v", err)
	}
	if snap.Stats.Edges != 2 || second == first {
		t.Errorf("Get(%s) = %+v", second, snap.Stats)
	}

	if _, err := store.Get("missing"); !stderrors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if err := store.Put(canceled, "x", nil); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Put() with canceled context error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snaps")
	store, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}

	snap := capture(t)
	name, err := Write(context.Background(), store, snap)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("snapshot file not written: %v", err)
	}
	if !strings.Contains(string(data), `"todos"`) {
		t.Errorf("file content = %s", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1 (no temp files)", len(entries))
	}
}

func TestFileStoreCanceled(t *testing.T) {
	store := &FileStore{Dir: t.TempDir()}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, "x.json", []byte("{}")); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Put() error = %v, want context.Canceled", err)
	}
}

type fakeS3 struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	client := &fakeS3{}
	store := NewS3Store(client, "bucket", "graphs/")

	name, err := Write(context.Background(), store, capture(t))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(client.inputs) != 1 {
		t.Fatalf("PutObject calls = %d, want 1", len(client.inputs))
	}
	in := client.inputs[0]
	if *in.Bucket != "bucket" {
		t.Errorf("Bucket = %q", *in.Bucket)
	}
	if *in.Key != "graphs/"+name {
		t.Errorf("Key = %q, want graphs/%s", *in.Key, name)
	}
	if *in.ContentType != ContentType {
		t.Errorf("ContentType = %q", *in.ContentType)
	}
	if !json.Valid(client.bodies[0]) {
		t.Error("body should be JSON")
	}
}

func TestS3StoreErrors(t *testing.T) {
	if err := NewS3Store(&fakeS3{}, "", "").Put(context.Background(), "x", nil); !stderrors.Is(err, ErrNoBucket) {
		t.Errorf("Put() without bucket error = %v, want ErrNoBucket", err)
	}

	denied := stderrors.New("access denied")
	_, err := Write(context.Background(), NewS3Store(&fakeS3{err: denied}, "b", ""), capture(t))

	var coded *aterrors.Error
	if !stderrors.As(err, &coded) || coded.Code != "E201" {
		t.Fatalf("Write() error = %v, want E201", err)
	}
	if !stderrors.Is(err, denied) {
		t.Error("Write() error should wrap the store error")
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		opts     Options
		wantType string
		wantCode string
	}{
		{"bucket wins", Options{Dir: dir, Bucket: "b", Region: "eu-west-1"}, "*snapshot.S3Store", ""},
		{"db wins over dir", Options{Dir: dir, DB: filepath.Join(dir, "graphs.db")}, "*snapshot.BoltStore", ""},
		{"dir", Options{Dir: dir}, "*snapshot.FileStore", ""},
		{"nothing", Options{}, "", "E202"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.opts)
			if tt.wantCode != "" {
				var coded *aterrors.Error
				if !stderrors.As(err, &coded) || coded.Code != tt.wantCode {
					t.Errorf("Open() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if c, ok := store.(io.Closer); ok {
				defer c.Close()
			}
			if got := typeName(store); got != tt.wantType {
				t.Errorf("Open() = %s, want %s", got, tt.wantType)
			}
		})
	}
}

func typeName(v any) string {
	switch v.(type) {
	case *S3Store:
		return "*snapshot.S3Store"
	case *FileStore:
		return "*snapshot.FileStore"
	case *BoltStore:
		return "*snapshot.BoltStore"
	}
	return "unknown"
}
