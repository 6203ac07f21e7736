package host

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/render"
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Committer receives the patches produced by each redraw.
type Committer interface {
	Commit(inst *Instance, patches []vdom.Patch)
}

// CommitFunc adapts a function to Committer.
type CommitFunc func(inst *Instance, patches []vdom.Patch)

// Commit calls f(inst, patches).
func (f CommitFunc) Commit(inst *Instance, patches []vdom.Patch) {
	f(inst, patches)
}

// discard is the default Committer.
type discard struct{}

func (discard) Commit(*Instance, []vdom.Patch) {}

// Option configures a Tree.
type Option func(*Tree)

// WithLogger sets the tree logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tree) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCommitter sets where redraw patches are sent. Patches are discarded
// by default.
func WithCommitter(c Committer) Option {
	return func(t *Tree) {
		if c != nil {
			t.committer = c
		}
	}
}

// Tree is a mounted component tree.
type Tree struct {
	rt        *track.Runtime
	root      *Instance
	instances map[uint64]*Instance
	hids      *vdom.HIDGenerator
	committer Committer
	renderer  *render.Renderer
	logger    *slog.Logger
	unmounted bool
}

// Mount renders root and every component it creates, then runs Mount
// hooks children first. A panic in any render unmounts what was created
// and is returned as an E001 error.
func Mount(rt *track.Runtime, root Component, opts ...Option) (tree *Tree, err error) {
	if root == nil || isNilPointer(root) {
		return nil, errors.New("E001").WithDetail("root component is nil")
	}

	_, span := rt.Tracer().Start(context.Background(), "autotrack.mount")
	defer span.End()

	t := &Tree{
		rt:        rt,
		instances: make(map[uint64]*Instance),
		hids:      vdom.NewHIDGenerator(),
		committer: discard{},
		renderer:  render.NewRenderer(render.RendererConfig{}),
		logger:    slog.Default().With("component", "host"),
	}
	for _, opt := range opts {
		opt(t)
	}

	inst := t.newInstance(root, nil)
	span.SetAttributes(attribute.String("autotrack.root", inst.info.typ.String()))

	defer func() {
		if r := recover(); r != nil {
			inst.unmount()
			err = errors.New("E001").
				WithDetailf("%s panicked during mount", inst.info.typ).
				Wrap(fmt.Errorf("%v", r))
			span.RecordError(err)
			span.SetStatus(codes.Error, "render panicked")
			t.logger.Error("mount failed", "type", inst.info.typ.String(), "panic", r)
			tree = nil
		}
	}()

	res := inst.render(nil)
	inst.apply(res)
	vdom.AssignHIDs(inst.output, t.hids)
	t.root = inst
	t.mountAll(append(res.mounts, inst))

	span.SetAttributes(attribute.Int("autotrack.instances", len(t.instances)))
	t.logger.Debug("mounted",
		"type", inst.info.typ.String(),
		"instances", len(t.instances))
	return t, nil
}

// Root returns the root instance.
func (t *Tree) Root() *Instance { return t.root }

// Runtime returns the runtime the tree renders on.
func (t *Tree) Runtime() *track.Runtime { return t.rt }

// VNode returns the current expanded output of the whole tree.
func (t *Tree) VNode() *vdom.VNode {
	if t.root == nil {
		return nil
	}
	return t.root.output
}

// HTML renders the current output.
func (t *Tree) HTML() (string, error) {
	return t.renderer.RenderToString(t.VNode())
}

// Renderer returns the renderer used for HTML output.
func (t *Tree) Renderer() *render.Renderer { return t.renderer }

// Instances returns the mounted instances ordered by ID, which is
// creation order.
func (t *Tree) Instances() []*Instance {
	list := make([]*Instance, 0, len(t.instances))
	for _, inst := range t.instances {
		list = append(list, inst)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

// Unmount removes every instance and releases all of their dependencies.
func (t *Tree) Unmount() {
	if t.unmounted {
		return
	}
	t.unmounted = true
	if t.root != nil {
		t.root.unmount()
	}
}

// Unmounted reports whether Unmount has been called.
func (t *Tree) Unmounted() bool { return t.unmounted }

// Dispatch invokes the handler for event on the element with the given
// hydration ID. Handlers are func() or func(string); the latter receives
// value. Redraws caused by the handler are batched as usual.
func (t *Tree) Dispatch(hid, event, value string) error {
	if t.unmounted {
		return errors.New("E004")
	}

	node := vdom.FindByHID(t.VNode(), hid)
	if node == nil {
		return errors.New("E002").WithDetailf("no element with hid %q", hid)
	}

	h, ok := node.Props.Handler(event)
	if !ok {
		return errors.New("E003").WithDetailf("<%s %s> has no %q handler", node.Tag, hid, event)
	}

	switch fn := h.(type) {
	case func():
		fn()
	case func(string):
		fn(value)
	default:
		return errors.New("E003").WithDetailf("handler for %q has type %T", event, h)
	}
	return nil
}

func (t *Tree) commit(inst *Instance, patches []vdom.Patch) {
	if len(patches) == 0 {
		return
	}
	t.committer.Commit(inst, patches)
}
