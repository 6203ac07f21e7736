package demo

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
)

func mountApp(t *testing.T) (*App, *host.Tree, *track.Runtime, *track.Queue) {
	t.Helper()
	q := track.NewQueue()
	rt := track.New(q)
	app := NewApp(rt)
	tree, err := host.Mount(rt, app)
	if err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	return app, tree, rt, q
}

// instanceOf returns the mounted instance rendering c.
func instanceOf(t *testing.T, tree *host.Tree, c host.Component) *host.Instance {
	t.Helper()
	for _, inst := range tree.Instances() {
		if inst.Component() == c {
			return inst
		}
	}
	t.Fatalf("no instance for %T", c)
	return nil
}

func html(t *testing.T, tree *host.Tree) string {
	t.Helper()
	out, err := tree.HTML()
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	return out
}

func TestAppMount(t *testing.T) {
	app, tree, rt, _ := mountApp(t)

	if n := len(tree.Instances()); n != 3 {
		t.Errorf("instances = %d, want 3", n)
	}

	out := html(t, tree)
	for _, want := range []string{"autotrack</h1>", "Read the graph", "Ship it", "3 shown, filter all"} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML() should contain %q", want)
		}
	}

	root := tree.Root()
	if !rt.Graph().Has(app.State, "title", root) {
		t.Error("title read should be attributed to the app")
	}
	list := instanceOf(t, tree, app.Todos)
	if !rt.Graph().Has(app.Todos.State, "selected", list) {
		t.Error("row reads should be attributed to the list")
	}
	if rt.Graph().Has(app.Todos.State, "draft", list) {
		t.Error("draft is never read during render")
	}
}

func TestCounterRedrawsOnlyCounter(t *testing.T) {
	app, tree, _, q := mountApp(t)
	counter := instanceOf(t, tree, app.Counter)
	list := instanceOf(t, tree, app.Todos)

	app.Counter.Increment()
	app.Counter.Increment()
	q.RunPending()

	if counter.Renders() != 2 {
		t.Errorf("counter renders = %d, want 2 (writes coalesced)", counter.Renders())
	}
	if tree.Root().Renders() != 1 || list.Renders() != 1 {
		t.Error("app and list should not redraw")
	}
	if out := html(t, tree); !strings.Contains(out, `class="count"`) || !strings.Contains(out, ">2</span>") {
		t.Errorf("HTML() = %s, want count 2", out)
	}

	app.Counter.State.Set("step", 5)
	app.Counter.Decrement()
	q.RunPending()
	if got := app.Counter.State.Peek("count"); got != -3 {
		t.Errorf("count = %v, want -3", got)
	}
}

func TestTodoList(t *testing.T) {
	app, tree, _, q := mountApp(t)
	list := instanceOf(t, tree, app.Todos)
	todos := app.Todos

	todos.Toggle(1)
	todos.SetFilter(FilterActive)
	q.RunPending()

	if list.Renders() != 2 {
		t.Errorf("list renders = %d, want 2", list.Renders())
	}
	out := html(t, tree)
	if strings.Contains(out, "Read the graph") {
		t.Error("done item should be filtered out")
	}
	if !strings.Contains(out, "2 shown, filter active") {
		t.Errorf("HTML() = %s", out)
	}

	todos.Select(2)
	q.RunPending()
	if list.Renders() != 3 {
		t.Errorf("selection change should redraw the list, renders = %d", list.Renders())
	}
	if !strings.Contains(html(t, tree), "todo selected") {
		t.Error("selected row should be marked")
	}

	todos.SetDraft("Test it")
	if q.Len() != 0 {
		t.Error("writing an unread key must not schedule a flush")
	}
	todos.AddDraft()
	q.RunPending()
	if items := todos.Items(); len(items) != 4 || items[3].ID != 4 || items[3].Text != "Test it" {
		t.Errorf("items = %+v", items)
	}

	todos.Add("   ")
	if len(todos.Items()) != 4 {
		t.Error("blank items should be ignored")
	}
}

func TestAppHidesTodos(t *testing.T) {
	app, tree, rt, q := mountApp(t)
	list := instanceOf(t, tree, app.Todos)
	counter := instanceOf(t, tree, app.Counter)

	app.State.Set("showTodos", false)
	q.RunPending()

	if list.Alive() {
		t.Error("hidden list should be unmounted")
	}
	if !counter.Alive() || counter.Renders() != 1 {
		t.Error("counter should be kept without re-rendering")
	}
	if rt.Graph().Tracked(list) {
		t.Error("unmounted list should have no edges")
	}

	app.Todos.Toggle(2)
	if rt.Scheduler().Pending() != 0 {
		t.Error("writes read only by the unmounted list must not schedule redraws")
	}
}

func TestDispatchThroughTree(t *testing.T) {
	app, tree, _, q := mountApp(t)

	var plus string
	for _, inst := range tree.Instances() {
		if inst.Component() != app.Counter {
			continue
		}
		for _, child := range inst.Output().Children {
			if child.Tag == "button" && len(child.Children) > 0 && child.Children[0].Text == "+" {
				plus = child.HID
			}
		}
	}
	if plus == "" {
		t.Fatal("no + button found")
	}

	if err := tree.Dispatch(plus, "click", ""); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	q.RunPending()
	if got := app.Counter.State.Peek("count"); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		rt := track.New(nil)
		d, err := New(name, rt)
		if err != nil {
			t.Fatalf("New(%q) error = %v", name, err)
		}
		if d.Root == nil || len(d.Objects) == 0 {
			t.Errorf("New(%q) = %+v", name, d)
		}
		if _, err := host.Mount(rt, d.Root); err != nil {
			t.Errorf("Mount(%q) error = %v", name, err)
		}
	}

	_, err := New("nope", track.New(nil))
	var coded *errors.Error
	if !stderrors.As(err, &coded) || coded.Code != "E140" {
		t.Errorf("New(nope) error = %v, want E140", err)
	}
}

func TestNames(t *testing.T) {
	if got := strings.Join(Names(), ","); got != "app,counter,todos" {
		t.Errorf("Names() = %s", got)
	}
}
