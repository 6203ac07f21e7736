// Package demo contains the components served by "autotrack serve" and
// scripted by "autotrack demo".
package demo

import (
	"sort"

	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// App composes a Counter and a TodoList under a title. It keeps its
// children as fields so a redraw of the app reuses their instances.
type App struct {
	State   *track.Object
	Counter *Counter
	Todos   *TodoList
}

// NewApp creates the app and the objects it renders.
func NewApp(rt *track.Runtime) *App {
	return &App{
		State: rt.NewObject("app", map[string]any{
			"title":     "autotrack",
			"showTodos": true,
		}),
		Counter: NewCounter(rt),
		Todos:   NewTodoList(rt, "Read the graph", "Write a component", "Ship it"),
	}
}

// Render implements host.Component.
func (a *App) Render(s *track.Scope) *vdom.VNode {
	title, _ := track.Get[string](a.State, s, "title")

	var todos any
	if show, _ := track.Get[bool](a.State, s, "showTodos"); show {
		todos = a.Todos
	}

	return host.Element(s, "main", nil,
		host.Element(s, host.Func(Heading), vdom.Props{"text": title}),
		a.Counter,
		todos,
	)
}

// Objects returns every object the app renders.
func (a *App) Objects() []*track.Object {
	return []*track.Object{a.State, a.Counter.State, a.Todos.State}
}

// Heading is a function component rendering props["text"].
func Heading(s *track.Scope, props vdom.Props) *vdom.VNode {
	return host.Element(s, "h1", nil, props["text"])
}

// Demo is a mountable component and the objects it reads.
type Demo struct {
	Root    host.Component
	Objects []*track.Object
}

var demos = map[string]func(rt *track.Runtime) Demo{
	"app": func(rt *track.Runtime) Demo {
		app := NewApp(rt)
		return Demo{Root: app, Objects: app.Objects()}
	},
	"counter": func(rt *track.Runtime) Demo {
		c := NewCounter(rt)
		return Demo{Root: c, Objects: []*track.Object{c.State}}
	},
	"todos": func(rt *track.Runtime) Demo {
		l := NewTodoList(rt, "Read the graph", "Write a component", "Ship it")
		return Demo{Root: l, Objects: []*track.Object{l.State}}
	},
}

// Names returns the available demo names, sorted.
func Names() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the named demo on rt.
func New(name string, rt *track.Runtime) (Demo, error) {
	build, ok := demos[name]
	if !ok {
		return Demo{}, errors.New("E140").
			WithDetailf("no demo named %q", name).
			WithSuggestion("Available demos: app, counter, todos")
	}
	return build(rt), nil
}
