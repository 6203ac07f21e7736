package demo

import (
	"strconv"
	"strings"

	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Todo is one list item. Items are replaced, never mutated in place.
type Todo struct {
	ID   int
	Text string
	Done bool
}

// Filters accepted by TodoList.SetFilter.
const (
	FilterAll    = "all"
	FilterActive = "active"
	FilterDone   = "done"
)

// TodoList renders a filtered list of todos. Rows are function components,
// so what they read is attributed to the list.
type TodoList struct {
	State *track.Object
}

// NewTodoList creates a list with its own "todos" object.
func NewTodoList(rt *track.Runtime, items ...string) *TodoList {
	todos := make([]Todo, len(items))
	for i, text := range items {
		todos[i] = Todo{ID: i + 1, Text: text}
	}
	return &TodoList{
		State: rt.NewObject("todos", map[string]any{
			"items":    todos,
			"filter":   FilterAll,
			"selected": 0,
			"draft":    "",
		}),
	}
}

// Render implements host.Component.
func (l *TodoList) Render(s *track.Scope) *vdom.VNode {
	items, _ := track.Get[[]Todo](l.State, s, "items")
	filter, _ := track.Get[string](l.State, s, "filter")

	rows := make([]*vdom.VNode, 0, len(items))
	for _, todo := range items {
		if !visible(todo, filter) {
			continue
		}
		rows = append(rows, host.Element(s, host.Func(TodoRow), vdom.Props{
			"key":  strconv.Itoa(todo.ID),
			"todo": todo,
			"list": l,
		}))
	}

	return host.Element(s, "section", vdom.Props{"className": "todos"},
		host.Element(s, "input", vdom.Props{"oninput": l.SetDraft, "placeholder": "What needs doing?"}),
		host.Element(s, "button", vdom.Props{"onclick": l.AddDraft}, "Add"),
		host.Element(s, "ul", nil, rows),
		host.Element(s, "p", nil, len(rows), " shown, filter ", filter),
	)
}

// TodoRow renders one item. It reads the list's selection, which makes
// the enclosing TodoList redraw when the selection changes.
func TodoRow(s *track.Scope, props vdom.Props) *vdom.VNode {
	todo, _ := props["todo"].(Todo)
	list, _ := props["list"].(*TodoList)

	className := "todo"
	if todo.Done {
		className += " done"
	}
	if list != nil {
		if selected, _ := track.Get[int](list.State, s, "selected"); selected == todo.ID {
			className += " selected"
		}
	}

	id := todo.ID
	return host.Element(s, "li", vdom.Props{"key": strconv.Itoa(id), "className": className},
		host.Element(s, "input", vdom.Props{
			"type":     "checkbox",
			"checked":  todo.Done,
			"onchange": func() { list.Toggle(id) },
		}),
		host.Element(s, "span", vdom.Props{"onclick": func() { list.Select(id) }}, todo.Text),
	)
}

func visible(todo Todo, filter string) bool {
	switch filter {
	case FilterActive:
		return !todo.Done
	case FilterDone:
		return todo.Done
	default:
		return true
	}
}

// Items returns the current items without tracking.
func (l *TodoList) Items() []Todo {
	items, _ := l.State.Peek("items").([]Todo)
	return items
}

// Add appends an item.
func (l *TodoList) Add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	items := l.Items()
	next := 1
	for _, todo := range items {
		if todo.ID >= next {
			next = todo.ID + 1
		}
	}
	updated := make([]Todo, len(items), len(items)+1)
	copy(updated, items)
	l.State.Set("items", append(updated, Todo{ID: next, Text: text}))
}

// AddDraft adds the text typed into the input and clears it.
func (l *TodoList) AddDraft() {
	draft, _ := l.State.Peek("draft").(string)
	l.Add(draft)
	l.State.Set("draft", "")
}

// SetDraft records the input text. Nothing renders it, so no redraw
// follows.
func (l *TodoList) SetDraft(text string) {
	l.State.Set("draft", text)
}

// Toggle flips the done state of the item with id.
func (l *TodoList) Toggle(id int) {
	items := l.Items()
	updated := make([]Todo, len(items))
	for i, todo := range items {
		if todo.ID == id {
			todo.Done = !todo.Done
		}
		updated[i] = todo
	}
	l.State.Set("items", updated)
}

// Select marks the item with id as selected.
func (l *TodoList) Select(id int) {
	l.State.Set("selected", id)
}

// SetFilter changes which items are shown.
func (l *TodoList) SetFilter(filter string) {
	l.State.Set("filter", filter)
}
