package host

import (
	"fmt"
	"log/slog"

	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Element turns a type, props and children into a node. It is the only
// place instrumentation is activated:
//
//   - a string creates a plain element;
//   - a Component instruments its type (once) and creates a placeholder
//     the tree expands into a child Instance. A component carries its own
//     state, so only props["key"] is used; other props and children are
//     ignored and reported at debug level;
//   - a Func creates a placeholder wrapping this invocation with s, so the
//     function's reads are attributed to the component rendering now.
//
// Children may be nodes, node slices, strings, other values (rendered with
// fmt.Sprint) or components, which are passed through Element themselves.
// Element never panics on unexpected input: nil values are dropped and
// anything unrecognised becomes text.
func Element(s *track.Scope, typ any, props vdom.Props, children ...any) *vdom.VNode {
	switch KindOf(typ) {
	case KindHost:
		return vdom.Element(typ.(string), props, normalize(s, children)...)

	case KindClass:
		c := typ.(Component)
		instrument(c)
		extra := len(props)
		if _, ok := props["key"]; ok {
			extra--
		}
		if extra > 0 || len(children) > 0 {
			loggerOf(s).Debug("class component ignores props and children",
				"type", fmt.Sprintf("%T", c),
				"props", extra,
				"children", len(children))
		}
		return vdom.Placeholder(c, keyOf(props))

	case KindFunc:
		var fn Func
		switch f := typ.(type) {
		case Func:
			fn = f
		case func(*track.Scope, vdom.Props) *vdom.VNode:
			fn = f
		}
		call := &funcCall{
			fn:    fn,
			props: withChildren(props, normalize(s, children)),
			scope: s,
		}
		return vdom.Placeholder(call, keyOf(props))
	}

	if typ == nil || isNilPointer(typ) {
		return nil
	}
	return vdom.Text(fmt.Sprint(typ))
}

// normalize converts Element children into nodes.
func normalize(s *track.Scope, children []any) []*vdom.VNode {
	nodes := make([]*vdom.VNode, 0, len(children))
	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *vdom.VNode:
			if v != nil {
				nodes = append(nodes, v)
			}
		case []*vdom.VNode:
			for _, n := range v {
				if n != nil {
					nodes = append(nodes, n)
				}
			}
		case string:
			nodes = append(nodes, vdom.Text(v))
		default:
			if KindOf(v) == KindClass || KindOf(v) == KindFunc {
				if n := Element(s, v, nil); n != nil {
					nodes = append(nodes, n)
				}
				continue
			}
			if !isNilPointer(v) {
				nodes = append(nodes, vdom.Text(fmt.Sprint(v)))
			}
		}
	}
	return nodes
}

// withChildren copies props and adds children under "children".
func withChildren(props vdom.Props, children []*vdom.VNode) vdom.Props {
	out := make(vdom.Props, len(props)+1)
	for k, v := range props {
		out[k] = v
	}
	out["children"] = children
	return out
}

func loggerOf(s *track.Scope) *slog.Logger {
	if rt := s.Runtime(); rt != nil {
		return rt.Logger()
	}
	return slog.Default()
}

func keyOf(props vdom.Props) string {
	key, _ := props["key"].(string)
	return key
}

// Children returns the children passed to a function component.
func Children(props vdom.Props) []*vdom.VNode {
	children, _ := props["children"].([]*vdom.VNode)
	return children
}
