package host

import (
	"reflect"
	"runtime/debug"

	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Instance is one mounted class component. It is the track.Observer the
// component's reads are attributed to.
type Instance struct {
	id   uint64
	comp Component
	info *classInfo
	tree *Tree

	parent   *Instance
	children []*Instance

	// output is the expanded result of the last successful render.
	output *vdom.VNode
	// slot is the placeholder in the parent's output that holds output.
	slot *vdom.VNode

	alive   bool
	mounted bool
	renders int
}

// result collects what one render produced before it is applied.
type result struct {
	output   *vdom.VNode
	children []*Instance
	fresh    map[*Instance]bool
	slots    map[*Instance]*vdom.VNode
	// mounts lists instances created by this render, children first.
	mounts []*Instance
}

func (t *Tree) newInstance(c Component, parent *Instance) *Instance {
	info, _ := instrument(c)
	inst := &Instance{
		id:     track.NextID(),
		comp:   c,
		info:   info,
		tree:   t,
		parent: parent,
		alive:  true,
	}
	t.instances[inst.id] = inst
	return inst
}

// ID implements track.Observer.
func (inst *Instance) ID() uint64 { return inst.id }

// Alive implements track.Observer. It is false once the instance is unmounted.
func (inst *Instance) Alive() bool { return inst.alive }

// Component returns the component value the instance renders.
func (inst *Instance) Component() Component { return inst.comp }

// Parent returns the enclosing instance, or nil for the root.
func (inst *Instance) Parent() *Instance { return inst.parent }

// Children returns the child instances in output order.
func (inst *Instance) Children() []*Instance {
	return append([]*Instance(nil), inst.children...)
}

// Tree returns the tree the instance belongs to.
func (inst *Instance) Tree() *Tree { return inst.tree }

// Output returns the expanded output of the last render.
func (inst *Instance) Output() *vdom.VNode { return inst.output }

// Renders returns how many times the component has rendered.
func (inst *Instance) Renders() int { return inst.renders }

// Redraw implements track.Observer. It re-renders the component, diffs the
// new output against the previous one and commits the patches. Child
// instances whose component is still present are kept without being
// re-rendered; the others are unmounted.
func (inst *Instance) Redraw() {
	if !inst.alive {
		return
	}
	t := inst.tree

	prev := inst.output
	pool := append([]*Instance(nil), inst.children...)
	res := inst.render(&pool)

	patches := vdom.Diff(prev, res.output)
	vdom.AssignHIDs(res.output, t.hids)
	inst.apply(res)
	if inst.slot != nil {
		inst.slot.Children = nodes(res.output)
	}

	for _, old := range pool {
		old.unmount()
	}

	t.logger.Debug("redraw",
		"instance", inst.id,
		"type", inst.info.typ.String(),
		"patches", len(patches))
	t.commit(inst, patches)
	t.mountAll(res.mounts)

	if inst.info.updater {
		t.hook(inst, "Updated", inst.comp.(Updater).Updated)
	}
}

// render runs the component under its own scope and expands the output.
// Child instances in pool may be adopted by component identity; adopted
// ones are removed from pool. If the render panics, instances it created
// are unmounted and the panic is re-raised.
func (inst *Instance) render(pool *[]*Instance) (res *result) {
	res = &result{
		fresh: make(map[*Instance]bool),
		slots: make(map[*Instance]*vdom.VNode),
	}
	defer func() {
		if r := recover(); r != nil {
			for i := len(res.children) - 1; i >= 0; i-- {
				if child := res.children[i]; res.fresh[child] {
					child.unmount()
				}
			}
			panic(r)
		}
	}()

	var out *vdom.VNode
	inst.tree.rt.Render(inst, func(s *track.Scope) {
		out = inst.comp.Render(s)
	})
	inst.renders++

	inst.tree.expand(inst, out, pool, res)
	res.output = out
	return res
}

// apply makes a successful render result current.
func (inst *Instance) apply(res *result) {
	inst.output = res.output
	inst.children = res.children
	for child, slot := range res.slots {
		child.slot = slot
	}
}

// unmount removes the instance and its descendants, children first.
func (inst *Instance) unmount() {
	if !inst.alive {
		return
	}
	for i := len(inst.children) - 1; i >= 0; i-- {
		inst.children[i].unmount()
	}
	inst.children = nil

	t := inst.tree
	released := t.rt.Release(inst)
	inst.alive = false
	delete(t.instances, inst.id)

	t.logger.Debug("unmount",
		"instance", inst.id,
		"type", inst.info.typ.String(),
		"released", released)

	if inst.mounted && inst.info.unmounter {
		t.hook(inst, "Unmount", inst.comp.(Unmounter).Unmount)
	}
}

// expand replaces placeholders in node with their output. Function
// components are invoked with their captured scope and become fragments.
// Class components adopt a matching instance from pool or get a new one.
func (t *Tree) expand(owner *Instance, node *vdom.VNode, pool *[]*Instance, res *result) {
	if node == nil {
		return
	}

	if node.Kind == vdom.KindComponent {
		switch c := node.Comp.(type) {
		case *funcCall:
			out := c.invoke(t.rt)
			node.Kind = vdom.KindFragment
			node.Comp = nil
			node.Children = nodes(out)
			t.expand(owner, out, pool, res)
			return

		case Component:
			child := adopt(pool, c)
			if child == nil {
				child = t.newInstance(c, owner)
				res.children = append(res.children, child)
				res.fresh[child] = true

				cr := child.render(nil)
				child.apply(cr)
				res.mounts = append(res.mounts, cr.mounts...)
				res.mounts = append(res.mounts, child)
			} else {
				res.children = append(res.children, child)
			}
			node.Comp = child
			node.Children = nodes(child.output)
			res.slots[child] = node
			return
		}
	}

	for _, child := range node.Children {
		t.expand(owner, child, pool, res)
	}
}

// adopt removes and returns the first live instance in pool rendering c.
func adopt(pool *[]*Instance, c Component) *Instance {
	if pool == nil {
		return nil
	}
	for i, inst := range *pool {
		if inst.alive && sameComponent(inst.comp, c) {
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			return inst
		}
	}
	return nil
}

// sameComponent compares component values without panicking on
// uncomparable types. Uncomparable components are never the same.
func sameComponent(a, b Component) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func nodes(n *vdom.VNode) []*vdom.VNode {
	if n == nil {
		return nil
	}
	return []*vdom.VNode{n}
}

// mountAll runs Mount hooks in order and marks the instances mounted.
func (t *Tree) mountAll(list []*Instance) {
	for _, inst := range list {
		if !inst.alive {
			continue
		}
		inst.mounted = true
		if inst.info.mounter {
			t.hook(inst, "Mount", inst.comp.(Mounter).Mount)
		}
	}
}

// hook runs a lifecycle callback, logging instead of propagating a panic.
func (t *Tree) hook(inst *Instance, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("lifecycle hook panic",
				"hook", name,
				"instance", inst.id,
				"type", inst.info.typ.String(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
