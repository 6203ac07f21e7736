package track

import (
	"slices"
	"sort"
)

// Edge is one (object, key) pair an observer depends on.
type Edge struct {
	Object *Object
	Key    string
}

// Stats summarizes the size of a Graph.
type Stats struct {
	Objects   int `json:"objects"`
	Keys      int `json:"keys"`
	Observers int `json:"observers"`
	Edges     int `json:"edges"`
}

// dependencies is the reverse-map entry of one observer.
type dependencies struct {
	observer Observer

	// keys maps each object to the property names read from it.
	keys map[*Object][]string

	// objects preserves first-read order for deterministic iteration.
	objects []*Object
}

// Graph is the bidirectional dependency graph between tracked properties
// and observers.
//
// The forward map answers "who reads (object, key)" for invalidation; the
// reverse map answers "what does observer X read" so its edges can be
// removed in O(dependencies). Every edge exists in both maps or in
// neither.
//
// Graph is not safe for concurrent use.
type Graph struct {
	forward map[*Object]map[string][]Observer
	reverse map[uint64]*dependencies
	edges   int
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		forward: make(map[*Object]map[string][]Observer),
		reverse: make(map[uint64]*dependencies),
	}
}

// Link records that obs read key on o.
// Returns false if the edge already existed or either end is nil.
func (g *Graph) Link(o *Object, key string, obs Observer) bool {
	if o == nil || obs == nil {
		return false
	}

	id := obs.ID()
	deps := g.reverse[id]
	if deps == nil {
		deps = &dependencies{
			observer: obs,
			keys:     make(map[*Object][]string),
		}
		g.reverse[id] = deps
	}

	keys, seen := deps.keys[o]
	if slices.Contains(keys, key) {
		return false
	}
	if !seen {
		deps.objects = append(deps.objects, o)
	}
	deps.keys[o] = append(keys, key)

	byKey := g.forward[o]
	if byKey == nil {
		byKey = make(map[string][]Observer)
		g.forward[o] = byKey
	}
	byKey[key] = append(byKey[key], obs)

	g.edges++
	return true
}

// Unlink removes every edge held by obs and returns how many were removed.
// Forward entries left without readers are deleted so stale keys do not
// accumulate.
func (g *Graph) Unlink(obs Observer) int {
	if obs == nil {
		return 0
	}

	id := obs.ID()
	deps, ok := g.reverse[id]
	if !ok {
		return 0
	}

	removed := 0
	for _, o := range deps.objects {
		byKey := g.forward[o]
		for _, key := range deps.keys[o] {
			readers := slices.DeleteFunc(byKey[key], func(r Observer) bool {
				return r.ID() == id
			})
			if len(readers) == 0 {
				delete(byKey, key)
			} else {
				byKey[key] = readers
			}
			removed++
		}
		if len(byKey) == 0 {
			delete(g.forward, o)
		}
	}

	delete(g.reverse, id)
	g.edges -= removed
	return removed
}

// Observers returns the current readers of (o, key) in first-read order.
// The returned slice is a copy.
func (g *Graph) Observers(o *Object, key string) []Observer {
	readers := g.forward[o][key]
	if len(readers) == 0 {
		return nil
	}
	return slices.Clone(readers)
}

// Has reports whether obs currently depends on (o, key).
func (g *Graph) Has(o *Object, key string, obs Observer) bool {
	if obs == nil {
		return false
	}
	deps, ok := g.reverse[obs.ID()]
	if !ok {
		return false
	}
	return slices.Contains(deps.keys[o], key)
}

// Tracked reports whether obs has a reverse-map entry.
func (g *Graph) Tracked(obs Observer) bool {
	if obs == nil {
		return false
	}
	_, ok := g.reverse[obs.ID()]
	return ok
}

// Dependencies returns the edges held by obs in first-read order.
func (g *Graph) Dependencies(obs Observer) []Edge {
	if obs == nil {
		return nil
	}
	deps, ok := g.reverse[obs.ID()]
	if !ok {
		return nil
	}

	var edges []Edge
	for _, o := range deps.objects {
		for _, key := range deps.keys[o] {
			edges = append(edges, Edge{Object: o, Key: key})
		}
	}
	return edges
}

// References reports whether any forward entry mentions obs.
// It scans the whole forward map and is meant for tests and diagnostics.
func (g *Graph) References(obs Observer) bool {
	if obs == nil {
		return false
	}
	id := obs.ID()
	for _, byKey := range g.forward {
		for _, readers := range byKey {
			for _, r := range readers {
				if r.ID() == id {
					return true
				}
			}
		}
	}
	return false
}

// Stats returns the current graph size.
func (g *Graph) Stats() Stats {
	s := Stats{
		Objects:   len(g.forward),
		Observers: len(g.reverse),
		Edges:     g.edges,
	}
	for _, byKey := range g.forward {
		s.Keys += len(byKey)
	}
	return s
}

// GraphSnapshot is a serializable view of a Graph.
type GraphSnapshot struct {
	Stats     Stats              `json:"stats"`
	Objects   []ObjectSnapshot   `json:"objects"`
	Observers []ObserverSnapshot `json:"observers"`
}

// ObjectSnapshot lists the readers of each tracked key of one object.
type ObjectSnapshot struct {
	ID   uint64              `json:"id"`
	Name string              `json:"name"`
	Keys map[string][]uint64 `json:"keys"`
}

// ObserverSnapshot lists the dependencies of one observer.
type ObserverSnapshot struct {
	ID           uint64         `json:"id"`
	Alive        bool           `json:"alive"`
	Dependencies []EdgeSnapshot `json:"dependencies"`
}

// EdgeSnapshot is an Edge with the object replaced by its ID.
type EdgeSnapshot struct {
	Object uint64 `json:"object"`
	Key    string `json:"key"`
}

// Snapshot returns a copy of the graph sorted by ID.
func (g *Graph) Snapshot() GraphSnapshot {
	snap := GraphSnapshot{
		Stats:     g.Stats(),
		Objects:   make([]ObjectSnapshot, 0, len(g.forward)),
		Observers: make([]ObserverSnapshot, 0, len(g.reverse)),
	}

	for o, byKey := range g.forward {
		entry := ObjectSnapshot{
			ID:   o.ID(),
			Name: o.Name(),
			Keys: make(map[string][]uint64, len(byKey)),
		}
		for key, readers := range byKey {
			ids := make([]uint64, len(readers))
			for i, r := range readers {
				ids[i] = r.ID()
			}
			entry.Keys[key] = ids
		}
		snap.Objects = append(snap.Objects, entry)
	}

	for id, deps := range g.reverse {
		obs := ObserverSnapshot{ID: id, Alive: deps.observer.Alive()}
		for _, o := range deps.objects {
			for _, key := range deps.keys[o] {
				obs.Dependencies = append(obs.Dependencies, EdgeSnapshot{Object: o.ID(), Key: key})
			}
		}
		snap.Observers = append(snap.Observers, obs)
	}

	sort.Slice(snap.Objects, func(i, j int) bool { return snap.Objects[i].ID < snap.Objects[j].ID })
	sort.Slice(snap.Observers, func(i, j int) bool { return snap.Observers[i].ID < snap.Observers[j].ID })
	return snap
}
