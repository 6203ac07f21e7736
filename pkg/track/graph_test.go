package track

import "testing"

func TestGraphLinkBothMaps(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	o := rt.NewObject("o", nil)
	obs := newTestObserver()

	if !g.Link(o, "x", obs) {
		t.Fatal("first Link should report a new edge")
	}

	readers := g.Observers(o, "x")
	if len(readers) != 1 || readers[0] != Observer(obs) {
		t.Errorf("forward map = %v, want [obs]", readers)
	}
	if !g.Has(o, "x", obs) {
		t.Error("reverse map should contain (o, x)")
	}

	stats := g.Stats()
	if stats != (Stats{Objects: 1, Keys: 1, Observers: 1, Edges: 1}) {
		t.Errorf("Stats = %+v", stats)
	}
}

func TestGraphLinkDeduplicates(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	o := rt.NewObject("o", nil)
	obs := newTestObserver()

	g.Link(o, "x", obs)
	for i := 0; i < 10; i++ {
		if g.Link(o, "x", obs) {
			t.Fatal("duplicate Link should report false")
		}
	}

	if n := len(g.Observers(o, "x")); n != 1 {
		t.Errorf("forward list length = %d, want 1", n)
	}
	if n := len(g.Dependencies(obs)); n != 1 {
		t.Errorf("reverse list length = %d, want 1", n)
	}
}

func TestGraphLinkNil(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()

	if g.Link(nil, "x", newTestObserver()) {
		t.Error("Link with nil object should be rejected")
	}
	if g.Link(rt.NewObject("o", nil), "x", nil) {
		t.Error("Link with nil observer should be rejected")
	}
	if g.Stats().Edges != 0 {
		t.Error("no edges expected")
	}
}

func TestGraphUnlink(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	a := rt.NewObject("a", nil)
	b := rt.NewObject("b", nil)
	obs1 := newTestObserver()
	obs2 := newTestObserver()

	g.Link(a, "x", obs1)
	g.Link(a, "y", obs1)
	g.Link(b, "z", obs1)
	g.Link(a, "x", obs2)

	if n := g.Unlink(obs1); n != 3 {
		t.Errorf("Unlink removed %d edges, want 3", n)
	}

	if g.Tracked(obs1) {
		t.Error("reverse entry should be deleted")
	}
	if g.References(obs1) {
		t.Error("forward map should not reference obs1")
	}

	// Shared key survives with the remaining reader
	readers := g.Observers(a, "x")
	if len(readers) != 1 || readers[0] != Observer(obs2) {
		t.Errorf("readers of (a, x) = %v, want [obs2]", readers)
	}

	// Empty keys and objects are removed entirely
	stats := g.Stats()
	if stats.Objects != 1 || stats.Keys != 1 || stats.Edges != 1 {
		t.Errorf("Stats after unlink = %+v", stats)
	}
}

func TestGraphUnlinkUnknown(t *testing.T) {
	g := NewGraph()
	if n := g.Unlink(newTestObserver()); n != 0 {
		t.Errorf("Unlink of unknown observer = %d, want 0", n)
	}
	if n := g.Unlink(nil); n != 0 {
		t.Errorf("Unlink(nil) = %d, want 0", n)
	}
}

func TestGraphDependenciesOrder(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	a := rt.NewObject("a", nil)
	b := rt.NewObject("b", nil)
	obs := newTestObserver()

	g.Link(b, "q", obs)
	g.Link(a, "x", obs)
	g.Link(b, "r", obs)

	deps := g.Dependencies(obs)
	want := []Edge{{b, "q"}, {b, "r"}, {a, "x"}}
	if len(deps) != len(want) {
		t.Fatalf("Dependencies = %v, want %v", deps, want)
	}
	for i := range want {
		if deps[i] != want[i] {
			t.Errorf("Dependencies[%d] = %v, want %v", i, deps[i], want[i])
		}
	}
}

func TestGraphObserversReturnsCopy(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	o := rt.NewObject("o", nil)
	obs1 := newTestObserver()
	obs2 := newTestObserver()
	g.Link(o, "x", obs1)
	g.Link(o, "x", obs2)

	readers := g.Observers(o, "x")
	g.Unlink(obs1)

	if len(readers) != 2 || readers[0] != Observer(obs1) {
		t.Error("Observers result should not change after Unlink")
	}
}

func TestGraphSnapshot(t *testing.T) {
	rt, _ := newTestRuntime()
	g := rt.Graph()
	o := rt.NewObject("user", nil)
	obs := newTestObserver()
	g.Link(o, "name", obs)
	g.Link(o, "age", obs)

	snap := g.Snapshot()
	if snap.Stats.Edges != 2 {
		t.Errorf("snapshot edges = %d, want 2", snap.Stats.Edges)
	}
	if len(snap.Objects) != 1 || snap.Objects[0].Name != "user" {
		t.Fatalf("snapshot objects = %+v", snap.Objects)
	}
	if ids := snap.Objects[0].Keys["name"]; len(ids) != 1 || ids[0] != obs.ID() {
		t.Errorf("readers of name = %v, want [%d]", ids, obs.ID())
	}
	if len(snap.Observers) != 1 || len(snap.Observers[0].Dependencies) != 2 {
		t.Fatalf("snapshot observers = %+v", snap.Observers)
	}
	if !snap.Observers[0].Alive {
		t.Error("observer should be reported alive")
	}
}
