package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autotrack/internal/demo"
	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

func demoCmd(flags *globalFlags) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "demo [name]",
		Short: "Run a demo and print its redraws",
		Long: `Mount a demo, apply property writes and print what each flush redrew.

Each --set is applied in its own turn, followed by a flush. Values are
parsed as JSON and fall back to plain strings.

Demos: ` + strings.Join(demo.Names(), ", ") + `

Examples:
  autotrack demo counter --set counter.count=3
  autotrack demo todos --set todos.filter=active --set todos.selected=2`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := setup(flags)
			if err != nil {
				return err
			}
			name := "app"
			if len(args) == 1 {
				name = args[0]
			}
			return runDemo(logger, name, sets)
		},
	}

	cmd.Flags().StringArrayVar(&sets, "set", nil, "Write object.key=value (repeatable)")

	return cmd
}

// write is one parsed --set flag.
type write struct {
	object string
	key    string
	value  any
}

func parseWrite(s string) (write, error) {
	target, raw, ok := strings.Cut(s, "=")
	object, key, ok2 := strings.Cut(target, ".")
	if !ok || !ok2 || object == "" || key == "" {
		return write{}, errors.New("E061").
			WithDetailf("cannot parse %q", s).
			WithSuggestion("Use --set object.key=value")
	}

	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	// JSON numbers decode as float64; integral values are written as int.
	if f, ok := value.(float64); ok && f == float64(int(f)) {
		value = int(f)
	}
	return write{object: object, key: key, value: value}, nil
}

func runDemo(logger *slog.Logger, name string, sets []string) error {
	writes := make([]write, 0, len(sets))
	for _, s := range sets {
		w, err := parseWrite(s)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}

	q := track.NewQueue()
	rt := track.New(q, track.WithLogger(logger))
	d, err := demo.New(name, rt)
	if err != nil {
		return err
	}

	objects := make(map[string]*track.Object, len(d.Objects))
	for _, o := range d.Objects {
		objects[o.Name()] = o
	}

	tree, err := host.Mount(rt, d.Root, host.WithCommitter(host.CommitFunc(func(inst *host.Instance, patches []vdom.Patch) {
		info("redraw %s #%d: %d patches", typeName(inst.Component()), inst.ID(), len(patches))
		for _, p := range patches {
			info("  %s", p)
		}
	})))
	if err != nil {
		return err
	}
	defer tree.Unmount()

	if err := printTree(tree); err != nil {
		return err
	}

	for _, w := range writes {
		o, ok := objects[w.object]
		if !ok {
			return errors.New("E062").WithDetailf("no object named %q in demo %q", w.object, name)
		}
		fmt.Println()
		success("set %s.%s = %v", w.object, w.key, w.value)
		o.Set(w.key, w.value)
		q.RunPending()
	}

	if len(writes) > 0 {
		fmt.Println()
		return printTree(tree)
	}
	return nil
}

func printTree(tree *host.Tree) error {
	html, err := tree.HTML()
	if err != nil {
		return err
	}
	stats := tree.Runtime().Graph().Stats()
	info("%s", html)
	info("%d instances, %d objects, %d keys, %d edges",
		len(tree.Instances()), stats.Objects, stats.Keys, stats.Edges)
	return nil
}

func typeName(v any) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
