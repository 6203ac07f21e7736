package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/vango-dev/autotrack/internal/config"
	"github.com/vango-dev/autotrack/internal/demo"
	"github.com/vango-dev/autotrack/internal/errors"
	"github.com/vango-dev/autotrack/pkg/devserver"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port     int
		hostName string
		name     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a demo component tree",
		Long: `Mount a demo component tree and serve it with live updates.

Browsers receive the patches of every redraw over a websocket. Properties
can be written with POST /api/objects/{name}/{key}; the graph is served at
/debug/graph and metrics at /metrics.

Examples:
  autotrack serve
  autotrack serve --demo=todos --port=8080
  curl -X POST -d 5 localhost:3000/api/objects/counter/step`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(flags)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Dev.Port = port
			}
			if hostName != "" {
				cfg.Dev.Host = hostName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(cfg, name)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from autotrack.json)")
	cmd.Flags().StringVarP(&hostName, "host", "H", "", "Host to bind to (default from autotrack.json)")
	cmd.Flags().StringVarP(&name, "demo", "d", "app", "Demo to serve")

	return cmd
}

func runServe(cfg *config.Config, name string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The loop and the HTTP server stop together: whichever fails first
	// cancels the other.
	g, ctx := errgroup.WithContext(ctx)

	loop := track.NewEventLoop(nil)
	g.Go(func() error { return loop.Run(ctx) })

	opts := []track.Option{track.WithTracer(otel.Tracer(cfg.Tracing.Tracer))}
	reg := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts = append(opts, track.WithMetrics(track.NewMetrics(
			track.WithNamespace(cfg.Metrics.Namespace),
			track.WithRegistry(reg),
		)))
	}
	rt := track.New(loop, opts...)

	srv := devserver.New(rt, loop, devserver.Config{
		Addr:     cfg.DevAddress(),
		Title:    cfg.Dev.Title,
		Gatherer: reg,
	})

	var setupErr error
	err := loop.Call(ctx, func() {
		d, err := demo.New(name, rt)
		if err != nil {
			setupErr = err
			return
		}
		tree, err := host.Mount(rt, d.Root, host.WithCommitter(srv.Committer()))
		if err != nil {
			setupErr = err
			return
		}
		srv.Attach(tree)
		srv.Register(d.Objects...)
	})
	if err == nil {
		err = setupErr
	}
	if err != nil {
		stop()
		g.Wait()
		var coded *errors.Error
		if stderrors.As(err, &coded) {
			return err
		}
		return errors.New("E141").Wrap(err)
	}

	printBanner()
	success("Serving %q at %s", name, cfg.DevURL())
	info("graph:   %s/debug/graph", cfg.DevURL())
	if cfg.Metrics.Enabled {
		info("metrics: %s/metrics", cfg.DevURL())
	}
	fmt.Println()

	g.Go(func() error { return srv.Run(ctx) })
	if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
