package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/autotrack/internal/config"
	"github.com/vango-dev/autotrack/internal/demo"
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/snapshot"
	"github.com/vango-dev/autotrack/pkg/track"
)

func snapshotCmd(flags *globalFlags) *cobra.Command {
	var (
		dir    string
		db     string
		bucket string
		stdout bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot [demo]",
		Short: "Write the dependency graph of a mounted demo",
		Long: `Mount a demo and write its dependency graph as JSON.

The graph is written to snapshot.bucket (S3), snapshot.db (bbolt) or
snapshot.dir from autotrack.json, or to stdout with --stdout. S3 credentials are read from
AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY.

Examples:
  autotrack snapshot --stdout
  autotrack snapshot todos --dir=snapshots
  autotrack snapshot --db=graphs.db
  autotrack snapshot --bucket=my-graphs`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup(flags)
			if err != nil {
				return err
			}
			if dir != "" {
				cfg.Snapshot.Dir = dir
			}
			if db != "" {
				cfg.Snapshot.DB = db
			}
			if bucket != "" {
				cfg.Snapshot.Bucket = bucket
			}
			name := "app"
			if len(args) == 1 {
				name = args[0]
			}
			return runSnapshot(cmd.Context(), cfg, name, stdout)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory to write to (overrides snapshot.dir)")
	cmd.Flags().StringVar(&db, "db", "", "bbolt database to write to (overrides snapshot.db)")
	cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket to write to (overrides snapshot.bucket)")
	cmd.Flags().BoolVar(&stdout, "stdout", false, "Print the snapshot instead of storing it")

	return cmd
}

func runSnapshot(ctx context.Context, cfg *config.Config, name string, stdout bool) error {
	rt := track.New(nil)
	d, err := demo.New(name, rt)
	if err != nil {
		return err
	}
	tree, err := host.Mount(rt, d.Root)
	if err != nil {
		return err
	}
	defer tree.Unmount()

	snap := snapshot.Capture(rt)

	if stdout {
		data, err := snapshot.Encode(snap)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(os.Stdout, string(data))
		return err
	}

	store, err := snapshot.Open(snapshot.Options{
		Dir:       cfg.Snapshot.Dir,
		DB:        cfg.Snapshot.DB,
		Bucket:    cfg.Snapshot.Bucket,
		Prefix:    cfg.Snapshot.Prefix,
		Region:    cfg.Snapshot.Region,
		Endpoint:  cfg.Snapshot.Endpoint,
		PathStyle: cfg.Snapshot.PathStyle,
	})
	if err != nil {
		return err
	}
	if c, ok := store.(io.Closer); ok {
		defer c.Close()
	}

	written, err := snapshot.Write(ctx, store, snap)
	if err != nil {
		return err
	}
	success("Wrote %s (%d edges)", written, snap.Stats.Edges)
	return nil
}
