package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/vango-dev/autotrack/internal/config"
	"github.com/vango-dev/autotrack/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┬ ┬┌┬┐┌─┐┌┬┐┬─┐┌─┐┌─┐┬┌─
  ├─┤│ │ │ │ │ │ ├┬┘├─┤│  ├┴┐
  ┴ ┴└─┘ ┴ └─┘ ┴ ┴└─┴ ┴└─┘┴ ┴
`

// globalFlags are shared by every command.
type globalFlags struct {
	configDir string
	debug     bool
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "autotrack",
		Short: "Automatic dependency tracking for component trees",
		Long: `autotrack records which properties each component reads while it
renders and redraws exactly those components when a property changes.

Writes made in the same turn are batched into one redraw per component.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&flags.configDir, "config", "c", ".", "Directory containing autotrack.json")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(
		serveCmd(&flags),
		demoCmd(&flags),
		snapshotCmd(&flags),
		versionCmd(),
	)

	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		errors.DisableColors()
	}

	if err := rootCmd.Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

// setup loads configuration and installs the default logger.
func setup(flags *globalFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(flags.configDir)
	if err != nil {
		return nil, nil, err
	}
	if flags.debug {
		cfg.Log.Debug = true
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// printBanner prints the ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}

// color reports whether stdout is a terminal.
var color = isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())

// success prints a success message.
func success(format string, args ...any) {
	mark := "✓"
	if color {
		mark = "\033[32m✓\033[0m"
	}
	fmt.Printf("%s %s\n", mark, fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
