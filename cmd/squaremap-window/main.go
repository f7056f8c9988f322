// Command squaremap-window shows an animated, zoomable treemap of a
// directory in a desktop window.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/buildinfo"
	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/config"
	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/render/window"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	var (
		configPath string
		input      string
		depth      int
		palette    string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "squaremap-window [dir]",
		Short: "Browse a directory treemap in a window",
		Long: `Browse a directory treemap in a window.

Left click zooms into a directory, right click or backspace zooms out, Home
returns to the root, Tab toggles the status line and Esc or Q quits.`,
		Version:      buildinfo.Version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level := log.InfoLevel
			if verbose {
				level = log.DebugLevel
			}
			logger := log.NewWithOptions(os.Stderr, log.Options{
				ReportTimestamp: true,
				TimeFormat:      "15:04:05.00",
				Level:           level,
			})

			if configPath == "" {
				configPath, _ = config.DefaultPath()
			}
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			opts := pipeline.Options{Input: input, Exclude: cfg.Exclude, Logger: logger}
			if input == "" {
				opts.Root = "."
				if len(args) > 0 {
					opts.Root = args[0]
				}
			}
			if !cmd.Flags().Changed("depth") {
				depth = cfg.Depth
			}
			if !cmd.Flags().Changed("palette") {
				palette = cfg.Palette
			}
			return run(cmd.Context(), cfg, opts, depth, palette, logger)
		},
	}

	cmd.SetVersionTemplate(buildinfo.Template())
	cmd.Flags().StringVar(&configPath, "config", "", "config file")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read a tree snapshot instead of scanning a directory")
	cmd.Flags().IntVarP(&depth, "depth", "d", pipeline.DefaultDepth, "directory levels to expand (0 = all)")
	cmd.Flags().StringVar(&palette, "palette", pipeline.DefaultPalette, "color palette")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	return cmd
}

func run(ctx context.Context, cfg *config.Config, opts pipeline.Options, depth int, palette string, logger *log.Logger) error {
	p, err := treemap.LookupPalette(palette)
	if err != nil {
		return err
	}

	c, err := cache.Open(ctx, cfg.CacheOptions(cacheDir()))
	if err != nil {
		logger.Warn("cache disabled", "err", err)
		c = cache.NewNullCache()
	}
	runner := pipeline.NewRunner(c, nil, logger)
	defer runner.Close()

	t, err := runner.Scan(ctx, opts)
	if err != nil {
		return err
	}

	v, err := window.NewViewer(t,
		window.WithLogger(logger),
		window.WithLayoutOptions(
			treemap.WithDepth(depth),
			treemap.WithMinArea(cfg.MinArea),
			treemap.WithPalette(p),
		),
	)
	if err != nil {
		return err
	}
	return window.Run(window.NewGame(v), "squaremap: "+t.Name(t.Root()))
}

func cacheDir() string {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "squaremap")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "squaremap")
	}
	return filepath.Join(home, ".cache", "squaremap")
}
