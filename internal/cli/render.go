package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// renderCommand creates the render command, which runs the full pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		sf scanFlags
		lf layoutFlags
		rf renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render [dir]",
		Short: "Scan, lay out and render a directory in one step",
		Long: `Scan, lay out and render a directory in one step.

This is equivalent to 'scan', 'layout' and 'visualize' run in sequence, with
each stage cached. Use -t nodelink for a node-link diagram of the hierarchy
instead of a treemap.

Examples:
  squaremap render ~/projects -f svg,png --depth 2
  squaremap render --input home.tree.json --focus Downloads -o downloads.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			lf.apply(cmd, &opts)
			rf.apply(cmd, &opts)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			return c.runRender(cmd.Context(), opts, sf.noCache, rf.output)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	source := opts.Root
	if opts.Input != "" {
		source = opts.Input
	}
	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(output, source), output)
	if err != nil {
		return err
	}

	printSuccess("Rendered %s", result.Layout.Root)
	for _, p := range paths {
		printFile(p)
	}
	info := result.CacheInfo
	printStats(result.Stats.Files, result.Stats.Dirs, result.Stats.Bytes, info.ScanHit && info.LayoutHit && info.RenderHit)
	if n := len(result.ScanErrors); n > 0 {
		printWarning("%d entries could not be read", n)
	}
	return nil
}

// writeArtifacts writes each format to base.<format>, or to output exactly
// when a single format was requested and output was given.
func writeArtifacts(artifacts map[string][]byte, formats []string, base, output string) ([]string, error) {
	var paths []string
	for _, format := range formats {
		data, ok := artifacts[format]
		if !ok {
			continue
		}
		path := base + "." + format
		if len(formats) == 1 && output != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
