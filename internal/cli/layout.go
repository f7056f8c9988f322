package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/pipeline"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// layoutCommand creates the layout command for computing treemap layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		sf     scanFlags
		lf     layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [dir]",
		Short: "Compute a treemap layout",
		Long: `Compute a treemap layout.

The layout command scans a directory (or loads a snapshot with --input) and
squarifies it into the frame. The output is a layout.json file holding every
cell's rectangle and color, which 'visualize' renders to SVG/PNG/PDF.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			lf.apply(cmd, &opts)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			return c.runLayout(cmd.Context(), opts, sf.noCache, output)
		},
	}

	sf.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <dir>.layout.json)")

	return cmd
}

// runLayout scans the tree, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Scanning...")
	spinner.Start()

	t, err := runner.Scan(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.SetMessage("Computing layout...")

	l, cacheHit, err := runner.GenerateLayoutWithCacheInfo(ctx, t, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	source := opts.Root
	if opts.Input != "" {
		source = opts.Input
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", source) + ".layout.json"
	}
	if err := writeLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	dirs, files := t.Counts()
	printSuccess("Layout complete")
	printFile(outputPath)
	printStats(files, dirs, l.Total, cacheHit)
	printDetail("%d cells in %gx%g", len(l.Cells), l.Width, l.Height)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

func writeLayoutFile(l treemap.Layout, path string) error {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func readLayoutFile(path string) (treemap.Layout, error) {
	var l treemap.Layout
	data, err := os.ReadFile(path)
	if err != nil {
		return l, err
	}
	if err := json.Unmarshal(data, &l); err != nil {
		return l, fmt.Errorf("decode layout: %w", err)
	}
	return l, nil
}
