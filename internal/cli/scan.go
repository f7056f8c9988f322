package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/io"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// scanCommand creates the scan command, which writes a tree snapshot.
func (c *CLI) scanCommand() *cobra.Command {
	var (
		sf     scanFlags
		output string
		top    int
	)

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Scan a directory and write its size tree as JSON",
		Long: `Scan a directory and write its size tree as JSON.

The scan walks the directory without following symbolic links, skips
excluded entries and aggregates file sizes up to the root. The resulting
snapshot can be passed to the other commands with --input.

Results are cached locally; use --refresh to force a new scan.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			return c.runScan(cmd.Context(), opts, sf.noCache, output, top)
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <dir>.tree.json, - for stdout)")
	cmd.Flags().IntVar(&top, "top", 10, "list this many of the largest files")

	return cmd
}

// runScan scans (or loads) the tree, writes the snapshot, and prints a summary.
func (c *CLI) runScan(ctx context.Context, opts pipeline.Options, noCache bool, output string, top int) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	source := opts.Root
	if opts.Input != "" {
		source = opts.Input
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Scanning %s...", source))
	spinner.Start()

	t, scanErrs, cacheHit, err := runner.ScanWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Scan failed")
		return err
	}
	spinner.Stop()
	prog.done("Scanned", "source", source, "cached", cacheHit)

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if output == "-" {
		return io.WriteJSON(t, os.Stdout)
	}
	outputPath := output
	if outputPath == "" {
		outputPath = basePath("", source) + ".tree.json"
	}
	if err := io.ExportJSON(t, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	dirs, files := t.Counts()
	printSuccess("Scan complete")
	printFile(outputPath)
	printStats(files, dirs, t.Size(t.Root()), cacheHit)
	if len(scanErrs) > 0 {
		printWarning("%d entries could not be read (see --verbose)", len(scanErrs))
	}
	if top > 0 {
		printNewline()
		printLargest(largestRows(t, top))
	}
	printNewline()
	printNextStep("Render", appName+" render --input "+outputPath)

	return nil
}

// largestRows lists the n largest files of t.
func largestRows(t *hierarchy.Tree, n int) []sizeRow {
	ids := t.Largest(t.Root(), n)
	rows := make([]sizeRow, len(ids))
	for i, id := range ids {
		rows[i] = sizeRow{path: t.Path(id), size: t.Size(id)}
	}
	return rows
}

// verifyCommand creates the verify command, which checks aggregation.
func (c *CLI) verifyCommand() *cobra.Command {
	var sf scanFlags

	cmd := &cobra.Command{
		Use:   "verify [dir]",
		Short: "Check that directory sizes equal the sum of their contents",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			sf.apply(cmd, &opts, args)
			if opts.Root == "" && opts.Input == "" {
				opts.Root = "."
			}
			return c.runVerify(cmd.Context(), opts, sf.noCache)
		},
	}
	sf.register(cmd)
	return cmd
}

func (c *CLI) runVerify(ctx context.Context, opts pipeline.Options, noCache bool) error {
	logger := loggerFromContext(ctx)
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	start := time.Now()
	t, err := runner.Scan(ctx, opts)
	if err != nil {
		return err
	}
	report, err := pipeline.Verify(t)
	logger.Debug("verified tree", "report", report.String(), "duration", time.Since(start))

	printKeyValue("root", formatBytes(report.RootSize))
	printKeyValue("leaves", formatBytes(report.LeafTotal))
	printKeyValue("disparity", fmt.Sprintf("%g", report.Disparity))
	printKeyValue("directories", fmt.Sprintf("%d", report.Directories))
	printKeyValue("files", fmt.Sprintf("%d", report.Files))
	printNewline()

	if err != nil {
		printError("Tree is inconsistent")
		return err
	}
	printSuccess("Tree is consistent")
	return nil
}
