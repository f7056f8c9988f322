package pipeline

import (
	"context"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/io"
	"github.com/matzehuels/squaremap/pkg/scan"
)

// Scan builds and aggregates the tree named by opts: a directory walk when
// Root is set, a snapshot import when Input is set. Entries that could not
// be read are returned alongside the tree.
func Scan(ctx context.Context, opts Options) (*hierarchy.Tree, []error, error) {
	if opts.Input != "" {
		t, err := io.ImportJSON(opts.Input)
		if err != nil {
			return nil, nil, err
		}
		if !t.Aggregated() {
			hierarchy.Aggregate(t)
		}
		return t, nil, nil
	}

	res, err := scan.Dir(ctx, opts.Root, scan.Options{
		Exclude:  opts.Exclude,
		RootName: opts.RootName,
		Logger:   opts.Logger,
	})
	if err != nil {
		return nil, nil, err
	}
	total := hierarchy.Aggregate(res.Tree)
	if total != res.Bytes {
		opts.Logger.Warn("scan total differs from aggregated size", "scanned", res.Bytes, "aggregated", total)
	}
	for _, e := range res.Errors {
		opts.Logger.Warn("skipped unreadable entry", "err", e)
	}
	return res.Tree, res.Errors, nil
}

// Verify runs the aggregation check and turns a mismatch into an error
// carrying the report.
func Verify(t *hierarchy.Tree) (hierarchy.Report, error) {
	r, err := hierarchy.Verify(t)
	if err != nil {
		return r, errors.Wrap(errors.ErrCodeInvalidStructure, err, "verify %s", r)
	}
	return r, nil
}
