package pipeline

import (
	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
	"github.com/matzehuels/squaremap/pkg/squarify"
	"github.com/matzehuels/squaremap/pkg/treemap"
)

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout lays out the focus directory of an aggregated tree. The
// memo may be nil.
func GenerateLayout(t *hierarchy.Tree, opts Options, memo *treemap.Memo) (treemap.Layout, error) {
	focus, err := ResolveFocus(t, opts.Focus)
	if err != nil {
		return treemap.Layout{}, err
	}
	palette, err := treemap.LookupPalette(opts.Palette)
	if err != nil {
		return treemap.Layout{}, err
	}

	layoutOpts := []treemap.Option{
		treemap.WithDepth(opts.Depth),
		treemap.WithMinArea(opts.MinArea),
		treemap.WithPalette(palette),
		treemap.WithFocus(focus),
	}
	if memo != nil {
		layoutOpts = append(layoutOpts, treemap.WithMemo(memo))
	}
	return treemap.Build(t, squarify.Rect{W: opts.Width, H: opts.Height}, layoutOpts...)
}

// ResolveFocus maps a slash-separated path below the root to a node.
// An empty path is the root.
func ResolveFocus(t *hierarchy.Tree, focus string) (hierarchy.NodeID, error) {
	id, ok := t.Lookup(focus)
	if !ok {
		return hierarchy.NoParent, errors.New(errors.ErrCodeNotFound, "focus %q not found under %s", focus, t.Name(t.Root()))
	}
	return id, nil
}
