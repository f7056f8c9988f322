package server

import (
	"net/url"
	"strconv"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// applyQuery overrides layout and render options from query parameters.
// Range checks are left to the pipeline's validation.
func applyQuery(opts *pipeline.Options, q url.Values) error {
	floats := []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"min_area", &opts.MinArea},
		{"scale", &opts.Scale},
	}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidArgument, "%s: %q is not a number", f.name, v)
			}
			*f.dst = n
		}
	}

	if v := q.Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidArgument, "depth: %q is not an integer", v)
		}
		opts.SetDepth(d)
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"labels", &opts.Labels},
		{"titles", &opts.Titles},
	}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			on, err := strconv.ParseBool(v)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidArgument, "%s: %q is not a boolean", b.name, v)
			}
			*b.dst = on
		}
	}

	if v := q.Get("focus"); v != "" {
		opts.Focus = v
	}
	if v := q.Get("palette"); v != "" {
		opts.Palette = v
	}
	if v := q.Get("style"); v != "" {
		opts.Style = v
	}
	return nil
}
