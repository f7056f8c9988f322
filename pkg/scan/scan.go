// Package scan builds a [hierarchy.Tree] from a directory on disk.
//
// The scanner walks an [fs.FS] depth-first on a single goroutine. Each
// directory becomes an interior node before any of its entries are visited,
// and each regular file becomes a leaf with its byte size. Symbolic links and
// irregular files (devices, sockets, pipes) are skipped so that no byte is
// counted twice. Errors below the root, such as unreadable directories, are
// collected in [Result.Errors] and the walk continues.
//
//	res, err := scan.Dir(ctx, "/var/log", scan.Options{Exclude: []string{".git/"}})
//	total := hierarchy.Aggregate(res.Tree)
package scan

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
)

// DefaultExclude lists patterns skipped unless the caller overrides them.
var DefaultExclude = []string{".git/", ".hg/", ".svn/"}

// Options configures a scan.
type Options struct {
	// Exclude holds patterns to skip. A pattern ending in "/" names a
	// directory anywhere in the tree; other patterns are globs matched
	// against the base name, or against the relative path when they contain
	// a "/".
	Exclude []string
	// RootName is the display name of the root node. Defaults to ".".
	RootName string
	// Logger receives debug output for skipped entries. Optional.
	Logger *log.Logger
}

// Result is the outcome of a scan.
type Result struct {
	Tree    *hierarchy.Tree
	Files   int
	Dirs    int
	Skipped int
	// Bytes is the sum of file sizes accumulated during the walk,
	// independently of the tree. After aggregation it must equal the
	// root's size.
	Bytes  float64
	Errors []error
}

// FS walks fsys from its root and returns the resulting tree.
// The tree is not aggregated.
func FS(ctx context.Context, fsys fs.FS, opts Options) (*Result, error) {
	rootName := opts.RootName
	if rootName == "" {
		rootName = "."
	}

	tree := hierarchy.New()
	rootID, err := tree.AddRoot(rootName)
	if err != nil {
		return nil, err
	}
	res := &Result{Tree: tree, Dirs: 1}
	dirs := map[string]hierarchy.NodeID{".": rootID}

	walkErr := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if p == "." {
				return err
			}
			res.Errors = append(res.Errors, err)
			if opts.Logger != nil {
				opts.Logger.Debug("scan error", "path", p, "error", err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if p == "." {
			return nil
		}

		if Excluded(p, d.IsDir(), opts.Exclude) {
			res.Skipped++
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		parent, ok := dirs[path.Dir(p)]
		if !ok {
			// Parent was skipped after a read error.
			return nil
		}

		switch {
		case d.IsDir():
			id, err := tree.AddDir(parent, d.Name())
			if err != nil {
				res.Errors = append(res.Errors, errors.Wrap(errors.ErrCodeInvalidInput, err, "directory %s", p))
				return fs.SkipDir
			}
			dirs[p] = id
			res.Dirs++
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				res.Errors = append(res.Errors, err)
				return nil
			}
			size := float64(info.Size())
			if _, err := tree.AddFile(parent, d.Name(), size); err != nil {
				res.Errors = append(res.Errors, errors.Wrap(errors.ErrCodeInvalidInput, err, "file %s", p))
				return nil
			}
			res.Files++
			res.Bytes += size
		default:
			res.Skipped++
			if opts.Logger != nil {
				opts.Logger.Debug("skipping irregular file", "path", p, "mode", d.Type().String())
			}
		}
		return nil
	})
	if walkErr != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(errors.ErrCodeCanceled, walkErr, "scan canceled")
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, walkErr, "cannot scan %s", rootName)
	}
	return res, nil
}

// Dir scans the directory at root on the local filesystem. The root node is
// named after root unless opts.RootName is set.
func Dir(ctx context.Context, root string, opts Options) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "directory %s does not exist", root)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot access %s", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", root)
	}
	if opts.RootName == "" {
		opts.RootName = root
	}
	return FS(ctx, os.DirFS(root), opts)
}

// Excluded reports whether the slash-separated relative path p matches any
// of the patterns.
func Excluded(p string, isDir bool, patterns []string) bool {
	base := path.Base(p)
	for _, pattern := range patterns {
		if dirPattern, ok := strings.CutSuffix(pattern, "/"); ok {
			// Directory patterns match any path component of a directory.
			parts := strings.Split(p, "/")
			if !isDir {
				parts = parts[:len(parts)-1]
			}
			for _, part := range parts {
				if part == dirPattern {
					return true
				}
				if matched, _ := path.Match(dirPattern, part); matched {
					return true
				}
			}
			continue
		}
		if matched, err := path.Match(pattern, base); err == nil && matched {
			return true
		}
		if strings.Contains(pattern, "/") {
			if matched, err := path.Match(pattern, p); err == nil && matched {
				return true
			}
		}
	}
	return false
}
