package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/squaremap/pkg/errors"
	"github.com/matzehuels/squaremap/pkg/hierarchy"
)

// ReadJSON decodes a JSON snapshot from r into a new tree.
//
// Nodes are added in file order, so a node whose parent index does not
// refer to an earlier node fails with an INVALID_STRUCTURE error, as does a
// second root. Negative leaf sizes fail with INVALID_ARGUMENT. Errors name
// the offending node index.
//
// If the snapshot is marked aggregated, the returned tree is aggregated too.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*hierarchy.Tree, error) {
	var data snapshot
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode snapshot")
	}
	if len(data.Nodes) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "snapshot has no nodes")
	}

	t := hierarchy.New()
	for i, n := range data.Nodes {
		if n.Parent >= i {
			return nil, errors.New(errors.ErrCodeInvalidStructure,
				"node %d (%s): parent %d does not precede it", i, n.Name, n.Parent)
		}
		if _, err := t.AddNode(hierarchy.NodeID(n.Parent), n.Name, n.Leaf, n.Size); err != nil {
			return nil, fmt.Errorf("node %d (%s): %w", i, n.Name, err)
		}
	}
	if data.Aggregated {
		hierarchy.Aggregate(t)
	}
	return t, nil
}

// UnmarshalTree decodes a snapshot produced by [MarshalTree].
func UnmarshalTree(data []byte) (*hierarchy.Tree, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON snapshot file at path.
func ImportJSON(path string) (*hierarchy.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
