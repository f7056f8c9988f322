package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/squaremap/pkg/hierarchy"
)

type snapshot struct {
	Root       string `json:"root"`
	Aggregated bool   `json:"aggregated,omitempty"`
	Nodes      []node `json:"nodes"`
}

type node struct {
	Name   string  `json:"name"`
	Parent int     `json:"parent"`
	Leaf   bool    `json:"leaf,omitempty"`
	Size   float64 `json:"size,omitempty"`
}

func toSnapshot(t *hierarchy.Tree) snapshot {
	out := snapshot{
		Root:       t.Name(t.Root()),
		Aggregated: t.Aggregated(),
		Nodes:      make([]node, t.Len()),
	}
	for i := range out.Nodes {
		n, _ := t.Node(hierarchy.NodeID(i))
		nd := node{Name: n.Name, Parent: int(n.Parent), Leaf: n.Leaf}
		if n.Leaf || t.Aggregated() {
			nd.Size = n.Size
		}
		out.Nodes[i] = nd
	}
	return out
}

// WriteJSON encodes a tree as an indented JSON snapshot and writes it to w.
func WriteJSON(t *hierarchy.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toSnapshot(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalTree returns the compact JSON snapshot of a tree. The encoding is
// deterministic, so its hash identifies the tree's content.
func MarshalTree(t *hierarchy.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(toSnapshot(t)); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportJSON writes a tree to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(t *hierarchy.Tree, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(t, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
